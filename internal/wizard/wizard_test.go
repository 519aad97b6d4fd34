package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/easy-applier/internal/answer"
	"github.com/spigell/easy-applier/internal/driver"
	"github.com/spigell/easy-applier/internal/driver/static"
	"github.com/spigell/easy-applier/internal/profile"
)

const (
	nextButton   = `<button aria-label="Continue to next step">Next</button>`
	reviewButton = `<button aria-label="Review your application">Review</button>`
	submitButton = `<button aria-label="Submit application">Submit</button>`
	followLabel  = `<input id="follow-company-checkbox" type="checkbox" checked><label for="follow-company-checkbox">Follow Acme</label>`
	errorMarker  = `<div class="artdeco-inline-feedback--error">Enter a whole number</div>`
	resumeInput  = `<div class="js-jobs-document-upload__container"><input type="file" name="resume"></div>`
)

func page(units, extra, buttons string) string {
	return fmt.Sprintf(`<html><body><div class="jobs-easy-apply-modal__content">%s<form>%s</form><footer>%s</footer></div></body></html>`,
		extra, units, buttons)
}

func textUnit(id, label string) string {
	return fmt.Sprintf(`<div class="fb-dash-form-element"><label for="%[1]s">%[2]s</label><input id="%[1]s" type="text"></div>`, id, label)
}

func radioUnit(name, legend string, values ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="fb-dash-form-element"><fieldset><legend><span><span>%s</span></span></legend>`, legend)
	for _, v := range values {
		fmt.Fprintf(&b, `<div><input id="%[1]s-%[2]s" type="radio" name="%[1]s" value="%[2]s"></div>`, name, v)
	}
	b.WriteString(`</fieldset></div>`)
	return b.String()
}

func selectUnit(id, label string, options ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="fb-dash-form-element"><label for="%s"><span>%s</span></label><select id="%s"><option>Select an option</option>`, id, label, id)
	for _, o := range options {
		fmt.Fprintf(&b, `<option>%s</option>`, o)
	}
	b.WriteString(`</select></div>`)
	return b.String()
}

type stubModel struct {
	replies []string
	prompts []string
}

func (s *stubModel) Invoke(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.replies) == 0 {
		return "", errors.New("unexpected model call")
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

func testProfile() *profile.Profile {
	return &profile.Profile{
		ResumePath: "/tmp/resume.pdf",
		Text:       "Backend engineer, 7 years of Go.",
		PersonalInformation: profile.PersonalInformation{
			FirstName:   "Alex",
			LastName:    "Doe",
			City:        "Berlin",
			PhonePrefix: "+49",
			Phone:       "1701234567",
			Email:       "alex@example.com",
		},
	}
}

type fixture struct {
	driver *static.Driver
	model  *stubModel
	ctrl   *Controller
	logs   *observer.ObservedLogs
}

// newFixture loads pages[0] and makes every next/review click load the following page.
func newFixture(t *testing.T, cfg Config, replies []string, pages ...string) *fixture {
	t.Helper()

	d, err := static.New(pages[0])
	if err != nil {
		t.Fatalf("load page: %v", err)
	}

	current := 0
	advance := func(d *static.Driver) error {
		current++
		if current >= len(pages) {
			return fmt.Errorf("no page after %d", current)
		}
		return d.Load(pages[current])
	}
	sel := DefaultSelectors()
	d.OnClick(sel.Next, advance)
	d.OnClick(sel.Review, advance)
	d.OnClick(sel.Submit, func(d *static.Driver) error {
		return d.Load(`<html><body><h2>Application sent</h2></body></html>`)
	})

	model := &stubModel{replies: replies}
	resolver, err := answer.New(model, testProfile(), answer.Options{}, zap.NewNop())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	core, logs := observer.New(zapcore.DebugLevel)
	return &fixture{
		driver: d,
		model:  model,
		ctrl:   New(d, resolver, testProfile().ResumePath, cfg, zap.New(core)),
		logs:   logs,
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SettleDelay = 0
	cfg.SuggestionTimeout = 0
	return cfg
}

func TestRunThreeSteps(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"4 weeks", "Yes"},
		page(textUnit("notice", "What is your notice period?"), "", nextButton),
		page(radioUnit("auth", "Are you authorized to work in Germany?", "Yes", "No"), "", reviewButton),
		page("", followLabel, submitButton),
	)

	outcome, err := f.ctrl.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.State != StateSucceeded {
		t.Fatalf("expected succeeded, got %s", outcome.State)
	}
	if outcome.FillCycles != 2 {
		t.Fatalf("expected 2 fill cycles, got %d", outcome.FillCycles)
	}
	if outcome.Steps != 3 {
		t.Fatalf("expected 3 steps, got %d", outcome.Steps)
	}

	typed := f.driver.ActionsOf(static.ActionType)
	if len(typed) != 1 || typed[0].Value != "4 weeks" {
		t.Fatalf("unexpected typing: %+v", typed)
	}

	clicks := f.driver.ActionsOf(static.ActionClick)
	var targets []string
	for _, c := range clicks {
		targets = append(targets, c.Target)
	}
	expected := []string{
		`button[aria-label="Continue to next step"]`,
		`input#auth-Yes[name="auth"][value="Yes"]`,
		`button[aria-label="Review your application"]`,
		"label",
		`button[aria-label="Submit application"]`,
	}
	if len(targets) != len(expected) {
		t.Fatalf("expected clicks %v, got %v", expected, targets)
	}
	for i := range expected {
		if targets[i] != expected[i] {
			t.Fatalf("click %d: expected %s, got %s", i, expected[i], targets[i])
		}
	}
}

func TestRunValidationFailure(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"4 weeks", "several"},
		page(textUnit("notice", "What is your notice period?"), "", nextButton),
		page(textUnit("years-numeric", "Years of Go?"), "", nextButton),
		page(textUnit("years-numeric", "Years of Go?"), errorMarker, nextButton),
	)

	outcome, err := f.ctrl.Run(context.Background())

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Step != 2 || ve.Message != "Enter a whole number" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
	if outcome.State != StateFailed || outcome.FillCycles != 2 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if len(f.driver.ActionsOf(static.ActionClick)) != 2 {
		t.Fatalf("validation failure must not be retried")
	}
}

func TestRunStepLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSteps = 3

	endless := page("", "", nextButton)
	f := newFixture(t, cfg, nil, endless, endless, endless, endless, endless)

	outcome, err := f.ctrl.Run(context.Background())
	if !errors.Is(err, ErrStepLimitExceeded) {
		t.Fatalf("expected ErrStepLimitExceeded, got %v", err)
	}
	if outcome.Steps != 3 || outcome.FillCycles != 0 || outcome.State != StateFailed {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestRunMissingSubmit(t *testing.T) {
	f := newFixture(t, testConfig(), nil, page("", "", ""))

	_, err := f.ctrl.Run(context.Background())

	var se *StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("expected structural error, got %v", err)
	}
}

func TestRunUploadsResumeOnce(t *testing.T) {
	f := newFixture(t, testConfig(), nil,
		page("", resumeInput, nextButton),
		page("", resumeInput, submitButton),
	)

	if _, err := f.ctrl.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uploads := f.driver.ActionsOf(static.ActionUpload)
	if len(uploads) != 1 || uploads[0].Value != "/tmp/resume.pdf" {
		t.Fatalf("expected one resume upload, got %+v", uploads)
	}
}

func TestRunHandlesIdentityOnce(t *testing.T) {
	identity := selectUnit("code", "Phone country code", "Serbia (+381)", "Germany (+49)") +
		textUnit("phone", "Mobile phone number")

	f := newFixture(t, testConfig(), []string{"No"},
		page(identity, "", nextButton),
		page(identity+radioUnit("visa", "Do you need a visa?", "Yes", "No"), "", submitButton),
	)

	if _, err := f.ctrl.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	typed := f.driver.ActionsOf(static.ActionType)
	if len(typed) != 2 {
		t.Fatalf("expected identity to be typed once, got %+v", typed)
	}
	if typed[0].Value != "Germany (+49)" || typed[1].Value != "1701234567" {
		t.Fatalf("unexpected identity values: %+v", typed)
	}
	if len(f.model.prompts) != 1 {
		t.Fatalf("identity fields must not reach the model, got %d prompts", len(f.model.prompts))
	}
}

func TestRunCityAutocomplete(t *testing.T) {
	suggestions := `<div class="basic-typeahead__triggered-content"><div class="basic-typeahead__selectable" id="berlin">Berlin, Germany</div></div>`

	f := newFixture(t, testConfig(), nil,
		page(textUnit("city", "City"), suggestions, submitButton),
	)

	if _, err := f.ctrl.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clicks := f.driver.ActionsOf(static.ActionClick)
	if len(clicks) < 1 || !strings.Contains(clicks[0].Target, "#berlin") {
		t.Fatalf("expected first suggestion to be picked, got %+v", clicks)
	}
}

func TestRunCityWithoutSuggestions(t *testing.T) {
	f := newFixture(t, testConfig(), nil,
		page(textUnit("city", "City"), "", submitButton),
	)

	outcome, err := f.ctrl.Run(context.Background())
	if err != nil {
		t.Fatalf("missing suggestions must not fail the run: %v", err)
	}
	if outcome.State != StateSucceeded {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if f.logs.FilterMessage("no suggestions appeared").Len() != 1 {
		t.Fatalf("expected a warning")
	}
}

func TestRunResolutionErrorFailsPosting(t *testing.T) {
	f := newFixture(t, testConfig(), nil,
		page(selectUnit("code", "Phone country code", "Serbia (+381)"), "", submitButton),
	)

	outcome, err := f.ctrl.Run(context.Background())
	if !errors.Is(err, answer.ErrNoCountryCode) {
		t.Fatalf("expected ErrNoCountryCode, got %v", err)
	}
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Label != "Phone country code" {
		t.Fatalf("expected field error, got %v", err)
	}
	if outcome.State != StateFailed {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestRunKeepsFollowWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.UnfollowCompany = false

	f := newFixture(t, cfg, nil, page("", followLabel, submitButton))
	if _, err := f.ctrl.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clicks := f.driver.ActionsOf(static.ActionClick)
	if len(clicks) != 1 {
		t.Fatalf("expected only the submit click, got %+v", clicks)
	}
}

// markerTextFails fails every text read of the validation marker.
type markerTextFails struct {
	*static.Driver
}

func (d markerTextFails) ReadText(ctx context.Context, loc driver.Locator) (string, error) {
	if strings.Contains(loc.String(), "artdeco-inline-feedback--error") {
		return "", errors.New("node detached")
	}
	return d.Driver.ReadText(ctx, loc)
}

func TestRunValidationMessageUnreadable(t *testing.T) {
	f := newFixture(t, testConfig(), nil,
		page("", "", nextButton),
		page("", errorMarker, nextButton),
	)
	core, logs := observer.New(zapcore.DebugLevel)
	resolver, err := answer.New(f.model, testProfile(), answer.Options{}, zap.NewNop())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	ctrl := New(markerTextFails{f.driver}, resolver, testProfile().ResumePath, testConfig(), zap.New(core))

	_, err = ctrl.Run(context.Background())

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Step != 1 || ve.Message != "" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
	if logs.FilterMessage("validation message unreadable").Len() != 1 {
		t.Fatalf("expected unreadable message to be logged")
	}
}
