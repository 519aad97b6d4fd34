// Package wizard drives a multi-step application form to submission.
package wizard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/answer"
	"github.com/spigell/easy-applier/internal/driver"
	"github.com/spigell/easy-applier/internal/form"
	"github.com/spigell/easy-applier/internal/logger"
	"github.com/spigell/easy-applier/internal/utils"
)

type State string

const (
	StateAwaitingStep State = "awaiting_step"
	StateFilling      State = "filling"
	StateSubmitting   State = "submitting"
	StateSucceeded    State = "succeeded"
	StateFailed       State = "failed"
)

// Resolver produces answers for classified fields.
type Resolver interface {
	Identity(field *form.Field) (*answer.Answer, error)
	Resolve(ctx context.Context, field *form.Field, prior answer.Answers) (*answer.Answer, error)
}

// Outcome summarizes one wizard run.
type Outcome struct {
	State      State
	Steps      int
	FillCycles int
}

// runState is owned by a single Run call.
type runState struct {
	state           State
	step            int
	fillCycles      int
	resumeUploaded  bool
	identityHandled bool
}

func (s *runState) outcome() *Outcome {
	return &Outcome{State: s.state, Steps: s.step, FillCycles: s.fillCycles}
}

// Controller fills the application wizard open in the driver session.
type Controller struct {
	driver     driver.Driver
	classifier *form.Classifier
	resolver   Resolver
	resumePath string
	cfg        Config
	logger     *zap.Logger
}

func New(d driver.Driver, resolver Resolver, resumePath string, cfg Config, logger *zap.Logger) *Controller {
	cfg = cfg.withDefaults()
	return &Controller{
		driver:     d,
		classifier: form.NewClassifier(d, cfg.Form, logger),
		resolver:   resolver,
		resumePath: resumePath,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run fills every step and submits. The returned outcome is never nil; on
// failure its state is StateFailed and the error tells why.
func (c *Controller) Run(ctx context.Context) (*Outcome, error) {
	st := &runState{state: StateAwaitingStep}

	if err := c.run(ctx, st); err != nil {
		st.state = StateFailed
		c.logger.Warn("wizard failed", zap.Int("step", st.step), zap.Error(err))
		return st.outcome(), err
	}

	st.state = StateSucceeded
	c.logger.Info("application submitted", zap.Int("steps", st.step), zap.Int("fill_cycles", st.fillCycles))
	return st.outcome(), nil
}

func (c *Controller) run(ctx context.Context, st *runState) error {
	for {
		if st.step >= c.cfg.MaxSteps {
			return fmt.Errorf("%d steps: %w", st.step, ErrStepLimitExceeded)
		}
		st.step++
		st.state = StateAwaitingStep

		if err := c.uploadResume(ctx, st); err != nil {
			return err
		}

		units, err := c.classifier.Units(ctx)
		if err != nil {
			return fmt.Errorf("step %d: find form units: %w", st.step, err)
		}

		if len(units) > 0 {
			st.state = StateFilling
			if err := c.fill(ctx, st, units); err != nil {
				return err
			}
			st.fillCycles++
		}

		advance, err := c.advanceControl(ctx)
		if err != nil {
			return fmt.Errorf("step %d: %w", st.step, err)
		}

		if advance == nil {
			st.state = StateSubmitting
			return c.submit(ctx, st)
		}

		c.logger.Debug("advancing", zap.Int("step", st.step), zap.Stringer("control", advance))
		if err := c.driver.Click(ctx, advance); err != nil {
			return fmt.Errorf("step %d: click %s: %w", st.step, advance, err)
		}
		if err := utils.WaitFor(ctx, c.cfg.SettleDelay); err != nil {
			return err
		}

		if err := c.checkValidation(ctx, st); err != nil {
			return err
		}
	}
}

// advanceControl returns the next or review control, or nil on the final screen.
func (c *Controller) advanceControl(ctx context.Context) (driver.Locator, error) {
	for _, sel := range []string{c.cfg.Selectors.Next, c.cfg.Selectors.Review} {
		loc, err := c.driver.FindOne(ctx, nil, sel)
		if errors.Is(err, driver.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return loc, nil
	}
	return nil, nil
}

func (c *Controller) checkValidation(ctx context.Context, st *runState) error {
	marker, err := c.driver.FindOne(ctx, nil, c.cfg.Selectors.ErrorMarker)
	if errors.Is(err, driver.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("step %d: check validation: %w", st.step, err)
	}

	// the marker alone fails the step; its text only improves the message
	text, err := c.driver.ReadText(ctx, marker)
	if err != nil {
		c.logger.Debug("validation message unreadable", zap.Int("step", st.step), zap.Error(err))
	}
	return &ValidationError{Step: st.step, Message: form.NormalizeLabel(text)}
}

func (c *Controller) uploadResume(ctx context.Context, st *runState) error {
	if st.resumeUploaded {
		return nil
	}

	input, err := c.driver.FindOne(ctx, nil, c.cfg.Selectors.ResumeUpload)
	if errors.Is(err, driver.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("step %d: find resume upload: %w", st.step, err)
	}

	if err := c.driver.Upload(ctx, input, c.resumePath); err != nil {
		return &StructuralError{Step: st.step, Expectation: "a resume file input", Cause: err}
	}
	st.resumeUploaded = true
	c.logger.Info("resume uploaded", zap.String("path", c.resumePath))
	return nil
}

func (c *Controller) fill(ctx context.Context, st *runState, units []driver.Locator) error {
	var fields []*form.Field
	for _, unit := range units {
		field, err := c.classifier.Classify(ctx, unit)
		if errors.Is(err, form.ErrUnclassifiable) {
			continue
		}
		if err != nil {
			return &FieldError{Step: st.step, Label: unit.String(), Cause: err}
		}
		fields = append(fields, field)
	}

	c.logger.Info("filling step", zap.Int("step", st.step), zap.Int("fields", len(fields)))

	handledIdentity := false
	prior := answer.Answers{}
	for _, field := range fields {
		if answer.IsIdentity(field) {
			if st.identityHandled {
				continue
			}
			a, err := c.resolver.Identity(field)
			if err != nil {
				return &FieldError{Step: st.step, Label: field.Label, Cause: err}
			}
			handledIdentity = true
			if a == nil {
				continue
			}
			if err := c.apply(ctx, a); err != nil {
				return &FieldError{Step: st.step, Label: field.Label, Cause: err}
			}
			continue
		}

		a, err := c.resolver.Resolve(ctx, field, prior)
		if errors.Is(err, answer.ErrNoOptions) && !field.Required {
			c.logger.Warn("skipping optional field without options", logger.FieldFields(field.Label, string(field.Kind))...)
			continue
		}
		if err != nil {
			return &FieldError{Step: st.step, Label: field.Label, Cause: err}
		}
		if err := c.apply(ctx, a); err != nil {
			return &FieldError{Step: st.step, Label: field.Label, Cause: err}
		}
		prior.Add(a)
	}

	if handledIdentity {
		st.identityHandled = true
	}
	return nil
}

func (c *Controller) apply(ctx context.Context, a *answer.Answer) error {
	field := a.Field
	c.logger.Debug("applying answer",
		append(logger.FieldFields(field.Label, string(field.Kind)),
			zap.String("value", a.Value()),
			zap.String("source", string(a.Source)),
		)...,
	)

	switch {
	case a.Option != nil && field.Kind == form.KindSelect:
		return c.driver.Type(ctx, field.Locator, a.Option.Label)
	case a.Option != nil:
		return c.driver.Click(ctx, a.Option.Locator)
	case a.Autocomplete:
		return c.autocomplete(ctx, field, a.Value())
	default:
		return driver.Fill(ctx, c.driver, field.Locator, a.Value())
	}
}

// autocomplete types the value and picks the first suggestion. A suggestion
// list that never shows up leaves the typed value in place.
func (c *Controller) autocomplete(ctx context.Context, field *form.Field, value string) error {
	if err := driver.Fill(ctx, c.driver, field.Locator, value); err != nil {
		return err
	}

	suggestion, err := c.driver.WaitFor(ctx, c.cfg.Selectors.Suggestion, c.cfg.SuggestionTimeout)
	if errors.Is(err, driver.ErrTimeout) {
		c.logger.Warn("no suggestions appeared", append(logger.FieldFields(field.Label, string(field.Kind)), zap.Error(err))...)
		return nil
	}
	if err != nil {
		return err
	}
	return c.driver.Click(ctx, suggestion)
}

func (c *Controller) submit(ctx context.Context, st *runState) error {
	if c.cfg.UnfollowCompany {
		follow, err := c.driver.FindOne(ctx, nil, c.cfg.Selectors.FollowCompany)
		switch {
		case errors.Is(err, driver.ErrNotFound):
		case err != nil:
			return fmt.Errorf("step %d: find follow company control: %w", st.step, err)
		default:
			if err := c.driver.Click(ctx, follow); err != nil {
				return fmt.Errorf("step %d: unfollow company: %w", st.step, err)
			}
			c.logger.Debug("follow company unchecked")
		}
	}

	submit, err := c.driver.FindOne(ctx, nil, c.cfg.Selectors.Submit)
	if errors.Is(err, driver.ErrNotFound) {
		return &StructuralError{Step: st.step, Expectation: "a next, review or submit control", Cause: err}
	}
	if err != nil {
		return fmt.Errorf("step %d: find submit control: %w", st.step, err)
	}

	if err := c.driver.Click(ctx, submit); err != nil {
		return fmt.Errorf("step %d: submit: %w", st.step, err)
	}
	return utils.WaitFor(ctx, c.cfg.SettleDelay)
}
