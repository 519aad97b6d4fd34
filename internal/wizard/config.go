package wizard

import (
	"time"

	"github.com/spigell/easy-applier/internal/form"
)

// Selectors locate the wizard controls outside of the form units.
type Selectors struct {
	Next          string `mapstructure:"next"`
	Review        string `mapstructure:"review"`
	Submit        string `mapstructure:"submit"`
	ErrorMarker   string `mapstructure:"error-marker"`
	ResumeUpload  string `mapstructure:"resume-upload"`
	FollowCompany string `mapstructure:"follow-company"`
	Suggestion    string `mapstructure:"suggestion"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		Next:          `.jobs-easy-apply-modal__content footer button[aria-label="Continue to next step"]`,
		Review:        `.jobs-easy-apply-modal__content footer button[aria-label="Review your application"]`,
		Submit:        `.jobs-easy-apply-modal__content footer button[aria-label="Submit application"]`,
		ErrorMarker:   ".artdeco-inline-feedback--error",
		ResumeUpload:  ".js-jobs-document-upload__container input",
		FollowCompany: `label[for="follow-company-checkbox"]`,
		Suggestion:    ".basic-typeahead__triggered-content .basic-typeahead__selectable",
	}
}

type Config struct {
	MaxSteps          int           `mapstructure:"max-steps" validate:"gte=1"`
	SettleDelay       time.Duration `mapstructure:"settle-delay" validate:"gte=0"`
	SuggestionTimeout time.Duration `mapstructure:"suggestion-timeout" validate:"gte=0"`
	UnfollowCompany   bool          `mapstructure:"unfollow-company"`

	Selectors Selectors      `mapstructure:"selectors"`
	Form      form.Selectors `mapstructure:"form"`
}

const DefaultMaxSteps = 15

func DefaultConfig() Config {
	return Config{
		MaxSteps:          DefaultMaxSteps,
		SettleDelay:       time.Second,
		SuggestionTimeout: 5 * time.Second,
		UnfollowCompany:   true,
		Selectors:         DefaultSelectors(),
		Form:              form.DefaultSelectors(),
	}
}

// withDefaults fills unset selectors and a non-positive step limit.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxSteps <= 0 {
		c.MaxSteps = d.MaxSteps
	}
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&c.Selectors.Next, d.Selectors.Next)
	fill(&c.Selectors.Review, d.Selectors.Review)
	fill(&c.Selectors.Submit, d.Selectors.Submit)
	fill(&c.Selectors.ErrorMarker, d.Selectors.ErrorMarker)
	fill(&c.Selectors.ResumeUpload, d.Selectors.ResumeUpload)
	fill(&c.Selectors.FollowCompany, d.Selectors.FollowCompany)
	fill(&c.Selectors.Suggestion, d.Selectors.Suggestion)
	return c
}
