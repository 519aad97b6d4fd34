// Package config assembles and validates the run configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/spigell/easy-applier/internal/answer"
	"github.com/spigell/easy-applier/internal/applicator"
	"github.com/spigell/easy-applier/internal/driver/chrome"
	"github.com/spigell/easy-applier/internal/linkedin"
	"github.com/spigell/easy-applier/internal/llm"
	"github.com/spigell/easy-applier/internal/wizard"
)

type Config struct {
	Profile      string        `mapstructure:"profile" validate:"required"`
	LoginTimeout time.Duration `mapstructure:"login-timeout" validate:"gte=0"`

	Browser   chrome.Options    `mapstructure:"browser"`
	LLM       llm.Config        `mapstructure:"llm"`
	Search    linkedin.Search   `mapstructure:"search"`
	Site      linkedin.Options  `mapstructure:"site"`
	Blacklist Blacklist         `mapstructure:"blacklist"`
	Wizard    wizard.Config     `mapstructure:"wizard"`
	Answer    answer.Options    `mapstructure:"answer"`
	Output    applicator.Config `mapstructure:"output"`
}

// Blacklist holds the phrases excluding postings by title or company.
type Blacklist struct {
	Titles    []string `mapstructure:"titles"`
	Companies []string `mapstructure:"companies"`
}

// SetDefaults registers the default of every optional key.
func SetDefaults(v *viper.Viper) {
	wiz := wizard.DefaultConfig()
	site := linkedin.DefaultOptions()

	v.SetDefault("profile", "profile.yaml")
	v.SetDefault("login-timeout", 5*time.Minute)

	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.user-data-dir", "./browser-profile")
	v.SetDefault("browser.action-timeout", 30*time.Second)
	v.SetDefault("browser.type-delay", 50*time.Millisecond)

	v.SetDefault("llm.provider", llm.ProviderGemini)
	v.SetDefault("llm.temperature", llm.DefaultTemperature)
	v.SetDefault("llm.max-log-length", 200)

	v.SetDefault("search.max-pages", 1)
	v.SetDefault("search.distance", 25)
	v.SetDefault("search.date-posted", "all_time")

	v.SetDefault("site.card-delay", site.CardDelay)
	v.SetDefault("site.timeout", site.Timeout)

	v.SetDefault("wizard.max-steps", wiz.MaxSteps)
	v.SetDefault("wizard.settle-delay", wiz.SettleDelay)
	v.SetDefault("wizard.suggestion-timeout", wiz.SuggestionTimeout)
	v.SetDefault("wizard.unfollow-company", wiz.UnfollowCompany)

	v.SetDefault("answer.option-strategy", answer.StrategySubstringFirstMatchOrDefault)
	v.SetDefault("answer.default-number", answer.DefaultNumber)

	v.SetDefault("output.output-dir", "./data")
	v.SetDefault("output.history-file", "./data/history.json")
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidationError lists every rule the configuration breaks.
type ValidationError struct {
	Errors []FieldError
}

type FieldError struct {
	Field string
	Rule  string
	Param string
	Value any
}

func (e FieldError) String() string {
	if e.Param == "" {
		return fmt.Sprintf("%s: failed %q (got %v)", e.Field, e.Rule, e.Value)
	}
	return fmt.Sprintf("%s: failed %q %s (got %v)", e.Field, e.Rule, e.Param, e.Value)
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err))
	}
	return sb.String()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tag rules of the whole tree.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return fmt.Errorf("validate config: %w", err)
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(fields))}
	for _, f := range fields {
		ve.Errors = append(ve.Errors, FieldError{
			Field: strings.TrimPrefix(f.Namespace(), "Config."),
			Rule:  f.Tag(),
			Param: f.Param(),
			Value: f.Value(),
		})
	}
	return ve
}
