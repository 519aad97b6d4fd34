package answer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/form"
	"github.com/spigell/easy-applier/internal/llm"
	"github.com/spigell/easy-applier/internal/logger"
	"github.com/spigell/easy-applier/internal/profile"
)

type Options struct {
	OptionStrategy string `mapstructure:"option-strategy" validate:"omitempty,oneof=substring-first-or-default strict-substring"`
	DefaultNumber  int    `mapstructure:"default-number" validate:"gte=0"`
}

// Resolver answers fields from the profile or by asking the model.
type Resolver struct {
	model         llm.Model
	profile       *profile.Profile
	strategy      OptionStrategy
	defaultNumber int
	logger        *zap.Logger
}

func New(model llm.Model, p *profile.Profile, opts Options, logger *zap.Logger) (*Resolver, error) {
	strategy, err := StrategyByName(opts.OptionStrategy)
	if err != nil {
		return nil, err
	}
	if opts.DefaultNumber <= 0 {
		opts.DefaultNumber = DefaultNumber
	}
	return &Resolver{
		model:         model,
		profile:       p,
		strategy:      strategy,
		defaultNumber: opts.DefaultNumber,
		logger:        logger,
	}, nil
}

// Identity answers a personal data field from the profile.
func (r *Resolver) Identity(field *form.Field) (*Answer, error) {
	return Identity(field, r.profile.PersonalInformation)
}

// Resolve produces the answer for a non-identity field. prior holds the
// answers already given on the current step; a repeated question reuses them.
func (r *Resolver) Resolve(ctx context.Context, field *form.Field, prior Answers) (*Answer, error) {
	log := r.logger.With(logger.FieldFields(field.Label, string(field.Kind))...)

	if a := prior.reuse(field); a != nil {
		log.Debug("reusing answer given on this step")
		return a, nil
	}

	switch field.Kind {
	case form.KindSelect, form.KindRadio, form.KindCheckbox:
		return r.resolveOption(ctx, field, log)
	case form.KindNumeric:
		return r.resolveNumber(ctx, field, log)
	case form.KindText:
		return r.resolveText(ctx, field)
	default:
		return nil, fmt.Errorf("unsupported field kind %q", field.Kind)
	}
}

func (r *Resolver) resolveOption(ctx context.Context, field *form.Field, log *zap.Logger) (*Answer, error) {
	if len(field.Options) == 0 {
		return nil, fmt.Errorf("%q: %w", field.Label, ErrNoOptions)
	}

	response, err := r.ask(ctx, buildPrompt(optionsTemplate, r.profile.Text, field.Label, field.OptionLabels()))
	if err != nil {
		return nil, err
	}

	opt, fallback, err := r.strategy.Choose(response, field.Options)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", field.Label, err)
	}
	if fallback {
		log.Warn("model response names no option, using the first one",
			zap.String("response", response),
			zap.String("option", opt.Label),
			zap.String("strategy", r.strategy.Name()),
		)
	}

	return &Answer{Field: field, Option: opt, Fallback: fallback, Source: SourceModel}, nil
}

func (r *Resolver) resolveNumber(ctx context.Context, field *form.Field, log *zap.Logger) (*Answer, error) {
	response, err := r.ask(ctx, buildPrompt(numericTemplate, r.profile.Text, field.Label, nil))
	if err != nil {
		return nil, err
	}

	n, ok := ParseNumber(response)
	if !ok {
		log.Warn("model response has no digits, using the default",
			zap.String("response", response),
			zap.Int("default", r.defaultNumber),
		)
		return &Answer{Field: field, Number: r.defaultNumber, Fallback: true, Source: SourceModel}, nil
	}

	return &Answer{Field: field, Number: n, Source: SourceModel}, nil
}

func (r *Resolver) resolveText(ctx context.Context, field *form.Field) (*Answer, error) {
	response, err := r.ask(ctx, buildPrompt(textTemplate, r.profile.Text, field.Label, nil))
	if err != nil {
		return nil, err
	}
	return &Answer{Field: field, Text: response, Source: SourceModel}, nil
}

func (r *Resolver) ask(ctx context.Context, prompt string) (string, error) {
	raw, err := r.model.Invoke(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("ask model: %w", err)
	}
	return llm.CleanOutput(raw), nil
}
