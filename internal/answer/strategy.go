package answer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/easy-applier/internal/form"
)

// ErrNoConfidentMatch is returned by StrictSubstringMatch when the response names no option.
var ErrNoConfidentMatch = errors.New("response matches no option")

const (
	StrategySubstringFirstMatchOrDefault = "substring-first-or-default"
	StrategyStrictSubstringMatch         = "strict-substring"
)

// OptionStrategy maps a cleaned model response to one of the field options.
// fallback is true when the option was not named by the response.
type OptionStrategy interface {
	Name() string
	Choose(response string, options []form.Option) (opt *form.Option, fallback bool, err error)
}

// StrategyByName returns the named strategy. An empty name selects SubstringFirstMatchOrDefault.
func StrategyByName(name string) (OptionStrategy, error) {
	switch name {
	case "", StrategySubstringFirstMatchOrDefault:
		return SubstringFirstMatchOrDefault{}, nil
	case StrategyStrictSubstringMatch:
		return StrictSubstringMatch{}, nil
	default:
		return nil, fmt.Errorf("unknown option strategy %q", name)
	}
}

// SubstringFirstMatchOrDefault picks the first option whose label occurs in
// the response and falls back to the first option otherwise.
type SubstringFirstMatchOrDefault struct{}

func (SubstringFirstMatchOrDefault) Name() string { return StrategySubstringFirstMatchOrDefault }

func (SubstringFirstMatchOrDefault) Choose(response string, options []form.Option) (*form.Option, bool, error) {
	if len(options) == 0 {
		return nil, false, ErrNoOptions
	}
	if opt := firstContained(response, options); opt != nil {
		return opt, false, nil
	}
	return &options[0], true, nil
}

// StrictSubstringMatch picks the first option whose label occurs in the response.
type StrictSubstringMatch struct{}

func (StrictSubstringMatch) Name() string { return StrategyStrictSubstringMatch }

func (StrictSubstringMatch) Choose(response string, options []form.Option) (*form.Option, bool, error) {
	if len(options) == 0 {
		return nil, false, ErrNoOptions
	}
	if opt := firstContained(response, options); opt != nil {
		return opt, false, nil
	}
	return nil, false, fmt.Errorf("%q: %w", response, ErrNoConfidentMatch)
}

func firstContained(response string, options []form.Option) *form.Option {
	for i := range options {
		// an empty label is contained in every response
		if options[i].Label != "" && strings.Contains(response, options[i].Label) {
			return &options[i]
		}
	}
	return nil
}
