// Package answer produces values for classified form fields.
package answer

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spigell/easy-applier/internal/form"
)

// ErrNoOptions is returned for a choice field that offers nothing to pick.
var ErrNoOptions = errors.New("field has no options")

// Source tells where an answer came from.
type Source string

const (
	SourceProfile Source = "profile"
	SourceModel   Source = "model"
	SourcePrior   Source = "prior"
)

// Answer is the value for one field on one wizard step.
type Answer struct {
	Field  *form.Field
	Text   string
	Number int
	// Option is set for SELECT, RADIO and CHECKBOX fields.
	Option *form.Option
	// Autocomplete means the control only accepts a picked suggestion.
	Autocomplete bool
	// Fallback is set when a documented default replaced an unusable response.
	Fallback bool
	Source   Source
}

// Value renders the answer the way it is entered into the control.
func (a *Answer) Value() string {
	switch {
	case a.Option != nil:
		return a.Option.Label
	case a.Field != nil && a.Field.Kind == form.KindNumeric:
		return strconv.Itoa(a.Number)
	default:
		return a.Text
	}
}

// Answers holds the answers given on the current step, keyed by field label.
type Answers map[string]*Answer

func key(label string) string {
	return strings.ToLower(form.NormalizeLabel(label))
}

func (as Answers) Add(a *Answer) {
	if a == nil || a.Field == nil {
		return
	}
	as[key(a.Field.Label)] = a
}

// reuse rebinds an earlier answer to the same question to field.
// It returns nil when there is nothing usable.
func (as Answers) reuse(field *form.Field) *Answer {
	prev, ok := as[key(field.Label)]
	if !ok || prev.Field.Kind != field.Kind {
		return nil
	}

	a := &Answer{Field: field, Text: prev.Text, Number: prev.Number, Source: SourcePrior}
	if !field.Kind.HasOptions() {
		return a
	}
	if prev.Option == nil {
		return nil
	}
	for i := range field.Options {
		if field.Options[i].Label == prev.Option.Label {
			a.Option = &field.Options[i]
			return a
		}
	}
	return nil
}
