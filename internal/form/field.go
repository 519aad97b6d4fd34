// Package form turns form units of an application wizard into typed fields.
package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/easy-applier/internal/driver"
)

// ErrUnclassifiable is returned when no rule recognizes a form unit.
// Callers skip such units silently.
var ErrUnclassifiable = errors.New("form unit is not classifiable")

type Kind string

const (
	KindText     Kind = "TEXT"
	KindNumeric  Kind = "NUMERIC"
	KindSelect   Kind = "SELECT"
	KindRadio    Kind = "RADIO"
	KindCheckbox Kind = "CHECKBOX"
)

// HasOptions reports whether fields of this kind are answered by picking an option.
func (k Kind) HasOptions() bool {
	return k == KindSelect || k == KindRadio || k == KindCheckbox
}

// Option is one choice of a SELECT, RADIO or CHECKBOX field. Labels may
// repeat; the locator identifies the choice.
type Option struct {
	Label    string
	Locator  driver.Locator
	Required bool
}

// Field is one question found on a wizard step. It is built once per
// document state and must not be modified afterwards.
type Field struct {
	Label    string
	Kind     Kind
	Locator  driver.Locator
	Required bool
	Options  []Option
}

// OptionLabels returns the option labels in declared order.
func (f *Field) OptionLabels() []string {
	labels := make([]string, 0, len(f.Options))
	for _, o := range f.Options {
		labels = append(labels, o.Label)
	}
	return labels
}

// NormalizeLabel collapses whitespace and drops a line that repeats the
// previous one. Sites often render a label twice, once for screen readers.
func NormalizeLabel(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if len(lines) > 0 && lines[len(lines)-1] == line {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, " ")
}

// Describe renders fields for operators, one per line.
func Describe(fields []*Field) string {
	var b strings.Builder
	for i, f := range fields {
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, f.Kind, f.Label)
		if f.Required {
			b.WriteString(" (required)")
		}
		if f.Kind.HasOptions() {
			fmt.Fprintf(&b, " options=%q", f.OptionLabels())
		}
		b.WriteString("\n")
	}
	return b.String()
}
