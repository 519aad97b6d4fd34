package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/easy-applier/internal/driver"
)

// Rule recognizes one structural shape of form unit. matched is false when
// the unit does not have the shape, so the next rule gets a chance.
type Rule interface {
	Name() string
	TryClassify(ctx context.Context, d driver.Driver, unit driver.Locator) (field *Field, matched bool, err error)
}

// DefaultRules returns the rules in evaluation order, most specific shape first.
func DefaultRules(sel Selectors) []Rule {
	sel = sel.withDefaults()
	return []Rule{
		textRule{sel: sel},
		radioRule{sel: sel},
		selectRule{sel: sel},
		checkboxRule{sel: sel},
	}
}

type textRule struct{ sel Selectors }

func (textRule) Name() string { return "text" }

func (r textRule) TryClassify(ctx context.Context, d driver.Driver, unit driver.Locator) (*Field, bool, error) {
	input, err := d.FindOne(ctx, unit, r.sel.TextInput)
	if errors.Is(err, driver.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	label, err := readLabel(ctx, d, unit, r.sel.TextLabel)
	if err != nil {
		return nil, true, err
	}
	if label == "" {
		aria, _, err := d.ReadAttribute(ctx, input, "aria-label")
		if err != nil {
			return nil, true, err
		}
		label = NormalizeLabel(aria)
	}
	if label == "" {
		return nil, true, fmt.Errorf("text control %s has no label: %w", input, ErrUnclassifiable)
	}

	id, _, err := d.ReadAttribute(ctx, input, "id")
	if err != nil {
		return nil, true, err
	}
	typ, _, err := d.ReadAttribute(ctx, input, "type")
	if err != nil {
		return nil, true, err
	}
	_, required, err := d.ReadAttribute(ctx, input, "required")
	if err != nil {
		return nil, true, err
	}

	kind := KindText
	if strings.Contains(id, r.sel.NumericMarker) || strings.EqualFold(typ, "number") {
		kind = KindNumeric
	}

	return &Field{Label: label, Kind: kind, Locator: input, Required: required}, true, nil
}

type radioRule struct{ sel Selectors }

func (radioRule) Name() string { return "radio" }

func (r radioRule) TryClassify(ctx context.Context, d driver.Driver, unit driver.Locator) (*Field, bool, error) {
	inputs, err := d.FindAll(ctx, unit, r.sel.RadioInput)
	if err != nil {
		return nil, false, err
	}
	if len(inputs) == 0 {
		return nil, false, nil
	}

	field := &Field{Kind: KindRadio, Locator: unit}
	for _, input := range inputs {
		value, _, err := d.ReadAttribute(ctx, input, "value")
		if err != nil {
			return nil, true, err
		}
		_, required, err := d.ReadAttribute(ctx, input, "required")
		if err != nil {
			return nil, true, err
		}
		field.Options = append(field.Options, Option{
			Label:    strings.TrimSpace(value),
			Locator:  input,
			Required: required,
		})
		field.Required = field.Required || required
	}

	field.Label, err = readLabel(ctx, d, unit, r.sel.RadioLabel, "legend")
	if err != nil {
		return nil, true, err
	}
	if field.Label == "" {
		return nil, true, fmt.Errorf("radio group %s has no legend: %w", unit, ErrUnclassifiable)
	}

	return field, true, nil
}

type selectRule struct{ sel Selectors }

func (selectRule) Name() string { return "select" }

func (r selectRule) TryClassify(ctx context.Context, d driver.Driver, unit driver.Locator) (*Field, bool, error) {
	control, err := d.FindOne(ctx, unit, r.sel.Select)
	if errors.Is(err, driver.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	field := &Field{Kind: KindSelect, Locator: control}

	options, err := d.FindAll(ctx, control, r.sel.SelectOption)
	if err != nil {
		return nil, true, err
	}
	for _, o := range options {
		text, err := d.ReadText(ctx, o)
		if err != nil {
			return nil, true, err
		}
		label := NormalizeLabel(text)
		if label == "" || strings.EqualFold(label, r.sel.PlaceholderOption) {
			continue
		}
		field.Options = append(field.Options, Option{Label: label, Locator: o})
	}

	_, field.Required, err = d.ReadAttribute(ctx, control, "required")
	if err != nil {
		return nil, true, err
	}

	field.Label, err = readLabel(ctx, d, unit, r.sel.SelectLabel, "label")
	if err != nil {
		return nil, true, err
	}
	if field.Label == "" {
		return nil, true, fmt.Errorf("select %s has no label: %w", control, ErrUnclassifiable)
	}

	return field, true, nil
}

type checkboxRule struct{ sel Selectors }

func (checkboxRule) Name() string { return "checkbox" }

func (r checkboxRule) TryClassify(ctx context.Context, d driver.Driver, unit driver.Locator) (*Field, bool, error) {
	inputs, err := d.FindAll(ctx, unit, r.sel.CheckboxInput)
	if err != nil {
		return nil, false, err
	}
	if len(inputs) == 0 {
		return nil, false, nil
	}

	field := &Field{Kind: KindCheckbox, Locator: unit}
	for _, input := range inputs {
		key, ok, err := d.ReadAttribute(ctx, input, r.sel.CheckboxKeyAttr)
		if err != nil {
			return nil, true, err
		}
		if !ok || strings.TrimSpace(key) == "" {
			if key, _, err = d.ReadAttribute(ctx, input, "value"); err != nil {
				return nil, true, err
			}
		}
		field.Options = append(field.Options, Option{Label: strings.TrimSpace(key), Locator: input})
	}

	title, err := d.FindOne(ctx, unit, r.sel.CheckboxTitle)
	switch {
	case errors.Is(err, driver.ErrNotFound):
	case err != nil:
		return nil, true, err
	default:
		class, _, err := d.ReadAttribute(ctx, title, "class")
		if err != nil {
			return nil, true, err
		}
		field.Required = hasClass(class, r.sel.CheckboxRequiredClass)
	}

	field.Label, err = readLabel(ctx, d, unit, r.sel.CheckboxLabel, "legend")
	if err != nil {
		return nil, true, err
	}
	if field.Label == "" {
		return nil, true, fmt.Errorf("checkbox group %s has no legend: %w", unit, ErrUnclassifiable)
	}

	return field, true, nil
}

// readLabel returns the normalized text of the first selector that matches inside unit.
func readLabel(ctx context.Context, d driver.Driver, unit driver.Locator, selectors ...string) (string, error) {
	for _, sel := range selectors {
		loc, err := d.FindOne(ctx, unit, sel)
		if errors.Is(err, driver.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		text, err := d.ReadText(ctx, loc)
		if err != nil {
			return "", err
		}
		if label := NormalizeLabel(text); label != "" {
			return label, nil
		}
	}
	return "", nil
}

func hasClass(classAttr, class string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}
