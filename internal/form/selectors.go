package form

// Selectors describes where the classifier finds controls and labels inside a form unit.
type Selectors struct {
	Unit string `mapstructure:"unit"`

	TextInput string `mapstructure:"text-input"`
	TextLabel string `mapstructure:"text-label"`
	// NumericMarker is searched for in the text control id.
	NumericMarker string `mapstructure:"numeric-marker"`

	RadioInput string `mapstructure:"radio-input"`
	RadioLabel string `mapstructure:"radio-label"`

	Select            string `mapstructure:"select"`
	SelectLabel       string `mapstructure:"select-label"`
	SelectOption      string `mapstructure:"select-option"`
	PlaceholderOption string `mapstructure:"placeholder-option"`

	CheckboxInput string `mapstructure:"checkbox-input"`
	// CheckboxKeyAttr holds a key that survives re-renders, unlike the checkbox id.
	CheckboxKeyAttr       string `mapstructure:"checkbox-key-attr"`
	CheckboxLabel         string `mapstructure:"checkbox-label"`
	CheckboxTitle         string `mapstructure:"checkbox-title"`
	CheckboxRequiredClass string `mapstructure:"checkbox-required-class"`
}

// DefaultSelectors returns the selectors of the LinkedIn Easy Apply modal.
func DefaultSelectors() Selectors {
	return Selectors{
		Unit: ".jobs-easy-apply-modal__content form .fb-dash-form-element",

		TextInput:     `input[type="text"], input[type="number"]`,
		TextLabel:     "label",
		NumericMarker: "-numeric",

		RadioInput: `fieldset div input[type="radio"]`,
		RadioLabel: "legend span span",

		Select:            "select",
		SelectLabel:       "label span",
		SelectOption:      "option",
		PlaceholderOption: "Select an option",

		CheckboxInput:         `input[type="checkbox"]`,
		CheckboxKeyAttr:       "data-test-text-selectable-option__input",
		CheckboxLabel:         "fieldset legend span",
		CheckboxTitle:         "fieldset legend div",
		CheckboxRequiredClass: "fb-dash-form-element__label-title--is-required",
	}
}

// withDefaults fills empty selectors from DefaultSelectors.
func (s Selectors) withDefaults() Selectors {
	d := DefaultSelectors()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.Unit, d.Unit)
	fill(&s.TextInput, d.TextInput)
	fill(&s.TextLabel, d.TextLabel)
	fill(&s.NumericMarker, d.NumericMarker)
	fill(&s.RadioInput, d.RadioInput)
	fill(&s.RadioLabel, d.RadioLabel)
	fill(&s.Select, d.Select)
	fill(&s.SelectLabel, d.SelectLabel)
	fill(&s.SelectOption, d.SelectOption)
	fill(&s.PlaceholderOption, d.PlaceholderOption)
	fill(&s.CheckboxInput, d.CheckboxInput)
	fill(&s.CheckboxKeyAttr, d.CheckboxKeyAttr)
	fill(&s.CheckboxLabel, d.CheckboxLabel)
	fill(&s.CheckboxTitle, d.CheckboxTitle)
	fill(&s.CheckboxRequiredClass, d.CheckboxRequiredClass)
	return s
}
