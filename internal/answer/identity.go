package answer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/easy-applier/internal/form"
	"github.com/spigell/easy-applier/internal/profile"
)

// ErrNoCountryCode is returned when the country code list lacks the profile phone prefix.
var ErrNoCountryCode = errors.New("no country code option for phone prefix")

const (
	LabelEmail       = "Email address"
	LabelCountryCode = "Phone country code"
	LabelMobile      = "Mobile phone number"
	LabelFirstName   = "First name"
	LabelLastName    = "Last name"
	LabelCity        = "City"
)

var identityLabels = []string{LabelEmail, LabelCountryCode, LabelMobile, LabelFirstName, LabelLastName, LabelCity}

// IsIdentity reports whether the field asks for personal contact data.
func IsIdentity(field *form.Field) bool {
	k := key(field.Label)
	for _, l := range identityLabels {
		if k == key(l) {
			return true
		}
	}
	return false
}

// Identity answers a personal data field from the profile. It returns nil
// when the field should be left as the site prefilled it.
func Identity(field *form.Field, info profile.PersonalInformation) (*Answer, error) {
	a := &Answer{Field: field, Source: SourceProfile}

	switch key(field.Label) {
	case key(LabelCountryCode):
		if !field.Kind.HasOptions() {
			a.Text = info.PhonePrefix
			return a, nil
		}
		opt := optionContaining(field, info.PhonePrefix)
		if opt == nil {
			return nil, fmt.Errorf("%s: %w", info.PhonePrefix, ErrNoCountryCode)
		}
		a.Option = opt
	case key(LabelMobile):
		a.Text = info.Phone
	case key(LabelFirstName):
		a.Text = info.FirstName
	case key(LabelLastName):
		a.Text = info.LastName
	case key(LabelEmail):
		if !field.Kind.HasOptions() {
			a.Text = info.Email
			return a, nil
		}
		// the site lists the addresses of the account; keep its choice when ours is absent
		a.Option = optionContaining(field, info.Email)
		if a.Option == nil {
			return nil, nil
		}
	case key(LabelCity):
		a.Text = info.City
		a.Autocomplete = true
	default:
		return nil, fmt.Errorf("%q is not an identity field", field.Label)
	}

	if !field.Kind.HasOptions() && strings.TrimSpace(a.Text) == "" {
		return nil, nil
	}
	return a, nil
}

func optionContaining(field *form.Field, needle string) *form.Option {
	if needle == "" {
		return nil
	}
	for i := range field.Options {
		if strings.Contains(field.Options[i].Label, needle) {
			return &field.Options[i]
		}
	}
	return nil
}
