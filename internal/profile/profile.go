// Package profile loads the candidate profile used to answer application questions.
package profile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schema string

type Profile struct {
	ResumePath          string              `mapstructure:"resume_path"`
	Summary             string              `mapstructure:"summary"`
	PersonalInformation PersonalInformation `mapstructure:"personal_information"`
	Availability        map[string]any      `mapstructure:"availability"`
	SalaryExpectations  map[string]any      `mapstructure:"salary_expectations"`
	SelfIdentification  map[string]any      `mapstructure:"self_identification"`
	WorkPreferences     map[string]any      `mapstructure:"work_preferences"`
	LegalAuthorization  map[string]any      `mapstructure:"legal_authorization"`
	Experience          []map[string]any    `mapstructure:"experience"`

	// Text is the profile file as written by the candidate. It is embedded in prompts.
	Text string `mapstructure:"-"`
}

type PersonalInformation struct {
	FirstName   string `mapstructure:"firstname"`
	LastName    string `mapstructure:"lastname"`
	DateOfBirth string `mapstructure:"date_of_birth"`
	Country     string `mapstructure:"country"`
	City        string `mapstructure:"city"`
	ZipCode     string `mapstructure:"zip_code"`
	Address     string `mapstructure:"address"`
	PhonePrefix string `mapstructure:"phone_prefix"`
	Phone       string `mapstructure:"phone"`
	Email       string `mapstructure:"email"`
	GitHub      string `mapstructure:"github"`
	LinkedIn    string `mapstructure:"linkedin"`
	Website     string `mapstructure:"website"`
}

// Load reads a YAML profile, validates it and checks that the résumé file exists.
// A relative résumé path is resolved against the working directory.
func Load(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	settings := v.AllSettings()

	if err := Validate(settings); err != nil {
		return nil, err
	}

	var p Profile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p.Text = strings.TrimSpace(string(raw))

	p.ResumePath, err = filepath.Abs(p.ResumePath)
	if err != nil {
		return nil, fmt.Errorf("resolve resume path: %w", err)
	}
	info, err := os.Stat(p.ResumePath)
	if err != nil {
		return nil, fmt.Errorf("resume file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("resume path %s is a directory", p.ResumePath)
	}

	return &p, nil
}

// ValidationError lists every schema violation of a profile.
type ValidationError struct {
	Errors []FieldError
}

type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("profile validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Validate checks decoded profile settings against the embedded schema.
func Validate(settings map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewGoLoader(settings),
	)
	if err != nil {
		return fmt.Errorf("validate profile: %w", err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

// IsValidationError reports whether err carries schema violations.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
