package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldProvider = "llm_provider"
	FieldModel    = "llm_model"

	FieldPostingID = "posting_id"
	FieldTitle     = "title"
	FieldCompany   = "company"

	FieldLabel = "field_label"
	FieldKind  = "field_kind"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields describes the language model backend. Empty values are omitted.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithCommonFields attaches the model backend fields to the provided logger.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	fields := CommonFields(provider, model)
	return WithFields(logger, fields...)
}

// PostingFields identifies a job posting in log entries.
func PostingFields(id, title, company string) []zap.Field {
	return StringFields(
		StringField{Key: FieldPostingID, Value: id},
		StringField{Key: FieldTitle, Value: title},
		StringField{Key: FieldCompany, Value: company},
	)
}

// FieldFields identifies a form field in log entries.
func FieldFields(label, kind string) []zap.Field {
	return StringFields(
		StringField{Key: FieldLabel, Value: label},
		StringField{Key: FieldKind, Value: kind},
	)
}
