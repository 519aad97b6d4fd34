// Package llm selects the language model backend and normalizes its output.
package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/llm/gemini"
	"github.com/spigell/easy-applier/internal/llm/langchain"
	"github.com/spigell/easy-applier/internal/logger"
	"github.com/spigell/easy-applier/internal/utils"
)

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	DefaultTemperature  = 0.4
	defaultMaxLogLength = 200
)

// Model accepts a rendered prompt and returns the raw response text.
type Model interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	Provider     string  `mapstructure:"provider" validate:"required,oneof=gemini ollama openai"`
	Model        string  `mapstructure:"model"`
	URL          string  `mapstructure:"url" validate:"omitempty,url"`
	APIKey       string  `mapstructure:"api-key"`
	APIKeyFile   string  `mapstructure:"api-key-file"`
	Temperature  float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxLogLength int     `mapstructure:"max-log-length" validate:"gte=0"`
}

// New builds the configured backend. apiKey is ignored by ollama.
func New(ctx context.Context, cfg Config, apiKey string, log *zap.Logger) (Model, error) {
	var (
		backend Model
		err     error
	)

	switch cfg.Provider {
	case ProviderGemini:
		var c *gemini.Client
		c, err = gemini.New(ctx, apiKey, cfg.Model, float32(cfg.Temperature))
		if c != nil {
			cfg.Model = c.Model()
		}
		backend = c
	case ProviderOllama:
		backend, err = langchain.NewOllama(cfg.URL, cfg.Model, cfg.Temperature)
	case ProviderOpenAI:
		backend, err = langchain.NewOpenAI(cfg.URL, apiKey, cfg.Model, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewLogging(backend, cfg.Provider, cfg.Model, cfg.MaxLogLength, log), nil
}

// Logging logs prompt and response previews of every call at debug level.
type Logging struct {
	next      Model
	logger    *zap.Logger
	maxLogLen int
}

func NewLogging(next Model, provider, model string, maxLogLength int, log *zap.Logger) *Logging {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Logging{
		next:      next,
		logger:    logger.WithCommonFields(log, provider, model),
		maxLogLen: maxLogLength,
	}
}

func (l *Logging) Invoke(ctx context.Context, prompt string) (string, error) {
	l.logger.Debug("llm request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, l.maxLogLen)),
	)

	raw, err := l.next.Invoke(ctx, prompt)
	if err != nil {
		l.logger.Warn("llm request failed", zap.Error(err))
		return "", err
	}

	l.logger.Debug("llm response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, l.maxLogLen)),
	)
	return raw, nil
}

var markers = strings.NewReplacer("*", "", "#", "")

// CleanOutput strips markdown emphasis and heading markers and surrounding whitespace.
func CleanOutput(raw string) string {
	return strings.TrimSpace(markers.Replace(raw))
}
