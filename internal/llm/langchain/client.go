// Package langchain adapts langchaingo models to a single prompt-in, text-out call.
package langchain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

type Client struct {
	llm         llms.Model
	provider    string
	modelName   string
	temperature float64
}

// NewOllama connects to a local Ollama server. An empty serverURL uses the library default.
func NewOllama(serverURL, model string, temperature float64) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("ollama model is required")
	}

	opts := []ollama.Option{ollama.WithModel(model)}
	if serverURL = strings.TrimSpace(serverURL); serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}

	m, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return &Client{llm: m, provider: "ollama", modelName: model, temperature: temperature}, nil
}

// NewOpenAI creates a client for the OpenAI API or any server compatible with it.
func NewOpenAI(baseURL, token, model string, temperature float64) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("openai api key is required")
	}

	opts := []openai.Option{openai.WithToken(token)}
	if model = strings.TrimSpace(model); model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	m, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return &Client{llm: m, provider: "openai", modelName: model, temperature: temperature}, nil
}

func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, llms.WithTemperature(c.temperature))
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", c.provider, err)
	}
	return out, nil
}

func (c *Client) Provider() string { return c.provider }

func (c *Client) Model() string { return c.modelName }
