// Package llm is a thin completion interface over the supported language-model APIs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/octobees/leads-scraper/internal/config"
)

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const defaultTimeout = 60 * time.Second

var (
	// ErrNotConfigured is returned by New when the selected provider has no API key.
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrEmptyResponse is returned when the model answers with no choices.
	ErrEmptyResponse = errors.New("empty completion")
)

// Request is one system + user exchange.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Provider completes a prompt.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// New builds the provider selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is empty", ErrNotConfigured)
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	case ProviderGemini:
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY is empty", ErrNotConfigured)
		}
		provider, err := NewGeminiProvider(ctx, cfg.GeminiKey, "", cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
