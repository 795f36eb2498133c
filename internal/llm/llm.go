// Package llm wraps the language models that turn briefing text into slide markup and
// slide markup into slide JSON.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"briefdeck/internal/config"
	"briefdeck/internal/logger"
)

// Request kinds. They namespace cached responses.
const (
	KindSlides  = "slides"
	KindExtract = "extract"
)

const defaultTimeout = 120 * time.Second

// ErrEmptyResponse is returned when a model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Request is a single prompt sent to an Oracle.
type Request struct {
	Kind        string
	System      string
	Prompt      string
	MaxTokens   int      // 0 = provider default
	Temperature *float64 // nil = provider default
}

// Oracle generates text for a prompt. Implementations must honour ctx cancellation.
type Oracle interface {
	Generate(ctx context.Context, req Request) (string, error)
	Model() string
}

// Temperature returns a pointer for Request.Temperature.
func Temperature(t float64) *float64 {
	return &t
}

// New builds the oracle for the configured provider.
func New(ctx context.Context, cfg config.AI, log *slog.Logger) (Oracle, error) {
	log = logger.OrDiscard(log)
	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg.Gemini, log)
	case "openai":
		return NewOpenAI(cfg.OpenAI, log)
	case "groq", "":
		groq := cfg.Groq
		if groq.BaseURL == "" {
			groq.BaseURL = GroqBaseURL
		}
		return NewOpenAI(groq, log)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

func parseTimeout(s string) time.Duration {
	if s == "" {
		return defaultTimeout
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultTimeout
	}
	return d
}
