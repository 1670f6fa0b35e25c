// Package llm produces lyric interpretations through pluggable
// chat-completion backends.
package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"lyricsense/internal/core"
)

// analystPrompt is the fixed system instruction every backend sends.
const analystPrompt = `You are a knowledgeable music analyst who explains song lyrics with depth,
cultural context, and empathy. Provide:
1. A brief synopsis of the song's theme
2. Key symbolic or metaphorical meanings
3. The emotional or social message conveyed

Keep your response clear, insightful, and under 300 words.`

const (
	interpretTemperature  = 0.5
	interpretMaxTokens    = 600
	defaultMaxCharsRemote = 4000
	defaultMaxCharsLocal  = 1500
)

// ErrNoProvider reports interpretation being requested without a configured
// backend.
var ErrNoProvider = errors.New("no LLM provider configured")

// BackendError carries an interpretation failure to the caller together
// with the provider that produced it. Unlike acquisition errors these are
// surfaced, not swallowed.
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// NewProvider builds the interpretation backend named by config.Provider.
func NewProvider(config *core.LLMConfig, logger *zap.Logger) (core.Interpreter, error) {
	switch config.Provider {
	case "groq":
		return NewGroqClient(config, logger)
	case "openai":
		return NewOpenAIClient(config, logger)
	case "anthropic":
		return NewAnthropicClient(config, logger)
	case "ollama":
		return NewOllamaClient(config, logger), nil
	case "none", "":
		return &NoopProvider{}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.Provider)
	}
}

// NoopProvider satisfies core.Interpreter when interpretation is turned off.
type NoopProvider struct{}

func (n *NoopProvider) Name() string { return "none" }

func (n *NoopProvider) Interpret(context.Context, string) (string, error) {
	return "", ErrNoProvider
}

// charBudget resolves the configured lyrics budget against the backend's
// default.
func charBudget(config *core.LLMConfig, fallback int) int {
	if config.MaxChars > 0 {
		return config.MaxChars
	}
	return fallback
}

// truncateLyrics cuts lyrics to at most maxChars runes before prompting.
func truncateLyrics(lyrics string, maxChars int) string {
	if maxChars <= 0 {
		return lyrics
	}
	runes := []rune(lyrics)
	if len(runes) <= maxChars {
		return lyrics
	}
	return string(runes[:maxChars])
}

// userPrompt frames the truncated lyrics for the model.
func userPrompt(lyrics string) string {
	return "Please interpret these song lyrics:\n\n" + lyrics
}
