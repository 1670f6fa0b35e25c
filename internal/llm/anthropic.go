package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"lyricsense/internal/core"
)

const defaultAnthropicModel = "claude-3-haiku-20240307"

type AnthropicClient struct {
	config   *core.LLMConfig
	logger   *zap.Logger
	client   *anthropic.Client
	model    string
	maxChars int
}

func NewAnthropicClient(config *core.LLMConfig, logger *zap.Logger) (*AnthropicClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	var opts []option.RequestOption
	opts = append(opts, option.WithAPIKey(config.APIKey))

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	client := anthropic.NewClient(opts...)

	model := config.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicClient{
		config:   config,
		logger:   logger,
		client:   &client,
		model:    model,
		maxChars: charBudget(config, defaultMaxCharsRemote),
	}, nil
}

func (a *AnthropicClient) Name() string { return "anthropic" }

func (a *AnthropicClient) Interpret(ctx context.Context, lyrics string) (string, error) {
	if strings.TrimSpace(lyrics) == "" {
		return "", fmt.Errorf("empty lyrics provided")
	}

	lyrics = truncateLyrics(lyrics, a.maxChars)

	a.logger.Debug("Calling Anthropic for interpretation",
		zap.String("model", a.model),
		zap.Int("lyrics_chars", len(lyrics)))

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: interpretMaxTokens,
		System: []anthropic.TextBlockParam{{
			Type: "text",
			Text: analystPrompt,
		}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt(lyrics))),
		},
		Temperature: anthropic.Float(interpretTemperature),
	})
	if err != nil {
		a.logger.Error("Anthropic API call failed", zap.Error(err))
		return "", &BackendError{Provider: "anthropic", Err: err}
	}

	if len(message.Content) == 0 {
		return "", &BackendError{Provider: "anthropic", Err: fmt.Errorf("no response content")}
	}

	content := strings.TrimSpace(message.Content[0].Text)
	if content == "" {
		return "", &BackendError{Provider: "anthropic", Err: fmt.Errorf("empty response")}
	}

	a.logger.Debug("Interpretation received",
		zap.String("provider", "anthropic"),
		zap.Int("chars", len(content)))

	return content, nil
}
