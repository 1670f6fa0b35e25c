package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"lyricsense/internal/core"
)

const (
	defaultOpenAIModel = "gpt-3.5-turbo"
	defaultGroqModel   = "llama-3.1-70b-versatile"
	groqBaseURL        = "https://api.groq.com/openai/v1"
)

// OpenAIClient speaks the OpenAI chat-completions protocol. Groq exposes the
// same protocol, so both providers share this client.
type OpenAIClient struct {
	name     string
	config   *core.LLMConfig
	logger   *zap.Logger
	client   *openai.Client
	model    string
	maxChars int
}

func NewOpenAIClient(config *core.LLMConfig, logger *zap.Logger) (*OpenAIClient, error) {
	return newCompatibleClient("openai", config.BaseURL, defaultOpenAIModel, config, logger)
}

// NewGroqClient targets Groq's OpenAI-compatible endpoint.
func NewGroqClient(config *core.LLMConfig, logger *zap.Logger) (*OpenAIClient, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = groqBaseURL
	}
	return newCompatibleClient("groq", baseURL, defaultGroqModel, config, logger)
}

func newCompatibleClient(name, baseURL, defaultModel string, config *core.LLMConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	var opts []option.RequestOption
	opts = append(opts, option.WithAPIKey(config.APIKey))

	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)

	model := config.Model
	if model == "" {
		model = defaultModel
	}

	return &OpenAIClient{
		name:     name,
		config:   config,
		logger:   logger,
		client:   &client,
		model:    model,
		maxChars: charBudget(config, defaultMaxCharsRemote),
	}, nil
}

func (o *OpenAIClient) Name() string { return o.name }

func (o *OpenAIClient) Interpret(ctx context.Context, lyrics string) (string, error) {
	if strings.TrimSpace(lyrics) == "" {
		return "", fmt.Errorf("empty lyrics provided")
	}

	lyrics = truncateLyrics(lyrics, o.maxChars)

	o.logger.Debug("Calling chat completions for interpretation",
		zap.String("provider", o.name),
		zap.String("model", o.model),
		zap.Int("lyrics_chars", len(lyrics)))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(analystPrompt),
			openai.UserMessage(userPrompt(lyrics)),
		},
		Model:       o.model,
		Temperature: openai.Float(interpretTemperature),
		MaxTokens:   openai.Int(interpretMaxTokens),
	})
	if err != nil {
		o.logger.Error("Chat completion call failed",
			zap.String("provider", o.name),
			zap.Error(err))
		return "", &BackendError{Provider: o.name, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &BackendError{Provider: o.name, Err: fmt.Errorf("no response choices")}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &BackendError{Provider: o.name, Err: fmt.Errorf("empty response")}
	}

	o.logger.Debug("Interpretation received",
		zap.String("provider", o.name),
		zap.Int("chars", len(content)))

	return content, nil
}
