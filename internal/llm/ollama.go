package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"lyricsense/internal/core"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2"
	ollamaTimeout      = 60 * time.Second
)

// OllamaClient talks to a local Ollama daemon. Local models choke on long
// prompts well before hosted APIs do, so it carries the smaller default
// lyrics budget.
type OllamaClient struct {
	config     *core.LLMConfig
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
	model      string
	maxChars   int
}

type ollamaRequest struct {
	Model   string                 `json:"model"`
	System  string                 `json:"system,omitempty"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewOllamaClient(config *core.LLMConfig, logger *zap.Logger) *OllamaClient {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	model := config.Model
	if model == "" {
		model = defaultOllamaModel
	}

	return &OllamaClient{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: ollamaTimeout},
		baseURL:    baseURL,
		model:      model,
		maxChars:   charBudget(config, defaultMaxCharsLocal),
	}
}

func (o *OllamaClient) Name() string { return "ollama" }

func (o *OllamaClient) Interpret(ctx context.Context, lyrics string) (string, error) {
	if strings.TrimSpace(lyrics) == "" {
		return "", fmt.Errorf("empty lyrics provided")
	}

	lyrics = truncateLyrics(lyrics, o.maxChars)

	reqBody := ollamaRequest{
		Model:  o.model,
		System: analystPrompt,
		Prompt: userPrompt(lyrics),
		Stream: false,
		Options: map[string]interface{}{
			"temperature": interpretTemperature,
			"num_predict": interpretMaxTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", &BackendError{Provider: "ollama", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &BackendError{Provider: "ollama", Err: fmt.Errorf("API returned status %d", resp.StatusCode)}
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", &BackendError{Provider: "ollama", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	content := strings.TrimSpace(ollamaResp.Response)
	if content == "" {
		return "", &BackendError{Provider: "ollama", Err: fmt.Errorf("empty response")}
	}

	o.logger.Debug("Interpretation received",
		zap.String("provider", "ollama"),
		zap.Int("chars", len(content)))

	return content, nil
}
