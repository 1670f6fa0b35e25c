package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"lyricsense/internal/core"
)

func TestOllamaClient_Interpret(t *testing.T) {
	var received ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response": "  A song about time slipping away.  ", "done": true}`))
	}))
	defer server.Close()

	client := NewOllamaClient(&core.LLMConfig{Provider: "ollama", BaseURL: server.URL}, zap.NewNop())

	got, err := client.Interpret(context.Background(), "Ticking away the moments")
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if got != "A song about time slipping away." {
		t.Errorf("Interpret() = %q, want trimmed interpretation", got)
	}

	if received.Model != defaultOllamaModel {
		t.Errorf("Request model = %q, want %q", received.Model, defaultOllamaModel)
	}
	if received.Stream {
		t.Error("Request should not ask for streaming")
	}
	if received.System != analystPrompt {
		t.Error("Request should carry the analyst system prompt")
	}
	if !strings.Contains(received.Prompt, "Ticking away the moments") {
		t.Errorf("Request prompt missing lyrics: %q", received.Prompt)
	}
}

func TestOllamaClient_Interpret_TruncatesLyrics(t *testing.T) {
	var received ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_, _ = w.Write([]byte(`{"response": "ok", "done": true}`))
	}))
	defer server.Close()

	client := NewOllamaClient(&core.LLMConfig{Provider: "ollama", BaseURL: server.URL, MaxChars: 10}, zap.NewNop())

	_, err := client.Interpret(context.Background(), "0123456789OVERFLOW")
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}

	if !strings.Contains(received.Prompt, "0123456789") {
		t.Errorf("Prompt should contain the budgeted lyrics: %q", received.Prompt)
	}
	if strings.Contains(received.Prompt, "OVERFLOW") {
		t.Errorf("Prompt should not carry lyrics past the budget: %q", received.Prompt)
	}
}

func TestOllamaClient_Interpret_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewOllamaClient(&core.LLMConfig{Provider: "ollama", BaseURL: server.URL}, zap.NewNop())

	_, err := client.Interpret(context.Background(), "some lyrics")
	if err == nil {
		t.Fatal("Expected error for server failure")
	}

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("Expected BackendError, got %T", err)
	}
	if backendErr.Provider != "ollama" {
		t.Errorf("BackendError.Provider = %q, want %q", backendErr.Provider, "ollama")
	}
}

func TestOllamaClient_Interpret_EmptyLyrics(t *testing.T) {
	client := NewOllamaClient(&core.LLMConfig{Provider: "ollama", BaseURL: "http://127.0.0.1:1"}, zap.NewNop())

	_, err := client.Interpret(context.Background(), "   ")
	if err == nil {
		t.Error("Expected error for empty lyrics")
	}
}

func TestOllamaClient_Interpret_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response": "", "done": true}`))
	}))
	defer server.Close()

	client := NewOllamaClient(&core.LLMConfig{Provider: "ollama", BaseURL: server.URL}, zap.NewNop())

	_, err := client.Interpret(context.Background(), "some lyrics")
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("Expected BackendError for empty response, got %v", err)
	}
}
