package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/octobees/leads-scraper/internal/config"
)

func TestOpenAIProvider_Complete(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: "assistant", Content: "  Subject: Hi\nHello there  "},
			}},
		})
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", server.URL, "")
	text, err := provider.Complete(context.Background(), Request{System: "be brief", Prompt: "write", MaxTokens: 500, Temperature: 0.7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Subject: Hi\nHello there" {
		t.Fatalf("unexpected completion %q", text)
	}
	if got.Model != DefaultOpenAIModel || got.MaxTokens != 500 || len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestOpenAIProvider_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", server.URL, "gpt-4o-mini")
	if _, err := provider.Complete(context.Background(), Request{Prompt: "x"}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestOpenAIProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", server.URL, "")
	_, err := provider.Complete(context.Background(), Request{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "OpenAI API error") {
		t.Fatalf("expected wrapped API error, got %v", err)
	}
}

func TestGeminiProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"estimate ready"}]}}]}`))
	}))
	defer server.Close()

	provider, err := NewGeminiProvider(context.Background(), "test-key", server.URL, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, err := provider.Complete(context.Background(), Request{System: "analyst", Prompt: "estimate", Temperature: 0.3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "estimate ready" || provider.Name() != "gemini" {
		t.Fatalf("unexpected completion %q", text)
	}
}

func TestNew(t *testing.T) {
	if _, err := New(context.Background(), config.LLMConfig{Provider: "openai"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := New(context.Background(), config.LLMConfig{Provider: "gemini"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := New(context.Background(), config.LLMConfig{Provider: "claude", OpenAIKey: "k"}); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
	p, err := New(context.Background(), config.LLMConfig{OpenAIKey: "k", OpenAIModel: "gpt-4o"})
	if err != nil || p.Name() != "openai" {
		t.Fatalf("expected openai provider, got %v, %v", p, err)
	}
}
