package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "cmpl-1",
			"model": "gemma2-9b-it",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": "Hello!"}, "finish_reason": "stop"},
			},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15},
		})
	}))
	defer server.Close()

	client, err := NewOpenAIClient("groq", "test-key", server.URL)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := client.Complete(context.Background(), &CompletionRequest{
		Model:       "gemma2-9b-it",
		Messages:    []ChatMessage{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hey"}, {Role: "user", Content: "again"}},
		MaxTokens:   2048,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatal(err)
	}

	if resp.Content != "Hello!" {
		t.Errorf("expected content 'Hello!', got %q", resp.Content)
	}
	if resp.TokensIn != 12 || resp.TokensOut != 3 {
		t.Errorf("unexpected usage %d/%d", resp.TokensIn, resp.TokensOut)
	}
	if resp.StopReason != "stop" {
		t.Errorf("expected stop reason 'stop', got %q", resp.StopReason)
	}

	if got["model"] != "gemma2-9b-it" {
		t.Errorf("unexpected model in request: %v", got["model"])
	}
	if got["max_tokens"] != float64(2048) {
		t.Errorf("unexpected max_tokens: %v", got["max_tokens"])
	}
	msgs, _ := got["messages"].([]any)
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if first := msgs[0].(map[string]any); first["role"] != "user" || first["content"] != "hi" {
		t.Errorf("unexpected first message %v", first)
	}
}

func TestOpenAIClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient("groq", "test-key", server.URL)
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Complete(context.Background(), &CompletionRequest{
		Model:    "m",
		Messages: []ChatMessage{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("expected provider message in error, got %v", err)
	}
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer server.Close()

	client, _ := NewOpenAIClient("openai", "k", server.URL)
	if _, err := client.Complete(context.Background(), &CompletionRequest{Model: "m"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewClient(t *testing.T) {
	for _, provider := range []Provider{ProviderGroq, ProviderOpenAI, ProviderAnthropic} {
		c, err := NewClient(Options{Provider: provider})
		if err == nil {
			t.Errorf("%s: expected error without api key", provider)
		}
		if c != nil {
			t.Errorf("%s: expected nil client on error, got %T", provider, c)
		}
	}
	if _, err := NewClient(Options{Provider: "bogus", APIKey: "k"}); err == nil {
		t.Error("expected error for unknown provider")
	}

	cases := map[Provider]string{
		ProviderGroq:      "groq",
		ProviderOpenAI:    "openai",
		ProviderAnthropic: "anthropic",
	}
	for provider, want := range cases {
		c, err := NewClient(Options{Provider: provider, APIKey: "k"})
		if err != nil {
			t.Fatalf("%s: %v", provider, err)
		}
		if c.Name() != want {
			t.Errorf("expected name %s, got %s", want, c.Name())
		}
	}
}
