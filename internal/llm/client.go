// Package llm provides completion provider interfaces and implementations.
package llm

import (
	"context"
	"fmt"
)

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// ChatMessage represents a chat message for LLM.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for LLM providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderGroq      Provider = "groq"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Options selects and configures a provider.
type Options struct {
	Provider Provider
	APIKey   string
	BaseURL  string
}

// NewClient creates a new LLM client based on provider. Groq is served
// through its OpenAI-compatible endpoint. On error the returned Client is nil.
func NewClient(opts Options) (Client, error) {
	switch opts.Provider {
	case ProviderAnthropic:
		c, err := NewAnthropicClient(opts.APIKey)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderOpenAI, ProviderGroq, "":
		name := ProviderGroq
		if opts.Provider == ProviderOpenAI {
			name = ProviderOpenAI
		}
		c, err := NewOpenAIClient(string(name), opts.APIKey, opts.BaseURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", opts.Provider)
	}
}
