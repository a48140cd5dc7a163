// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/dshrivastava925/Clothing-Site/internal/llm"
)

// Client returns Reply, or Err when set, and records every request.
type Client struct {
	Reply string
	Err   error

	mu       sync.Mutex
	requests []llm.CompletionRequest
}

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	c.mu.Lock()
	cp := *req
	cp.Messages = append([]llm.ChatMessage(nil), req.Messages...)
	c.requests = append(c.requests, cp)
	c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	return &llm.CompletionResponse{Content: c.Reply, Model: req.Model}, nil
}

// Name implements llm.Client.
func (c *Client) Name() string {
	return "fake"
}

// Requests returns the recorded requests.
func (c *Client) Requests() []llm.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]llm.CompletionRequest(nil), c.requests...)
}
