package testutils

import (
	"context"
	"fmt"
	"sync"

	"examprep/pkg/preptypes"
)

// ScriptedReply is one canned outcome of a ScriptedClient call.
type ScriptedReply struct {
	Text    string
	Sources []preptypes.Source
	Err     error
}

// ScriptedClient is an LLMClient that replays replies in order and records requests.
type ScriptedClient struct {
	mu       sync.Mutex
	provider string
	replies  []ScriptedReply
	requests []preptypes.CompletionRequest
}

// NewScriptedClient creates a client that returns replies in order.
func NewScriptedClient(replies ...ScriptedReply) *ScriptedClient {
	return &ScriptedClient{provider: "scripted", replies: replies}
}

// Push appends more replies.
func (c *ScriptedClient) Push(replies ...ScriptedReply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, replies...)
}

// GenerateCompletion implements preptypes.LLMClient.
func (c *ScriptedClient) GenerateCompletion(ctx context.Context, req *preptypes.CompletionRequest) (*preptypes.CompletionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, *req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(c.replies) == 0 {
		return nil, fmt.Errorf("scripted client has no reply left")
	}

	reply := c.replies[0]
	c.replies = c.replies[1:]
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &preptypes.CompletionResult{Text: reply.Text, Sources: reply.Sources, FinishReason: "STOP"}, nil
}

// GetProviderName implements preptypes.LLMClient.
func (c *ScriptedClient) GetProviderName() string { return c.provider }

// IsConfigured implements preptypes.LLMClient.
func (c *ScriptedClient) IsConfigured() bool { return true }

// Requests returns a copy of every request seen so far.
func (c *ScriptedClient) Requests() []preptypes.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]preptypes.CompletionRequest(nil), c.requests...)
}

// CallCount returns how many requests were made.
func (c *ScriptedClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}
