package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"examprep/internal/logger"
	"examprep/pkg/preptypes"
)

// anthropicMaxTokens leaves room for the full framework object.
const anthropicMaxTokens = 8192

// AnthropicClient implements the LLMClient interface for Anthropic's API.
// It provides lazy initialization of the Anthropic client and handles
// all Anthropic-specific communication logic.
type AnthropicClient struct {
	apiKey         string
	baseURL        string
	debugTransport http.RoundTripper

	mu     sync.Mutex
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client with lazy initialization.
func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{apiKey: apiKey}
}

// GetProviderName returns the provider name for this client.
func (c *AnthropicClient) GetProviderName() string {
	return "anthropic"
}

// IsConfigured returns true if the client has a valid API key.
func (c *AnthropicClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SetDebugTransport sets the HTTP transport for network debugging.
func (c *AnthropicClient) SetDebugTransport(transport http.RoundTripper) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debugTransport = transport
	c.client = nil
}

// SetBaseURL overrides the API endpoint, forcing re-initialization.
func (c *AnthropicClient) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = baseURL
	c.client = nil
}

func (c *AnthropicClient) initializeClientIfNeeded() (*anthropic.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("anthropic API key not configured")
	}

	options := []option.RequestOption{option.WithAPIKey(c.apiKey)}
	if c.debugTransport != nil {
		options = append(options, option.WithHTTPClient(&http.Client{Transport: c.debugTransport}))
	}
	if c.baseURL != "" {
		options = append(options, option.WithBaseURL(c.baseURL), option.WithMaxRetries(0))
	}

	client := anthropic.NewClient(options...)
	c.client = &client
	logger.Debug("Anthropic client initialized", "provider", "anthropic", "custom_base_url", c.baseURL != "")
	return c.client, nil
}

// GenerateCompletion sends a single-turn prompt to the messages API, attaching the
// server-side web search tool when search is requested.
func (c *AnthropicClient) GenerateCompletion(ctx context.Context, req *preptypes.CompletionRequest) (*preptypes.CompletionResult, error) {
	client, err := c.initializeClientIfNeeded()
	if err != nil {
		return nil, &preptypes.ProviderError{Provider: "anthropic", AuthFailure: true, Err: err}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.EnableSearch {
		params.Tools = []anthropic.ToolUnionParam{
			{OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{MaxUses: anthropic.Int(5)}},
		}
	}

	logger.Debug("Anthropic GenerateCompletion starting", "model", req.Model, "search", req.EnableSearch, "prompt_length", len(req.Prompt))
	message, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, anthropicProviderError(err)
	}

	result := processAnthropicResponse(message)
	logger.Debug("Anthropic response received", "content_length", len(result.Text), "sources", len(result.Sources), "stop_reason", result.FinishReason)
	return result, nil
}

// processAnthropicResponse joins the text blocks and collects web search citations.
// Tool-use and search-result blocks are skipped.
func processAnthropicResponse(message *anthropic.Message) *preptypes.CompletionResult {
	result := &preptypes.CompletionResult{}
	if message == nil {
		return result
	}
	result.FinishReason = string(message.StopReason)

	var text strings.Builder
	seen := make(map[string]bool)
	for _, block := range message.Content {
		if block.Type != "text" {
			continue
		}
		text.WriteString(block.Text)
		for _, citation := range block.Citations {
			if citation.Type != "web_search_result_location" || citation.URL == "" || seen[citation.URL] {
				continue
			}
			seen[citation.URL] = true
			result.Sources = append(result.Sources, preptypes.Source{URI: citation.URL, Title: citation.Title})
		}
	}
	result.Text = text.String()
	return result
}

func anthropicProviderError(err error) error {
	providerErr := &preptypes.ProviderError{Provider: "anthropic", Err: err}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		providerErr.StatusCode = apiErr.StatusCode
		providerErr.AuthFailure = apiErr.StatusCode == http.StatusUnauthorized ||
			apiErr.StatusCode == http.StatusForbidden
	}

	logger.Error("Anthropic request failed", "error", err, "status", providerErr.StatusCode, "auth", providerErr.AuthFailure)
	return providerErr
}
