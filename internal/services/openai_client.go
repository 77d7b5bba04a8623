package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"examprep/internal/logger"
	"examprep/pkg/preptypes"
)

// OpenAIClient implements the LLMClient interface for OpenAI's API.
// It provides lazy initialization of the OpenAI client and handles
// all OpenAI-specific communication logic.
type OpenAIClient struct {
	apiKey         string
	baseURL        string
	debugTransport http.RoundTripper

	mu     sync.Mutex
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client with lazy initialization.
// The actual OpenAI client is created only when the first request is made.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey}
}

// GetProviderName returns the provider name for this client.
func (c *OpenAIClient) GetProviderName() string {
	return "openai"
}

// IsConfigured returns true if the client has a valid API key.
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SetDebugTransport sets the HTTP transport for network debugging.
func (c *OpenAIClient) SetDebugTransport(transport http.RoundTripper) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debugTransport = transport
	c.client = nil
}

// SetBaseURL overrides the API endpoint, forcing re-initialization.
func (c *OpenAIClient) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = baseURL
	c.client = nil
}

func (c *OpenAIClient) initializeClientIfNeeded() (*openai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}

	options := []option.RequestOption{option.WithAPIKey(c.apiKey)}
	if c.debugTransport != nil {
		options = append(options, option.WithHTTPClient(&http.Client{Transport: c.debugTransport}))
	}
	if c.baseURL != "" {
		options = append(options, option.WithBaseURL(c.baseURL), option.WithMaxRetries(0))
	}

	client := openai.NewClient(options...)
	c.client = &client
	logger.Debug("OpenAI client initialized", "provider", "openai", "custom_base_url", c.baseURL != "")
	return c.client, nil
}

// GenerateCompletion sends a single-turn prompt to the chat completions API.
// Search-enabled requests use the web search options and omit temperature,
// which the search models reject.
func (c *OpenAIClient) GenerateCompletion(ctx context.Context, req *preptypes.CompletionRequest) (*preptypes.CompletionResult, error) {
	client, err := c.initializeClientIfNeeded()
	if err != nil {
		return nil, &preptypes.ProviderError{Provider: "openai", AuthFailure: true, Err: err}
	}

	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(req.Prompt)},
	}
	if req.EnableSearch {
		params.WebSearchOptions = openai.ChatCompletionNewParamsWebSearchOptions{SearchContextSize: "medium"}
	} else {
		params.Temperature = openai.Float(req.Temperature)
	}

	logger.Debug("OpenAI GenerateCompletion starting", "model", req.Model, "search", req.EnableSearch, "prompt_length", len(req.Prompt))
	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, openAIProviderError(err)
	}

	result := processOpenAIResponse(completion)
	logger.Debug("OpenAI response received", "content_length", len(result.Text), "sources", len(result.Sources), "finish_reason", result.FinishReason)
	return result, nil
}

// processOpenAIResponse takes the first choice's content and URL citations.
// A refusal yields an empty text.
func processOpenAIResponse(completion *openai.ChatCompletion) *preptypes.CompletionResult {
	result := &preptypes.CompletionResult{}
	if completion == nil || len(completion.Choices) == 0 {
		return result
	}

	choice := completion.Choices[0]
	result.FinishReason = choice.FinishReason
	if choice.Message.Refusal != "" {
		logger.Warn("OpenAI refused the prompt", "refusal", choice.Message.Refusal)
		return result
	}
	result.Text = choice.Message.Content

	seen := make(map[string]bool)
	for _, annotation := range choice.Message.Annotations {
		citation := annotation.URLCitation
		if citation.URL == "" || seen[citation.URL] {
			continue
		}
		seen[citation.URL] = true
		result.Sources = append(result.Sources, preptypes.Source{URI: citation.URL, Title: citation.Title})
	}
	return result
}

func openAIProviderError(err error) error {
	providerErr := &preptypes.ProviderError{Provider: "openai", Err: err}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		providerErr.StatusCode = apiErr.StatusCode
		providerErr.Status = apiErr.Type
		providerErr.AuthFailure = apiErr.StatusCode == http.StatusUnauthorized ||
			apiErr.StatusCode == http.StatusForbidden ||
			apiErr.Code == "invalid_api_key"
	}

	logger.Error("OpenAI request failed", "error", err, "status", providerErr.StatusCode, "auth", providerErr.AuthFailure)
	return providerErr
}
