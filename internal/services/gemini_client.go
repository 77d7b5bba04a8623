package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"examprep/internal/logger"
	"examprep/pkg/preptypes"
)

// GeminiClient implements the LLMClient interface for Google Gemini API.
// The genai client is created lazily on the first request.
type GeminiClient struct {
	apiKey         string
	baseURL        string
	debugTransport http.RoundTripper

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiClient creates a new Gemini client with lazy initialization.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{apiKey: apiKey}
}

// GetProviderName returns the provider name for this client.
func (c *GeminiClient) GetProviderName() string {
	return "gemini"
}

// IsConfigured returns true if the client has a valid API key.
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SetDebugTransport sets the HTTP transport for network debugging.
func (c *GeminiClient) SetDebugTransport(transport http.RoundTripper) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debugTransport = transport
	// Clear the existing client to force re-initialization with the transport
	c.client = nil
}

// SetBaseURL overrides the API endpoint, forcing re-initialization.
func (c *GeminiClient) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = baseURL
	c.client = nil
}

func (c *GeminiClient) initializeClientIfNeeded(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("google API key not configured")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.debugTransport != nil {
		clientConfig.HTTPClient = &http.Client{Transport: c.debugTransport}
	}
	if c.baseURL != "" {
		clientConfig.HTTPOptions.BaseURL = c.baseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	logger.Debug("Gemini client initialized", "provider", "gemini", "custom_base_url", c.baseURL != "")

	c.client = client
	return client, nil
}

// GenerateCompletion sends a single-turn prompt to Gemini, optionally grounded with Google Search.
func (c *GeminiClient) GenerateCompletion(ctx context.Context, req *preptypes.CompletionRequest) (*preptypes.CompletionResult, error) {
	client, err := c.initializeClientIfNeeded(ctx)
	if err != nil {
		return nil, &preptypes.ProviderError{Provider: "gemini", AuthFailure: c.apiKey == "", Err: err}
	}

	temperature := float32(req.Temperature)
	config := &genai.GenerateContentConfig{Temperature: &temperature}
	if req.EnableSearch {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	logger.Debug("Gemini GenerateCompletion starting", "model", req.Model, "search", req.EnableSearch, "prompt_length", len(req.Prompt))
	resp, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		return nil, geminiProviderError(err)
	}

	result := processGeminiResponse(resp)
	logger.Debug("Gemini response received", "content_length", len(result.Text), "sources", len(result.Sources), "finish_reason", result.FinishReason)
	return result, nil
}

// processGeminiResponse joins the non-thought text parts and grounding chunks of the first candidate.
func processGeminiResponse(resp *genai.GenerateContentResponse) *preptypes.CompletionResult {
	result := &preptypes.CompletionResult{}
	if resp == nil {
		return result
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		logger.Warn("Gemini blocked the prompt", "reason", resp.PromptFeedback.BlockReason)
		result.FinishReason = string(resp.PromptFeedback.BlockReason)
		return result
	}
	if len(resp.Candidates) == 0 {
		return result
	}

	candidate := resp.Candidates[0]
	result.FinishReason = string(candidate.FinishReason)

	if candidate.Content != nil {
		var text strings.Builder
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought || part.Text == "" {
				continue
			}
			text.WriteString(part.Text)
		}
		result.Text = text.String()
	}

	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			result.Sources = append(result.Sources, preptypes.Source{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}
	return result
}

// geminiProviderError classifies a genai error by status and error details.
func geminiProviderError(err error) error {
	providerErr := &preptypes.ProviderError{Provider: "gemini", Err: err}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		providerErr.StatusCode = apiErr.Code
		providerErr.Status = apiErr.Status
		providerErr.AuthFailure = apiErr.Code == http.StatusUnauthorized ||
			apiErr.Code == http.StatusForbidden ||
			apiErr.Status == "UNAUTHENTICATED" ||
			apiErr.Status == "PERMISSION_DENIED" ||
			hasErrorReason(apiErr.Details, "API_KEY_INVALID")
	}

	logger.Error("Gemini request failed", "error", err, "status", providerErr.StatusCode, "auth", providerErr.AuthFailure)
	return providerErr
}

func hasErrorReason(details []map[string]any, reason string) bool {
	for _, detail := range details {
		if r, ok := detail["reason"].(string); ok && r == reason {
			return true
		}
	}
	return false
}
