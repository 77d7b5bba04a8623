// Package preptypes defines LLM-related types and interfaces for examprep.
// This file contains the provider-neutral completion contract every client implements.
package preptypes

import "context"

// Source is a web citation returned alongside a grounded completion.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// CompletionRequest describes a single-turn completion.
type CompletionRequest struct {
	Model        string  // Provider model identifier
	Prompt       string  // Fully rendered instruction text
	Temperature  float64 // Sampling temperature, low values favor determinism
	EnableSearch bool    // Ask the provider to ground the answer with web search
}

// CompletionResult is the raw text plus any grounding metadata.
type CompletionResult struct {
	Text         string   // Concatenated text parts, empty when the reply was blocked
	Sources      []Source // Grounding citations, nil when none were returned
	FinishReason string   // Provider-specific finish reason, informational
}

// LLMClient defines the interface for LLM provider implementations.
// Implementations translate provider errors into *ProviderError at this boundary.
type LLMClient interface {
	// GenerateCompletion sends one completion request and returns the raw reply.
	GenerateCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)

	// GetProviderName returns the name of the LLM provider (e.g., "gemini", "openai").
	GetProviderName() string

	// IsConfigured returns true if the client has valid configuration and can make requests.
	IsConfigured() bool
}
