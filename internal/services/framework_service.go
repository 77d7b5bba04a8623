package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sony/gobreaker"

	"examprep/internal/framework"
	"examprep/internal/logger"
	"examprep/pkg/preptypes"
)

// followUpEmptyMessage replaces the generic empty-response sentence for follow-ups.
const followUpEmptyMessage = "No answer was generated. The AI's response might have been blocked or is empty."

// FrameworkService turns a topic into a validated framework by way of the configured
// LLM client. Every error it returns is a *preptypes.PrepError.
type FrameworkService struct {
	mu                   sync.RWMutex
	client               preptypes.LLMClient
	model                string
	frameworkTemperature float64
	followUpTemperature  float64
	breaker              *gobreaker.CircuitBreaker
	setupErr             error
	initialized          bool
}

// NewFrameworkService creates a FrameworkService that resolves its client from the
// registry during Initialize.
func NewFrameworkService() *FrameworkService {
	return &FrameworkService{}
}

// NewFrameworkServiceWithClient creates a ready FrameworkService around client.
func NewFrameworkServiceWithClient(client preptypes.LLMClient, model string, cfg AppConfig) *FrameworkService {
	s := &FrameworkService{}
	s.configure(client, model, cfg)
	return s
}

// Name returns the service name "framework" for registration.
func (s *FrameworkService) Name() string {
	return "framework"
}

// Initialize resolves the provider client. A missing or unsupported credential does not
// fail start-up; it is reported by each generation call instead so that account
// commands keep working without a key.
func (s *FrameworkService) Initialize() error {
	s.mu.RLock()
	ready := s.initialized
	s.mu.RUnlock()
	if ready {
		return nil
	}

	registry := GetGlobalRegistry()
	configService, err := lookup[*ConfigurationService](registry, "configuration")
	if err != nil {
		return err
	}
	cfg, err := configService.AppConfig()
	if err != nil {
		return err
	}
	factory, err := lookup[*ClientFactoryService](registry, "client_factory")
	if err != nil {
		return err
	}

	client, model, err := factory.ResolveClient(cfg)
	if err != nil {
		logger.Warn("LLM client unavailable", "provider", cfg.Provider, "error", err)
		s.mu.Lock()
		s.frameworkTemperature = cfg.FrameworkTemperature
		s.followUpTemperature = cfg.FollowUpTemperature
		s.setupErr = err
		s.initialized = true
		s.mu.Unlock()
		return nil
	}

	s.configure(client, model, cfg)
	logger.ServiceOperation("framework", "initialize", "completed", "provider", client.GetProviderName(), "model", model)
	return nil
}

func (s *FrameworkService) configure(client preptypes.LLMClient, model string, cfg AppConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.client = client
	s.model = model
	s.frameworkTemperature = cfg.FrameworkTemperature
	s.followUpTemperature = cfg.FollowUpTemperature
	s.breaker = newModelBreaker(client.GetProviderName(), cfg.Breaker)
	s.setupErr = nil
	s.initialized = true
}

// newModelBreaker trips after consecutive transport failures. Authentication and
// cancellation failures are not held against the provider.
func newModelBreaker(provider string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm-" + provider,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var providerErr *preptypes.ProviderError
			return errors.As(err, &providerErr) && providerErr.AuthFailure
		},
	})
}

// Model returns the resolved model identifier.
func (s *FrameworkService) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// GenerateFramework asks the model for a framework on topic and validates the reply.
func (s *FrameworkService) GenerateFramework(ctx context.Context, topic string) (*preptypes.FrameworkResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, preptypes.NewErrorf(preptypes.ErrInvalidInput, nil, "Please enter a topic.")
	}

	s.mu.RLock()
	temperature := s.frameworkTemperature
	s.mu.RUnlock()

	logger.Info("Generating framework", "topic", topic)
	completion, err := s.complete(ctx, &preptypes.CompletionRequest{
		Prompt:       framework.BuildPrompt(topic),
		Temperature:  temperature,
		EnableSearch: true,
	})
	if err != nil {
		return nil, err
	}

	result, err := framework.Validate(completion.Text, completion.Sources)
	if err != nil {
		logger.Warn("Framework reply rejected", "topic", topic, "kind", preptypes.KindOf(err), "finish_reason", completion.FinishReason)
		return nil, err
	}
	result.Topic = topic
	logger.Info("Framework generated", "topic", topic, "sources", len(result.Sources))
	return result, nil
}

// AskFollowUp asks a grounded question about topic. The raw reply text is the answer.
func (s *FrameworkService) AskFollowUp(ctx context.Context, topic, question string) (*preptypes.FollowUpResult, error) {
	topic = strings.TrimSpace(topic)
	question = strings.TrimSpace(question)
	if topic == "" || question == "" {
		return nil, preptypes.NewErrorf(preptypes.ErrInvalidInput, nil, "Please enter a topic and a question.")
	}

	s.mu.RLock()
	temperature := s.followUpTemperature
	s.mu.RUnlock()

	completion, err := s.complete(ctx, &preptypes.CompletionRequest{
		Prompt:       framework.BuildFollowUpPrompt(topic, question),
		Temperature:  temperature,
		EnableSearch: true,
	})
	if err != nil {
		return nil, err
	}

	answer := strings.TrimSpace(completion.Text)
	if answer == "" {
		return nil, preptypes.NewErrorf(preptypes.ErrEmptyResponse, nil, followUpEmptyMessage)
	}
	return &preptypes.FollowUpResult{
		Topic:    topic,
		Question: question,
		Answer:   answer,
		Sources:  completion.Sources,
	}, nil
}

// complete runs one model call through the breaker and maps failures to PrepErrors.
func (s *FrameworkService) complete(ctx context.Context, req *preptypes.CompletionRequest) (*preptypes.CompletionResult, error) {
	s.mu.RLock()
	client, model, breaker := s.client, s.model, s.breaker
	setupErr, initialized := s.setupErr, s.initialized
	s.mu.RUnlock()

	if !initialized {
		return nil, preptypes.NewError(preptypes.ErrUnknown, fmt.Errorf("framework service not initialized"))
	}
	if setupErr != nil {
		return nil, classifyModelError(setupErr)
	}
	req.Model = model

	value, err := breaker.Execute(func() (interface{}, error) {
		return client.GenerateCompletion(ctx, req)
	})
	if err != nil {
		return nil, classifyModelError(err)
	}
	completion, _ := value.(*preptypes.CompletionResult)
	if completion == nil {
		completion = &preptypes.CompletionResult{}
	}
	return completion, nil
}

// classifyModelError maps a client failure onto the user-facing taxonomy.
// The underlying error is kept for logs only.
func classifyModelError(err error) error {
	var prepErr *preptypes.PrepError
	if errors.As(err, &prepErr) {
		return prepErr
	}

	var providerErr *preptypes.ProviderError
	if errors.As(err, &providerErr) && providerErr.AuthFailure {
		logger.Error("Provider rejected credentials", "provider", providerErr.Provider, "status", providerErr.StatusCode)
		logLastExchange()
		return preptypes.NewError(preptypes.ErrAuthConfiguration, err)
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		logger.Warn("Model call short-circuited", "error", err)
	} else {
		logger.Error("Model call failed", "error", err)
		logLastExchange()
	}
	return preptypes.NewError(preptypes.ErrTransport, err)
}

// logLastExchange writes the sanitized provider round trip behind a failure to the
// debug log. The raw body can hold provider internals, so it never reaches users.
func logLastExchange() {
	transport, err := lookup[*DebugTransportService](GetGlobalRegistry(), "debug-transport")
	if err != nil {
		return
	}
	if exchange := transport.LastExchangeJSON(); exchange != "" {
		logger.Debug("Last provider exchange", "exchange", exchange)
	}
}
