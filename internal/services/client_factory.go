package services

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"examprep/internal/logger"
	"examprep/pkg/preptypes"
)

// ClientFactoryService creates and caches LLM clients per provider and API key.
type ClientFactoryService struct {
	initialized bool
	clients     map[string]preptypes.LLMClient
	transport   http.RoundTripper
	baseURLs    map[string]string
	mutex       sync.RWMutex
}

// NewClientFactoryService creates a new ClientFactoryService instance.
func NewClientFactoryService() *ClientFactoryService {
	return &ClientFactoryService{
		clients:  make(map[string]preptypes.LLMClient),
		baseURLs: make(map[string]string),
	}
}

// Name returns the service name "client_factory" for registration.
func (f *ClientFactoryService) Name() string {
	return "client_factory"
}

// Initialize picks up the debug transport when one is registered.
func (f *ClientFactoryService) Initialize() error {
	logger.ServiceOperation("client_factory", "initialize", "starting")

	if debugService, err := lookup[*DebugTransportService](GetGlobalRegistry(), "debug-transport"); err == nil {
		f.SetDebugTransport(debugService.CreateTransport())
	}

	f.mutex.Lock()
	f.initialized = true
	f.mutex.Unlock()

	logger.ServiceOperation("client_factory", "initialize", "completed")
	return nil
}

// SetDebugTransport routes every client created afterwards through transport.
func (f *ClientFactoryService) SetDebugTransport(transport http.RoundTripper) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.transport = transport
	f.clients = make(map[string]preptypes.LLMClient)
}

// SetBaseURL points a provider at a different endpoint, e.g. a proxy or a test server.
func (f *ClientFactoryService) SetBaseURL(provider, baseURL string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.baseURLs[strings.ToLower(provider)] = baseURL
	f.clients = make(map[string]preptypes.LLMClient)
}

// GetClientForProvider returns an LLM client for the specified provider and API key.
func (f *ClientFactoryService) GetClientForProvider(provider, apiKey string) (preptypes.LLMClient, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))

	f.mutex.RLock()
	initialized := f.initialized
	f.mutex.RUnlock()
	if !initialized {
		return nil, fmt.Errorf("client factory service not initialized")
	}
	if provider == "" {
		return nil, fmt.Errorf("provider cannot be empty")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key cannot be empty for provider '%s'", provider)
	}

	cacheKey := fmt.Sprintf("%s:%s", provider, apiKey)

	f.mutex.RLock()
	if client, exists := f.clients[cacheKey]; exists {
		f.mutex.RUnlock()
		logger.Debug("Returning cached provider client", "provider", provider)
		return client, nil
	}
	f.mutex.RUnlock()

	f.mutex.Lock()
	defer f.mutex.Unlock()

	// Double-check pattern
	if client, exists := f.clients[cacheKey]; exists {
		return client, nil
	}

	baseURL := f.baseURLs[provider]
	var client preptypes.LLMClient
	switch provider {
	case "gemini":
		c := NewGeminiClient(apiKey)
		c.SetDebugTransport(f.transport)
		if baseURL != "" {
			c.SetBaseURL(baseURL)
		}
		client = c
	case "openai":
		c := NewOpenAIClient(apiKey)
		c.SetDebugTransport(f.transport)
		if baseURL != "" {
			c.SetBaseURL(baseURL)
		}
		client = c
	case "anthropic":
		c := NewAnthropicClient(apiKey)
		c.SetDebugTransport(f.transport)
		if baseURL != "" {
			c.SetBaseURL(baseURL)
		}
		client = c
	default:
		return nil, fmt.Errorf("unsupported provider '%s'. Supported providers: gemini, openai, anthropic", provider)
	}

	f.clients[cacheKey] = client
	logger.Debug("Created new provider client", "provider", provider, "debug_transport", f.transport != nil)
	return client, nil
}

// ResolveClient builds the client and model for the configured provider.
// A missing API key is reported as an authentication configuration error.
func (f *ClientFactoryService) ResolveClient(cfg AppConfig) (preptypes.LLMClient, string, error) {
	registry := GetGlobalRegistry()

	configService, err := lookup[*ConfigurationService](registry, "configuration")
	if err != nil {
		return nil, "", err
	}
	catalog, err := lookup[*CatalogService](registry, "catalog")
	if err != nil {
		return nil, "", err
	}

	model, err := catalog.ResolveModel(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, "", preptypes.NewErrorf(preptypes.ErrAuthConfiguration, err, "Unsupported AI provider %q.", cfg.Provider)
	}

	apiKey, err := configService.GetAPIKey(cfg.Provider)
	if err != nil {
		return nil, "", preptypes.NewError(preptypes.ErrAuthConfiguration, err)
	}

	client, err := f.GetClientForProvider(cfg.Provider, apiKey)
	if err != nil {
		return nil, "", err
	}
	return client, model, nil
}
