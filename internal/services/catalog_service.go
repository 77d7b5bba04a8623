package services

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"examprep/internal/data/embedded"
	"examprep/pkg/preptypes"
)

type providerCatalogFile struct {
	Providers []preptypes.ProviderCatalogEntry `yaml:"providers"`
}

// CatalogService provides the embedded provider and model catalog.
type CatalogService struct {
	providers   []preptypes.ProviderCatalogEntry
	initialized bool
}

// NewCatalogService creates a new CatalogService instance.
func NewCatalogService() *CatalogService {
	return &CatalogService{}
}

// Name returns the service name "catalog" for registration.
func (c *CatalogService) Name() string {
	return "catalog"
}

// Initialize parses the embedded catalog.
func (c *CatalogService) Initialize() error {
	if c.initialized {
		return nil
	}
	providers, err := parseProviderCatalog(embedded.ProviderCatalogData)
	if err != nil {
		return err
	}
	c.providers = providers
	c.initialized = true
	return nil
}

func parseProviderCatalog(data []byte) ([]preptypes.ProviderCatalogEntry, error) {
	var file providerCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse provider catalog: %w", err)
	}

	seen := make(map[string]bool)
	for _, p := range file.Providers {
		id := strings.ToLower(p.ID)
		if id == "" {
			return nil, fmt.Errorf("provider catalog entry without id")
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate provider ID found: %s", p.ID)
		}
		seen[id] = true
		if p.DefaultModel == "" {
			return nil, fmt.Errorf("provider %s has no default model", p.ID)
		}
	}
	return file.Providers, nil
}

// GetProviders returns every provider in catalog order.
func (c *CatalogService) GetProviders() ([]preptypes.ProviderCatalogEntry, error) {
	if !c.initialized {
		return nil, fmt.Errorf("catalog service not initialized")
	}
	return append([]preptypes.ProviderCatalogEntry(nil), c.providers...), nil
}

// GetProvider looks up a provider by id, case-insensitively.
func (c *CatalogService) GetProvider(id string) (preptypes.ProviderCatalogEntry, error) {
	if !c.initialized {
		return preptypes.ProviderCatalogEntry{}, fmt.Errorf("catalog service not initialized")
	}
	for _, p := range c.providers {
		if strings.EqualFold(p.ID, id) {
			return p, nil
		}
	}
	return preptypes.ProviderCatalogEntry{}, fmt.Errorf("unsupported provider: %s", id)
}

// ResolveModel returns model when set, otherwise the provider's default model.
func (c *CatalogService) ResolveModel(provider, model string) (string, error) {
	p, err := c.GetProvider(provider)
	if err != nil {
		return "", err
	}
	if model != "" {
		return model, nil
	}
	return p.DefaultModel, nil
}
