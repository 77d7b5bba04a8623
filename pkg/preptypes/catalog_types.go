package preptypes

// ModelCatalogEntry describes one model a provider offers.
type ModelCatalogEntry struct {
	ID          string `yaml:"id" json:"id"`
	DisplayName string `yaml:"display_name" json:"displayName"`
	Description string `yaml:"description" json:"description"`
}

// ProviderCatalogEntry describes an LLM provider and how examprep reaches it.
type ProviderCatalogEntry struct {
	ID            string              `yaml:"id" json:"id"`
	DisplayName   string              `yaml:"display_name" json:"displayName"`
	APIKeySetting string              `yaml:"api_key_setting" json:"apiKeySetting"`
	DefaultModel  string              `yaml:"default_model" json:"defaultModel"`
	Search        string              `yaml:"search" json:"search"` // grounding mechanism the client uses
	Models        []ModelCatalogEntry `yaml:"models" json:"models"`
}
