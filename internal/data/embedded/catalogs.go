// Package embedded provides access to embedded catalog data files.
package embedded

import _ "embed"

// ProviderCatalogData contains the embedded provider and model catalog YAML data.
//
//go:embed providers.yaml
var ProviderCatalogData []byte
