package storage

import (
	"context"

	"examprep/pkg/preptypes"
)

// Namespaced scopes every key of an underlying Storage under a prefix.
// The HTTP server gives each client id its own namespace, the way each
// browser has its own local storage.
type Namespaced struct {
	base   preptypes.Storage
	prefix string
}

// WithNamespace returns a view of base where key k is stored as "<namespace>/k".
func WithNamespace(base preptypes.Storage, namespace string) *Namespaced {
	return &Namespaced{base: base, prefix: namespace + "/"}
}

// Get returns the value stored under the namespaced key.
func (n *Namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.base.Get(ctx, n.prefix+key)
}

// Set stores value under the namespaced key.
func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.base.Set(ctx, n.prefix+key, value)
}

// Remove deletes the namespaced key.
func (n *Namespaced) Remove(ctx context.Context, key string) error {
	return n.base.Remove(ctx, n.prefix+key)
}
