package services

import (
	"context"
	"fmt"
	"sync"

	"examprep/internal/logger"
	"examprep/internal/storage"
	"examprep/pkg/preptypes"
)

// StorageService owns the configured key-value backend for the process.
type StorageService struct {
	mu          sync.RWMutex
	store       storage.Store
	initialized bool
}

// NewStorageService creates a StorageService; the backend is opened in Initialize.
func NewStorageService() *StorageService {
	return &StorageService{}
}

// NewStorageServiceWithStore wraps an already opened backend.
func NewStorageServiceWithStore(store storage.Store) *StorageService {
	return &StorageService{store: store}
}

// Name returns the service name "storage" for registration.
func (s *StorageService) Name() string {
	return "storage"
}

// Initialize opens the backend named by the configuration service.
func (s *StorageService) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if s.store == nil {
		configService, err := lookup[*ConfigurationService](GetGlobalRegistry(), "configuration")
		if err != nil {
			return err
		}
		cfg, err := configService.AppConfig()
		if err != nil {
			return err
		}

		store, err := storage.Open(context.Background(), cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
		}
		s.store = store
	}

	s.initialized = true
	logger.ServiceOperation("storage", "initialize", "completed")
	return nil
}

// Store returns the process-wide storage port.
func (s *StorageService) Store() (preptypes.Storage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, fmt.Errorf("storage service not initialized")
	}
	return s.store, nil
}

// Namespace returns a view of the store isolated under namespace.
func (s *StorageService) Namespace(namespace string) (preptypes.Storage, error) {
	base, err := s.Store()
	if err != nil {
		return nil, err
	}
	return storage.WithNamespace(base, namespace), nil
}

// Close releases the backend.
func (s *StorageService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	s.initialized = false
	return err
}
