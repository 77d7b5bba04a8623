// Package storage implements the key-value port the account store and topic
// history are built on. Every backend stores whole string values per key.
package storage

import (
	"context"
	"fmt"
	"strings"

	"examprep/internal/logger"
	"examprep/pkg/preptypes"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Record keys shared by every backend.
const (
	KeyVerifiedAccounts   = "upsc-ai-users"
	KeyUnverifiedAccounts = "upsc-ai-unverified-users"
	KeySession            = "upsc-ai-session"
	historyKeyPrefix      = "upscFrameworkHistory_"
)

// HistoryKey returns the per-account history key for email.
func HistoryKey(email string) string {
	return historyKeyPrefix + email
}

// Config selects and parameterizes a backend.
type Config struct {
	Backend    string
	Dir        string // file backend directory
	RedisURL   string // redis://[:password@]host:port/db
	SQLitePath string
}

// Store is a Storage that owns resources which must be released.
type Store interface {
	preptypes.Storage
	Close() error
}

// Open returns the backend named by cfg.Backend. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendFile
	}
	logger.Debug("Opening storage backend", "backend", backend)

	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(cfg.Dir)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL)
	case BackendSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend '%s' (supported: memory, file, redis, sqlite)", cfg.Backend)
	}
}
