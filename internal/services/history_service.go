package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"examprep/internal/logger"
	"examprep/internal/storage"
	"examprep/pkg/preptypes"
)

// DefaultHistoryLimit caps how many topics are remembered per account.
const DefaultHistoryLimit = 50

// HistoryService keeps the most-recent-first list of topics each account generated.
type HistoryService struct {
	store preptypes.Storage
	limit int
}

// NewHistoryService creates a HistoryService over store. A non-positive limit selects DefaultHistoryLimit.
func NewHistoryService(store preptypes.Storage, limit int) *HistoryService {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryService{store: store, limit: limit}
}

// RecordTopic moves topic to the front of the account's history, dropping any earlier
// copy and evicting the oldest entries beyond the limit. It returns the new list.
func (h *HistoryService) RecordTopic(ctx context.Context, email, topic string) ([]string, error) {
	email = NormalizeEmail(email)
	topic = strings.TrimSpace(topic)
	if email == "" || topic == "" {
		return nil, preptypes.NewError(preptypes.ErrInvalidInput, nil)
	}

	previous, err := h.List(ctx, email)
	if err != nil {
		return nil, err
	}

	updated := make([]string, 0, len(previous)+1)
	updated = append(updated, topic)
	for _, item := range previous {
		if item != topic {
			updated = append(updated, item)
		}
	}
	if len(updated) > h.limit {
		updated = updated[:h.limit]
	}

	data, err := json.Marshal(updated)
	if err != nil {
		return nil, preptypes.NewError(preptypes.ErrUnknown, err)
	}
	if err := h.store.Set(ctx, storage.HistoryKey(email), string(data)); err != nil {
		return nil, preptypes.NewError(preptypes.ErrUnknown, fmt.Errorf("write history: %w", err))
	}

	logger.StorageOperation("history", "record", storage.HistoryKey(email))
	return updated, nil
}

// List returns the account's history, most recent first. A corrupt record reads as empty.
func (h *HistoryService) List(ctx context.Context, email string) ([]string, error) {
	key := storage.HistoryKey(NormalizeEmail(email))
	value, ok, err := h.store.Get(ctx, key)
	if err != nil {
		return nil, preptypes.NewError(preptypes.ErrUnknown, fmt.Errorf("read history: %w", err))
	}
	if !ok {
		return []string{}, nil
	}

	var topics []string
	if err := json.Unmarshal([]byte(value), &topics); err != nil {
		logger.Warn("Failed to parse history", "key", key, "error", err)
		return []string{}, nil
	}
	if topics == nil {
		topics = []string{}
	}
	return topics, nil
}

// Clear forgets the account's history.
func (h *HistoryService) Clear(ctx context.Context, email string) error {
	key := storage.HistoryKey(NormalizeEmail(email))
	if err := h.store.Remove(ctx, key); err != nil {
		return preptypes.NewError(preptypes.ErrUnknown, fmt.Errorf("clear history: %w", err))
	}
	logger.StorageOperation("history", "clear", key)
	return nil
}
