package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examprep/internal/storage"
	"examprep/pkg/preptypes"
)

func TestHistoryService_RecordOrderingAndDedupe(t *testing.T) {
	ctx := context.Background()
	history := NewHistoryService(storage.NewMemoryStore(), 0)

	for _, topic := range []string{"Uniform Civil Code", "Monetary Policy", "Federalism"} {
		_, err := history.RecordTopic(ctx, "a@b.c", topic)
		require.NoError(t, err)
	}

	list, err := history.List(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"Federalism", "Monetary Policy", "Uniform Civil Code"}, list)

	list, err = history.RecordTopic(ctx, "a@b.c", "Uniform Civil Code")
	require.NoError(t, err)
	assert.Equal(t, []string{"Uniform Civil Code", "Federalism", "Monetary Policy"}, list)
}

func TestHistoryService_CapEvictsOldest(t *testing.T) {
	ctx := context.Background()
	history := NewHistoryService(storage.NewMemoryStore(), DefaultHistoryLimit)

	for i := 1; i <= DefaultHistoryLimit; i++ {
		list, err := history.RecordTopic(ctx, "a@b.c", fmt.Sprintf("topic %d", i))
		require.NoError(t, err)
		require.Len(t, list, i)
	}

	list, err := history.RecordTopic(ctx, "a@b.c", "topic 51")
	require.NoError(t, err)
	require.Len(t, list, DefaultHistoryLimit)
	assert.Equal(t, "topic 51", list[0])
	assert.Equal(t, "topic 2", list[len(list)-1])
	assert.NotContains(t, list, "topic 1")

	list, err = history.RecordTopic(ctx, "a@b.c", "topic 30")
	require.NoError(t, err)
	assert.Len(t, list, DefaultHistoryLimit)
	assert.Equal(t, "topic 30", list[0])
}

func TestHistoryService_PerAccount(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	history := NewHistoryService(store, 5)

	_, err := history.RecordTopic(ctx, "one@b.c", "A")
	require.NoError(t, err)
	_, err = history.RecordTopic(ctx, "two@b.c", "B")
	require.NoError(t, err)

	raw, ok, err := store.Get(ctx, storage.HistoryKey("one@b.c"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `["A"]`, raw)

	list, err := history.List(ctx, "TWO@b.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, list)
}

func TestHistoryService_ListMissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	history := NewHistoryService(store, 5)

	list, err := history.List(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	require.NoError(t, store.Set(ctx, storage.HistoryKey("a@b.c"), "{not a list"))
	list, err = history.List(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = history.RecordTopic(ctx, "a@b.c", "Fresh")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fresh"}, list)
}

func TestHistoryService_Clear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	history := NewHistoryService(store, 5)

	_, err := history.RecordTopic(ctx, "a@b.c", "A")
	require.NoError(t, err)
	require.NoError(t, history.Clear(ctx, "a@b.c"))

	_, ok, err := store.Get(ctx, storage.HistoryKey("a@b.c"))
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, history.Clear(ctx, "a@b.c"))
}

func TestHistoryService_RejectsBlankInput(t *testing.T) {
	history := NewHistoryService(storage.NewMemoryStore(), 5)

	_, err := history.RecordTopic(context.Background(), "a@b.c", "   ")
	assert.True(t, preptypes.IsKind(err, preptypes.ErrInvalidInput))
	_, err = history.RecordTopic(context.Background(), "", "topic")
	assert.True(t, preptypes.IsKind(err, preptypes.ErrInvalidInput))
}
