package revision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spicyhq/peppers/internal/kv"
)

func TestGetInitializesMissingCounter(t *testing.T) {
	store := kv.NewMemoryStore()
	tracker := NewTracker(store, zap.NewNop())

	rev, err := tracker.Get(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)

	raw, err := store.Get(context.Background(), "org-1"+KeySuffix)
	require.NoError(t, err)
	assert.Equal(t, "1", string(raw))
}

func TestIncrementReturnsPreIncrementValue(t *testing.T) {
	store := kv.NewMemoryStore()
	tracker := NewTracker(store, zap.NewNop())
	ctx := context.Background()

	previous, err := tracker.Increment(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), previous)

	previous, err = tracker.Increment(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), previous)

	rev, err := tracker.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rev)
}

func TestGetRecoversFromCorruptCounter(t *testing.T) {
	store := kv.NewMemoryStore()
	tracker := NewTracker(store, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "org-1"+KeySuffix, []byte("not a number")))

	rev, err := tracker.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)
}

func TestResetRemovesCounter(t *testing.T) {
	store := kv.NewMemoryStore()
	tracker := NewTracker(store, zap.NewNop())
	ctx := context.Background()

	_, err := tracker.Increment(ctx, "org-1")
	require.NoError(t, err)
	require.NoError(t, tracker.Reset(ctx, "org-1"))

	rev, err := tracker.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)
}
