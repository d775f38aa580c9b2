package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract exercises the behavior every backend must share.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "k1", []byte("v1")))
	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, store.Put(ctx, "k1", []byte("v2")))
	got, err = store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, store.Delete(ctx, "k1"))
	_, err = store.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, store.Delete(ctx, "k1"))
}

func TestMemoryStoreContract(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestBadgerStoreContract(t *testing.T) {
	store, err := NewBadgerStore(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	storeContract(t, store)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value := []byte("original")
	require.NoError(t, store.Put(ctx, "k1", value))
	value[0] = 'X'

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)
}

type recordedOp struct {
	operation string
	outcome   string
}

type stubRecorder struct {
	ops []recordedOp
}

func (r *stubRecorder) RecordBackendOp(operation, outcome string) {
	r.ops = append(r.ops, recordedOp{operation: operation, outcome: outcome})
}

func TestInstrumentStoreRecordsOutcomes(t *testing.T) {
	rec := &stubRecorder{}
	store := InstrumentStore(NewMemoryStore(), rec)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "k1", []byte("v")))

	_, err = store.Get(ctx, "k1")
	require.NoError(t, err)

	assert.Equal(t, []recordedOp{
		{operation: "get", outcome: "not_found"},
		{operation: "put", outcome: "ok"},
		{operation: "get", outcome: "ok"},
	}, rec.ops)
}
