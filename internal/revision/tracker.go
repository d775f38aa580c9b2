// Package revision maintains the per-tenant change counter used as a cheap
// "has anything changed" signal by the streaming layer. The counter lives in
// the key-value backend under its own key, so every process sharing the
// backend observes the same value.
package revision

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spicyhq/peppers/internal/kv"
	"go.uber.org/zap"
)

// KeySuffix is appended to the tenant id to form the counter key. The name is
// part of the backend key layout consumed by the streaming endpoint.
const KeySuffix = "_sse_counter"

// Tracker reads and advances a tenant's revision counter.
type Tracker interface {
	// Get returns the current revision, initializing it to 1 when absent.
	Get(ctx context.Context, tenantID string) (int64, error)
	// Increment advances the counter by one and returns the pre-increment
	// value. Called exactly once per successful mutation, never on reads.
	Increment(ctx context.Context, tenantID string) (int64, error)
	// Reset removes the counter; the next Get re-initializes it.
	Reset(ctx context.Context, tenantID string) error
}

type tracker struct {
	store kv.Store
	log   *zap.Logger
}

func NewTracker(store kv.Store, log *zap.Logger) Tracker {
	return &tracker{
		store: store,
		log:   log.Named("revision.tracker"),
	}
}

func key(tenantID string) string {
	return tenantID + KeySuffix
}

func (t *tracker) Get(ctx context.Context, tenantID string) (int64, error) {
	raw, err := t.store.Get(ctx, key(tenantID))
	if errors.Is(err, kv.ErrNotFound) {
		return t.reseed(ctx, tenantID)
	}
	if err != nil {
		return 0, err
	}

	value, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		t.log.Warn("revision counter is corrupt, resetting",
			zap.String("tenant_id", tenantID),
			zap.String("raw", string(raw)),
		)
		return t.reseed(ctx, tenantID)
	}
	return value, nil
}

func (t *tracker) Increment(ctx context.Context, tenantID string) (int64, error) {
	current, err := t.Get(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	next := strconv.FormatInt(current+1, 10)
	if err := t.store.Put(ctx, key(tenantID), []byte(next)); err != nil {
		return 0, fmt.Errorf("increment revision for %s: %w", tenantID, err)
	}
	t.log.Debug("revision incremented",
		zap.String("tenant_id", tenantID),
		zap.Int64("previous", current),
	)
	return current, nil
}

func (t *tracker) Reset(ctx context.Context, tenantID string) error {
	return t.store.Delete(ctx, key(tenantID))
}

func (t *tracker) reseed(ctx context.Context, tenantID string) (int64, error) {
	if err := t.store.Put(ctx, key(tenantID), []byte("1")); err != nil {
		return 0, fmt.Errorf("initialize revision for %s: %w", tenantID, err)
	}
	return 1, nil
}
