// Package kv abstracts the eventually-consistent key-value backend that
// holds all tenant state. The backend offers per-key get/put/delete only:
// no compare-and-swap, no multi-key transactions. Callers own any
// read-modify-write semantics built on top of it.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key_not_found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
