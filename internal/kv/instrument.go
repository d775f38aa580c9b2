package kv

import (
	"context"
	"errors"
)

// OpRecorder receives one record per backend operation.
type OpRecorder interface {
	RecordBackendOp(operation, outcome string)
}

// InstrumentStore wraps a Store so every operation is recorded. A nil
// recorder returns the store unchanged.
func InstrumentStore(next Store, rec OpRecorder) Store {
	if rec == nil {
		return next
	}
	return &instrumentedStore{next: next, rec: rec}
}

type instrumentedStore struct {
	next Store
	rec  OpRecorder
}

func (s *instrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.next.Get(ctx, key)
	s.rec.RecordBackendOp("get", outcome(err))
	return value, err
}

func (s *instrumentedStore) Put(ctx context.Context, key string, value []byte) error {
	err := s.next.Put(ctx, key, value)
	s.rec.RecordBackendOp("put", outcome(err))
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, key string) error {
	err := s.next.Delete(ctx, key)
	s.rec.RecordBackendOp("delete", outcome(err))
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
