package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedReader struct {
	mu      sync.Mutex
	results []readResult
	idx     int
}

type readResult struct {
	rev int64
	err error
}

func (r *scriptedReader) Get(ctx context.Context, tenantID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.results[r.idx]
	if r.idx < len(r.results)-1 {
		r.idx++
	}
	return res.rev, res.err
}

// collectSink cancels the subscription once it has seen enough events.
type collectSink struct {
	mu     sync.Mutex
	events []Event
	limit  int
	cancel context.CancelFunc

	failAfter int
}

func (s *collectSink) Send(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAfter > 0 && len(s.events)+1 > s.failAfter {
		return errors.New("client went away")
	}
	s.events = append(s.events, event)
	if s.limit > 0 && len(s.events) >= s.limit {
		s.cancel()
	}
	return nil
}

func (s *collectSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func fastOptions() Options {
	return Options{
		PollInterval:      func() time.Duration { return 2 * time.Millisecond },
		BackoffMultiplier: func() int { return 2 },
	}
}

func TestSubscribeEmitsCurrentRevisionFirst(t *testing.T) {
	reader := &scriptedReader{results: []readResult{{rev: 4}}}
	n := New(reader, zap.NewNop(), fastOptions())

	ctx, cancel := context.WithCancel(context.Background())
	sink := &collectSink{limit: 1, cancel: cancel}

	err := n.Subscribe(ctx, "org-1", sink)
	require.NoError(t, err)

	events := sink.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, Event{Revision: 4, Reason: ReasonCurrent}, events[0])
}

func TestSubscribeEmitsUpdateOnRevisionChange(t *testing.T) {
	reader := &scriptedReader{results: []readResult{{rev: 1}, {rev: 1}, {rev: 2}}}
	n := New(reader, zap.NewNop(), fastOptions())

	ctx, cancel := context.WithCancel(context.Background())
	sink := &collectSink{limit: 2, cancel: cancel}

	err := n.Subscribe(ctx, "org-1", sink)
	require.NoError(t, err)

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, Event{Revision: 1, Reason: ReasonCurrent}, events[0])
	assert.Equal(t, Event{Revision: 2, Reason: ReasonUpdated}, events[1])
}

func TestSubscribeStaysQuietWhileUnchanged(t *testing.T) {
	reader := &scriptedReader{results: []readResult{{rev: 3}}}
	n := New(reader, zap.NewNop(), fastOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	sink := &collectSink{cancel: cancel}

	err := n.Subscribe(ctx, "org-1", sink)
	require.NoError(t, err)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ReasonCurrent, events[0].Reason)
}

func TestSubscribeRecoversFromPollErrors(t *testing.T) {
	reader := &scriptedReader{results: []readResult{
		{rev: 1},
		{err: errors.New("backend down")},
		{rev: 2},
	}}
	n := New(reader, zap.NewNop(), fastOptions())

	ctx, cancel := context.WithCancel(context.Background())
	sink := &collectSink{limit: 3, cancel: cancel}

	err := n.Subscribe(ctx, "org-1", sink)
	require.NoError(t, err)

	events := sink.Events()
	require.Len(t, events, 3)
	assert.Equal(t, ReasonCurrent, events[0].Reason)
	assert.Equal(t, ReasonError, events[1].Reason)
	// The error event repeats the last seen revision.
	assert.Equal(t, int64(1), events[1].Revision)
	assert.Equal(t, Event{Revision: 2, Reason: ReasonUpdated}, events[2])
}

func TestSubscribeTerminatesWhenSinkFails(t *testing.T) {
	reader := &scriptedReader{results: []readResult{{rev: 1}, {rev: 2}}}
	n := New(reader, zap.NewNop(), fastOptions())

	ctx := context.Background()
	sink := &collectSink{failAfter: 1, cancel: func() {}}

	err := n.Subscribe(ctx, "org-1", sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client went away")
}

func TestSubscribeReturnsNilOnCancellation(t *testing.T) {
	reader := &scriptedReader{results: []readResult{{rev: 1}}}
	n := New(reader, zap.NewNop(), fastOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &collectSink{cancel: func() {}}

	err := n.Subscribe(ctx, "org-1", sink)
	require.NoError(t, err)
}

func TestSubscribeRecoversFromFailedHandshake(t *testing.T) {
	reader := &scriptedReader{results: []readResult{
		{err: errors.New("backend down")},
		{rev: 7},
	}}
	n := New(reader, zap.NewNop(), fastOptions())

	ctx, cancel := context.WithCancel(context.Background())
	sink := &collectSink{limit: 2, cancel: cancel}

	err := n.Subscribe(ctx, "org-1", sink)
	require.NoError(t, err)

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, Event{Revision: 0, Reason: ReasonError}, events[0])
	// The first revision after recovery is still the snapshot event.
	assert.Equal(t, Event{Revision: 7, Reason: ReasonCurrent}, events[1])
}
