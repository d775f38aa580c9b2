// Package notify turns the per-tenant revision counter into a stream of
// change events. Each subscriber runs its own polling loop; there is no
// shared fan-out state beyond the process-local revision cache.
package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Event is what subscribers receive. Revision is the tenant's counter at the
// time of the poll; Reason says why the event was emitted.
type Event struct {
	Revision int64  `json:"revision"`
	Reason   string `json:"reason"`
}

const (
	// ReasonCurrent accompanies the initial event on a new subscription.
	ReasonCurrent = "current"
	// ReasonUpdated accompanies a revision change.
	ReasonUpdated = "updated"
	// ReasonError accompanies a failed poll; the loop keeps running.
	ReasonError = "error"
)

// Sink carries events to one subscriber. A Send error means the transport is
// gone and is the only condition that terminates a subscription from inside.
type Sink interface {
	Send(event Event) error
}

// RevisionReader is the polled side. Satisfied by revision.Tracker and by
// the cached reader that fronts it.
type RevisionReader interface {
	Get(ctx context.Context, tenantID string) (int64, error)
}

// Subscription states. A loop is CONNECTING until the first successful
// revision read, STREAMING between polls, ERROR_BACKOFF after a failed poll,
// and CLOSED, terminally, on cancellation or a dead sink.
type state string

const (
	stateConnecting   state = "connecting"
	stateStreaming    state = "streaming"
	stateErrorBackoff state = "error_backoff"
	stateClosed       state = "closed"
)

// Observer receives loop telemetry. All methods must be nil-receiver safe.
type Observer interface {
	OnPoll(tenantID string)
	OnEvent(tenantID string, reason string)
	OnPollError(tenantID string)
}

// Notifier builds subscription loops over a shared RevisionReader. Intervals
// are read through funcs so a hot-reloaded config applies to live loops.
type Notifier struct {
	reader   RevisionReader
	log      *zap.Logger
	observer Observer

	pollInterval      func() time.Duration
	backoffMultiplier func() int
}

type Options struct {
	PollInterval      func() time.Duration
	BackoffMultiplier func() int
	Observer          Observer
}

func New(reader RevisionReader, log *zap.Logger, opts Options) *Notifier {
	if opts.PollInterval == nil {
		opts.PollInterval = func() time.Duration { return time.Second }
	}
	if opts.BackoffMultiplier == nil {
		opts.BackoffMultiplier = func() int { return 5 }
	}
	return &Notifier{
		reader:            reader,
		log:               log.Named("notify"),
		observer:          opts.Observer,
		pollInterval:      opts.PollInterval,
		backoffMultiplier: opts.BackoffMultiplier,
	}
}

// Subscribe runs one subscription loop until the context is cancelled (clean
// close, nil return) or the sink rejects a write (the transport is gone).
// Backend read errors are transient: the subscriber gets an error event and
// the loop resumes after a longer backoff interval.
func (n *Notifier) Subscribe(ctx context.Context, tenantID string, sink Sink) error {
	log := n.log.With(zap.String("tenant_id", tenantID))
	log.Debug("subscription opened")

	var (
		lastSeen    int64
		sentCurrent bool
	)
	st := stateConnecting

	for st != stateClosed {
		switch st {
		case stateConnecting:
			rev, err := n.poll(ctx, tenantID)
			if err != nil {
				if ctx.Err() != nil {
					st = stateClosed
					continue
				}
				if werr := sink.Send(Event{Revision: lastSeen, Reason: ReasonError}); werr != nil {
					return fmt.Errorf("notify subscriber: %w", werr)
				}
				n.observeEvent(tenantID, ReasonError)
				st = stateErrorBackoff
				continue
			}
			lastSeen = rev
			if werr := sink.Send(Event{Revision: rev, Reason: ReasonCurrent}); werr != nil {
				return fmt.Errorf("notify subscriber: %w", werr)
			}
			n.observeEvent(tenantID, ReasonCurrent)
			sentCurrent = true
			st = stateStreaming

		case stateStreaming:
			if !n.wait(ctx, n.pollInterval()) {
				st = stateClosed
				continue
			}
			rev, err := n.poll(ctx, tenantID)
			if err != nil {
				if ctx.Err() != nil {
					st = stateClosed
					continue
				}
				log.Warn("revision poll failed", zap.Error(err))
				if werr := sink.Send(Event{Revision: lastSeen, Reason: ReasonError}); werr != nil {
					return fmt.Errorf("notify subscriber: %w", werr)
				}
				n.observeEvent(tenantID, ReasonError)
				st = stateErrorBackoff
				continue
			}
			if rev != lastSeen {
				if werr := sink.Send(Event{Revision: rev, Reason: ReasonUpdated}); werr != nil {
					return fmt.Errorf("notify subscriber: %w", werr)
				}
				n.observeEvent(tenantID, ReasonUpdated)
				lastSeen = rev
			}

		case stateErrorBackoff:
			if !n.wait(ctx, n.backoffInterval()) {
				st = stateClosed
				continue
			}
			// Until a snapshot event has gone out, recovery restarts the
			// handshake so the subscriber's first revision arrives as one.
			if sentCurrent {
				st = stateStreaming
			} else {
				st = stateConnecting
			}
		}
	}

	log.Debug("subscription closed")
	return nil
}

func (n *Notifier) poll(ctx context.Context, tenantID string) (int64, error) {
	if n.observer != nil {
		n.observer.OnPoll(tenantID)
	}
	rev, err := n.reader.Get(ctx, tenantID)
	if err != nil && n.observer != nil {
		n.observer.OnPollError(tenantID)
	}
	return rev, err
}

func (n *Notifier) observeEvent(tenantID, reason string) {
	if n.observer != nil {
		n.observer.OnEvent(tenantID, reason)
	}
}

func (n *Notifier) backoffInterval() time.Duration {
	return n.pollInterval() * time.Duration(n.backoffMultiplier())
}

// wait sleeps for d, returning false when the context was cancelled first.
func (n *Notifier) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
