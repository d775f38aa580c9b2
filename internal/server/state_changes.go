package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spicyhq/peppers/internal/notify"
	"github.com/spicyhq/peppers/pkg/tenantctx"
)

// StreamStateChanges serves the change stream over SSE. The underlying
// subscription loop polls the tenant's revision counter; this handler only
// frames its events and keeps the connection alive between them.
func (s *Server) StreamStateChanges(c *gin.Context) {
	if s.notifier == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	tenantID, _ := tenantctx.TenantID(c.Request.Context())

	writer := c.Writer
	headers := writer.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := writer.(http.Flusher)
	if !ok {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	if _, err := io.WriteString(writer, "retry: 2000\n\n"); err != nil {
		return
	}
	flusher.Flush()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sink := &sseSink{writer: writer, flusher: flusher}

	s.metrics.SubscriberOpened()
	defer s.metrics.SubscriberClosed()

	go s.heartbeat(ctx, cancel, sink)

	if err := s.notifier.Subscribe(ctx, tenantID, sink); err != nil {
		s.log.Debug("change stream ended", zap.String("tenant_id", tenantID), zap.Error(err))
	}
}

// heartbeat emits SSE comments so intermediaries do not reap quiet
// connections. A failed write means the client is gone.
func (s *Server) heartbeat(ctx context.Context, cancel context.CancelFunc, sink *sseSink) {
	ticker := time.NewTicker(s.holder.Get().HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sink.comment("heartbeat"); err != nil {
				cancel()
				return
			}
		}
	}
}

// sseSink frames events as SSE data lines. The mutex covers the heartbeat
// goroutine writing the same connection.
type sseSink struct {
	mu      sync.Mutex
	writer  io.Writer
	flusher http.Flusher
}

func (s *sseSink) Send(event notify.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.writer, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseSink) comment(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.writer, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
