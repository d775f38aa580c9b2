package notify

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/spicyhq/peppers/internal/config"
	"github.com/spicyhq/peppers/internal/observability/metrics"
	"github.com/spicyhq/peppers/internal/revision"
)

type Params struct {
	fx.In

	Reader  *revision.CachedReader
	Holder  *config.StreamConfigHolder
	Metrics *metrics.Metrics `optional:"true"`
	Log     *zap.Logger
}

func Provide(p Params) *Notifier {
	opts := Options{
		PollInterval:      func() time.Duration { return p.Holder.Get().PollInterval },
		BackoffMultiplier: func() int { return p.Holder.Get().ErrorBackoffMultiplier },
	}
	if p.Metrics != nil {
		opts.Observer = p.Metrics
	}
	return New(p.Reader, p.Log, opts)
}

var Module = fx.Module("notify",
	fx.Provide(Provide),
)
