package revision

import (
	"time"

	"go.uber.org/fx"

	"github.com/spicyhq/peppers/internal/clock"
	"github.com/spicyhq/peppers/internal/config"
)

func NewCachedReaderFromConfig(tracker Tracker, holder *config.StreamConfigHolder, clk clock.Clock) *CachedReader {
	return NewCachedReader(tracker, func() time.Duration {
		return holder.Get().RevisionCacheTTL
	}, clk)
}

var Module = fx.Module("revision",
	fx.Provide(
		NewTracker,
		NewCachedReaderFromConfig,
	),
)
