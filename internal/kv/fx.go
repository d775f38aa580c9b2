package kv

import (
	"context"
	"io"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/spicyhq/peppers/internal/config"
	"github.com/spicyhq/peppers/internal/observability/metrics"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       config.Config
	Log       *zap.Logger
	Metrics   *metrics.Metrics `optional:"true"`
}

// New selects the configured Store implementation and ties its lifetime to
// the application. One backend client per process.
func New(p Params) (Store, error) {
	lc, cfg := p.Lifecycle, p.Cfg
	log := p.Log.Named("kv")

	var (
		store  Store
		closer io.Closer
	)

	switch cfg.Backend {
	case config.BackendBadger:
		badgerStore, berr := NewBadgerStore(BadgerConfig{
			Path:   cfg.BadgerPath,
			Logger: log,
		})
		if berr != nil {
			return nil, berr
		}
		store, closer = badgerStore, badgerStore
		log.Info("using badger backend", zap.String("path", cfg.BadgerPath))
	case config.BackendMemory:
		store = NewMemoryStore()
		log.Warn("using in-memory backend, data will not survive restarts")
	default:
		redisStore, rerr := NewRedisStore(RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if rerr != nil {
			return nil, rerr
		}
		store, closer = redisStore, redisStore
		log.Info("using redis backend", zap.String("addr", cfg.RedisAddr))
	}

	raw := store
	if p.Metrics != nil {
		store = InstrumentStore(store, p.Metrics)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if pinger, ok := raw.(interface{ Ping(context.Context) error }); ok {
				return pinger.Ping(ctx)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if closer != nil {
				return closer.Close()
			}
			return nil
		},
	})

	return store, nil
}

var Module = fx.Module("kv.store",
	fx.Provide(New),
)
