package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// StreamConfig holds the knobs for the state-change streaming loops. It is
// file-backed and hot-reloadable so poll pressure on the backend can be tuned
// without restarting connected clients.
type StreamConfig struct {
	// PollInterval is how often each streaming connection compares revisions.
	PollInterval time.Duration `mapstructure:"pollInterval"`
	// ErrorBackoffMultiplier scales PollInterval after a failed poll.
	ErrorBackoffMultiplier int `mapstructure:"errorBackoffMultiplier"`
	// RevisionCacheTTL bounds how stale the process-local revision cache may
	// be. It also bounds the latency of cross-process change propagation.
	RevisionCacheTTL time.Duration `mapstructure:"revisionCacheTTL"`
	// HeartbeatInterval is how often an SSE comment is written to keep
	// intermediaries from closing idle connections.
	HeartbeatInterval time.Duration `mapstructure:"heartbeatInterval"`
}

func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		PollInterval:           time.Second,
		ErrorBackoffMultiplier: 5,
		RevisionCacheTTL:       5 * time.Second,
		HeartbeatInterval:      15 * time.Second,
	}
}

// StreamConfigHolder exposes the current StreamConfig and refreshes it when
// the underlying file changes.
type StreamConfigHolder struct {
	current atomic.Value // holds StreamConfig
}

func NewStreamConfigHolder(log *zap.Logger) (*StreamConfigHolder, error) {
	log = log.Named("stream-config")
	v := viper.New()

	v.SetConfigName("stream")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/peppers")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PEPPERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultStreamConfig()
	v.SetDefault("stream.pollInterval", defaults.PollInterval)
	v.SetDefault("stream.errorBackoffMultiplier", defaults.ErrorBackoffMultiplier)
	v.SetDefault("stream.revisionCacheTTL", defaults.RevisionCacheTTL)
	v.SetDefault("stream.heartbeatInterval", defaults.HeartbeatInterval)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg StreamConfig
	if err := v.UnmarshalKey("stream", &cfg); err != nil {
		return nil, err
	}
	if err := validateStreamConfig(cfg); err != nil {
		return nil, err
	}

	holder := &StreamConfigHolder{}
	holder.current.Store(cfg)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated StreamConfig
			if err := v.UnmarshalKey("stream", &updated); err != nil {
				log.Warn("reload failed", zap.Error(err))
				return
			}
			if err := validateStreamConfig(updated); err != nil {
				log.Warn("invalid config ignored", zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("reloaded", zap.String("file", e.Name))
		})
	}

	return holder, nil
}

func (h *StreamConfigHolder) Get() StreamConfig {
	return h.current.Load().(StreamConfig)
}

func validateStreamConfig(cfg StreamConfig) error {
	if cfg.PollInterval <= 0 {
		return errors.New("stream.pollInterval must be positive")
	}
	if cfg.ErrorBackoffMultiplier < 1 {
		return errors.New("stream.errorBackoffMultiplier must be at least 1")
	}
	if cfg.RevisionCacheTTL < 0 {
		return errors.New("stream.revisionCacheTTL cannot be negative")
	}
	if cfg.HeartbeatInterval <= 0 {
		return errors.New("stream.heartbeatInterval must be positive")
	}
	return nil
}
