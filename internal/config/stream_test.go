package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStreamConfigHolderDefaults(t *testing.T) {
	holder, err := NewStreamConfigHolder(zap.NewNop())
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 5, cfg.ErrorBackoffMultiplier)
	assert.Equal(t, 5*time.Second, cfg.RevisionCacheTTL)
	assert.Equal(t, 15*time.Second, cfg.HeartbeatInterval)
}

func TestValidateStreamConfig(t *testing.T) {
	valid := DefaultStreamConfig()
	require.NoError(t, validateStreamConfig(valid))

	bad := valid
	bad.PollInterval = 0
	assert.Error(t, validateStreamConfig(bad))

	bad = valid
	bad.ErrorBackoffMultiplier = 0
	assert.Error(t, validateStreamConfig(bad))

	bad = valid
	bad.RevisionCacheTTL = -time.Second
	assert.Error(t, validateStreamConfig(bad))

	bad = valid
	bad.HeartbeatInterval = 0
	assert.Error(t, validateStreamConfig(bad))
}
