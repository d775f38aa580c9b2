package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicyhq/peppers/internal/config"
)

func TestNewMutationLimiterDisabled(t *testing.T) {
	limiter, err := NewMutationLimiter(config.Config{})
	require.NoError(t, err)
	require.Nil(t, limiter)

	assert.False(t, limiter.Enabled())

	result, err := limiter.Allow(context.Background(), "org-1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestNewMutationLimiterRejectsBadConfig(t *testing.T) {
	_, err := NewMutationLimiter(config.Config{
		RateLimit: config.RateLimitConfig{Enabled: true},
	})
	assert.Error(t, err)

	_, err = NewMutationLimiter(config.Config{
		RateLimit: config.RateLimitConfig{
			Enabled:   true,
			RedisAddr: "localhost:6379",
		},
	})
	assert.Error(t, err)
}
