package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spicyhq/peppers/pkg/tenantctx"
)

// rateLimitMutations rejects mutations beyond the tenant's token budget.
// Limiter errors fall open.
func (s *Server) rateLimitMutations() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		tenantID, _ := tenantctx.TenantID(c.Request.Context())
		result, err := s.limiter.Allow(c.Request.Context(), tenantID)
		if err != nil {
			s.log.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			if result.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			}
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
