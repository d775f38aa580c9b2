package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	pepperdomain "github.com/spicyhq/peppers/internal/pepper/domain"
	"github.com/spicyhq/peppers/pkg/tenantctx"
)

// Identity headers set by the authenticating proxy in front of this service.
const (
	headerTenantID = "X-Org-ID"
	headerMemberID = "X-Member-ID"
	headerRole     = "X-Member-Role"
)

const contextOverrideKey = "can_override_ownership"

// identityMiddleware resolves the caller from trusted headers. Requests
// without a tenant never reach a handler.
func (s *Server) identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := strings.TrimSpace(c.GetHeader(headerTenantID))
		if tenantID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		memberID := strings.TrimSpace(c.GetHeader(headerMemberID))
		role := strings.ToLower(strings.TrimSpace(c.GetHeader(headerRole)))

		ctx := tenantctx.WithTenantID(c.Request.Context(), tenantID)
		ctx = tenantctx.WithMemberID(ctx, memberID)
		ctx = tenantctx.WithRole(ctx, role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// requireAction checks the caller's role against the policy engine and
// records whether ownership checks may be bypassed downstream.
func (s *Server) requireAction(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		tenantID, _ := tenantctx.TenantID(ctx)
		memberID, _ := tenantctx.MemberID(ctx)
		role, _ := tenantctx.Role(ctx)

		decision, err := s.authzSvc.Authorize(ctx, role, memberID, tenantID, action)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextOverrideKey, decision.CanOverrideOwnership)
		c.Next()
	}
}

func (s *Server) scopeFromContext(c *gin.Context) pepperdomain.Scope {
	ctx := c.Request.Context()
	tenantID, _ := tenantctx.TenantID(ctx)
	memberID, _ := tenantctx.MemberID(ctx)
	return pepperdomain.Scope{
		TenantID:             tenantID,
		MemberID:             memberID,
		CanOverrideOwnership: c.GetBool(contextOverrideKey),
	}
}
