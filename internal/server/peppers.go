package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type addPepperRequest struct {
	PepperText string `json:"pepperText"`
}

func (s *Server) ListPeppers(c *gin.Context) {
	scope := s.scopeFromContext(c)
	peppers, err := s.pepperSvc.List(c.Request.Context(), scope)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"peppers": peppers})
}

func (s *Server) AddPepper(c *gin.Context) {
	var req addPepperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	scope := s.scopeFromContext(c)
	peppers, err := s.pepperSvc.Add(c.Request.Context(), scope, req.PepperText)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.afterMutation(scope.TenantID, "add")
	c.JSON(http.StatusOK, gin.H{"peppers": peppers})
}

func (s *Server) DeletePepper(c *gin.Context) {
	pepperID := strings.TrimSpace(c.Param("id"))
	if pepperID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	scope := s.scopeFromContext(c)
	peppers, err := s.pepperSvc.Delete(c.Request.Context(), scope, pepperID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.afterMutation(scope.TenantID, "delete")
	c.JSON(http.StatusOK, gin.H{"peppers": peppers})
}

func (s *Server) UpvotePepper(c *gin.Context) {
	pepperID := strings.TrimSpace(c.Param("id"))
	if pepperID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	scope := s.scopeFromContext(c)
	peppers, err := s.pepperSvc.SetUpvote(c.Request.Context(), scope, pepperID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.afterMutation(scope.TenantID, "upvote")
	c.JSON(http.StatusOK, gin.H{"peppers": peppers})
}

func (s *Server) RemoveUpvote(c *gin.Context) {
	pepperID := strings.TrimSpace(c.Param("id"))
	if pepperID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	scope := s.scopeFromContext(c)
	peppers, err := s.pepperSvc.RemoveUpvote(c.Request.Context(), scope, pepperID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.afterMutation(scope.TenantID, "remove_upvote")
	c.JSON(http.StatusOK, gin.H{"peppers": peppers})
}

func (s *Server) ResetPeppers(c *gin.Context) {
	scope := s.scopeFromContext(c)
	peppers, err := s.pepperSvc.Reset(c.Request.Context(), scope)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.afterMutation(scope.TenantID, "reset")
	c.JSON(http.StatusOK, gin.H{"peppers": peppers})
}

// afterMutation drops the cached revision so open streams pick up the new
// counter on their next poll instead of waiting out the cache TTL.
func (s *Server) afterMutation(tenantID, operation string) {
	if s.revisions != nil {
		s.revisions.Invalidate(tenantID)
	}
	s.metrics.RecordMutation(operation)
}
