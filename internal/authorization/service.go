// Package authorization decides what a caller may do to a tenant's list.
// Authentication happens upstream; this package only maps an already
// resolved role onto permitted actions.
package authorization

import (
	"context"
	"errors"
)

const ObjectPepper = "pepper"

const (
	ActionCreate            = "create"
	ActionRead              = "read"
	ActionDeleteOwn         = "delete_own"
	ActionUpvote            = "upvote"
	ActionDeleteOwnUpvote   = "delete_own_upvote"
	ActionDeleteAll         = "delete_all"
	ActionOverrideOwnership = "override_ownership"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

var (
	ErrInvalidRole   = errors.New("invalid_role")
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrForbidden     = errors.New("forbidden")
)

// Decision is the outcome of an authorization check. CanOverrideOwnership
// reports whether the caller may edit peppers created by other members; it is
// resolved on every check so handlers can thread it into delete calls.
type Decision struct {
	CanOverrideOwnership bool
}

type Service interface {
	// Authorize returns ErrForbidden when the role may not perform action
	// on the tenant's list, and a Decision when it may.
	Authorize(ctx context.Context, role, memberID, tenantID, action string) (Decision, error)
}
