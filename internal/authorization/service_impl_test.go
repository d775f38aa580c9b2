package authorization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupService(t *testing.T) Service {
	t.Helper()
	enforcer, err := NewEnforcer()
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestMemberPermissions(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	allowed := []string{
		ActionRead,
		ActionCreate,
		ActionDeleteOwn,
		ActionUpvote,
		ActionDeleteOwnUpvote,
	}
	for _, action := range allowed {
		decision, err := svc.Authorize(ctx, RoleMember, "m1", "org-1", action)
		require.NoError(t, err, action)
		assert.False(t, decision.CanOverrideOwnership, action)
	}

	denied := []string{ActionDeleteAll, ActionOverrideOwnership}
	for _, action := range denied {
		_, err := svc.Authorize(ctx, RoleMember, "m1", "org-1", action)
		assert.ErrorIs(t, err, ErrForbidden, action)
	}
}

func TestAdminPermissions(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	actions := []string{
		ActionRead,
		ActionCreate,
		ActionDeleteOwn,
		ActionUpvote,
		ActionDeleteOwnUpvote,
		ActionDeleteAll,
		ActionOverrideOwnership,
	}
	for _, action := range actions {
		decision, err := svc.Authorize(ctx, RoleAdmin, "a1", "org-1", action)
		require.NoError(t, err, action)
		assert.True(t, decision.CanOverrideOwnership, action)
	}
}

func TestEmptyRoleDefaultsToMember(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	decision, err := svc.Authorize(ctx, "", "m1", "org-1", ActionRead)
	require.NoError(t, err)
	assert.False(t, decision.CanOverrideOwnership)

	_, err = svc.Authorize(ctx, "", "m1", "org-1", ActionDeleteAll)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUnknownRoleIsRejected(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Authorize(context.Background(), "superuser", "m1", "org-1", ActionRead)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestMissingTenantIsRejected(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Authorize(context.Background(), RoleMember, "m1", "", ActionRead)
	assert.ErrorIs(t, err, ErrInvalidTenant)
}

func TestRoleChangeRebindsSubject(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Authorize(ctx, RoleAdmin, "m1", "org-1", ActionDeleteAll)
	require.NoError(t, err)

	// Demoted on a later request: admin-only actions stop working.
	_, err = svc.Authorize(ctx, RoleMember, "m1", "org-1", ActionDeleteAll)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRolesAreScopedToTenant(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Authorize(ctx, RoleAdmin, "m1", "org-1", ActionDeleteAll)
	require.NoError(t, err)

	decision, err := svc.Authorize(ctx, RoleMember, "m1", "org-2", ActionRead)
	require.NoError(t, err)
	assert.False(t, decision.CanOverrideOwnership)
}
