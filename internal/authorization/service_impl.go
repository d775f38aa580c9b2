package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds the policy engine from the embedded model. Policies are
// seeded in memory; roles arrive on each request, so nothing is persisted.
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role, memberID, tenantID, action string) (Decision, error) {
	_ = ctx

	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = RoleMember
	}
	if role != RoleMember && role != RoleAdmin {
		return Decision{}, ErrInvalidRole
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return Decision{}, ErrInvalidTenant
	}

	subject := fmt.Sprintf("member:%s", strings.TrimSpace(memberID))
	domain := fmt.Sprintf("tenant:%s", tenantID)
	if err := s.ensureGrouping(subject, fmt.Sprintf("role:%s", role), domain); err != nil {
		return Decision{}, err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, ObjectPepper, action)
	if err != nil {
		return Decision{}, err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("tenant_id", tenantID),
			zap.String("member_id", memberID),
			zap.String("role", role),
			zap.String("action", action),
		)
		return Decision{}, ErrForbidden
	}

	override, err := s.enforcer.Enforce(subject, domain, ObjectPepper, ActionOverrideOwnership)
	if err != nil {
		return Decision{}, err
	}
	return Decision{CanOverrideOwnership: override}, nil
}

// ensureGrouping binds the subject to its current role in the tenant domain,
// replacing a stale binding when the caller's role changed between requests.
func (s *ServiceImpl) ensureGrouping(subject, roleName, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		_, _ = s.enforcer.RemoveGroupingPolicy(params...)
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:member", ObjectPepper, ActionRead},
		{"role:member", ObjectPepper, ActionCreate},
		{"role:member", ObjectPepper, ActionDeleteOwn},
		{"role:member", ObjectPepper, ActionUpvote},
		{"role:member", ObjectPepper, ActionDeleteOwnUpvote},

		{"role:admin", ObjectPepper, ActionRead},
		{"role:admin", ObjectPepper, ActionCreate},
		{"role:admin", ObjectPepper, ActionDeleteOwn},
		{"role:admin", ObjectPepper, ActionUpvote},
		{"role:admin", ObjectPepper, ActionDeleteOwnUpvote},
		{"role:admin", ObjectPepper, ActionDeleteAll},
		{"role:admin", ObjectPepper, ActionOverrideOwnership},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
