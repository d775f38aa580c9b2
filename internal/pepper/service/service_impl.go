package service

import (
	"context"
	"strings"

	pepperdomain "github.com/spicyhq/peppers/internal/pepper/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo pepperdomain.Repository
}

type Service struct {
	log  *zap.Logger
	repo pepperdomain.Repository
}

func New(p Params) pepperdomain.Service {
	return &Service{
		log:  p.Log.Named("pepper.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, scope pepperdomain.Scope) ([]pepperdomain.Pepper, error) {
	if err := validateScope(scope, false); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, scope.TenantID)
}

func (s *Service) Add(ctx context.Context, scope pepperdomain.Scope, text string) ([]pepperdomain.Pepper, error) {
	if err := validateScope(scope, true); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pepperdomain.ErrEmptyText
	}
	return s.repo.Add(ctx, scope.TenantID, scope.MemberID, text)
}

func (s *Service) Delete(ctx context.Context, scope pepperdomain.Scope, pepperID string) ([]pepperdomain.Pepper, error) {
	if err := validateScope(scope, true); err != nil {
		return nil, err
	}
	peppers, err := s.repo.Delete(ctx, scope.TenantID, scope.MemberID, pepperID, scope.CanOverrideOwnership)
	if oerr := pepperdomain.AsOwnershipError(err); oerr != nil {
		s.log.Warn("delete denied by ownership",
			zap.String("tenant_id", scope.TenantID),
			zap.String("pepper_id", oerr.PepperID),
			zap.String("member_id", oerr.MemberID),
			zap.String("creator_id", oerr.CreatorID),
		)
	}
	return peppers, err
}

func (s *Service) SetUpvote(ctx context.Context, scope pepperdomain.Scope, pepperID string) ([]pepperdomain.Pepper, error) {
	if err := validateScope(scope, true); err != nil {
		return nil, err
	}
	return s.repo.SetUpvote(ctx, scope.TenantID, scope.MemberID, pepperID)
}

func (s *Service) RemoveUpvote(ctx context.Context, scope pepperdomain.Scope, pepperID string) ([]pepperdomain.Pepper, error) {
	if err := validateScope(scope, true); err != nil {
		return nil, err
	}
	return s.repo.RemoveUpvote(ctx, scope.TenantID, scope.MemberID, pepperID)
}

func (s *Service) Reset(ctx context.Context, scope pepperdomain.Scope) ([]pepperdomain.Pepper, error) {
	if err := validateScope(scope, true); err != nil {
		return nil, err
	}
	return s.repo.Reset(ctx, scope.TenantID)
}

func validateScope(scope pepperdomain.Scope, requireMember bool) error {
	if strings.TrimSpace(scope.TenantID) == "" {
		return pepperdomain.ErrInvalidTenant
	}
	if requireMember && strings.TrimSpace(scope.MemberID) == "" {
		return pepperdomain.ErrInvalidMember
	}
	return nil
}
