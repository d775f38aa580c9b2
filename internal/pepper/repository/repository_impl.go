package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/spicyhq/peppers/internal/kv"
	"github.com/spicyhq/peppers/internal/pepper/domain"
	"github.com/spicyhq/peppers/internal/revision"
	"github.com/spicyhq/peppers/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Store   kv.Store
	Tracker revision.Tracker
	Log     *zap.Logger
}

// Repository persists one blob per tenant. Every mutation follows the same
// protocol: read the full list, apply the change in memory, sort, write the
// full list back, bump the revision. The steps are not transactional: two
// concurrent mutations to the same tenant can interleave, and the second
// write wins in its entirety.
type Repository struct {
	store   kv.Store
	tracker revision.Tracker
	log     *zap.Logger
	newID   func() string
}

func Provide(p Params) domain.Repository {
	return New(p.Store, p.Tracker, p.Log)
}

func New(store kv.Store, tracker revision.Tracker, log *zap.Logger) *Repository {
	return &Repository{
		store:   store,
		tracker: tracker,
		log:     log.Named("pepper.repository"),
		newID: func() string {
			return ulid.Make().String()
		},
	}
}

func (r *Repository) List(ctx context.Context, tenantID string) ([]domain.Pepper, error) {
	peppers, err := r.load(ctx, tenantID)
	if errors.Is(err, kv.ErrNotFound) {
		return r.seedTenant(ctx, tenantID)
	}
	if err != nil {
		return nil, err
	}
	return peppers, nil
}

func (r *Repository) Add(ctx context.Context, tenantID, memberID, text string) ([]domain.Pepper, error) {
	peppers, err := r.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	pepper := domain.Pepper{
		ID:        r.newID(),
		Text:      text,
		CreatorID: memberID,
		Upvotes:   []domain.Upvote{},
	}
	peppers = append(peppers, pepper)

	r.log.Info("pepper added",
		zap.String("tenant_id", tenantID),
		zap.String("pepper_id", pepper.ID),
		zap.String("creator_id", memberID),
	)
	return r.persist(ctx, tenantID, peppers)
}

func (r *Repository) Delete(ctx context.Context, tenantID, memberID, pepperID string, canOverrideOwnership bool) ([]domain.Pepper, error) {
	peppers, err := r.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(peppers, pepperID)
	if idx < 0 {
		// Deletions are idempotent: a missing pepper is not an error, and
		// nothing is persisted so the revision stays put.
		r.log.Debug("pepper not found, nothing deleted",
			zap.String("tenant_id", tenantID),
			zap.String("pepper_id", pepperID),
		)
		return peppers, nil
	}

	existing := peppers[idx]
	if existing.CreatorID != memberID && !canOverrideOwnership {
		return nil, &domain.OwnershipError{
			PepperID:  pepperID,
			CreatorID: existing.CreatorID,
			MemberID:  memberID,
		}
	}

	peppers = append(peppers[:idx], peppers[idx+1:]...)
	r.log.Info("pepper deleted",
		zap.String("tenant_id", tenantID),
		zap.String("pepper_id", pepperID),
		zap.String("member_id", memberID),
	)
	return r.persist(ctx, tenantID, peppers)
}

func (r *Repository) SetUpvote(ctx context.Context, tenantID, memberID, pepperID string) ([]domain.Pepper, error) {
	peppers, err := r.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	for i, p := range peppers {
		if p.ID == pepperID {
			peppers[i] = p.WithUpvote(memberID)
		}
	}

	// The write happens even when the vote already existed: detecting the
	// no-op is not worth a divergent code path, and the revision counter is
	// a change hint, not a content hash.
	return r.persist(ctx, tenantID, peppers)
}

func (r *Repository) RemoveUpvote(ctx context.Context, tenantID, memberID, pepperID string) ([]domain.Pepper, error) {
	peppers, err := r.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	for i, p := range peppers {
		if p.ID == pepperID {
			peppers[i] = p.WithoutUpvote(memberID)
		}
	}

	return r.persist(ctx, tenantID, peppers)
}

func (r *Repository) Reset(ctx context.Context, tenantID string) ([]domain.Pepper, error) {
	if err := r.store.Delete(ctx, tenantID); err != nil {
		return nil, err
	}
	if err := r.tracker.Reset(ctx, tenantID); err != nil {
		return nil, err
	}

	r.log.Info("tenant state reset", zap.String("tenant_id", tenantID))
	return r.List(ctx, tenantID)
}

func (r *Repository) load(ctx context.Context, tenantID string) ([]domain.Pepper, error) {
	raw, err := r.store.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var peppers []domain.Pepper
	if err := json.Unmarshal(raw, &peppers); err != nil {
		return nil, fmt.Errorf("decode pepper list for %s: %w", tenantID, err)
	}
	return peppers, nil
}

// seedTenant installs the default set for a tenant with no stored data and
// initializes its revision to 1 without incrementing it.
func (r *Repository) seedTenant(ctx context.Context, tenantID string) ([]domain.Pepper, error) {
	peppers := seed.DefaultPeppers()
	domain.Sort(peppers)

	if err := r.write(ctx, tenantID, peppers); err != nil {
		return nil, err
	}
	if _, err := r.tracker.Get(ctx, tenantID); err != nil {
		return nil, err
	}

	r.log.Info("seeded default peppers",
		zap.String("tenant_id", tenantID),
		zap.Int("count", len(peppers)),
	)
	return peppers, nil
}

// persist sorts, writes the whole list back, and bumps the revision once.
func (r *Repository) persist(ctx context.Context, tenantID string, peppers []domain.Pepper) ([]domain.Pepper, error) {
	domain.Sort(peppers)

	if err := r.write(ctx, tenantID, peppers); err != nil {
		return nil, err
	}
	previous, err := r.tracker.Increment(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	r.log.Debug("pepper list persisted",
		zap.String("tenant_id", tenantID),
		zap.Int("count", len(peppers)),
		zap.Int64("previous_revision", previous),
	)
	return peppers, nil
}

func (r *Repository) write(ctx context.Context, tenantID string, peppers []domain.Pepper) error {
	raw, err := json.Marshal(peppers)
	if err != nil {
		return fmt.Errorf("encode pepper list for %s: %w", tenantID, err)
	}
	return r.store.Put(ctx, tenantID, raw)
}

func indexOf(peppers []domain.Pepper, pepperID string) int {
	for i, p := range peppers {
		if p.ID == pepperID {
			return i
		}
	}
	return -1
}
