package domain

import "context"

// Repository owns one tenant's pepper list in the key-value backend: the full
// blob is read, mutated in memory, re-sorted, and written back as one value.
// Every successful mutation advances the tenant's revision counter exactly
// once. Concurrent mutations to the same tenant may lose updates; the backend
// offers no atomic read-modify-write and the contract accepts last-write-wins.
type Repository interface {
	// List returns the persisted sequence, seeding the default set (and
	// initializing the revision to 1) for a tenant with no stored data.
	List(ctx context.Context, tenantID string) ([]Pepper, error)

	// Add appends a new pepper with a fresh id and the caller as creator,
	// then re-sorts and persists. Text is assumed validated by the caller.
	Add(ctx context.Context, tenantID, memberID, text string) ([]Pepper, error)

	// Delete removes the identified pepper. A missing id is a successful
	// no-op returning the current list. A pepper owned by someone else fails
	// with *OwnershipError unless canOverrideOwnership is set.
	Delete(ctx context.Context, tenantID, memberID, pepperID string, canOverrideOwnership bool) ([]Pepper, error)

	// SetUpvote records the caller's vote on the identified pepper.
	// Idempotent: a repeated vote leaves the upvote set unchanged.
	SetUpvote(ctx context.Context, tenantID, memberID, pepperID string) ([]Pepper, error)

	// RemoveUpvote withdraws the caller's vote. Idempotent no-op when the
	// vote (or the pepper) is absent.
	RemoveUpvote(ctx context.Context, tenantID, memberID, pepperID string) ([]Pepper, error)

	// Reset deletes the tenant's list and revision counter, then re-seeds
	// via List.
	Reset(ctx context.Context, tenantID string) ([]Pepper, error)
}
