package domain

import "context"

// Scope identifies who a call runs as. The service never authenticates;
// tenant and member ids arrive pre-verified from the transport layer, and
// CanOverrideOwnership is decided once per call by the authorization gate.
type Scope struct {
	TenantID             string
	MemberID             string
	CanOverrideOwnership bool
}

// Service is the transport-facing contract. Each operation returns the full
// current list, never a diff: callers replace their view wholesale.
type Service interface {
	List(ctx context.Context, scope Scope) ([]Pepper, error)
	Add(ctx context.Context, scope Scope, text string) ([]Pepper, error)
	Delete(ctx context.Context, scope Scope, pepperID string) ([]Pepper, error)
	SetUpvote(ctx context.Context, scope Scope, pepperID string) ([]Pepper, error)
	RemoveUpvote(ctx context.Context, scope Scope, pepperID string) ([]Pepper, error)
	Reset(ctx context.Context, scope Scope) ([]Pepper, error)
}
