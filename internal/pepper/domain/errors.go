package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyText rejects pepper submissions with no content. Raised before
	// any backend call.
	ErrEmptyText = errors.New("invalid_text")
	// ErrInvalidTenant rejects calls with a missing tenant id.
	ErrInvalidTenant = errors.New("invalid_tenant")
	// ErrInvalidMember rejects mutating calls with a missing caller identity.
	ErrInvalidMember = errors.New("invalid_member")
)

// OwnershipError reports a mutation attempted by a non-owner without the
// override capability. It carries both identities so transports can render a
// useful "not permitted" message, distinct from "not found".
type OwnershipError struct {
	PepperID  string
	CreatorID string
	MemberID  string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("member %s does not have permission to edit pepper %s created by %s",
		e.MemberID, e.PepperID, e.CreatorID)
}

// AsOwnershipError unwraps err into an *OwnershipError when possible.
func AsOwnershipError(err error) *OwnershipError {
	var oerr *OwnershipError
	if errors.As(err, &oerr) {
		return oerr
	}
	return nil
}
