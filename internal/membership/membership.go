package membership

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/openarchive/authz/types"
)

// New creates a concurrent safe, optionally persisted membership resolver
func New(ctx context.Context, persist types.MembershipPersister, log logr.Logger) (types.Membership, error) {
	inner := NewSyncedMembership(NewFatMembership())
	if persist == nil {
		return inner, nil
	}
	return NewPersistedMembership(ctx, inner, persist, log)
}
