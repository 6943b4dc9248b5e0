package filter

import "github.com/openarchive/authz/types"

type membershipPersisterFilter struct {
	types.MembershipPersister
	changes map[types.MembershipChange]struct{}
}

// NewMembershipPersister checks if an incoming change was made through
// this persister itself, and does not apply it again if true
func NewMembershipPersister(p types.MembershipPersister) *membershipPersisterFilter {
	return &membershipPersisterFilter{
		MembershipPersister: p,
		changes:             make(map[types.MembershipChange]struct{}),
	}
}

// Insert inserts a membership edge to the persister
func (f *membershipPersisterFilter) Insert(sub types.Subject, group types.Group) error {
	change := types.MembershipChange{
		MembershipEdge: types.MembershipEdge{
			Member: sub,
			Group:  group,
		},
		Method: types.PersistInsert,
	}

	if _, ok := f.changes[change]; ok {
		delete(f.changes, change)
		return nil
	}

	f.changes[change] = struct{}{}
	return f.MembershipPersister.Insert(sub, group)
}

// Remove a membership edge from the persister
func (f *membershipPersisterFilter) Remove(sub types.Subject, group types.Group) error {
	change := types.MembershipChange{
		MembershipEdge: types.MembershipEdge{
			Member: sub,
			Group:  group,
		},
		Method: types.PersistDelete,
	}

	if _, ok := f.changes[change]; ok {
		delete(f.changes, change)
		return nil
	}

	f.changes[change] = struct{}{}
	return f.MembershipPersister.Remove(sub, group)
}
