package membership

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/openarchive/authz/internal/persist/filter"
	"github.com/openarchive/authz/types"
)

var _ types.Membership = (*persistedMembership)(nil)

// persistedMembership writes edits through to a persister and replays
// changes made elsewhere via the persister's watch channel
type persistedMembership struct {
	persist types.MembershipPersister
	types.Membership
	log logr.Logger
}

// NewPersistedMembership loads persisted membership edges into the inner
// membership and keeps both sides in step from then on
func NewPersistedMembership(ctx context.Context, inner types.Membership, persist types.MembershipPersister, log logr.Logger) (*persistedMembership, error) {
	m := &persistedMembership{
		persist:    filter.NewMembershipPersister(persist),
		Membership: inner,
		log:        log,
	}
	if e := m.loadPersisted(); e != nil {
		return nil, e
	}
	if e := m.startWatching(ctx); e != nil {
		return nil, e
	}

	return m, nil
}

func (m *persistedMembership) loadPersisted() error {
	m.log.V(4).Info("load persisted membership edges")

	edges, e := m.persist.List()
	if e != nil {
		return e
	}
	for _, edge := range edges {
		if e := m.Membership.Join(edge.Member, edge.Group); e != nil {
			return e
		}
	}
	return nil
}

func (m *persistedMembership) startWatching(ctx context.Context) error {
	changes, e := m.persist.Watch(ctx)
	if e != nil {
		return e
	}

	go func() {
		for {
			select {
			case change := <-changes:
				if e := m.coordinateChange(change); e != nil {
					m.log.Error(e, "coordinate membership changes")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (m *persistedMembership) coordinateChange(change types.MembershipChange) error {
	m.log.V(4).Info("coordinate membership changes", "change", change)

	switch change.Method {
	case types.PersistInsert:
		return m.Membership.Join(change.Member, change.Group)
	case types.PersistDelete:
		return m.Membership.Leave(change.Member, change.Group)
	}

	return fmt.Errorf("%w: membership persister changes: %s", types.ErrUnsupportedChange, change.Method)
}

func (m *persistedMembership) Join(sub types.Subject, group types.Group) error {
	m.log.V(4).Info("join", "member", sub, "group", group)

	if e := m.persist.Insert(sub, group); e != nil {
		return e
	}
	return m.Membership.Join(sub, group)
}

func (m *persistedMembership) Leave(sub types.Subject, group types.Group) error {
	m.log.V(4).Info("leave", "member", sub, "group", group)

	if e := m.persist.Remove(sub, group); e != nil {
		return e
	}

	return m.Membership.Leave(sub, group)
}

func (m *persistedMembership) RemoveGroup(group types.Group) error {
	m.log.V(4).Info("remove group", "group", group)

	members, e := m.Membership.ImmediateMembersOf(group)
	if e != nil {
		return e
	}
	for member := range members {
		if e := m.persist.Remove(member, group); e != nil {
			return e
		}
	}

	groups, e := m.Membership.ImmediateGroupsOf(group)
	if e != nil {
		return e
	}
	for super := range groups {
		if e := m.persist.Remove(group, super); e != nil {
			return e
		}
	}

	return m.Membership.RemoveGroup(group)
}

func (m *persistedMembership) RemoveEPerson(person types.EPerson) error {
	m.log.V(4).Info("remove eperson", "eperson", person)

	groups, e := m.Membership.ImmediateGroupsOf(person)
	if e != nil {
		return e
	}
	for group := range groups {
		if e := m.persist.Remove(person, group); e != nil {
			return e
		}
	}

	return m.Membership.RemoveEPerson(person)
}
