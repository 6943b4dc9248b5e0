package membership

import (
	"sync"

	"github.com/openarchive/authz/types"
)

var _ types.Membership = (*syncedMembership)(nil)

// syncedMembership makes the inner membership safe in concurrent usages
type syncedMembership struct {
	m types.Membership
	sync.RWMutex
}

// NewSyncedMembership wraps a membership for concurrent use
func NewSyncedMembership(m types.Membership) *syncedMembership {
	return &syncedMembership{
		m: m,
	}
}

func (s *syncedMembership) Join(sub types.Subject, group types.Group) error {
	s.Lock()
	defer s.Unlock()
	return s.m.Join(sub, group)
}

func (s *syncedMembership) Leave(sub types.Subject, group types.Group) error {
	s.Lock()
	defer s.Unlock()
	return s.m.Leave(sub, group)
}

func (s *syncedMembership) IsMember(sub types.Subject, group types.Group) (bool, error) {
	s.RLock()
	defer s.RUnlock()
	return s.m.IsMember(sub, group)
}

func (s *syncedMembership) AllGroups() (map[types.Group]struct{}, error) {
	s.RLock()
	defer s.RUnlock()

	groups, e := s.m.AllGroups()
	if e != nil {
		return nil, e
	}
	res := make(map[types.Group]struct{}, len(groups))
	for group := range groups {
		res[group] = struct{}{}
	}
	return res, nil
}

func (s *syncedMembership) AllEPersons() (map[types.EPerson]struct{}, error) {
	s.RLock()
	defer s.RUnlock()

	persons, e := s.m.AllEPersons()
	if e != nil {
		return nil, e
	}
	res := make(map[types.EPerson]struct{}, len(persons))
	for person := range persons {
		res[person] = struct{}{}
	}
	return res, nil
}

func (s *syncedMembership) GroupsOf(sub types.Subject) (map[types.Group]struct{}, error) {
	s.RLock()
	defer s.RUnlock()

	groups, e := s.m.GroupsOf(sub)
	if e != nil {
		return nil, e
	}
	res := make(map[types.Group]struct{}, len(groups))
	for group := range groups {
		res[group] = struct{}{}
	}
	return res, nil
}

func (s *syncedMembership) MembersOf(group types.Group) (map[types.EPerson]struct{}, error) {
	s.RLock()
	defer s.RUnlock()

	members, e := s.m.MembersOf(group)
	if e != nil {
		return nil, e
	}
	res := make(map[types.EPerson]struct{}, len(members))
	for member := range members {
		res[member] = struct{}{}
	}
	return res, nil
}

func (s *syncedMembership) ImmediateGroupsOf(sub types.Subject) (map[types.Group]struct{}, error) {
	s.RLock()
	defer s.RUnlock()

	groups, e := s.m.ImmediateGroupsOf(sub)
	if e != nil {
		return nil, e
	}
	res := make(map[types.Group]struct{}, len(groups))
	for group := range groups {
		res[group] = struct{}{}
	}
	return res, nil
}

func (s *syncedMembership) ImmediateMembersOf(group types.Group) (map[types.Subject]struct{}, error) {
	s.RLock()
	defer s.RUnlock()

	subs, e := s.m.ImmediateMembersOf(group)
	if e != nil {
		return nil, e
	}
	res := make(map[types.Subject]struct{}, len(subs))
	for sub := range subs {
		res[sub] = struct{}{}
	}
	return res, nil
}

func (s *syncedMembership) RemoveGroup(group types.Group) error {
	s.Lock()
	defer s.Unlock()
	return s.m.RemoveGroup(group)
}

func (s *syncedMembership) RemoveEPerson(person types.EPerson) error {
	s.Lock()
	defer s.Unlock()
	return s.m.RemoveEPerson(person)
}
