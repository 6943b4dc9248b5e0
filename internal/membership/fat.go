package membership

import (
	"github.com/openarchive/authz/types"
)

var _ types.Membership = (*fatMembership)(nil)

// fatMembership caches transitive closures to speed up querying.
// It is faster on querying and slower on edits compared to slimMembership.
type fatMembership struct {
	slim slimMembership // no sense to use another implementation

	// subject => all groups it belongs to
	groups map[types.Subject]map[types.Group]struct{}
	// group => all EPersons belonging to it
	members map[types.Group]map[types.EPerson]struct{}

	allEPersons map[types.EPerson]struct{}
	allGroups   map[types.Group]struct{}
}

// NewFatMembership creates a membership resolver with cached closures
func NewFatMembership() *fatMembership {
	return &fatMembership{
		slim:        *NewSlimMembership(),
		groups:      make(map[types.Subject]map[types.Group]struct{}),
		members:     make(map[types.Group]map[types.EPerson]struct{}),
		allEPersons: make(map[types.EPerson]struct{}),
		allGroups:   make(map[types.Group]struct{}),
	}
}

func (m *fatMembership) Join(sub types.Subject, group types.Group) error {
	if e := m.slim.Join(sub, group); e != nil {
		return e
	}

	m.allGroups[group] = struct{}{}
	switch s := sub.(type) {
	case types.EPerson:
		m.allEPersons[s] = struct{}{}
	case types.Group:
		m.allGroups[s] = struct{}{}
	}

	// the subject may carry a whole subtree with it, so closures are
	// rebuilt downward from the subject and upward from the group
	if e := m.rebuildGroups(sub); e != nil {
		return e
	}
	return m.rebuildMembers(group)
}

func (m *fatMembership) Leave(sub types.Subject, group types.Group) error {
	if e := m.slim.Leave(sub, group); e != nil {
		return e
	}

	if e := m.rebuildGroups(sub); e != nil {
		return e
	}
	return m.rebuildMembers(group)
}

func (m *fatMembership) IsMember(sub types.Subject, group types.Group) (bool, error) {
	if groups, ok := m.groups[sub]; ok {
		_, ok := groups[group]
		return ok, nil
	}
	return false, nil
}

func (m *fatMembership) AllGroups() (map[types.Group]struct{}, error) {
	return m.allGroups, nil
}

func (m *fatMembership) AllEPersons() (map[types.EPerson]struct{}, error) {
	return m.allEPersons, nil
}

func (m *fatMembership) GroupsOf(sub types.Subject) (map[types.Group]struct{}, error) {
	return m.groups[sub], nil
}

func (m *fatMembership) MembersOf(group types.Group) (map[types.EPerson]struct{}, error) {
	return m.members[group], nil
}

func (m *fatMembership) ImmediateGroupsOf(sub types.Subject) (map[types.Group]struct{}, error) {
	return m.slim.ImmediateGroupsOf(sub)
}

func (m *fatMembership) ImmediateMembersOf(group types.Group) (map[types.Subject]struct{}, error) {
	return m.slim.ImmediateMembersOf(group)
}

func (m *fatMembership) RemoveGroup(group types.Group) error {
	delete(m.allGroups, group)
	delete(m.members, group)
	delete(m.groups, group)

	subs, e := m.ImmediateMembersOf(group)
	if e != nil {
		return e
	}
	groups, e := m.ImmediateGroupsOf(group)
	if e != nil {
		return e
	}

	if e := m.slim.RemoveGroup(group); e != nil {
		return e
	}

	for sub := range subs {
		if e := m.rebuildGroups(sub); e != nil {
			return e
		}
	}
	for group := range groups {
		if e := m.rebuildMembers(group); e != nil {
			return e
		}
	}

	return nil
}

func (m *fatMembership) RemoveEPerson(person types.EPerson) error {
	delete(m.allEPersons, person)
	delete(m.groups, person)

	groups, e := m.ImmediateGroupsOf(person)
	if e != nil {
		return e
	}

	if e := m.slim.RemoveEPerson(person); e != nil {
		return e
	}

	for group := range groups {
		if e := m.rebuildMembers(group); e != nil {
			return e
		}
	}

	return nil
}

func (m *fatMembership) rebuildGroups(sub types.Subject) error {
	// rebuild the group closure of the subject
	groups, e := m.ImmediateGroupsOf(sub)
	if e != nil {
		return e
	}
	m.groups[sub] = make(map[types.Group]struct{}, len(groups))
	for group := range groups {
		m.groups[sub][group] = struct{}{}
		for super := range m.groups[group] {
			m.groups[sub][super] = struct{}{}
		}
	}

	if group, ok := sub.(types.Group); ok {
		// rebuild the closures of all members under the subject
		subs, e := m.ImmediateMembersOf(group)
		if e != nil {
			return e
		}
		for sub := range subs {
			if e := m.rebuildGroups(sub); e != nil {
				return e
			}
		}
	}

	return nil
}

func (m *fatMembership) rebuildMembers(group types.Group) error {
	// rebuild the member closure of the group
	subs, e := m.ImmediateMembersOf(group)
	if e != nil {
		return e
	}

	m.members[group] = make(map[types.EPerson]struct{}, len(subs))
	for sub := range subs {
		if person, ok := sub.(types.EPerson); ok {
			m.members[group][person] = struct{}{}
		} else {
			for person := range m.members[sub.(types.Group)] {
				m.members[group][person] = struct{}{}
			}
		}
	}

	// rebuild the member closures of all groups above
	groups, e := m.ImmediateGroupsOf(group)
	if e != nil {
		return e
	}
	for group := range groups {
		if e := m.rebuildMembers(group); e != nil {
			return e
		}
	}

	return nil
}
