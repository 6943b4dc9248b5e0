package membership

import (
	"fmt"

	"github.com/openarchive/authz/types"
)

var _ types.Membership = (*slimMembership)(nil)

// slimMembership is the simplest implementation of the Membership
// interface. It is used as a prototype of concept and baseline for testing.
type slimMembership struct {
	parents  map[types.Subject]map[types.Group]struct{}
	children map[types.Group]map[types.Subject]struct{}
}

// NewSlimMembership creates the baseline membership implementation
func NewSlimMembership() *slimMembership {
	return &slimMembership{
		parents:  make(map[types.Subject]map[types.Group]struct{}),
		children: make(map[types.Group]map[types.Subject]struct{}),
	}
}

// Join implements Membership interface
func (m *slimMembership) Join(sub types.Subject, group types.Group) error {
	if err := m.checkCycle(sub, group); err != nil {
		return err
	}

	if m.parents[sub] == nil {
		m.parents[sub] = make(map[types.Group]struct{}, 1)
	}
	m.parents[sub][group] = struct{}{}

	if m.children[group] == nil {
		m.children[group] = make(map[types.Subject]struct{})
	}
	m.children[group][sub] = struct{}{}

	return nil
}

// checkCycle rejects an edge that would make group reachable from itself.
// Cycles are caught here, at edit time: resolution assumes acyclicity.
func (m *slimMembership) checkCycle(sub types.Subject, group types.Group) error {
	sg, ok := sub.(types.Group)
	if !ok {
		return nil
	}
	if sg == group {
		return fmt.Errorf("%w: %s -> %s", types.ErrCycle, sub, group)
	}

	groups, err := m.GroupsOf(group)
	if err != nil {
		return err
	}
	if _, ok := groups[sg]; ok {
		return fmt.Errorf("%w: %s -> %s", types.ErrCycle, sub, group)
	}
	return nil
}

// Leave implements Membership interface
func (m *slimMembership) Leave(sub types.Subject, group types.Group) error {
	if m.parents[sub] == nil {
		return fmt.Errorf("%w: membership: %s -> %s", types.ErrNotFound, sub, group)
	} else if _, ok := m.parents[sub][group]; !ok {
		return fmt.Errorf("%w: membership: %s -> %s", types.ErrNotFound, sub, group)
	}
	delete(m.parents[sub], group)

	if m.children[group] == nil {
		return fmt.Errorf("%w: membership: %s -> %s", types.ErrNotFound, group, sub)
	} else if _, ok := m.children[group][sub]; !ok {
		return fmt.Errorf("%w: membership: %s -> %s", types.ErrNotFound, group, sub)
	}
	delete(m.children[group], sub)

	return nil
}

// IsMember implements Membership interface
func (m *slimMembership) IsMember(sub types.Subject, group types.Group) (bool, error) {
	groups, err := m.GroupsOf(sub)
	if err != nil {
		return false, err
	}

	_, ok := groups[group]
	return ok, nil
}

// AllGroups implements Membership interface
func (m *slimMembership) AllGroups() (map[types.Group]struct{}, error) {
	groups := make(map[types.Group]struct{}, len(m.children))
	for group := range m.children {
		groups[group] = struct{}{}
	}
	for sub := range m.parents {
		if group, ok := sub.(types.Group); ok {
			groups[group] = struct{}{}
		}
	}
	return groups, nil
}

// AllEPersons implements Membership interface
func (m *slimMembership) AllEPersons() (map[types.EPerson]struct{}, error) {
	persons := make(map[types.EPerson]struct{}, len(m.parents))
	for sub := range m.parents {
		if person, ok := sub.(types.EPerson); ok {
			persons[person] = struct{}{}
		}
	}
	return persons, nil
}

// GroupsOf implements Membership interface
func (m *slimMembership) GroupsOf(sub types.Subject) (map[types.Group]struct{}, error) {
	closure := make(map[types.Group]struct{})

	var query func(sub types.Subject)
	query = func(sub types.Subject) {
		for group := range m.parents[sub] {
			if _, seen := closure[group]; seen {
				continue
			}
			closure[group] = struct{}{}
			query(group)
		}
	}
	query(sub)

	return closure, nil
}

// MembersOf implements Membership interface
func (m *slimMembership) MembersOf(group types.Group) (map[types.EPerson]struct{}, error) {
	members := make(map[types.EPerson]struct{})
	seen := make(map[types.Group]struct{})

	var query func(group types.Group)
	query = func(group types.Group) {
		if _, ok := seen[group]; ok {
			return
		}
		seen[group] = struct{}{}
		for child := range m.children[group] {
			if person, ok := child.(types.EPerson); ok {
				members[person] = struct{}{}
			} else {
				query(child.(types.Group))
			}
		}
	}
	query(group)

	return members, nil
}

// ImmediateGroupsOf implements Membership interface
func (m *slimMembership) ImmediateGroupsOf(sub types.Subject) (map[types.Group]struct{}, error) {
	return m.parents[sub], nil
}

// ImmediateMembersOf implements Membership interface
func (m *slimMembership) ImmediateMembersOf(group types.Group) (map[types.Subject]struct{}, error) {
	return m.children[group], nil
}

// RemoveGroup implements Membership interface
func (m *slimMembership) RemoveGroup(group types.Group) error {
	children := m.children[group]
	parents := m.parents[group]

	delete(m.children, group)
	delete(m.parents, group)

	for child := range children {
		delete(m.parents[child], group)
	}
	for parent := range parents {
		delete(m.children[parent], group)
	}

	return nil
}

// RemoveEPerson implements Membership interface
func (m *slimMembership) RemoveEPerson(person types.EPerson) error {
	parents := m.parents[person]
	delete(m.parents, person)

	for parent := range parents {
		delete(m.children[parent], person)
	}
	return nil
}
