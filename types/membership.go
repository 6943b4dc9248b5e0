package types

import "context"

// Membership defines subject-group relationships: an EPerson or a sub
// group may belong to any number of groups, and a group may contain any
// mix of EPersons and sub groups. The sub group graph is kept acyclic by
// rejecting edits that would introduce a cycle.
type Membership interface {
	MembershipWriter
	MembershipReader
}

// MembershipReader defines methods to query membership assignments
type MembershipReader interface {
	// IsMember returns true if sub is a direct member of group or a
	// member of any sub group reachable from group
	IsMember(sub Subject, group Group) (bool, error)

	// GroupsOf returns the transitive closure of groups the subject belongs to
	GroupsOf(sub Subject) (map[Group]struct{}, error)

	// MembersOf returns all EPersons in the group or its sub groups
	MembersOf(group Group) (map[EPerson]struct{}, error)

	// AllGroups returns every group ever seen
	AllGroups() (map[Group]struct{}, error)

	// AllEPersons returns every EPerson ever seen
	AllEPersons() (map[EPerson]struct{}, error)

	// ImmediateGroupsOf returns the groups the subject directly belongs to
	ImmediateGroupsOf(sub Subject) (map[Group]struct{}, error)

	// ImmediateMembersOf returns the direct members of the group
	ImmediateMembersOf(group Group) (map[Subject]struct{}, error)
}

// MembershipWriter defines methods to create, update, or remove membership assignments
type MembershipWriter interface {
	// Join makes sub an immediate member of group. It fails with ErrCycle
	// if sub is a group the target group already belongs to.
	Join(sub Subject, group Group) error

	// Leave removes sub from the immediate members of group
	Leave(sub Subject, group Group) error

	// RemoveGroup removes a group and every membership edge about it
	RemoveGroup(group Group) error

	// RemoveEPerson removes an EPerson and every membership edge about it
	RemoveEPerson(person EPerson) error
}

// SpecialGroupResolver computes groups granted to a request dynamically
// from its context, such as address based grants. Resolved groups are
// merged with persistent membership before policy evaluation.
type SpecialGroupResolver func(ctx context.Context) []Group
