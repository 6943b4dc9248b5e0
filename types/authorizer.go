package types

import (
	"context"
	"time"
)

// Authorizer is the top level interface for end use. It manages groups,
// the object hierarchy, and policies, keeps them consistent under
// cascading deletes, and decides whether a subject may perform an action
// on an object at a point in time.
type Authorizer interface {
	GroupManager
	HierarchyManager
	PolicyManager

	// Authorize decides if sub may perform act on obj at now.
	// Deny is a normal decision, not an error: errors are reserved for
	// failures of the underlying stores.
	Authorize(ctx context.Context, sub Subject, obj Object, act Action, now time.Time) (Decision, error)

	// DelegatedAdmins returns the groups whose members hold delegated
	// admin rights on the object, nearest ancestor first, filtered by the
	// active delegation flags.
	DelegatedAdmins(obj Object) ([]Group, error)

	// SetDelegation replaces the delegation flag snapshot used by
	// subsequent decisions
	SetDelegation(DelegationConfig)

	// Delegation returns the active delegation flag snapshot
	Delegation() DelegationConfig
}

// GroupManager manages group membership and the cascades of removing subjects
type GroupManager interface {
	// JoinGroup makes sub an immediate member of group
	JoinGroup(sub Subject, group Group) error

	// LeaveGroup removes sub from the immediate members of group
	LeaveGroup(sub Subject, group Group) error

	// RemoveEPerson removes an EPerson, its memberships, and every policy
	// granted to or targeting it
	RemoveEPerson(person EPerson) error

	// RemoveGroup removes a group, its membership edges, its
	// administrators registration, and every policy granted to or
	// targeting it
	RemoveGroup(group Group) error

	// Memberships returns the MembershipReader interface for subjects
	Memberships() MembershipReader
}

// HierarchyManager manages the object graph and administrators groups
type HierarchyManager interface {
	// AddParent links child under parent in the object graph
	AddParent(child, parent Object) error

	// RemoveParent unlinks child from parent
	RemoveParent(child, parent Object) error

	// Ancestors returns the ownership chain of the object, nearest first
	Ancestors(obj Object) ([]Object, error)

	// CreateAdministrators derives the canonical admin group of the
	// container, registers it, and returns it
	CreateAdministrators(obj Object) (Group, error)

	// DeleteAdministrators removes the container's admin group and every
	// policy and membership about it
	DeleteAdministrators(obj Object) error

	// Administrators returns the container's admin group, if registered
	Administrators(obj Object) (Group, bool, error)

	// RemoveObject removes a hierarchical object: its parent links, its
	// administrators group, and every policy targeting it
	RemoveObject(obj Object) error
}

// PolicyManager manages policy records
type PolicyManager interface {
	// CreatePolicy validates and stores a new policy
	CreatePolicy(spec PolicySpec) (*Policy, error)

	// Policy returns the policy with the id
	Policy(id string) (*Policy, error)

	// PoliciesOn returns policies directly on the object, in insertion
	// order, optionally filtered to those overlapping act (None means no
	// filter)
	PoliciesOn(obj Object, act Action) ([]*Policy, error)

	// PoliciesFor returns policies granted to the subject, optionally
	// restricted to one object (nil means all)
	PoliciesFor(sub Subject, obj Object) ([]*Policy, error)

	// UpdatePolicyWindow replaces the start and end dates of the policy
	UpdatePolicyWindow(id string, start, end *Date) (*Policy, error)

	// UpdatePolicySubject replaces the subject of the policy
	UpdatePolicySubject(id string, sub Subject) (*Policy, error)

	// DeletePolicy removes the policy with the id
	DeletePolicy(id string) error

	// InheritPolicies copies the collection's read grants onto the item
	// as TYPE_INHERITED policies, the default policies a new item gets
	// from its owning collection
	InheritPolicies(from Collection, to Item) error
}
