package types

import "context"

// MembershipPersister persists subject-group membership edges to an external storage
type MembershipPersister interface {
	// Insert inserts a membership edge to the persister
	Insert(Subject, Group) error

	// Remove a membership edge from the persister
	Remove(Subject, Group) error

	// List all membership edges from the persister
	List() ([]MembershipEdge, error)

	// Watch any changes occurred about the edges in the persister
	Watch(context.Context) (<-chan MembershipChange, error)
}

// PolicyPersister persists policy records to an external storage
type PolicyPersister interface {
	// Insert inserts a policy to the persister
	Insert(Policy) error

	// Update replaces the stored policy with the same id
	Update(Policy) error

	// Remove a policy from the persister by id
	Remove(id string) error

	// List all policies from the persister
	List() ([]Policy, error)

	// Watch any changes occurred about the policies in the persister
	Watch(context.Context) (<-chan PolicyChange, error)
}

// MembershipEdge is one subject-group membership assignment
type MembershipEdge struct {
	Member Subject
	Group  Group
}

// MembershipChange denotes a changing event about a MembershipEdge
type MembershipChange struct {
	MembershipEdge
	Method PersistMethod
}

// PolicyChange denotes a changing event about a Policy
type PolicyChange struct {
	Policy Policy
	Method PersistMethod
}

// PersistMethod defines what happened about the records
type PersistMethod string

// possible changes could be happened about persisted records
const (
	PersistInsert PersistMethod = "insert"
	PersistDelete PersistMethod = "delete"
	PersistUpdate PersistMethod = "update"
)
