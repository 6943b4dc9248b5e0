package types

import "time"

// PolicyType distinguishes user-intent policies from system managed ones.
type PolicyType string

// known policy types
const (
	TypeCustom     PolicyType = "TYPE_CUSTOM"
	TypeInherited  PolicyType = "TYPE_INHERITED"
	TypeSubmission PolicyType = "TYPE_SUBMISSION"
	TypeWorkflow   PolicyType = "TYPE_WORKFLOW"
)

// Policy is one grant: it binds an object, an action, exactly one subject,
// and an optional activity window. Object and action are immutable after
// creation; window and subject may be replaced.
type Policy struct {
	ID      string
	Object  Object
	Action  Action
	Subject Subject

	// StartDate and EndDate bound the window the policy is active in,
	// inclusive at day granularity. A nil bound is open.
	StartDate *Date
	EndDate   *Date

	Type        PolicyType
	Name        string
	Description string
}

// ActiveAt reports whether the policy window covers the instant.
// It is evaluated fresh on every decision, never cached: the same policy
// answers differently once an embargo start date has passed.
func (p *Policy) ActiveAt(now time.Time) bool {
	if p.StartDate != nil && now.Before(p.StartDate.Time()) {
		return false
	}
	if p.EndDate != nil && !now.Before(p.EndDate.Next().Time()) {
		return false
	}
	return true
}

// PolicySpec carries the caller supplied fields of a policy to be created.
type PolicySpec struct {
	Object      Object
	Action      Action
	Subject     Subject
	StartDate   *Date
	EndDate     *Date
	Type        PolicyType
	Name        string
	Description string
}

// PolicyStore holds policy records and their object, subject, and id indexes.
type PolicyStore interface {
	// Create validates and stores a new policy. The subject must be set:
	// a spec with no subject fails with ErrIncompleteSubject, and a grant
	// identical to an existing one fails with ErrDuplicatePolicy.
	Create(PolicySpec) (*Policy, error)

	// Get returns the policy with the id, or ErrNotFound
	Get(id string) (*Policy, error)

	// ByObject returns policies directly on the object in insertion order,
	// optionally filtered to those whose action overlaps act
	ByObject(obj Object, act Action) ([]*Policy, error)

	// BySubject returns policies granted to the subject, optionally
	// restricted to one object (nil means all objects)
	BySubject(sub Subject, obj Object) ([]*Policy, error)

	// UpdateWindow replaces the start and end dates of the policy
	UpdateWindow(id string, start, end *Date) (*Policy, error)

	// UpdateSubject replaces the subject of the policy
	UpdateSubject(id string, sub Subject) (*Policy, error)

	// Delete removes the policy with the id, or returns ErrNotFound
	Delete(id string) error

	// RemoveByObject removes every policy targeting the object
	RemoveByObject(obj Object) error

	// RemoveBySubject removes every policy granted to the subject
	RemoveBySubject(sub Subject) error
}
