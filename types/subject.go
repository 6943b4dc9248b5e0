package types

import "strings"

// Entity is anything with a stable identity: a subject or a hierarchical object.
type Entity interface {
	// String method is used to serialize the entity when persisting
	String() string
}

// Subject is an EPerson or a Group that can be granted rights.
// Subject is not expecting custom implementations.
type Subject interface {
	Entity
	subject() string
}

// EPerson is a single account, a Subject in policies, and an Object policies may target.
type EPerson string

func (p EPerson) String() string {
	return "eperson:" + string(p)
}

func (p EPerson) subject() string {
	return p.String()
}

func (p EPerson) object() string {
	return p.String()
}

// Group is a named set of EPersons and sub groups.
// It is a Subject in policies, an Object policies may target,
// and may be registered as the administrators group of one container.
type Group string

func (g Group) String() string {
	return "group:" + string(g)
}

func (g Group) subject() string {
	return g.String()
}

func (g Group) object() string {
	return g.String()
}

// ParseSubject parses a serialized Subject
func ParseSubject(s string) (Subject, error) {
	switch {
	case strings.HasPrefix(s, "eperson:"):
		return EPerson(strings.TrimPrefix(s, "eperson:")), nil
	case strings.HasPrefix(s, "group:"):
		return Group(strings.TrimPrefix(s, "group:")), nil
	}

	return nil, ErrInvalidSubject
}
