package policy

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/openarchive/authz/types"
)

// Store is a policy store that can also replay records verbatim, the way
// persisted layers load and coordinate external changes.
type Store interface {
	types.PolicyStore

	// Put stores a policy record as-is, keeping its id
	Put(types.Policy) error

	// Drop removes a policy by id without reporting a missing one
	Drop(id string) error
}

var _ Store = (*store)(nil)

// store holds policy records with object, subject, and id indexes.
// Per-object and per-subject listings keep insertion order.
type store struct {
	byID      map[string]*types.Policy
	byObject  map[types.Object][]string
	bySubject map[types.Subject][]string
}

// NewStore creates an empty in-memory policy store
func NewStore() *store {
	return &store{
		byID:      make(map[string]*types.Policy),
		byObject:  make(map[types.Object][]string),
		bySubject: make(map[types.Subject][]string),
	}
}

// Create implements PolicyStore interface
func (s *store) Create(spec types.PolicySpec) (*types.Policy, error) {
	if spec.Object == nil {
		return nil, types.ErrInvalidObject
	}
	if spec.Action == types.None {
		return nil, types.ErrUnknownAction
	}
	if spec.Subject == nil {
		// a policy with no subject is the transient draft state, invalid at commit
		return nil, fmt.Errorf("%w: on %s", types.ErrIncompleteSubject, spec.Object)
	}

	for _, id := range s.byObject[spec.Object] {
		other := s.byID[id]
		if other.Action == spec.Action && other.Subject == spec.Subject &&
			other.Type == spec.Type && sameBound(other.StartDate, spec.StartDate) &&
			sameBound(other.EndDate, spec.EndDate) {
			return nil, fmt.Errorf("%w: %s may already %s on %s", types.ErrDuplicatePolicy, spec.Subject, spec.Action, spec.Object)
		}
	}

	policy := &types.Policy{
		ID:          uuid.NewString(),
		Object:      spec.Object,
		Action:      spec.Action,
		Subject:     spec.Subject,
		StartDate:   cloneBound(spec.StartDate),
		EndDate:     cloneBound(spec.EndDate),
		Type:        spec.Type,
		Name:        spec.Name,
		Description: spec.Description,
	}
	s.index(policy)

	return clone(policy), nil
}

// Put implements Store interface
func (s *store) Put(policy types.Policy) error {
	if policy.ID == "" || policy.Object == nil || policy.Subject == nil {
		return fmt.Errorf("%w: replayed policy %q", types.ErrIncompleteSubject, policy.ID)
	}

	if old, ok := s.byID[policy.ID]; ok {
		// replace in place so indexed positions stay stable
		if old.Object != policy.Object {
			unlist(s.byObject, old.Object, old.ID)
			s.byObject[policy.Object] = append(s.byObject[policy.Object], policy.ID)
		}
		if old.Subject != policy.Subject {
			unlist(s.bySubject, old.Subject, old.ID)
			s.bySubject[policy.Subject] = append(s.bySubject[policy.Subject], policy.ID)
		}
		*old = policy
		return nil
	}

	s.index(&policy)
	return nil
}

// Drop implements Store interface
func (s *store) Drop(id string) error {
	policy, ok := s.byID[id]
	if !ok {
		return nil
	}
	s.remove(policy)
	return nil
}

// Get implements PolicyStore interface
func (s *store) Get(id string) (*types.Policy, error) {
	policy, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: policy %s", types.ErrNotFound, id)
	}
	return clone(policy), nil
}

// ByObject implements PolicyStore interface
func (s *store) ByObject(obj types.Object, act types.Action) ([]*types.Policy, error) {
	ids := s.byObject[obj]
	policies := make([]*types.Policy, 0, len(ids))
	for _, id := range ids {
		policy := s.byID[id]
		if act != types.None && policy.Action&act == 0 {
			continue
		}
		policies = append(policies, clone(policy))
	}
	return policies, nil
}

// BySubject implements PolicyStore interface
func (s *store) BySubject(sub types.Subject, obj types.Object) ([]*types.Policy, error) {
	ids := s.bySubject[sub]
	policies := make([]*types.Policy, 0, len(ids))
	for _, id := range ids {
		policy := s.byID[id]
		if obj != nil && policy.Object != obj {
			continue
		}
		policies = append(policies, clone(policy))
	}
	return policies, nil
}

// UpdateWindow implements PolicyStore interface
func (s *store) UpdateWindow(id string, start, end *types.Date) (*types.Policy, error) {
	policy, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: policy %s", types.ErrNotFound, id)
	}

	policy.StartDate = cloneBound(start)
	policy.EndDate = cloneBound(end)

	return clone(policy), nil
}

// UpdateSubject implements PolicyStore interface
func (s *store) UpdateSubject(id string, sub types.Subject) (*types.Policy, error) {
	policy, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: policy %s", types.ErrNotFound, id)
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: policy %s", types.ErrIncompleteSubject, id)
	}

	if policy.Subject != sub {
		unlist(s.bySubject, policy.Subject, id)
		s.bySubject[sub] = append(s.bySubject[sub], id)
		policy.Subject = sub
	}

	return clone(policy), nil
}

// Delete implements PolicyStore interface
func (s *store) Delete(id string) error {
	policy, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: policy %s", types.ErrNotFound, id)
	}
	s.remove(policy)
	return nil
}

// RemoveByObject implements PolicyStore interface
func (s *store) RemoveByObject(obj types.Object) error {
	ids := append([]string(nil), s.byObject[obj]...)
	for _, id := range ids {
		s.remove(s.byID[id])
	}
	return nil
}

// RemoveBySubject implements PolicyStore interface
func (s *store) RemoveBySubject(sub types.Subject) error {
	ids := append([]string(nil), s.bySubject[sub]...)
	for _, id := range ids {
		s.remove(s.byID[id])
	}
	return nil
}

func (s *store) index(policy *types.Policy) {
	s.byID[policy.ID] = policy
	s.byObject[policy.Object] = append(s.byObject[policy.Object], policy.ID)
	s.bySubject[policy.Subject] = append(s.bySubject[policy.Subject], policy.ID)
}

func (s *store) remove(policy *types.Policy) {
	delete(s.byID, policy.ID)
	unlist(s.byObject, policy.Object, policy.ID)
	unlist(s.bySubject, policy.Subject, policy.ID)
}

func unlist[K comparable](index map[K][]string, key K, id string) {
	ids := index[key]
	for i, other := range ids {
		if other == id {
			index[key] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

func sameBound(a, b *types.Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneBound(d *types.Date) *types.Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func clone(policy *types.Policy) *types.Policy {
	c := *policy
	c.StartDate = cloneBound(policy.StartDate)
	c.EndDate = cloneBound(policy.EndDate)
	return &c
}
