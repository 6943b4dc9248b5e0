package hierarchy

import (
	"sync"

	"github.com/openarchive/authz/types"
)

var _ types.Hierarchy = (*syncedHierarchy)(nil)

// syncedHierarchy makes the inner hierarchy safe in concurrent usages
type syncedHierarchy struct {
	h types.Hierarchy
	sync.RWMutex
}

// NewSyncedHierarchy wraps a hierarchy for concurrent use
func NewSyncedHierarchy(h types.Hierarchy) *syncedHierarchy {
	return &syncedHierarchy{
		h: h,
	}
}

func (s *syncedHierarchy) AddParent(child, parent types.Object) error {
	s.Lock()
	defer s.Unlock()
	return s.h.AddParent(child, parent)
}

func (s *syncedHierarchy) RemoveParent(child, parent types.Object) error {
	s.Lock()
	defer s.Unlock()
	return s.h.RemoveParent(child, parent)
}

func (s *syncedHierarchy) Parents(obj types.Object) (map[types.Object]struct{}, error) {
	s.RLock()
	defer s.RUnlock()

	parents, e := s.h.Parents(obj)
	if e != nil {
		return nil, e
	}
	res := make(map[types.Object]struct{}, len(parents))
	for parent := range parents {
		res[parent] = struct{}{}
	}
	return res, nil
}

func (s *syncedHierarchy) Ancestors(obj types.Object) ([]types.Object, error) {
	s.RLock()
	defer s.RUnlock()
	return s.h.Ancestors(obj)
}

func (s *syncedHierarchy) SetAdministrators(obj types.Object, group types.Group) error {
	s.Lock()
	defer s.Unlock()
	return s.h.SetAdministrators(obj, group)
}

func (s *syncedHierarchy) Administrators(obj types.Object) (types.Group, bool, error) {
	s.RLock()
	defer s.RUnlock()
	return s.h.Administrators(obj)
}

func (s *syncedHierarchy) AdministeredBy(group types.Group) (types.Object, bool, error) {
	s.RLock()
	defer s.RUnlock()
	return s.h.AdministeredBy(group)
}

func (s *syncedHierarchy) RemoveAdministrators(obj types.Object) error {
	s.Lock()
	defer s.Unlock()
	return s.h.RemoveAdministrators(obj)
}

func (s *syncedHierarchy) Remove(obj types.Object) error {
	s.Lock()
	defer s.Unlock()
	return s.h.Remove(obj)
}

// New creates a concurrent safe hierarchy registry
func New() types.Hierarchy {
	return NewSyncedHierarchy(NewRegistry())
}
