package policy

import (
	"sync"

	"github.com/openarchive/authz/types"
)

var _ Store = (*syncedStore)(nil)

// syncedStore makes the inner store safe in concurrent usages: writes are
// serialized, readers run concurrently and only ever see complete records.
type syncedStore struct {
	s Store
	sync.RWMutex
}

// NewSyncedStore wraps a policy store for concurrent use
func NewSyncedStore(s Store) *syncedStore {
	return &syncedStore{s: s}
}

func (s *syncedStore) Create(spec types.PolicySpec) (*types.Policy, error) {
	s.Lock()
	defer s.Unlock()
	return s.s.Create(spec)
}

func (s *syncedStore) Put(policy types.Policy) error {
	s.Lock()
	defer s.Unlock()
	return s.s.Put(policy)
}

func (s *syncedStore) Drop(id string) error {
	s.Lock()
	defer s.Unlock()
	return s.s.Drop(id)
}

func (s *syncedStore) Get(id string) (*types.Policy, error) {
	s.RLock()
	defer s.RUnlock()
	return s.s.Get(id)
}

func (s *syncedStore) ByObject(obj types.Object, act types.Action) ([]*types.Policy, error) {
	s.RLock()
	defer s.RUnlock()
	return s.s.ByObject(obj, act)
}

func (s *syncedStore) BySubject(sub types.Subject, obj types.Object) ([]*types.Policy, error) {
	s.RLock()
	defer s.RUnlock()
	return s.s.BySubject(sub, obj)
}

func (s *syncedStore) UpdateWindow(id string, start, end *types.Date) (*types.Policy, error) {
	s.Lock()
	defer s.Unlock()
	return s.s.UpdateWindow(id, start, end)
}

func (s *syncedStore) UpdateSubject(id string, sub types.Subject) (*types.Policy, error) {
	s.Lock()
	defer s.Unlock()
	return s.s.UpdateSubject(id, sub)
}

func (s *syncedStore) Delete(id string) error {
	s.Lock()
	defer s.Unlock()
	return s.s.Delete(id)
}

func (s *syncedStore) RemoveByObject(obj types.Object) error {
	s.Lock()
	defer s.Unlock()
	return s.s.RemoveByObject(obj)
}

func (s *syncedStore) RemoveBySubject(sub types.Subject) error {
	s.Lock()
	defer s.Unlock()
	return s.s.RemoveBySubject(sub)
}
