package policy

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/openarchive/authz/internal/persist/filter"
	"github.com/openarchive/authz/types"
)

var _ Store = (*persistedStore)(nil)

// persistedStore writes edits through to a persister and replays changes
// made elsewhere via the persister's watch channel
type persistedStore struct {
	persist types.PolicyPersister
	Store
	log logr.Logger
}

// NewPersistedStore loads persisted policies into the inner store and
// keeps both sides in step from then on
func NewPersistedStore(ctx context.Context, inner Store, persist types.PolicyPersister, log logr.Logger) (*persistedStore, error) {
	s := &persistedStore{
		persist: filter.NewPolicyPersister(persist),
		Store:   inner,
		log:     log,
	}
	if e := s.loadPersisted(); e != nil {
		return nil, e
	}
	if e := s.startWatching(ctx); e != nil {
		return nil, e
	}

	return s, nil
}

func (s *persistedStore) loadPersisted() error {
	s.log.V(4).Info("load persisted policies")

	policies, e := s.persist.List()
	if e != nil {
		return e
	}
	for _, policy := range policies {
		if e := s.Store.Put(policy); e != nil {
			return e
		}
	}
	return nil
}

func (s *persistedStore) startWatching(ctx context.Context) error {
	changes, e := s.persist.Watch(ctx)
	if e != nil {
		return e
	}

	go func() {
		for {
			select {
			case change := <-changes:
				if e := s.coordinateChange(change); e != nil {
					s.log.Error(e, "coordinate policy changes")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (s *persistedStore) coordinateChange(change types.PolicyChange) error {
	s.log.V(4).Info("coordinate policy changes", "change", change)

	switch change.Method {
	case types.PersistInsert, types.PersistUpdate:
		return s.Store.Put(change.Policy)
	case types.PersistDelete:
		return s.Store.Drop(change.Policy.ID)
	}

	return fmt.Errorf("%w: policy persister changes: %s", types.ErrUnsupportedChange, change.Method)
}

func (s *persistedStore) Create(spec types.PolicySpec) (*types.Policy, error) {
	s.log.V(4).Info("create policy", "object", spec.Object, "action", spec.Action, "subject", spec.Subject)

	policy, e := s.Store.Create(spec)
	if e != nil {
		return nil, e
	}
	if e := s.persist.Insert(*policy); e != nil {
		// roll the in-memory record back so both sides agree
		_ = s.Store.Drop(policy.ID)
		return nil, e
	}
	return policy, nil
}

func (s *persistedStore) UpdateWindow(id string, start, end *types.Date) (*types.Policy, error) {
	s.log.V(4).Info("update policy window", "policy", id)

	prior, e := s.Store.Get(id)
	if e != nil {
		return nil, e
	}
	policy, e := s.Store.UpdateWindow(id, start, end)
	if e != nil {
		return nil, e
	}
	if e := s.persist.Update(*policy); e != nil {
		// roll the in-memory record back so both sides agree
		_ = s.Store.Put(*prior)
		return nil, e
	}
	return policy, nil
}

func (s *persistedStore) UpdateSubject(id string, sub types.Subject) (*types.Policy, error) {
	s.log.V(4).Info("update policy subject", "policy", id, "subject", sub)

	prior, e := s.Store.Get(id)
	if e != nil {
		return nil, e
	}
	policy, e := s.Store.UpdateSubject(id, sub)
	if e != nil {
		return nil, e
	}
	if e := s.persist.Update(*policy); e != nil {
		// roll the in-memory record back so both sides agree
		_ = s.Store.Put(*prior)
		return nil, e
	}
	return policy, nil
}

func (s *persistedStore) Delete(id string) error {
	s.log.V(4).Info("delete policy", "policy", id)

	if e := s.persist.Remove(id); e != nil {
		return e
	}
	return s.Store.Delete(id)
}

func (s *persistedStore) RemoveByObject(obj types.Object) error {
	s.log.V(4).Info("remove policies by object", "object", obj)

	policies, e := s.Store.ByObject(obj, types.None)
	if e != nil {
		return e
	}
	for _, policy := range policies {
		if e := s.persist.Remove(policy.ID); e != nil {
			return e
		}
	}
	return s.Store.RemoveByObject(obj)
}

func (s *persistedStore) RemoveBySubject(sub types.Subject) error {
	s.log.V(4).Info("remove policies by subject", "subject", sub)

	policies, e := s.Store.BySubject(sub, nil)
	if e != nil {
		return e
	}
	for _, policy := range policies {
		if e := s.persist.Remove(policy.ID); e != nil {
			return e
		}
	}
	return s.Store.RemoveBySubject(sub)
}

// New creates a concurrent safe, optionally persisted policy store
func New(ctx context.Context, persist types.PolicyPersister, log logr.Logger) (Store, error) {
	inner := NewSyncedStore(NewStore())
	if persist == nil {
		return inner, nil
	}
	return NewPersistedStore(ctx, inner, persist, log)
}
