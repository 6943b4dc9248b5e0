package filter

import "github.com/openarchive/authz/types"

type policyChangeKey struct {
	id     string
	method types.PersistMethod
}

type policyPersisterFilter struct {
	types.PolicyPersister
	changes map[policyChangeKey]struct{}
}

// NewPolicyPersister checks if an incoming change was made through this
// persister itself, and does not apply it again if true. Policies are
// keyed by id: a policy record is not comparable as a whole.
func NewPolicyPersister(p types.PolicyPersister) *policyPersisterFilter {
	return &policyPersisterFilter{
		PolicyPersister: p,
		changes:         make(map[policyChangeKey]struct{}),
	}
}

// Insert inserts a policy to the persister
func (f *policyPersisterFilter) Insert(policy types.Policy) error {
	key := policyChangeKey{id: policy.ID, method: types.PersistInsert}

	if _, ok := f.changes[key]; ok {
		delete(f.changes, key)
		return nil
	}

	f.changes[key] = struct{}{}
	return f.PolicyPersister.Insert(policy)
}

// Update replaces the stored policy with the same id
func (f *policyPersisterFilter) Update(policy types.Policy) error {
	key := policyChangeKey{id: policy.ID, method: types.PersistUpdate}

	if _, ok := f.changes[key]; ok {
		delete(f.changes, key)
		return nil
	}

	f.changes[key] = struct{}{}
	return f.PolicyPersister.Update(policy)
}

// Remove a policy from the persister by id
func (f *policyPersisterFilter) Remove(id string) error {
	key := policyChangeKey{id: id, method: types.PersistDelete}

	if _, ok := f.changes[key]; ok {
		delete(f.changes, key)
		return nil
	}

	f.changes[key] = struct{}{}
	return f.PolicyPersister.Remove(id)
}
