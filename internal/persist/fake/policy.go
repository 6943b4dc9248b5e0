package fake

import (
	"context"
	"fmt"

	"github.com/openarchive/authz/types"
)

type policyPersister struct {
	policies map[string]types.Policy
	order    []string
	changes  chan types.PolicyChange
}

// NewPolicyPersister creates an in-memory policy persister for tests
func NewPolicyPersister(ctx context.Context, init ...types.Policy) *policyPersister {
	p := &policyPersister{
		policies: make(map[string]types.Policy),
		changes:  make(chan types.PolicyChange),
	}

	for _, policy := range init {
		p.policies[policy.ID] = policy
		p.order = append(p.order, policy.ID)
	}

	go func() {
		<-ctx.Done()
		close(p.changes)
	}()

	return p
}

func (p *policyPersister) Insert(policy types.Policy) error {
	if _, ok := p.policies[policy.ID]; ok {
		return nil
	}

	p.policies[policy.ID] = policy
	p.order = append(p.order, policy.ID)
	p.changes <- types.PolicyChange{Policy: policy, Method: types.PersistInsert}

	return nil
}

func (p *policyPersister) Update(policy types.Policy) error {
	if _, ok := p.policies[policy.ID]; !ok {
		return fmt.Errorf("%w: policy %s", types.ErrNotFound, policy.ID)
	}

	p.policies[policy.ID] = policy
	p.changes <- types.PolicyChange{Policy: policy, Method: types.PersistUpdate}

	return nil
}

func (p *policyPersister) Remove(id string) error {
	policy, ok := p.policies[id]
	if !ok {
		return nil
	}

	delete(p.policies, id)
	for i, other := range p.order {
		if other == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	p.changes <- types.PolicyChange{Policy: policy, Method: types.PersistDelete}

	return nil
}

func (p *policyPersister) List() ([]types.Policy, error) {
	policies := make([]types.Policy, 0, len(p.order))
	for _, id := range p.order {
		policies = append(policies, p.policies[id])
	}

	return policies, nil
}

func (p *policyPersister) Watch(ctx context.Context) (<-chan types.PolicyChange, error) {
	return p.changes, nil
}
