package fake

import (
	"context"

	"github.com/openarchive/authz/types"
)

type membershipPersister struct {
	edges   map[types.Subject]map[types.Group]struct{}
	changes chan types.MembershipChange
}

// NewMembershipPersister creates an in-memory membership persister for tests
func NewMembershipPersister(ctx context.Context, init ...types.MembershipEdge) *membershipPersister {
	p := &membershipPersister{
		edges:   make(map[types.Subject]map[types.Group]struct{}),
		changes: make(chan types.MembershipChange),
	}

	for _, edge := range init {
		if p.edges[edge.Member] == nil {
			p.edges[edge.Member] = make(map[types.Group]struct{})
		}
		p.edges[edge.Member][edge.Group] = struct{}{}
	}

	go func() {
		<-ctx.Done()
		close(p.changes)
	}()

	return p
}

func (p *membershipPersister) Insert(sub types.Subject, group types.Group) error {
	if p.edges[sub] != nil {
		if _, ok := p.edges[sub][group]; ok {
			return nil
		}
	} else {
		p.edges[sub] = make(map[types.Group]struct{})
	}

	p.edges[sub][group] = struct{}{}
	p.changes <- types.MembershipChange{
		MembershipEdge: types.MembershipEdge{
			Member: sub,
			Group:  group,
		},
		Method: types.PersistInsert,
	}

	return nil
}

func (p *membershipPersister) Remove(sub types.Subject, group types.Group) error {
	if p.edges[sub] == nil {
		return nil
	}
	if _, ok := p.edges[sub][group]; !ok {
		return nil
	}

	delete(p.edges[sub], group)
	p.changes <- types.MembershipChange{
		MembershipEdge: types.MembershipEdge{
			Member: sub,
			Group:  group,
		},
		Method: types.PersistDelete,
	}

	return nil
}

func (p *membershipPersister) List() ([]types.MembershipEdge, error) {
	edges := make([]types.MembershipEdge, 0, len(p.edges))
	for sub, groups := range p.edges {
		for group := range groups {
			edges = append(edges, types.MembershipEdge{Member: sub, Group: group})
		}
	}

	return edges, nil
}

func (p *membershipPersister) Watch(ctx context.Context) (<-chan types.MembershipChange, error) {
	return p.changes, nil
}
