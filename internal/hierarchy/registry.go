package hierarchy

import (
	"fmt"

	"github.com/openarchive/authz/types"
)

var _ types.Hierarchy = (*registry)(nil)

// registry mirrors the repository's object graph: immediate parent links
// kind-checked to the community-collection-item-bundle-bitstream shape,
// and the administrators group of each container.
type registry struct {
	parents  map[types.Object]map[types.Object]struct{}
	children map[types.Object]map[types.Object]struct{}

	admins  map[types.Object]types.Group
	adminOf map[types.Group]types.Object
}

// NewRegistry creates an empty hierarchy registry
func NewRegistry() *registry {
	return &registry{
		parents:  make(map[types.Object]map[types.Object]struct{}),
		children: make(map[types.Object]map[types.Object]struct{}),
		admins:   make(map[types.Object]types.Group),
		adminOf:  make(map[types.Group]types.Object),
	}
}

// validParent encodes the only pairings the object graph allows.
// Communities may nest under communities; everything else has exactly one
// kind of container.
func validParent(child, parent types.Object) bool {
	switch child.(type) {
	case types.Bitstream:
		_, ok := parent.(types.Bundle)
		return ok
	case types.Bundle:
		_, ok := parent.(types.Item)
		return ok
	case types.Item:
		_, ok := parent.(types.Collection)
		return ok
	case types.Collection:
		_, ok := parent.(types.Community)
		return ok
	case types.Community:
		_, ok := parent.(types.Community)
		return ok
	}
	return false
}

// AddParent implements Hierarchy interface
func (r *registry) AddParent(child, parent types.Object) error {
	if !validParent(child, parent) {
		return fmt.Errorf("%w: %s under %s", types.ErrInvalidParent, child, parent)
	}

	// only community chains can loop; reject before linking
	ancestors, err := r.Ancestors(parent)
	if err != nil {
		return err
	}
	if child == parent {
		return fmt.Errorf("%w: %s under itself", types.ErrCycle, child)
	}
	for _, anc := range ancestors {
		if anc == child {
			return fmt.Errorf("%w: %s under %s", types.ErrCycle, child, parent)
		}
	}

	if r.parents[child] == nil {
		r.parents[child] = make(map[types.Object]struct{}, 1)
	}
	r.parents[child][parent] = struct{}{}

	if r.children[parent] == nil {
		r.children[parent] = make(map[types.Object]struct{})
	}
	r.children[parent][child] = struct{}{}

	return nil
}

// RemoveParent implements Hierarchy interface
func (r *registry) RemoveParent(child, parent types.Object) error {
	if r.parents[child] == nil {
		return fmt.Errorf("%w: parent link: %s -> %s", types.ErrNotFound, child, parent)
	} else if _, ok := r.parents[child][parent]; !ok {
		return fmt.Errorf("%w: parent link: %s -> %s", types.ErrNotFound, child, parent)
	}

	delete(r.parents[child], parent)
	delete(r.children[parent], child)

	return nil
}

// Parents implements Hierarchy interface
func (r *registry) Parents(obj types.Object) (map[types.Object]struct{}, error) {
	return r.parents[obj], nil
}

// Ancestors implements Hierarchy interface.
// The walk is breadth first so nearer ancestors come before farther ones,
// each object reported once even when parent paths re-join. A Group that
// administers a container is treated as hanging directly under it.
func (r *registry) Ancestors(obj types.Object) ([]types.Object, error) {
	var frontier []types.Object

	if group, ok := obj.(types.Group); ok {
		owner, owned := r.adminOf[group]
		if !owned {
			return nil, nil
		}
		frontier = append(frontier, owner)
	} else {
		for parent := range r.parents[obj] {
			frontier = append(frontier, parent)
		}
	}

	chain := make([]types.Object, 0, len(frontier))
	seen := make(map[types.Object]struct{}, len(frontier))

	for len(frontier) > 0 {
		next := make([]types.Object, 0)
		for _, anc := range frontier {
			if _, ok := seen[anc]; ok {
				continue
			}
			seen[anc] = struct{}{}
			chain = append(chain, anc)
			for parent := range r.parents[anc] {
				next = append(next, parent)
			}
		}
		frontier = next
	}

	return chain, nil
}

// SetAdministrators implements Hierarchy interface
func (r *registry) SetAdministrators(obj types.Object, group types.Group) error {
	if !types.IsContainer(obj) {
		return fmt.Errorf("%w: %s", types.ErrNotContainer, obj)
	}
	if owner, ok := r.adminOf[group]; ok && owner != obj {
		return fmt.Errorf("%w: %s administers %s", types.ErrGroupInUse, group, owner)
	}

	if old, ok := r.admins[obj]; ok {
		delete(r.adminOf, old)
	}
	r.admins[obj] = group
	r.adminOf[group] = obj

	return nil
}

// Administrators implements Hierarchy interface
func (r *registry) Administrators(obj types.Object) (types.Group, bool, error) {
	group, ok := r.admins[obj]
	return group, ok, nil
}

// AdministeredBy implements Hierarchy interface
func (r *registry) AdministeredBy(group types.Group) (types.Object, bool, error) {
	obj, ok := r.adminOf[group]
	return obj, ok, nil
}

// RemoveAdministrators implements Hierarchy interface
func (r *registry) RemoveAdministrators(obj types.Object) error {
	group, ok := r.admins[obj]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrNoAdministrators, obj)
	}

	delete(r.admins, obj)
	delete(r.adminOf, group)

	return nil
}

// Remove implements Hierarchy interface
func (r *registry) Remove(obj types.Object) error {
	parents := r.parents[obj]
	children := r.children[obj]

	delete(r.parents, obj)
	delete(r.children, obj)

	for parent := range parents {
		delete(r.children[parent], obj)
	}
	for child := range children {
		delete(r.parents[child], obj)
	}

	if group, ok := r.admins[obj]; ok {
		delete(r.admins, obj)
		delete(r.adminOf, group)
	}

	return nil
}
