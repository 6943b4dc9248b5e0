package types

// Hierarchy resolves the ownership chain of hierarchical objects and the
// administrators group of containers. Parent links form a DAG rooted at
// communities: a collection belongs to one or more communities, an item
// to one or more collections, a bitstream to a bundle to an item.
// Authorization inheritance walks strictly upward, never downward.
type Hierarchy interface {
	// AddParent links child under parent. The pairing must be one of
	// bitstream-bundle, bundle-item, item-collection, collection-community,
	// or community-community, and must not introduce a cycle.
	AddParent(child, parent Object) error

	// RemoveParent unlinks child from parent
	RemoveParent(child, parent Object) error

	// Parents returns the immediate parents of the object
	Parents(obj Object) (map[Object]struct{}, error)

	// Ancestors returns the ownership chain of the object ordered nearest
	// ancestor first, across all parent paths, each ancestor once. For a
	// Group registered as a container's administrators, the chain starts
	// at that container.
	Ancestors(obj Object) ([]Object, error)

	// SetAdministrators registers group as the administrators of the
	// container. A group administers at most one container.
	SetAdministrators(obj Object, group Group) error

	// Administrators returns the container's admin group, if one is registered
	Administrators(obj Object) (Group, bool, error)

	// AdministeredBy returns the container the group administers, if any
	AdministeredBy(group Group) (Object, bool, error)

	// RemoveAdministrators unregisters the container's admin group
	RemoveAdministrators(obj Object) error

	// Remove forgets the object: its parent links in both directions and
	// its administrators registration
	Remove(obj Object) error
}
