package types

import "strings"

// Object is anything a policy can target: a hierarchical object
// (Community, Collection, Item, Bundle, Bitstream), or an EPerson or
// Group when the policy governs edits to the subject itself.
// Object is not expecting custom implementations.
type Object interface {
	Entity
	object() string
}

// Community is a top level container. Communities may nest in other communities.
type Community string

func (c Community) String() string {
	return "community:" + string(c)
}

func (c Community) object() string {
	return c.String()
}

// Collection holds items and belongs to one or more communities.
type Collection string

func (c Collection) String() string {
	return "collection:" + string(c)
}

func (c Collection) object() string {
	return c.String()
}

// Item is an archived work, belongs to one or more collections.
type Item string

func (i Item) String() string {
	return "item:" + string(i)
}

func (i Item) object() string {
	return i.String()
}

// Bundle groups the bitstreams of one item.
type Bundle string

func (b Bundle) String() string {
	return "bundle:" + string(b)
}

func (b Bundle) object() string {
	return b.String()
}

// Bitstream is a stored file, belongs to a bundle.
type Bitstream string

func (b Bitstream) String() string {
	return "bitstream:" + string(b)
}

func (b Bitstream) object() string {
	return b.String()
}

// IsContainer reports whether obj may own an administrators group.
func IsContainer(obj Object) bool {
	switch obj.(type) {
	case Community, Collection:
		return true
	}
	return false
}

// ParseObject parses a serialized Object
func ParseObject(s string) (Object, error) {
	switch {
	case strings.HasPrefix(s, "community:"):
		return Community(strings.TrimPrefix(s, "community:")), nil
	case strings.HasPrefix(s, "collection:"):
		return Collection(strings.TrimPrefix(s, "collection:")), nil
	case strings.HasPrefix(s, "item:"):
		return Item(strings.TrimPrefix(s, "item:")), nil
	case strings.HasPrefix(s, "bundle:"):
		return Bundle(strings.TrimPrefix(s, "bundle:")), nil
	case strings.HasPrefix(s, "bitstream:"):
		return Bitstream(strings.TrimPrefix(s, "bitstream:")), nil
	case strings.HasPrefix(s, "eperson:"):
		return EPerson(strings.TrimPrefix(s, "eperson:")), nil
	case strings.HasPrefix(s, "group:"):
		return Group(strings.TrimPrefix(s, "group:")), nil
	}

	return nil, ErrInvalidObject
}
