package types

import "strings"

// Action is something a Subject may do to an Object.
// Actions are power of twos to achieve efficient set operations, like union, intersection, complement.
// An action is also a union of actions.
type Action uint32

// repository actions
const (
	Read Action = 1 << iota
	Write
	Add
	Remove
	Delete
	Admin

	None      Action = 0
	ReadWrite        = Read | Write
	Curate           = Add | Remove | Delete
)

// AllActions is the union of all repository actions
const AllActions = Read | Write | Add | Remove | Delete | Admin

var actionNames = map[Action]string{
	Read:   "READ",
	Write:  "WRITE",
	Add:    "ADD",
	Remove: "REMOVE",
	Delete: "DELETE",
	Admin:  "ADMIN",
}

// ParseAction maps a serialized action name to its Action value
func ParseAction(s string) (Action, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return None, ErrUnknownAction
}

// IsIn tells if all actions in a are members of b: a is subset of b
func (a Action) IsIn(b Action) bool {
	return a|b == b
}

// Includes tells if all actions in b are members of a: a is superset of b
func (a Action) Includes(b Action) bool {
	return b.IsIn(a)
}

// Difference returns set of actions belong to a but not b: complement of b in a
func (a Action) Difference(b Action) Action {
	return a &^ b
}

// Split a union of actions to slice of single actions
func (a Action) Split() []Action {
	out := make([]Action, 0)
	op := Action(1)
	for op <= a {
		if op&a > 0 {
			out = append(out, op)
		}
		op <<= 1
	}
	return out
}

func (a Action) String() string {
	as := a.Split()
	ns := make([]string, 0, len(as))
	for _, a := range as {
		n, ok := actionNames[a]
		if !ok {
			n = "unknown"
		}
		ns = append(ns, n)
	}
	return strings.Join(ns, "|")
}
