package types

import "errors"

// exported errors
var (
	ErrNotFound          = errors.New("not found")
	ErrIncompleteSubject = errors.New("policy subject is not set, it must be an EPerson or a Group")
	ErrDuplicatePolicy   = errors.New("an identical policy already exists")
	ErrUnknownAction     = errors.New("unknown action")
	ErrInvalidSubject    = errors.New("invalid subject, it should be an EPerson or a Group")
	ErrInvalidObject     = errors.New("invalid object, it should be a community, collection, item, bundle, bitstream, eperson, or group")
	ErrCycle             = errors.New("edit would introduce a cycle")
	ErrInvalidParent     = errors.New("invalid parent for this kind of object")
	ErrNotContainer      = errors.New("only communities and collections own administrators groups")
	ErrGroupInUse        = errors.New("group already administers another container")
	ErrNoAdministrators  = errors.New("no administrators group registered for the container")
	ErrUnsupportedChange = errors.New("persister changed in an unsupported way")
)
