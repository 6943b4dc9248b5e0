package types

// DecisionSource names the rule that produced an Allow.
type DecisionSource string

// decision sources
const (
	SourceNone       DecisionSource = ""
	SourcePolicy     DecisionSource = "policy"
	SourceAdminGroup DecisionSource = "admin-group"
	SourceDelegated  DecisionSource = "delegated"
	SourcePreset     DecisionSource = "preset"
)

// Decision is the outcome of one authorization request. It is computed
// fresh per request and never persisted or cached: embargo windows and
// group membership can change between calls.
type Decision struct {
	Allowed bool

	// Policy is the matched policy when Source is SourcePolicy, or the
	// ancestor ADMIN policy when the allow was delegated through one.
	Policy *Policy

	Source DecisionSource

	// Ancestor is the object whose administrators produced a delegated allow.
	Ancestor Object
}

// Deny is the zero decision: not allowed, nothing matched.
var Deny = Decision{}
