package types

// DelegationConfig is a snapshot of the flags gating administrative
// delegation, one flag per hop. It is passed explicitly into the engine
// so decisions stay pure: re-reading the snapshot between calls is how a
// deployment turns a hop off at runtime. Disabling a flag removes only
// that hop, never the whole chain, and never rights held through direct
// membership in an object's own administrators group.
type DelegationConfig struct {
	// CommunityAdminGroup lets community administrators manage the
	// community's own administrators group.
	CommunityAdminGroup bool

	// CommunityCollectionAdminGroup lets community administrators manage
	// the administrators groups of descendant collections.
	CommunityCollectionAdminGroup bool

	// CollectionAdminGroup lets collection administrators manage the
	// collection's own administrators group.
	CollectionAdminGroup bool

	// CommunityItemAdmin lets community administrators administer
	// descendant items, bundles, and bitstreams.
	CommunityItemAdmin bool

	// CollectionItemAdmin lets collection administrators administer
	// descendant items, bundles, and bitstreams.
	CollectionItemAdmin bool
}

// DefaultDelegation enables every hop, the out of the box behavior.
func DefaultDelegation() DelegationConfig {
	return DelegationConfig{
		CommunityAdminGroup:           true,
		CommunityCollectionAdminGroup: true,
		CollectionAdminGroup:          true,
		CommunityItemAdmin:            true,
		CollectionItemAdmin:           true,
	}
}
