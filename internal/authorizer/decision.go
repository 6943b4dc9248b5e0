package authorizer

import (
	"context"
	"time"

	"github.com/openarchive/authz/types"
)

// Authorize decides if sub may perform act on obj at now. Deny is a
// normal decision, not an error. The decision is a pure read over the
// stores: nothing is cached, so the same call with a later now answers
// differently once an embargo date passes.
func (a *authorizer) Authorize(ctx context.Context, sub types.Subject, obj types.Object, act types.Action, now time.Time) (types.Decision, error) {
	a.l.V(6).Info("authorize", "subject", sub, "object", obj, "action", act, "now", now)

	decision, err := a.decide(ctx, a.Delegation(), sub, obj, act, now)
	if err != nil {
		return types.Deny, err
	}

	a.metrics.observe(act, decision)
	return decision, nil
}

func (a *authorizer) decide(ctx context.Context, cfg types.DelegationConfig, sub types.Subject, obj types.Object, act types.Action, now time.Time) (types.Decision, error) {
	for _, rule := range a.presets {
		if rule(a.m, sub, obj, act) {
			return types.Decision{Allowed: true, Source: types.SourcePreset}, nil
		}
	}

	effective, err := a.effectiveSubjects(ctx, sub)
	if err != nil {
		return types.Deny, err
	}

	// direct policies on the object; ADMIN implies every action
	direct, err := a.p.ByObject(obj, types.None)
	if err != nil {
		return types.Deny, err
	}
	for _, pol := range direct {
		if !pol.Action.Includes(act) && !pol.Action.Includes(types.Admin) {
			continue
		}
		if _, ok := effective[pol.Subject]; !ok {
			continue
		}
		if !pol.ActiveAt(now) {
			continue
		}
		return types.Decision{Allowed: true, Policy: pol, Source: types.SourcePolicy}, nil
	}

	// direct membership of the object's own administrators group always
	// counts; only delegated rights are subject to configuration
	if group, ok, err := a.h.Administrators(obj); err != nil {
		return types.Deny, err
	} else if ok {
		if _, in := effective[types.Subject(group)]; in {
			return types.Decision{Allowed: true, Source: types.SourceAdminGroup}, nil
		}
	}

	// delegated admin rights, nearest ancestor first, one flag per hop.
	// Delegation walks strictly upward: a sibling's admin rights are
	// never reachable from here.
	ancestors, err := a.h.Ancestors(obj)
	if err != nil {
		return types.Deny, err
	}
	for _, anc := range ancestors {
		enabled, err := a.hopEnabled(cfg, anc, obj)
		if err != nil {
			return types.Deny, err
		}
		if !enabled {
			continue
		}

		if group, ok, err := a.h.Administrators(anc); err != nil {
			return types.Deny, err
		} else if ok {
			if _, in := effective[types.Subject(group)]; in {
				return types.Decision{Allowed: true, Source: types.SourceDelegated, Ancestor: anc}, nil
			}
		}

		// a direct ADMIN policy on the ancestor delegates the same way;
		// admin delegation carries no time window
		admins, err := a.p.ByObject(anc, types.Admin)
		if err != nil {
			return types.Deny, err
		}
		for _, pol := range admins {
			if _, in := effective[pol.Subject]; in {
				return types.Decision{Allowed: true, Policy: pol, Source: types.SourceDelegated, Ancestor: anc}, nil
			}
		}
	}

	return types.Deny, nil
}

// effectiveSubjects is the identity of the request for policy matching:
// the subject itself, every group it transitively belongs to, and any
// special groups resolved from the request context with their closures.
func (a *authorizer) effectiveSubjects(ctx context.Context, sub types.Subject) (map[types.Subject]struct{}, error) {
	effective := map[types.Subject]struct{}{sub: {}}

	groups, err := a.m.GroupsOf(sub)
	if err != nil {
		return nil, err
	}
	for group := range groups {
		effective[group] = struct{}{}
	}

	if a.special != nil {
		for _, group := range a.special(ctx) {
			effective[group] = struct{}{}
			supers, err := a.m.GroupsOf(group)
			if err != nil {
				return nil, err
			}
			for super := range supers {
				effective[super] = struct{}{}
			}
		}
	}

	return effective, nil
}

// DelegatedAdmins returns the admin groups holding delegated rights on
// the object, nearest ancestor first, filtered by the active flags.
func (a *authorizer) DelegatedAdmins(obj types.Object) ([]types.Group, error) {
	cfg := a.Delegation()

	ancestors, err := a.h.Ancestors(obj)
	if err != nil {
		return nil, err
	}

	delegated := make([]types.Group, 0, len(ancestors))
	for _, anc := range ancestors {
		enabled, err := a.hopEnabled(cfg, anc, obj)
		if err != nil {
			return nil, err
		}
		if !enabled {
			continue
		}
		if group, ok, err := a.h.Administrators(anc); err != nil {
			return nil, err
		} else if ok {
			delegated = append(delegated, group)
		}
	}

	return delegated, nil
}

// hopEnabled gates one hop of delegation from an ancestor to the target
// object. Each flag is independent: disabling one removes only that hop.
func (a *authorizer) hopEnabled(cfg types.DelegationConfig, anc, obj types.Object) (bool, error) {
	switch target := obj.(type) {
	case types.Group:
		// rights over an administrators group follow its owning container
		owner, ok, err := a.h.AdministeredBy(target)
		if err != nil || !ok {
			return false, err
		}
		switch owner.(type) {
		case types.Collection:
			if anc == owner {
				return cfg.CollectionAdminGroup, nil
			}
			if _, ok := anc.(types.Community); ok {
				return cfg.CommunityCollectionAdminGroup, nil
			}
			return false, nil
		case types.Community:
			return cfg.CommunityAdminGroup, nil
		}
		return false, nil

	case types.Item, types.Bundle, types.Bitstream:
		switch anc.(type) {
		case types.Collection:
			return cfg.CollectionItemAdmin, nil
		case types.Community:
			return cfg.CommunityItemAdmin, nil
		}
		// item and bundle ancestors carry no flags of their own
		return true, nil

	default:
		// communities, collections, and epersons: upward delegation is ungated
		return true, nil
	}
}
