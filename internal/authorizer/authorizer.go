package authorizer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openarchive/authz/internal/policy"
	"github.com/openarchive/authz/types"
)

var _ types.Authorizer = (*authorizer)(nil)

type authorizer struct {
	m types.Membership
	h types.Hierarchy
	p policy.Store
	l logr.Logger

	cfgMu sync.RWMutex
	cfg   types.DelegationConfig

	presets []types.PresetRule
	special types.SpecialGroupResolver
	metrics *decisionMetrics
}

// Option tunes an authorizer beyond its required collaborators
type Option func(*authorizer)

// WithPresetRules adds rules checked before stored policies
func WithPresetRules(rules ...types.PresetRule) Option {
	return func(a *authorizer) {
		a.presets = append(a.presets, rules...)
	}
}

// WithSpecialGroups sets the resolver for request-context group grants
func WithSpecialGroups(r types.SpecialGroupResolver) Option {
	return func(a *authorizer) {
		a.special = r
	}
}

// WithMetrics registers decision counters with the registerer
func WithMetrics(reg prometheus.Registerer) Option {
	return func(a *authorizer) {
		a.metrics = newDecisionMetrics(reg)
	}
}

// New creates an authorizer over the given membership, hierarchy, and policy store
func New(m types.Membership, h types.Hierarchy, p policy.Store, cfg types.DelegationConfig, l logr.Logger, opts ...Option) types.Authorizer {
	a := &authorizer{
		m:   m,
		h:   h,
		p:   p,
		cfg: cfg,
		l:   l,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetDelegation replaces the delegation flag snapshot used by subsequent decisions
func (a *authorizer) SetDelegation(cfg types.DelegationConfig) {
	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	a.cfg = cfg
}

// Delegation returns the active delegation flag snapshot
func (a *authorizer) Delegation() types.DelegationConfig {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.cfg
}

// JoinGroup makes sub an immediate member of group
func (a *authorizer) JoinGroup(sub types.Subject, group types.Group) error {
	a.l.V(4).Info("join group", "subject", sub, "group", group)
	return a.m.Join(sub, group)
}

// LeaveGroup removes sub from the immediate members of group
func (a *authorizer) LeaveGroup(sub types.Subject, group types.Group) error {
	a.l.V(4).Info("leave group", "subject", sub, "group", group)
	return a.m.Leave(sub, group)
}

// RemoveEPerson removes an EPerson, its memberships, and all policies about it
func (a *authorizer) RemoveEPerson(person types.EPerson) error {
	a.l.V(4).Info("remove eperson", "eperson", person)

	if e := a.p.RemoveBySubject(person); e != nil {
		return e
	}
	if e := a.p.RemoveByObject(person); e != nil {
		return e
	}
	return a.m.RemoveEPerson(person)
}

// RemoveGroup removes a group, its membership edges, its administrators
// registration, and all policies about it
func (a *authorizer) RemoveGroup(group types.Group) error {
	a.l.V(4).Info("remove group", "group", group)

	if e := a.p.RemoveBySubject(group); e != nil {
		return e
	}
	if e := a.p.RemoveByObject(group); e != nil {
		return e
	}

	if owner, ok, e := a.h.AdministeredBy(group); e != nil {
		return e
	} else if ok {
		if e := a.h.RemoveAdministrators(owner); e != nil {
			return e
		}
	}

	return a.m.RemoveGroup(group)
}

// Memberships returns the MembershipReader interface for subjects
func (a *authorizer) Memberships() types.MembershipReader {
	return a.m
}

// AddParent links child under parent in the object graph
func (a *authorizer) AddParent(child, parent types.Object) error {
	a.l.V(4).Info("add parent", "child", child, "parent", parent)
	return a.h.AddParent(child, parent)
}

// RemoveParent unlinks child from parent
func (a *authorizer) RemoveParent(child, parent types.Object) error {
	a.l.V(4).Info("remove parent", "child", child, "parent", parent)
	return a.h.RemoveParent(child, parent)
}

// Ancestors returns the ownership chain of the object, nearest first
func (a *authorizer) Ancestors(obj types.Object) ([]types.Object, error) {
	return a.h.Ancestors(obj)
}

// CreateAdministrators derives the canonical admin group of the container,
// registers it, and returns it
func (a *authorizer) CreateAdministrators(obj types.Object) (types.Group, error) {
	a.l.V(4).Info("create administrators", "object", obj)

	group, e := adminGroupFor(obj)
	if e != nil {
		return "", e
	}
	if e := a.h.SetAdministrators(obj, group); e != nil {
		return "", e
	}
	return group, nil
}

// DeleteAdministrators removes the container's admin group and cascades
// its memberships and policies
func (a *authorizer) DeleteAdministrators(obj types.Object) error {
	a.l.V(4).Info("delete administrators", "object", obj)

	group, ok, e := a.h.Administrators(obj)
	if e != nil {
		return e
	}
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrNoAdministrators, obj)
	}

	if e := a.h.RemoveAdministrators(obj); e != nil {
		return e
	}
	if e := a.p.RemoveBySubject(group); e != nil {
		return e
	}
	if e := a.p.RemoveByObject(group); e != nil {
		return e
	}
	return a.m.RemoveGroup(group)
}

// Administrators returns the container's admin group, if registered
func (a *authorizer) Administrators(obj types.Object) (types.Group, bool, error) {
	return a.h.Administrators(obj)
}

// RemoveObject removes a hierarchical object, its administrators group,
// and every policy targeting it
func (a *authorizer) RemoveObject(obj types.Object) error {
	a.l.V(4).Info("remove object", "object", obj)

	if _, ok, e := a.h.Administrators(obj); e != nil {
		return e
	} else if ok {
		if e := a.DeleteAdministrators(obj); e != nil {
			return e
		}
	}

	if e := a.p.RemoveByObject(obj); e != nil {
		return e
	}
	return a.h.Remove(obj)
}

// CreatePolicy validates and stores a new policy
func (a *authorizer) CreatePolicy(spec types.PolicySpec) (*types.Policy, error) {
	a.l.V(4).Info("create policy", "object", spec.Object, "action", spec.Action, "subject", spec.Subject)
	return a.p.Create(spec)
}

// Policy returns the policy with the id
func (a *authorizer) Policy(id string) (*types.Policy, error) {
	return a.p.Get(id)
}

// PoliciesOn returns policies directly on the object in insertion order
func (a *authorizer) PoliciesOn(obj types.Object, act types.Action) ([]*types.Policy, error) {
	return a.p.ByObject(obj, act)
}

// PoliciesFor returns policies granted to the subject
func (a *authorizer) PoliciesFor(sub types.Subject, obj types.Object) ([]*types.Policy, error) {
	return a.p.BySubject(sub, obj)
}

// UpdatePolicyWindow replaces the start and end dates of the policy
func (a *authorizer) UpdatePolicyWindow(id string, start, end *types.Date) (*types.Policy, error) {
	a.l.V(4).Info("update policy window", "policy", id)
	return a.p.UpdateWindow(id, start, end)
}

// UpdatePolicySubject replaces the subject of the policy
func (a *authorizer) UpdatePolicySubject(id string, sub types.Subject) (*types.Policy, error) {
	a.l.V(4).Info("update policy subject", "policy", id, "subject", sub)
	return a.p.UpdateSubject(id, sub)
}

// DeletePolicy removes the policy with the id
func (a *authorizer) DeletePolicy(id string) error {
	a.l.V(4).Info("delete policy", "policy", id)
	return a.p.Delete(id)
}

// InheritPolicies copies the collection's read grants onto the item as
// TYPE_INHERITED policies, skipping submission and workflow grants
func (a *authorizer) InheritPolicies(from types.Collection, to types.Item) error {
	a.l.V(4).Info("inherit policies", "collection", from, "item", to)

	policies, e := a.p.ByObject(from, types.Read)
	if e != nil {
		return e
	}

	for _, pol := range policies {
		if pol.Type == types.TypeSubmission || pol.Type == types.TypeWorkflow {
			continue
		}
		_, e := a.p.Create(types.PolicySpec{
			Object:    to,
			Action:    types.Read,
			Subject:   pol.Subject,
			StartDate: pol.StartDate,
			EndDate:   pol.EndDate,
			Type:      types.TypeInherited,
			Name:      pol.Name,
		})
		if e != nil {
			// the item may already carry the grant from an earlier pass
			if errors.Is(e, types.ErrDuplicatePolicy) {
				continue
			}
			return e
		}
	}
	return nil
}

func adminGroupFor(obj types.Object) (types.Group, error) {
	switch o := obj.(type) {
	case types.Community:
		return types.Group("COMMUNITY_" + string(o) + "_ADMIN"), nil
	case types.Collection:
		return types.Group("COLLECTION_" + string(o) + "_ADMIN"), nil
	}
	return "", fmt.Errorf("%w: %s", types.ErrNotContainer, obj)
}
