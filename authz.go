// Package authz decides whether a subject may perform an action on an
// object of a digital repository: policies bind subjects, actions, and
// optional embargo windows to objects; group membership is transitive;
// administrators of a community or collection hold configurable,
// delegated rights over descendant objects and their admin groups.
package authz

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openarchive/authz/internal/authorizer"
	"github.com/openarchive/authz/internal/hierarchy"
	"github.com/openarchive/authz/internal/membership"
	"github.com/openarchive/authz/internal/policy"
	"github.com/openarchive/authz/types"
)

// New creates an Authorizer
func New(ctx context.Context, opts ...AuthorizerOption) (types.Authorizer, error) {
	cfg := &AuthorizerConfig{
		delegation: types.DefaultDelegation(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.log.GetSink() == nil {
		cfg.log = stdr.New(log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile))
	}

	m, e := membership.New(ctx, cfg.mp, cfg.log.WithName("membership"))
	if e != nil {
		return nil, fmt.Errorf("init membership failed: %w", e)
	}

	h := hierarchy.New()

	p, e := policy.New(ctx, cfg.pp, cfg.log.WithName("policy"))
	if e != nil {
		return nil, fmt.Errorf("init policy store failed: %w", e)
	}

	engineOpts := make([]authorizer.Option, 0, 3)
	if len(cfg.presets) > 0 {
		engineOpts = append(engineOpts, authorizer.WithPresetRules(cfg.presets...))
	}
	if cfg.special != nil {
		engineOpts = append(engineOpts, authorizer.WithSpecialGroups(cfg.special))
	}
	if cfg.metrics != nil {
		engineOpts = append(engineOpts, authorizer.WithMetrics(cfg.metrics))
	}

	return authorizer.New(m, h, p, cfg.delegation, cfg.log.WithName("authorizer"), engineOpts...), nil
}

// WithMembershipPersister sets the persister for subject-group membership.
// Memberships are lost after restart if not set.
func WithMembershipPersister(p types.MembershipPersister) AuthorizerOption {
	return func(cfg *AuthorizerConfig) {
		cfg.mp = p
	}
}

// WithPolicyPersister sets the persister for policies.
// Policies are lost after restart if not set.
func WithPolicyPersister(p types.PolicyPersister) AuthorizerOption {
	return func(cfg *AuthorizerConfig) {
		cfg.pp = p
	}
}

// WithDelegation sets the initial delegation flag snapshot.
// Every hop is enabled when omitted.
func WithDelegation(d types.DelegationConfig) AuthorizerOption {
	return func(cfg *AuthorizerConfig) {
		cfg.delegation = d
	}
}

// WithPresetRules adds rules checked before stored policies
func WithPresetRules(rules ...types.PresetRule) AuthorizerOption {
	return func(cfg *AuthorizerConfig) {
		cfg.presets = append(cfg.presets, rules...)
	}
}

// WithSiteAdministrators grants the group and its members every action on
// every object
func WithSiteAdministrators(admins types.Group) AuthorizerOption {
	return func(cfg *AuthorizerConfig) {
		cfg.presets = append(cfg.presets, types.SiteAdministrators(admins))
	}
}

// WithSpecialGroups sets the resolver merging request-context group
// grants into the effective subject set
func WithSpecialGroups(r types.SpecialGroupResolver) AuthorizerOption {
	return func(cfg *AuthorizerConfig) {
		cfg.special = r
	}
}

// WithMetrics registers decision counters with the registerer
func WithMetrics(reg prometheus.Registerer) AuthorizerOption {
	return func(cfg *AuthorizerConfig) {
		cfg.metrics = reg
	}
}

// WithLogger sets logger for authz components
func WithLogger(l logr.Logger) AuthorizerOption {
	return func(cfg *AuthorizerConfig) {
		cfg.log = l
	}
}

// AuthorizerConfig works together with AuthorizerOption to control the
// initialization of an authorizer
type AuthorizerConfig struct {
	mp         types.MembershipPersister
	pp         types.PolicyPersister
	delegation types.DelegationConfig
	presets    []types.PresetRule
	special    types.SpecialGroupResolver
	metrics    prometheus.Registerer
	log        logr.Logger
}

// AuthorizerOption controls how to init an authorizer
type AuthorizerOption func(*AuthorizerConfig)
