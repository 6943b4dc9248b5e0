// Package config loads the authorization settings applications feed into
// the engine: the delegation flag snapshot and the site administrators
// group. The engine itself never reads ambient configuration; callers
// load a snapshot here and pass it in explicitly.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/openarchive/authz/types"
)

// Config is the loaded authorization configuration
type Config struct {
	Delegation DelegationSettings `mapstructure:"delegation"`
	SiteAdmins string             `mapstructure:"site_admins"`
}

// DelegationSettings mirrors types.DelegationConfig, one key per hop
type DelegationSettings struct {
	CommunityAdminGroup           bool `mapstructure:"community_admin_group"`
	CommunityCollectionAdminGroup bool `mapstructure:"community_collection_admin_group"`
	CollectionAdminGroup          bool `mapstructure:"collection_admin_group"`
	CommunityItemAdmin            bool `mapstructure:"community_item_admin"`
	CollectionItemAdmin           bool `mapstructure:"collection_item_admin"`
}

// Snapshot converts the loaded settings to the engine's snapshot type
func (c *Config) Snapshot() types.DelegationConfig {
	return types.DelegationConfig{
		CommunityAdminGroup:           c.Delegation.CommunityAdminGroup,
		CommunityCollectionAdminGroup: c.Delegation.CommunityCollectionAdminGroup,
		CollectionAdminGroup:          c.Delegation.CollectionAdminGroup,
		CommunityItemAdmin:            c.Delegation.CommunityItemAdmin,
		CollectionItemAdmin:           c.Delegation.CollectionItemAdmin,
	}
}

// SiteAdminGroup returns the configured site administrators group
func (c *Config) SiteAdminGroup() types.Group {
	return types.Group(c.SiteAdmins)
}

// Load reads configuration from the optional file path and AUTHZ_
// prefixed environment variables. Every delegation hop defaults to
// enabled, the out of the box behavior.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("AUTHZ")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"delegation.community_admin_group",
		"delegation.community_collection_admin_group",
		"delegation.collection_admin_group",
		"delegation.community_item_admin",
		"delegation.collection_item_admin",
		"site_admins",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("delegation.community_admin_group", true)
	v.SetDefault("delegation.community_collection_admin_group", true)
	v.SetDefault("delegation.collection_admin_group", true)
	v.SetDefault("delegation.community_item_admin", true)
	v.SetDefault("delegation.collection_item_admin", true)
	v.SetDefault("site_admins", "Administrator")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}
