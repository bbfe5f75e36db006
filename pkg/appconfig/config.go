package appconfig

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway"
	"github.com/minima-tools/go-minima-gateway/pkg/node"
)

// SessionConfig tunes the draft session engine and its in-memory store.
type SessionConfig struct {
	// MinFee is the fee floor assumed before the node has produced an
	// estimate, expressed as a decimal string in the base asset.
	MinFee string `mapstructure:"min_fee"`

	// AutoTokenChange returns leftover custom-token surplus automatically
	// instead of rejecting the draft as unbalanced.
	AutoTokenChange bool `mapstructure:"auto_token_change"`

	// Store tunes draft retention and the janitor sweep.
	Store session.StoreConfig `mapstructure:"store"`
}

// Config represents the application configuration.
type Config struct {
	Server  gateway.Config `mapstructure:"server"`
	Node    node.Config    `mapstructure:"node"`
	Session SessionConfig  `mapstructure:"session"`
}

// Defaults returns the default configuration values.
func Defaults() Config {
	return Config{
		Server: gateway.DefaultConfig,
		Node:   node.DefaultConfig,
		Session: SessionConfig{
			MinFee: "0",
			Store:  session.DefaultStoreConfig,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.validateSession(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

// EngineConfig converts the session settings into the engine's config.
func (c *Config) EngineConfig() (session.Config, error) {
	minFee, err := decimal.NewFromString(c.Session.MinFee)
	if err != nil {
		return session.Config{}, fmt.Errorf("min fee is not a valid decimal: %w", err)
	}
	return session.Config{
		MinFee:          minFee,
		AutoTokenChange: c.Session.AutoTokenChange,
	}, nil
}

func (c *Config) validateServer() error {
	if c.Server.AdminBearerToken == "" {
		return fmt.Errorf("admin bearer token is required")
	}
	if _, err := uuid.Parse(c.Server.AdminBearerToken); err != nil {
		return fmt.Errorf("admin bearer token is not a valid UUID")
	}
	return nil
}

func (c *Config) validateSession() error {
	minFee, err := decimal.NewFromString(c.Session.MinFee)
	if err != nil {
		return fmt.Errorf("min fee is not a valid decimal: %w", err)
	}
	if minFee.IsNegative() {
		return fmt.Errorf("min fee must not be negative")
	}
	return nil
}
