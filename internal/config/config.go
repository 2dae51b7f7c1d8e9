// =================================
// File: internal/config/config.go
// =================================

// Package config loads the SDK's CLI configuration from a file plus
// ONESOL_-prefixed environment variables.
package config

import (
	"errors"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	RPCURL     string  `mapstructure:"rpc_url"`
	RouterURL  string  `mapstructure:"router_url"`
	PrivateKey string  `mapstructure:"private_key"`
	Slippage   float64 `mapstructure:"slippage"`

	ComputeUnitLimit uint32 `mapstructure:"compute_unit_limit"`
	ComputeUnitPrice uint64 `mapstructure:"compute_unit_price"`

	Retries      int    `mapstructure:"retries"`
	LogFile      string `mapstructure:"log_file"`
	DebugLogging bool   `mapstructure:"debug_logging"`
}

const (
	DefaultRPCURL    = "https://api.mainnet-beta.solana.com"
	DefaultRouterURL = "https://api.1sol.io/1"
	DefaultSlippage  = 0.005
	DefaultRetries   = 3
	DefaultLogFile   = "onesol.log"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"rpc_url":    DefaultRPCURL,
		"router_url": DefaultRouterURL,
		"slippage":   DefaultSlippage,
		"retries":    DefaultRetries,
		"log_file":   DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("ONESOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.PrivateKey == "" {
		return errors.New("missing private_key in configuration")
	}
	if err := validateURL(cfg.RPCURL, "http"); err != nil {
		return errors.New("invalid RPC URL protocol")
	}
	if err := validateURL(cfg.RouterURL, "http"); err != nil {
		return errors.New("invalid router URL protocol")
	}
	if cfg.Slippage <= 0 || cfg.Slippage >= 1 {
		return errors.New("slippage must be in (0, 1)")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	return nil
}

func validateURL(raw, scheme string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(u.Scheme, scheme) {
		return errors.New("unexpected URL scheme")
	}
	return nil
}
