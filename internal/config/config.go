// Package config provides application configuration management.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/illarion/lockwallet/internal/chain"
	"github.com/illarion/lockwallet/internal/crypto"
	"github.com/spf13/viper"
)

const (
	// VaultFile is the default vault file name in the working directory.
	VaultFile = ".lockwallet"

	envPrefix  = "LOCKWALLET"
	configName = "lockwallet"
)

// Config holds all application configuration.
type Config struct {
	Vault VaultConfig
	KDF   crypto.Params
	Log   LogConfig
	RPC   RPCConfig
	Swap  SwapConfig
}

// VaultConfig holds vault file settings.
type VaultConfig struct {
	Path string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// RPCConfig holds chain JSON-RPC settings.
type RPCConfig struct {
	Timeout   time.Duration
	RateLimit float64
	URLs      map[string]string // slug -> RPC URL overrides
}

// SwapConfig holds swap aggregator settings.
type SwapConfig struct {
	ZeroXAPIKey   string
	OneInchAPIKey string
	Timeout       time.Duration
}

// Load reads lockwallet.yaml from dir, if present, then environment
// variables prefixed with LOCKWALLET_.
func Load(dir string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Read from environment
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Vault: VaultConfig{
			Path: v.GetString("vault.path"),
		},
		KDF: crypto.Params{
			Algorithm:  strings.ToLower(v.GetString("kdf.algorithm")),
			Iterations: v.GetUint32("kdf.iterations"),
			Time:       v.GetUint32("kdf.time"),
			Memory:     v.GetUint32("kdf.memory"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		RPC: RPCConfig{
			Timeout:   v.GetDuration("rpc.timeout"),
			RateLimit: v.GetFloat64("rpc.rate_limit"),
			URLs:      make(map[string]string),
		},
		Swap: SwapConfig{
			ZeroXAPIKey:   v.GetString("swap.zerox_api_key"),
			OneInchAPIKey: v.GetString("swap.oneinch_api_key"),
			Timeout:       v.GetDuration("swap.timeout"),
		},
	}

	// Explicit lookups so LOCKWALLET_RPC_URLS_<SLUG> works too
	for _, slug := range chain.DefaultRegistry().Slugs() {
		if url := v.GetString("rpc.urls." + slug); url != "" {
			cfg.RPC.URLs[slug] = url
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("vault.path", VaultFile)

	// KDF defaults
	v.SetDefault("kdf.algorithm", crypto.PBKDF2)
	v.SetDefault("kdf.iterations", crypto.DefaultIterations)
	v.SetDefault("kdf.time", crypto.DefaultArgon2Time)
	v.SetDefault("kdf.memory", crypto.DefaultArgon2Memory)

	v.SetDefault("log.level", "warn")

	// Network defaults
	v.SetDefault("rpc.timeout", chain.DefaultTimeout)
	v.SetDefault("rpc.rate_limit", chain.DefaultRateLimit)
	v.SetDefault("swap.timeout", 10*time.Second)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Vault.Path == "" {
		return fmt.Errorf("vault.path is required")
	}
	if err := c.KDF.Validate(); err != nil {
		return fmt.Errorf("invalid kdf config: %w", err)
	}
	if c.RPC.Timeout <= 0 {
		return fmt.Errorf("rpc.timeout must be positive")
	}
	if c.RPC.RateLimit < 0 {
		return fmt.Errorf("rpc.rate_limit must not be negative")
	}
	if c.Swap.Timeout <= 0 {
		return fmt.Errorf("swap.timeout must be positive")
	}
	return nil
}

// Registry returns the chain registry with configured RPC URLs applied.
func (c *Config) Registry() *chain.Registry {
	return chain.NewRegistry(c.RPC.URLs)
}
