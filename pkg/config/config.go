// Package config loads the hdwallet configuration from a JSON file and
// HDWALLET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "HDWALLET"
	// EnvConfigPath names an explicit configuration file.
	EnvConfigPath = "HDWALLET_CONFIG"

	maxCount    = 16
	maxExponent = 30
)

var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrPassphrasePolicy = errors.New("passphrase rejected by security policy")
)

// Config is the main configuration structure
type Config struct {
	Defaults DefaultSettings `mapstructure:"defaults"`
	SLIP039  SLIP039Config   `mapstructure:"slip039"`
	Security SecurityConfig  `mapstructure:"security"`
	Storage  StorageConfig   `mapstructure:"storage"`
}

// DefaultSettings holds the sharing parameters used when flags are omitted
type DefaultSettings struct {
	Threshold      int `mapstructure:"threshold"`
	Shares         int `mapstructure:"shares"`
	GroupThreshold int `mapstructure:"group_threshold"`
}

type SLIP039Config struct {
	IterationExponent int    `mapstructure:"iteration_exponent"`
	Wordlist          string `mapstructure:"wordlist"` // path to the 1024-word list
}

type SecurityConfig struct {
	RequirePassphrase   bool `mapstructure:"require_passphrase"`
	MinPassphraseLength int  `mapstructure:"min_passphrase_length"`
}

type StorageConfig struct {
	FilePermissions string `mapstructure:"file_permissions"` // octal, e.g. "0600"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("defaults.threshold", 2)
	v.SetDefault("defaults.shares", 3)
	v.SetDefault("defaults.group_threshold", 1)

	v.SetDefault("slip039.iteration_exponent", 1)
	v.SetDefault("slip039.wordlist", "")

	v.SetDefault("security.require_passphrase", false)
	v.SetDefault("security.min_passphrase_length", 0)

	v.SetDefault("storage.file_permissions", "0600")
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads the configuration file at path, or at DefaultPath when path is
// empty. A missing file leaves the defaults in place. Environment variables
// such as HDWALLET_SLIP039_WORDLIST override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultPath returns $HDWALLET_CONFIG, $XDG_CONFIG_HOME/hdwallet/config.json
// or ~/.config/hdwallet/config.json, in that order.
func DefaultPath() (string, error) {
	if customPath := os.Getenv(EnvConfigPath); customPath != "" {
		return customPath, nil
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "hdwallet", "config.json"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "hdwallet", "config.json"), nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	d := c.Defaults
	switch {
	case d.Shares < 1 || d.Shares > maxCount:
		return fmt.Errorf("%w: defaults.shares must be between 1 and %d", ErrInvalidConfig, maxCount)
	case d.Threshold < 1 || d.Threshold > d.Shares:
		return fmt.Errorf("%w: defaults.threshold must be between 1 and defaults.shares", ErrInvalidConfig)
	case d.GroupThreshold < 1 || d.GroupThreshold > maxCount:
		return fmt.Errorf("%w: defaults.group_threshold must be between 1 and %d", ErrInvalidConfig, maxCount)
	case c.SLIP039.IterationExponent < 0 || c.SLIP039.IterationExponent > maxExponent:
		return fmt.Errorf("%w: slip039.iteration_exponent must be between 0 and %d", ErrInvalidConfig, maxExponent)
	case c.Security.MinPassphraseLength < 0:
		return fmt.Errorf("%w: security.min_passphrase_length cannot be negative", ErrInvalidConfig)
	}

	if _, err := c.Permissions(); err != nil {
		return err
	}

	return nil
}

// Permissions parses storage.file_permissions.
func (c *Config) Permissions() (os.FileMode, error) {
	perm, err := strconv.ParseUint(c.Storage.FilePermissions, 8, 32)
	if err != nil || perm > 0o777 {
		return 0, fmt.Errorf("%w: storage.file_permissions %q is not an octal mode",
			ErrInvalidConfig, c.Storage.FilePermissions)
	}
	return os.FileMode(perm), nil
}

// CheckPassphrase applies the security policy to a passphrase.
func (c *Config) CheckPassphrase(passphrase string) error {
	if c.Security.RequirePassphrase && passphrase == "" {
		return fmt.Errorf("%w: a passphrase is required", ErrPassphrasePolicy)
	}

	if passphrase != "" && len(passphrase) < c.Security.MinPassphraseLength {
		return fmt.Errorf("%w: passphrase must be at least %d characters",
			ErrPassphrasePolicy, c.Security.MinPassphraseLength)
	}

	return nil
}
