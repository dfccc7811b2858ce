// Package config handles process configuration for signaling tools: where
// the node is, which dialect document to speak, which addresses to watch,
// and how the watcher paces itself. Configuration lives in a YAML file
// under the data directory; every field has a usable default except the
// mainnet RPC endpoint, which must be set explicitly.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/enigmaticorg/libenigmatic-go/network"
)

// Config holds all settings for the signaling tools.
type Config struct {
	// DataDir is the root directory for state: the watch cursor store,
	// the default config file, and wallet material.
	DataDir string `yaml:"datadir"`

	// Network selects the chain: "mainnet", "testnet", or "regtest".
	Network string `yaml:"network"`

	// RPC overrides the node connection. Empty fields fall back to
	// environment variables and then network presets.
	RPC network.RPCConfig `yaml:"rpc"`

	// DialectPath points at the dialect document to load.
	DialectPath string `yaml:"dialect"`

	// WatchAddresses are the channel addresses the watcher observes.
	WatchAddresses []string `yaml:"watch"`

	// Gap is the packet grouping gap, in GapUnit units.
	Gap int64 `yaml:"gap"`

	// GapUnit is "height" or "time".
	GapUnit string `yaml:"gap_unit"`

	// PollInterval is how often the watcher polls the node.
	PollInterval time.Duration `yaml:"poll_interval"`

	// StorePath is the watch state database. Empty means
	// DataDir/watch.db.
	StorePath string `yaml:"store"`

	// FeeRate overrides the node's fee policy, in minor units per
	// kilobyte. Zero means use the node policy.
	FeeRate uint64 `yaml:"fee_rate"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultDataDir returns the default data directory, ~/.enigmatic.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".enigmatic"
	}
	return filepath.Join(home, ".enigmatic")
}

// ConfigPath returns the path of the config file within a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// DefaultConfig returns a configuration with all defaults applied. The
// default network is regtest so a fresh install cannot accidentally spend
// real coins.
func DefaultConfig() Config {
	return Config{
		DataDir:      DefaultDataDir(),
		Network:      "regtest",
		Gap:          3,
		GapUnit:      "height",
		PollInterval: 30 * time.Second,
		LogLevel:     "info",
	}
}

// ResolvedStorePath returns StorePath, or the default location under the
// data directory when unset.
func (c Config) ResolvedStorePath() string {
	if c.StorePath != "" {
		return c.StorePath
	}
	return filepath.Join(c.DataDir, "watch.db")
}

// LoadConfig reads and parses a config file. Fields absent from the file
// keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return cfg, nil
}

// SaveConfig writes a config file, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	header := []byte("# Enigmatic signaling configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
