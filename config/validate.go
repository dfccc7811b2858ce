package config

import "strings"

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validGapUnits lists the accepted packet gap units.
var validGapUnits = map[string]bool{
	"height": true,
	"time":   true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != "mainnet" && cfg.Network != "testnet" && cfg.Network != "regtest" {
		return ErrInvalidNetwork
	}

	if cfg.Gap <= 0 {
		return ErrInvalidGap
	}

	if !validGapUnits[cfg.GapUnit] {
		return ErrInvalidGapUnit
	}

	if cfg.PollInterval <= 0 {
		return ErrInvalidInterval
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	return nil
}
