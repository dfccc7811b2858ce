package config

import "errors"

var (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidDocument indicates the configuration file is not valid
	// YAML.
	ErrInvalidDocument = errors.New("config: invalid configuration document")

	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", or \"regtest\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrInvalidGap indicates the packet gap is not positive.
	ErrInvalidGap = errors.New("config: gap must be positive")

	// ErrInvalidGapUnit indicates the gap unit is not recognized.
	ErrInvalidGapUnit = errors.New("config: invalid gap unit (must be \"height\" or \"time\")")

	// ErrInvalidInterval indicates the poll interval is not positive.
	ErrInvalidInterval = errors.New("config: poll interval must be positive")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")
)
