package network

import "fmt"

// RPCConfig holds the connection parameters for a node's JSON-RPC
// interface.
type RPCConfig struct {
	URL      string `json:"url" yaml:"url"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Network  string `json:"network" yaml:"network"`
}

// NetworkPresets contains default RPC configurations for known networks.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18443", User: "enigmatic", Password: "enigmatic"},
	"testnet": {URL: "http://localhost:14023", User: "enigmatic", Password: "enigmatic"},
}

// ResolveConfig merges RPC configuration from three sources with decreasing
// priority:
//  1. explicit overrides (highest priority)
//  2. environment variables (ENIGMATIC_RPC_URL, ENIGMATIC_RPC_USER,
//     ENIGMATIC_RPC_PASS)
//  3. network presets (lowest priority, regtest/testnet only)
//
// For mainnet, explicit configuration is required; there is no preset.
func ResolveConfig(overrides *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if env != nil {
		if v, ok := env["ENIGMATIC_RPC_URL"]; ok && v != "" {
			result.URL = v
		}
		if v, ok := env["ENIGMATIC_RPC_USER"]; ok && v != "" {
			result.User = v
		}
		if v, ok := env["ENIGMATIC_RPC_PASS"]; ok && v != "" {
			result.Password = v
		}
	}

	if overrides != nil {
		if overrides.URL != "" {
			result.URL = overrides.URL
		}
		if overrides.User != "" {
			result.User = overrides.User
		}
		if overrides.Password != "" {
			result.Password = overrides.Password
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("network: %s requires explicit RPC configuration (set ENIGMATIC_RPC_URL or a config file)", network)
	}

	return &result, nil
}
