package wallet

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NetworkConfig defines chain parameters for a DigiByte network.
type NetworkConfig struct {
	Name           string `yaml:"name"`
	AddressVersion byte   `yaml:"address_version"`
	P2SHVersion    byte   `yaml:"p2sh_version"`
	RPCPort        uint16 `yaml:"rpc_port"`
}

// Predefined network configurations.
var (
	MainNet = NetworkConfig{
		Name:           "mainnet",
		AddressVersion: 0x1e,
		P2SHVersion:    0x3f,
		RPCPort:        14022,
	}

	TestNet = NetworkConfig{
		Name:           "testnet",
		AddressVersion: 0x7e,
		P2SHVersion:    0x8c,
		RPCPort:        14023,
	}

	RegTest = NetworkConfig{
		Name:           "regtest",
		AddressVersion: 0x7e,
		P2SHVersion:    0x8c,
		RPCPort:        18443,
	}
)

// predefined maps network names to their configs.
var predefined = map[string]*NetworkConfig{
	"mainnet": &MainNet,
	"testnet": &TestNet,
	"regtest": &RegTest,
}

// GetNetwork returns a predefined network by name.
func GetNetwork(name string) (*NetworkConfig, error) {
	if net, ok := predefined[name]; ok {
		return net, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
}

// LoadCustomNetwork loads a NetworkConfig from a YAML file.
func LoadCustomNetwork(path string) (*NetworkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wallet: read network config: %w", err)
	}

	var config NetworkConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("wallet: parse network config: %w", err)
	}

	if config.Name == "" {
		return nil, fmt.Errorf("wallet: network config must have a name")
	}

	return &config, nil
}
