package wallet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SeedFileName is the encrypted seed file within a data directory.
const SeedFileName = "seed.enc"

// SeedPath returns the encrypted seed path within a data directory.
func SeedPath(dataDir string) string {
	return filepath.Join(dataDir, SeedFileName)
}

// SaveSeed encrypts a seed and writes it to path, creating parent
// directories as needed. An existing seed file is never overwritten.
func SaveSeed(path string, seed []byte, password string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrSeedExists, path)
	}

	encrypted, err := EncryptSeed(seed, password)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("wallet: create directory: %w", err)
	}
	if err := os.WriteFile(path, encrypted, 0600); err != nil {
		return fmt.Errorf("wallet: write seed file: %w", err)
	}
	return nil
}

// LoadSeed reads and decrypts a seed file.
func LoadSeed(path string, password string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSeedNotFound, path)
		}
		return nil, fmt.Errorf("wallet: read seed file: %w", err)
	}
	return DecryptSeed(data, password)
}

// OpenWallet loads the encrypted seed from a data directory and builds the
// wallet over it.
func OpenWallet(dataDir, password string, network *NetworkConfig) (*Wallet, error) {
	seed, err := LoadSeed(SeedPath(dataDir), password)
	if err != nil {
		return nil, err
	}
	return NewWallet(seed, network)
}
