// Package wallet derives the keys a signaling channel spends and watches
// with. The hierarchy is BIP44: m/44'/20'/{account}'/{chain}/{index}, with
// the external chain supplying watch addresses and the internal chain
// supplying change branches. Seed material comes from BIP39 mnemonics and
// rests encrypted on disk.
package wallet

import (
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"
)

const (
	// BIP44 path constants.
	PurposeBIP44 = 44
	CoinType     = 20

	// DefaultAccount is the account index used when the caller does not
	// manage multiple channels.
	DefaultAccount = 0

	// Chain indices.
	ExternalChain = 0 // Watch addresses
	InternalChain = 1 // Change addresses

	// Hardened is the BIP32 hardened offset.
	Hardened = 0x80000000
)

// Wallet is an HD wallet over one seed.
type Wallet struct {
	masterKey *bip32.ExtendedKey
	network   *NetworkConfig
}

// KeyPair holds a derived key pair and its human-readable path.
type KeyPair struct {
	PrivateKey *ec.PrivateKey `json:"-"`
	PublicKey  *ec.PublicKey  `json:"public_key"`
	Path       string         `json:"path"`
}

// NewWallet creates a Wallet from a BIP39 seed. A nil network defaults to
// mainnet.
func NewWallet(seed []byte, network *NetworkConfig) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	if network == nil {
		network = &MainNet
	}

	var params *chaincfg.Params
	switch network.Name {
	case "mainnet":
		params = &chaincfg.MainNet
	default:
		params = &chaincfg.TestNet
	}

	masterKey, err := bip32.NewMaster(seed, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}

	return &Wallet{masterKey: masterKey, network: network}, nil
}

// Network returns the wallet's network configuration.
func (w *Wallet) Network() *NetworkConfig {
	return w.network
}

// DeriveKey derives the key pair at m/44'/20'/{account}'/{chain}/{index}.
func (w *Wallet) DeriveKey(account, chain, index uint32) (*KeyPair, error) {
	if account >= Hardened {
		return nil, fmt.Errorf("%w: account %d exceeds the hardened boundary", ErrIndexOutOfRange, account)
	}
	if chain != ExternalChain && chain != InternalChain {
		return nil, fmt.Errorf("%w: chain must be %d or %d", ErrIndexOutOfRange, ExternalChain, InternalChain)
	}
	if index >= Hardened {
		return nil, fmt.Errorf("%w: index %d exceeds the non-hardened maximum", ErrIndexOutOfRange, index)
	}

	steps := []struct {
		child uint32
		what  string
	}{
		{PurposeBIP44 + Hardened, "purpose"},
		{CoinType + Hardened, "coin type"},
		{account + Hardened, "account"},
		{chain, "chain"},
		{index, "index"},
	}

	current := w.masterKey
	for _, step := range steps {
		next, err := current.Child(step.child)
		if err != nil {
			return nil, fmt.Errorf("%w: %s derivation: %w", ErrDerivationFailed, step.what, err)
		}
		current = next
	}

	privKey, err := current.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}

	return &KeyPair{
		PrivateKey: privKey,
		PublicKey:  privKey.PubKey(),
		Path:       fmt.Sprintf("m/44'/%d'/%d'/%d/%d", CoinType, account, chain, index),
	}, nil
}

// WatchKey derives the index-th external-chain key of the default account.
// Its address is what the counterpart watches.
func (w *Wallet) WatchKey(index uint32) (*KeyPair, error) {
	return w.DeriveKey(DefaultAccount, ExternalChain, index)
}

// ChangeKey derives the index-th internal-chain key of the default
// account. Change branches and chain carries pay here.
func (w *Wallet) ChangeKey(index uint32) (*KeyPair, error) {
	return w.DeriveKey(DefaultAccount, InternalChain, index)
}

// Address renders a derived key as a P2PKH address on the wallet's
// network.
func (w *Wallet) Address(kp *KeyPair) (string, error) {
	if kp == nil || kp.PublicKey == nil {
		return "", ErrDerivationFailed
	}
	addr, err := script.NewAddressFromPublicKey(kp.PublicKey, w.network.Name == "mainnet")
	if err != nil {
		return "", fmt.Errorf("%w: address encoding: %w", ErrDerivationFailed, err)
	}
	return addr.AddressString, nil
}
