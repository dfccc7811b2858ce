package wallet

import "errors"

var (
	// ErrInvalidMnemonic indicates the mnemonic fails BIP39 validation.
	ErrInvalidMnemonic = errors.New("wallet: invalid BIP39 mnemonic")

	// ErrInvalidEntropy indicates entropy bits is not 128 or 256.
	ErrInvalidEntropy = errors.New("wallet: entropy bits must be 128 or 256")

	// ErrInvalidSeed indicates the seed is empty or invalid.
	ErrInvalidSeed = errors.New("wallet: invalid seed")

	// ErrIndexOutOfRange indicates a derivation index outside the BIP32
	// range.
	ErrIndexOutOfRange = errors.New("wallet: derivation index out of range")

	// ErrDerivationFailed indicates BIP32 key derivation failed.
	ErrDerivationFailed = errors.New("wallet: key derivation failed")

	// ErrDecryptionFailed indicates wrong password or corrupted seed data.
	ErrDecryptionFailed = errors.New("wallet: seed decryption failed (wrong password or corrupted data)")

	// ErrChecksumMismatch indicates seed checksum verification failed
	// after decryption.
	ErrChecksumMismatch = errors.New("wallet: seed checksum mismatch")

	// ErrSeedExists indicates a seed file already exists at the target
	// path.
	ErrSeedExists = errors.New("wallet: seed file already exists")

	// ErrSeedNotFound indicates no seed file exists at the target path.
	ErrSeedNotFound = errors.New("wallet: seed file not found")

	// ErrInvalidNetwork indicates an unknown network name with no custom
	// config.
	ErrInvalidNetwork = errors.New("wallet: invalid network name")
)
