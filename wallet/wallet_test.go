package wallet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The BIP39 reference vector mnemonic.
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := SeedFromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	return seed
}

func TestGenerateMnemonic(t *testing.T) {
	for _, bits := range []int{Mnemonic12Words, Mnemonic24Words} {
		mnemonic, err := GenerateMnemonic(bits)
		require.NoError(t, err)
		assert.True(t, ValidateMnemonic(mnemonic))

		words := len(strings.Fields(mnemonic))
		if bits == Mnemonic12Words {
			assert.Equal(t, 12, words)
		} else {
			assert.Equal(t, 24, words)
		}
	}

	_, err := GenerateMnemonic(160)
	assert.ErrorIs(t, err, ErrInvalidEntropy)
}

func TestSeedFromMnemonic(t *testing.T) {
	seed := testSeed(t)
	assert.Len(t, seed, 64)

	// A passphrase changes the seed.
	other, err := SeedFromMnemonic(testMnemonic, "TREZOR")
	require.NoError(t, err)
	assert.NotEqual(t, seed, other)

	_, err = SeedFromMnemonic("not a valid mnemonic at all", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
}

func TestDeriveKey(t *testing.T) {
	w, err := NewWallet(testSeed(t), &TestNet)
	require.NoError(t, err)

	kp, err := w.DeriveKey(0, ExternalChain, 0)
	require.NoError(t, err)
	assert.Equal(t, "m/44'/20'/0'/0/0", kp.Path)
	require.NotNil(t, kp.PrivateKey)
	require.NotNil(t, kp.PublicKey)

	// Derivation is deterministic.
	again, err := w.DeriveKey(0, ExternalChain, 0)
	require.NoError(t, err)
	assert.Equal(t, kp.PrivateKey.Serialize(), again.PrivateKey.Serialize())

	// Distinct indices and chains yield distinct keys.
	next, err := w.DeriveKey(0, ExternalChain, 1)
	require.NoError(t, err)
	assert.NotEqual(t, kp.PrivateKey.Serialize(), next.PrivateKey.Serialize())

	change, err := w.ChangeKey(0)
	require.NoError(t, err)
	assert.Equal(t, "m/44'/20'/0'/1/0", change.Path)
	assert.NotEqual(t, kp.PrivateKey.Serialize(), change.PrivateKey.Serialize())
}

func TestDeriveKeyErrors(t *testing.T) {
	w, err := NewWallet(testSeed(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "mainnet", w.Network().Name)

	_, err = w.DeriveKey(0, 2, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = w.DeriveKey(Hardened, ExternalChain, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = w.DeriveKey(0, ExternalChain, Hardened)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = NewWallet(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidSeed)
}

func TestAddress(t *testing.T) {
	w, err := NewWallet(testSeed(t), &TestNet)
	require.NoError(t, err)

	kp, err := w.WatchKey(0)
	require.NoError(t, err)

	addr, err := w.Address(kp)
	require.NoError(t, err)
	assert.NotEmpty(t, addr)

	// Same key renders the same address.
	again, err := w.Address(kp)
	require.NoError(t, err)
	assert.Equal(t, addr, again)

	_, err = w.Address(nil)
	assert.ErrorIs(t, err, ErrDerivationFailed)
}

func TestEncryptDecryptSeed(t *testing.T) {
	seed := testSeed(t)

	encrypted, err := EncryptSeed(seed, "correct horse")
	require.NoError(t, err)
	assert.NotContains(t, string(encrypted), string(seed[:16]))

	decrypted, err := DecryptSeed(encrypted, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, seed, decrypted)

	_, err = DecryptSeed(encrypted, "wrong password")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = DecryptSeed(encrypted[:10], "correct horse")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = EncryptSeed(nil, "pw")
	assert.ErrorIs(t, err, ErrInvalidSeed)

	// Salting makes every encryption distinct.
	again, err := EncryptSeed(seed, "correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, encrypted, again)
}

func TestKeystore(t *testing.T) {
	dir := t.TempDir()
	seed := testSeed(t)

	path := SeedPath(dir)
	assert.Equal(t, filepath.Join(dir, "seed.enc"), path)

	require.NoError(t, SaveSeed(path, seed, "pw"))

	// Never overwrite an existing seed.
	err := SaveSeed(path, seed, "pw")
	assert.ErrorIs(t, err, ErrSeedExists)

	loaded, err := LoadSeed(path, "pw")
	require.NoError(t, err)
	assert.Equal(t, seed, loaded)

	_, err = LoadSeed(filepath.Join(dir, "missing.enc"), "pw")
	assert.ErrorIs(t, err, ErrSeedNotFound)

	w, err := OpenWallet(dir, "pw", &RegTest)
	require.NoError(t, err)
	assert.Equal(t, "regtest", w.Network().Name)

	_, err = OpenWallet(dir, "wrong", &RegTest)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestGetNetwork(t *testing.T) {
	for _, name := range []string{"mainnet", "testnet", "regtest"} {
		net, err := GetNetwork(name)
		require.NoError(t, err)
		assert.Equal(t, name, net.Name)
	}

	_, err := GetNetwork("simnet")
	assert.ErrorIs(t, err, ErrInvalidNetwork)

	assert.Equal(t, byte(0x1e), MainNet.AddressVersion)
	assert.Equal(t, byte(0x7e), TestNet.AddressVersion)
}

func TestLoadCustomNetwork(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "net.yaml")

	content := "name: privnet\naddress_version: 30\nrpc_port: 9999\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	net, err := LoadCustomNetwork(path)
	require.NoError(t, err)
	assert.Equal(t, "privnet", net.Name)
	assert.Equal(t, byte(30), net.AddressVersion)
	assert.Equal(t, uint16(9999), net.RPCPort)

	_, err = LoadCustomNetwork(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
