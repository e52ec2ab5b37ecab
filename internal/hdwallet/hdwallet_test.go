package hdwallet

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hardhatMnemonic = "test test test test test test test test test test test junk"
	abandonMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	hardhatAccount0 = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	hardhatKey0     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	hardhatAccount1 = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	hardhatKey1     = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	abandonAccount0 = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
)

func TestDeriveAccountKnownVectors(t *testing.T) {
	tests := []struct {
		mnemonic string
		index    uint32
		address  string
		key      string
	}{
		{hardhatMnemonic, 0, hardhatAccount0, hardhatKey0},
		{hardhatMnemonic, 1, hardhatAccount1, hardhatKey1},
		{abandonMnemonic, 0, abandonAccount0, ""},
	}

	for _, tt := range tests {
		acc, err := DeriveAccount(tt.mnemonic, tt.index)
		require.NoError(t, err)
		assert.Equal(t, tt.address, acc.Address)
		assert.Equal(t, DerivationPath(tt.index), acc.Path)
		if tt.key != "" {
			assert.Equal(t, tt.key, acc.PrivateKey)
		}
	}
}

func TestDeriveAccountNormalizesWhitespaceAndCase(t *testing.T) {
	acc, err := DeriveAccount("  TEST test\ttest test test test test test test test test   junk ", 0)
	require.NoError(t, err)
	assert.Equal(t, hardhatAccount0, acc.Address)
}

func TestDeriveAccountInvalidMnemonic(t *testing.T) {
	_, err := DeriveAccount("test test test test test test test test test test test test", 0)
	assert.ErrorIs(t, err, ErrInvalidMnemonic)

	_, err = DeriveAccount("not a mnemonic", 0)
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
}

func TestGenerateMnemonic(t *testing.T) {
	for _, words := range []int{12, 24} {
		m, err := GenerateMnemonic(words)
		require.NoError(t, err)
		assert.Len(t, strings.Fields(m), words)
		assert.True(t, ValidateMnemonic(m))
	}

	_, err := GenerateMnemonic(15)
	assert.Error(t, err)
}

func TestAccountFromPrivateKey(t *testing.T) {
	acc, err := AccountFromPrivateKey(hardhatKey0)
	require.NoError(t, err)
	assert.Equal(t, hardhatAccount0, acc.Address)
	assert.Empty(t, acc.Path)

	// Prefix is optional and output is normalized.
	acc, err = AccountFromPrivateKey(strings.ToUpper(strings.TrimPrefix(hardhatKey1, "0x")))
	require.NoError(t, err)
	assert.Equal(t, hardhatAccount1, acc.Address)
	assert.Equal(t, hardhatKey1, acc.PrivateKey)
}

func TestAccountFromPrivateKeyRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"0x1234",
		hardhatKey0 + "00",
		"0x" + strings.Repeat("zz", 32),
		"0x" + strings.Repeat("00", 32),
		"0x" + strings.Repeat("ff", 32), // above the curve order
	}
	for _, k := range bad {
		_, err := AccountFromPrivateKey(k)
		assert.ErrorIs(t, err, ErrInvalidPrivateKey, k)
	}
}

func TestChecksumAddress(t *testing.T) {
	// EIP-55 reference vectors.
	for _, want := range []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	} {
		raw, err := hex.DecodeString(strings.ToLower(want[2:]))
		require.NoError(t, err)
		assert.Equal(t, want, ChecksumAddress(raw))
	}
}

func TestIsHexAddress(t *testing.T) {
	assert.True(t, IsHexAddress(hardhatAccount0))
	assert.True(t, IsHexAddress(strings.ToLower(hardhatAccount0)))
	assert.False(t, IsHexAddress(hardhatAccount0[2:]))
	assert.False(t, IsHexAddress("0x1234"))
	assert.False(t, IsHexAddress("0x"+strings.Repeat("g", 40)))
}

func TestSignDigestRecoversSigner(t *testing.T) {
	digest := Keccak256([]byte("lockwallet"))

	sig, err := SignDigest(hardhatKey0, digest)
	require.NoError(t, err)
	require.Len(t, sig, SignatureSize)
	assert.LessOrEqual(t, sig[64], byte(1))

	addr, err := RecoverAddress(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, hardhatAccount0, addr)
}

func TestSignDigestRejectsBadInput(t *testing.T) {
	_, err := SignDigest(hardhatKey0, []byte("short"))
	assert.ErrorIs(t, err, ErrInvalidDigest)

	_, err = SignDigest("0x1234", Keccak256([]byte("x")))
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}
