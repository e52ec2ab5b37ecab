package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := GenerateRandom(KeySize)
	require.NoError(t, err)
	return key
}

func TestAESGCMRoundTrip(t *testing.T) {
	key := testKey(t)
	plaintexts := [][]byte{
		{},
		[]byte("a"),
		[]byte(`{"privateKeys":{}}`),
		bytes.Repeat([]byte("wallet"), 1000),
	}

	var aead AESGCM
	for _, pt := range plaintexts {
		ct, iv, err := aead.Seal(key, pt)
		require.NoError(t, err)
		assert.Len(t, iv, NonceSize)
		assert.Len(t, ct, len(pt)+TagSize)

		got, err := aead.Open(key, ct, iv)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(pt, got))
	}
}

func TestAESGCMFreshIV(t *testing.T) {
	key := testKey(t)
	pt := []byte("same plaintext every time")

	var aead AESGCM
	ct1, iv1, err := aead.Seal(key, pt)
	require.NoError(t, err)
	ct2, iv2, err := aead.Seal(key, pt)
	require.NoError(t, err)

	assert.NotEqual(t, iv1, iv2)
	assert.NotEqual(t, ct1, ct2)
}

func TestAESGCMBitFlips(t *testing.T) {
	key := testKey(t)
	var aead AESGCM
	ct, iv, err := aead.Seal(key, []byte("0xac0974bec39a17e36ba4a6b4d238ff94"))
	require.NoError(t, err)

	// Every single-bit mutation of ciphertext and tag must be rejected.
	for i := 0; i < len(ct)*8; i++ {
		mutated := append([]byte(nil), ct...)
		mutated[i/8] ^= 1 << (i % 8)
		_, err := aead.Open(key, mutated, iv)
		require.ErrorIs(t, err, ErrAuthFailed, "bit %d", i)
	}

	for i := 0; i < len(iv)*8; i++ {
		mutated := append([]byte(nil), iv...)
		mutated[i/8] ^= 1 << (i % 8)
		_, err := aead.Open(key, ct, mutated)
		require.ErrorIs(t, err, ErrAuthFailed, "iv bit %d", i)
	}
}

func TestAESGCMOpenRejectsMalformedInput(t *testing.T) {
	key := testKey(t)
	var aead AESGCM
	ct, iv, err := aead.Seal(key, []byte("secret"))
	require.NoError(t, err)

	_, err = aead.Open(key, ct[:TagSize-1], iv)
	assert.ErrorIs(t, err, ErrAuthFailed)

	_, err = aead.Open(key, ct, iv[:8])
	assert.ErrorIs(t, err, ErrAuthFailed)

	_, err = aead.Open(key[:16], ct, iv)
	assert.ErrorIs(t, err, ErrAuthFailed)

	_, err = aead.Open(testKey(t), ct, iv)
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestAESGCMSealRejectsShortKey(t *testing.T) {
	var aead AESGCM
	_, _, err := aead.Seal(make([]byte, 16), []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestDeriveKeyPBKDF2(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	p := Params{Algorithm: PBKDF2, Iterations: MinIterations}

	k1, err := p.DeriveKey([]byte("correcthorsebattery"), salt)
	require.NoError(t, err)
	k2, err := p.DeriveKey([]byte("correcthorsebattery"), salt)
	require.NoError(t, err)
	k3, err := p.DeriveKey([]byte("correcthorsebatterx"), salt)
	require.NoError(t, err)

	assert.Len(t, k1, KeySize)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)

	other, err := NewSalt()
	require.NoError(t, err)
	k4, err := p.DeriveKey([]byte("correcthorsebattery"), other)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k4)
}

func TestDeriveKeyArgon2ID(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	p := Params{Algorithm: Argon2ID, Time: 1, Memory: MinArgon2Memory}

	k1, err := p.DeriveKey([]byte("password1"), salt)
	require.NoError(t, err)
	k2, err := p.DeriveKey([]byte("password1"), salt)
	require.NoError(t, err)

	assert.Len(t, k1, KeySize)
	assert.Equal(t, k1, k2)
}

func TestDeriveKeyRejectsBadInput(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	_, err = Params{Algorithm: "scrypt"}.DeriveKey([]byte("password"), salt)
	var unsupported *UnsupportedKDFError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "scrypt", unsupported.KDF)

	_, err = Params{Algorithm: PBKDF2, Iterations: 1000}.DeriveKey([]byte("password"), salt)
	assert.ErrorIs(t, err, ErrInvalidKDFParams)

	_, err = Params{Algorithm: Argon2ID, Time: 0, Memory: DefaultArgon2Memory}.DeriveKey([]byte("password"), salt)
	assert.ErrorIs(t, err, ErrInvalidKDFParams)

	_, err = Params{Algorithm: Argon2ID, Time: 1, Memory: 1024}.DeriveKey([]byte("password"), salt)
	assert.ErrorIs(t, err, ErrInvalidKDFParams)

	_, err = DefaultParams().DeriveKey([]byte("password"), salt[:8])
	assert.ErrorIs(t, err, ErrInvalidKDFParams)
}

func TestParamsRejectExcessiveCost(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"pbkdf2 iterations", Params{Algorithm: PBKDF2, Iterations: MaxIterations + 1}},
		{"pbkdf2 max uint32", Params{Algorithm: PBKDF2, Iterations: ^uint32(0)}},
		{"argon2id time", Params{Algorithm: Argon2ID, Time: MaxArgon2Time + 1, Memory: DefaultArgon2Memory}},
		{"argon2id memory", Params{Algorithm: Argon2ID, Time: 1, Memory: MaxArgon2Memory + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.params.Validate(), ErrInvalidKDFParams)
		})
	}

	assert.NoError(t, Params{Algorithm: PBKDF2, Iterations: MaxIterations}.Validate())
	assert.NoError(t, Params{Algorithm: Argon2ID, Time: MaxArgon2Time, Memory: MaxArgon2Memory}.Validate())
}

func TestDefaultParamsValid(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())
	assert.NoError(t, DefaultArgon2Params().Validate())
	assert.Equal(t, uint32(600000), DefaultParams().Iterations)
}

func TestVerifier(t *testing.T) {
	v, err := NewVerifier([]byte("correcthorsebattery"))
	require.NoError(t, err)

	ok, err := CheckVerifier(v, []byte("correcthorsebattery"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckVerifier(v, []byte("wrong password"))
	require.NoError(t, err)
	assert.False(t, ok)

	// Salted: same password, different verifier.
	v2, err := NewVerifier([]byte("correcthorsebattery"))
	require.NoError(t, err)
	assert.NotEqual(t, v, v2)
}

func TestCheckVerifierMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"sha256$onlytwo",
		"md5$AAAAAAAAAAAAAAAAAAAAAA==$AAAA",
		"sha256$!!!$AAAA",
		"sha256$AAAAAAAAAAAAAAAAAAAAAA==$AAAA",
	} {
		_, err := CheckVerifier(encoded, []byte("password"))
		assert.ErrorIs(t, err, ErrInvalidVerifier, encoded)
	}
}

func TestClearBytes(t *testing.T) {
	b := []byte("sensitive")
	ClearBytes(b)
	assert.Equal(t, make([]byte, len(b)), b)
}
