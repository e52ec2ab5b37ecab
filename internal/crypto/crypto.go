package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
)

const (
	SaltSize  = 16 // Salt size in bytes
	KeySize   = 32 // AES-256 key size
	NonceSize = 12 // GCM nonce size
	TagSize   = 16 // GCM authentication tag size
)

var (
	ErrInvalidKeySize = errors.New("key must be 32 bytes")
	ErrAuthFailed     = errors.New("authentication failed")
)

// AEAD encrypts and decrypts with a caller-supplied key. Implementations must
// draw a fresh IV for every Seal.
type AEAD interface {
	Seal(key, plaintext []byte) (ciphertext, iv []byte, err error)
	Open(key, ciphertext, iv []byte) ([]byte, error)
}

// AESGCM is the AES-256-GCM AEAD.
type AESGCM struct{}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Seal encrypts plaintext using AES-256-GCM under a random 96-bit IV.
// The returned ciphertext carries the tag in its last TagSize bytes.
func (AESGCM) Seal(key, plaintext []byte) ([]byte, []byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	iv, err := GenerateRandom(NonceSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	return gcm.Seal(nil, iv, plaintext, nil), iv, nil
}

// Open decrypts and verifies ciphertext. Any failure, including malformed
// input or a wrong key, is reported as ErrAuthFailed.
func (AESGCM) Open(key, ciphertext, iv []byte) ([]byte, error) {
	if len(iv) != NonceSize || len(ciphertext) < TagSize {
		return nil, ErrAuthFailed
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, ErrAuthFailed
	}

	plaintext, err := gcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
