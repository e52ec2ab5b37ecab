package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

const verifierScheme = "sha256"

var ErrInvalidVerifier = errors.New("invalid password verifier")

// NewVerifier returns a salted SHA-256 password hash in the form
// sha256$<salt>$<digest>. It only gates decryption attempts and reveals
// nothing about the vault key.
func NewVerifier(password []byte) (string, error) {
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return "", err
	}
	digest := verifierDigest(salt, password)
	enc := base64.StdEncoding
	return verifierScheme + "$" + enc.EncodeToString(salt) + "$" + enc.EncodeToString(digest), nil
}

// CheckVerifier reports whether password matches an encoded verifier.
func CheckVerifier(encoded string, password []byte) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != verifierScheme {
		return false, ErrInvalidVerifier
	}
	salt, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(salt) != SaltSize {
		return false, ErrInvalidVerifier
	}
	want, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil || len(want) != sha256.Size {
		return false, ErrInvalidVerifier
	}

	return ConstantTimeCompare(verifierDigest(salt, password), want), nil
}

func verifierDigest(salt, password []byte) []byte {
	h := sha256.New()
	h.Write(salt)
	h.Write(password)
	return h.Sum(nil)
}
