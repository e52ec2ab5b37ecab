package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// Supported key derivation algorithms.
const (
	PBKDF2   = "pbkdf2"
	Argon2ID = "argon2id"
)

const (
	DefaultIterations = 600000   // PBKDF2 reference iteration count
	MinIterations     = 100000   // Lowest PBKDF2 iteration count accepted
	MaxIterations     = 10000000 // Highest PBKDF2 iteration count accepted

	DefaultArgon2Time   = 3
	MaxArgon2Time       = 64
	DefaultArgon2Memory = 64 * 1024       // KiB
	MinArgon2Memory     = 8 * 1024        // KiB
	MaxArgon2Memory     = 4 * 1024 * 1024 // KiB
	Argon2Threads       = 4
)

var ErrInvalidKDFParams = errors.New("invalid kdf parameters")

// UnsupportedKDFError reports a kdf discriminator this build cannot derive.
type UnsupportedKDFError struct {
	KDF string
}

func (e *UnsupportedKDFError) Error() string {
	return fmt.Sprintf("unsupported kdf %q", e.KDF)
}

// Params selects a key derivation algorithm and its cost.
// Iterations applies to PBKDF2; Time and Memory (KiB) to Argon2id.
type Params struct {
	Algorithm  string
	Iterations uint32
	Time       uint32
	Memory     uint32
}

// DefaultParams returns PBKDF2-HMAC-SHA256 with the reference iteration count.
func DefaultParams() Params {
	return Params{Algorithm: PBKDF2, Iterations: DefaultIterations}
}

// DefaultArgon2Params returns Argon2id with the default cost.
func DefaultArgon2Params() Params {
	return Params{Algorithm: Argon2ID, Time: DefaultArgon2Time, Memory: DefaultArgon2Memory}
}

// Validate checks the algorithm is known and the cost is within bounds.
// Blobs come from storage that is not trusted, so the cost is capped too.
func (p Params) Validate() error {
	switch p.Algorithm {
	case PBKDF2:
		if p.Iterations < MinIterations {
			return fmt.Errorf("%w: pbkdf2 needs at least %d iterations, got %d", ErrInvalidKDFParams, MinIterations, p.Iterations)
		}
		if p.Iterations > MaxIterations {
			return fmt.Errorf("%w: pbkdf2 allows at most %d iterations, got %d", ErrInvalidKDFParams, MaxIterations, p.Iterations)
		}
	case Argon2ID:
		if p.Time < 1 || p.Time > MaxArgon2Time {
			return fmt.Errorf("%w: argon2id time must be between 1 and %d, got %d", ErrInvalidKDFParams, MaxArgon2Time, p.Time)
		}
		if p.Memory < MinArgon2Memory || p.Memory > MaxArgon2Memory {
			return fmt.Errorf("%w: argon2id memory must be between %d and %d KiB, got %d", ErrInvalidKDFParams, MinArgon2Memory, MaxArgon2Memory, p.Memory)
		}
	default:
		return &UnsupportedKDFError{KDF: p.Algorithm}
	}
	return nil
}

// DeriveKey derives a 256-bit encryption key from a password and a 16-byte salt.
// A wrong password yields a different key, never an error.
func (p Params) DeriveKey(password, salt []byte) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes", ErrInvalidKDFParams, SaltSize)
	}

	if p.Algorithm == Argon2ID {
		return argon2.IDKey(password, salt, p.Time, p.Memory, Argon2Threads, KeySize), nil
	}
	return pbkdf2.Key(password, salt, int(p.Iterations), KeySize, sha256.New), nil
}

// NewSalt returns a fresh random salt for a vault.
func NewSalt() ([]byte, error) {
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
