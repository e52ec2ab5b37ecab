package vault

import (
	"errors"

	"github.com/illarion/lockwallet/internal/crypto"
)

var (
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrVaultUnlock        = errors.New("failed to unlock vault")
	ErrVaultCorrupt       = errors.New("vault is corrupt")
	ErrMalformedVault     = errors.New("malformed vault data")
	ErrInvalidKey         = errors.New("invalid private key")
	ErrUnsupportedVersion = errors.New("unsupported vault version")
	ErrUninitialized      = errors.New("vault not initialized")
	ErrAlreadyInitialized = errors.New("vault already initialized")
	ErrLocked             = errors.New("vault is locked")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrDuplicateWallet    = errors.New("wallet already exists")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrPasswordTooLong    = errors.New("password too long")
)

// UnsupportedKDFError is returned for a blob whose kdf cannot be derived.
type UnsupportedKDFError = crypto.UnsupportedKDFError
