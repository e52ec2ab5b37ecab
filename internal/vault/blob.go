package vault

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/illarion/lockwallet/internal/crypto"
)

// BlobVersion is the only blob format this build reads and writes.
const BlobVersion = "1.0.0"

// KDFParams is the serialized cost of a blob's key derivation.
type KDFParams struct {
	Iterations uint32 `json:"iterations,omitempty"`
	Time       uint32 `json:"time,omitempty"`
	Memory     uint32 `json:"mem,omitempty"`
}

// Blob is the persisted ciphertext envelope. It is safe to hand to a server.
type Blob struct {
	Ciphertext string    `json:"ciphertext" validate:"required,base64"`
	IV         string    `json:"iv" validate:"required,base64"`
	Salt       string    `json:"salt" validate:"required,base64"`
	KDF        string    `json:"kdf" validate:"required"`
	KDFParams  KDFParams `json:"kdf_params"`
	Version    string    `json:"version" validate:"required"`
}

// ParseBlob decodes a blob from JSON.
func ParseBlob(b []byte) (*Blob, error) {
	var blob Blob
	if err := json.Unmarshal(b, &blob); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVault, err)
	}
	return &blob, nil
}

// Marshal encodes the blob as JSON.
func (b *Blob) Marshal() ([]byte, error) {
	return json.Marshal(b)
}

// Params returns the key derivation parameters recorded in the blob.
func (b *Blob) Params() crypto.Params {
	return crypto.Params{
		Algorithm:  b.KDF,
		Iterations: b.KDFParams.Iterations,
		Time:       b.KDFParams.Time,
		Memory:     b.KDFParams.Memory,
	}
}

// check rejects blobs this build cannot read at all. It runs before the
// password is verified, so it only looks at the version and kdf name.
func (b *Blob) check() error {
	if b == nil {
		return fmt.Errorf("%w: missing blob", ErrMalformedVault)
	}
	if b.Version != BlobVersion {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, b.Version)
	}
	switch b.KDF {
	case crypto.PBKDF2, crypto.Argon2ID:
		return nil
	default:
		return &UnsupportedKDFError{KDF: b.KDF}
	}
}

// checkFormat checks the encodings and kdf cost of a readable blob.
func (b *Blob) checkFormat() error {
	if err := b.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrVaultUnlock, err)
	}
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("%w: %v", ErrVaultUnlock, err)
	}
	return nil
}

func (b *Blob) salt() ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(b.Salt)
	if err != nil || len(salt) != crypto.SaltSize {
		return nil, fmt.Errorf("%w: bad salt", ErrVaultUnlock)
	}
	return salt, nil
}

func kdfParams(p crypto.Params) KDFParams {
	if p.Algorithm == crypto.Argon2ID {
		return KDFParams{Time: p.Time, Memory: p.Memory}
	}
	return KDFParams{Iterations: p.Iterations}
}

// cipher binds an AEAD to the blob format.
type cipher struct {
	aead crypto.AEAD
}

func (c cipher) seal(d *Data, key, salt []byte, params crypto.Params) (*Blob, error) {
	plaintext, err := EncodeData(d)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(plaintext)

	ciphertext, iv, err := c.aead.Seal(key, plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt vault: %w", err)
	}

	enc := base64.StdEncoding
	return &Blob{
		Ciphertext: enc.EncodeToString(ciphertext),
		IV:         enc.EncodeToString(iv),
		Salt:       enc.EncodeToString(salt),
		KDF:        params.Algorithm,
		KDFParams:  kdfParams(params),
		Version:    BlobVersion,
	}, nil
}

// open decrypts a checked blob with an already derived key. Cipher failures
// return ErrVaultUnlock, plaintext failures ErrMalformedVault.
func (c cipher) open(b *Blob, key []byte) (*Data, error) {
	enc := base64.StdEncoding
	ciphertext, err := enc.DecodeString(b.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: bad ciphertext encoding", ErrVaultUnlock)
	}
	iv, err := enc.DecodeString(b.IV)
	if err != nil || len(iv) != crypto.NonceSize {
		return nil, fmt.Errorf("%w: bad iv", ErrVaultUnlock)
	}

	plaintext, err := c.aead.Open(key, ciphertext, iv)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultUnlock, err)
	}
	defer crypto.ClearBytes(plaintext)

	return DecodeData(plaintext)
}

func (c cipher) deriveAndOpen(b *Blob, password []byte) (*Data, []byte, error) {
	if err := b.check(); err != nil {
		return nil, nil, err
	}
	if err := b.checkFormat(); err != nil {
		return nil, nil, err
	}
	salt, err := b.salt()
	if err != nil {
		return nil, nil, err
	}
	key, err := b.Params().DeriveKey(password, salt)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrVaultUnlock, err)
	}
	d, err := c.open(b, key)
	if err != nil {
		crypto.ClearBytes(key)
		return nil, nil, err
	}
	return d, key, nil
}

// Seal encrypts d under a key derived from password with a fresh salt and IV.
func Seal(d *Data, password []byte, params crypto.Params) (*Blob, error) {
	salt, err := crypto.NewSalt()
	if err != nil {
		return nil, err
	}
	key, err := params.DeriveKey(password, salt)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(key)

	return cipher{aead: crypto.AESGCM{}}.seal(d, key, salt, params)
}

// Open decrypts a blob. A wrong password and any tampering both return
// ErrVaultUnlock.
func Open(b *Blob, password []byte) (*Data, error) {
	d, key, err := cipher{aead: crypto.AESGCM{}}.deriveAndOpen(b, password)
	if err != nil {
		return nil, err
	}
	crypto.ClearBytes(key)
	return d, nil
}
