// Package crypto provides cryptographic operations for lockwallet.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from password via PBKDF2 or Argon2id
//   - 12-byte random nonce (IV) per encryption operation, stored separately
//   - 16-byte authentication tag appended to the ciphertext
//
// Key derivation:
//   - PBKDF2-HMAC-SHA256, 600,000 iterations by default (100,000 minimum)
//   - Argon2id, time/memory cost carried in the vault blob
//   - 16-byte random salt per vault (stored unencrypted)
//
// Every decryption failure is reported as ErrAuthFailed so callers cannot
// tell a wrong key from corrupted data.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
package crypto
