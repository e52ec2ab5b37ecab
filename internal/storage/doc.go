// Package storage provides the BBolt database behind a lockwallet vault.
//
// Database structure uses four buckets:
//   - config: format version, vault id, timestamps (unencrypted)
//   - vault: the encrypted blob and the password verifier
//   - wallets: public wallet list, one JSON entry per wallet id (unencrypted)
//   - audit: append-only event log keyed by sequence number
//
// The unencrypted wallets bucket lets lockwallet wallets and lockwallet status
// work without a password. The audit bucket survives a vault reset.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
