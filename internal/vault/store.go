package vault

import "time"

// Wallet is the public, unencrypted description of one key in the vault.
type Wallet struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Chain     string    `json:"chain"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Record is everything a vault persists. It is saved as one unit.
type Record struct {
	Blob         *Blob    `json:"blob"`
	PasswordHash string   `json:"password_hash"`
	Wallets      []Wallet `json:"wallets"`
}

func (r *Record) clone() *Record {
	c := *r
	if r.Blob != nil {
		b := *r.Blob
		c.Blob = &b
	}
	c.Wallets = append([]Wallet(nil), r.Wallets...)
	return &c
}

// Store persists a vault Record.
type Store interface {
	// Load returns the saved record, or nil when no vault exists.
	Load() (*Record, error)
	// Save replaces the saved record atomically.
	Save(*Record) error
	// Clear removes the saved record.
	Clear() error
}

// Event types written to the audit log.
const (
	EventVaultCreated    = "vault.created"
	EventVaultUnlocked   = "vault.unlocked"
	EventUnlockFailed    = "vault.unlock_failed"
	EventWalletImported  = "wallet.imported"
	EventPasswordChanged = "vault.password_changed"
	EventVaultReset      = "vault.reset"
	EventTxSent          = "tx.sent"
)

// Event is one audit log entry. It never carries key material.
type Event struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	WalletID string    `json:"wallet_id,omitempty"`
	Detail   string    `json:"detail,omitempty"`
	Time     time.Time `json:"time"`
}

// Auditor records audit events.
type Auditor interface {
	RecordEvent(Event) error
}
