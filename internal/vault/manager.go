package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"
	"github.com/illarion/lockwallet/internal/chain"
	"github.com/illarion/lockwallet/internal/crypto"
	"github.com/illarion/lockwallet/internal/hdwallet"
	"github.com/illarion/lockwallet/internal/logging"
)

const (
	DefaultChain       = "ethereum"
	DefaultAccountName = "Account 1"
)

// State is the lifecycle state of a Manager.
type State int

const (
	Uninitialized State = iota
	Locked
	Unlocked
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// session is the decrypted content of an unlocked vault.
type session struct {
	key      *memguard.Enclave
	mnemonic *memguard.Enclave
	keys     map[string]*memguard.Enclave
}

func newSession(key []byte, d *Data) *session {
	s := &session{
		key:  memguard.NewEnclave(key),
		keys: make(map[string]*memguard.Enclave, len(d.PrivateKeys)),
	}
	if d.Mnemonic != "" {
		s.mnemonic = memguard.NewEnclave([]byte(d.Mnemonic))
	}
	for id, k := range d.PrivateKeys {
		s.keys[id] = memguard.NewEnclave([]byte(k))
	}
	return s
}

func openEnclave(e *memguard.Enclave) (string, error) {
	buf, err := e.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open enclave: %w", err)
	}
	defer buf.Destroy()
	return string(buf.Bytes()), nil
}

// data rebuilds the plaintext vault content from the session.
func (s *session) data() (*Data, error) {
	d := &Data{PrivateKeys: make(map[string]string, len(s.keys))}
	if s.mnemonic != nil {
		m, err := openEnclave(s.mnemonic)
		if err != nil {
			return nil, err
		}
		d.Mnemonic = m
	}
	for id, e := range s.keys {
		k, err := openEnclave(e)
		if err != nil {
			return nil, err
		}
		d.PrivateKeys[id] = k
	}
	return d, nil
}

// Manager owns one vault and its in-memory session.
type Manager struct {
	mu       sync.Mutex
	store    Store
	cipher   cipher
	params   crypto.Params
	registry *chain.Registry
	auditor  Auditor
	now      func() time.Time

	record  *Record
	session *session
}

// Option configures a Manager.
type Option func(*Manager)

// WithAEAD replaces the authenticated cipher.
func WithAEAD(aead crypto.AEAD) Option {
	return func(m *Manager) { m.cipher = cipher{aead: aead} }
}

// WithKDFParams sets the key derivation used for new blobs.
func WithKDFParams(p crypto.Params) Option {
	return func(m *Manager) { m.params = p }
}

// WithRegistry sets the chains wallets may be imported on.
func WithRegistry(r *chain.Registry) Option {
	return func(m *Manager) { m.registry = r }
}

// WithAuditor sets where audit events are recorded.
func WithAuditor(a Auditor) Option {
	return func(m *Manager) { m.auditor = a }
}

// NewManager loads the persisted vault, if any, and returns a locked Manager.
func NewManager(store Store, opts ...Option) (*Manager, error) {
	m := &Manager{
		store:    store,
		cipher:   cipher{aead: crypto.AESGCM{}},
		params:   crypto.DefaultParams(),
		registry: chain.DefaultRegistry(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.params.Validate(); err != nil {
		return nil, err
	}

	rec, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load vault: %w", err)
	}
	m.record = rec
	return m, nil
}

// State reports whether the vault exists and is unlocked.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state()
}

func (m *Manager) state() State {
	switch {
	case m.session != nil:
		return Unlocked
	case m.record != nil:
		return Locked
	default:
		return Uninitialized
	}
}

// Wallets returns the public wallet list. It does not need the password.
func (m *Manager) Wallets() []Wallet {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.record == nil {
		return nil
	}
	return append([]Wallet(nil), m.record.Wallets...)
}

// Blob returns a copy of the persisted blob.
func (m *Manager) Blob() (*Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.record == nil || m.record.Blob == nil {
		return nil, ErrUninitialized
	}
	b := *m.record.Blob
	return &b, nil
}

// Create initializes a new vault and leaves it unlocked. When mnemonic is not
// empty the first account is derived from it.
func (m *Manager) Create(ctx context.Context, password []byte, mnemonic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := logging.Logger(ctx)
	if m.record != nil {
		return ErrAlreadyInitialized
	}

	data := &Data{PrivateKeys: map[string]string{}}
	var wallets []Wallet
	if strings.TrimSpace(mnemonic) != "" {
		mnemonic = hdwallet.NormalizeMnemonic(mnemonic)
		if !hdwallet.ValidateMnemonic(mnemonic) {
			return fmt.Errorf("%w: %w", ErrInvalidKey, hdwallet.ErrInvalidMnemonic)
		}
		acct, err := hdwallet.DeriveAccount(mnemonic, 0)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidKey, err)
		}
		id := uuid.NewString()
		data.Mnemonic = mnemonic
		data.PrivateKeys[id] = acct.PrivateKey
		wallets = append(wallets, Wallet{
			ID:        id,
			Address:   acct.Address,
			Chain:     DefaultChain,
			Name:      DefaultAccountName,
			CreatedAt: m.now().UTC(),
		})
	}

	salt, err := crypto.NewSalt()
	if err != nil {
		return err
	}
	key, err := m.params.DeriveKey(password, salt)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}
	defer crypto.ClearBytes(key)

	blob, err := m.cipher.seal(data, key, salt, m.params)
	if err != nil {
		return err
	}
	verifier, err := crypto.NewVerifier(password)
	if err != nil {
		return fmt.Errorf("failed to create password verifier: %w", err)
	}

	rec := &Record{Blob: blob, PasswordHash: verifier, Wallets: wallets}
	if err := m.store.Save(rec); err != nil {
		return fmt.Errorf("failed to save vault: %w", err)
	}

	m.record = rec
	m.session = newSession(append([]byte(nil), key...), data)
	log.Info("vault created", "wallets", len(wallets), "kdf", m.params.Algorithm)
	m.audit(ctx, Event{Type: EventVaultCreated})
	return nil
}

// Unlock verifies the password and decrypts the vault into memory. A failed
// unlock of an already unlocked vault keeps the existing session.
func (m *Manager) Unlock(ctx context.Context, password []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := logging.Logger(ctx)
	if m.record == nil {
		return ErrUninitialized
	}
	if err := m.record.Blob.check(); err != nil {
		return err
	}
	if err := m.verify(password); err != nil {
		if errors.Is(err, ErrIncorrectPassword) {
			log.Warn("vault unlock failed", "reason", "incorrect password")
			m.audit(ctx, Event{Type: EventUnlockFailed})
		}
		return err
	}

	d, key, err := m.cipher.deriveAndOpen(m.record.Blob, password)
	if err != nil {
		log.Error("vault decrypt failed after password match", "error", err)
		m.audit(ctx, Event{Type: EventUnlockFailed, Detail: "corrupt"})
		return fmt.Errorf("%w: %w", ErrVaultCorrupt, err)
	}

	m.session = newSession(key, d)
	log.Info("vault unlocked", "wallets", len(m.record.Wallets))
	m.audit(ctx, Event{Type: EventVaultUnlocked})
	return nil
}

func (m *Manager) verify(password []byte) error {
	ok, err := crypto.CheckVerifier(m.record.PasswordHash, password)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVaultCorrupt, err)
	}
	if !ok {
		return ErrIncorrectPassword
	}
	return nil
}

// Lock discards all decrypted key material. Persisted state is untouched.
func (m *Manager) Lock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.session = nil
		logging.Logger(context.Background()).Debug("vault locked")
	}
}

// ImportKey adds a private key on the given chain. The new blob is persisted
// before the key becomes visible in memory; on any error neither changes.
func (m *Manager) ImportKey(ctx context.Context, privateKey, chainSlug, name string) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireUnlocked(); err != nil {
		return nil, err
	}
	ch, err := m.registry.Lookup(chainSlug)
	if err != nil {
		return nil, err
	}
	acct, err := hdwallet.AccountFromPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	for _, w := range m.record.Wallets {
		if w.Chain == ch.Slug && strings.EqualFold(w.Address, acct.Address) {
			return nil, fmt.Errorf("%w: %s on %s", ErrDuplicateWallet, acct.Address, ch.Slug)
		}
	}
	if name == "" {
		name = fmt.Sprintf("Account %d", len(m.record.Wallets)+1)
	}

	d, err := m.session.data()
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	d.PrivateKeys[id] = acct.PrivateKey

	blob, err := m.reseal(d)
	if err != nil {
		return nil, err
	}

	w := Wallet{ID: id, Address: acct.Address, Chain: ch.Slug, Name: name, CreatedAt: m.now().UTC()}
	rec := m.record.clone()
	rec.Blob = blob
	rec.Wallets = append(rec.Wallets, w)
	if err := m.store.Save(rec); err != nil {
		return nil, fmt.Errorf("failed to save vault: %w", err)
	}

	m.record = rec
	m.session.keys[id] = memguard.NewEnclave([]byte(acct.PrivateKey))
	logging.Logger(ctx).Info("wallet imported", "wallet_id", id, "chain", ch.Slug, "address", acct.Address)
	m.audit(ctx, Event{Type: EventWalletImported, WalletID: id, Detail: ch.Slug})
	return &w, nil
}

// reseal encrypts d under the session key with the current salt and a fresh IV.
func (m *Manager) reseal(d *Data) (*Blob, error) {
	salt, err := m.record.Blob.salt()
	if err != nil {
		return nil, err
	}
	buf, err := m.session.key.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open enclave: %w", err)
	}
	defer buf.Destroy()
	return m.cipher.seal(d, buf.Bytes(), salt, m.record.Blob.Params())
}

// Reset deletes the vault and forgets any session.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear vault: %w", err)
	}
	m.record = nil
	m.session = nil
	logging.Logger(ctx).Info("vault reset")
	m.audit(ctx, Event{Type: EventVaultReset})
	return nil
}

// ChangePassword re-encrypts the vault under next with a fresh salt and
// replaces the verifier in the same save. It works locked or unlocked.
func (m *Manager) ChangePassword(ctx context.Context, current, next []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.record == nil {
		return ErrUninitialized
	}
	if err := m.record.Blob.check(); err != nil {
		return err
	}
	if err := m.verify(current); err != nil {
		return err
	}

	d, oldKey, err := m.cipher.deriveAndOpen(m.record.Blob, current)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVaultCorrupt, err)
	}
	crypto.ClearBytes(oldKey)

	salt, err := crypto.NewSalt()
	if err != nil {
		return err
	}
	key, err := m.params.DeriveKey(next, salt)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}
	defer crypto.ClearBytes(key)

	blob, err := m.cipher.seal(d, key, salt, m.params)
	if err != nil {
		return err
	}
	verifier, err := crypto.NewVerifier(next)
	if err != nil {
		return fmt.Errorf("failed to create password verifier: %w", err)
	}

	rec := m.record.clone()
	rec.Blob = blob
	rec.PasswordHash = verifier
	if err := m.store.Save(rec); err != nil {
		return fmt.Errorf("failed to save vault: %w", err)
	}

	m.record = rec
	if m.session != nil {
		m.session.key = memguard.NewEnclave(append([]byte(nil), key...))
	}
	logging.Logger(ctx).Info("vault password changed")
	m.audit(ctx, Event{Type: EventPasswordChanged})
	return nil
}

// PrivateKey returns the 0x-prefixed private key of a wallet.
func (m *Manager) PrivateKey(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.privateKey(id)
}

func (m *Manager) privateKey(id string) (string, error) {
	if err := m.requireUnlocked(); err != nil {
		return "", err
	}
	e, ok := m.session.keys[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrWalletNotFound, id)
	}
	return openEnclave(e)
}

// Mnemonic returns the recovery phrase, or an empty string if the vault has none.
func (m *Manager) Mnemonic() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireUnlocked(); err != nil {
		return "", err
	}
	if m.session.mnemonic == nil {
		return "", nil
	}
	return openEnclave(m.session.mnemonic)
}

// SignDigest signs a 32-byte digest with a wallet's key, returning r || s || v.
func (m *Manager) SignDigest(id string, digest []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, err := m.privateKey(id)
	if err != nil {
		return nil, err
	}
	return hdwallet.SignDigest(key, digest)
}

// RecordTx writes a tx.sent audit event for a broadcast transaction.
func (m *Manager) RecordTx(ctx context.Context, walletID, hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit(ctx, Event{Type: EventTxSent, WalletID: walletID, Detail: hash})
}

func (m *Manager) requireUnlocked() error {
	switch m.state() {
	case Uninitialized:
		return ErrUninitialized
	case Locked:
		return ErrLocked
	}
	return nil
}

func (m *Manager) audit(ctx context.Context, ev Event) {
	if m.auditor == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.Time = m.now().UTC()
	if err := m.auditor.RecordEvent(ev); err != nil {
		logging.Logger(ctx).Warn("failed to record audit event", "type", ev.Type, "error", err)
	}
}
