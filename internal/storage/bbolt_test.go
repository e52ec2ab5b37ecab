package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/illarion/lockwallet/internal/crypto"
	"github.com/illarion/lockwallet/internal/vault"
)

func openTestDB(t *testing.T) *Storage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.lockwallet")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRecord() *vault.Record {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &vault.Record{
		Blob: &vault.Blob{
			Ciphertext: "Y3Q=",
			IV:         "aXY=",
			Salt:       "c2FsdA==",
			KDF:        crypto.PBKDF2,
			KDFParams:  vault.KDFParams{Iterations: crypto.DefaultIterations},
			Version:    vault.BlobVersion,
		},
		PasswordHash: "sha256$c2FsdA==$ZGlnZXN0",
		Wallets: []vault.Wallet{
			{ID: "b", Address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", Chain: "polygon", Name: "Account 2", CreatedAt: now.Add(time.Minute)},
			{ID: "a", Address: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", Chain: "ethereum", Name: "Account 1", CreatedAt: now},
		},
	}
}

func TestLoadEmpty(t *testing.T) {
	db := openTestDB(t)

	rec, err := db.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if rec != nil {
		t.Errorf("Expected nil record, got %+v", rec)
	}

	initialized, err := db.IsInitialized()
	if err != nil {
		t.Fatalf("Failed to check initialization: %v", err)
	}
	if initialized {
		t.Error("Empty database should not be initialized")
	}
}

func TestSaveAndLoad(t *testing.T) {
	db := openTestDB(t)
	want := testRecord()

	if err := db.Save(want); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	got, err := db.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if got == nil {
		t.Fatal("Expected record after save")
	}
	if *got.Blob != *want.Blob {
		t.Errorf("Blob mismatch: got %+v, want %+v", got.Blob, want.Blob)
	}
	if got.PasswordHash != want.PasswordHash {
		t.Errorf("Password hash mismatch: got %q, want %q", got.PasswordHash, want.PasswordHash)
	}

	// Wallets come back in creation order
	if len(got.Wallets) != 2 {
		t.Fatalf("Expected 2 wallets, got %d", len(got.Wallets))
	}
	if got.Wallets[0].ID != "a" || got.Wallets[1].ID != "b" {
		t.Errorf("Unexpected wallet order: %s, %s", got.Wallets[0].ID, got.Wallets[1].ID)
	}
	if !got.Wallets[0].CreatedAt.Equal(want.Wallets[1].CreatedAt) {
		t.Errorf("CreatedAt mismatch: got %v", got.Wallets[0].CreatedAt)
	}

	initialized, err := db.IsInitialized()
	if err != nil || !initialized {
		t.Errorf("Database should be initialized (err=%v)", err)
	}
}

func TestSaveReplacesWallets(t *testing.T) {
	db := openTestDB(t)
	rec := testRecord()
	if err := db.Save(rec); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	rec.Wallets = rec.Wallets[:1]
	if err := db.Save(rec); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	got, err := db.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if len(got.Wallets) != 1 || got.Wallets[0].ID != "b" {
		t.Errorf("Expected only wallet b, got %+v", got.Wallets)
	}
}

func TestSaveRejectsEmptyRecord(t *testing.T) {
	db := openTestDB(t)
	if err := db.Save(&vault.Record{}); err == nil {
		t.Error("Expected error saving record without blob")
	}
}

func TestModifiedTime(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.GetModified(); err == nil {
		t.Error("Expected error before first save")
	}

	before := time.Now().Add(-time.Second)
	if err := db.Save(testRecord()); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	modified, err := db.GetModified()
	if err != nil {
		t.Fatalf("Failed to get modified time: %v", err)
	}
	if modified.Before(before) {
		t.Errorf("Modified time %v is before save", modified)
	}
}

func TestVaultID(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.GetOrCreateVaultID(); err == nil {
		t.Error("Expected error for uninitialized vault")
	}

	if err := db.Save(testRecord()); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	id1, err := db.GetOrCreateVaultID()
	if err != nil {
		t.Fatalf("Failed to create vault ID: %v", err)
	}
	id2, err := db.GetOrCreateVaultID()
	if err != nil {
		t.Fatalf("Failed to get vault ID: %v", err)
	}
	if id1 == "" || id1 != id2 {
		t.Errorf("Vault ID not stable: %q vs %q", id1, id2)
	}
}

func TestClearKeepsAudit(t *testing.T) {
	db := openTestDB(t)
	if err := db.Save(testRecord()); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if err := db.RecordEvent(vault.Event{ID: "1", Type: vault.EventVaultCreated, Time: time.Now()}); err != nil {
		t.Fatalf("Failed to record event: %v", err)
	}

	if err := db.Clear(); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}
	// Clearing twice is fine
	if err := db.Clear(); err != nil {
		t.Fatalf("Failed to clear again: %v", err)
	}

	rec, err := db.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if rec != nil {
		t.Error("Expected no record after clear")
	}

	events, err := db.ListEvents(0)
	if err != nil {
		t.Fatalf("Failed to list events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Expected audit event to survive clear, got %d", len(events))
	}
}

func TestAuditOrder(t *testing.T) {
	db := openTestDB(t)

	types := []string{vault.EventVaultCreated, vault.EventUnlockFailed, vault.EventVaultUnlocked, vault.EventWalletImported}
	for i, typ := range types {
		ev := vault.Event{ID: string(rune('a' + i)), Type: typ, Time: time.Now()}
		if err := db.RecordEvent(ev); err != nil {
			t.Fatalf("Failed to record event: %v", err)
		}
	}

	events, err := db.ListEvents(0)
	if err != nil {
		t.Fatalf("Failed to list events: %v", err)
	}
	if len(events) != len(types) {
		t.Fatalf("Expected %d events, got %d", len(types), len(events))
	}
	for i, ev := range events {
		if want := types[len(types)-1-i]; ev.Type != want {
			t.Errorf("Event %d: got %s, want %s", i, ev.Type, want)
		}
	}

	limited, err := db.ListEvents(2)
	if err != nil {
		t.Fatalf("Failed to list events: %v", err)
	}
	if len(limited) != 2 || limited[0].Type != vault.EventWalletImported {
		t.Errorf("Unexpected limited events: %+v", limited)
	}
}

func TestCompact(t *testing.T) {
	db := openTestDB(t)
	rec := testRecord()

	for i := 0; i < 50; i++ {
		if err := db.Save(rec); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
	}
	if err := db.RecordEvent(vault.Event{ID: "1", Type: vault.EventVaultCreated}); err != nil {
		t.Fatalf("Failed to record event: %v", err)
	}

	if err := db.Compact(); err != nil {
		t.Fatalf("Failed to compact: %v", err)
	}

	if _, err := os.Stat(db.Path() + ".backup"); !os.IsNotExist(err) {
		t.Error("Backup file should be removed after compaction")
	}

	got, err := db.Load()
	if err != nil {
		t.Fatalf("Failed to load after compact: %v", err)
	}
	if got == nil || len(got.Wallets) != 2 {
		t.Fatalf("Data lost during compaction: %+v", got)
	}

	// Sequence survives so new events sort after old ones
	if err := db.RecordEvent(vault.Event{ID: "2", Type: vault.EventVaultUnlocked}); err != nil {
		t.Fatalf("Failed to record event: %v", err)
	}
	events, err := db.ListEvents(0)
	if err != nil {
		t.Fatalf("Failed to list events: %v", err)
	}
	if len(events) != 2 || events[0].ID != "2" {
		t.Errorf("Unexpected events after compaction: %+v", events)
	}
}

func TestManagerOverStorage(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "vault.lockwallet")
	params := crypto.Params{Algorithm: crypto.PBKDF2, Iterations: crypto.MinIterations}
	password := []byte("correcthorsebattery")
	mnemonic := "test test test test test test test test test test test junk"

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	m, err := vault.NewManager(db, vault.WithKDFParams(params), vault.WithAuditor(db))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if err := m.Create(ctx, password, mnemonic); err != nil {
		t.Fatalf("Failed to create vault: %v", err)
	}
	w, err := m.ImportKey(ctx, "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d", "arbitrum", "trading")
	if err != nil {
		t.Fatalf("Failed to import key: %v", err)
	}
	db.Close()

	// Reopen as a new process would
	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	m, err = vault.NewManager(db, vault.WithKDFParams(params), vault.WithAuditor(db))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if m.State() != vault.Locked {
		t.Fatalf("Expected locked vault, got %s", m.State())
	}
	if len(m.Wallets()) != 2 {
		t.Fatalf("Expected 2 wallets while locked, got %d", len(m.Wallets()))
	}
	if err := m.Unlock(ctx, password); err != nil {
		t.Fatalf("Failed to unlock: %v", err)
	}
	key, err := m.PrivateKey(w.ID)
	if err != nil {
		t.Fatalf("Failed to get private key: %v", err)
	}
	if key != "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d" {
		t.Errorf("Imported key mismatch: %s", key)
	}

	events, err := db.ListEvents(0)
	if err != nil {
		t.Fatalf("Failed to list events: %v", err)
	}
	if len(events) != 3 || events[0].Type != vault.EventVaultUnlocked {
		t.Errorf("Unexpected audit log: %+v", events)
	}
}
