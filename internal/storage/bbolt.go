package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/illarion/lockwallet/internal/vault"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket  = []byte("config")  // Format version, vault id, timestamps - unencrypted
	VaultBucket   = []byte("vault")   // Encrypted blob + password verifier
	WalletsBucket = []byte("wallets") // Public wallet list for wallets/status - unencrypted
	AuditBucket   = []byte("audit")   // Audit events
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigVaultID  = []byte("vault_id")
)

// Vault keys
var (
	VaultBlob         = []byte("blob")
	VaultPasswordHash = []byte("password_hash")
)

const formatVersion = "1"

var ErrNotInitialized = errors.New("vault not initialized")

// Storage provides BBolt-based storage for lockwallet
type Storage struct {
	db *bolt.DB
}

// Open opens or creates a lockwallet database
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// IsInitialized checks if a vault has been saved
func (s *Storage) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(VaultBucket)
		if b != nil && b.Get(VaultBlob) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// Load returns the persisted vault record, or nil if there is none.
func (s *Storage) Load() (*vault.Record, error) {
	var rec *vault.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		vb := tx.Bucket(VaultBucket)
		if vb == nil {
			return nil
		}
		blobData := vb.Get(VaultBlob)
		if blobData == nil {
			return nil
		}

		blob, err := vault.ParseBlob(blobData)
		if err != nil {
			return err
		}
		rec = &vault.Record{
			Blob:         blob,
			PasswordHash: string(vb.Get(VaultPasswordHash)),
		}

		wallets, err := readWallets(tx)
		if err != nil {
			return err
		}
		rec.Wallets = wallets
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func readWallets(tx *bolt.Tx) ([]vault.Wallet, error) {
	wb := tx.Bucket(WalletsBucket)
	if wb == nil {
		return nil, nil
	}
	var wallets []vault.Wallet
	err := wb.ForEach(func(k, v []byte) error {
		var w vault.Wallet
		if err := json.Unmarshal(v, &w); err != nil {
			return fmt.Errorf("failed to decode wallet %s: %w", k, err)
		}
		wallets = append(wallets, w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(wallets, func(i, j int) bool {
		if wallets[i].CreatedAt.Equal(wallets[j].CreatedAt) {
			return wallets[i].ID < wallets[j].ID
		}
		return wallets[i].CreatedAt.Before(wallets[j].CreatedAt)
	})
	return wallets, nil
}

// Save replaces the vault record in a single transaction.
func (s *Storage) Save(rec *vault.Record) error {
	if rec == nil || rec.Blob == nil {
		return fmt.Errorf("refusing to save empty vault record")
	}
	blobData, err := rec.Blob.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode blob: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, VaultBucket, AuditBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		vb := tx.Bucket(VaultBucket)
		if err := vb.Put(VaultBlob, blobData); err != nil {
			return err
		}
		if err := vb.Put(VaultPasswordHash, []byte(rec.PasswordHash)); err != nil {
			return err
		}

		// Wallet list is rewritten as a whole
		if err := tx.DeleteBucket(WalletsBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		wb, err := tx.CreateBucket(WalletsBucket)
		if err != nil {
			return err
		}
		for _, w := range rec.Wallets {
			data, err := json.Marshal(w)
			if err != nil {
				return err
			}
			if err := wb.Put([]byte(w.ID), data); err != nil {
				return err
			}
		}

		config := tx.Bucket(ConfigBucket)
		now, _ := time.Now().MarshalBinary()
		if config.Get(ConfigVersion) == nil {
			if err := config.Put(ConfigVersion, []byte(formatVersion)); err != nil {
				return err
			}
			if err := config.Put(ConfigCreated, now); err != nil {
				return err
			}
		}
		return config.Put(ConfigModified, now)
	})
}

// Clear removes the vault, its wallets and config. Audit events are kept.
func (s *Storage) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, VaultBucket, WalletsBucket} {
			if err := tx.DeleteBucket(bucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return fmt.Errorf("failed to delete bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
}

// GetModified retrieves the last modified timestamp
func (s *Storage) GetModified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

// GetVaultID retrieves the vault ID from config bucket
func (s *Storage) GetVaultID() (string, error) {
	var vaultID string
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		data := config.Get(ConfigVaultID)
		if data == nil {
			return fmt.Errorf("vault_id not found")
		}
		vaultID = string(data)
		return nil
	})
	return vaultID, err
}

// GetOrCreateVaultID retrieves existing vault ID or generates a new one
func (s *Storage) GetOrCreateVaultID() (string, error) {
	vaultID, err := s.GetVaultID()
	if err == nil {
		return vaultID, nil
	}
	if errors.Is(err, ErrNotInitialized) {
		return "", err
	}

	vaultID = uuid.NewString()
	err = s.db.Update(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		return config.Put(ConfigVaultID, []byte(vaultID))
	})
	if err != nil {
		return "", err
	}

	return vaultID, nil
}

// RecordEvent appends an audit event.
func (s *Storage) RecordEvent(ev vault.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		audit, err := tx.CreateBucketIfNotExists(AuditBucket)
		if err != nil {
			return err
		}
		seq, err := audit.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return audit.Put(key, data)
	})
}

// ListEvents returns up to limit audit events, newest first. A limit of zero
// or less returns every event.
func (s *Storage) ListEvents(limit int) ([]vault.Event, error) {
	var events []vault.Event
	err := s.db.View(func(tx *bolt.Tx) error {
		audit := tx.Bucket(AuditBucket)
		if audit == nil {
			return nil
		}
		c := audit.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(events) >= limit {
				break
			}
			var ev vault.Event
			if err := json.Unmarshal(v, &ev); err != nil {
				return fmt.Errorf("failed to decode audit event %d: %w", binary.BigEndian.Uint64(k), err)
			}
			events = append(events, ev)
		}
		return nil
	})
	return events, err
}

// Compact creates a compacted copy of the database, removing unused space.
// Repeated saves leave free pages behind; this reclaims them.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	// Create new database
	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets, keeping sequences so audit keys stay monotonic
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				if err := dstBucket.SetSequence(srcBucket.Sequence()); err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	// Reopen database
	s.db, err = bolt.Open(srcPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}

var (
	_ vault.Store   = (*Storage)(nil)
	_ vault.Auditor = (*Storage)(nil)
)
