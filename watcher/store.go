package watcher

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketCursor = []byte("cursor")
	bucketSeen   = []byte("seen")

	keyHeight = []byte("height")
)

// Store is the watcher's durable memory: the height cursor it has polled up
// to, and the transactions it has already fed to the decoder. A restarted
// watcher resumes from the cursor instead of re-decoding old packets.
type Store interface {
	// Cursor returns the last fully processed height (0 when fresh).
	Cursor() (int64, error)
	// SetCursor advances the processed height.
	SetCursor(height int64) error
	// MarkSeen records a decoded transaction at its height.
	MarkSeen(txid string, height int64) error
	// Seen reports whether a transaction was already processed.
	Seen(txid string) (bool, error)
	// PruneSeen drops seen entries below the height, bounding growth.
	PruneSeen(below int64) error
}

// BoltStore persists watcher state in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the database at dbPath, creating the
// parent directory if needed.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("watcher: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("watcher: open bolt db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketCursor, bucketSeen} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("watcher: create buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) Cursor() (int64, error) {
	var height int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketCursor).Get(keyHeight); v != nil {
			height = int64(binary.BigEndian.Uint64(v))
		}
		return nil
	})
	return height, err
}

func (s *BoltStore) SetCursor(height int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCursor).Put(keyHeight, heightValue(height))
	})
}

func (s *BoltStore) MarkSeen(txid string, height int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSeen).Put([]byte(txid), heightValue(height))
	})
}

func (s *BoltStore) Seen(txid string) (bool, error) {
	var seen bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		seen = tx.Bucket(bucketSeen).Get([]byte(txid)) != nil
		return nil
	})
	return seen, err
}

// PruneSeen walks the seen bucket and drops entries recorded below the
// height. The cursor makes them unreachable anyway; pruning just bounds the
// bucket.
func (s *BoltStore) PruneSeen(below int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSeen)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if int64(binary.BigEndian.Uint64(v)) < below {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// heightValue encodes a height as an 8-byte big-endian value.
func heightValue(h int64) []byte {
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, uint64(h))
	return v
}

// MemStore is an in-memory Store for tests and one-shot batch decoding.
type MemStore struct {
	cursor int64
	seen   map[string]int64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{seen: make(map[string]int64)}
}

var _ Store = (*MemStore)(nil)

func (m *MemStore) Cursor() (int64, error)         { return m.cursor, nil }
func (m *MemStore) SetCursor(height int64) error   { m.cursor = height; return nil }
func (m *MemStore) Seen(txid string) (bool, error) { _, ok := m.seen[txid]; return ok, nil }

func (m *MemStore) MarkSeen(txid string, height int64) error {
	m.seen[txid] = height
	return nil
}

func (m *MemStore) PruneSeen(below int64) error {
	for txid, h := range m.seen {
		if h < below {
			delete(m.seen, txid)
		}
	}
	return nil
}
