package bolt

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/domain/repositories"
	"github.com/vsinha/shopfloor/pkg/infrastructure/repositories/kv"
)

// InventoryStore implements repositories.InventoryStore using BoltDB (bbolt).
// Each table is a bucket; bbolt allows one writer at a time, which matches
// the single-writer model of the engine.
type InventoryStore struct {
	mu     sync.RWMutex
	db     *bbolt.DB
	closed bool
}

// NewInventoryStore opens (or creates) a BoltDB file at dbPath
func NewInventoryStore(dbPath string) (*InventoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create parent directory for bolt db")
	}

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{
		Timeout:      1 * time.Second,
		FreelistType: bbolt.FreelistMapType,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open bolt db")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range kv.Tables {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return errors.Wrapf(err, "failed to create bucket %s", name)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &InventoryStore{db: db}, nil
}

// Verify interface compliance
var _ repositories.InventoryStore = (*InventoryStore)(nil)

// View runs fn in a read-only bolt transaction
func (s *InventoryStore) View(ctx context.Context, fn func(tx repositories.InventoryTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &entities.StorageUnavailableError{Op: "view"}
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		return fn(kv.NewTx(&bucket{tx: tx}))
	})
}

// Update runs fn in a read-write bolt transaction, rolled back on error
func (s *InventoryStore) Update(ctx context.Context, fn func(tx repositories.InventoryTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &entities.StorageUnavailableError{Op: "update"}
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(kv.NewTx(&bucket{tx: tx}))
	})
}

// Close closes the database file
func (s *InventoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

type bucket struct {
	tx *bbolt.Tx
}

func (b *bucket) bucket(table string) (*bbolt.Bucket, error) {
	bk := b.tx.Bucket([]byte(table))
	if bk == nil {
		return nil, errors.Errorf("%s bucket not found", table)
	}
	return bk, nil
}

func (b *bucket) Get(table, key string) ([]byte, error) {
	bk, err := b.bucket(table)
	if err != nil {
		return nil, err
	}
	data := bk.Get([]byte(key))
	if data == nil {
		return nil, nil
	}
	// bolt memory is only valid for the life of the transaction
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

func (b *bucket) Put(table, key string, data []byte) error {
	bk, err := b.bucket(table)
	if err != nil {
		return err
	}
	return bk.Put([]byte(key), data)
}

func (b *bucket) ForEach(table string, fn func(key string, data []byte) error) error {
	bk, err := b.bucket(table)
	if err != nil {
		return err
	}
	return bk.ForEach(func(k, v []byte) error {
		return fn(string(k), v)
	})
}
