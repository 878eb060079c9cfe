package badger

import (
	"context"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/domain/repositories"
	"github.com/vsinha/shopfloor/pkg/infrastructure/repositories/kv"
)

// InventoryStore implements repositories.InventoryStore using BadgerDB.
// Tables are key prefixes: "parts:bowler", "settings:target_products_buffer".
type InventoryStore struct {
	mu     sync.RWMutex
	db     *badger.DB
	closed bool
}

// Options configures the badger store
type Options struct {
	Path     string
	InMemory bool
	Logger   *logrus.Logger
}

// NewInventoryStore opens (or creates) a badger directory
func NewInventoryStore(opts Options) (*InventoryStore, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, errors.New("badger path cannot be empty")
	}

	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	if opts.Logger != nil {
		bopts.Logger = &badgerLogger{logger: opts.Logger}
	} else {
		bopts.Logger = nil
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open badger database")
	}
	return &InventoryStore{db: db}, nil
}

// Verify interface compliance
var _ repositories.InventoryStore = (*InventoryStore)(nil)

// View runs fn in a read-only badger transaction
func (s *InventoryStore) View(ctx context.Context, fn func(tx repositories.InventoryTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &entities.StorageUnavailableError{Op: "view"}
	}
	return s.db.View(func(txn *badger.Txn) error {
		return fn(kv.NewTx(&bucket{txn: txn}))
	})
}

// Update runs fn in a read-write badger transaction. Badger discards the
// transaction when fn returns an error.
func (s *InventoryStore) Update(ctx context.Context, fn func(tx repositories.InventoryTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &entities.StorageUnavailableError{Op: "update"}
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return fn(kv.NewTx(&bucket{txn: txn}))
	})
}

// Close closes the database
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
	txn *badger.Txn
}

func key(table, k string) []byte {
	return []byte(table + ":" + k)
}

func (b *bucket) Get(table, k string) ([]byte, error) {
	item, err := b.txn.Get(key(table, k))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (b *bucket) Put(table, k string, data []byte) error {
	return b.txn.Set(key(table, k), data)
}

func (b *bucket) ForEach(table string, fn func(key string, data []byte) error) error {
	prefix := []byte(table + ":")
	it := b.txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		k := strings.TrimPrefix(string(item.Key()), string(prefix))
		err := item.Value(func(val []byte) error {
			return fn(k, val)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// badgerLogger adapts logrus to BadgerDB's logger interface
type badgerLogger struct {
	logger *logrus.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}
