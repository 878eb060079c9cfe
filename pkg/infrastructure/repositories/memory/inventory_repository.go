package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/domain/repositories"
	"github.com/vsinha/shopfloor/pkg/infrastructure/repositories/kv"
)

// InventoryStore provides in-memory inventory storage. Writers are
// serialized; an Update stages its writes and applies them only when the
// callback succeeds.
type InventoryStore struct {
	mu     sync.RWMutex
	tables map[string]map[string][]byte
	closed bool
}

// NewInventoryStore creates a new empty in-memory store
func NewInventoryStore() *InventoryStore {
	tables := make(map[string]map[string][]byte, len(kv.Tables))
	for _, name := range kv.Tables {
		tables[name] = make(map[string][]byte)
	}
	return &InventoryStore{tables: tables}
}

// Verify interface compliance
var _ repositories.InventoryStore = (*InventoryStore)(nil)

// View runs fn against a read-only view of the store
func (s *InventoryStore) View(ctx context.Context, fn func(tx repositories.InventoryTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &entities.StorageUnavailableError{Op: "view"}
	}
	return fn(kv.NewTx(&stagedBucket{base: s.tables, readOnly: true}))
}

// Update runs fn and commits its writes if it returns nil
func (s *InventoryStore) Update(ctx context.Context, fn func(tx repositories.InventoryTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &entities.StorageUnavailableError{Op: "update"}
	}

	staged := &stagedBucket{base: s.tables, writes: make(map[string]map[string][]byte)}
	if err := fn(kv.NewTx(staged)); err != nil {
		return err
	}
	for table, rows := range staged.writes {
		for key, data := range rows {
			s.tables[table][key] = data
		}
	}
	return nil
}

// Close marks the store unavailable
func (s *InventoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// stagedBucket overlays pending writes on the committed tables
type stagedBucket struct {
	base     map[string]map[string][]byte
	writes   map[string]map[string][]byte
	readOnly bool
}

func (b *stagedBucket) table(name string) (map[string][]byte, error) {
	t, ok := b.base[name]
	if !ok {
		return nil, fmt.Errorf("table not found: %s", name)
	}
	return t, nil
}

func (b *stagedBucket) Get(table, key string) ([]byte, error) {
	base, err := b.table(table)
	if err != nil {
		return nil, err
	}
	if data, ok := b.writes[table][key]; ok {
		return data, nil
	}
	return base[key], nil
}

func (b *stagedBucket) Put(table, key string, data []byte) error {
	if b.readOnly {
		return fmt.Errorf("cannot write %s/%s in a read-only transaction", table, key)
	}
	if _, err := b.table(table); err != nil {
		return err
	}
	if b.writes[table] == nil {
		b.writes[table] = make(map[string][]byte)
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	b.writes[table][key] = copied
	return nil
}

func (b *stagedBucket) ForEach(table string, fn func(key string, data []byte) error) error {
	base, err := b.table(table)
	if err != nil {
		return err
	}
	for key, data := range base {
		if staged, ok := b.writes[table][key]; ok {
			data = staged
		}
		if err := fn(key, data); err != nil {
			return err
		}
	}
	for key, data := range b.writes[table] {
		if _, ok := base[key]; ok {
			continue
		}
		if err := fn(key, data); err != nil {
			return err
		}
	}
	return nil
}
