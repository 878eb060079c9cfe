package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/domain/repositories"
	"github.com/vsinha/shopfloor/pkg/infrastructure/repositories/kv"
)

// InventoryStore implements repositories.InventoryStore on SQLite. Every
// table shares the records layout (id primary key, JSON body) so the
// document codec is the same as the key/value backends.
type InventoryStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// NewInventoryStore opens the database file and runs migrations
func NewInventoryStore(path string) (*InventoryStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create parent directory for sqlite db")
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite db")
	}
	// one connection keeps writers serialized and makes :memory: usable
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &InventoryStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	for _, table := range kv.Tables {
		stmt := `CREATE TABLE IF NOT EXISTS ` + table + ` (
			id TEXT PRIMARY KEY,
			body BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrapf(err, "failed to migrate table %s", table)
		}
	}
	return nil
}

// Verify interface compliance
var _ repositories.InventoryStore = (*InventoryStore)(nil)

// View runs fn inside a read-only SQL transaction
func (s *InventoryStore) View(ctx context.Context, fn func(tx repositories.InventoryTx) error) error {
	return s.run(ctx, "view", true, fn)
}

// Update runs fn inside a SQL transaction, committed only if fn succeeds
func (s *InventoryStore) Update(ctx context.Context, fn func(tx repositories.InventoryTx) error) error {
	return s.run(ctx, "update", false, fn)
}

func (s *InventoryStore) run(ctx context.Context, op string, readOnly bool, fn func(tx repositories.InventoryTx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &entities.StorageUnavailableError{Op: op}
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &entities.StorageUnavailableError{Op: op, Err: err}
	}
	if err := fn(kv.NewTx(&bucket{ctx: ctx, tx: sqlTx, readOnly: readOnly})); err != nil {
		sqlTx.Rollback()
		return err
	}
	if readOnly {
		return sqlTx.Rollback()
	}
	return errors.Wrap(sqlTx.Commit(), "failed to commit transaction")
}

// Close closes the database handle
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
	ctx      context.Context
	tx       *sql.Tx
	readOnly bool
}

func validTable(table string) error {
	for _, t := range kv.Tables {
		if t == table {
			return nil
		}
	}
	return errors.Errorf("table not found: %s", table)
}

func (b *bucket) Get(table, key string) ([]byte, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}
	var body []byte
	err := b.tx.QueryRowContext(b.ctx, `SELECT body FROM `+table+` WHERE id = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (b *bucket) Put(table, key string, data []byte) error {
	if b.readOnly {
		return errors.Errorf("cannot write %s/%s in a read-only transaction", table, key)
	}
	if err := validTable(table); err != nil {
		return err
	}
	_, err := b.tx.ExecContext(b.ctx,
		`INSERT INTO `+table+` (id, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		key, data)
	return err
}

func (b *bucket) ForEach(table string, fn func(key string, data []byte) error) error {
	if err := validTable(table); err != nil {
		return err
	}
	rows, err := b.tx.QueryContext(b.ctx, `SELECT id, body FROM `+table+` ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return err
		}
		if err := fn(id, body); err != nil {
			return err
		}
	}
	return rows.Err()
}
