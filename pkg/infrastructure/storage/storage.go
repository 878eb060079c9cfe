// Package storage selects and opens an inventory store backend, and seeds it
// from the catalog.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vsinha/shopfloor/pkg/domain/catalog"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/domain/repositories"
	"github.com/vsinha/shopfloor/pkg/infrastructure/repositories/badger"
	"github.com/vsinha/shopfloor/pkg/infrastructure/repositories/bolt"
	"github.com/vsinha/shopfloor/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/shopfloor/pkg/infrastructure/repositories/sqlite"
)

// DatabaseType represents the available store backends
type DatabaseType string

const (
	DatabaseTypeMemory DatabaseType = "memory"
	DatabaseTypeBolt   DatabaseType = "bolt"
	DatabaseTypeBadger DatabaseType = "badger"
	DatabaseTypeSQLite DatabaseType = "sqlite"
)

// ParseDatabaseType validates a configured backend name
func ParseDatabaseType(s string) (DatabaseType, error) {
	switch t := DatabaseType(strings.ToLower(strings.TrimSpace(s))); t {
	case DatabaseTypeMemory, DatabaseTypeBolt, DatabaseTypeBadger, DatabaseTypeSQLite:
		return t, nil
	default:
		return "", &entities.ValidationError{
			Detail: "unsupported database type",
			Fields: map[string]string{"database.type": s},
		}
	}
}

// Open creates a store of the given type. Bolt and SQLite use a single file
// (an extension is appended when missing); badger uses a directory.
func Open(dbType DatabaseType, path string, logger *logrus.Logger) (repositories.InventoryStore, error) {
	switch dbType {
	case DatabaseTypeMemory:
		return memory.NewInventoryStore(), nil
	case DatabaseTypeBolt:
		if filepath.Ext(path) == "" {
			path += ".bolt"
		}
		return bolt.NewInventoryStore(path)
	case DatabaseTypeBadger:
		return badger.NewInventoryStore(badger.Options{Path: path, Logger: logger})
	case DatabaseTypeSQLite:
		if path != ":memory:" && filepath.Ext(path) == "" {
			path += ".db"
		}
		return sqlite.NewInventoryStore(path)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// Seed materializes the catalog into the store. Stock records are created
// only when absent; recipe rows are rewritten so they always match the
// catalog. The target buffer setting gets its default if unset.
func Seed(ctx context.Context, store repositories.InventoryStore, c *catalog.Catalog) error {
	seed, err := c.Seed()
	if err != nil {
		return err
	}

	return store.Update(ctx, func(tx repositories.InventoryTx) error {
		for _, rec := range seed.Printed {
			if _, err := tx.GetPrintedComponent(rec.ID); isNotFound(err) {
				if err := tx.PutPrintedComponent(rec); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}
		for _, rec := range seed.Purchased {
			if _, err := tx.GetPurchasedComponent(rec.ID); isNotFound(err) {
				if err := tx.PutPurchasedComponent(rec); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}
		for _, rec := range seed.Parts {
			if _, err := tx.GetPart(rec.ID); isNotFound(err) {
				if err := tx.PutPart(rec); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}
		for _, rec := range seed.Products {
			if _, err := tx.GetProduct(rec.ID); isNotFound(err) {
				if err := tx.PutProduct(rec); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}
		for _, row := range seed.PartRecipes {
			if err := tx.PutPartRecipe(row); err != nil {
				return err
			}
		}
		for _, row := range seed.ProductRecipes {
			if err := tx.PutProductRecipe(row); err != nil {
				return err
			}
		}

		_, found, err := tx.GetSetting(repositories.SettingTargetProductsBuffer)
		if err != nil {
			return err
		}
		if !found {
			return tx.PutSetting(repositories.SettingTargetProductsBuffer, strconv.Itoa(repositories.DefaultTargetProductsBuffer))
		}
		return nil
	})
}

func isNotFound(err error) bool {
	var notFound *entities.NotFoundError
	return errors.As(err, &notFound)
}

// Handle owns the single store of a process. Get opens and seeds the store
// on first use; every caller, concurrent or later, receives the same store or
// the same error.
type Handle struct {
	dbType  DatabaseType
	path    string
	catalog *catalog.Catalog
	logger  *logrus.Logger

	once  sync.Once
	store repositories.InventoryStore
	err   error
}

// NewHandle prepares a store handle without opening anything
func NewHandle(dbType DatabaseType, path string, c *catalog.Catalog, logger *logrus.Logger) *Handle {
	return &Handle{dbType: dbType, path: path, catalog: c, logger: logger}
}

// Get returns the initialized store
func (h *Handle) Get(ctx context.Context) (repositories.InventoryStore, error) {
	h.once.Do(func() {
		// seeding outlives the first caller's cancellation
		ctx := context.WithoutCancel(ctx)
		store, err := Open(h.dbType, h.path, h.logger)
		if err != nil {
			h.err = &entities.StorageUnavailableError{Op: "open " + string(h.dbType), Err: err}
			return
		}
		if err := Seed(ctx, store, h.catalog); err != nil {
			store.Close()
			h.err = &entities.StorageUnavailableError{Op: "seed", Err: err}
			return
		}
		if h.logger != nil {
			h.logger.WithFields(logrus.Fields{
				"type": h.dbType,
				"path": h.path,
			}).Debug("inventory store ready")
		}
		h.store = store
	})
	return h.store, h.err
}

// Close closes the store if it was opened
func (h *Handle) Close() error {
	if h.store == nil {
		return nil
	}
	return h.store.Close()
}
