package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/domain/repositories"
	"github.com/vsinha/shopfloor/pkg/infrastructure/repositories/storetest"
)

func TestInventoryStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repositories.InventoryStore {
		store, err := NewInventoryStore(filepath.Join(t.TempDir(), "inventory.db"))
		require.NoError(t, err)
		return store
	})
}

func TestInventoryStore_InMemoryDSN(t *testing.T) {
	store, err := NewInventoryStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Update(ctx, func(tx repositories.InventoryTx) error {
		return tx.PutProduct(&entities.Product{ID: "kit", Name: "Kit", Quantity: 4})
	}))
	require.NoError(t, store.View(ctx, func(tx repositories.InventoryTx) error {
		p, err := tx.GetProduct("kit")
		require.NoError(t, err)
		assert.Equal(t, entities.Quantity(4), p.Quantity)
		return nil
	}))
}

func TestInventoryStore_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")

	first, err := NewInventoryStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Update(context.Background(), func(tx repositories.InventoryTx) error {
		return tx.PutSetting("k", "v")
	}))
	require.NoError(t, first.Close())

	second, err := NewInventoryStore(path)
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, second.View(context.Background(), func(tx repositories.InventoryTx) error {
		v, found, err := tx.GetSetting("k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "v", v)
		return nil
	}))
}
