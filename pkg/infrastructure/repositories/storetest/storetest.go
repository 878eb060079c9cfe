// Package storetest holds the behaviour every inventory store backend must
// share. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/domain/repositories"
)

// Opener returns a fresh, empty store; the suite closes it
type Opener func(t *testing.T) repositories.InventoryStore

// Run executes the conformance suite against a backend
func Run(t *testing.T, open Opener) {
	t.Run("put_and_get", func(t *testing.T) { testPutAndGet(t, open(t)) })
	t.Run("list_sorted", func(t *testing.T) { testListSorted(t, open(t)) })
	t.Run("not_found", func(t *testing.T) { testNotFound(t, open(t)) })
	t.Run("rollback_on_error", func(t *testing.T) { testRollback(t, open(t)) })
	t.Run("read_own_writes", func(t *testing.T) { testReadOwnWrites(t, open(t)) })
	t.Run("settings", func(t *testing.T) { testSettings(t, open(t)) })
	t.Run("recipes", func(t *testing.T) { testRecipes(t, open(t)) })
	t.Run("closed_store", func(t *testing.T) { testClosed(t, open(t)) })
}

func mustPrinted(id entities.ItemID, name string) *entities.PrintedComponent {
	c, err := entities.NewPrintedComponent(id, name, 10, 60, true)
	if err != nil {
		panic(err)
	}
	return c
}

func testPutAndGet(t *testing.T, store repositories.InventoryStore) {
	defer store.Close()
	ctx := context.Background()

	threshold := decimal.NewFromInt(5)
	err := store.Update(ctx, func(tx repositories.InventoryTx) error {
		c := mustPrinted("fence-corner", "Fence Corner")
		c.PostProcessingCompleted = 4
		c.PostProcessingPending = 2
		c.Quantity = 6
		if err := tx.PutPrintedComponent(c); err != nil {
			return err
		}
		p, err := entities.NewPurchasedComponent("bubble-mailers", "Bubble Mailers", "pieces", &threshold)
		if err != nil {
			return err
		}
		p.Quantity = decimal.RequireFromString("2.5")
		if err := tx.PutPurchasedComponent(p); err != nil {
			return err
		}
		if err := tx.PutPart(&entities.Part{ID: "bowler", Name: "Bowler", Assembled: 3}); err != nil {
			return err
		}
		return tx.PutProduct(&entities.Product{ID: "kit", Name: "Kit", Quantity: 1})
	})
	require.NoError(t, err)

	err = store.View(ctx, func(tx repositories.InventoryTx) error {
		c, err := tx.GetPrintedComponent("fence-corner")
		require.NoError(t, err)
		assert.Equal(t, "Fence Corner", c.Name)
		assert.Equal(t, entities.Quantity(4), c.PostProcessingCompleted)
		assert.Equal(t, entities.Quantity(2), c.PostProcessingPending)
		assert.True(t, c.RequiresPostProcessing)

		p, err := tx.GetPurchasedComponent("bubble-mailers")
		require.NoError(t, err)
		assert.True(t, p.Quantity.Equal(decimal.RequireFromString("2.5")), "quantity %s", p.Quantity)
		require.NotNil(t, p.LowStockThreshold)
		assert.True(t, p.LowStockThreshold.Equal(threshold))

		part, err := tx.GetPart("bowler")
		require.NoError(t, err)
		assert.Equal(t, entities.Quantity(3), part.Assembled)

		product, err := tx.GetProduct("kit")
		require.NoError(t, err)
		assert.Equal(t, entities.Quantity(1), product.Quantity)
		return nil
	})
	require.NoError(t, err)
}

func testListSorted(t *testing.T, store repositories.InventoryStore) {
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, func(tx repositories.InventoryTx) error {
		for _, id := range []entities.ItemID{"stumps", "fence-corner", "fielder-low"} {
			if err := tx.PutPrintedComponent(mustPrinted(id, string(id))); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, store.View(ctx, func(tx repositories.InventoryTx) error {
		list, err := tx.ListPrintedComponents()
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, entities.ItemID("fence-corner"), list[0].ID)
		assert.Equal(t, entities.ItemID("fielder-low"), list[1].ID)
		assert.Equal(t, entities.ItemID("stumps"), list[2].ID)

		parts, err := tx.ListParts()
		require.NoError(t, err)
		assert.Empty(t, parts)
		return nil
	}))
}

func testNotFound(t *testing.T, store repositories.InventoryStore) {
	defer store.Close()

	err := store.View(context.Background(), func(tx repositories.InventoryTx) error {
		_, err := tx.GetPart("nope")
		return err
	})
	var notFound *entities.NotFoundError
	require.True(t, errors.As(err, &notFound), "expected NotFoundError, got %v", err)
	assert.Equal(t, "nope", notFound.ID)
}

func testRollback(t *testing.T, store repositories.InventoryStore) {
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, func(tx repositories.InventoryTx) error {
		return tx.PutPart(&entities.Part{ID: "bowler", Name: "Bowler", Assembled: 3})
	}))

	boom := errors.New("boom")
	err := store.Update(ctx, func(tx repositories.InventoryTx) error {
		if err := tx.PutPart(&entities.Part{ID: "bowler", Name: "Bowler", Assembled: 99}); err != nil {
			return err
		}
		if err := tx.PutPart(&entities.Part{ID: "batter", Name: "Batter", Assembled: 1}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, store.View(ctx, func(tx repositories.InventoryTx) error {
		part, err := tx.GetPart("bowler")
		require.NoError(t, err)
		assert.Equal(t, entities.Quantity(3), part.Assembled)

		_, err = tx.GetPart("batter")
		var notFound *entities.NotFoundError
		assert.True(t, errors.As(err, &notFound), "rolled back insert should not exist")
		return nil
	}))
}

func testReadOwnWrites(t *testing.T, store repositories.InventoryStore) {
	defer store.Close()

	require.NoError(t, store.Update(context.Background(), func(tx repositories.InventoryTx) error {
		if err := tx.PutProduct(&entities.Product{ID: "kit", Name: "Kit", Quantity: 2}); err != nil {
			return err
		}
		p, err := tx.GetProduct("kit")
		require.NoError(t, err)
		assert.Equal(t, entities.Quantity(2), p.Quantity)

		list, err := tx.ListProducts()
		require.NoError(t, err)
		assert.Len(t, list, 1)
		return nil
	}))
}

func testSettings(t *testing.T, store repositories.InventoryStore) {
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.View(ctx, func(tx repositories.InventoryTx) error {
		_, found, err := tx.GetSetting(repositories.SettingTargetProductsBuffer)
		require.NoError(t, err)
		assert.False(t, found)
		return nil
	}))

	require.NoError(t, store.Update(ctx, func(tx repositories.InventoryTx) error {
		return tx.PutSetting(repositories.SettingTargetProductsBuffer, "25")
	}))

	require.NoError(t, store.View(ctx, func(tx repositories.InventoryTx) error {
		value, found, err := tx.GetSetting(repositories.SettingTargetProductsBuffer)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "25", value)
		return nil
	}))
}

func testRecipes(t *testing.T, store repositories.InventoryStore) {
	defer store.Close()
	ctx := context.Background()

	partRow, err := entities.NewPartRecipe("bowler", "bowler-arm", entities.KindPrinted, decimal.NewFromInt(1))
	require.NoError(t, err)
	productRow, err := entities.NewProductRecipe("kit", "bubble-mailers", entities.KindPurchased, decimal.RequireFromString("0.5"))
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, func(tx repositories.InventoryTx) error {
		if err := tx.PutPartRecipe(partRow); err != nil {
			return err
		}
		return tx.PutProductRecipe(productRow)
	}))

	require.NoError(t, store.View(ctx, func(tx repositories.InventoryTx) error {
		parts, err := tx.ListPartRecipes()
		require.NoError(t, err)
		require.Len(t, parts, 1)
		assert.Equal(t, entities.KindPrinted, parts[0].ComponentKind)

		products, err := tx.ListProductRecipes()
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, entities.KindPurchased, products[0].InputKind)
		assert.True(t, products[0].QuantityRequired.Equal(decimal.RequireFromString("0.5")))
		return nil
	}))
}

func testClosed(t *testing.T, store repositories.InventoryStore) {
	require.NoError(t, store.Close())

	err := store.View(context.Background(), func(tx repositories.InventoryTx) error { return nil })
	var unavailable *entities.StorageUnavailableError
	assert.True(t, errors.As(err, &unavailable), "expected StorageUnavailableError from View, got %v", err)

	err = store.Update(context.Background(), func(tx repositories.InventoryTx) error { return nil })
	assert.True(t, errors.As(err, &unavailable), "expected StorageUnavailableError from Update, got %v", err)

	assert.NoError(t, store.Close(), "second close should be a no-op")
}
