package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/shopfloor/pkg/domain/catalog"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/domain/repositories"
	"github.com/vsinha/shopfloor/pkg/infrastructure/logging"
)

func TestParseDatabaseType(t *testing.T) {
	for _, s := range []string{"memory", "bolt", " Badger ", "SQLITE"} {
		_, err := ParseDatabaseType(s)
		assert.NoError(t, err, s)
	}

	_, err := ParseDatabaseType("postgres")
	var validation *entities.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "postgres", validation.Fields["database.type"])
}

func TestSeed_KeepsExistingStock(t *testing.T) {
	ctx := context.Background()
	c := catalog.Default()
	store, err := Open(DatabaseTypeMemory, "", nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, Seed(ctx, store, c))

	arm := entities.NewItemID("Bowler Arm")
	require.NoError(t, store.Update(ctx, func(tx repositories.InventoryTx) error {
		comp, err := tx.GetPrintedComponent(arm)
		if err != nil {
			return err
		}
		comp.PostProcessingCompleted = 8
		if err := tx.PutPrintedComponent(comp); err != nil {
			return err
		}
		return tx.PutSetting(repositories.SettingTargetProductsBuffer, "25")
	}))

	require.NoError(t, Seed(ctx, store, c))

	require.NoError(t, store.View(ctx, func(tx repositories.InventoryTx) error {
		comp, err := tx.GetPrintedComponent(arm)
		require.NoError(t, err)
		assert.EqualValues(t, 8, comp.PostProcessingCompleted)

		value, found, err := tx.GetSetting(repositories.SettingTargetProductsBuffer)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "25", value)

		printed, err := tx.ListPrintedComponents()
		require.NoError(t, err)
		assert.Len(t, printed, len(c.Items(entities.KindPrinted)))
		return nil
	}))
}

func TestHandle_OpensOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory")
	h := NewHandle(DatabaseTypeBolt, path, catalog.Default(), logging.Discard())
	defer h.Close()

	const callers = 8
	stores := make([]repositories.InventoryStore, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store, err := h.Get(context.Background())
			assert.NoError(t, err)
			stores[i] = store
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Same(t, stores[0], stores[i])
	}
	_, err := os.Stat(path + ".bolt")
	assert.NoError(t, err)
}

func TestHandle_CancelledFirstCaller(t *testing.T) {
	h := NewHandle(DatabaseTypeMemory, "", catalog.Default(), logging.Discard())
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Get(ctx)
	require.NoError(t, err)

	store, err := h.Get(context.Background())
	require.NoError(t, err)
	require.NoError(t, store.View(context.Background(), func(tx repositories.InventoryTx) error {
		value, found, err := tx.GetSetting(repositories.SettingTargetProductsBuffer)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "10", value)
		return nil
	}))
}

func TestHandle_OpenFailureIsSticky(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	h := NewHandle(DatabaseTypeBolt, filepath.Join(blocker, "inventory"), catalog.Default(), logging.Discard())

	_, first := h.Get(context.Background())
	_, second := h.Get(context.Background())

	var unavailable *entities.StorageUnavailableError
	require.True(t, errors.As(first, &unavailable), "expected StorageUnavailableError, got %v", first)
	assert.Same(t, first, second)
	assert.NoError(t, h.Close())
}
