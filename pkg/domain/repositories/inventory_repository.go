package repositories

import (
	"context"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

// Setting keys
const (
	SettingTargetProductsBuffer = "target_products_buffer"
)

// DefaultTargetProductsBuffer is seeded into a fresh store and read back when
// the setting is absent
const DefaultTargetProductsBuffer = 10

// InventoryTx is the view of the store inside one transaction. Get methods
// return *entities.NotFoundError for unknown ids. List methods return records
// ordered by id.
type InventoryTx interface {
	GetPrintedComponent(id entities.ItemID) (*entities.PrintedComponent, error)
	ListPrintedComponents() ([]*entities.PrintedComponent, error)
	PutPrintedComponent(c *entities.PrintedComponent) error

	GetPurchasedComponent(id entities.ItemID) (*entities.PurchasedComponent, error)
	ListPurchasedComponents() ([]*entities.PurchasedComponent, error)
	PutPurchasedComponent(c *entities.PurchasedComponent) error

	GetPart(id entities.ItemID) (*entities.Part, error)
	ListParts() ([]*entities.Part, error)
	PutPart(p *entities.Part) error

	GetProduct(id entities.ItemID) (*entities.Product, error)
	ListProducts() ([]*entities.Product, error)
	PutProduct(p *entities.Product) error

	ListPartRecipes() ([]*entities.PartRecipe, error)
	PutPartRecipe(r *entities.PartRecipe) error
	ListProductRecipes() ([]*entities.ProductRecipe, error)
	PutProductRecipe(r *entities.ProductRecipe) error

	// GetSetting reports found=false when the key was never written
	GetSetting(key string) (value string, found bool, err error)
	PutSetting(key, value string) error
}

// InventoryStore provides transactional access to stock records. A callback
// passed to Update either commits in full or, when it returns an error,
// leaves the store untouched. Implementations return
// *entities.StorageUnavailableError once closed.
type InventoryStore interface {
	View(ctx context.Context, fn func(tx InventoryTx) error) error
	Update(ctx context.Context, fn func(tx InventoryTx) error) error
	Close() error
}
