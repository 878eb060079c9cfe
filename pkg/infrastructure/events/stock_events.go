package events

import (
	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

const (
	PrintRecordedEvent           = "component.printed"
	PostProcessingCompletedEvent = "component.post_processed"
	ComponentAdjustedEvent       = "component.adjusted"
	PurchasedAdjustedEvent       = "purchased.adjusted"
	PartAssembledEvent           = "part.assembled"
	ProductAssembledEvent        = "product.assembled"
	InventoryResetEvent          = "inventory.reset"
	BackupImportedEvent          = "backup.imported"
)

// AllStockEvents lists every event the engine and service publish
var AllStockEvents = []string{
	PrintRecordedEvent,
	PostProcessingCompletedEvent,
	ComponentAdjustedEvent,
	PurchasedAdjustedEvent,
	PartAssembledEvent,
	ProductAssembledEvent,
	InventoryResetEvent,
	BackupImportedEvent,
}

// StockChanged carries the committed state of every record a mutation
// touched.
type StockChanged struct {
	Count     int64                          `json:"count,omitempty"`
	Printed   []*entities.PrintedComponent   `json:"printed,omitempty"`
	Purchased []*entities.PurchasedComponent `json:"purchased,omitempty"`
	Parts     []*entities.Part               `json:"parts,omitempty"`
	Products  []*entities.Product            `json:"products,omitempty"`
}
