package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

// ComponentView is a printed component as shown to callers
type ComponentView struct {
	ID                     entities.ItemID   `json:"id" yaml:"id"`
	Name                   string            `json:"name" yaml:"name"`
	Quantity               entities.Quantity `json:"quantity" yaml:"quantity"`
	Completed              entities.Quantity `json:"postProcessingCompleted" yaml:"post_processing_completed"`
	Pending                entities.Quantity `json:"postProcessingPending" yaml:"post_processing_pending"`
	BatchSize              int               `json:"batchSize" yaml:"batch_size"`
	PrintTimeMinutes       int               `json:"printTimeMinutes" yaml:"print_time_minutes"`
	RequiresPostProcessing bool              `json:"requiresPostProcessing" yaml:"requires_post_processing"`
	PerProduct             entities.Quantity `json:"perProduct" yaml:"per_product"`
	LowStock               bool              `json:"lowStock" yaml:"low_stock"`
}

// PurchasedView is a purchased component as shown to callers
type PurchasedView struct {
	ID                entities.ItemID  `json:"id" yaml:"id"`
	Name              string           `json:"name" yaml:"name"`
	Quantity          decimal.Decimal  `json:"quantity" yaml:"quantity"`
	Unit              string           `json:"unit" yaml:"unit"`
	LowStockThreshold *decimal.Decimal `json:"lowStockThreshold,omitempty" yaml:"low_stock_threshold,omitempty"`
	PerProduct        decimal.Decimal  `json:"perProduct" yaml:"per_product"`
	LowStock          bool             `json:"lowStock" yaml:"low_stock"`
}

// PartView is a part with its derived available quantity and current
// capacity.
type PartView struct {
	ID        entities.ItemID   `json:"id" yaml:"id"`
	Name      string            `json:"name" yaml:"name"`
	Assembled entities.Quantity `json:"assembled" yaml:"assembled"`
	Pending   entities.Quantity `json:"pending" yaml:"pending"`
	Available entities.Quantity `json:"quantity" yaml:"available"`
	Committed decimal.Decimal   `json:"committedToProducts" yaml:"committed_to_products"`
	Capacity  int64             `json:"maxBuildable" yaml:"max_buildable"`
}

// ProductView is a product with its current capacity
type ProductView struct {
	ID       entities.ItemID   `json:"id" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	Quantity entities.Quantity `json:"quantity" yaml:"quantity"`
	Capacity int64             `json:"maxBuildable" yaml:"max_buildable"`
}

// ComponentUpdate is a corrective edit of a printed component. Nil fields are
// left unchanged.
type ComponentUpdate struct {
	Quantity               *entities.Quantity `json:"quantity,omitempty"`
	Completed              *entities.Quantity `json:"postProcessingCompleted,omitempty"`
	Pending                *entities.Quantity `json:"postProcessingPending,omitempty"`
	BatchSize              *int               `json:"batchSize,omitempty"`
	PrintTimeMinutes       *int               `json:"printTimeMinutes,omitempty"`
	RequiresPostProcessing *bool              `json:"requiresPostProcessing,omitempty"`
}

// RecipeRow is one materialized recipe row as read back from the store
type RecipeRow struct {
	OutputID   entities.ItemID `json:"outputId" yaml:"output_id"`
	OutputName string          `json:"outputName" yaml:"output_name"`
	InputID    entities.ItemID `json:"inputId" yaml:"input_id"`
	InputName  string          `json:"inputName" yaml:"input_name"`
	InputKind  string          `json:"inputType" yaml:"input_type"`
	Quantity   decimal.Decimal `json:"quantityRequired" yaml:"quantity_required"`
}

// Dashboard summarizes the shop at a glance
type Dashboard struct {
	TotalPrinted   entities.Quantity `json:"totalPrinted" yaml:"total_printed"`
	Completed      entities.Quantity `json:"completed" yaml:"completed"`
	Pending        entities.Quantity `json:"pending" yaml:"pending"`
	Products       []ProductView     `json:"products" yaml:"products"`
	LowStockCount  int               `json:"lowStockCount" yaml:"low_stock_count"`
	TargetBuffer   int               `json:"targetProductsBuffer" yaml:"target_products_buffer"`
	ShortageCount  int               `json:"shortageCount" yaml:"shortage_count"`
	TotalPrintTime int64             `json:"totalPrintTimeMinutes" yaml:"total_print_time_minutes"`
}

// LowStockReport lists everything currently flagged as low
type LowStockReport struct {
	Printed   []ComponentView `json:"printed" yaml:"printed"`
	Purchased []PurchasedView `json:"purchased" yaml:"purchased"`
}

// StockLevelRow is one row of a bulk stock import. For printed components
// Quantity is the completed count; Pending is ignored for purchased stock.
type StockLevelRow struct {
	Line     int
	Name     string
	Quantity decimal.Decimal
	Pending  *entities.Quantity
}

// ImportSummary reports what a bulk import or backup restore touched
type ImportSummary struct {
	Printed   int      `json:"printed" yaml:"printed"`
	Purchased int      `json:"purchased" yaml:"purchased"`
	Parts     int      `json:"parts" yaml:"parts"`
	Products  int      `json:"products" yaml:"products"`
	Skipped   []string `json:"skipped" yaml:"skipped"`
}
