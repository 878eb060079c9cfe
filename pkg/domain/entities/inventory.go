package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PrintedComponent is a 3D-printed component. Freshly printed units wait in
// PostProcessingPending until they are finished; only completed units can be
// consumed by assembly.
type PrintedComponent struct {
	ID                      ItemID    `json:"id"`
	Name                    string    `json:"name"`
	Quantity                Quantity  `json:"quantity"`
	PostProcessingCompleted Quantity  `json:"postProcessingCompleted"`
	PostProcessingPending   Quantity  `json:"postProcessingPending"`
	BatchSize               int       `json:"batchSize"`
	PrintTimeMinutes        int       `json:"printTimeMinutes"`
	RequiresPostProcessing  bool      `json:"requiresPostProcessing"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

// NewPrintedComponent creates a validated PrintedComponent with no stock
func NewPrintedComponent(id ItemID, name string, batchSize, printTimeMinutes int, requiresPostProcessing bool) (*PrintedComponent, error) {
	if id == "" {
		return nil, fmt.Errorf("component id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("component name cannot be empty")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	if printTimeMinutes < 0 {
		return nil, fmt.Errorf("print time cannot be negative, got %d", printTimeMinutes)
	}

	return &PrintedComponent{
		ID:                     id,
		Name:                   name,
		BatchSize:              batchSize,
		PrintTimeMinutes:       printTimeMinutes,
		RequiresPostProcessing: requiresPostProcessing,
	}, nil
}

// Usable returns the stock that assembly may consume
func (c *PrintedComponent) Usable() Quantity {
	return c.PostProcessingCompleted
}

// OnHand returns completed plus pending stock
func (c *PrintedComponent) OnHand() Quantity {
	return c.PostProcessingCompleted + c.PostProcessingPending
}

// LowStockCompleted is the completed count under which a printed component is
// reported as running low.
const LowStockCompleted Quantity = 10

// IsLow reports whether fewer than LowStockCompleted units are ready
func (c *PrintedComponent) IsLow() bool {
	return c.PostProcessingCompleted < LowStockCompleted
}

// PurchasedComponent is bought stock such as screws, packaging or filament
type PurchasedComponent struct {
	ID                ItemID           `json:"id"`
	Name              string           `json:"name"`
	Quantity          decimal.Decimal  `json:"quantity"`
	Unit              string           `json:"unit"`
	LowStockThreshold *decimal.Decimal `json:"lowStockThreshold,omitempty"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// NewPurchasedComponent creates a validated PurchasedComponent with no stock
func NewPurchasedComponent(id ItemID, name, unit string, lowStockThreshold *decimal.Decimal) (*PurchasedComponent, error) {
	if id == "" {
		return nil, fmt.Errorf("component id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("component name cannot be empty")
	}
	if unit == "" {
		return nil, fmt.Errorf("unit cannot be empty")
	}
	if lowStockThreshold != nil && lowStockThreshold.IsNegative() {
		return nil, fmt.Errorf("low stock threshold cannot be negative, got %s", lowStockThreshold)
	}

	return &PurchasedComponent{
		ID:                id,
		Name:              name,
		Quantity:          decimal.Zero,
		Unit:              unit,
		LowStockThreshold: lowStockThreshold,
	}, nil
}

// IsLow reports whether stock has fallen below the configured threshold.
// Components without a threshold are never low.
func (c *PurchasedComponent) IsLow() bool {
	return c.LowStockThreshold != nil && c.Quantity.LessThan(*c.LowStockThreshold)
}

// Part is an assembled intermediate. Its available quantity is derived by the
// stock aggregator and never stored.
type Part struct {
	ID        ItemID    `json:"id"`
	Name      string    `json:"name"`
	Assembled Quantity  `json:"assembled"`
	Pending   Quantity  `json:"pending"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewPart creates a validated Part with no stock
func NewPart(id ItemID, name string) (*Part, error) {
	if id == "" {
		return nil, fmt.Errorf("part id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("part name cannot be empty")
	}
	return &Part{ID: id, Name: name}, nil
}

// Product is a finished, ready-to-ship unit
type Product struct {
	ID        ItemID    `json:"id"`
	Name      string    `json:"name"`
	Quantity  Quantity  `json:"quantity"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProduct creates a validated Product with no stock
func NewProduct(id ItemID, name string) (*Product, error) {
	if id == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("product name cannot be empty")
	}
	return &Product{ID: id, Name: name}, nil
}
