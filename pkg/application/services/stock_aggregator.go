package services

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/shopfloor/pkg/domain/catalog"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/domain/repositories"
)

// StockLevels is every stock record read inside one transaction. Catalog
// entries without a stored record count as zero stock.
type StockLevels struct {
	catalog   *catalog.Catalog
	Printed   map[entities.ItemID]*entities.PrintedComponent
	Purchased map[entities.ItemID]*entities.PurchasedComponent
	Parts     map[entities.ItemID]*entities.Part
	Products  map[entities.ItemID]*entities.Product
}

// StockAggregator derives the available figures used by the calculators
type StockAggregator struct {
	catalog *catalog.Catalog
}

// NewStockAggregator creates an aggregator over a catalog
func NewStockAggregator(c *catalog.Catalog) *StockAggregator {
	return &StockAggregator{catalog: c}
}

// Snapshot reads all four stock tables through tx
func (a *StockAggregator) Snapshot(tx repositories.InventoryTx) (*StockLevels, error) {
	levels := &StockLevels{
		catalog:   a.catalog,
		Printed:   make(map[entities.ItemID]*entities.PrintedComponent),
		Purchased: make(map[entities.ItemID]*entities.PurchasedComponent),
		Parts:     make(map[entities.ItemID]*entities.Part),
		Products:  make(map[entities.ItemID]*entities.Product),
	}

	printed, err := tx.ListPrintedComponents()
	if err != nil {
		return nil, err
	}
	for _, c := range printed {
		levels.Printed[c.ID] = c
	}

	purchased, err := tx.ListPurchasedComponents()
	if err != nil {
		return nil, err
	}
	for _, c := range purchased {
		levels.Purchased[c.ID] = c
	}

	parts, err := tx.ListParts()
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		levels.Parts[p.ID] = p
	}

	products, err := tx.ListProducts()
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		levels.Products[p.ID] = p
	}
	return levels, nil
}

// Completed returns the post-processed count of a printed component
func (s *StockLevels) Completed(id entities.ItemID) entities.Quantity {
	if c, ok := s.Printed[id]; ok {
		return c.PostProcessingCompleted
	}
	return 0
}

// Pending returns the count still waiting for post-processing
func (s *StockLevels) Pending(id entities.ItemID) entities.Quantity {
	if c, ok := s.Printed[id]; ok {
		return c.PostProcessingPending
	}
	return 0
}

// OnHand returns completed plus pending for a printed component
func (s *StockLevels) OnHand(id entities.ItemID) entities.Quantity {
	return s.Completed(id) + s.Pending(id)
}

// PurchasedQuantity returns the stock of a purchased component
func (s *StockLevels) PurchasedQuantity(id entities.ItemID) decimal.Decimal {
	if c, ok := s.Purchased[id]; ok {
		return c.Quantity
	}
	return decimal.Zero
}

// Assembled returns the raw assembled count of a part. This is the figure
// that gates product assembly.
func (s *StockLevels) Assembled(id entities.ItemID) entities.Quantity {
	if p, ok := s.Parts[id]; ok {
		return p.Assembled
	}
	return 0
}

// PartAvailable is assembled minus the quantity committed to product recipes,
// never below zero. It is a display figure only.
func (s *StockLevels) PartAvailable(id entities.ItemID) entities.Quantity {
	committed := s.catalog.CommittedToProducts(id)
	available := decimal.NewFromInt(int64(s.Assembled(id))).Sub(committed)
	if !available.IsPositive() {
		return 0
	}
	return entities.Quantity(available.Floor().IntPart())
}

// ProductQuantity returns the finished count of a product
func (s *StockLevels) ProductQuantity(id entities.ItemID) entities.Quantity {
	if p, ok := s.Products[id]; ok {
		return p.Quantity
	}
	return 0
}

// AvailableUsable returns the usable stock of any catalog entry: completed
// for printed components, quantity for purchased components and products,
// and the derived available figure for parts.
func (s *StockLevels) AvailableUsable(id entities.ItemID) (decimal.Decimal, error) {
	ref, ok := s.catalog.Lookup(id)
	if !ok {
		return decimal.Zero, &entities.NotFoundError{Kind: "item", ID: string(id)}
	}
	switch ref.Kind {
	case entities.KindPrinted:
		return decimal.NewFromInt(int64(s.Completed(id))), nil
	case entities.KindPurchased:
		return s.PurchasedQuantity(id), nil
	case entities.KindPart:
		return decimal.NewFromInt(int64(s.PartAvailable(id))), nil
	default:
		return decimal.NewFromInt(int64(s.ProductQuantity(id))), nil
	}
}

// gating returns the stock an assembly of the given input kind may draw on
func (s *StockLevels) gating(id entities.ItemID, kind entities.ItemKind) decimal.Decimal {
	switch kind {
	case entities.KindPrinted:
		return decimal.NewFromInt(int64(s.Completed(id)))
	case entities.KindPurchased:
		return s.PurchasedQuantity(id)
	case entities.KindPart:
		return decimal.NewFromInt(int64(s.Assembled(id)))
	default:
		return decimal.Zero
	}
}
