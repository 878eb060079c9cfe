package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vsinha/shopfloor/pkg/domain/catalog"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/domain/repositories"
	"github.com/vsinha/shopfloor/pkg/infrastructure/events"
)

// AssemblyEngine moves stock between stages. Every operation validates and
// mutates inside a single store transaction, so a failure leaves no partial
// change behind.
type AssemblyEngine struct {
	store      repositories.InventoryStore
	catalog    *catalog.Catalog
	aggregator *StockAggregator
	capacity   *CapacityCalculator
	publisher  events.Publisher
	logger     *logrus.Logger
	now        func() time.Time
}

// NewAssemblyEngine creates an engine. A nil publisher drops events.
func NewAssemblyEngine(
	store repositories.InventoryStore,
	c *catalog.Catalog,
	capacity *CapacityCalculator,
	publisher events.Publisher,
	logger *logrus.Logger,
) *AssemblyEngine {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AssemblyEngine{
		store:      store,
		catalog:    c,
		aggregator: NewStockAggregator(c),
		capacity:   capacity,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// RecordPrint adds freshly printed units. They go to pending when the
// component needs post-processing and straight to completed otherwise.
func (e *AssemblyEngine) RecordPrint(ctx context.Context, id entities.ItemID, count int64) (*entities.PrintedComponent, error) {
	if err := validateCount(count); err != nil {
		return nil, err
	}
	if err := e.expectKind(id, entities.KindPrinted); err != nil {
		return nil, err
	}

	var comp *entities.PrintedComponent
	err := e.store.Update(ctx, func(tx repositories.InventoryTx) error {
		var err error
		comp, err = tx.GetPrintedComponent(id)
		if err != nil {
			return err
		}
		if comp.RequiresPostProcessing {
			comp.PostProcessingPending += entities.Quantity(count)
		} else {
			comp.PostProcessingCompleted += entities.Quantity(count)
		}
		comp.Quantity += entities.Quantity(count)
		comp.UpdatedAt = e.now()
		return tx.PutPrintedComponent(comp)
	})
	if err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"component": comp.Name,
		"count":     count,
		"pending":   comp.PostProcessingPending,
		"completed": comp.PostProcessingCompleted,
	}).Info("print recorded")
	e.publish(events.PrintRecordedEvent, id, events.StockChanged{
		Count:   count,
		Printed: []*entities.PrintedComponent{comp},
	})
	return comp, nil
}

// CompletePostProcessing moves count units from pending to completed. The
// check and the move happen in the same transaction.
func (e *AssemblyEngine) CompletePostProcessing(ctx context.Context, id entities.ItemID, count int64) (*entities.PrintedComponent, error) {
	if err := validateCount(count); err != nil {
		return nil, err
	}
	if err := e.expectKind(id, entities.KindPrinted); err != nil {
		return nil, err
	}

	var comp *entities.PrintedComponent
	err := e.store.Update(ctx, func(tx repositories.InventoryTx) error {
		var err error
		comp, err = tx.GetPrintedComponent(id)
		if err != nil {
			return err
		}
		if entities.Quantity(count) > comp.PostProcessingPending {
			return &entities.InsufficientStockError{
				Item:      comp.Name,
				Stage:     "post-processing pending",
				Requested: decimal.NewFromInt(count),
				Available: entities.QuantityFromInt(comp.PostProcessingPending),
			}
		}
		comp.PostProcessingPending -= entities.Quantity(count)
		comp.PostProcessingCompleted += entities.Quantity(count)
		comp.UpdatedAt = e.now()
		return tx.PutPrintedComponent(comp)
	})
	if err != nil {
		e.logger.WithError(err).WithField("component", id).Warn("post-processing rejected")
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"component": comp.Name,
		"count":     count,
		"pending":   comp.PostProcessingPending,
		"completed": comp.PostProcessingCompleted,
	}).Info("post-processing completed")
	e.publish(events.PostProcessingCompletedEvent, id, events.StockChanged{
		Count:   count,
		Printed: []*entities.PrintedComponent{comp},
	})
	return comp, nil
}

// consume takes completed units of a printed component. Pending units are
// never consumable.
func consume(comp *entities.PrintedComponent, count entities.Quantity) error {
	if count > comp.PostProcessingCompleted {
		return &entities.InsufficientStockError{
			Item:      comp.Name,
			Stage:     "completed",
			Requested: entities.QuantityFromInt(count),
			Available: entities.QuantityFromInt(comp.PostProcessingCompleted),
		}
	}
	comp.PostProcessingCompleted -= count
	return nil
}

// inputs holds the records an assembly reads in its check phase so the
// commit phase mutates exactly what was checked.
type inputs struct {
	printed   map[entities.ItemID]*entities.PrintedComponent
	purchased map[entities.ItemID]*entities.PurchasedComponent
	parts     map[entities.ItemID]*entities.Part
}

func newInputs() *inputs {
	return &inputs{
		printed:   make(map[entities.ItemID]*entities.PrintedComponent),
		purchased: make(map[entities.ItemID]*entities.PurchasedComponent),
		parts:     make(map[entities.ItemID]*entities.Part),
	}
}

// load reads one input record and returns its name and gating stock
func (in *inputs) load(tx repositories.InventoryTx, id entities.ItemID, kind entities.ItemKind) (string, decimal.Decimal, error) {
	switch kind {
	case entities.KindPrinted:
		c, err := tx.GetPrintedComponent(id)
		if err != nil {
			return "", decimal.Zero, err
		}
		in.printed[id] = c
		return c.Name, entities.QuantityFromInt(c.PostProcessingCompleted), nil
	case entities.KindPurchased:
		c, err := tx.GetPurchasedComponent(id)
		if err != nil {
			return "", decimal.Zero, err
		}
		in.purchased[id] = c
		return c.Name, c.Quantity, nil
	case entities.KindPart:
		p, err := tx.GetPart(id)
		if err != nil {
			return "", decimal.Zero, err
		}
		in.parts[id] = p
		return p.Name, entities.QuantityFromInt(p.Assembled), nil
	default:
		return "", decimal.Zero, fmt.Errorf("unsupported input type %s for %s", kind, id)
	}
}

// take removes required units of one input from the loaded records
func (in *inputs) take(id entities.ItemID, kind entities.ItemKind, required decimal.Decimal, now time.Time) error {
	switch kind {
	case entities.KindPrinted:
		c := in.printed[id]
		if err := consume(c, entities.Quantity(required.IntPart())); err != nil {
			return err
		}
		c.UpdatedAt = now
	case entities.KindPurchased:
		c := in.purchased[id]
		c.Quantity = c.Quantity.Sub(required)
		c.UpdatedAt = now
	case entities.KindPart:
		p := in.parts[id]
		p.Assembled -= entities.Quantity(required.IntPart())
		p.UpdatedAt = now
	}
	return nil
}

func (in *inputs) save(tx repositories.InventoryTx) error {
	for _, c := range in.printed {
		if err := tx.PutPrintedComponent(c); err != nil {
			return err
		}
	}
	for _, c := range in.purchased {
		if err := tx.PutPurchasedComponent(c); err != nil {
			return err
		}
	}
	for _, p := range in.parts {
		if err := tx.PutPart(p); err != nil {
			return err
		}
	}
	return nil
}

func (in *inputs) changed(count int64) events.StockChanged {
	change := events.StockChanged{Count: count}
	for _, c := range in.printed {
		change.Printed = append(change.Printed, c)
	}
	for _, c := range in.purchased {
		change.Purchased = append(change.Purchased, c)
	}
	for _, p := range in.parts {
		change.Parts = append(change.Parts, p)
	}
	return change
}

// AssemblePart builds count units of a part. Every recipe row is checked
// before any stock is touched; the first short row is reported.
func (e *AssemblyEngine) AssemblePart(ctx context.Context, id entities.ItemID, count int64) (*entities.Part, error) {
	if err := validateCount(count); err != nil {
		return nil, err
	}
	if err := e.expectKind(id, entities.KindPart); err != nil {
		return nil, err
	}

	var part *entities.Part
	used := newInputs()
	err := e.store.Update(ctx, func(tx repositories.InventoryTx) error {
		var err error
		part, err = tx.GetPart(id)
		if err != nil {
			return err
		}

		rows := e.catalog.PartRecipe(id)
		n := decimal.NewFromInt(count)
		for _, row := range rows {
			name, available, err := used.load(tx, row.ComponentID, row.ComponentKind)
			if err != nil {
				return err
			}
			required := row.QuantityRequired.Mul(n)
			if available.LessThan(required) {
				return &entities.InsufficientComponentsError{
					Target:    part.Name,
					Input:     name,
					InputKind: row.ComponentKind,
					Required:  required,
					Available: available,
				}
			}
		}

		now := e.now()
		for _, row := range rows {
			if err := used.take(row.ComponentID, row.ComponentKind, row.QuantityRequired.Mul(n), now); err != nil {
				return err
			}
		}
		if err := used.save(tx); err != nil {
			return err
		}
		part.Assembled += entities.Quantity(count)
		part.UpdatedAt = now
		return tx.PutPart(part)
	})
	if err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{"part": id, "count": count}).Warn("part assembly rejected")
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"part":      part.Name,
		"count":     count,
		"assembled": part.Assembled,
	}).Info("part assembled")
	change := used.changed(count)
	change.Parts = append(change.Parts, part)
	e.publish(events.PartAssembledEvent, id, change)
	return part, nil
}

// AssembleProduct builds count units of a product from assembled parts and
// directly consumed components. The capacity calculator is re-run inside the
// transaction, so a stale caller-side check cannot over-consume.
func (e *AssemblyEngine) AssembleProduct(ctx context.Context, id entities.ItemID, count int64) (*entities.Product, error) {
	if err := validateCount(count); err != nil {
		return nil, err
	}
	if err := e.expectKind(id, entities.KindProduct); err != nil {
		return nil, err
	}

	var product *entities.Product
	used := newInputs()
	err := e.store.Update(ctx, func(tx repositories.InventoryTx) error {
		var err error
		product, err = tx.GetProduct(id)
		if err != nil {
			return err
		}

		levels, err := e.aggregator.Snapshot(tx)
		if err != nil {
			return err
		}
		buildable, err := e.capacity.MaxBuildable(levels, id)
		if err != nil {
			return err
		}

		rows := e.catalog.ProductRecipe(id)
		n := decimal.NewFromInt(count)
		for _, row := range rows {
			name, available, err := used.load(tx, row.InputID, row.InputKind)
			if err != nil {
				return err
			}
			required := row.QuantityRequired.Mul(n)
			if available.LessThan(required) {
				return &entities.InsufficientComponentsError{
					Target:    product.Name,
					Input:     name,
					InputKind: row.InputKind,
					Required:  required,
					Available: available,
				}
			}
		}
		if count > buildable {
			return &entities.InsufficientComponentsError{
				Target:    product.Name,
				Input:     "capacity",
				InputKind: entities.KindProduct,
				Required:  n,
				Available: decimal.NewFromInt(buildable),
			}
		}

		now := e.now()
		for _, row := range rows {
			if err := used.take(row.InputID, row.InputKind, row.QuantityRequired.Mul(n), now); err != nil {
				return err
			}
		}
		if err := used.save(tx); err != nil {
			return err
		}
		product.Quantity += entities.Quantity(count)
		product.UpdatedAt = now
		return tx.PutProduct(product)
	})
	if err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{"product": id, "count": count}).Warn("product assembly rejected")
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"product":  product.Name,
		"count":    count,
		"quantity": product.Quantity,
	}).Info("product assembled")
	change := used.changed(count)
	change.Products = []*entities.Product{product}
	e.publish(events.ProductAssembledEvent, id, change)
	return product, nil
}

func (e *AssemblyEngine) expectKind(id entities.ItemID, kind entities.ItemKind) error {
	ref, ok := e.catalog.Lookup(id)
	if !ok || ref.Kind != kind {
		return &entities.NotFoundError{Kind: kind.String(), ID: string(id)}
	}
	return nil
}

func (e *AssemblyEngine) publish(eventType string, id entities.ItemID, change events.StockChanged) {
	e.publisher.Publish(events.NewEvent(eventType, string(id), change))
}

func validateCount(count int64) error {
	if count <= 0 {
		return &entities.InvalidQuantityError{Field: "count", Value: strconv.FormatInt(count, 10)}
	}
	return nil
}
