package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vsinha/shopfloor/pkg/application/dto"
	"github.com/vsinha/shopfloor/pkg/domain/catalog"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/domain/repositories"
	"github.com/vsinha/shopfloor/pkg/infrastructure/backup"
	"github.com/vsinha/shopfloor/pkg/infrastructure/events"
)

// Target buffer bounds
const (
	MinTargetProductsBuffer = 1
	MaxTargetProductsBuffer = 50
)

// InventoryService is the entry point for CLI and HTTP callers. It resolves
// names, runs queries against a consistent snapshot, and delegates state
// changes to the AssemblyEngine.
type InventoryService struct {
	store      repositories.InventoryStore
	catalog    *catalog.Catalog
	aggregator *StockAggregator
	capacity   *CapacityCalculator
	planner    *ShortagePlanner
	tasks      *TaskPlanner
	selector   *SmartPrioritySelector
	engine     *AssemblyEngine
	publisher  events.Publisher
	logger     *logrus.Logger
	now        func() time.Time
}

// NewInventoryService wires every calculator over one store and catalog
func NewInventoryService(store repositories.InventoryStore, c *catalog.Catalog, publisher events.Publisher, logger *logrus.Logger) *InventoryService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	capacity := NewCapacityCalculator(c)
	planner := NewShortagePlanner(c)
	tasks := NewTaskPlanner(c, capacity)
	return &InventoryService{
		store:      store,
		catalog:    c,
		aggregator: NewStockAggregator(c),
		capacity:   capacity,
		planner:    planner,
		tasks:      tasks,
		selector:   NewSmartPrioritySelector(c, capacity, planner, tasks),
		engine:     NewAssemblyEngine(store, c, capacity, publisher, logger),
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// Catalog returns the catalog the service was built with
func (s *InventoryService) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *InventoryService) resolve(nameOrID string, kind entities.ItemKind) (entities.ItemID, error) {
	ref, err := s.catalog.Resolve(nameOrID)
	if err != nil || ref.Kind != kind {
		return "", &entities.NotFoundError{Kind: kind.String(), ID: nameOrID}
	}
	return ref.ID, nil
}

func (s *InventoryService) snapshot(ctx context.Context, fn func(levels *StockLevels, tx repositories.InventoryTx) error) error {
	return s.store.View(ctx, func(tx repositories.InventoryTx) error {
		levels, err := s.aggregator.Snapshot(tx)
		if err != nil {
			return err
		}
		return fn(levels, tx)
	})
}

// ListComponents returns every printed component in catalog order
func (s *InventoryService) ListComponents(ctx context.Context) ([]dto.ComponentView, error) {
	out := []dto.ComponentView{}
	err := s.snapshot(ctx, func(levels *StockLevels, _ repositories.InventoryTx) error {
		for _, ref := range s.catalog.Items(entities.KindPrinted) {
			if comp := levels.Printed[ref.ID]; comp != nil {
				out = append(out, componentView(s.catalog, comp))
			}
		}
		return nil
	})
	return out, err
}

// ListPurchased returns every purchased component in catalog order
func (s *InventoryService) ListPurchased(ctx context.Context) ([]dto.PurchasedView, error) {
	out := []dto.PurchasedView{}
	err := s.snapshot(ctx, func(levels *StockLevels, _ repositories.InventoryTx) error {
		for _, ref := range s.catalog.Items(entities.KindPurchased) {
			if comp := levels.Purchased[ref.ID]; comp != nil {
				out = append(out, purchasedView(s.catalog, comp))
			}
		}
		return nil
	})
	return out, err
}

// ListParts returns every part with its derived available figure and capacity
func (s *InventoryService) ListParts(ctx context.Context) ([]dto.PartView, error) {
	out := []dto.PartView{}
	err := s.snapshot(ctx, func(levels *StockLevels, _ repositories.InventoryTx) error {
		for _, ref := range s.catalog.Items(entities.KindPart) {
			part := levels.Parts[ref.ID]
			if part == nil {
				continue
			}
			capacity, err := s.capacity.MaxBuildable(levels, ref.ID)
			if err != nil {
				return err
			}
			out = append(out, dto.PartView{
				ID:        part.ID,
				Name:      part.Name,
				Assembled: part.Assembled,
				Pending:   part.Pending,
				Available: levels.PartAvailable(ref.ID),
				Committed: s.catalog.CommittedToProducts(ref.ID),
				Capacity:  capacity,
			})
		}
		return nil
	})
	return out, err
}

// ListProducts returns every product with its capacity
func (s *InventoryService) ListProducts(ctx context.Context) ([]dto.ProductView, error) {
	out := []dto.ProductView{}
	err := s.snapshot(ctx, func(levels *StockLevels, _ repositories.InventoryTx) error {
		var err error
		out, err = s.productViews(levels)
		return err
	})
	return out, err
}

func (s *InventoryService) productViews(levels *StockLevels) ([]dto.ProductView, error) {
	out := []dto.ProductView{}
	for _, ref := range s.catalog.Items(entities.KindProduct) {
		capacity, err := s.capacity.MaxBuildable(levels, ref.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.ProductView{
			ID:       ref.ID,
			Name:     ref.Name,
			Quantity: levels.ProductQuantity(ref.ID),
			Capacity: capacity,
		})
	}
	return out, nil
}

// ListRecipes returns the materialized recipe rows as stored
func (s *InventoryService) ListRecipes(ctx context.Context) ([]dto.RecipeRow, error) {
	out := []dto.RecipeRow{}
	name := func(id entities.ItemID) string {
		if ref, ok := s.catalog.Lookup(id); ok {
			return ref.Name
		}
		return string(id)
	}
	err := s.store.View(ctx, func(tx repositories.InventoryTx) error {
		parts, err := tx.ListPartRecipes()
		if err != nil {
			return err
		}
		for _, row := range parts {
			out = append(out, dto.RecipeRow{
				OutputID: row.PartID, OutputName: name(row.PartID),
				InputID: row.ComponentID, InputName: name(row.ComponentID),
				InputKind: row.ComponentKind.String(), Quantity: row.QuantityRequired,
			})
		}
		products, err := tx.ListProductRecipes()
		if err != nil {
			return err
		}
		for _, row := range products {
			out = append(out, dto.RecipeRow{
				OutputID: row.ProductID, OutputName: name(row.ProductID),
				InputID: row.InputID, InputName: name(row.InputID),
				InputKind: row.InputKind.String(), Quantity: row.QuantityRequired,
			})
		}
		return nil
	})
	return out, err
}

// UpdateComponentStock applies a corrective edit to a printed component,
// bypassing the print and post-processing transitions.
func (s *InventoryService) UpdateComponentStock(ctx context.Context, nameOrID string, update dto.ComponentUpdate) (*dto.ComponentView, error) {
	id, err := s.resolve(nameOrID, entities.KindPrinted)
	if err != nil {
		return nil, err
	}
	for field, q := range map[string]*entities.Quantity{
		"quantity":                update.Quantity,
		"postProcessingCompleted": update.Completed,
		"postProcessingPending":   update.Pending,
	} {
		if q != nil && *q < 0 {
			return nil, &entities.InvalidQuantityError{Field: field, Value: strconv.FormatInt(int64(*q), 10)}
		}
	}
	if update.BatchSize != nil && *update.BatchSize <= 0 {
		return nil, &entities.InvalidQuantityError{Field: "batchSize", Value: strconv.Itoa(*update.BatchSize)}
	}
	if update.PrintTimeMinutes != nil && *update.PrintTimeMinutes < 0 {
		return nil, &entities.InvalidQuantityError{Field: "printTimeMinutes", Value: strconv.Itoa(*update.PrintTimeMinutes)}
	}

	var comp *entities.PrintedComponent
	err = s.store.Update(ctx, func(tx repositories.InventoryTx) error {
		var err error
		comp, err = tx.GetPrintedComponent(id)
		if err != nil {
			return err
		}
		applyComponentUpdate(comp, update)
		comp.UpdatedAt = s.now()
		return tx.PutPrintedComponent(comp)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"component": comp.Name,
		"completed": comp.PostProcessingCompleted,
		"pending":   comp.PostProcessingPending,
	}).Info("component stock updated")
	s.publisher.Publish(events.NewEvent(events.ComponentAdjustedEvent, string(id), events.StockChanged{
		Printed: []*entities.PrintedComponent{comp},
	}))
	view := componentView(s.catalog, comp)
	return &view, nil
}

func applyComponentUpdate(comp *entities.PrintedComponent, update dto.ComponentUpdate) {
	if update.Quantity != nil {
		comp.Quantity = *update.Quantity
	}
	if update.Completed != nil {
		comp.PostProcessingCompleted = *update.Completed
	}
	if update.Pending != nil {
		comp.PostProcessingPending = *update.Pending
	}
	if update.BatchSize != nil {
		comp.BatchSize = *update.BatchSize
	}
	if update.PrintTimeMinutes != nil {
		comp.PrintTimeMinutes = *update.PrintTimeMinutes
	}
	if update.RequiresPostProcessing != nil {
		comp.RequiresPostProcessing = *update.RequiresPostProcessing
	}
}

// UpdatePurchasedStock sets the quantity of a purchased component and,
// when given, its low-stock threshold.
func (s *InventoryService) UpdatePurchasedStock(ctx context.Context, nameOrID string, quantity decimal.Decimal, threshold *decimal.Decimal) (*dto.PurchasedView, error) {
	id, err := s.resolve(nameOrID, entities.KindPurchased)
	if err != nil {
		return nil, err
	}
	if quantity.IsNegative() {
		return nil, &entities.InvalidQuantityError{Field: "quantity", Value: quantity.String()}
	}
	if threshold != nil && threshold.IsNegative() {
		return nil, &entities.InvalidQuantityError{Field: "lowStockThreshold", Value: threshold.String()}
	}

	var comp *entities.PurchasedComponent
	err = s.store.Update(ctx, func(tx repositories.InventoryTx) error {
		var err error
		comp, err = tx.GetPurchasedComponent(id)
		if err != nil {
			return err
		}
		comp.Quantity = quantity
		if threshold != nil {
			t := *threshold
			comp.LowStockThreshold = &t
		}
		comp.UpdatedAt = s.now()
		return tx.PutPurchasedComponent(comp)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"component": comp.Name,
		"quantity":  comp.Quantity.String(),
	}).Info("purchased stock updated")
	s.publisher.Publish(events.NewEvent(events.PurchasedAdjustedEvent, string(id), events.StockChanged{
		Purchased: []*entities.PurchasedComponent{comp},
	}))
	view := purchasedView(s.catalog, comp)
	return &view, nil
}

// RecordPrint records count freshly printed units of a component
func (s *InventoryService) RecordPrint(ctx context.Context, nameOrID string, count int64) (*dto.ComponentView, error) {
	id, err := s.resolve(nameOrID, entities.KindPrinted)
	if err != nil {
		return nil, err
	}
	comp, err := s.engine.RecordPrint(ctx, id, count)
	if err != nil {
		return nil, err
	}
	view := componentView(s.catalog, comp)
	return &view, nil
}

// CompletePostProcessing finishes count pending units of a component
func (s *InventoryService) CompletePostProcessing(ctx context.Context, nameOrID string, count int64) (*dto.ComponentView, error) {
	id, err := s.resolve(nameOrID, entities.KindPrinted)
	if err != nil {
		return nil, err
	}
	comp, err := s.engine.CompletePostProcessing(ctx, id, count)
	if err != nil {
		return nil, err
	}
	view := componentView(s.catalog, comp)
	return &view, nil
}

// AssemblePart assembles count units of a part
func (s *InventoryService) AssemblePart(ctx context.Context, nameOrID string, count int64) (*dto.PartView, error) {
	id, err := s.resolve(nameOrID, entities.KindPart)
	if err != nil {
		return nil, err
	}
	part, err := s.engine.AssemblePart(ctx, id, count)
	if err != nil {
		return nil, err
	}
	return s.partView(ctx, part)
}

func (s *InventoryService) partView(ctx context.Context, part *entities.Part) (*dto.PartView, error) {
	view := &dto.PartView{
		ID:        part.ID,
		Name:      part.Name,
		Assembled: part.Assembled,
		Pending:   part.Pending,
		Committed: s.catalog.CommittedToProducts(part.ID),
	}
	err := s.snapshot(ctx, func(levels *StockLevels, _ repositories.InventoryTx) error {
		view.Available = levels.PartAvailable(part.ID)
		capacity, err := s.capacity.MaxBuildable(levels, part.ID)
		view.Capacity = capacity
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AssembleProduct assembles count units of a product. Callers should check
// GetCapacity first; the engine re-validates regardless.
func (s *InventoryService) AssembleProduct(ctx context.Context, nameOrID string, count int64) (*dto.ProductView, error) {
	id, err := s.resolve(nameOrID, entities.KindProduct)
	if err != nil {
		return nil, err
	}
	product, err := s.engine.AssembleProduct(ctx, id, count)
	if err != nil {
		return nil, err
	}
	view := &dto.ProductView{ID: product.ID, Name: product.Name, Quantity: product.Quantity}
	err = s.snapshot(ctx, func(levels *StockLevels, _ repositories.InventoryTx) error {
		capacity, err := s.capacity.MaxBuildable(levels, id)
		view.Capacity = capacity
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetCapacity reports the capacity of a part or product and its bottlenecks
func (s *InventoryService) GetCapacity(ctx context.Context, name string) (*dto.CapacityResult, error) {
	ref, err := s.catalog.Resolve(name)
	if err != nil {
		return nil, err
	}
	var result *dto.CapacityResult
	err = s.snapshot(ctx, func(levels *StockLevels, _ repositories.InventoryTx) error {
		var err error
		result, err = s.capacity.Capacity(levels, ref.ID)
		return err
	})
	return result, err
}

// GetShortagePlan computes the shortage plan for the given buffer
func (s *InventoryService) GetShortagePlan(ctx context.Context, buffer int) (*dto.ShortagePlan, error) {
	if err := validateBuffer(buffer); err != nil {
		return nil, err
	}
	var plan *dto.ShortagePlan
	err := s.snapshot(ctx, func(levels *StockLevels, _ repositories.InventoryTx) error {
		plan = s.planner.Plan(levels, buffer)
		return nil
	})
	return plan, err
}

// GetSmartPriorities returns at most two recommended next actions for the
// stored target buffer.
func (s *InventoryService) GetSmartPriorities(ctx context.Context) ([]dto.Recommendation, error) {
	recs := []dto.Recommendation{}
	err := s.snapshot(ctx, func(levels *StockLevels, tx repositories.InventoryTx) error {
		buffer, err := readBuffer(tx)
		if err != nil {
			return err
		}
		recs = append(recs, s.selector.Select(levels, buffer)...)
		return nil
	})
	return recs, err
}

// GetBatchPriorities returns the print-batch list for the stored buffer
func (s *InventoryService) GetBatchPriorities(ctx context.Context) ([]dto.BatchPriorityLine, error) {
	lines := []dto.BatchPriorityLine{}
	err := s.snapshot(ctx, func(levels *StockLevels, tx repositories.InventoryTx) error {
		buffer, err := readBuffer(tx)
		if err != nil {
			return err
		}
		lines = append(lines, s.planner.BatchPriorities(levels, buffer)...)
		return nil
	})
	return lines, err
}

// GetPostProcessingTasks lists components waiting for post-processing
func (s *InventoryService) GetPostProcessingTasks(ctx context.Context) ([]dto.PostProcessingTask, error) {
	tasks := []dto.PostProcessingTask{}
	err := s.snapshot(ctx, func(levels *StockLevels, _ repositories.InventoryTx) error {
		tasks = append(tasks, s.tasks.PostProcessingTasks(levels)...)
		return nil
	})
	return tasks, err
}

// GetAssemblyTasks lists every part with its assembly readiness
func (s *InventoryService) GetAssemblyTasks(ctx context.Context) ([]dto.AssemblyTask, error) {
	tasks := []dto.AssemblyTask{}
	err := s.snapshot(ctx, func(levels *StockLevels, tx repositories.InventoryTx) error {
		buffer, err := readBuffer(tx)
		if err != nil {
			return err
		}
		tasks = append(tasks, s.tasks.AssemblyTasks(levels, buffer)...)
		return nil
	})
	return tasks, err
}

// GetLowStock lists everything currently flagged as low
func (s *InventoryService) GetLowStock(ctx context.Context) (*dto.LowStockReport, error) {
	var report *dto.LowStockReport
	err := s.snapshot(ctx, func(levels *StockLevels, _ repositories.InventoryTx) error {
		report = s.tasks.LowStock(levels)
		return nil
	})
	return report, err
}

// GetDashboard summarizes stock, capacity and outstanding print work
func (s *InventoryService) GetDashboard(ctx context.Context) (*dto.Dashboard, error) {
	dash := &dto.Dashboard{}
	err := s.snapshot(ctx, func(levels *StockLevels, tx repositories.InventoryTx) error {
		buffer, err := readBuffer(tx)
		if err != nil {
			return err
		}
		dash.TargetBuffer = buffer

		for _, comp := range levels.Printed {
			dash.TotalPrinted += comp.Quantity
			dash.Completed += comp.PostProcessingCompleted
			dash.Pending += comp.PostProcessingPending
		}
		if dash.Products, err = s.productViews(levels); err != nil {
			return err
		}
		low := s.tasks.LowStock(levels)
		dash.LowStockCount = len(low.Printed) + len(low.Purchased)

		plan := s.planner.Plan(levels, buffer)
		dash.ShortageCount = len(plan.Shortages())
		dash.TotalPrintTime = plan.TotalPrintTime
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dash, nil
}

// GetTargetProductsBuffer returns the stored planning horizon
func (s *InventoryService) GetTargetProductsBuffer(ctx context.Context) (int, error) {
	var buffer int
	err := s.store.View(ctx, func(tx repositories.InventoryTx) error {
		var err error
		buffer, err = readBuffer(tx)
		return err
	})
	return buffer, err
}

// SetTargetProductsBuffer stores a new planning horizon. Values outside
// [MinTargetProductsBuffer, MaxTargetProductsBuffer] are rejected.
func (s *InventoryService) SetTargetProductsBuffer(ctx context.Context, n int) error {
	if err := validateBuffer(n); err != nil {
		return err
	}
	err := s.store.Update(ctx, func(tx repositories.InventoryTx) error {
		return tx.PutSetting(repositories.SettingTargetProductsBuffer, strconv.Itoa(n))
	})
	if err != nil {
		return err
	}
	s.logger.WithField("buffer", n).Info("target products buffer updated")
	return nil
}

func validateBuffer(n int) error {
	if n < MinTargetProductsBuffer || n > MaxTargetProductsBuffer {
		return &entities.ValidationError{
			Detail: fmt.Sprintf("target products buffer must be between %d and %d", MinTargetProductsBuffer, MaxTargetProductsBuffer),
			Fields: map[string]string{"targetProductsBuffer": strconv.Itoa(n)},
		}
	}
	return nil
}

// readBuffer falls back to the default when the setting is absent or
// unreadable.
func readBuffer(tx repositories.InventoryTx) (int, error) {
	value, found, err := tx.GetSetting(repositories.SettingTargetProductsBuffer)
	if err != nil {
		return 0, err
	}
	if !found {
		return repositories.DefaultTargetProductsBuffer, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || validateBuffer(n) != nil {
		return repositories.DefaultTargetProductsBuffer, nil
	}
	return n, nil
}

// ResetAllData zeroes every stock field in one transaction. Recipes,
// settings and component attributes are kept.
func (s *InventoryService) ResetAllData(ctx context.Context) error {
	change := events.StockChanged{}
	err := s.store.Update(ctx, func(tx repositories.InventoryTx) error {
		now := s.now()
		printed, err := tx.ListPrintedComponents()
		if err != nil {
			return err
		}
		for _, c := range printed {
			c.Quantity, c.PostProcessingCompleted, c.PostProcessingPending = 0, 0, 0
			c.UpdatedAt = now
			if err := tx.PutPrintedComponent(c); err != nil {
				return err
			}
		}
		purchased, err := tx.ListPurchasedComponents()
		if err != nil {
			return err
		}
		for _, c := range purchased {
			c.Quantity = decimal.Zero
			c.UpdatedAt = now
			if err := tx.PutPurchasedComponent(c); err != nil {
				return err
			}
		}
		parts, err := tx.ListParts()
		if err != nil {
			return err
		}
		for _, p := range parts {
			p.Assembled, p.Pending = 0, 0
			p.UpdatedAt = now
			if err := tx.PutPart(p); err != nil {
				return err
			}
		}
		products, err := tx.ListProducts()
		if err != nil {
			return err
		}
		for _, p := range products {
			p.Quantity = 0
			p.UpdatedAt = now
			if err := tx.PutProduct(p); err != nil {
				return err
			}
		}
		change = events.StockChanged{Printed: printed, Purchased: purchased, Parts: parts, Products: products}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("all stock reset to zero")
	s.publisher.Publish(events.NewEvent(events.InventoryResetEvent, "inventory", change))
	return nil
}

// ExportBackup snapshots the four stock tables
func (s *InventoryService) ExportBackup(ctx context.Context) (*backup.Document, error) {
	var doc *backup.Document
	err := s.store.View(ctx, func(tx repositories.InventoryTx) error {
		printed, err := tx.ListPrintedComponents()
		if err != nil {
			return err
		}
		purchased, err := tx.ListPurchasedComponents()
		if err != nil {
			return err
		}
		parts, err := tx.ListParts()
		if err != nil {
			return err
		}
		products, err := tx.ListProducts()
		if err != nil {
			return err
		}
		doc = backup.New(printed, purchased, parts, products, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithField("exportId", doc.ExportID).Info("backup exported")
	return doc, nil
}

// ImportBackup overwrites stock fields record by record, keyed by id.
// Records whose id is not in the store are skipped and reported. Nothing is
// written if any record carries a negative count.
func (s *InventoryService) ImportBackup(ctx context.Context, doc *backup.Document) (*dto.ImportSummary, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	summary := &dto.ImportSummary{Skipped: []string{}}
	change := events.StockChanged{}
	err := s.store.Update(ctx, func(tx repositories.InventoryTx) error {
		now := s.now()
		for _, in := range doc.Components3D {
			comp, err := tx.GetPrintedComponent(in.ID)
			if isNotFound(err) {
				summary.Skipped = append(summary.Skipped, string(in.ID))
				continue
			} else if err != nil {
				return err
			}
			comp.Quantity = in.Quantity
			comp.PostProcessingCompleted = in.PostProcessingCompleted
			comp.PostProcessingPending = in.PostProcessingPending
			if in.BatchSize > 0 {
				comp.BatchSize = in.BatchSize
			}
			if in.PrintTimeMinutes > 0 {
				comp.PrintTimeMinutes = in.PrintTimeMinutes
			}
			comp.RequiresPostProcessing = in.RequiresPostProcessing
			comp.UpdatedAt = now
			if err := tx.PutPrintedComponent(comp); err != nil {
				return err
			}
			change.Printed = append(change.Printed, comp)
			summary.Printed++
		}
		for _, in := range doc.PurchasedComponents {
			comp, err := tx.GetPurchasedComponent(in.ID)
			if isNotFound(err) {
				summary.Skipped = append(summary.Skipped, string(in.ID))
				continue
			} else if err != nil {
				return err
			}
			comp.Quantity = in.Quantity
			if in.Unit != "" {
				comp.Unit = in.Unit
			}
			comp.LowStockThreshold = in.LowStockThreshold
			comp.UpdatedAt = now
			if err := tx.PutPurchasedComponent(comp); err != nil {
				return err
			}
			change.Purchased = append(change.Purchased, comp)
			summary.Purchased++
		}
		for _, in := range doc.Parts {
			part, err := tx.GetPart(in.ID)
			if isNotFound(err) {
				summary.Skipped = append(summary.Skipped, string(in.ID))
				continue
			} else if err != nil {
				return err
			}
			part.Assembled, part.Pending = in.Assembled, in.Pending
			part.UpdatedAt = now
			if err := tx.PutPart(part); err != nil {
				return err
			}
			change.Parts = append(change.Parts, part)
			summary.Parts++
		}
		for _, in := range doc.Products {
			product, err := tx.GetProduct(in.ID)
			if isNotFound(err) {
				summary.Skipped = append(summary.Skipped, string(in.ID))
				continue
			} else if err != nil {
				return err
			}
			product.Quantity = in.Quantity
			product.UpdatedAt = now
			if err := tx.PutProduct(product); err != nil {
				return err
			}
			change.Products = append(change.Products, product)
			summary.Products++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"exportId": doc.ExportID,
		"printed":  summary.Printed,
		"skipped":  len(summary.Skipped),
	}).Info("backup imported")
	s.publisher.Publish(events.NewEvent(events.BackupImportedEvent, doc.ExportID, change))
	return summary, nil
}

func validateDocument(doc *backup.Document) error {
	if err := doc.CheckRecords(); err != nil {
		return err
	}
	fields := map[string]string{}
	for _, c := range doc.Components3D {
		if c.Quantity < 0 || c.PostProcessingCompleted < 0 || c.PostProcessingPending < 0 {
			fields[string(c.ID)] = "negative count"
		}
	}
	for _, c := range doc.PurchasedComponents {
		if c.Quantity.IsNegative() {
			fields[string(c.ID)] = "negative quantity"
		}
	}
	for _, p := range doc.Parts {
		if p.Assembled < 0 || p.Pending < 0 {
			fields[string(p.ID)] = "negative count"
		}
	}
	for _, p := range doc.Products {
		if p.Quantity < 0 {
			fields[string(p.ID)] = "negative quantity"
		}
	}
	if len(fields) > 0 {
		return &entities.ValidationError{Detail: "backup contains invalid stock", Fields: fields}
	}
	return nil
}

// ImportStockLevels applies a stock count sheet as corrective edits in one
// transaction. An unknown name or a fractional count for a printed
// component aborts the whole import.
func (s *InventoryService) ImportStockLevels(ctx context.Context, rows []dto.StockLevelRow) (*dto.ImportSummary, error) {
	summary := &dto.ImportSummary{Skipped: []string{}}
	change := events.StockChanged{}
	err := s.store.Update(ctx, func(tx repositories.InventoryTx) error {
		now := s.now()
		for _, row := range rows {
			ref, err := s.catalog.Resolve(row.Name)
			if err != nil {
				return fmt.Errorf("row %d: %w", row.Line, err)
			}
			if row.Quantity.IsNegative() {
				return &entities.InvalidQuantityError{Field: row.Name, Value: row.Quantity.String()}
			}
			switch ref.Kind {
			case entities.KindPrinted:
				if !row.Quantity.IsInteger() {
					return &entities.InvalidQuantityError{Field: row.Name, Value: row.Quantity.String()}
				}
				comp, err := tx.GetPrintedComponent(ref.ID)
				if err != nil {
					return err
				}
				comp.PostProcessingCompleted = entities.Quantity(row.Quantity.IntPart())
				if row.Pending != nil {
					comp.PostProcessingPending = *row.Pending
				}
				if onHand := comp.OnHand(); comp.Quantity < onHand {
					comp.Quantity = onHand
				}
				comp.UpdatedAt = now
				if err := tx.PutPrintedComponent(comp); err != nil {
					return err
				}
				change.Printed = append(change.Printed, comp)
				summary.Printed++
			case entities.KindPurchased:
				comp, err := tx.GetPurchasedComponent(ref.ID)
				if err != nil {
					return err
				}
				comp.Quantity = row.Quantity
				comp.UpdatedAt = now
				if err := tx.PutPurchasedComponent(comp); err != nil {
					return err
				}
				change.Purchased = append(change.Purchased, comp)
				summary.Purchased++
			default:
				summary.Skipped = append(summary.Skipped, row.Name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"printed":   summary.Printed,
		"purchased": summary.Purchased,
	}).Info("stock levels imported")
	s.publisher.Publish(events.NewEvent(events.ComponentAdjustedEvent, "import", change))
	return summary, nil
}

func isNotFound(err error) bool {
	var notFound *entities.NotFoundError
	return errors.As(err, &notFound)
}
