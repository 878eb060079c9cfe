package services

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopfloor/pkg/application/dto"
	"github.com/vsinha/shopfloor/pkg/domain/catalog"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

// TaskPlanner builds the post-processing and assembly work lists
type TaskPlanner struct {
	catalog  *catalog.Catalog
	capacity *CapacityCalculator
}

// NewTaskPlanner creates a task planner sharing the given calculator
func NewTaskPlanner(c *catalog.Catalog, capacity *CapacityCalculator) *TaskPlanner {
	return &TaskPlanner{catalog: c, capacity: capacity}
}

// PostProcessingTasks lists every component with units waiting for
// post-processing. A task blocks production when a product it feeds cannot
// be built and the component is what is holding up a part or the product.
func (t *TaskPlanner) PostProcessingTasks(levels *StockLevels) []dto.PostProcessingTask {
	productCapacity := t.productCapacities(levels)

	var tasks []dto.PostProcessingTask
	for _, ref := range t.catalog.Items(entities.KindPrinted) {
		comp := levels.Printed[ref.ID]
		if comp == nil || !comp.RequiresPostProcessing || comp.PostProcessingPending <= 0 {
			continue
		}

		task := dto.PostProcessingTask{
			ComponentID:     ref.ID,
			ComponentName:   ref.Name,
			PendingQuantity: comp.PostProcessingPending,
			Completed:       comp.PostProcessingCompleted,
		}

		blocked, buildable := false, false
		for _, product := range t.catalog.ProductsFed(ref.ID) {
			if productCapacity[product] > 0 {
				buildable = true
			} else if t.holdsUp(levels, ref.ID, product) {
				blocked = true
			}
		}

		switch {
		case blocked:
			task.Priority = entities.PriorityCritical
			task.BlocksProduction = true
			task.Reason = "blocking product assembly"
		case buildable && comp.IsLow():
			task.Priority = entities.PriorityUrgent
			task.Reason = fmt.Sprintf("only %d ready for use", comp.PostProcessingCompleted)
		default:
			task.Priority = entities.PriorityMedium
			task.Reason = "replenish ready stock"
		}
		tasks = append(tasks, task)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority < tasks[j].Priority
		}
		return tasks[i].PendingQuantity > tasks[j].PendingQuantity
	})
	return tasks
}

// holdsUp reports whether the component is short for one unit of the
// product, either directly or through a part that has nothing available.
func (t *TaskPlanner) holdsUp(levels *StockLevels, componentID, productID entities.ItemID) bool {
	completed := decimal.NewFromInt(int64(levels.Completed(componentID)))
	for _, row := range t.catalog.ProductRecipe(productID) {
		switch {
		case row.InputID == componentID:
			if completed.LessThan(row.QuantityRequired) {
				return true
			}
		case row.InputKind == entities.KindPart:
			if levels.PartAvailable(row.InputID) > 0 {
				continue
			}
			for _, partRow := range t.catalog.PartRecipe(row.InputID) {
				if partRow.ComponentID == componentID && completed.LessThan(partRow.QuantityRequired) {
					return true
				}
			}
		}
	}
	return false
}

// AssemblyTasks reports, for every part, whether it can be assembled now and
// how many more the buffer calls for.
func (t *TaskPlanner) AssemblyTasks(levels *StockLevels, buffer int) []dto.AssemblyTask {
	var tasks []dto.AssemblyTask
	for _, ref := range t.catalog.Items(entities.KindPart) {
		result, err := t.capacity.Capacity(levels, ref.ID)
		if err != nil {
			continue
		}

		task := dto.AssemblyTask{
			PartID:            ref.ID,
			PartName:          ref.Name,
			CanAssemble:       result.MaxBuildable,
			Available:         levels.PartAvailable(ref.ID),
			MissingComponents: []string{},
		}
		for _, in := range result.Inputs {
			if in.Buildable < 1 {
				task.MissingComponents = append(task.MissingComponents, in.InputName)
			}
		}
		task.ComponentsReady = len(task.MissingComponents) == 0

		target := t.catalog.CommittedToProducts(ref.ID).Mul(decimal.NewFromInt(int64(buffer)))
		if missing := target.Sub(decimal.NewFromInt(int64(levels.Assembled(ref.ID)))); missing.IsPositive() {
			task.Needed = missing.Ceil().IntPart()
		}

		switch {
		case task.Available == 0:
			task.Urgency = entities.PriorityCritical
		case task.Available < entities.UrgentBelowProducts:
			task.Urgency = entities.PriorityUrgent
		default:
			task.Urgency = entities.PriorityMedium
		}

		switch {
		case task.ComponentsReady:
			task.Reason = fmt.Sprintf("can assemble %d now", task.CanAssemble)
		default:
			task.Reason = fmt.Sprintf("waiting on %d component(s)", len(task.MissingComponents))
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// LowStock lists purchased components under their threshold and printed
// components with fewer than entities.LowStockCompleted ready units.
func (t *TaskPlanner) LowStock(levels *StockLevels) *dto.LowStockReport {
	report := &dto.LowStockReport{
		Printed:   []dto.ComponentView{},
		Purchased: []dto.PurchasedView{},
	}
	for _, ref := range t.catalog.Items(entities.KindPrinted) {
		if comp := levels.Printed[ref.ID]; comp != nil && comp.IsLow() {
			report.Printed = append(report.Printed, componentView(t.catalog, comp))
		}
	}
	for _, ref := range t.catalog.Items(entities.KindPurchased) {
		if comp := levels.Purchased[ref.ID]; comp != nil && comp.IsLow() {
			report.Purchased = append(report.Purchased, purchasedView(t.catalog, comp))
		}
	}
	return report
}

func (t *TaskPlanner) productCapacities(levels *StockLevels) map[entities.ItemID]int64 {
	out := make(map[entities.ItemID]int64)
	for _, ref := range t.catalog.Items(entities.KindProduct) {
		n, err := t.capacity.MaxBuildable(levels, ref.ID)
		if err == nil {
			out[ref.ID] = n
		}
	}
	return out
}

func componentView(c *catalog.Catalog, comp *entities.PrintedComponent) dto.ComponentView {
	return dto.ComponentView{
		ID:                     comp.ID,
		Name:                   comp.Name,
		Quantity:               comp.Quantity,
		Completed:              comp.PostProcessingCompleted,
		Pending:                comp.PostProcessingPending,
		BatchSize:              comp.BatchSize,
		PrintTimeMinutes:       comp.PrintTimeMinutes,
		RequiresPostProcessing: comp.RequiresPostProcessing,
		PerProduct:             entities.Quantity(c.PerProduct(comp.ID).Ceil().IntPart()),
		LowStock:               comp.IsLow(),
	}
}

func purchasedView(c *catalog.Catalog, comp *entities.PurchasedComponent) dto.PurchasedView {
	return dto.PurchasedView{
		ID:                comp.ID,
		Name:              comp.Name,
		Quantity:          comp.Quantity,
		Unit:              comp.Unit,
		LowStockThreshold: comp.LowStockThreshold,
		PerProduct:        c.PerProduct(comp.ID),
		LowStock:          comp.IsLow(),
	}
}
