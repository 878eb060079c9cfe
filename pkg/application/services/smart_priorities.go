package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopfloor/pkg/application/dto"
	"github.com/vsinha/shopfloor/pkg/domain/catalog"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

// MaxRecommendations caps the smart priority list
const MaxRecommendations = 2

// SmartPrioritySelector walks a fixed decision order and stops at the first
// step that yields anything:
//
//  1. assemble products if any can be built
//  2. unblock the product input with no usable stock and the largest shortfall
//  3. top up the product input that supports the fewest products
//  4. the fastest critical print job and any blocking post-processing
//
// Finishing what is already startable always comes before starting new work.
type SmartPrioritySelector struct {
	catalog  *catalog.Catalog
	capacity *CapacityCalculator
	planner  *ShortagePlanner
	tasks    *TaskPlanner
}

// NewSmartPrioritySelector wires the selector to the other calculators
func NewSmartPrioritySelector(c *catalog.Catalog, capacity *CapacityCalculator, planner *ShortagePlanner, tasks *TaskPlanner) *SmartPrioritySelector {
	return &SmartPrioritySelector{catalog: c, capacity: capacity, planner: planner, tasks: tasks}
}

// requirement is one input the product line draws on, sized for the buffer
type requirement struct {
	ref       catalog.Ref
	usable    decimal.Decimal
	perUnit   decimal.Decimal
	needed    decimal.Decimal
	shortfall decimal.Decimal
}

func (r requirement) supportable() int64 {
	return floorDiv(r.usable, r.perUnit)
}

// Select returns at most MaxRecommendations actions for the given buffer
func (s *SmartPrioritySelector) Select(levels *StockLevels, buffer int) []dto.Recommendation {
	var recs []dto.Recommendation

	for _, product := range s.catalog.Items(entities.KindProduct) {
		n, err := s.capacity.MaxBuildable(levels, product.ID)
		if err != nil || n <= 0 {
			continue
		}
		recs = append(recs, dto.Recommendation{
			Action:     dto.ActionAssembleProduct,
			TargetID:   product.ID,
			TargetName: product.Name,
			TargetKind: entities.KindProduct.String(),
			Quantity:   decimal.NewFromInt(n),
			Priority:   entities.PriorityCritical,
			Reason:     fmt.Sprintf("%d can be assembled from current stock", n),
		})
	}
	if len(recs) > 0 {
		return limit(recs)
	}

	reqs := s.requirements(levels, buffer)

	var blocking *requirement
	for i := range reqs {
		r := &reqs[i]
		if !r.usable.IsZero() || !r.needed.IsPositive() {
			continue
		}
		if blocking == nil || r.shortfall.GreaterThan(blocking.shortfall) {
			blocking = r
		}
	}
	if blocking != nil {
		return limit(s.recommend(levels, *blocking, entities.PriorityCritical, ""))
	}

	var lowest *requirement
	for i := range reqs {
		r := &reqs[i]
		if !r.shortfall.IsPositive() {
			continue
		}
		if lowest == nil || r.supportable() < lowest.supportable() ||
			(r.supportable() == lowest.supportable() && r.shortfall.GreaterThan(lowest.shortfall)) {
			lowest = r
		}
	}
	if lowest != nil {
		return limit(s.recommend(levels, *lowest, entities.PriorityUrgent, ""))
	}

	return limit(s.fallback(levels, buffer))
}

// requirements lists the direct inputs of every product, in catalog order,
// with the stock that gates their use: assembled count for parts, usable
// stock for components. An input shared by several products carries the sum
// of their per-unit quantities. Components behind a part are only reached
// through recommend, once the part itself is short.
func (s *SmartPrioritySelector) requirements(levels *StockLevels, buffer int) []requirement {
	n := decimal.NewFromInt(int64(buffer))
	var reqs []requirement
	index := map[entities.ItemID]int{}
	for _, product := range s.catalog.Items(entities.KindProduct) {
		for _, row := range s.catalog.ProductRecipe(product.ID) {
			if i, ok := index[row.InputID]; ok {
				reqs[i].perUnit = reqs[i].perUnit.Add(row.QuantityRequired)
				continue
			}
			ref, ok := s.catalog.Lookup(row.InputID)
			if !ok {
				continue
			}
			index[row.InputID] = len(reqs)
			reqs = append(reqs, requirement{
				ref:     ref,
				usable:  levels.gating(row.InputID, row.InputKind),
				perUnit: row.QuantityRequired,
			})
		}
	}
	for i := range reqs {
		reqs[i].needed = reqs[i].perUnit.Mul(n)
		reqs[i].shortfall = decimal.Max(reqs[i].needed.Sub(reqs[i].usable), decimal.Zero)
	}
	return reqs
}

// recommend turns one short input into actions. Printed stock waiting for
// post-processing is used before anything new is printed, and a part that
// cannot be assembled is traced to the component holding it up.
func (s *SmartPrioritySelector) recommend(levels *StockLevels, r requirement, priority entities.Priority, forName string) []dto.Recommendation {
	base := dto.Recommendation{
		TargetID:   r.ref.ID,
		TargetName: r.ref.Name,
		TargetKind: r.ref.Kind.String(),
		Priority:   priority,
	}
	suffix := ""
	if forName != "" {
		suffix = " for " + forName
	}

	switch r.ref.Kind {
	case entities.KindPrinted:
		shortfall := r.shortfall.Ceil().IntPart()
		pending := int64(levels.Pending(r.ref.ID))
		if pending >= shortfall {
			rec := base
			rec.Action = dto.ActionCompletePostProcessing
			rec.Quantity = decimal.NewFromInt(shortfall)
			rec.Reason = fmt.Sprintf("%d pending units cover the shortfall of %d%s", pending, shortfall, suffix)
			return []dto.Recommendation{rec}
		}

		printRec := base
		printRec.Action = dto.ActionPrint
		printRec.Quantity = decimal.NewFromInt(shortfall - pending)
		batchSize := int64(catalog.DefaultBatchSize)
		if comp := levels.Printed[r.ref.ID]; comp != nil {
			batchSize = int64(comp.BatchSize)
		}
		printRec.Reason = fmt.Sprintf("short %d%s, %d batch(es) to print", shortfall, suffix, ceilDiv(shortfall-pending, batchSize))
		recs := []dto.Recommendation{printRec}
		if pending > 0 {
			finish := base
			finish.Action = dto.ActionCompletePostProcessing
			finish.Quantity = decimal.NewFromInt(pending)
			finish.Reason = fmt.Sprintf("finish the %d pending units first", pending)
			recs = append([]dto.Recommendation{finish}, recs...)
		}
		return recs

	case entities.KindPurchased:
		rec := base
		rec.Action = dto.ActionRestock
		rec.Quantity = r.shortfall
		rec.Reason = fmt.Sprintf("short %s%s", r.shortfall, suffix)
		return []dto.Recommendation{rec}

	case entities.KindPart:
		want := r.shortfall.Ceil().IntPart()
		buildable, err := s.capacity.MaxBuildable(levels, r.ref.ID)
		if err == nil && buildable > 0 {
			rec := base
			rec.Action = dto.ActionAssemblePart
			rec.Quantity = decimal.NewFromInt(min(buildable, want))
			rec.Reason = fmt.Sprintf("%d can be assembled, %d short", buildable, want)
			return []dto.Recommendation{rec}
		}
		if input, ok := s.blockingInput(levels, r.ref.ID, want); ok {
			return s.recommend(levels, input, priority, r.ref.Name)
		}
	}
	return nil
}

// blockingInput picks the recipe row of a part that cannot cover a single
// unit, preferring the one furthest from covering want units.
func (s *SmartPrioritySelector) blockingInput(levels *StockLevels, partID entities.ItemID, want int64) (requirement, bool) {
	var best requirement
	found := false
	for _, row := range s.catalog.PartRecipe(partID) {
		ref, ok := s.catalog.Lookup(row.ComponentID)
		if !ok {
			continue
		}
		r := requirement{
			ref:     ref,
			usable:  levels.gating(row.ComponentID, row.ComponentKind),
			perUnit: row.QuantityRequired,
			needed:  row.QuantityRequired.Mul(decimal.NewFromInt(want)),
		}
		if !r.usable.LessThan(r.perUnit) {
			continue
		}
		r.shortfall = decimal.Max(r.needed.Sub(r.usable), decimal.Zero)
		if !found || r.shortfall.GreaterThan(best.shortfall) {
			best, found = r, true
		}
	}
	return best, found
}

// fallback offers the quickest critical print job and any post-processing
// task that blocks production.
func (s *SmartPrioritySelector) fallback(levels *StockLevels, buffer int) []dto.Recommendation {
	var recs []dto.Recommendation

	var fastest *dto.ShortageLine
	plan := s.planner.Plan(levels, buffer)
	for i := range plan.Lines {
		line := &plan.Lines[i]
		if line.Priority != entities.PriorityCritical || line.Shortage <= 0 {
			continue
		}
		if fastest == nil || line.TotalPrintTime < fastest.TotalPrintTime {
			fastest = line
		}
	}
	if fastest != nil {
		recs = append(recs, dto.Recommendation{
			Action:     dto.ActionPrint,
			TargetID:   fastest.ComponentID,
			TargetName: fastest.ComponentName,
			TargetKind: entities.KindPrinted.String(),
			Quantity:   decimal.NewFromInt(int64(fastest.Shortage)),
			Priority:   entities.PriorityCritical,
			Reason:     fmt.Sprintf("fastest critical job, %d batch(es) in %d min", fastest.BatchesNeeded, fastest.TotalPrintTime),
		})
	}

	for _, task := range s.tasks.PostProcessingTasks(levels) {
		if !task.BlocksProduction {
			continue
		}
		recs = append(recs, dto.Recommendation{
			Action:     dto.ActionCompletePostProcessing,
			TargetID:   task.ComponentID,
			TargetName: task.ComponentName,
			TargetKind: entities.KindPrinted.String(),
			Quantity:   decimal.NewFromInt(int64(task.PendingQuantity)),
			Priority:   entities.PriorityCritical,
			Reason:     task.Reason,
		})
		break
	}
	return recs
}

func limit(recs []dto.Recommendation) []dto.Recommendation {
	if len(recs) > MaxRecommendations {
		return recs[:MaxRecommendations]
	}
	return recs
}
