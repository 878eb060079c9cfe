package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopfloor/pkg/application/dto"
	"github.com/vsinha/shopfloor/pkg/domain/catalog"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

// ShortagePlanner turns a target buffer into per-component print work
type ShortagePlanner struct {
	catalog *catalog.Catalog
}

// NewShortagePlanner creates a planner over a catalog
func NewShortagePlanner(c *catalog.Catalog) *ShortagePlanner {
	return &ShortagePlanner{catalog: c}
}

// Plan computes the shortage line of every printed component that a product
// consumes, directly or through a part. Lines are ordered most starved
// first, then quickest to print.
func (p *ShortagePlanner) Plan(levels *StockLevels, buffer int) *dto.ShortagePlan {
	plan := &dto.ShortagePlan{TargetBuffer: buffer}

	for _, ref := range p.catalog.Items(entities.KindPrinted) {
		perProduct := p.perProductUnits(ref.ID)
		if perProduct == 0 {
			continue
		}
		comp := levels.Printed[ref.ID]
		batchSize, printTime := catalog.DefaultBatchSize, catalog.DefaultPrintTimeMinutes
		if comp != nil {
			batchSize, printTime = comp.BatchSize, comp.PrintTimeMinutes
		}

		line := dto.ShortageLine{
			ComponentID:      ref.ID,
			ComponentName:    ref.Name,
			PerProduct:       perProduct,
			TotalNeeded:      entities.Quantity(buffer) * perProduct,
			Completed:        levels.Completed(ref.ID),
			Pending:          levels.Pending(ref.ID),
			CurrentStock:     levels.OnHand(ref.ID),
			BatchSize:        batchSize,
			PrintTimeMinutes: printTime,
		}
		if line.TotalNeeded > line.CurrentStock {
			line.Shortage = line.TotalNeeded - line.CurrentStock
		}
		line.BatchesNeeded = ceilDiv(int64(line.Shortage), int64(batchSize))
		line.TotalPrintTime = line.BatchesNeeded * int64(printTime)
		line.ProductsSupportable = int64(line.CurrentStock / perProduct)
		line.Priority = entities.ClassifySupportable(line.ProductsSupportable)

		plan.Lines = append(plan.Lines, line)
		plan.TotalBatches += line.BatchesNeeded
		plan.TotalPrintTime += line.TotalPrintTime
	}

	sort.SliceStable(plan.Lines, func(i, j int) bool {
		a, b := plan.Lines[i], plan.Lines[j]
		if a.ProductsSupportable != b.ProductsSupportable {
			return a.ProductsSupportable < b.ProductsSupportable
		}
		return a.TotalPrintTime < b.TotalPrintTime
	})
	return plan
}

// BatchPriorities is the print-batch query. Unlike Plan it counts only
// completed stock and classifies by shortage ratio; components without a
// shortage are left out.
func (p *ShortagePlanner) BatchPriorities(levels *StockLevels, buffer int) []dto.BatchPriorityLine {
	var lines []dto.BatchPriorityLine

	for _, ref := range p.catalog.Items(entities.KindPrinted) {
		perProduct := p.perProductUnits(ref.ID)
		if perProduct == 0 {
			continue
		}
		needed := entities.Quantity(buffer) * perProduct
		current := levels.Completed(ref.ID)
		if current >= needed {
			continue
		}

		comp := levels.Printed[ref.ID]
		batchSize, printTime := catalog.DefaultBatchSize, catalog.DefaultPrintTimeMinutes
		if comp != nil {
			batchSize, printTime = comp.BatchSize, comp.PrintTimeMinutes
		}
		shortage := needed - current
		batches := ceilDiv(int64(shortage), int64(batchSize))

		lines = append(lines, dto.BatchPriorityLine{
			ComponentID:      ref.ID,
			ComponentName:    ref.Name,
			CurrentStock:     current,
			Needed:           needed,
			Shortage:         shortage,
			BatchSize:        batchSize,
			BatchesNeeded:    batches,
			PrintTimeMinutes: printTime,
			TotalPrintTime:   batches * int64(printTime),
			Priority:         ClassifyBatch(current, shortage, needed),
		})
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Priority != lines[j].Priority {
			return lines[i].Priority < lines[j].Priority
		}
		return lines[i].Shortage > lines[j].Shortage
	})
	return lines
}

// ClassifyBatch is the batch-query policy: critical with no completed stock,
// then high and medium by the fraction of the need still missing.
func ClassifyBatch(current, shortage, needed entities.Quantity) entities.BatchPriority {
	if current == 0 {
		return entities.BatchCritical
	}
	ratio := decimal.NewFromInt(int64(shortage)).Div(decimal.NewFromInt(int64(needed)))
	switch {
	case ratio.GreaterThanOrEqual(decimal.NewFromFloat(entities.BatchHighShortageRatio)):
		return entities.BatchHigh
	case ratio.GreaterThanOrEqual(decimal.NewFromFloat(entities.BatchMediumShortageRatio)):
		return entities.BatchMedium
	default:
		return entities.BatchLow
	}
}

// perProductUnits is the whole-unit per-product requirement of a printed
// component. Printed requirements are integers by catalog validation.
func (p *ShortagePlanner) perProductUnits(id entities.ItemID) entities.Quantity {
	return entities.Quantity(p.catalog.PerProduct(id).Ceil().IntPart())
}
