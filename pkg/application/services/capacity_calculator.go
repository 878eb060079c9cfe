package services

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/shopfloor/pkg/application/dto"
	"github.com/vsinha/shopfloor/pkg/domain/catalog"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

// CapacityCalculator computes how many units of a part or product can be
// assembled from current stock. It is the only place capacity is computed;
// the assembly gate, task lists and every view call it.
type CapacityCalculator struct {
	catalog *catalog.Catalog
}

// NewCapacityCalculator creates a calculator over a catalog
func NewCapacityCalculator(c *catalog.Catalog) *CapacityCalculator {
	return &CapacityCalculator{catalog: c}
}

// MaxBuildable returns the binding-constraint minimum for a part or product
func (c *CapacityCalculator) MaxBuildable(levels *StockLevels, id entities.ItemID) (int64, error) {
	result, err := c.Capacity(levels, id)
	if err != nil {
		return 0, err
	}
	return result.MaxBuildable, nil
}

// Capacity returns the per-input breakdown behind MaxBuildable. Zero capacity
// is a normal result.
func (c *CapacityCalculator) Capacity(levels *StockLevels, id entities.ItemID) (*dto.CapacityResult, error) {
	ref, ok := c.catalog.Lookup(id)
	if !ok {
		return nil, &entities.NotFoundError{Kind: "item", ID: string(id)}
	}

	result := &dto.CapacityResult{
		EntityID:   ref.ID,
		EntityName: ref.Name,
		EntityKind: ref.Kind.String(),
	}

	switch ref.Kind {
	case entities.KindPart:
		for _, row := range c.catalog.PartRecipe(id) {
			result.Inputs = append(result.Inputs, c.input(levels, row.ComponentID, row.ComponentKind, row.QuantityRequired))
		}
	case entities.KindProduct:
		for _, row := range c.catalog.ProductRecipe(id) {
			result.Inputs = append(result.Inputs, c.input(levels, row.InputID, row.InputKind, row.QuantityRequired))
		}
	default:
		return nil, &entities.ValidationError{
			Detail: "capacity is only defined for parts and products",
			Fields: map[string]string{"entity": ref.Name + " is a " + ref.Kind.String() + " component"},
		}
	}

	if len(result.Inputs) == 0 {
		return result, nil
	}

	result.MaxBuildable = result.Inputs[0].Buildable
	for _, in := range result.Inputs[1:] {
		if in.Buildable < result.MaxBuildable {
			result.MaxBuildable = in.Buildable
		}
	}
	for i := range result.Inputs {
		if result.Inputs[i].Buildable == result.MaxBuildable {
			result.Inputs[i].Binding = true
			result.Bottlenecks = append(result.Bottlenecks, result.Inputs[i].InputName)
		}
	}
	return result, nil
}

func (c *CapacityCalculator) input(levels *StockLevels, id entities.ItemID, kind entities.ItemKind, required decimal.Decimal) dto.InputCapacity {
	name := string(id)
	if ref, ok := c.catalog.Lookup(id); ok {
		name = ref.Name
	}
	available := levels.gating(id, kind)
	return dto.InputCapacity{
		InputID:   id,
		InputName: name,
		InputKind: kind.String(),
		Required:  required,
		Available: available,
		Buildable: floorDiv(available, required),
	}
}

// floorDiv returns floor(a / b) for a >= 0 and b > 0, and 0 otherwise
func floorDiv(a, b decimal.Decimal) int64 {
	if !a.IsPositive() || !b.IsPositive() {
		return 0
	}
	q, _ := a.QuoRem(b, 0)
	return q.IntPart()
}

// ceilDiv returns ceil(a / b) for positive integers
func ceilDiv(a, b int64) int64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
