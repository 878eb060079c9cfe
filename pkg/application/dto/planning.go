package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

// InputCapacity is how many outputs one recipe input supports on its own
type InputCapacity struct {
	InputID   entities.ItemID `json:"inputId" yaml:"input_id"`
	InputName string          `json:"inputName" yaml:"input_name"`
	InputKind string          `json:"inputType" yaml:"input_type"`
	Required  decimal.Decimal `json:"required" yaml:"required"`
	Available decimal.Decimal `json:"available" yaml:"available"`
	Buildable int64           `json:"buildable" yaml:"buildable"`
	Binding   bool            `json:"binding" yaml:"binding"`
}

// CapacityResult is the output of the capacity calculator
type CapacityResult struct {
	EntityID     entities.ItemID `json:"id" yaml:"id"`
	EntityName   string          `json:"name" yaml:"name"`
	EntityKind   string          `json:"type" yaml:"type"`
	MaxBuildable int64           `json:"maxBuildable" yaml:"max_buildable"`
	Inputs       []InputCapacity `json:"inputs" yaml:"inputs"`
	Bottlenecks  []string        `json:"bottlenecks" yaml:"bottlenecks"`
}

// ShortageLine is the plan for one printed component
type ShortageLine struct {
	ComponentID         entities.ItemID   `json:"componentId" yaml:"component_id"`
	ComponentName       string            `json:"componentName" yaml:"component_name"`
	PerProduct          entities.Quantity `json:"perProduct" yaml:"per_product"`
	TotalNeeded         entities.Quantity `json:"totalNeeded" yaml:"total_needed"`
	Completed           entities.Quantity `json:"completed" yaml:"completed"`
	Pending             entities.Quantity `json:"pending" yaml:"pending"`
	CurrentStock        entities.Quantity `json:"currentStock" yaml:"current_stock"`
	Shortage            entities.Quantity `json:"shortage" yaml:"shortage"`
	BatchSize           int               `json:"batchSize" yaml:"batch_size"`
	BatchesNeeded       int64             `json:"batchesNeeded" yaml:"batches_needed"`
	PrintTimeMinutes    int               `json:"printTimeMinutes" yaml:"print_time_minutes"`
	TotalPrintTime      int64             `json:"totalPrintTime" yaml:"total_print_time"`
	ProductsSupportable int64             `json:"productsSupportable" yaml:"products_supportable"`
	Priority            entities.Priority `json:"priority" yaml:"priority"`
}

// ShortagePlan is the ordered shortage list for a target buffer
type ShortagePlan struct {
	TargetBuffer   int            `json:"targetProductsBuffer" yaml:"target_products_buffer"`
	Lines          []ShortageLine `json:"lines" yaml:"lines"`
	TotalBatches   int64          `json:"totalBatches" yaml:"total_batches"`
	TotalPrintTime int64          `json:"totalPrintTime" yaml:"total_print_time"`
}

// Shortages returns only the lines with a positive shortage
func (p *ShortagePlan) Shortages() []ShortageLine {
	var out []ShortageLine
	for _, l := range p.Lines {
		if l.Shortage > 0 {
			out = append(out, l)
		}
	}
	return out
}

// BatchPriorityLine is one entry of the print-batch query
type BatchPriorityLine struct {
	ComponentID      entities.ItemID        `json:"componentId" yaml:"component_id"`
	ComponentName    string                 `json:"componentName" yaml:"component_name"`
	CurrentStock     entities.Quantity      `json:"currentStock" yaml:"current_stock"`
	Needed           entities.Quantity      `json:"needed" yaml:"needed"`
	Shortage         entities.Quantity      `json:"shortage" yaml:"shortage"`
	BatchSize        int                    `json:"batchSize" yaml:"batch_size"`
	BatchesNeeded    int64                  `json:"batchesNeeded" yaml:"batches_needed"`
	PrintTimeMinutes int                    `json:"printTimeMinutes" yaml:"print_time_minutes"`
	TotalPrintTime   int64                  `json:"totalPrintTime" yaml:"total_print_time"`
	Priority         entities.BatchPriority `json:"priority" yaml:"priority"`
}

// Action is what a recommendation asks the operator to do
type Action string

const (
	ActionAssembleProduct        Action = "assemble_product"
	ActionAssemblePart           Action = "assemble_part"
	ActionCompletePostProcessing Action = "complete_post_processing"
	ActionPrint                  Action = "print"
	ActionRestock                Action = "restock"
)

// Recommendation is one entry of the smart priority list
type Recommendation struct {
	Action     Action            `json:"action" yaml:"action"`
	TargetID   entities.ItemID   `json:"targetId" yaml:"target_id"`
	TargetName string            `json:"targetName" yaml:"target_name"`
	TargetKind string            `json:"targetType" yaml:"target_type"`
	Quantity   decimal.Decimal   `json:"quantity" yaml:"quantity"`
	Priority   entities.Priority `json:"priority" yaml:"priority"`
	Reason     string            `json:"reason" yaml:"reason"`
}

// PostProcessingTask is a component with units waiting for finishing
type PostProcessingTask struct {
	ComponentID      entities.ItemID   `json:"componentId" yaml:"component_id"`
	ComponentName    string            `json:"componentName" yaml:"component_name"`
	PendingQuantity  entities.Quantity `json:"pendingQuantity" yaml:"pending_quantity"`
	Completed        entities.Quantity `json:"completed" yaml:"completed"`
	Priority         entities.Priority `json:"priority" yaml:"priority"`
	Reason           string            `json:"reason" yaml:"reason"`
	BlocksProduction bool              `json:"blocksProduction" yaml:"blocks_production"`
}

// AssemblyTask describes whether a part can be assembled and how urgently
type AssemblyTask struct {
	PartID            entities.ItemID   `json:"partId" yaml:"part_id"`
	PartName          string            `json:"partName" yaml:"part_name"`
	ComponentsReady   bool              `json:"componentsReady" yaml:"components_ready"`
	MissingComponents []string          `json:"missingComponents" yaml:"missing_components"`
	CanAssemble       int64             `json:"canAssemble" yaml:"can_assemble"`
	Available         entities.Quantity `json:"available" yaml:"available"`
	Needed            int64             `json:"needed" yaml:"needed"`
	Urgency           entities.Priority `json:"urgency" yaml:"urgency"`
	Reason            string            `json:"reason" yaml:"reason"`
}
