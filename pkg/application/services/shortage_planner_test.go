package services

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vsinha/shopfloor/pkg/application/dto"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

func TestShortagePlan(t *testing.T) {
	f := newWorkshop(t)
	f.set(t, stock{
		completed: map[entities.ItemID]entities.Quantity{"component-x": 3},
		pending:   map[entities.ItemID]entities.Quantity{"component-x": 2},
	})

	plan, err := f.service.GetShortagePlan(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetShortagePlan failed: %v", err)
	}

	want := []dto.ShortageLine{
		{
			ComponentID: "component-y", ComponentName: "Component Y",
			PerProduct: 1, TotalNeeded: 10, CurrentStock: 0, Shortage: 10,
			BatchSize: 5, BatchesNeeded: 2, PrintTimeMinutes: 45, TotalPrintTime: 90,
			ProductsSupportable: 0, Priority: entities.PriorityCritical,
		},
		{
			ComponentID: "component-x", ComponentName: "Component X",
			PerProduct: 1, TotalNeeded: 10, Completed: 3, Pending: 2, CurrentStock: 5, Shortage: 5,
			BatchSize: 10, BatchesNeeded: 1, PrintTimeMinutes: 30, TotalPrintTime: 30,
			ProductsSupportable: 5, Priority: entities.PriorityMedium,
		},
	}
	if diff := cmp.Diff(want, plan.Lines); diff != "" {
		t.Errorf("Unexpected plan (-want +got):\n%s", diff)
	}
	if plan.TotalBatches != 3 || plan.TotalPrintTime != 120 {
		t.Errorf("Expected 3 batches and 120 minutes, got %d and %d", plan.TotalBatches, plan.TotalPrintTime)
	}
}

func TestShortagePlan_TieBreaksOnPrintTime(t *testing.T) {
	f := newWorkshop(t)

	plan, err := f.service.GetShortagePlan(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetShortagePlan failed: %v", err)
	}
	if len(plan.Lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(plan.Lines))
	}
	// both support zero products; X needs one 30 minute batch, Y two 45 minute batches
	if plan.Lines[0].ComponentID != "component-x" {
		t.Errorf("Expected the quicker Component X first, got %s", plan.Lines[0].ComponentID)
	}
}

func TestShortagePlan_ZeroAtSaturation(t *testing.T) {
	for _, buffer := range []int{1, 10, 50} {
		f := newWorkshop(t)
		f.set(t, stock{
			completed: map[entities.ItemID]entities.Quantity{"component-x": entities.Quantity(buffer)},
			pending:   map[entities.ItemID]entities.Quantity{"component-y": entities.Quantity(buffer) + 3},
		})

		plan, err := f.service.GetShortagePlan(context.Background(), buffer)
		if err != nil {
			t.Fatalf("GetShortagePlan failed: %v", err)
		}
		if got := plan.Shortages(); len(got) != 0 {
			t.Errorf("Buffer %d: expected no shortages, got %+v", buffer, got)
		}
		if plan.TotalBatches != 0 {
			t.Errorf("Buffer %d: expected no batches, got %d", buffer, plan.TotalBatches)
		}
	}
}

func TestShortagePlan_BufferOutOfRange(t *testing.T) {
	f := newWorkshop(t)
	for _, n := range []int{0, -1, 51} {
		if _, err := f.service.GetShortagePlan(context.Background(), n); err == nil {
			t.Errorf("Expected buffer %d to be rejected", n)
		}
	}
}

func TestBatchPriorities(t *testing.T) {
	tests := []struct {
		name       string
		completedY entities.Quantity
		want       []entities.BatchPriority
	}{
		{"y high", 1, []entities.BatchPriority{entities.BatchCritical, entities.BatchHigh}},
		{"y medium", 4, []entities.BatchPriority{entities.BatchCritical, entities.BatchMedium}},
		{"y low", 6, []entities.BatchPriority{entities.BatchCritical, entities.BatchLow}},
		{"y covered", 10, []entities.BatchPriority{entities.BatchCritical}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkshop(t)
			f.set(t, stock{
				completed: map[entities.ItemID]entities.Quantity{"component-y": tt.completedY},
				// pending stock does not count for batches
				pending: map[entities.ItemID]entities.Quantity{"component-x": 50},
			})

			lines, err := f.service.GetBatchPriorities(context.Background())
			if err != nil {
				t.Fatalf("GetBatchPriorities failed: %v", err)
			}
			var got []entities.BatchPriority
			for _, l := range lines {
				got = append(got, l.Priority)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Unexpected classes (-want +got):\n%s", diff)
			}
			if lines[0].ComponentID != "component-x" || lines[0].Shortage != 10 {
				t.Errorf("Expected Component X short 10 first, got %s short %d", lines[0].ComponentID, lines[0].Shortage)
			}
		})
	}
}

func TestClassifyBatch(t *testing.T) {
	tests := []struct {
		current, shortage, needed entities.Quantity
		want                      entities.BatchPriority
	}{
		{0, 10, 10, entities.BatchCritical},
		{2, 8, 10, entities.BatchHigh},
		{5, 5, 10, entities.BatchMedium},
		{6, 4, 10, entities.BatchLow},
		{1, 99, 100, entities.BatchHigh},
	}

	for _, tt := range tests {
		if got := ClassifyBatch(tt.current, tt.shortage, tt.needed); got != tt.want {
			t.Errorf("ClassifyBatch(%d, %d, %d): expected %s, got %s", tt.current, tt.shortage, tt.needed, tt.want, got)
		}
	}
}

func TestClassifySupportable(t *testing.T) {
	tests := []struct {
		supportable int64
		want        entities.Priority
	}{
		{0, entities.PriorityCritical},
		{1, entities.PriorityUrgent},
		{2, entities.PriorityUrgent},
		{3, entities.PriorityMedium},
		{6, entities.PriorityMedium},
		{7, entities.PriorityLow},
	}

	for _, tt := range tests {
		if got := entities.ClassifySupportable(tt.supportable); got != tt.want {
			t.Errorf("ClassifySupportable(%d): expected %s, got %s", tt.supportable, tt.want, got)
		}
	}
}
