package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/infrastructure/events"
)

func TestAssemblePart_InsufficientScrew(t *testing.T) {
	f := newWorkshop(t)
	f.set(t, stock{
		completed: map[entities.ItemID]entities.Quantity{"component-x": 5},
		purchased: map[entities.ItemID]string{"screw": "3"},
	})

	_, err := f.service.AssemblePart(context.Background(), "Bowler", 4)

	var insufficient *entities.InsufficientComponentsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Expected InsufficientComponentsError, got %v", err)
	}
	if insufficient.Input != "Screw" {
		t.Errorf("Expected failing input Screw, got %s", insufficient.Input)
	}
	if !insufficient.Required.Equal(decimal.NewFromInt(4)) || !insufficient.Available.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected need 4 have 3, got need %s have %s", insufficient.Required, insufficient.Available)
	}

	levels := f.levels(t)
	if got := levels.Completed("component-x"); got != 5 {
		t.Errorf("Expected Component X completed to stay 5, got %d", got)
	}
	if got := levels.PurchasedQuantity("screw"); !got.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected Screw to stay 3, got %s", got)
	}
	if got := levels.Assembled("bowler"); got != 0 {
		t.Errorf("Expected Bowler assembled 0, got %d", got)
	}
	if len(f.publisher.types()) != 0 {
		t.Errorf("Expected no events on failure, got %v", f.publisher.types())
	}
}

func TestAssemblePart_AllOrNothing(t *testing.T) {
	// each recipe row is made short in turn; nothing anywhere may change
	tests := []struct {
		name  string
		stock stock
		short string
	}{
		{
			name: "component x short",
			stock: stock{
				completed: map[entities.ItemID]entities.Quantity{"component-x": 1},
				purchased: map[entities.ItemID]string{"screw": "10"},
			},
			short: "Component X",
		},
		{
			name: "screw short",
			stock: stock{
				completed: map[entities.ItemID]entities.Quantity{"component-x": 10},
				purchased: map[entities.ItemID]string{"screw": "1"},
			},
			short: "Screw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkshop(t)
			f.set(t, tt.stock)
			before, err := f.service.ExportBackup(context.Background())
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}

			_, err = f.service.AssemblePart(context.Background(), "bowler", 2)
			var insufficient *entities.InsufficientComponentsError
			if !errors.As(err, &insufficient) {
				t.Fatalf("Expected InsufficientComponentsError, got %v", err)
			}
			if insufficient.Input != tt.short {
				t.Errorf("Expected failing input %s, got %s", tt.short, insufficient.Input)
			}

			after, err := f.service.ExportBackup(context.Background())
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			if diff := cmp.Diff(before.Components3D, after.Components3D); diff != "" {
				t.Errorf("Printed stock changed (-before +after):\n%s", diff)
			}
			if diff := cmp.Diff(before.PurchasedComponents, after.PurchasedComponents); diff != "" {
				t.Errorf("Purchased stock changed (-before +after):\n%s", diff)
			}
			if diff := cmp.Diff(before.Parts, after.Parts); diff != "" {
				t.Errorf("Parts changed (-before +after):\n%s", diff)
			}
		})
	}
}

func TestAssemblePart_Success(t *testing.T) {
	f := newWorkshop(t)
	f.set(t, stock{
		completed: map[entities.ItemID]entities.Quantity{"component-x": 5},
		pending:   map[entities.ItemID]entities.Quantity{"component-x": 7},
		purchased: map[entities.ItemID]string{"screw": "5"},
	})

	view, err := f.service.AssemblePart(context.Background(), "Bowler", 3)
	if err != nil {
		t.Fatalf("Assembly failed: %v", err)
	}
	if view.Assembled != 3 {
		t.Errorf("Expected 3 assembled, got %d", view.Assembled)
	}
	// Kit commits one Bowler, so two are available for anything else
	if view.Available != 2 {
		t.Errorf("Expected 2 available, got %d", view.Available)
	}
	if view.Capacity != 2 {
		t.Errorf("Expected remaining capacity 2, got %d", view.Capacity)
	}

	levels := f.levels(t)
	if got := levels.Completed("component-x"); got != 2 {
		t.Errorf("Expected Component X completed 2, got %d", got)
	}
	if got := levels.Pending("component-x"); got != 7 {
		t.Errorf("Expected pending stock untouched at 7, got %d", got)
	}
	if got := levels.PurchasedQuantity("screw"); !got.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected Screw 2, got %s", got)
	}
	if diff := cmp.Diff([]string{events.PartAssembledEvent}, f.publisher.types()); diff != "" {
		t.Errorf("Unexpected events (-want +got):\n%s", diff)
	}
}

func TestAssembleProduct(t *testing.T) {
	f := newWorkshop(t)
	f.set(t, stock{
		completed: map[entities.ItemID]entities.Quantity{"component-y": 10},
		purchased: map[entities.ItemID]string{"mailer": "1"},
		assembled: map[entities.ItemID]entities.Quantity{"bowler": 3},
	})

	_, err := f.service.AssembleProduct(context.Background(), "Kit", 3)
	var insufficient *entities.InsufficientComponentsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Expected InsufficientComponentsError, got %v", err)
	}
	if insufficient.Input != "Mailer" {
		t.Errorf("Expected Mailer to be short, got %s", insufficient.Input)
	}
	if !insufficient.Required.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("Expected 1.5 mailers required, got %s", insufficient.Required)
	}

	view, err := f.service.AssembleProduct(context.Background(), "Kit", 2)
	if err != nil {
		t.Fatalf("Assembly failed: %v", err)
	}
	if view.Quantity != 2 {
		t.Errorf("Expected 2 kits, got %d", view.Quantity)
	}
	if view.Capacity != 0 {
		t.Errorf("Expected capacity 0 after using every mailer, got %d", view.Capacity)
	}

	levels := f.levels(t)
	if got := levels.Assembled("bowler"); got != 1 {
		t.Errorf("Expected 1 Bowler left, got %d", got)
	}
	if got := levels.Completed("component-y"); got != 8 {
		t.Errorf("Expected 8 Component Y left, got %d", got)
	}
	if got := levels.PurchasedQuantity("mailer"); !got.IsZero() {
		t.Errorf("Expected no mailers left, got %s", got)
	}
}

func TestAssembleProduct_AllOrNothing(t *testing.T) {
	// Kit x2 needs 2 Bowlers, 1 Mailer and 2 Component Y; each is short in turn
	tests := []struct {
		name  string
		stock stock
		short string
	}{
		{
			name: "part short",
			stock: stock{
				completed: map[entities.ItemID]entities.Quantity{"component-y": 10},
				purchased: map[entities.ItemID]string{"mailer": "5"},
				assembled: map[entities.ItemID]entities.Quantity{"bowler": 1},
			},
			short: "Bowler",
		},
		{
			name: "fractional purchased input short",
			stock: stock{
				completed: map[entities.ItemID]entities.Quantity{"component-y": 10},
				purchased: map[entities.ItemID]string{"mailer": "0.5"},
				assembled: map[entities.ItemID]entities.Quantity{"bowler": 5},
			},
			short: "Mailer",
		},
		{
			name: "printed component short",
			stock: stock{
				completed: map[entities.ItemID]entities.Quantity{"component-y": 1},
				pending:   map[entities.ItemID]entities.Quantity{"component-y": 6},
				purchased: map[entities.ItemID]string{"mailer": "5"},
				assembled: map[entities.ItemID]entities.Quantity{"bowler": 5},
			},
			short: "Component Y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkshop(t)
			f.set(t, tt.stock)
			before, err := f.service.ExportBackup(context.Background())
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}

			_, err = f.service.AssembleProduct(context.Background(), "kit", 2)
			var insufficient *entities.InsufficientComponentsError
			if !errors.As(err, &insufficient) {
				t.Fatalf("Expected InsufficientComponentsError, got %v", err)
			}
			if insufficient.Input != tt.short {
				t.Errorf("Expected failing input %s, got %s", tt.short, insufficient.Input)
			}

			after, err := f.service.ExportBackup(context.Background())
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			if diff := cmp.Diff(before.Components3D, after.Components3D); diff != "" {
				t.Errorf("Printed stock changed (-before +after):\n%s", diff)
			}
			if diff := cmp.Diff(before.PurchasedComponents, after.PurchasedComponents); diff != "" {
				t.Errorf("Purchased stock changed (-before +after):\n%s", diff)
			}
			if diff := cmp.Diff(before.Parts, after.Parts); diff != "" {
				t.Errorf("Parts changed (-before +after):\n%s", diff)
			}
			if diff := cmp.Diff(before.Products, after.Products); diff != "" {
				t.Errorf("Products changed (-before +after):\n%s", diff)
			}
			if len(f.publisher.types()) != 0 {
				t.Errorf("Expected no events on failure, got %v", f.publisher.types())
			}
		})
	}
}

func TestCompletePostProcessing_Conservation(t *testing.T) {
	f := newWorkshop(t)
	f.set(t, stock{
		completed: map[entities.ItemID]entities.Quantity{"component-y": 4},
		pending:   map[entities.ItemID]entities.Quantity{"component-y": 9},
	})

	for _, k := range []int64{1, 3, 5} {
		before := f.levels(t)
		view, err := f.service.CompletePostProcessing(context.Background(), "Component Y", k)
		if err != nil {
			t.Fatalf("Post-processing %d failed: %v", k, err)
		}
		if view.Pending != before.Pending("component-y")-entities.Quantity(k) {
			t.Errorf("Expected pending %d, got %d", before.Pending("component-y")-entities.Quantity(k), view.Pending)
		}
		if view.Completed != before.Completed("component-y")+entities.Quantity(k) {
			t.Errorf("Expected completed %d, got %d", before.Completed("component-y")+entities.Quantity(k), view.Completed)
		}
		if view.Pending+view.Completed != before.OnHand("component-y") {
			t.Errorf("Expected pending+completed to stay %d, got %d", before.OnHand("component-y"), view.Pending+view.Completed)
		}
	}

	levels := f.levels(t)
	if levels.Pending("component-y") != 0 || levels.Completed("component-y") != 13 {
		t.Errorf("Expected 0 pending and 13 completed, got %d and %d", levels.Pending("component-y"), levels.Completed("component-y"))
	}
}

func TestCompletePostProcessing_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		count int64
		check func(error) bool
	}{
		{"more than pending", 3, func(err error) bool {
			var e *entities.InsufficientStockError
			return errors.As(err, &e)
		}},
		{"zero", 0, func(err error) bool {
			var e *entities.InvalidQuantityError
			return errors.As(err, &e)
		}},
		{"negative", -2, func(err error) bool {
			var e *entities.InvalidQuantityError
			return errors.As(err, &e)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkshop(t)
			f.set(t, stock{pending: map[entities.ItemID]entities.Quantity{"component-y": 2}})

			_, err := f.service.CompletePostProcessing(context.Background(), "component-y", tt.count)
			if !tt.check(err) {
				t.Fatalf("Unexpected error: %v", err)
			}
			levels := f.levels(t)
			if levels.Pending("component-y") != 2 || levels.Completed("component-y") != 0 {
				t.Errorf("Expected no change, got pending %d completed %d", levels.Pending("component-y"), levels.Completed("component-y"))
			}
		})
	}
}

func TestRecordPrint(t *testing.T) {
	f := newWorkshop(t)

	view, err := f.service.RecordPrint(context.Background(), "Component X", 10)
	if err != nil {
		t.Fatalf("RecordPrint failed: %v", err)
	}
	if view.Pending != 10 || view.Completed != 0 || view.Quantity != 10 {
		t.Errorf("Expected 10 pending and 10 printed, got pending %d completed %d printed %d", view.Pending, view.Completed, view.Quantity)
	}

	view, err = f.service.RecordPrint(context.Background(), "Component Z", 4)
	if err != nil {
		t.Fatalf("RecordPrint failed: %v", err)
	}
	if view.Completed != 4 || view.Pending != 0 {
		t.Errorf("Expected printing without post-processing to complete directly, got completed %d pending %d", view.Completed, view.Pending)
	}

	if _, err := f.service.RecordPrint(context.Background(), "Screw", 1); err == nil {
		t.Error("Expected printing a purchased component to fail")
	}
	if _, err := f.service.RecordPrint(context.Background(), "Component X", 0); err == nil {
		t.Error("Expected a zero count to be rejected")
	}
}

func TestNoNegativeStock(t *testing.T) {
	f := newWorkshop(t)
	f.set(t, stock{
		completed: map[entities.ItemID]entities.Quantity{"component-x": 2, "component-y": 1},
		pending:   map[entities.ItemID]entities.Quantity{"component-y": 1},
		purchased: map[entities.ItemID]string{"screw": "3", "mailer": "0.5"},
	})
	ctx := context.Background()

	// a mix of valid and invalid operations; failures must not leave a trace
	f.service.AssemblePart(ctx, "Bowler", 3)
	f.service.AssemblePart(ctx, "Bowler", 2)
	f.service.AssemblePart(ctx, "Bowler", 1)
	f.service.CompletePostProcessing(ctx, "Component Y", 2)
	f.service.CompletePostProcessing(ctx, "Component Y", 1)
	f.service.AssembleProduct(ctx, "Kit", 2)
	f.service.AssembleProduct(ctx, "Kit", 1)
	f.service.AssembleProduct(ctx, "Kit", 1)

	levels := f.levels(t)
	for id, c := range levels.Printed {
		if c.PostProcessingCompleted < 0 || c.PostProcessingPending < 0 || c.Quantity < 0 {
			t.Errorf("Negative printed stock for %s: %+v", id, c)
		}
	}
	for id, c := range levels.Purchased {
		if c.Quantity.IsNegative() {
			t.Errorf("Negative purchased stock for %s: %s", id, c.Quantity)
		}
	}
	for id, p := range levels.Parts {
		if p.Assembled < 0 {
			t.Errorf("Negative assembled count for %s: %d", id, p.Assembled)
		}
	}
	if got := levels.ProductQuantity("kit"); got != 1 {
		t.Errorf("Expected exactly 1 kit, got %d", got)
	}
	if got := levels.Assembled("bowler"); got != 1 {
		t.Errorf("Expected 1 Bowler left after the kit, got %d", got)
	}
}

func TestEngine_ClosedStore(t *testing.T) {
	f := newWorkshop(t)
	f.store.Close()

	_, err := f.service.RecordPrint(context.Background(), "Component X", 1)
	var unavailable *entities.StorageUnavailableError
	if !errors.As(err, &unavailable) {
		t.Errorf("Expected StorageUnavailableError, got %v", err)
	}

	_, err = f.service.GetShortagePlan(context.Background(), 10)
	if !errors.As(err, &unavailable) {
		t.Errorf("Expected StorageUnavailableError from a query, got %v", err)
	}
}
