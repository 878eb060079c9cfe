package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/vsinha/shopfloor/pkg/application/dto"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/domain/repositories"
	"github.com/vsinha/shopfloor/pkg/infrastructure/backup"
	"github.com/vsinha/shopfloor/pkg/infrastructure/events"
)

func quantityPtr(q entities.Quantity) *entities.Quantity {
	return &q
}

func TestTargetProductsBuffer(t *testing.T) {
	f := newWorkshop(t)
	ctx := context.Background()

	got, err := f.service.GetTargetProductsBuffer(ctx)
	if err != nil {
		t.Fatalf("GetTargetProductsBuffer failed: %v", err)
	}
	if got != repositories.DefaultTargetProductsBuffer {
		t.Errorf("Expected default %d, got %d", repositories.DefaultTargetProductsBuffer, got)
	}

	tests := []struct {
		value int
		valid bool
	}{
		{0, false},
		{1, true},
		{25, true},
		{50, true},
		{51, false},
		{-3, false},
	}
	for _, tt := range tests {
		err := f.service.SetTargetProductsBuffer(ctx, tt.value)
		if tt.valid && err != nil {
			t.Errorf("Expected %d to be accepted, got %v", tt.value, err)
		}
		if !tt.valid {
			var validation *entities.ValidationError
			if !errors.As(err, &validation) {
				t.Errorf("Expected ValidationError for %d, got %v", tt.value, err)
			}
		}
	}

	// rejected values must not be clamped into the store
	got, _ = f.service.GetTargetProductsBuffer(ctx)
	if got != 50 {
		t.Errorf("Expected the last valid value 50, got %d", got)
	}
}

func TestListViews(t *testing.T) {
	f := newWorkshop(t)
	f.set(t, stock{
		completed: map[entities.ItemID]entities.Quantity{"component-x": 4},
		purchased: map[entities.ItemID]string{"screw": "2"},
		assembled: map[entities.ItemID]entities.Quantity{"bowler": 3},
	})
	ctx := context.Background()

	components, err := f.service.ListComponents(ctx)
	if err != nil {
		t.Fatalf("ListComponents failed: %v", err)
	}
	var names []string
	for _, c := range components {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"Component X", "Component Y", "Component Z"}, names); diff != "" {
		t.Errorf("Unexpected components (-want +got):\n%s", diff)
	}
	if components[2].PerProduct != 0 || components[0].PerProduct != 1 {
		t.Errorf("Expected per-product 1 for X and 0 for Z, got %d and %d", components[0].PerProduct, components[2].PerProduct)
	}

	purchased, err := f.service.ListPurchased(ctx)
	if err != nil {
		t.Fatalf("ListPurchased failed: %v", err)
	}
	if len(purchased) != 2 || !purchased[1].PerProduct.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("Expected Mailer at 0.5 per product, got %+v", purchased)
	}

	parts, err := f.service.ListParts(ctx)
	if err != nil {
		t.Fatalf("ListParts failed: %v", err)
	}
	want := []dto.PartView{{
		ID: "bowler", Name: "Bowler", Assembled: 3, Available: 2,
		Committed: decimal.NewFromInt(1), Capacity: 2,
	}}
	if diff := cmp.Diff(want, parts); diff != "" {
		t.Errorf("Unexpected parts (-want +got):\n%s", diff)
	}

	products, err := f.service.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 1 || products[0].ID != "kit" {
		t.Errorf("Expected the Kit product, got %+v", products)
	}

	recipes, err := f.service.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("ListRecipes failed: %v", err)
	}
	if len(recipes) != 5 {
		t.Errorf("Expected 5 recipe rows, got %d", len(recipes))
	}
}

func TestUpdateComponentStock(t *testing.T) {
	f := newWorkshop(t)
	ctx := context.Background()

	batch := 8
	view, err := f.service.UpdateComponentStock(ctx, "Component X", dto.ComponentUpdate{
		Completed: quantityPtr(7),
		Pending:   quantityPtr(2),
		BatchSize: &batch,
	})
	if err != nil {
		t.Fatalf("UpdateComponentStock failed: %v", err)
	}
	if view.Completed != 7 || view.Pending != 2 || view.BatchSize != 8 {
		t.Errorf("Expected 7 completed, 2 pending, batch 8, got %+v", view)
	}
	if view.PrintTimeMinutes != 30 {
		t.Errorf("Expected untouched print time 30, got %d", view.PrintTimeMinutes)
	}

	_, err = f.service.UpdateComponentStock(ctx, "Component X", dto.ComponentUpdate{Pending: quantityPtr(-1)})
	var invalid *entities.InvalidQuantityError
	if !errors.As(err, &invalid) {
		t.Errorf("Expected InvalidQuantityError, got %v", err)
	}

	_, err = f.service.UpdateComponentStock(ctx, "Screw", dto.ComponentUpdate{Completed: quantityPtr(1)})
	var notFound *entities.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError for a purchased name, got %v", err)
	}

	if diff := cmp.Diff([]string{events.ComponentAdjustedEvent}, f.publisher.types()); diff != "" {
		t.Errorf("Unexpected events (-want +got):\n%s", diff)
	}
}

func TestUpdatePurchasedStock(t *testing.T) {
	f := newWorkshop(t)
	ctx := context.Background()

	view, err := f.service.UpdatePurchasedStock(ctx, "screw", decimal.RequireFromString("12.5"), nil)
	if err != nil {
		t.Fatalf("UpdatePurchasedStock failed: %v", err)
	}
	if !view.Quantity.Equal(decimal.RequireFromString("12.5")) || view.LowStockThreshold != nil {
		t.Errorf("Expected 12.5 with no threshold, got %+v", view)
	}

	_, err = f.service.UpdatePurchasedStock(ctx, "screw", decimal.NewFromInt(-1), nil)
	var invalid *entities.InvalidQuantityError
	if !errors.As(err, &invalid) {
		t.Errorf("Expected InvalidQuantityError, got %v", err)
	}
}

func TestResetAllData(t *testing.T) {
	f := newWorkshop(t)
	ctx := context.Background()
	f.set(t, stock{
		completed: map[entities.ItemID]entities.Quantity{"component-x": 4},
		pending:   map[entities.ItemID]entities.Quantity{"component-y": 4},
		purchased: map[entities.ItemID]string{"screw": "9"},
		assembled: map[entities.ItemID]entities.Quantity{"bowler": 2},
		products:  map[entities.ItemID]entities.Quantity{"kit": 1},
	})
	if err := f.service.SetTargetProductsBuffer(ctx, 20); err != nil {
		t.Fatalf("SetTargetProductsBuffer failed: %v", err)
	}

	if err := f.service.ResetAllData(ctx); err != nil {
		t.Fatalf("ResetAllData failed: %v", err)
	}

	levels := f.levels(t)
	if levels.OnHand("component-x") != 0 || levels.OnHand("component-y") != 0 {
		t.Error("Expected printed stock to be zero")
	}
	if !levels.PurchasedQuantity("screw").IsZero() || levels.Assembled("bowler") != 0 || levels.ProductQuantity("kit") != 0 {
		t.Error("Expected all stock to be zero")
	}
	if levels.Printed["component-x"].BatchSize != 10 {
		t.Error("Expected component attributes to survive a reset")
	}
	if buffer, _ := f.service.GetTargetProductsBuffer(ctx); buffer != 20 {
		t.Errorf("Expected settings to survive a reset, got buffer %d", buffer)
	}
	recipes, _ := f.service.ListRecipes(ctx)
	if len(recipes) != 5 {
		t.Errorf("Expected recipes to survive a reset, got %d rows", len(recipes))
	}
}

func TestBackupRoundTrip(t *testing.T) {
	source := newWorkshop(t)
	ctx := context.Background()
	source.set(t, stock{
		completed: map[entities.ItemID]entities.Quantity{"component-x": 4},
		pending:   map[entities.ItemID]entities.Quantity{"component-y": 6},
		purchased: map[entities.ItemID]string{"mailer": "1.5"},
		assembled: map[entities.ItemID]entities.Quantity{"bowler": 2},
		products:  map[entities.ItemID]entities.Quantity{"kit": 3},
	})

	doc, err := source.service.ExportBackup(ctx)
	if err != nil {
		t.Fatalf("ExportBackup failed: %v", err)
	}
	doc.Products = append(doc.Products, &entities.Product{ID: "retired-set", Name: "Retired Set", Quantity: 4})

	target := newWorkshop(t)
	summary, err := target.service.ImportBackup(ctx, doc)
	if err != nil {
		t.Fatalf("ImportBackup failed: %v", err)
	}
	want := &dto.ImportSummary{Printed: 3, Purchased: 2, Parts: 1, Products: 1, Skipped: []string{"retired-set"}}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("Unexpected summary (-want +got):\n%s", diff)
	}

	levels := target.levels(t)
	if levels.Completed("component-x") != 4 || levels.Pending("component-y") != 6 {
		t.Error("Expected printed stock to be restored")
	}
	if !levels.PurchasedQuantity("mailer").Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("Expected 1.5 mailers, got %s", levels.PurchasedQuantity("mailer"))
	}
	if levels.Assembled("bowler") != 2 || levels.ProductQuantity("kit") != 3 {
		t.Error("Expected parts and products to be restored")
	}
	if diff := cmp.Diff([]string{events.BackupImportedEvent}, target.publisher.types()); diff != "" {
		t.Errorf("Unexpected events (-want +got):\n%s", diff)
	}
}

func TestImportBackup_RejectsNegativeStock(t *testing.T) {
	f := newWorkshop(t)
	doc := backup.New(nil, nil, []*entities.Part{{ID: "bowler", Name: "Bowler", Assembled: -1}}, nil, f.service.now())

	_, err := f.service.ImportBackup(context.Background(), doc)
	var validation *entities.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if f.levels(t).Assembled("bowler") != 0 {
		t.Error("Expected nothing to be written")
	}
}

func TestImportBackup_RejectsNullRecords(t *testing.T) {
	f := newWorkshop(t)
	f.set(t, stock{completed: map[entities.ItemID]entities.Quantity{"component-x": 4}})
	doc := backup.New(
		[]*entities.PrintedComponent{{ID: "component-x", Name: "Component X", PostProcessingCompleted: 9}, nil},
		nil, nil, nil, f.service.now(),
	)

	_, err := f.service.ImportBackup(context.Background(), doc)
	var validation *entities.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if validation.Fields["components3d[1]"] != "null record" {
		t.Errorf("Expected components3d[1] to be reported, got %v", validation.Fields)
	}
	if f.levels(t).Completed("component-x") != 4 {
		t.Error("Expected nothing to be written")
	}
}

func TestImportStockLevels(t *testing.T) {
	f := newWorkshop(t)
	ctx := context.Background()

	summary, err := f.service.ImportStockLevels(ctx, []dto.StockLevelRow{
		{Line: 2, Name: "Component X", Quantity: decimal.NewFromInt(6), Pending: quantityPtr(3)},
		{Line: 3, Name: "mailer", Quantity: decimal.RequireFromString("2.5")},
		{Line: 4, Name: "Kit", Quantity: decimal.NewFromInt(1)},
	})
	if err != nil {
		t.Fatalf("ImportStockLevels failed: %v", err)
	}
	if summary.Printed != 1 || summary.Purchased != 1 {
		t.Errorf("Expected one printed and one purchased update, got %+v", summary)
	}
	if diff := cmp.Diff([]string{"Kit"}, summary.Skipped); diff != "" {
		t.Errorf("Unexpected skipped rows (-want +got):\n%s", diff)
	}

	levels := f.levels(t)
	if levels.Completed("component-x") != 6 || levels.Pending("component-x") != 3 {
		t.Errorf("Expected 6 completed and 3 pending, got %d and %d", levels.Completed("component-x"), levels.Pending("component-x"))
	}

	_, err = f.service.ImportStockLevels(ctx, []dto.StockLevelRow{
		{Line: 2, Name: "Component Y", Quantity: decimal.NewFromInt(9)},
		{Line: 3, Name: "Unobtainium", Quantity: decimal.NewFromInt(1)},
	})
	var notFound *entities.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
	if f.levels(t).Completed("component-y") != 0 {
		t.Error("Expected a failed import to write nothing")
	}
}
