package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPrintedComponent_Validation(t *testing.T) {
	comp, err := NewPrintedComponent("bowler-arm", "Bowler Arm", 10, 45, true)
	if err != nil {
		t.Fatalf("Expected valid component creation to succeed: %v", err)
	}
	if comp.Quantity != 0 || comp.OnHand() != 0 {
		t.Errorf("Expected new component to have no stock, got %d printed, %d on hand", comp.Quantity, comp.OnHand())
	}

	testCases := []struct {
		name        string
		id          ItemID
		compName    string
		batchSize   int
		printTime   int
		expectError string
	}{
		{"empty id", "", "Bowler Arm", 10, 45, "component id cannot be empty"},
		{"empty name", "bowler-arm", "", 10, 45, "component name cannot be empty"},
		{"zero batch", "bowler-arm", "Bowler Arm", 0, 45, "batch size must be positive, got 0"},
		{"negative print time", "bowler-arm", "Bowler Arm", 10, -1, "print time cannot be negative, got -1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPrintedComponent(tc.id, tc.compName, tc.batchSize, tc.printTime, true)
			if err == nil {
				t.Fatalf("Expected error %q, got nil", tc.expectError)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error %q, got %q", tc.expectError, err.Error())
			}
		})
	}
}

func TestPrintedComponent_Stages(t *testing.T) {
	comp := &PrintedComponent{Quantity: 12, PostProcessingCompleted: 7, PostProcessingPending: 4}

	if comp.Usable() != 7 {
		t.Errorf("Expected usable 7, got %d", comp.Usable())
	}
	if comp.OnHand() != 11 {
		t.Errorf("Expected on hand 11, got %d", comp.OnHand())
	}
}

func TestPrintedComponent_IsLow(t *testing.T) {
	testCases := []struct {
		completed Quantity
		pending   Quantity
		expected  bool
	}{
		{0, 0, true},
		{9, 40, true},
		{10, 0, false},
		{25, 0, false},
	}
	for _, tc := range testCases {
		comp := &PrintedComponent{ID: "bowler-arm", Name: "Bowler Arm", PostProcessingCompleted: tc.completed, PostProcessingPending: tc.pending}
		if comp.IsLow() != tc.expected {
			t.Errorf("Expected IsLow %v with %d completed and %d pending, got %v", tc.expected, tc.completed, tc.pending, comp.IsLow())
		}
	}
}

func TestPurchasedComponent_IsLow(t *testing.T) {
	threshold := decimal.NewFromInt(5)

	comp, err := NewPurchasedComponent("bubble-mailers", "Bubble Mailers", "pieces", &threshold)
	if err != nil {
		t.Fatalf("Expected valid component creation to succeed: %v", err)
	}

	testCases := []struct {
		quantity string
		expected bool
	}{
		{"0", true},
		{"4.5", true},
		{"5", false},
		{"20", false},
	}
	for _, tc := range testCases {
		comp.Quantity = decimal.RequireFromString(tc.quantity)
		if comp.IsLow() != tc.expected {
			t.Errorf("Expected IsLow %v at quantity %s, got %v", tc.expected, tc.quantity, comp.IsLow())
		}
	}

	unmonitored, err := NewPurchasedComponent("string", "String", "pieces", nil)
	if err != nil {
		t.Fatalf("Expected component without threshold to be valid: %v", err)
	}
	if unmonitored.IsLow() {
		t.Errorf("Expected component without threshold never to be low")
	}

	negative := decimal.NewFromInt(-1)
	if _, err := NewPurchasedComponent("string", "String", "pieces", &negative); err == nil {
		t.Errorf("Expected negative threshold to be rejected")
	}
	if _, err := NewPurchasedComponent("string", "String", "", nil); err == nil {
		t.Errorf("Expected empty unit to be rejected")
	}
}

func TestPartAndProduct_Validation(t *testing.T) {
	if _, err := NewPart("", "Bowler"); err == nil {
		t.Errorf("Expected empty part id to be rejected")
	}
	if _, err := NewPart("bowler", ""); err == nil {
		t.Errorf("Expected empty part name to be rejected")
	}
	if _, err := NewProduct("", "Complete Cricket Set"); err == nil {
		t.Errorf("Expected empty product id to be rejected")
	}

	product, err := NewProduct("complete-cricket-set", "Complete Cricket Set")
	if err != nil {
		t.Fatalf("Expected valid product creation to succeed: %v", err)
	}
	if product.Quantity != 0 {
		t.Errorf("Expected new product to have quantity 0, got %d", product.Quantity)
	}
}
