package entities

import "testing"

func TestNewItemID(t *testing.T) {
	testCases := []struct {
		name     string
		expected ItemID
	}{
		{"Bowler Arm", "bowler-arm"},
		{"12cmx34cm self adhesive bags", "12cmx34cm-self-adhesive-bags"},
		{"0.4g Split Shot", "0.4g-split-shot"},
		{"Balls (3 varieties)", "balls-3-varieties"},
		{"Silk Printed Felt Sheets (pre-cut)", "silk-printed-felt-sheets-pre-cut"},
		{"  Padded  ", "padded"},
	}

	for _, tc := range testCases {
		if got := NewItemID(tc.name); got != tc.expected {
			t.Errorf("Expected id %q for %q, got %q", tc.expected, tc.name, got)
		}
	}
}

func TestItemKind_Text(t *testing.T) {
	for _, kind := range []ItemKind{KindPrinted, KindPurchased, KindPart, KindProduct} {
		text, err := kind.MarshalText()
		if err != nil {
			t.Fatalf("Expected %s to marshal: %v", kind, err)
		}
		var decoded ItemKind
		if err := decoded.UnmarshalText(text); err != nil {
			t.Fatalf("Expected %s to unmarshal: %v", text, err)
		}
		if decoded != kind {
			t.Errorf("Expected %s, got %s", kind, decoded)
		}
	}

	if kind, ok := ParseItemKind("3d"); !ok || kind != KindPrinted {
		t.Errorf("Expected 3d to parse as printed, got %s (%v)", kind, ok)
	}

	var bad ItemKind
	err := bad.UnmarshalText([]byte("widget"))
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("Expected ValidationError for unknown kind, got %v", err)
	}
}
