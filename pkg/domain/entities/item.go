package entities

import (
	"strings"
	"unicode"
)

// ItemID is the opaque identifier of a catalog entry. It is derived from the
// display name once, when the catalog is built.
type ItemID string

// Quantity represents an integer count of discrete units
type Quantity int64

// ItemKind identifies which stock table an item lives in
type ItemKind int

const (
	KindPrinted ItemKind = iota
	KindPurchased
	KindPart
	KindProduct
)

// String method for ItemKind enum
func (k ItemKind) String() string {
	switch k {
	case KindPrinted:
		return "printed"
	case KindPurchased:
		return "purchased"
	case KindPart:
		return "part"
	case KindProduct:
		return "product"
	default:
		return "unknown"
	}
}

// ParseItemKind is the inverse of ItemKind.String
func ParseItemKind(s string) (ItemKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "printed", "3d", "3d_component":
		return KindPrinted, true
	case "purchased":
		return KindPurchased, true
	case "part":
		return KindPart, true
	case "product":
		return KindProduct, true
	default:
		return 0, false
	}
}

// MarshalText encodes the kind by name so stored records stay readable
func (k ItemKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind written by MarshalText
func (k *ItemKind) UnmarshalText(text []byte) error {
	parsed, ok := ParseItemKind(string(text))
	if !ok {
		return &ValidationError{Detail: "unknown item kind: " + string(text)}
	}
	*k = parsed
	return nil
}

// NewItemID derives a stable identifier from a display name:
// "12cmx34cm self adhesive bags" becomes "12cmx34cm-self-adhesive-bags".
func NewItemID(name string) ItemID {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case r == '.':
			// keep decimal points in names like "0.4g Split Shot"
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return ItemID(strings.TrimSuffix(b.String(), "-"))
}
