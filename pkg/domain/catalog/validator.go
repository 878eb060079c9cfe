package catalog

import (
	"fmt"
	"strings"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

// Validator checks a catalog definition for structural problems before it is
// resolved into ids.
type Validator struct{}

// NewValidator creates a new catalog validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidationResult contains the results of catalog validation
type ValidationResult struct {
	DuplicateNames  []string
	DuplicateInputs []string
	UnknownInputs   []string
	Errors          []string
}

// Valid reports whether no problems were found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err converts the result into a ValidationError, or nil when valid
func (r *ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return &entities.ValidationError{
		Detail: "invalid catalog: " + strings.Join(r.Errors, "; "),
	}
}

// Validate performs all checks on a definition
func (v *Validator) Validate(def Definition) *ValidationResult {
	result := &ValidationResult{
		DuplicateNames:  make([]string, 0),
		DuplicateInputs: make([]string, 0),
		UnknownInputs:   make([]string, 0),
		Errors:          make([]string, 0),
	}

	kinds := v.indexNames(def, result)

	for _, c := range def.PrintedComponents {
		if c.BatchSize < 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: batch size must be positive, got %d", c.Name, c.BatchSize))
		}
		if c.PrintTimeMinutes < 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: print time cannot be negative, got %d", c.Name, c.PrintTimeMinutes))
		}
	}
	for _, c := range def.PurchasedComponents {
		if strings.TrimSpace(c.Unit) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: unit cannot be empty", c.Name))
		}
	}

	for _, p := range def.Parts {
		v.checkInputs(p, entities.KindPart, kinds, result)
	}
	for _, p := range def.Products {
		v.checkInputs(p, entities.KindProduct, kinds, result)
	}

	if len(def.Products) == 0 {
		result.Errors = append(result.Errors, "catalog must define at least one product")
	}

	return result
}

// indexNames maps every declared name to its kind. Names and derived ids must
// both be unique across all four kinds.
func (v *Validator) indexNames(def Definition, result *ValidationResult) map[string]entities.ItemKind {
	kinds := make(map[string]entities.ItemKind)
	ids := make(map[entities.ItemID]string)

	add := func(name string, kind entities.ItemKind) {
		if strings.TrimSpace(name) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s name cannot be empty", kind))
			return
		}
		key := normalizeName(name)
		if _, exists := kinds[key]; exists {
			result.DuplicateNames = append(result.DuplicateNames, name)
			result.Errors = append(result.Errors, fmt.Sprintf("duplicate name: %s", name))
			return
		}
		id := entities.NewItemID(name)
		if other, exists := ids[id]; exists {
			result.DuplicateNames = append(result.DuplicateNames, name)
			result.Errors = append(result.Errors, fmt.Sprintf("names %q and %q resolve to the same id %s", other, name, id))
			return
		}
		kinds[key] = kind
		ids[id] = name
	}

	for _, c := range def.PrintedComponents {
		add(c.Name, entities.KindPrinted)
	}
	for _, c := range def.PurchasedComponents {
		add(c.Name, entities.KindPurchased)
	}
	for _, p := range def.Parts {
		add(p.Name, entities.KindPart)
	}
	for _, p := range def.Products {
		add(p.Name, entities.KindProduct)
	}
	return kinds
}

func (v *Validator) checkInputs(def AssemblyDef, owner entities.ItemKind, kinds map[string]entities.ItemKind, result *ValidationResult) {
	if len(def.Inputs) == 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("%s %s has no inputs", owner, def.Name))
		return
	}

	seen := make(map[string]bool)
	for _, input := range def.Inputs {
		key := normalizeName(input.Name)
		if seen[key] {
			result.DuplicateInputs = append(result.DuplicateInputs, def.Name+"/"+input.Name)
			result.Errors = append(result.Errors, fmt.Sprintf("%s lists %s more than once", def.Name, input.Name))
			continue
		}
		seen[key] = true

		kind, ok := kinds[key]
		if !ok {
			result.UnknownInputs = append(result.UnknownInputs, input.Name)
			result.Errors = append(result.Errors, fmt.Sprintf("%s references unknown input %s", def.Name, input.Name))
			continue
		}

		if !input.Quantity.IsPositive() {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: quantity of %s must be positive, got %s", def.Name, input.Name, input.Quantity))
			continue
		}

		switch owner {
		case entities.KindPart:
			if kind != entities.KindPrinted && kind != entities.KindPurchased {
				result.Errors = append(result.Errors, fmt.Sprintf("part %s may only consume components, got %s %s", def.Name, kind, input.Name))
			} else if !input.Quantity.IsInteger() {
				result.Errors = append(result.Errors, fmt.Sprintf("part %s: quantity of %s must be a whole number, got %s", def.Name, input.Name, input.Quantity))
			}
		case entities.KindProduct:
			if kind == entities.KindProduct {
				result.Errors = append(result.Errors, fmt.Sprintf("product %s cannot consume product %s", def.Name, input.Name))
			} else if kind != entities.KindPurchased && !input.Quantity.IsInteger() {
				result.Errors = append(result.Errors, fmt.Sprintf("product %s: quantity of %s %s must be a whole number, got %s", def.Name, kind, input.Name, input.Quantity))
			}
		}
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
