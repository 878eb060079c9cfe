package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PartRecipe is one required input of a part
type PartRecipe struct {
	PartID           ItemID          `json:"partId"`
	ComponentID      ItemID          `json:"componentId"`
	ComponentKind    ItemKind        `json:"componentType"`
	QuantityRequired decimal.Decimal `json:"quantityRequired"`
}

// NewPartRecipe creates a validated PartRecipe
func NewPartRecipe(partID, componentID ItemID, kind ItemKind, qty decimal.Decimal) (*PartRecipe, error) {
	if partID == "" {
		return nil, fmt.Errorf("part id cannot be empty")
	}
	if componentID == "" {
		return nil, fmt.Errorf("component id cannot be empty")
	}
	if partID == componentID {
		return nil, fmt.Errorf("part and component cannot be the same: %s", partID)
	}
	if kind != KindPrinted && kind != KindPurchased {
		return nil, fmt.Errorf("part input must be a printed or purchased component, got %s", kind)
	}
	if !qty.IsPositive() {
		return nil, fmt.Errorf("quantity required must be positive, got %s", qty)
	}
	if !qty.IsInteger() {
		return nil, fmt.Errorf("part quantity required must be a whole number, got %s", qty)
	}

	return &PartRecipe{
		PartID:           partID,
		ComponentID:      componentID,
		ComponentKind:    kind,
		QuantityRequired: qty,
	}, nil
}

// Key returns the storage key of the recipe row
func (r *PartRecipe) Key() string {
	return string(r.PartID) + "/" + string(r.ComponentID)
}

// ProductRecipe is one required input of a product. Inputs may be assembled
// parts or components consumed directly; only purchased inputs may carry a
// fractional quantity.
type ProductRecipe struct {
	ProductID        ItemID          `json:"productId"`
	InputID          ItemID          `json:"inputId"`
	InputKind        ItemKind        `json:"inputType"`
	QuantityRequired decimal.Decimal `json:"quantityRequired"`
}

// NewProductRecipe creates a validated ProductRecipe
func NewProductRecipe(productID, inputID ItemID, kind ItemKind, qty decimal.Decimal) (*ProductRecipe, error) {
	if productID == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if inputID == "" {
		return nil, fmt.Errorf("input id cannot be empty")
	}
	if productID == inputID {
		return nil, fmt.Errorf("product and input cannot be the same: %s", productID)
	}
	if kind == KindProduct {
		return nil, fmt.Errorf("product input cannot be another product: %s", inputID)
	}
	if !qty.IsPositive() {
		return nil, fmt.Errorf("quantity required must be positive, got %s", qty)
	}
	if kind != KindPurchased && !qty.IsInteger() {
		return nil, fmt.Errorf("%s quantity required must be a whole number, got %s", kind, qty)
	}

	return &ProductRecipe{
		ProductID:        productID,
		InputID:          inputID,
		InputKind:        kind,
		QuantityRequired: qty,
	}, nil
}

// Key returns the storage key of the recipe row
func (r *ProductRecipe) Key() string {
	return string(r.ProductID) + "/" + string(r.InputID)
}
