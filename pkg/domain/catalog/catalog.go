// Package catalog holds the static bill of materials: which components, parts
// and products exist, and what one unit of each part or product consumes.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

// Ref identifies one catalog entry
type Ref struct {
	ID   entities.ItemID
	Kind entities.ItemKind
	Name string
}

// Catalog is a validated, id-resolved Definition. It is immutable after Build.
type Catalog struct {
	refs    []Ref
	byID    map[entities.ItemID]int
	byName  map[string]int
	printed map[entities.ItemID]PrintedComponentDef
	units   map[entities.ItemID]PurchasedComponentDef

	partRecipes    map[entities.ItemID][]*entities.PartRecipe
	productRecipes map[entities.ItemID][]*entities.ProductRecipe

	committed  map[entities.ItemID]decimal.Decimal
	perProduct map[entities.ItemID]decimal.Decimal
	feeds      map[entities.ItemID][]entities.ItemID
}

// Build validates a definition and resolves every name to an id
func Build(def Definition) (*Catalog, error) {
	if err := NewValidator().Validate(def).Err(); err != nil {
		return nil, err
	}

	c := &Catalog{
		byID:           make(map[entities.ItemID]int),
		byName:         make(map[string]int),
		printed:        make(map[entities.ItemID]PrintedComponentDef),
		units:          make(map[entities.ItemID]PurchasedComponentDef),
		partRecipes:    make(map[entities.ItemID][]*entities.PartRecipe),
		productRecipes: make(map[entities.ItemID][]*entities.ProductRecipe),
		committed:      make(map[entities.ItemID]decimal.Decimal),
		perProduct:     make(map[entities.ItemID]decimal.Decimal),
		feeds:          make(map[entities.ItemID][]entities.ItemID),
	}

	for _, d := range def.PrintedComponents {
		id := c.add(d.Name, entities.KindPrinted)
		if d.BatchSize == 0 {
			d.BatchSize = DefaultBatchSize
		}
		if d.PrintTimeMinutes == 0 {
			d.PrintTimeMinutes = DefaultPrintTimeMinutes
		}
		c.printed[id] = d
	}
	for _, d := range def.PurchasedComponents {
		c.units[c.add(d.Name, entities.KindPurchased)] = d
	}
	for _, d := range def.Parts {
		c.add(d.Name, entities.KindPart)
	}
	for _, d := range def.Products {
		c.add(d.Name, entities.KindProduct)
	}

	for _, d := range def.Parts {
		partID := entities.NewItemID(d.Name)
		for _, input := range d.Inputs {
			ref := c.refs[c.byName[normalizeName(input.Name)]]
			row, err := entities.NewPartRecipe(partID, ref.ID, ref.Kind, input.Quantity)
			if err != nil {
				return nil, &entities.ValidationError{Detail: fmt.Sprintf("invalid catalog: %s: %v", d.Name, err)}
			}
			c.partRecipes[partID] = append(c.partRecipes[partID], row)
		}
	}
	for _, d := range def.Products {
		productID := entities.NewItemID(d.Name)
		for _, input := range d.Inputs {
			ref := c.refs[c.byName[normalizeName(input.Name)]]
			row, err := entities.NewProductRecipe(productID, ref.ID, ref.Kind, input.Quantity)
			if err != nil {
				return nil, &entities.ValidationError{Detail: fmt.Sprintf("invalid catalog: %s: %v", d.Name, err)}
			}
			c.productRecipes[productID] = append(c.productRecipes[productID], row)
		}
	}

	c.derive()
	return c, nil
}

// MustBuild is like Build but panics on an invalid definition
func MustBuild(def Definition) *Catalog {
	c, err := Build(def)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the built-in Complete Cricket Set catalog
func Default() *Catalog {
	return MustBuild(CricketSetDefinition())
}

// LoadFile reads a YAML definition from disk and builds it
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes
func Parse(data []byte) (*Catalog, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, &entities.ValidationError{Detail: fmt.Sprintf("invalid catalog yaml: %v", err)}
	}
	return Build(def)
}

func (c *Catalog) add(name string, kind entities.ItemKind) entities.ItemID {
	id := entities.NewItemID(name)
	c.byID[id] = len(c.refs)
	c.byName[normalizeName(name)] = len(c.refs)
	c.refs = append(c.refs, Ref{ID: id, Kind: kind, Name: strings.TrimSpace(name)})
	return id
}

// derive precomputes the per-product requirement of every component, the
// quantity of each part committed to product recipes, and which products each
// item feeds.
func (c *Catalog) derive() {
	for _, product := range c.Items(entities.KindProduct) {
		for _, row := range c.productRecipes[product.ID] {
			c.appendFeed(row.InputID, product.ID)
			switch row.InputKind {
			case entities.KindPart:
				c.committed[row.InputID] = c.committed[row.InputID].Add(row.QuantityRequired)
				for _, partRow := range c.partRecipes[row.InputID] {
					need := partRow.QuantityRequired.Mul(row.QuantityRequired)
					c.perProduct[partRow.ComponentID] = c.perProduct[partRow.ComponentID].Add(need)
					c.appendFeed(partRow.ComponentID, product.ID)
				}
			default:
				c.perProduct[row.InputID] = c.perProduct[row.InputID].Add(row.QuantityRequired)
			}
		}
	}
}

func (c *Catalog) appendFeed(id, product entities.ItemID) {
	for _, existing := range c.feeds[id] {
		if existing == product {
			return
		}
	}
	c.feeds[id] = append(c.feeds[id], product)
}

// Resolve looks an entry up by id or by display name, ignoring case
func (c *Catalog) Resolve(nameOrID string) (Ref, error) {
	if i, ok := c.byID[entities.ItemID(nameOrID)]; ok {
		return c.refs[i], nil
	}
	if i, ok := c.byName[normalizeName(nameOrID)]; ok {
		return c.refs[i], nil
	}
	if i, ok := c.byID[entities.NewItemID(nameOrID)]; ok {
		return c.refs[i], nil
	}
	return Ref{}, &entities.NotFoundError{Kind: "catalog item", ID: nameOrID}
}

// Lookup returns the entry for an id
func (c *Catalog) Lookup(id entities.ItemID) (Ref, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Ref{}, false
	}
	return c.refs[i], true
}

// Position returns the declaration order of an id, used for stable listings
func (c *Catalog) Position(id entities.ItemID) int {
	if i, ok := c.byID[id]; ok {
		return i
	}
	return len(c.refs)
}

// Items lists the entries of one kind in declaration order
func (c *Catalog) Items(kind entities.ItemKind) []Ref {
	var out []Ref
	for _, r := range c.refs {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// PartRecipe returns the recipe rows of a part
func (c *Catalog) PartRecipe(partID entities.ItemID) []*entities.PartRecipe {
	return c.partRecipes[partID]
}

// ProductRecipe returns the recipe rows of a product
func (c *Catalog) ProductRecipe(productID entities.ItemID) []*entities.ProductRecipe {
	return c.productRecipes[productID]
}

// CommittedToProducts is the sum of quantityRequired across every product
// recipe that references the part.
func (c *Catalog) CommittedToProducts(partID entities.ItemID) decimal.Decimal {
	return c.committed[partID]
}

// PerProduct is the quantity of a component consumed per finished product,
// directly and through parts, summed over all products.
func (c *Catalog) PerProduct(componentID entities.ItemID) decimal.Decimal {
	return c.perProduct[componentID]
}

// ProductsFed lists the products that consume the item directly or through a part
func (c *Catalog) ProductsFed(id entities.ItemID) []entities.ItemID {
	return c.feeds[id]
}

// PartsUsing lists the parts whose recipe contains the component
func (c *Catalog) PartsUsing(componentID entities.ItemID) []entities.ItemID {
	var out []entities.ItemID
	for _, part := range c.Items(entities.KindPart) {
		for _, row := range c.partRecipes[part.ID] {
			if row.ComponentID == componentID {
				out = append(out, part.ID)
				break
			}
		}
	}
	return out
}

// Seed is the set of zero-stock records materialized into a fresh store
type Seed struct {
	Printed        []*entities.PrintedComponent
	Purchased      []*entities.PurchasedComponent
	Parts          []*entities.Part
	Products       []*entities.Product
	PartRecipes    []*entities.PartRecipe
	ProductRecipes []*entities.ProductRecipe
}

// Seed returns fresh records for every catalog entry
func (c *Catalog) Seed() (*Seed, error) {
	seed := &Seed{}
	for _, r := range c.refs {
		switch r.Kind {
		case entities.KindPrinted:
			d := c.printed[r.ID]
			requires := true
			if d.RequiresPostProcessing != nil {
				requires = *d.RequiresPostProcessing
			}
			comp, err := entities.NewPrintedComponent(r.ID, r.Name, d.BatchSize, d.PrintTimeMinutes, requires)
			if err != nil {
				return nil, fmt.Errorf("seed %s: %w", r.Name, err)
			}
			seed.Printed = append(seed.Printed, comp)
		case entities.KindPurchased:
			d := c.units[r.ID]
			comp, err := entities.NewPurchasedComponent(r.ID, r.Name, d.Unit, d.LowStockThreshold)
			if err != nil {
				return nil, fmt.Errorf("seed %s: %w", r.Name, err)
			}
			seed.Purchased = append(seed.Purchased, comp)
		case entities.KindPart:
			part, err := entities.NewPart(r.ID, r.Name)
			if err != nil {
				return nil, fmt.Errorf("seed %s: %w", r.Name, err)
			}
			seed.Parts = append(seed.Parts, part)
			for _, row := range c.partRecipes[r.ID] {
				copied := *row
				seed.PartRecipes = append(seed.PartRecipes, &copied)
			}
		case entities.KindProduct:
			product, err := entities.NewProduct(r.ID, r.Name)
			if err != nil {
				return nil, fmt.Errorf("seed %s: %w", r.Name, err)
			}
			seed.Products = append(seed.Products, product)
			for _, row := range c.productRecipes[r.ID] {
				copied := *row
				seed.ProductRecipes = append(seed.ProductRecipes, &copied)
			}
		}
	}
	return seed, nil
}
