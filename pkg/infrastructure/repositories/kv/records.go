// Package kv implements the inventory transaction API on top of any ordered
// key/value backend. Each table is a bucket of JSON documents keyed by id.
package kv

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/domain/repositories"
)

// Table names shared by every backend
const (
	TablePrinted        = "printed_components"
	TablePurchased      = "purchased_components"
	TableParts          = "parts"
	TableProducts       = "products"
	TablePartRecipes    = "part_recipes"
	TableProductRecipes = "product_recipes"
	TableSettings       = "settings"
)

// Tables lists every table a backend must provide
var Tables = []string{
	TablePrinted,
	TablePurchased,
	TableParts,
	TableProducts,
	TablePartRecipes,
	TableProductRecipes,
	TableSettings,
}

// Bucket is the minimal operation set a backend transaction exposes. Get
// returns nil data and no error for a missing key.
type Bucket interface {
	Get(table, key string) ([]byte, error)
	Put(table, key string, data []byte) error
	ForEach(table string, fn func(key string, data []byte) error) error
}

// Tx adapts a Bucket to repositories.InventoryTx
type Tx struct {
	b Bucket
}

// NewTx wraps a backend transaction
func NewTx(b Bucket) *Tx {
	return &Tx{b: b}
}

// Verify interface compliance
var _ repositories.InventoryTx = (*Tx)(nil)

func (t *Tx) get(table, key, kind string, out interface{}) error {
	data, err := t.b.Get(table, key)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s %s", kind, key)
	}
	if data == nil {
		return &entities.NotFoundError{Kind: kind, ID: key}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to unmarshal %s %s", kind, key)
	}
	return nil
}

func (t *Tx) put(table, key, kind string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s %s", kind, key)
	}
	if err := t.b.Put(table, key, data); err != nil {
		return errors.Wrapf(err, "failed to write %s %s", kind, key)
	}
	return nil
}

// list decodes every document in a table, sorted by key. Backend iteration
// order is not relied on.
func list[T any](b Bucket, table string) ([]*T, error) {
	var out []*T
	keys := make([]string, 0)
	rows := make(map[string]*T)
	err := b.ForEach(table, func(key string, data []byte) error {
		v := new(T)
		if err := json.Unmarshal(data, v); err != nil {
			return errors.Wrapf(err, "failed to unmarshal %s row %s", table, key)
		}
		keys = append(keys, key)
		rows[key] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, rows[k])
	}
	return out, nil
}

func (t *Tx) GetPrintedComponent(id entities.ItemID) (*entities.PrintedComponent, error) {
	var c entities.PrintedComponent
	if err := t.get(TablePrinted, string(id), "printed component", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *Tx) ListPrintedComponents() ([]*entities.PrintedComponent, error) {
	return list[entities.PrintedComponent](t.b, TablePrinted)
}

func (t *Tx) PutPrintedComponent(c *entities.PrintedComponent) error {
	return t.put(TablePrinted, string(c.ID), "printed component", c)
}

func (t *Tx) GetPurchasedComponent(id entities.ItemID) (*entities.PurchasedComponent, error) {
	var c entities.PurchasedComponent
	if err := t.get(TablePurchased, string(id), "purchased component", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *Tx) ListPurchasedComponents() ([]*entities.PurchasedComponent, error) {
	return list[entities.PurchasedComponent](t.b, TablePurchased)
}

func (t *Tx) PutPurchasedComponent(c *entities.PurchasedComponent) error {
	return t.put(TablePurchased, string(c.ID), "purchased component", c)
}

func (t *Tx) GetPart(id entities.ItemID) (*entities.Part, error) {
	var p entities.Part
	if err := t.get(TableParts, string(id), "part", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *Tx) ListParts() ([]*entities.Part, error) {
	return list[entities.Part](t.b, TableParts)
}

func (t *Tx) PutPart(p *entities.Part) error {
	return t.put(TableParts, string(p.ID), "part", p)
}

func (t *Tx) GetProduct(id entities.ItemID) (*entities.Product, error) {
	var p entities.Product
	if err := t.get(TableProducts, string(id), "product", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *Tx) ListProducts() ([]*entities.Product, error) {
	return list[entities.Product](t.b, TableProducts)
}

func (t *Tx) PutProduct(p *entities.Product) error {
	return t.put(TableProducts, string(p.ID), "product", p)
}

func (t *Tx) ListPartRecipes() ([]*entities.PartRecipe, error) {
	return list[entities.PartRecipe](t.b, TablePartRecipes)
}

func (t *Tx) PutPartRecipe(r *entities.PartRecipe) error {
	return t.put(TablePartRecipes, r.Key(), "part recipe", r)
}

func (t *Tx) ListProductRecipes() ([]*entities.ProductRecipe, error) {
	return list[entities.ProductRecipe](t.b, TableProductRecipes)
}

func (t *Tx) PutProductRecipe(r *entities.ProductRecipe) error {
	return t.put(TableProductRecipes, r.Key(), "product recipe", r)
}

func (t *Tx) GetSetting(key string) (string, bool, error) {
	data, err := t.b.Get(TableSettings, key)
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to read setting %s", key)
	}
	if data == nil {
		return "", false, nil
	}
	return string(data), true, nil
}

func (t *Tx) PutSetting(key, value string) error {
	if err := t.b.Put(TableSettings, key, []byte(value)); err != nil {
		return errors.Wrapf(err, "failed to write setting %s", key)
	}
	return nil
}
