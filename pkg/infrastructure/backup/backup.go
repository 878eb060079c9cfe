// Package backup reads and writes the JSON snapshot of the four stock tables.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

// Top-level keys every document must carry
const (
	KeyComponents3D        = "components3d"
	KeyPurchasedComponents = "purchasedComponents"
	KeyParts               = "parts"
	KeyProducts            = "products"
)

var requiredCollections = []string{KeyComponents3D, KeyPurchasedComponents, KeyParts, KeyProducts}

// Document is a full snapshot of stock. Recipes and settings are not part of
// it; they come from the catalog and configuration.
type Document struct {
	ExportID            string                         `json:"exportId"`
	ExportDate          time.Time                      `json:"exportDate"`
	Components3D        []*entities.PrintedComponent   `json:"components3d"`
	PurchasedComponents []*entities.PurchasedComponent `json:"purchasedComponents"`
	Parts               []*entities.Part               `json:"parts"`
	Products            []*entities.Product            `json:"products"`
}

// New stamps a snapshot with a fresh export id
func New(
	printed []*entities.PrintedComponent,
	purchased []*entities.PurchasedComponent,
	parts []*entities.Part,
	products []*entities.Product,
	exportedAt time.Time,
) *Document {
	doc := &Document{
		ExportID:            uuid.NewString(),
		ExportDate:          exportedAt.UTC(),
		Components3D:        printed,
		PurchasedComponents: purchased,
		Parts:               parts,
		Products:            products,
	}
	// encode empty tables as [] so the document stays importable
	if doc.Components3D == nil {
		doc.Components3D = []*entities.PrintedComponent{}
	}
	if doc.PurchasedComponents == nil {
		doc.PurchasedComponents = []*entities.PurchasedComponent{}
	}
	if doc.Parts == nil {
		doc.Parts = []*entities.Part{}
	}
	if doc.Products == nil {
		doc.Products = []*entities.Product{}
	}
	return doc
}

// FileName is the default name of an export taken at t
func FileName(t time.Time) string {
	return "inventory-backup-" + t.UTC().Format("2006-01-02") + ".json"
}

// Write encodes doc as indented JSON
func Write(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(doc), "failed to encode backup")
}

// WriteFile writes doc to path, creating parent directories
func WriteFile(path string, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create backup directory")
	}
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0o644), "failed to write backup %s", path)
}

// Read decodes a document. A document missing any of the four collections
// is rejected with a ValidationError naming the missing keys.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read backup")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &entities.ValidationError{Detail: "backup is not a JSON object: " + err.Error()}
	}

	missing := map[string]string{}
	for _, key := range requiredCollections {
		value, ok := raw[key]
		if !ok || string(bytes.TrimSpace(value)) == "null" {
			missing[key] = "missing"
		}
	}
	if len(missing) > 0 {
		return nil, &entities.ValidationError{Detail: "invalid backup format", Fields: missing}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &entities.ValidationError{Detail: "invalid backup format: " + err.Error()}
	}
	if err := doc.CheckRecords(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// CheckRecords rejects null entries, which decode to nil records. Fields are
// keyed by collection and index, e.g. "parts[2]".
func (d *Document) CheckRecords() error {
	fields := map[string]string{}
	null := func(key string, i int) {
		fields[fmt.Sprintf("%s[%d]", key, i)] = "null record"
	}
	for i, r := range d.Components3D {
		if r == nil {
			null(KeyComponents3D, i)
		}
	}
	for i, r := range d.PurchasedComponents {
		if r == nil {
			null(KeyPurchasedComponents, i)
		}
	}
	for i, r := range d.Parts {
		if r == nil {
			null(KeyParts, i)
		}
	}
	for i, r := range d.Products {
		if r == nil {
			null(KeyProducts, i)
		}
	}
	if len(fields) > 0 {
		return &entities.ValidationError{Detail: "invalid backup format", Fields: fields}
	}
	return nil
}

// ReadFile opens and decodes a backup file
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open backup %s", path)
	}
	defer f.Close()
	return Read(f)
}

// MissingKeys returns the sorted collections a ValidationError from Read
// reports as absent. Other field errors are left out.
func MissingKeys(err *entities.ValidationError) []string {
	keys := make([]string, 0, len(err.Fields))
	for k, reason := range err.Fields {
		if reason == "missing" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
