package entities

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// InsufficientStockError is returned when a single-stage move would drive a
// stock field negative.
type InsufficientStockError struct {
	Item      string
	Stage     string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient %s stock for %s (need %s, have %s)", e.Stage, e.Item, e.Requested, e.Available)
}

// InsufficientComponentsError is returned when an assembly check fails. Input
// names the first recipe row that could not be satisfied.
type InsufficientComponentsError struct {
	Target    string
	Input     string
	InputKind ItemKind
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientComponentsError) Error() string {
	return fmt.Sprintf("cannot assemble %s: insufficient %s %s (need %s, have %s)",
		e.Target, e.InputKind, e.Input, e.Required, e.Available)
}

// InvalidQuantityError is returned for non-positive or malformed quantities
type InvalidQuantityError struct {
	Field string
	Value string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity for %s: %s", e.Field, e.Value)
}

// ValidationError reports out-of-range configuration or malformed input
// documents. Fields maps offending field names to a short reason.
type ValidationError struct {
	Detail string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Detail
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s (%s)", e.Detail, strings.Join(parts, ", "))
}

// StorageUnavailableError is returned when the inventory store is closed,
// not yet opened, or failed to open.
type StorageUnavailableError struct {
	Op  string
	Err error
}

func (e *StorageUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage unavailable: %s", e.Op)
	}
	return fmt.Sprintf("storage unavailable: %s: %v", e.Op, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when an id or name does not resolve
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.ID)
}

// QuantityFromInt converts a count to the decimal form used in error reports
func QuantityFromInt(q Quantity) decimal.Decimal {
	return decimal.NewFromInt(int64(q))
}
