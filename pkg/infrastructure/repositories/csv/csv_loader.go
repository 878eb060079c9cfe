package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopfloor/pkg/application/dto"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

// Loader handles loading stock counts from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

var stockHeader = []string{"name", "quantity", "pending"}

// LoadStockLevels loads a stock count sheet from a CSV file
func (l *Loader) LoadStockLevels(filename string) ([]dto.StockLevelRow, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open stock file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadStockLevels(file)
}

// ReadStockLevels parses a stock count sheet with the columns
// name,quantity,pending. Pending may be left blank.
func (l *Loader) ReadStockLevels(r io.Reader) ([]dto.StockLevelRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &entities.ValidationError{Detail: fmt.Sprintf("failed to read stock CSV: %v", err)}
	}

	if len(records) < 2 {
		return nil, &entities.ValidationError{Detail: "stock CSV must have header and at least one data row"}
	}

	header := records[0]
	if !validateHeader(header, stockHeader) {
		return nil, &entities.ValidationError{
			Detail: fmt.Sprintf("stock CSV header mismatch. Expected: %v, Got: %v", stockHeader, header),
		}
	}

	var rows []dto.StockLevelRow
	for i, record := range records[1:] {
		if len(record) != len(stockHeader) {
			return nil, &entities.ValidationError{
				Detail: fmt.Sprintf("stock CSV row %d: expected %d columns, got %d", i+2, len(stockHeader), len(record)),
			}
		}

		row, err := parseStockLevel(record)
		if err != nil {
			return nil, fmt.Errorf("stock CSV row %d: %w", i+2, err)
		}
		row.Line = i + 2
		rows = append(rows, row)
	}

	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseStockLevel(record []string) (dto.StockLevelRow, error) {
	name := strings.TrimSpace(record[0])
	if name == "" {
		return dto.StockLevelRow{}, &entities.ValidationError{Detail: "name cannot be empty"}
	}

	qty, err := decimal.NewFromString(strings.TrimSpace(record[1]))
	if err != nil || qty.IsNegative() {
		return dto.StockLevelRow{}, &entities.InvalidQuantityError{Field: name + ".quantity", Value: record[1]}
	}

	row := dto.StockLevelRow{Name: name, Quantity: qty}
	if raw := strings.TrimSpace(record[2]); raw != "" {
		pending, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || pending < 0 {
			return dto.StockLevelRow{}, &entities.InvalidQuantityError{Field: name + ".pending", Value: record[2]}
		}
		p := entities.Quantity(pending)
		row.Pending = &p
	}
	return row, nil
}
