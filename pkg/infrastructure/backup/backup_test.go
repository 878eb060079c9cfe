package backup

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

func TestWriteRead(t *testing.T) {
	exported := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := New(
		[]*entities.PrintedComponent{{ID: "fence-corner", Name: "Fence Corner", PostProcessingCompleted: 7, BatchSize: 12, PrintTimeMinutes: 90}},
		[]*entities.PurchasedComponent{{ID: "bubble-mailers", Name: "Bubble Mailers", Quantity: decimal.RequireFromString("3.5"), Unit: "pieces"}},
		nil,
		[]*entities.Product{{ID: "complete-cricket-set", Name: "Complete Cricket Set", Quantity: 2}},
		exported,
	)

	_, err := uuid.Parse(doc.ExportID)
	require.NoError(t, err, "export id should be a uuid")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc))
	assert.Contains(t, buf.String(), `"parts": []`)

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc.ExportID, got.ExportID)
	assert.True(t, got.ExportDate.Equal(exported))
	require.Len(t, got.Components3D, 1)
	assert.Equal(t, entities.Quantity(7), got.Components3D[0].PostProcessingCompleted)
	require.Len(t, got.PurchasedComponents, 1)
	assert.True(t, got.PurchasedComponents[0].Quantity.Equal(decimal.RequireFromString("3.5")))
	assert.Empty(t, got.Parts)
	require.Len(t, got.Products, 1)
}

func TestReadMissingCollections(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing []string
	}{
		{
			name:    "no parts",
			body:    `{"components3d": [], "purchasedComponents": [], "products": []}`,
			missing: []string{KeyParts},
		},
		{
			name:    "null products",
			body:    `{"components3d": [], "purchasedComponents": [], "parts": [], "products": null}`,
			missing: []string{KeyProducts},
		},
		{
			name:    "empty object",
			body:    `{}`,
			missing: []string{KeyComponents3D, KeyParts, KeyProducts, KeyPurchasedComponents},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.body))
			var validation *entities.ValidationError
			require.True(t, errors.As(err, &validation), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.missing, MissingKeys(validation))
		})
	}
}

func TestReadNullRecords(t *testing.T) {
	body := `{"components3d": [null], "purchasedComponents": [], "parts": [{"id": "bowler"}, null], "products": []}`

	_, err := Read(strings.NewReader(body))
	var validation *entities.ValidationError
	require.True(t, errors.As(err, &validation), "expected ValidationError, got %v", err)
	assert.Equal(t, map[string]string{
		"components3d[0]": "null record",
		"parts[1]":        "null record",
	}, validation.Fields)
	assert.Empty(t, MissingKeys(validation))
}

func TestReadNotJSON(t *testing.T) {
	_, err := Read(strings.NewReader("not json"))
	var validation *entities.ValidationError
	assert.True(t, errors.As(err, &validation))
}

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", FileName(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)))
	assert.True(t, strings.HasSuffix(path, "inventory-backup-2024-05-06.json"))

	require.NoError(t, WriteFile(path, New(nil, nil, nil, nil, time.Now())))
	doc, err := ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, doc.Components3D)
	assert.Empty(t, doc.Products)
}
