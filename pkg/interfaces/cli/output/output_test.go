package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/shopfloor/pkg/application/dto"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

func init() {
	color.NoColor = true
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"text": FormatText, "JSON": FormatJSON, " yaml ": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func sampleRecommendations() []dto.Recommendation {
	return []dto.Recommendation{{
		Action:     dto.ActionRestock,
		TargetID:   "bubble-mailers",
		TargetName: "Bubble Mailers",
		TargetKind: "purchased",
		Quantity:   decimal.RequireFromString("4.5"),
		Priority:   entities.PriorityUrgent,
		Reason:     "Bubble Mailers supports only 1 product",
	}}
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatText).Recommendations(sampleRecommendations()))

	out := buf.String()
	assert.Contains(t, out, "What To Do Next")
	assert.Contains(t, out, "restock 4.5 x Bubble Mailers")
	assert.Contains(t, out, "urgent")
	assert.NotContains(t, out, "\x1b[", "colour must be off")
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatJSON).Recommendations(sampleRecommendations()))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "restock", decoded[0]["action"])
	assert.Equal(t, "urgent", decoded[0]["priority"])
	assert.Equal(t, "4.5", decoded[0]["quantity"])
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	plan := &dto.ShortagePlan{
		TargetBuffer: 10,
		Lines: []dto.ShortageLine{{
			ComponentID:   "fence-corner",
			ComponentName: "Fence Corner",
			Shortage:      6,
			Priority:      entities.PriorityCritical,
		}},
		TotalBatches: 1,
	}
	require.NoError(t, NewPrinter(&buf, FormatYAML).ShortagePlan(plan))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 10, decoded["target_products_buffer"])
	lines := decoded["lines"].([]interface{})
	require.Len(t, lines, 1)
	assert.Equal(t, "critical", lines[0].(map[string]interface{})["priority"])
}

func TestCapacity_Text(t *testing.T) {
	var buf bytes.Buffer
	result := &dto.CapacityResult{
		EntityName:   "Kit",
		MaxBuildable: 2,
		Bottlenecks:  []string{"Mailer"},
		Inputs: []dto.InputCapacity{{
			InputName: "Mailer",
			InputKind: "purchased",
			Required:  decimal.RequireFromString("0.5"),
			Available: decimal.RequireFromString("1"),
			Buildable: 2,
			Binding:   true,
		}},
	}
	require.NoError(t, NewPrinter(&buf, FormatText).Capacity(result))

	assert.Contains(t, buf.String(), "Max buildable: 2")
	assert.Contains(t, buf.String(), "Bottleneck:    Mailer")
}

func TestMinutes(t *testing.T) {
	assert.Equal(t, "45m", minutes(45))
	assert.Equal(t, "2h05m", minutes(125))
}
