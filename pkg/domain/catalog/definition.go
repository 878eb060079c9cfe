package catalog

import "github.com/shopspring/decimal"

// Default print settings applied when a definition leaves them unset
const (
	DefaultBatchSize        = 10
	DefaultPrintTimeMinutes = 60
)

// Definition is the declarative form of a catalog, as written in YAML files
type Definition struct {
	PrintedComponents   []PrintedComponentDef   `yaml:"printed_components"`
	PurchasedComponents []PurchasedComponentDef `yaml:"purchased_components"`
	Parts               []AssemblyDef           `yaml:"parts"`
	Products            []AssemblyDef           `yaml:"products"`
}

// PrintedComponentDef declares a 3D-printed component
type PrintedComponentDef struct {
	Name                   string `yaml:"name"`
	BatchSize              int    `yaml:"batch_size,omitempty"`
	PrintTimeMinutes       int    `yaml:"print_time_minutes,omitempty"`
	RequiresPostProcessing *bool  `yaml:"requires_post_processing,omitempty"`
}

// PurchasedComponentDef declares a bought component
type PurchasedComponentDef struct {
	Name              string           `yaml:"name"`
	Unit              string           `yaml:"unit"`
	LowStockThreshold *decimal.Decimal `yaml:"low_stock_threshold,omitempty"`
}

// AssemblyDef declares a part or a product and the inputs one unit consumes
type AssemblyDef struct {
	Name   string     `yaml:"name"`
	Inputs []InputDef `yaml:"inputs"`
}

// InputDef is one recipe row, referencing another catalog entry by name
type InputDef struct {
	Name     string          `yaml:"name"`
	Quantity decimal.Decimal `yaml:"quantity"`
}

func in(name string, qty float64) InputDef {
	return InputDef{Name: name, Quantity: decimal.NewFromFloat(qty)}
}

func printed(names ...string) []PrintedComponentDef {
	defs := make([]PrintedComponentDef, 0, len(names))
	for _, n := range names {
		defs = append(defs, PrintedComponentDef{Name: n})
	}
	return defs
}

// CricketSetDefinition returns the built-in catalog for the Complete Cricket Set
func CricketSetDefinition() Definition {
	return Definition{
		PrintedComponents: printed(
			"Fence Corner", "Fence Straight", "Fence Player",
			"Fielder High", "Fielder Medium", "Fielder Low", "Stumps",
			"Bowler Gantry", "Bowler Floor", "Bowler Arm", "Bowler Chute",
			"Batter Gantry", "Batter Handle", "Batter Lid", "Batter Cap", "Batter Body",
			"Batter Slider", "Batter Button Left", "Batter Button Right",
			"Batter Floor", "Batter Hook", "Batter Bat",
		),
		PurchasedComponents: []PurchasedComponentDef{
			{Name: "6mm M2 Screws", Unit: "pieces"},
			{Name: "8mm M2 Screws", Unit: "pieces"},
			{Name: "12mm M2 Screws", Unit: "pieces"},
			{Name: "M2 nuts", Unit: "pieces"},
			{Name: "8mm M3 Chicago Screws", Unit: "pieces"},
			{Name: "18mm M3 Chicago Screws", Unit: "pieces"},
			{Name: "M3 Chicago Screw Cap", Unit: "pieces"},
			{Name: "1x10mm dowel pins", Unit: "pieces"},
			{Name: "0.4g Split Shot", Unit: "pieces"},
			{Name: "Silk Printed Felt Sheets (pre-cut)", Unit: "pieces"},
			{Name: "30cmx10cm Printed Cardboard Tube", Unit: "pieces"},
			{Name: "Bubble Mailers", Unit: "pieces"},
			{Name: "Packing Tape", Unit: "rolls"},
			{Name: "Balls (3 varieties)", Unit: "sets"},
			{Name: "12cmx34cm self adhesive bags", Unit: "pieces"},
			{Name: "Velcro strips", Unit: "pieces"},
			{Name: "PLA filament (white)", Unit: "kg"},
			{Name: "PLA filament (black)", Unit: "kg"},
			{Name: "PLA filament (beige)", Unit: "kg"},
			{Name: "String", Unit: "pieces"},
			{Name: "String Ball", Unit: "pieces"},
			{Name: "A4 Paper", Unit: "sheets"},
		},
		Parts: []AssemblyDef{
			{
				Name: "Bowler",
				Inputs: []InputDef{
					in("Bowler Gantry", 1),
					in("Bowler Floor", 1),
					in("Bowler Arm", 1),
					in("Bowler Chute", 1),
					in("1x10mm dowel pins", 1),
					in("8mm M3 Chicago Screws", 1),
					in("M3 Chicago Screw Cap", 1),
				},
			},
			{
				Name: "Batter",
				Inputs: []InputDef{
					in("Batter Gantry", 1),
					in("Batter Handle", 1),
					in("Batter Lid", 1),
					in("Batter Cap", 1),
					in("Batter Body", 1),
					in("Batter Slider", 1),
					in("Batter Button Left", 1),
					in("Batter Button Right", 1),
					in("Batter Floor", 1),
					in("Batter Hook", 1),
					in("Batter Bat", 1),
					in("18mm M3 Chicago Screws", 1),
					in("M3 Chicago Screw Cap", 1),
					in("6mm M2 Screws", 2),
					in("8mm M2 Screws", 1),
					in("12mm M2 Screws", 1),
					in("M2 nuts", 4),
					in("0.4g Split Shot", 3),
					in("String", 1),
					in("String Ball", 1),
				},
			},
		},
		Products: []AssemblyDef{
			{
				Name: "Complete Cricket Set",
				Inputs: []InputDef{
					in("Fence Corner", 6),
					in("Fence Straight", 4),
					in("Fence Player", 2),
					in("Fielder High", 3),
					in("Fielder Medium", 3),
					in("Fielder Low", 3),
					in("Stumps", 1),
					in("Bowler", 1),
					in("Batter", 1),
					in("Balls (3 varieties)", 1),
					in("Silk Printed Felt Sheets (pre-cut)", 1),
					in("30cmx10cm Printed Cardboard Tube", 1),
					in("Bubble Mailers", 0.5),
					in("12cmx34cm self adhesive bags", 1),
					in("Velcro strips", 1),
					in("A4 Paper", 1),
				},
			},
		},
	}
}
