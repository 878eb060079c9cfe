package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopfloor/pkg/domain/catalog"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/domain/repositories"
	"github.com/vsinha/shopfloor/pkg/infrastructure/events"
	"github.com/vsinha/shopfloor/pkg/infrastructure/logging"
	"github.com/vsinha/shopfloor/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/shopfloor/pkg/infrastructure/storage"
)

func boolPtr(b bool) *bool {
	return &b
}

func input(name, qty string) catalog.InputDef {
	return catalog.InputDef{Name: name, Quantity: decimal.RequireFromString(qty)}
}

// workshopDefinition is a small catalog: the Kit product takes one Bowler
// part, half a Mailer and one Component Y; the Bowler takes one Component X
// and one Screw. Component Z is printed without post-processing and is not
// used by anything.
func workshopDefinition() catalog.Definition {
	return catalog.Definition{
		PrintedComponents: []catalog.PrintedComponentDef{
			{Name: "Component X", BatchSize: 10, PrintTimeMinutes: 30},
			{Name: "Component Y", BatchSize: 5, PrintTimeMinutes: 45},
			{Name: "Component Z", BatchSize: 4, PrintTimeMinutes: 20, RequiresPostProcessing: boolPtr(false)},
		},
		PurchasedComponents: []catalog.PurchasedComponentDef{
			{Name: "Screw", Unit: "pieces"},
			{Name: "Mailer", Unit: "pieces"},
		},
		Parts: []catalog.AssemblyDef{
			{Name: "Bowler", Inputs: []catalog.InputDef{input("Component X", "1"), input("Screw", "1")}},
		},
		Products: []catalog.AssemblyDef{
			{Name: "Kit", Inputs: []catalog.InputDef{input("Bowler", "1"), input("Mailer", "0.5"), input("Component Y", "1")}},
		},
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type())
	}
	return out
}

type fixture struct {
	catalog   *catalog.Catalog
	store     repositories.InventoryStore
	service   *InventoryService
	publisher *recordingPublisher
}

func newFixture(t *testing.T, def catalog.Definition) *fixture {
	t.Helper()

	c, err := catalog.Build(def)
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	store := memory.NewInventoryStore()
	if err := storage.Seed(context.Background(), store, c); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	pub := &recordingPublisher{}
	return &fixture{
		catalog:   c,
		store:     store,
		service:   NewInventoryService(store, c, pub, logging.Discard()),
		publisher: pub,
	}
}

func newWorkshop(t *testing.T) *fixture {
	return newFixture(t, workshopDefinition())
}

// stock describes the fixture's starting levels
type stock struct {
	completed map[entities.ItemID]entities.Quantity
	pending   map[entities.ItemID]entities.Quantity
	purchased map[entities.ItemID]string
	assembled map[entities.ItemID]entities.Quantity
	products  map[entities.ItemID]entities.Quantity
}

func (f *fixture) set(t *testing.T, s stock) {
	t.Helper()
	err := f.store.Update(context.Background(), func(tx repositories.InventoryTx) error {
		ids := map[entities.ItemID]bool{}
		for id := range s.completed {
			ids[id] = true
		}
		for id := range s.pending {
			ids[id] = true
		}
		for id := range ids {
			c, err := tx.GetPrintedComponent(id)
			if err != nil {
				return err
			}
			c.PostProcessingCompleted = s.completed[id]
			c.PostProcessingPending = s.pending[id]
			c.Quantity = c.OnHand()
			if err := tx.PutPrintedComponent(c); err != nil {
				return err
			}
		}
		for id, qty := range s.purchased {
			c, err := tx.GetPurchasedComponent(id)
			if err != nil {
				return err
			}
			c.Quantity = decimal.RequireFromString(qty)
			if err := tx.PutPurchasedComponent(c); err != nil {
				return err
			}
		}
		for id, n := range s.assembled {
			p, err := tx.GetPart(id)
			if err != nil {
				return err
			}
			p.Assembled = n
			if err := tx.PutPart(p); err != nil {
				return err
			}
		}
		for id, n := range s.products {
			p, err := tx.GetProduct(id)
			if err != nil {
				return err
			}
			p.Quantity = n
			if err := tx.PutProduct(p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to set stock: %v", err)
	}
}

func (f *fixture) levels(t *testing.T) *StockLevels {
	t.Helper()
	var levels *StockLevels
	err := f.store.View(context.Background(), func(tx repositories.InventoryTx) error {
		var err error
		levels, err = NewStockAggregator(f.catalog).Snapshot(tx)
		return err
	})
	if err != nil {
		t.Fatalf("Failed to read stock: %v", err)
	}
	return levels
}
