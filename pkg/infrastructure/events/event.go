package events

import (
	"time"
)

// Event is a committed stock change. Subject is the item id the mutation
// targeted, or a label such as "import" for bulk changes.
type Event interface {
	Type() string
	Subject() string
	Change() StockChanged
	OccurredAt() time.Time
}

type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// Publisher is what the assembly engine depends on
type Publisher interface {
	Publish(event Event)
}

type stockEvent struct {
	eventType string
	subject   string
	change    StockChanged
	at        time.Time
}

func (e stockEvent) Type() string          { return e.eventType }
func (e stockEvent) Subject() string       { return e.subject }
func (e stockEvent) Change() StockChanged  { return e.change }
func (e stockEvent) OccurredAt() time.Time { return e.at }

func NewEvent(eventType, subject string, change StockChanged) Event {
	return stockEvent{
		eventType: eventType,
		subject:   subject,
		change:    change,
		at:        time.Now(),
	}
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
