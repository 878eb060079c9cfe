package events

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Bus delivers stock-change notifications to in-process subscribers. Events
// are not retained: a subscriber only sees what is published after it
// subscribed.
type Bus struct {
	mutex       sync.RWMutex
	subscribers map[string][]EventHandler
	logger      *logrus.Logger
}

func NewBus(logger *logrus.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]EventHandler),
		logger:      logger,
	}
}

var _ Publisher = (*Bus)(nil)

func (b *Bus) Subscribe(eventTypes []string, handler EventHandler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, eventType := range eventTypes {
		b.subscribers[eventType] = append(b.subscribers[eventType], handler)
	}
}

func (b *Bus) Unsubscribe(handler EventHandler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for eventType, handlers := range b.subscribers {
		kept := make([]EventHandler, 0, len(handlers))
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		b.subscribers[eventType] = kept
	}
}

// Publish calls matching handlers synchronously. Handler errors are logged
// and never reach the publisher, whose transaction has already committed.
func (b *Bus) Publish(event Event) {
	b.mutex.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type()]...)
	b.mutex.RUnlock()

	for _, handler := range handlers {
		if !handler.CanHandle(event.Type()) {
			continue
		}
		if err := handler.Handle(event); err != nil && b.logger != nil {
			b.logger.WithError(err).WithFields(logrus.Fields{
				"event":   event.Type(),
				"subject": event.Subject(),
			}).Warn("event handler failed")
		}
	}
}
