package events

import (
	"github.com/sirupsen/logrus"
)

// LowStockMonitor logs a warning whenever a mutation leaves a purchased
// component under its threshold or a printed component under
// entities.LowStockCompleted ready units.
type LowStockMonitor struct {
	logger *logrus.Logger
}

func NewLowStockMonitor(logger *logrus.Logger) *LowStockMonitor {
	return &LowStockMonitor{logger: logger}
}

func (m *LowStockMonitor) CanHandle(eventType string) bool {
	for _, t := range AllStockEvents {
		if t == eventType {
			return true
		}
	}
	return false
}

func (m *LowStockMonitor) Handle(event Event) error {
	change := event.Change()
	for _, c := range change.Purchased {
		if c.IsLow() {
			m.logger.WithFields(logrus.Fields{
				"component": c.Name,
				"quantity":  c.Quantity.String(),
				"threshold": c.LowStockThreshold.String(),
				"unit":      c.Unit,
			}).Warn("purchased component below threshold")
		}
	}
	for _, c := range change.Printed {
		if c.IsLow() {
			m.logger.WithFields(logrus.Fields{
				"component": c.Name,
				"completed": c.PostProcessingCompleted,
				"pending":   c.PostProcessingPending,
			}).Warn("printed component running low")
		}
	}
	return nil
}

