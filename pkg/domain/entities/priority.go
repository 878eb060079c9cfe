package entities

// Priority is the urgency class used by the shortage planner and the task
// lists.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityUrgent
	PriorityMedium
	PriorityLow
)

// Planner thresholds, in products' worth of on-hand stock
const (
	UrgentBelowProducts = 3
	MediumBelowProducts = 7
)

// String method for Priority enum
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityUrgent:
		return "urgent"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ClassifySupportable maps the number of products the current stock covers to
// a planner priority.
func ClassifySupportable(productsSupportable int64) Priority {
	switch {
	case productsSupportable <= 0:
		return PriorityCritical
	case productsSupportable < UrgentBelowProducts:
		return PriorityUrgent
	case productsSupportable < MediumBelowProducts:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// BatchPriority is the class assigned by the print-batch query. It uses a
// shortage ratio rather than products supported, so it can disagree with
// Priority for the same component.
type BatchPriority int

const (
	BatchCritical BatchPriority = iota
	BatchHigh
	BatchMedium
	BatchLow
)

// Batch classifier thresholds, as a fraction of the total need
const (
	BatchHighShortageRatio   = 0.8
	BatchMediumShortageRatio = 0.5
)

// String method for BatchPriority enum
func (p BatchPriority) String() string {
	switch p {
	case BatchCritical:
		return "critical"
	case BatchHigh:
		return "high"
	case BatchMedium:
		return "medium"
	case BatchLow:
		return "low"
	default:
		return "unknown"
	}
}

func (p BatchPriority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
