package enums

import "fmt"

// FlokoutStatus tracks the lifecycle of a planned outing.
type FlokoutStatus string

const (
	FlokoutStatusPoll      FlokoutStatus = "poll"
	FlokoutStatusConfirmed FlokoutStatus = "confirmed"
	FlokoutStatusCompleted FlokoutStatus = "completed"
	FlokoutStatusCancelled FlokoutStatus = "cancelled"
)

var validFlokoutStatuses = []FlokoutStatus{
	FlokoutStatusPoll,
	FlokoutStatusConfirmed,
	FlokoutStatusCompleted,
	FlokoutStatusCancelled,
}

// String implements fmt.Stringer.
func (s FlokoutStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known FlokoutStatus.
func (s FlokoutStatus) IsValid() bool {
	for _, candidate := range validFlokoutStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseFlokoutStatus converts raw input into a FlokoutStatus.
func ParseFlokoutStatus(value string) (FlokoutStatus, error) {
	for _, candidate := range validFlokoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid flokout status %q", value)
}

// CanTransitionTo reports whether the status may move to the target state.
// Poll and confirmed outings can still be cancelled; completed and cancelled
// are terminal.
func (s FlokoutStatus) CanTransitionTo(target FlokoutStatus) bool {
	switch s {
	case FlokoutStatusPoll:
		return target == FlokoutStatusConfirmed || target == FlokoutStatusCancelled
	case FlokoutStatusConfirmed:
		return target == FlokoutStatusCompleted || target == FlokoutStatusCancelled
	default:
		return false
	}
}
