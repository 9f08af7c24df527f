package enums

import "fmt"

// ShareStatus tracks the settlement lifecycle of one expense share.
// Transitions only move forward: pending -> verifying -> settled.
type ShareStatus string

const (
	ShareStatusPending   ShareStatus = "pending"
	ShareStatusVerifying ShareStatus = "verifying"
	ShareStatusSettled   ShareStatus = "settled"
)

var validShareStatuses = []ShareStatus{
	ShareStatusPending,
	ShareStatusVerifying,
	ShareStatusSettled,
}

// String implements fmt.Stringer.
func (s ShareStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShareStatus.
func (s ShareStatus) IsValid() bool {
	for _, candidate := range validShareStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShareStatus converts raw input into a ShareStatus.
func ParseShareStatus(value string) (ShareStatus, error) {
	for _, candidate := range validShareStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid share status %q", value)
}
