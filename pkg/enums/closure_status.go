package enums

import "fmt"

// ClosureStatus tracks the review lifecycle of a sale closure.
// A closure starts pending and moves exactly once to validated or rejected.
type ClosureStatus string

const (
	ClosureStatusPending   ClosureStatus = "pending"
	ClosureStatusValidated ClosureStatus = "validated"
	ClosureStatusRejected  ClosureStatus = "rejected"
)

var validClosureStatuses = []ClosureStatus{
	ClosureStatusPending,
	ClosureStatusValidated,
	ClosureStatusRejected,
}

// String implements fmt.Stringer.
func (c ClosureStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ClosureStatus.
func (c ClosureStatus) IsValid() bool {
	for _, candidate := range validClosureStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transition.
func (c ClosureStatus) IsTerminal() bool {
	return c == ClosureStatusValidated || c == ClosureStatusRejected
}

// ParseClosureStatus converts raw input into a ClosureStatus.
func ParseClosureStatus(value string) (ClosureStatus, error) {
	for _, candidate := range validClosureStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid closure status %q", value)
}
