package enums

import "fmt"

// OutboxEventType identifies the domain events written to the outbox table.
type OutboxEventType string

const (
	OutboxEventClosureSubmitted     OutboxEventType = "closure.submitted"
	OutboxEventClosureValidated     OutboxEventType = "closure.validated"
	OutboxEventClosureRejected      OutboxEventType = "closure.rejected"
	OutboxEventInquiryCreated       OutboxEventType = "inquiry.created"
	OutboxEventNotificationResponse OutboxEventType = "notification.responded"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventClosureSubmitted,
	OutboxEventClosureValidated,
	OutboxEventClosureRejected,
	OutboxEventInquiryCreated,
	OutboxEventNotificationResponse,
}

// String implements fmt.Stringer.
func (o OutboxEventType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OutboxEventType.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	OutboxAggregateClosure      OutboxAggregateType = "closure"
	OutboxAggregateNotification OutboxAggregateType = "notification"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	OutboxAggregateClosure,
	OutboxAggregateNotification,
}

// String implements fmt.Stringer.
func (o OutboxAggregateType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OutboxAggregateType.
func (o OutboxAggregateType) IsValid() bool {
	for _, candidate := range validOutboxAggregateTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// OutboxDLQErrorReason records why the publisher gave up on an event.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

var validOutboxDLQErrorReasons = []OutboxDLQErrorReason{
	OutboxDLQReasonMaxAttempts,
	OutboxDLQReasonNonRetryable,
}

// IsValid reports whether the value is a known OutboxDLQErrorReason.
func (r OutboxDLQErrorReason) IsValid() bool {
	for _, candidate := range validOutboxDLQErrorReasons {
		if candidate == r {
			return true
		}
	}
	return false
}
