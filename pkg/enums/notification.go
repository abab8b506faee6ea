package enums

import "fmt"

// NotificationType classifies the rows shown in the agent notification feed.
type NotificationType string

const (
	NotificationTypePropertyInquiry  NotificationType = "property_inquiry"
	NotificationTypeClosureSubmitted NotificationType = "closure_submitted"
	NotificationTypeClosureValidated NotificationType = "closure_validated"
	NotificationTypeClosureRejected  NotificationType = "closure_rejected"
)

var validNotificationTypes = []NotificationType{
	NotificationTypePropertyInquiry,
	NotificationTypeClosureSubmitted,
	NotificationTypeClosureValidated,
	NotificationTypeClosureRejected,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
