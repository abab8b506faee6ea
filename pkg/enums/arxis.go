package enums

import "fmt"

// ProjectStatus tracks ARXIS construction project progress.
type ProjectStatus string

const (
	ProjectStatusPlanned    ProjectStatus = "planned"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

var validProjectStatuses = []ProjectStatus{
	ProjectStatusPlanned,
	ProjectStatusInProgress,
	ProjectStatusOnHold,
	ProjectStatusCompleted,
}

// String implements fmt.Stringer.
func (p ProjectStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProjectStatus.
func (p ProjectStatus) IsValid() bool {
	for _, candidate := range validProjectStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProjectStatus converts raw input into a ProjectStatus.
func ParseProjectStatus(value string) (ProjectStatus, error) {
	for _, candidate := range validProjectStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid project status %q", value)
}

// MaintenanceStatus tracks a maintenance request lifecycle.
type MaintenanceStatus string

const (
	MaintenanceStatusOpen       MaintenanceStatus = "open"
	MaintenanceStatusScheduled  MaintenanceStatus = "scheduled"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusDone       MaintenanceStatus = "done"
)

var validMaintenanceStatuses = []MaintenanceStatus{
	MaintenanceStatusOpen,
	MaintenanceStatusScheduled,
	MaintenanceStatusInProgress,
	MaintenanceStatusDone,
}

// String implements fmt.Stringer.
func (m MaintenanceStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MaintenanceStatus.
func (m MaintenanceStatus) IsValid() bool {
	for _, candidate := range validMaintenanceStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaintenanceStatus converts raw input into a MaintenanceStatus.
func ParseMaintenanceStatus(value string) (MaintenanceStatus, error) {
	for _, candidate := range validMaintenanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid maintenance status %q", value)
}

// MaintenancePriority orders the maintenance queue.
type MaintenancePriority string

const (
	MaintenancePriorityLow    MaintenancePriority = "low"
	MaintenancePriorityMedium MaintenancePriority = "medium"
	MaintenancePriorityHigh   MaintenancePriority = "high"
	MaintenancePriorityUrgent MaintenancePriority = "urgent"
)

var validMaintenancePriorities = []MaintenancePriority{
	MaintenancePriorityLow,
	MaintenancePriorityMedium,
	MaintenancePriorityHigh,
	MaintenancePriorityUrgent,
}

// String implements fmt.Stringer.
func (m MaintenancePriority) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MaintenancePriority.
func (m MaintenancePriority) IsValid() bool {
	for _, candidate := range validMaintenancePriorities {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaintenancePriority converts raw input into a MaintenancePriority.
func ParseMaintenancePriority(value string) (MaintenancePriority, error) {
	for _, candidate := range validMaintenancePriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid maintenance priority %q", value)
}
