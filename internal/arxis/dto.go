package arxis

import (
	"time"

	"github.com/google/uuid"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
)

// CreateProjectDTO opens a new construction or renovation project.
type CreateProjectDTO struct {
	Name        string     `json:"name" validate:"required,min=3,max=200"`
	ClientName  string     `json:"client_name" validate:"omitempty,max=200"`
	Description string     `json:"description" validate:"omitempty,max=4000"`
	Location    string     `json:"location" validate:"omitempty,max=300"`
	Budget      *float64   `json:"budget" validate:"omitempty,gt=0"`
	Currency    string     `json:"currency"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateProjectDTO patches a project; nil fields are left untouched.
type UpdateProjectDTO struct {
	Name        *string    `json:"name" validate:"omitempty,min=3,max=200"`
	ClientName  *string    `json:"client_name" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=4000"`
	Location    *string    `json:"location" validate:"omitempty,max=300"`
	Status      *string    `json:"status"`
	Budget      *float64   `json:"budget" validate:"omitempty,gt=0"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// ProjectDTO is the API shape of an ARXIS project.
type ProjectDTO struct {
	ID          uuid.UUID           `json:"id"`
	ManagerID   uuid.UUID           `json:"manager_id"`
	Name        string              `json:"name"`
	ClientName  string              `json:"client_name,omitempty"`
	Description string              `json:"description,omitempty"`
	Location    string              `json:"location,omitempty"`
	Status      enums.ProjectStatus `json:"status"`
	Budget      *float64            `json:"budget,omitempty"`
	Currency    enums.Currency      `json:"currency"`
	StartDate   *time.Time          `json:"start_date,omitempty"`
	EndDate     *time.Time          `json:"end_date,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func projectFromModel(row *models.ArxisProject) *ProjectDTO {
	return &ProjectDTO{
		ID:          row.ID,
		ManagerID:   row.ManagerID,
		Name:        row.Name,
		ClientName:  row.ClientName,
		Description: row.Description,
		Location:    row.Location,
		Status:      row.Status,
		Budget:      row.Budget,
		Currency:    row.Currency,
		StartDate:   row.StartDate,
		EndDate:     row.EndDate,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// CreateMaintenanceDTO files a service ticket against a project site or a
// managed property. At least one of the two references is required.
type CreateMaintenanceDTO struct {
	ProjectID   *uuid.UUID `json:"project_id"`
	PropertyID  *uuid.UUID `json:"property_id"`
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description string     `json:"description" validate:"omitempty,max=4000"`
	Priority    string     `json:"priority"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
}

// UpdateMaintenanceDTO moves a ticket through its lifecycle.
type UpdateMaintenanceDTO struct {
	Status     *string    `json:"status"`
	Priority   *string    `json:"priority"`
	AssignedTo *uuid.UUID `json:"assigned_to"`
}

// MaintenanceDTO is the API shape of a maintenance ticket.
type MaintenanceDTO struct {
	ID          uuid.UUID                 `json:"id"`
	ProjectID   *uuid.UUID                `json:"project_id,omitempty"`
	PropertyID  *uuid.UUID                `json:"property_id,omitempty"`
	RequestedBy uuid.UUID                 `json:"requested_by"`
	Title       string                    `json:"title"`
	Description string                    `json:"description,omitempty"`
	Priority    enums.MaintenancePriority `json:"priority"`
	Status      enums.MaintenanceStatus   `json:"status"`
	AssignedTo  *uuid.UUID                `json:"assigned_to,omitempty"`
	ResolvedAt  *time.Time                `json:"resolved_at,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

func maintenanceFromModel(row *models.MaintenanceRequest) *MaintenanceDTO {
	return &MaintenanceDTO{
		ID:          row.ID,
		ProjectID:   row.ProjectID,
		PropertyID:  row.PropertyID,
		RequestedBy: row.RequestedBy,
		Title:       row.Title,
		Description: row.Description,
		Priority:    row.Priority,
		Status:      row.Status,
		AssignedTo:  row.AssignedTo,
		ResolvedAt:  row.ResolvedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// CreateReportDTO files a dated site update against a project.
type CreateReportDTO struct {
	Summary       string      `json:"summary" validate:"required,min=5,max=4000"`
	ProgressPct   float64     `json:"percent_complete" validate:"gte=0,lte=100"`
	PhotoMediaIDs []uuid.UUID `json:"photo_media_ids"`
	ReportDate    time.Time   `json:"report_date"`
}

// ReportDTO is the API shape of a progress report.
type ReportDTO struct {
	ID            uuid.UUID   `json:"id"`
	ProjectID     uuid.UUID   `json:"project_id"`
	AuthorID      uuid.UUID   `json:"author_id"`
	Summary       string      `json:"summary"`
	ProgressPct   float64     `json:"percent_complete"`
	PhotoMediaIDs []uuid.UUID `json:"photo_media_ids,omitempty"`
	ReportDate    time.Time   `json:"report_date"`
	CreatedAt     time.Time   `json:"created_at"`
}

func reportFromModel(row *models.ProgressReport) *ReportDTO {
	return &ReportDTO{
		ID:            row.ID,
		ProjectID:     row.ProjectID,
		AuthorID:      row.AuthorID,
		Summary:       row.Summary,
		ProgressPct:   row.ProgressPct,
		PhotoMediaIDs: row.PhotoMediaIDs,
		ReportDate:    row.ReportDate,
		CreatedAt:     row.CreatedAt,
	}
}

// ProjectListResult pages projects.
type ProjectListResult struct {
	Items      []ProjectDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// MaintenanceListResult pages maintenance tickets.
type MaintenanceListResult struct {
	Items      []MaintenanceDTO `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
