package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/VIERNES-8020/domino-backend/pkg/db/types"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
)

// ArxisProject is a construction or renovation project tracked by the
// ARXIS division.
type ArxisProject struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ManagerID   uuid.UUID           `gorm:"column:manager_id;type:uuid;not null;index"`
	Name        string              `gorm:"column:name;not null"`
	ClientName  string              `gorm:"column:client_name;not null;default:''"`
	Description string              `gorm:"column:description;not null;default:''"`
	Location    string              `gorm:"column:location;not null;default:''"`
	Status      enums.ProjectStatus `gorm:"column:status;type:text;not null;default:'planned';index"`
	Budget      *float64            `gorm:"column:budget"`
	Currency    enums.Currency      `gorm:"column:currency;type:text;not null;default:'USD'"`
	StartDate   *time.Time          `gorm:"column:start_date"`
	EndDate     *time.Time          `gorm:"column:end_date"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// MaintenanceRequest is a service ticket filed against a property or an
// ARXIS project site.
type MaintenanceRequest struct {
	ID          uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID   *uuid.UUID                `gorm:"column:project_id;type:uuid;index"`
	PropertyID  *uuid.UUID                `gorm:"column:property_id;type:uuid;index"`
	RequestedBy uuid.UUID                 `gorm:"column:requested_by;type:uuid;not null"`
	Title       string                    `gorm:"column:title;not null"`
	Description string                    `gorm:"column:description;not null;default:''"`
	Priority    enums.MaintenancePriority `gorm:"column:priority;type:text;not null;default:'medium'"`
	Status      enums.MaintenanceStatus   `gorm:"column:status;type:text;not null;default:'open';index"`
	AssignedTo  *uuid.UUID                `gorm:"column:assigned_to;type:uuid"`
	ResolvedAt  *time.Time                `gorm:"column:resolved_at"`
	CreatedAt   time.Time                 `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt   time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

// ProgressReport is a dated site update attached to an ARXIS project,
// optionally with photos.
type ProgressReport struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID     uuid.UUID         `gorm:"column:project_id;type:uuid;not null;index"`
	AuthorID      uuid.UUID         `gorm:"column:author_id;type:uuid;not null"`
	Summary       string            `gorm:"column:summary;not null"`
	ProgressPct   float64           `gorm:"column:progress_pct;not null;default:0"`
	PhotoMediaIDs dbtypes.UUIDArray `gorm:"column:photo_media_ids;type:uuid[]"`
	ReportDate    time.Time         `gorm:"column:report_date;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`

	Project *ArxisProject `gorm:"foreignKey:ProjectID"`
}
