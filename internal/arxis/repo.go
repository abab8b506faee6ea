package arxis

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	"github.com/VIERNES-8020/domino-backend/pkg/pagination"
)

// Repository persists ARXIS projects, maintenance tickets, and progress
// reports.
type Repository interface {
	CreateProject(ctx context.Context, project *models.ArxisProject) error
	FindProject(ctx context.Context, id uuid.UUID) (*models.ArxisProject, error)
	ListProjects(ctx context.Context, params listProjectsParams) ([]models.ArxisProject, *pagination.Cursor, error)
	UpdateProject(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	DeleteProject(ctx context.Context, id uuid.UUID) (int64, error)

	CreateMaintenance(ctx context.Context, request *models.MaintenanceRequest) error
	FindMaintenance(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	ListMaintenance(ctx context.Context, params listMaintenanceParams) ([]models.MaintenanceRequest, *pagination.Cursor, error)
	UpdateMaintenance(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)

	CreateReport(ctx context.Context, report *models.ProgressReport) error
	ListReports(ctx context.Context, projectID uuid.UUID, limit int) ([]models.ProgressReport, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an ARXIS repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listProjectsParams struct {
	Status enums.ProjectStatus
	Limit  int
	Cursor *pagination.Cursor
}

type listMaintenanceParams struct {
	ProjectID  uuid.UUID
	PropertyID uuid.UUID
	Status     enums.MaintenanceStatus
	Priority   enums.MaintenancePriority
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *repositoryImpl) CreateProject(ctx context.Context, project *models.ArxisProject) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *repositoryImpl) FindProject(ctx context.Context, id uuid.UUID) (*models.ArxisProject, error) {
	var project models.ArxisProject
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repositoryImpl) ListProjects(ctx context.Context, params listProjectsParams) ([]models.ArxisProject, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.ArxisProject{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.ArxisProject
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) UpdateProject(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.ArxisProject{}).
		Where("id = ?", id).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) DeleteProject(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.ArxisProject{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CreateMaintenance(ctx context.Context, request *models.MaintenanceRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repositoryImpl) FindMaintenance(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	var request models.MaintenanceRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repositoryImpl) ListMaintenance(ctx context.Context, params listMaintenanceParams) ([]models.MaintenanceRequest, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.MaintenanceRequest{})
	if params.ProjectID != uuid.Nil {
		query = query.Where("project_id = ?", params.ProjectID)
	}
	if params.PropertyID != uuid.Nil {
		query = query.Where("property_id = ?", params.PropertyID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Priority != "" {
		query = query.Where("priority = ?", params.Priority)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.MaintenanceRequest
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) UpdateMaintenance(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.MaintenanceRequest{}).
		Where("id = ?", id).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CreateReport(ctx context.Context, report *models.ProgressReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// ListReports returns the newest reports first. Reports are few per project,
// so a simple capped listing replaces cursor paging here.
func (r *repositoryImpl) ListReports(ctx context.Context, projectID uuid.UUID, limit int) ([]models.ProgressReport, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var rows []models.ProgressReport
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("report_date DESC, created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
