package arxis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	dbtypes "github.com/VIERNES-8020/domino-backend/pkg/db/types"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/logger"
	"github.com/VIERNES-8020/domino-backend/pkg/pagination"
)

type photoVerifier interface {
	FilterOwned(ctx context.Context, ownerID uuid.UUID, kind enums.MediaKind, ids []uuid.UUID) ([]uuid.UUID, error)
}

// ProjectListParams filters the project listing.
type ProjectListParams struct {
	Status string
	Limit  int
	Cursor string
}

// MaintenanceListParams filters the ticket listing.
type MaintenanceListParams struct {
	ProjectID  uuid.UUID
	PropertyID uuid.UUID
	Status     string
	Priority   string
	Limit      int
	Cursor     string
}

// Service covers the ARXIS technical-services division: projects,
// maintenance tickets, and progress reports.
type Service interface {
	CreateProject(ctx context.Context, managerID uuid.UUID, input CreateProjectDTO) (*ProjectDTO, error)
	GetProject(ctx context.Context, id uuid.UUID) (*ProjectDTO, error)
	ListProjects(ctx context.Context, params ProjectListParams) (*ProjectListResult, error)
	UpdateProject(ctx context.Context, id uuid.UUID, input UpdateProjectDTO) (*ProjectDTO, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error

	CreateMaintenance(ctx context.Context, requesterID uuid.UUID, input CreateMaintenanceDTO) (*MaintenanceDTO, error)
	ListMaintenance(ctx context.Context, params MaintenanceListParams) (*MaintenanceListResult, error)
	UpdateMaintenance(ctx context.Context, id uuid.UUID, input UpdateMaintenanceDTO) (*MaintenanceDTO, error)

	CreateReport(ctx context.Context, projectID, authorID uuid.UUID, input CreateReportDTO) (*ReportDTO, error)
	ListReports(ctx context.Context, projectID uuid.UUID, limit int) ([]ReportDTO, error)
}

type service struct {
	repo   Repository
	photos photoVerifier
	logg   *logger.Logger
}

// NewService wires the ARXIS service.
func NewService(repo Repository, photos photoVerifier, logg *logger.Logger) (Service, error) {
	if repo == nil || photos == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "arxis service missing dependencies")
	}
	return &service{repo: repo, photos: photos, logg: logg}, nil
}

func (s *service) CreateProject(ctx context.Context, managerID uuid.UUID, input CreateProjectDTO) (*ProjectDTO, error) {
	if managerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project name required")
	}

	currency := enums.CurrencyUSD
	if input.Currency != "" {
		parsed, err := enums.ParseCurrency(input.Currency)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
		}
		currency = parsed
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end_date must not precede start_date")
	}

	project := &models.ArxisProject{
		ManagerID:   managerID,
		Name:        name,
		ClientName:  strings.TrimSpace(input.ClientName),
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		Status:      enums.ProjectStatusPlanned,
		Budget:      input.Budget,
		Currency:    currency,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create project")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "project_id", project.ID.String()), "arxis project created")
	}
	return projectFromModel(project), nil
}

func (s *service) GetProject(ctx context.Context, id uuid.UUID) (*ProjectDTO, error) {
	project, err := s.findProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return projectFromModel(project), nil
}

func (s *service) ListProjects(ctx context.Context, params ProjectListParams) (*ProjectListResult, error) {
	query := listProjectsParams{Limit: params.Limit}
	if params.Status != "" {
		status, err := enums.ParseProjectStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		query.Status = status
	}
	if params.Cursor != "" {
		cursor, err := pagination.Parse(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListProjects(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list projects")
	}

	result := &ProjectListResult{Items: make([]ProjectDTO, 0, len(rows))}
	for i := range rows {
		result.Items = append(result.Items, *projectFromModel(&rows[i]))
	}
	if next != nil {
		result.NextCursor = next.Encode()
	}
	return result, nil
}

func (s *service) UpdateProject(ctx context.Context, id uuid.UUID, input UpdateProjectDTO) (*ProjectDTO, error) {
	if _, err := s.findProject(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "project name required")
		}
		updates["name"] = name
	}
	if input.ClientName != nil {
		updates["client_name"] = strings.TrimSpace(*input.ClientName)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Location != nil {
		updates["location"] = strings.TrimSpace(*input.Location)
	}
	if input.Status != nil {
		status, err := enums.ParseProjectStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid project status")
		}
		updates["status"] = status
	}
	if input.Budget != nil {
		if *input.Budget <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "budget must be positive")
		}
		updates["budget"] = *input.Budget
	}
	if input.StartDate != nil {
		updates["start_date"] = *input.StartDate
	}
	if input.EndDate != nil {
		updates["end_date"] = *input.EndDate
	}
	if len(updates) == 0 {
		return s.GetProject(ctx, id)
	}

	if _, err := s.repo.UpdateProject(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update project")
	}
	return s.GetProject(ctx, id)
}

func (s *service) DeleteProject(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	affected, err := s.repo.DeleteProject(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete project")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
	}
	return nil
}

func (s *service) CreateMaintenance(ctx context.Context, requesterID uuid.UUID, input CreateMaintenanceDTO) (*MaintenanceDTO, error) {
	if requesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.ProjectID == nil && input.PropertyID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a project or property reference is required")
	}

	priority := enums.MaintenancePriorityMedium
	if input.Priority != "" {
		parsed, err := enums.ParseMaintenancePriority(input.Priority)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
		}
		priority = parsed
	}
	if input.ProjectID != nil {
		if _, err := s.findProject(ctx, *input.ProjectID); err != nil {
			return nil, err
		}
	}

	request := &models.MaintenanceRequest{
		ProjectID:   input.ProjectID,
		PropertyID:  input.PropertyID,
		RequestedBy: requesterID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
		Status:      enums.MaintenanceStatusOpen,
		AssignedTo:  input.AssignedTo,
	}
	if err := s.repo.CreateMaintenance(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create maintenance request")
	}
	return maintenanceFromModel(request), nil
}

func (s *service) ListMaintenance(ctx context.Context, params MaintenanceListParams) (*MaintenanceListResult, error) {
	query := listMaintenanceParams{
		ProjectID:  params.ProjectID,
		PropertyID: params.PropertyID,
		Limit:      params.Limit,
	}
	if params.Status != "" {
		status, err := enums.ParseMaintenanceStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		query.Status = status
	}
	if params.Priority != "" {
		priority, err := enums.ParseMaintenancePriority(params.Priority)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority filter")
		}
		query.Priority = priority
	}
	if params.Cursor != "" {
		cursor, err := pagination.Parse(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListMaintenance(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list maintenance requests")
	}

	result := &MaintenanceListResult{Items: make([]MaintenanceDTO, 0, len(rows))}
	for i := range rows {
		result.Items = append(result.Items, *maintenanceFromModel(&rows[i]))
	}
	if next != nil {
		result.NextCursor = next.Encode()
	}
	return result, nil
}

func (s *service) UpdateMaintenance(ctx context.Context, id uuid.UUID, input UpdateMaintenanceDTO) (*MaintenanceDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if _, err := s.repo.FindMaintenance(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "maintenance request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load maintenance request")
	}

	updates := map[string]any{}
	if input.Status != nil {
		status, err := enums.ParseMaintenanceStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		updates["status"] = status
		if status == enums.MaintenanceStatusDone {
			updates["resolved_at"] = time.Now().UTC()
		} else {
			updates["resolved_at"] = nil
		}
	}
	if input.Priority != nil {
		priority, err := enums.ParseMaintenancePriority(*input.Priority)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
		}
		updates["priority"] = priority
	}
	if input.AssignedTo != nil {
		updates["assigned_to"] = *input.AssignedTo
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	if _, err := s.repo.UpdateMaintenance(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update maintenance request")
	}
	row, err := s.repo.FindMaintenance(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload maintenance request")
	}
	return maintenanceFromModel(row), nil
}

func (s *service) CreateReport(ctx context.Context, projectID, authorID uuid.UUID, input CreateReportDTO) (*ReportDTO, error) {
	if authorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if _, err := s.findProject(ctx, projectID); err != nil {
		return nil, err
	}
	summary := strings.TrimSpace(input.Summary)
	if summary == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "summary required")
	}
	if input.ProgressPct < 0 || input.ProgressPct > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent_complete must be between 0 and 100")
	}

	// Site photos are dropped when unverifiable, same as listing images.
	photos, err := s.photos.FilterOwned(ctx, authorID, enums.MediaKindArxisDoc, input.PhotoMediaIDs)
	if err != nil {
		return nil, err
	}

	reportDate := input.ReportDate
	if reportDate.IsZero() {
		reportDate = time.Now().UTC()
	}

	report := &models.ProgressReport{
		ProjectID:     projectID,
		AuthorID:      authorID,
		Summary:       summary,
		ProgressPct:   input.ProgressPct,
		PhotoMediaIDs: dbtypes.UUIDArray(photos),
		ReportDate:    reportDate,
	}
	if err := s.repo.CreateReport(ctx, report); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create progress report")
	}
	return reportFromModel(report), nil
}

func (s *service) ListReports(ctx context.Context, projectID uuid.UUID, limit int) ([]ReportDTO, error) {
	if _, err := s.findProject(ctx, projectID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListReports(ctx, projectID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list progress reports")
	}
	out := make([]ReportDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *reportFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) findProject(ctx context.Context, id uuid.UUID) (*models.ArxisProject, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	project, err := s.repo.FindProject(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	return project, nil
}
