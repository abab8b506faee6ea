package closures

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	"github.com/VIERNES-8020/domino-backend/pkg/pagination"
)

// Repository exposes persistence helpers for sale closures. Submission and
// the review writes run inside a caller transaction so the outbox row lands
// in the same commit.
type Repository interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	CreateTx(tx *gorm.DB, closure *models.SaleClosure) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SaleClosure, error)
	List(ctx context.Context, params listClosuresParams) ([]models.SaleClosure, *pagination.Cursor, error)
	UpdateReviewTx(tx *gorm.DB, id uuid.UUID, updates map[string]any) (int64, error)
	Stats(ctx context.Context, viewerID uuid.UUID) ([]statsRow, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a closures repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listClosuresParams struct {
	// ViewerID restricts rows to closures where the viewer is captador or
	// vendedor. Zero means no restriction (admin listing).
	ViewerID uuid.UUID
	Status   enums.ClosureStatus
	Limit    int
	Cursor   *pagination.Cursor
}

// statsRow is one (status, currency) bucket. The total is summed as numeric
// in Postgres and scanned into a decimal so large volumes don't lose cents.
type statsRow struct {
	Status   enums.ClosureStatus
	Currency enums.Currency
	Count    int64
	Total    decimal.Decimal
}

func (r *repositoryImpl) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repositoryImpl) CreateTx(tx *gorm.DB, closure *models.SaleClosure) error {
	return tx.Create(closure).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.SaleClosure, error) {
	var closure models.SaleClosure
	if err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("AgentCaptador").
		Preload("AgentVendedor").
		Preload("Validator").
		First(&closure, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &closure, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listClosuresParams) ([]models.SaleClosure, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.SaleClosure{}).
		Preload("Property").
		Preload("AgentCaptador").
		Preload("AgentVendedor").
		Preload("Validator")
	if params.ViewerID != uuid.Nil {
		query = query.Where("agent_captador_id = ? OR agent_vendedor_id = ?", params.ViewerID, params.ViewerID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.SaleClosure
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

func (r *repositoryImpl) UpdateReviewTx(tx *gorm.DB, id uuid.UUID, updates map[string]any) (int64, error) {
	result := tx.Model(&models.SaleClosure{}).
		Where("id = ?", id).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) Stats(ctx context.Context, viewerID uuid.UUID) ([]statsRow, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleClosure{}).
		Select("status, currency, COUNT(*) AS count, SUM(closure_price::numeric) AS total").
		Group("status, currency")
	if viewerID != uuid.Nil {
		query = query.Where("agent_captador_id = ? OR agent_vendedor_id = ?", viewerID, viewerID)
	}

	var rows []statsRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
