package media

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	"github.com/VIERNES-8020/domino-backend/pkg/pagination"
)

// Repository exposes persistence helpers for media metadata rows.
type Repository interface {
	Create(ctx context.Context, media *models.Media) (*models.Media, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, params listMediaParams) ([]models.Media, *pagination.Cursor, error)
	FindOwnedByKind(ctx context.Context, ownerID uuid.UUID, kind enums.MediaKind, ids []uuid.UUID) ([]models.Media, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a media repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listMediaParams struct {
	Kind   enums.MediaKind
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) Create(ctx context.Context, media *models.Media) (*models.Media, error) {
	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).First(&media, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *repositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID, params listMediaParams) ([]models.Media, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Media{}).Where("owner_id = ?", ownerID)
	if params.Kind != "" {
		query = query.Where("kind = ?", params.Kind)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Media
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

func (r *repositoryImpl) FindOwnedByKind(ctx context.Context, ownerID uuid.UUID, kind enums.MediaKind, ids []uuid.UUID) ([]models.Media, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Media
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND kind = ? AND id IN ?", ownerID, kind, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Media{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
