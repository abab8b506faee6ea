package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
)

// statusCountRow is one (status, count) bucket of a grouped count query.
type statusCountRow struct {
	Status string `gorm:"column:status"`
	Count  int64  `gorm:"column:count"`
}

// currencyTotalRow carries a per-currency monetary sum. Totals come out of
// SUM(...::numeric) and are scanned into decimals so BOB and USD figures
// keep their exact scale; they are never added together.
type currencyTotalRow struct {
	Currency enums.Currency  `gorm:"column:currency"`
	Total    decimal.Decimal `gorm:"column:total"`
}

// payoutRow is one agent's validated commission in one currency, with the
// display name joined in so the accounting view needs no second lookup.
type payoutRow struct {
	AgentID   uuid.UUID       `gorm:"column:agent_id"`
	AgentName string          `gorm:"column:agent_name"`
	Currency  enums.Currency  `gorm:"column:currency"`
	Total     decimal.Decimal `gorm:"column:total"`
}

// Repository aggregates counts and sums for the dashboard endpoints. All
// queries are read-only.
type Repository interface {
	PropertyCountsByStatus(ctx context.Context, agentID uuid.UUID) ([]statusCountRow, error)
	ClosureCountsByStatus(ctx context.Context, viewerID uuid.UUID) ([]statusCountRow, error)
	AgentCommissionByCurrency(ctx context.Context, agentID uuid.UUID) ([]currencyTotalRow, error)
	CountUsers(ctx context.Context) (int64, error)
	CountProperties(ctx context.Context) (int64, error)
	ValidatedVolumeByCurrency(ctx context.Context) ([]currencyTotalRow, error)
	OfficeIncomeByCurrency(ctx context.Context) ([]currencyTotalRow, error)
	AgentPayouts(ctx context.Context) ([]payoutRow, error)
	ProjectCountsByStatus(ctx context.Context) ([]statusCountRow, error)
	MaintenanceCountsByStatus(ctx context.Context) ([]statusCountRow, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a dashboard repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) PropertyCountsByStatus(ctx context.Context, agentID uuid.UUID) ([]statusCountRow, error) {
	query := r.db.WithContext(ctx).Model(&models.Property{}).
		Select("status, COUNT(*) AS count").
		Group("status")
	if agentID != uuid.Nil {
		query = query.Where("agent_id = ?", agentID)
	}
	var rows []statusCountRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ClosureCountsByStatus(ctx context.Context, viewerID uuid.UUID) ([]statusCountRow, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleClosure{}).
		Select("status, COUNT(*) AS count").
		Group("status")
	if viewerID != uuid.Nil {
		query = query.Where("agent_captador_id = ? OR agent_vendedor_id = ?", viewerID, viewerID)
	}
	var rows []statusCountRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) AgentCommissionByCurrency(ctx context.Context, agentID uuid.UUID) ([]currencyTotalRow, error) {
	var rows []currencyTotalRow
	err := r.db.WithContext(ctx).Model(&models.SaleClosure{}).
		Select(`currency,
			SUM(CASE WHEN agent_captador_id = @agent THEN captador_amount::numeric ELSE 0 END
			  + CASE WHEN agent_vendedor_id = @agent THEN vendedor_amount::numeric ELSE 0 END) AS total`,
			map[string]any{"agent": agentID}).
		Where("status = ?", enums.ClosureStatusValidated).
		Where("agent_captador_id = @agent OR agent_vendedor_id = @agent", map[string]any{"agent": agentID}).
		Group("currency").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountProperties(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Property{}).Count(&count).Error
	return count, err
}

func (r *repositoryImpl) ValidatedVolumeByCurrency(ctx context.Context) ([]currencyTotalRow, error) {
	var rows []currencyTotalRow
	err := r.db.WithContext(ctx).Model(&models.SaleClosure{}).
		Select("currency, SUM(closure_price::numeric) AS total").
		Where("status = ?", enums.ClosureStatusValidated).
		Group("currency").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) OfficeIncomeByCurrency(ctx context.Context) ([]currencyTotalRow, error) {
	var rows []currencyTotalRow
	err := r.db.WithContext(ctx).Model(&models.SaleClosure{}).
		Select("currency, SUM(office_amount::numeric) AS total").
		Where("status = ?", enums.ClosureStatusValidated).
		Group("currency").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AgentPayouts unpivots the captador and vendedor legs of every validated
// closure so an agent who worked both sides of a deal is credited twice.
func (r *repositoryImpl) AgentPayouts(ctx context.Context) ([]payoutRow, error) {
	var rows []payoutRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.agent_id,
		       u.first_name || ' ' || u.last_name AS agent_name,
		       p.currency,
		       SUM(p.amount) AS total
		FROM (
			SELECT agent_captador_id AS agent_id, currency, captador_amount::numeric AS amount
			FROM sale_closures WHERE status = ?
			UNION ALL
			SELECT agent_vendedor_id, currency, vendedor_amount::numeric
			FROM sale_closures WHERE status = ?
		) p
		JOIN users u ON u.id = p.agent_id
		GROUP BY p.agent_id, agent_name, p.currency
		ORDER BY agent_name, p.currency`,
		enums.ClosureStatusValidated, enums.ClosureStatusValidated).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ProjectCountsByStatus(ctx context.Context) ([]statusCountRow, error) {
	var rows []statusCountRow
	err := r.db.WithContext(ctx).Model(&models.ArxisProject{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) MaintenanceCountsByStatus(ctx context.Context) ([]statusCountRow, error) {
	var rows []statusCountRow
	err := r.db.WithContext(ctx).Model(&models.MaintenanceRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
