package dashboard

import (
	"context"
	"sort"

	"github.com/google/uuid"

	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/logger"
)

// CurrencyAmount is one per-currency total. Totals are rendered from the
// decimal the query produced, never converted or merged across currencies.
type CurrencyAmount struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
}

// AgentPayout is one agent's validated commission in one currency.
type AgentPayout struct {
	AgentID   uuid.UUID `json:"agent_id"`
	AgentName string    `json:"agent_name"`
	Currency  string    `json:"currency"`
	Total     string    `json:"total"`
}

// AgentDashboardDTO summarises an agent's own portfolio and earnings.
type AgentDashboardDTO struct {
	PropertiesByStatus   map[string]int64 `json:"properties_by_status"`
	ClosuresByStatus     map[string]int64 `json:"closures_by_status"`
	CommissionByCurrency []CurrencyAmount `json:"commission_by_currency"`
}

// AdminDashboardDTO summarises the whole brokerage.
type AdminDashboardDTO struct {
	Users             int64            `json:"users"`
	Properties        int64            `json:"properties"`
	Closures          int64            `json:"closures"`
	PendingReview     int64            `json:"pending_review"`
	ClosuresByStatus  map[string]int64 `json:"closures_by_status"`
	ValidatedVolume   []CurrencyAmount `json:"validated_volume_by_currency"`
}

// AccountingDashboardDTO carries the money views for the accounting role.
type AccountingDashboardDTO struct {
	OfficeIncome []CurrencyAmount `json:"office_income_by_currency"`
	AgentPayouts []AgentPayout    `json:"agent_payouts"`
}

// ArxisDashboardDTO summarises the technical-services division.
type ArxisDashboardDTO struct {
	ProjectsByStatus    map[string]int64 `json:"projects_by_status"`
	MaintenanceByStatus map[string]int64 `json:"maintenance_by_status"`
}

// Service serves the read-only dashboard aggregations.
type Service interface {
	Agent(ctx context.Context, agentID uuid.UUID) (*AgentDashboardDTO, error)
	Admin(ctx context.Context) (*AdminDashboardDTO, error)
	Accounting(ctx context.Context) (*AccountingDashboardDTO, error)
	Arxis(ctx context.Context) (*ArxisDashboardDTO, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the dashboard service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dashboard service missing repository")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Agent(ctx context.Context, agentID uuid.UUID) (*AgentDashboardDTO, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	properties, err := s.repo.PropertyCountsByStatus(ctx, agentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count properties")
	}
	closures, err := s.repo.ClosureCountsByStatus(ctx, agentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count closures")
	}
	commission, err := s.repo.AgentCommissionByCurrency(ctx, agentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum commission")
	}

	return &AgentDashboardDTO{
		PropertiesByStatus:   countsToMap(properties),
		ClosuresByStatus:     countsToMap(closures),
		CommissionByCurrency: currencyAmounts(commission),
	}, nil
}

func (s *service) Admin(ctx context.Context) (*AdminDashboardDTO, error) {
	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	properties, err := s.repo.CountProperties(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count properties")
	}
	closures, err := s.repo.ClosureCountsByStatus(ctx, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count closures")
	}
	volume, err := s.repo.ValidatedVolumeByCurrency(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum validated volume")
	}

	byStatus := countsToMap(closures)
	var total int64
	for _, count := range byStatus {
		total += count
	}

	return &AdminDashboardDTO{
		Users:            users,
		Properties:       properties,
		Closures:         total,
		PendingReview:    byStatus["pending"],
		ClosuresByStatus: byStatus,
		ValidatedVolume:  currencyAmounts(volume),
	}, nil
}

func (s *service) Accounting(ctx context.Context) (*AccountingDashboardDTO, error) {
	income, err := s.repo.OfficeIncomeByCurrency(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum office income")
	}
	payouts, err := s.repo.AgentPayouts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum agent payouts")
	}

	out := &AccountingDashboardDTO{
		OfficeIncome: currencyAmounts(income),
		AgentPayouts: make([]AgentPayout, 0, len(payouts)),
	}
	for _, row := range payouts {
		out.AgentPayouts = append(out.AgentPayouts, AgentPayout{
			AgentID:   row.AgentID,
			AgentName: row.AgentName,
			Currency:  row.Currency.String(),
			Total:     row.Total.String(),
		})
	}
	return out, nil
}

func (s *service) Arxis(ctx context.Context) (*ArxisDashboardDTO, error) {
	projects, err := s.repo.ProjectCountsByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count projects")
	}
	maintenance, err := s.repo.MaintenanceCountsByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count maintenance requests")
	}
	return &ArxisDashboardDTO{
		ProjectsByStatus:    countsToMap(projects),
		MaintenanceByStatus: countsToMap(maintenance),
	}, nil
}

func countsToMap(rows []statusCountRow) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out
}

func currencyAmounts(rows []currencyTotalRow) []CurrencyAmount {
	out := make([]CurrencyAmount, 0, len(rows))
	for _, row := range rows {
		out = append(out, CurrencyAmount{
			Currency: row.Currency.String(),
			Total:    row.Total.String(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}
