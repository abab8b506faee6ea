package closures

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	dbtypes "github.com/VIERNES-8020/domino-backend/pkg/db/types"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/logger"
	"github.com/VIERNES-8020/domino-backend/pkg/metrics"
	"github.com/VIERNES-8020/domino-backend/pkg/outbox"
	"github.com/VIERNES-8020/domino-backend/pkg/outbox/payloads"
	"github.com/VIERNES-8020/domino-backend/pkg/pagination"
)

// Viewer identifies who is asking and with which role.
type Viewer struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

func (v Viewer) seesAll() bool {
	return v.Role.IsAdmin() || v.Role == enums.UserRoleAccounting
}

type propertyFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
}

type attachmentVerifier interface {
	VerifyAttachments(ctx context.Context, ownerID uuid.UUID, kind enums.MediaKind, ids []uuid.UUID) error
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ListParams filters a closure listing.
type ListParams struct {
	Status string
	Limit  int
	Cursor string
}

// Service covers the closure workflow: submission, admin review, listing,
// and per-currency stats.
type Service interface {
	Submit(ctx context.Context, submitterID uuid.UUID, input SubmitClosureDTO) (*ClosureDTO, error)
	Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*ClosureDTO, error)
	List(ctx context.Context, viewer Viewer, params ListParams) (*ListResult, error)
	Validate(ctx context.Context, adminID uuid.UUID, id uuid.UUID) (*ClosureDTO, error)
	Reject(ctx context.Context, adminID uuid.UUID, id uuid.UUID, reason string) (*ClosureDTO, error)
	Stats(ctx context.Context, viewer Viewer) (*StatsResult, error)
}

type service struct {
	repo       Repository
	properties propertyFinder
	media      attachmentVerifier
	emitter    outboxEmitter
	metrics    *metrics.ClosureMetrics
	logg       *logger.Logger
}

// ServiceParams bundles the closure service dependencies.
type ServiceParams struct {
	Repo       Repository
	Properties propertyFinder
	Media      attachmentVerifier
	Emitter    outboxEmitter
	Metrics    *metrics.ClosureMetrics
	Logger     *logger.Logger
}

// NewService wires the closure workflow service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil || params.Properties == nil || params.Media == nil || params.Emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "closure service missing dependencies")
	}
	return &service{
		repo:       params.Repo,
		properties: params.Properties,
		media:      params.Media,
		emitter:    params.Emitter,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

func (s *service) Submit(ctx context.Context, submitterID uuid.UUID, input SubmitClosureDTO) (*ClosureDTO, error) {
	if submitterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if input.PropertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property_id required")
	}
	if input.ClosurePrice <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "closure_price must be greater than zero")
	}
	if input.ContractMediaID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract_media_id required")
	}

	transactionType, err := enums.ParseTransactionType(input.TransactionType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction_type")
	}

	officePct := pctOrDefault(input.OfficePct, DefaultOfficePct)
	captadorPct := pctOrDefault(input.CaptadorPct, DefaultCaptadorPct)
	vendedorPct := pctOrDefault(input.VendedorPct, DefaultVendedorPct)
	for _, pct := range []float64{officePct, captadorPct, vendedorPct} {
		if pct < 0 || pct > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentages must be between 0 and 100")
		}
	}

	property, err := s.properties.FindByID(ctx, input.PropertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load property")
	}

	// Currency follows the submission when given, the listing otherwise.
	currency := property.Currency
	if input.Currency != "" {
		currency, err = enums.ParseCurrency(input.Currency)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
		}
	}

	captadorID := input.AgentCaptadorID
	if captadorID == uuid.Nil {
		captadorID = property.AgentID
	}
	vendedorID := input.AgentVendedorID
	if vendedorID == uuid.Nil {
		vendedorID = submitterID
	}

	// A closure without its paperwork must not be recorded. Either
	// verification failing aborts the whole submission.
	if err := s.media.VerifyAttachments(ctx, submitterID, enums.MediaKindClosureContract, []uuid.UUID{input.ContractMediaID}); err != nil {
		return nil, err
	}
	if err := s.media.VerifyAttachments(ctx, submitterID, enums.MediaKindClosureVoucher, input.VoucherMediaIDs); err != nil {
		return nil, err
	}

	split := ComputeSplit(input.ClosurePrice, officePct, captadorPct, vendedorPct)

	closureDate := input.ClosureDate
	if closureDate.IsZero() {
		closureDate = time.Now().UTC()
	}

	closure := &models.SaleClosure{
		PropertyID:      property.ID,
		AgentCaptadorID: captadorID,
		AgentVendedorID: vendedorID,
		TransactionType: transactionType,
		PublishedPrice:  property.Price,
		ClosurePrice:    input.ClosurePrice,
		Currency:        currency,
		OfficePct:       officePct,
		CaptadorPct:     captadorPct,
		VendedorPct:     vendedorPct,
		OfficeAmount:    split.OfficeAmount,
		CaptadorAmount:  split.CaptadorAmount,
		VendedorAmount:  split.VendedorAmount,
		Status:          enums.ClosureStatusPending,
		ContractMediaID: input.ContractMediaID,
		VoucherMediaIDs: dbtypes.UUIDArray(input.VoucherMediaIDs),
		Notes:           input.Notes,
		ClosureDate:     closureDate,
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, closure); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert closure")
		}
		return s.emitter.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventClosureSubmitted,
			AggregateType: enums.OutboxAggregateClosure,
			AggregateID:   closure.ID,
			Actor:         &outbox.ActorRef{UserID: submitterID, Role: string(enums.UserRoleAgent)},
			Data: payloads.ClosureSubmittedEvent{
				ClosureID:       closure.ID,
				PropertyID:      closure.PropertyID,
				AgentCaptadorID: closure.AgentCaptadorID,
				AgentVendedorID: closure.AgentVendedorID,
				TransactionType: closure.TransactionType,
				ClosurePrice:    closure.ClosurePrice,
				Currency:        closure.Currency,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncSubmitted()
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"closure_id":  closure.ID.String(),
			"property_id": closure.PropertyID.String(),
			"currency":    closure.Currency,
		})
		s.logg.Info(logCtx, "closure submitted")
	}

	return s.fetch(ctx, closure.ID)
}

func (s *service) Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*ClosureDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "closure id required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "closure not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load closure")
	}
	if !viewer.seesAll() && row.AgentCaptadorID != viewer.UserID && row.AgentVendedorID != viewer.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "closure not found")
	}
	return FromModel(row), nil
}

func (s *service) List(ctx context.Context, viewer Viewer, params ListParams) (*ListResult, error) {
	query := listClosuresParams{Limit: params.Limit}
	if !viewer.seesAll() {
		if viewer.UserID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
		}
		query.ViewerID = viewer.UserID
	}
	if params.Status != "" {
		status, err := enums.ParseClosureStatus(params.Status)
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

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list closures")
	}

	result := &ListResult{Items: make([]ClosureDTO, 0, len(rows))}
	for i := range rows {
		result.Items = append(result.Items, *FromModel(&rows[i]))
	}
	if next != nil {
		result.NextCursor = next.Encode()
	}
	return result, nil
}

// Validate approves a closure. There is no guard on the current status: a
// second review overwrites the first, last write wins.
func (s *service) Validate(ctx context.Context, adminID uuid.UUID, id uuid.UUID) (*ClosureDTO, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	row, err := s.loadForReview(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.UpdateReviewTx(tx, id, map[string]any{
			"status":           enums.ClosureStatusValidated,
			"validated_by":     adminID,
			"validated_at":     now,
			"rejection_reason": nil,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate closure")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "closure not found")
		}
		return s.emitter.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventClosureValidated,
			AggregateType: enums.OutboxAggregateClosure,
			AggregateID:   id,
			Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.UserRoleAdmin)},
			Data: payloads.ClosureValidatedEvent{
				ClosureID:       id,
				PropertyID:      row.PropertyID,
				AgentCaptadorID: row.AgentCaptadorID,
				AgentVendedorID: row.AgentVendedorID,
				ValidatedBy:     adminID,
				ValidatedAt:     now,
				OfficeAmount:    row.OfficeAmount,
				CaptadorAmount:  row.CaptadorAmount,
				VendedorAmount:  row.VendedorAmount,
				Currency:        row.Currency,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncValidated()
	if s.logg != nil {
		s.logg.Info(s.logg.WithClosureID(ctx, id.String()), "closure validated")
	}

	return s.fetch(ctx, id)
}

// Reject turns a closure down. The reason is mandatory and checked before
// anything is written. Like Validate, there is no status guard.
func (s *service) Reject(ctx context.Context, adminID uuid.UUID, id uuid.UUID, reason string) (*ClosureDTO, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}
	row, err := s.loadForReview(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.UpdateReviewTx(tx, id, map[string]any{
			"status":           enums.ClosureStatusRejected,
			"validated_by":     adminID,
			"validated_at":     now,
			"rejection_reason": reason,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject closure")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "closure not found")
		}
		return s.emitter.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventClosureRejected,
			AggregateType: enums.OutboxAggregateClosure,
			AggregateID:   id,
			Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.UserRoleAdmin)},
			Data: payloads.ClosureRejectedEvent{
				ClosureID:       id,
				PropertyID:      row.PropertyID,
				AgentCaptadorID: row.AgentCaptadorID,
				AgentVendedorID: row.AgentVendedorID,
				RejectedBy:      adminID,
				Reason:          reason,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRejected()
	if s.logg != nil {
		s.logg.Info(s.logg.WithClosureID(ctx, id.String()), "closure rejected")
	}

	return s.fetch(ctx, id)
}

func (s *service) Stats(ctx context.Context, viewer Viewer) (*StatsResult, error) {
	viewerID := viewer.UserID
	if viewer.seesAll() {
		viewerID = uuid.Nil
	} else if viewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	rows, err := s.repo.Stats(ctx, viewerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "closure stats")
	}

	result := &StatsResult{}
	volumes := make(map[enums.Currency]decimal.Decimal)
	counts := make(map[enums.Currency]int64)
	for _, row := range rows {
		switch row.Status {
		case enums.ClosureStatusPending:
			result.Pending += row.Count
		case enums.ClosureStatusValidated:
			result.Validated += row.Count
		case enums.ClosureStatusRejected:
			result.Rejected += row.Count
		}
		volumes[row.Currency] = volumes[row.Currency].Add(row.Total)
		counts[row.Currency] += row.Count
	}

	currencies := make([]enums.Currency, 0, len(volumes))
	for currency := range volumes {
		currencies = append(currencies, currency)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })

	// One bucket per currency. USD and BOB never collapse into one number.
	result.VolumeByCurrency = make([]CurrencyTotal, 0, len(currencies))
	for _, currency := range currencies {
		result.VolumeByCurrency = append(result.VolumeByCurrency, CurrencyTotal{
			Currency: currency,
			Total:    volumes[currency].String(),
			Count:    counts[currency],
		})
	}
	return result, nil
}

func (s *service) loadForReview(ctx context.Context, id uuid.UUID) (*models.SaleClosure, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "closure id required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "closure not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load closure")
	}
	return row, nil
}

func (s *service) fetch(ctx context.Context, id uuid.UUID) (*ClosureDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload closure")
	}
	return FromModel(row), nil
}

func pctOrDefault(value *float64, fallback float64) float64 {
	if value == nil {
		return fallback
	}
	return *value
}
