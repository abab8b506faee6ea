package closures

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/outbox"
	"github.com/VIERNES-8020/domino-backend/pkg/pagination"
)

type fakeClosureRepo struct {
	rows     map[uuid.UUID]*models.SaleClosure
	statsOut []statsRow
	lastList listClosuresParams
}

func newFakeClosureRepo() *fakeClosureRepo {
	return &fakeClosureRepo{rows: make(map[uuid.UUID]*models.SaleClosure)}
}

func (f *fakeClosureRepo) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func (f *fakeClosureRepo) CreateTx(_ *gorm.DB, closure *models.SaleClosure) error {
	closure.ID = uuid.New()
	closure.CreatedAt = time.Now().UTC()
	closure.UpdatedAt = closure.CreatedAt
	f.rows[closure.ID] = closure
	return nil
}

func (f *fakeClosureRepo) FindByID(_ context.Context, id uuid.UUID) (*models.SaleClosure, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeClosureRepo) List(_ context.Context, params listClosuresParams) ([]models.SaleClosure, *pagination.Cursor, error) {
	f.lastList = params
	var out []models.SaleClosure
	for _, row := range f.rows {
		if params.ViewerID != uuid.Nil && row.AgentCaptadorID != params.ViewerID && row.AgentVendedorID != params.ViewerID {
			continue
		}
		if params.Status != "" && row.Status != params.Status {
			continue
		}
		out = append(out, *row)
	}
	return out, nil, nil
}

func (f *fakeClosureRepo) UpdateReviewTx(_ *gorm.DB, id uuid.UUID, updates map[string]any) (int64, error) {
	row, ok := f.rows[id]
	if !ok {
		return 0, nil
	}
	if status, ok := updates["status"].(enums.ClosureStatus); ok {
		row.Status = status
	}
	if by, ok := updates["validated_by"].(uuid.UUID); ok {
		row.ValidatedBy = &by
	}
	if at, ok := updates["validated_at"].(time.Time); ok {
		row.ValidatedAt = &at
	}
	switch reason := updates["rejection_reason"].(type) {
	case string:
		row.RejectionReason = &reason
	case nil:
		row.RejectionReason = nil
	}
	return 1, nil
}

func (f *fakeClosureRepo) Stats(_ context.Context, _ uuid.UUID) ([]statsRow, error) {
	return f.statsOut, nil
}

type fakePropertyFinder struct {
	properties map[uuid.UUID]*models.Property
}

func (f *fakePropertyFinder) FindByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	row, ok := f.properties[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

type fakeVerifier struct {
	err error
}

func (f *fakeVerifier) VerifyAttachments(_ context.Context, _ uuid.UUID, kind enums.MediaKind, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if f.err != nil {
		return f.err
	}
	_ = kind
	return nil
}

type emittedEvent struct {
	event outbox.DomainEvent
}

type fakeEmitter struct {
	events []emittedEvent
}

func (f *fakeEmitter) EmitIfNotExists(_ context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if tx == nil {
		panic("emit outside a transaction")
	}
	f.events = append(f.events, emittedEvent{event: event})
	return nil
}

type closureFixture struct {
	repo       *fakeClosureRepo
	properties *fakePropertyFinder
	verifier   *fakeVerifier
	emitter    *fakeEmitter
	svc        Service
	property   *models.Property
	agentID    uuid.UUID
}

func newClosureFixture(t *testing.T) *closureFixture {
	t.Helper()
	agentID := uuid.New()
	property := &models.Property{
		ID:       uuid.New(),
		AgentID:  agentID,
		Title:    "Casa en Equipetrol",
		Code:     "DOM-AB12CD34",
		Price:    120000,
		Currency: enums.CurrencyUSD,
	}
	fx := &closureFixture{
		repo:       newFakeClosureRepo(),
		properties: &fakePropertyFinder{properties: map[uuid.UUID]*models.Property{property.ID: property}},
		verifier:   &fakeVerifier{},
		emitter:    &fakeEmitter{},
		property:   property,
		agentID:    agentID,
	}
	svc, err := NewService(ServiceParams{
		Repo:       fx.repo,
		Properties: fx.properties,
		Media:      fx.verifier,
		Emitter:    fx.emitter,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	fx.svc = svc
	return fx
}

func validSubmit(fx *closureFixture) SubmitClosureDTO {
	return SubmitClosureDTO{
		PropertyID:      fx.property.ID,
		TransactionType: "sale",
		ClosurePrice:    100000,
		ContractMediaID: uuid.New(),
	}
}

func TestSubmitComputesDefaultSplit(t *testing.T) {
	fx := newClosureFixture(t)
	submitter := uuid.New()

	dto, err := fx.svc.Submit(context.Background(), submitter, validSubmit(fx))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if dto.Status != enums.ClosureStatusPending {
		t.Fatalf("status = %s, want pending", dto.Status)
	}
	if dto.OfficeAmount != 30000 || dto.CaptadorAmount != 35000 || dto.VendedorAmount != 35000 {
		t.Fatalf("amounts = %f/%f/%f, want 30000/35000/35000", dto.OfficeAmount, dto.CaptadorAmount, dto.VendedorAmount)
	}
	if dto.PublishedPrice != 120000 {
		t.Fatalf("published price not captured from listing: %f", dto.PublishedPrice)
	}
	if dto.AgentCaptadorID != fx.agentID {
		t.Fatal("captador should default to the listing agent")
	}
	if dto.AgentVendedorID != submitter {
		t.Fatal("vendedor should default to the submitter")
	}
	if dto.Currency != enums.CurrencyUSD {
		t.Fatalf("currency should follow the listing: %s", dto.Currency)
	}
}

func TestSubmitEmitsOutboxEventInTransaction(t *testing.T) {
	fx := newClosureFixture(t)

	dto, err := fx.svc.Submit(context.Background(), uuid.New(), validSubmit(fx))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(fx.emitter.events) != 1 {
		t.Fatalf("events = %d, want 1", len(fx.emitter.events))
	}
	event := fx.emitter.events[0].event
	if event.EventType != enums.OutboxEventClosureSubmitted {
		t.Fatalf("event type = %s", event.EventType)
	}
	if event.AggregateID != dto.ID {
		t.Fatal("event must reference the inserted closure")
	}
}

func TestSubmitStoresCustomSplitAsEntered(t *testing.T) {
	fx := newClosureFixture(t)
	input := validSubmit(fx)
	fifty := 50.0
	input.OfficePct = &fifty
	input.CaptadorPct = &fifty
	input.VendedorPct = &fifty

	dto, err := fx.svc.Submit(context.Background(), uuid.New(), input)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	// 150% total is accepted; the split is whatever the agent entered.
	if dto.OfficeAmount != 50000 || dto.CaptadorAmount != 50000 || dto.VendedorAmount != 50000 {
		t.Fatalf("amounts = %f/%f/%f", dto.OfficeAmount, dto.CaptadorAmount, dto.VendedorAmount)
	}
}

func TestSubmitValidation(t *testing.T) {
	fx := newClosureFixture(t)
	outOfRange := 130.0

	cases := []struct {
		name   string
		mutate func(*SubmitClosureDTO)
	}{
		{"missing property", func(d *SubmitClosureDTO) { d.PropertyID = uuid.Nil }},
		{"zero price", func(d *SubmitClosureDTO) { d.ClosurePrice = 0 }},
		{"negative price", func(d *SubmitClosureDTO) { d.ClosurePrice = -5 }},
		{"missing contract", func(d *SubmitClosureDTO) { d.ContractMediaID = uuid.Nil }},
		{"bad transaction type", func(d *SubmitClosureDTO) { d.TransactionType = "lease" }},
		{"bad currency", func(d *SubmitClosureDTO) { d.Currency = "EUR" }},
		{"percentage above 100", func(d *SubmitClosureDTO) { d.OfficePct = &outOfRange }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validSubmit(fx)
			tc.mutate(&input)
			_, err := fx.svc.Submit(context.Background(), uuid.New(), input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(fx.repo.rows) != 0 {
				t.Fatal("nothing may be written on validation failure")
			}
		})
	}
}

func TestSubmitFailsWhenContractUnverified(t *testing.T) {
	fx := newClosureFixture(t)
	fx.verifier.err = pkgerrors.New(pkgerrors.CodeUpload, "closure_contract attachment not uploaded")

	_, err := fx.svc.Submit(context.Background(), uuid.New(), validSubmit(fx))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUpload {
		t.Fatalf("expected upload error, got %v", err)
	}
	if len(fx.repo.rows) != 0 {
		t.Fatal("a closure must not be recorded without its paperwork")
	}
	if len(fx.emitter.events) != 0 {
		t.Fatal("no event may be emitted for a rejected submission")
	}
}

func TestValidateSetsReviewFieldsWithoutRecomputingAmounts(t *testing.T) {
	fx := newClosureFixture(t)
	submitted, err := fx.svc.Submit(context.Background(), uuid.New(), validSubmit(fx))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	// Simulate a later change to the stored percentages; validation must not
	// touch the amounts written at submission.
	fx.repo.rows[submitted.ID].OfficePct = 99

	adminID := uuid.New()
	dto, err := fx.svc.Validate(context.Background(), adminID, submitted.ID)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if dto.Status != enums.ClosureStatusValidated {
		t.Fatalf("status = %s", dto.Status)
	}
	if dto.ValidatedBy == nil || *dto.ValidatedBy != adminID {
		t.Fatal("validated_by not set")
	}
	if dto.ValidatedAt == nil {
		t.Fatal("validated_at not set")
	}
	if dto.OfficeAmount != submitted.OfficeAmount {
		t.Fatal("amounts must stay as stored at submission")
	}

	last := fx.emitter.events[len(fx.emitter.events)-1].event
	if last.EventType != enums.OutboxEventClosureValidated {
		t.Fatalf("event type = %s", last.EventType)
	}
}

func TestRejectRequiresReasonBeforeAnyWrite(t *testing.T) {
	fx := newClosureFixture(t)
	submitted, err := fx.svc.Submit(context.Background(), uuid.New(), validSubmit(fx))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, err = fx.svc.Reject(context.Background(), uuid.New(), submitted.ID, "   ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if fx.repo.rows[submitted.ID].Status != enums.ClosureStatusPending {
		t.Fatal("a blank reason must not change the row")
	}

	dto, err := fx.svc.Reject(context.Background(), uuid.New(), submitted.ID, "price does not match the contract")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if dto.Status != enums.ClosureStatusRejected {
		t.Fatalf("status = %s", dto.Status)
	}
	if dto.RejectionReason == nil || *dto.RejectionReason != "price does not match the contract" {
		t.Fatalf("reason = %v", dto.RejectionReason)
	}
}

func TestReviewIsLastWriteWins(t *testing.T) {
	fx := newClosureFixture(t)
	submitted, err := fx.svc.Submit(context.Background(), uuid.New(), validSubmit(fx))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	firstAdmin := uuid.New()
	if _, err := fx.svc.Validate(context.Background(), firstAdmin, submitted.ID); err != nil {
		t.Fatalf("first review: %v", err)
	}

	secondAdmin := uuid.New()
	dto, err := fx.svc.Reject(context.Background(), secondAdmin, submitted.ID, "duplicate filing")
	if err != nil {
		t.Fatalf("second review: %v", err)
	}
	if dto.Status != enums.ClosureStatusRejected {
		t.Fatalf("status = %s, the later review wins", dto.Status)
	}
	if dto.ValidatedBy == nil || *dto.ValidatedBy != secondAdmin {
		t.Fatal("reviewer must be overwritten by the later review")
	}
}

func TestGetScopesToParticipants(t *testing.T) {
	fx := newClosureFixture(t)
	submitter := uuid.New()
	submitted, err := fx.svc.Submit(context.Background(), submitter, validSubmit(fx))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := fx.svc.Get(context.Background(), Viewer{UserID: submitter, Role: enums.UserRoleAgent}, submitted.ID); err != nil {
		t.Fatalf("vendedor must see own closure: %v", err)
	}
	if _, err := fx.svc.Get(context.Background(), Viewer{UserID: fx.agentID, Role: enums.UserRoleAgent}, submitted.ID); err != nil {
		t.Fatalf("captador must see own closure: %v", err)
	}
	if _, err := fx.svc.Get(context.Background(), Viewer{UserID: uuid.New(), Role: enums.UserRoleAdmin}, submitted.ID); err != nil {
		t.Fatalf("admin must see any closure: %v", err)
	}

	_, err = fx.svc.Get(context.Background(), Viewer{UserID: uuid.New(), Role: enums.UserRoleAgent}, submitted.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign agent must get not found, got %v", err)
	}
}

func TestListScopesAgentButNotAccounting(t *testing.T) {
	fx := newClosureFixture(t)
	agent := uuid.New()

	if _, err := fx.svc.List(context.Background(), Viewer{UserID: agent, Role: enums.UserRoleAgent}, ListParams{}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if fx.repo.lastList.ViewerID != agent {
		t.Fatal("agent listing must be scoped to the viewer")
	}

	if _, err := fx.svc.List(context.Background(), Viewer{UserID: uuid.New(), Role: enums.UserRoleAccounting}, ListParams{Status: "pending"}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if fx.repo.lastList.ViewerID != uuid.Nil {
		t.Fatal("accounting sees all rows")
	}
	if fx.repo.lastList.Status != enums.ClosureStatusPending {
		t.Fatal("status filter not forwarded")
	}
}

func TestStatsSeparatesCurrencies(t *testing.T) {
	fx := newClosureFixture(t)
	fx.repo.statsOut = []statsRow{
		{Status: enums.ClosureStatusPending, Currency: enums.CurrencyUSD, Count: 2, Total: decimal.RequireFromString("250000.50")},
		{Status: enums.ClosureStatusValidated, Currency: enums.CurrencyUSD, Count: 1, Total: decimal.RequireFromString("99999.50")},
		{Status: enums.ClosureStatusValidated, Currency: enums.CurrencyBOB, Count: 3, Total: decimal.RequireFromString("700000")},
		{Status: enums.ClosureStatusRejected, Currency: enums.CurrencyBOB, Count: 1, Total: decimal.RequireFromString("120000")},
	}

	stats, err := fx.svc.Stats(context.Background(), Viewer{UserID: uuid.New(), Role: enums.UserRoleAdmin})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Pending != 2 || stats.Validated != 4 || stats.Rejected != 1 {
		t.Fatalf("counts = %d/%d/%d", stats.Pending, stats.Validated, stats.Rejected)
	}
	if len(stats.VolumeByCurrency) != 2 {
		t.Fatalf("currencies = %d, want 2 separate buckets", len(stats.VolumeByCurrency))
	}
	for _, bucket := range stats.VolumeByCurrency {
		switch bucket.Currency {
		case enums.CurrencyBOB:
			if bucket.Total != "820000" || bucket.Count != 4 {
				t.Fatalf("BOB bucket = %+v", bucket)
			}
		case enums.CurrencyUSD:
			if bucket.Total != "350000.00" || bucket.Count != 3 {
				t.Fatalf("USD bucket = %+v", bucket)
			}
		default:
			t.Fatalf("unexpected currency %s", bucket.Currency)
		}
	}
	if stats.VolumeByCurrency[0].Currency != enums.CurrencyBOB {
		t.Fatal("buckets must be sorted by currency")
	}
}

func TestStatsRequiresIdentityForAgents(t *testing.T) {
	fx := newClosureFixture(t)
	_, err := fx.svc.Stats(context.Background(), Viewer{Role: enums.UserRoleAgent})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
