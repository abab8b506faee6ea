package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/outbox"
	"github.com/VIERNES-8020/domino-backend/pkg/pagination"
)

type fakeNotificationRepo struct {
	rows map[uuid.UUID]*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{rows: make(map[uuid.UUID]*models.Notification)}
}

func (f *fakeNotificationRepo) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func (f *fakeNotificationRepo) CreateTx(_ *gorm.DB, notification *models.Notification) error {
	return f.insert(notification)
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *models.Notification) error {
	return f.insert(notification)
}

func (f *fakeNotificationRepo) insert(notification *models.Notification) error {
	notification.ID = uuid.New()
	notification.CreatedAt = time.Now().UTC()
	f.rows[notification.ID] = notification
	return nil
}

func (f *fakeNotificationRepo) FindByRecipient(_ context.Context, recipientID, id uuid.UUID) (*models.Notification, error) {
	row, ok := f.rows[id]
	if !ok || row.RecipientID != recipientID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeNotificationRepo) List(_ context.Context, recipientID uuid.UUID, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	var out []models.Notification
	for _, row := range f.rows {
		if row.RecipientID != recipientID {
			continue
		}
		if params.UnreadOnly && row.ReadAt != nil {
			continue
		}
		out = append(out, *row)
	}
	return out, nil, nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	for _, row := range f.rows {
		if row.RecipientID == recipientID && row.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, recipientID, id uuid.UUID, at time.Time) (int64, error) {
	row, ok := f.rows[id]
	if !ok || row.RecipientID != recipientID || row.ReadAt != nil {
		return 0, nil
	}
	row.ReadAt = &at
	return 1, nil
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID uuid.UUID, at time.Time) (int64, error) {
	var affected int64
	for _, row := range f.rows {
		if row.RecipientID == recipientID && row.ReadAt == nil {
			row.ReadAt = &at
			affected++
		}
	}
	return affected, nil
}

func (f *fakeNotificationRepo) SetResponseTx(_ *gorm.DB, recipientID, id uuid.UUID, response string, at time.Time) (int64, error) {
	row, ok := f.rows[id]
	if !ok || row.RecipientID != recipientID {
		return 0, nil
	}
	row.Response = &response
	row.RespondedAt = &at
	return 1, nil
}

func (f *fakeNotificationRepo) DeleteReadOlderThan(_ context.Context, _ *gorm.DB, cutoff time.Time) (int64, error) {
	var affected int64
	for id, row := range f.rows {
		if row.ReadAt != nil && row.CreatedAt.Before(cutoff) {
			delete(f.rows, id)
			affected++
		}
	}
	return affected, nil
}

type stubPropertyFinder struct {
	property *models.Property
}

func (f *stubPropertyFinder) FindByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	if f.property == nil || f.property.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.property, nil
}

type recordingEmitter struct {
	events []outbox.DomainEvent
}

func (f *recordingEmitter) EmitIfNotExists(_ context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if tx == nil {
		panic("emit outside a transaction")
	}
	f.events = append(f.events, event)
	return nil
}

type inboxFixture struct {
	repo     *fakeNotificationRepo
	emitter  *recordingEmitter
	svc      Service
	property *models.Property
	agentID  uuid.UUID
}

func newInboxFixture(t *testing.T) *inboxFixture {
	t.Helper()
	agentID := uuid.New()
	property := &models.Property{
		ID:      uuid.New(),
		AgentID: agentID,
		Title:   "Departamento en Sopocachi",
		Status:  enums.PropertyStatusAvailable,
	}
	fx := &inboxFixture{
		repo:     newFakeNotificationRepo(),
		emitter:  &recordingEmitter{},
		property: property,
		agentID:  agentID,
	}
	svc, err := NewService(fx.repo, &stubPropertyFinder{property: property}, fx.emitter, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	fx.svc = svc
	return fx
}

func validInquiry() CreateInquiryDTO {
	return CreateInquiryDTO{
		Name:    "Carla Rojas",
		Email:   "Carla.Rojas@example.com",
		Phone:   "+591 700 12345",
		Message: "¿Sigue disponible el departamento?",
	}
}

func TestCreateInquiryNotifiesListingAgent(t *testing.T) {
	fx := newInboxFixture(t)

	dto, err := fx.svc.CreateInquiry(context.Background(), fx.property.ID, validInquiry())
	if err != nil {
		t.Fatalf("CreateInquiry: %v", err)
	}
	row := fx.repo.rows[dto.ID]
	if row.RecipientID != fx.agentID {
		t.Fatal("inquiry must land in the listing agent's inbox")
	}
	if row.Type != enums.NotificationTypePropertyInquiry {
		t.Fatalf("type = %s", row.Type)
	}
	if row.ContactEmail == nil || *row.ContactEmail != "carla.rojas@example.com" {
		t.Fatalf("contact email not normalized: %v", row.ContactEmail)
	}
	if len(fx.emitter.events) != 1 || fx.emitter.events[0].EventType != enums.OutboxEventInquiryCreated {
		t.Fatalf("events = %+v", fx.emitter.events)
	}
}

func TestCreateInquiryHidesUnavailableListings(t *testing.T) {
	fx := newInboxFixture(t)
	fx.property.Status = enums.PropertyStatusSold

	_, err := fx.svc.CreateInquiry(context.Background(), fx.property.ID, validInquiry())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for a sold listing, got %v", err)
	}
	if len(fx.repo.rows) != 0 {
		t.Fatal("nothing may be written for a hidden listing")
	}
}

func TestListReportsUnreadCount(t *testing.T) {
	fx := newInboxFixture(t)
	first, _ := fx.svc.CreateInquiry(context.Background(), fx.property.ID, validInquiry())
	if _, err := fx.svc.CreateInquiry(context.Background(), fx.property.ID, validInquiry()); err != nil {
		t.Fatalf("CreateInquiry: %v", err)
	}

	if err := fx.svc.MarkRead(context.Background(), fx.agentID, first.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	result, err := fx.svc.List(context.Background(), fx.agentID, ListParams{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Items) != 2 || result.UnreadCount != 1 {
		t.Fatalf("items = %d unread = %d", len(result.Items), result.UnreadCount)
	}

	unreadOnly, err := fx.svc.List(context.Background(), fx.agentID, ListParams{UnreadOnly: true})
	if err != nil {
		t.Fatalf("List unread: %v", err)
	}
	if len(unreadOnly.Items) != 1 {
		t.Fatalf("unread items = %d", len(unreadOnly.Items))
	}
}

func TestMarkReadIsIdempotentButScoped(t *testing.T) {
	fx := newInboxFixture(t)
	created, _ := fx.svc.CreateInquiry(context.Background(), fx.property.ID, validInquiry())

	if err := fx.svc.MarkRead(context.Background(), fx.agentID, created.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	firstReadAt := *fx.repo.rows[created.ID].ReadAt

	if err := fx.svc.MarkRead(context.Background(), fx.agentID, created.ID); err != nil {
		t.Fatalf("second MarkRead must succeed: %v", err)
	}
	if !fx.repo.rows[created.ID].ReadAt.Equal(firstReadAt) {
		t.Fatal("read_at must not move on re-read")
	}

	err := fx.svc.MarkRead(context.Background(), uuid.New(), created.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign recipient must get not found, got %v", err)
	}
}

func TestMarkAllRead(t *testing.T) {
	fx := newInboxFixture(t)
	fx.svc.CreateInquiry(context.Background(), fx.property.ID, validInquiry())
	fx.svc.CreateInquiry(context.Background(), fx.property.ID, validInquiry())

	affected, err := fx.svc.MarkAllRead(context.Background(), fx.agentID)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if affected != 2 {
		t.Fatalf("affected = %d", affected)
	}
	count, _ := fx.repo.CountUnread(context.Background(), fx.agentID)
	if count != 0 {
		t.Fatalf("unread after mark all = %d", count)
	}
}

func TestRespondStoresAnswerAndQueuesEmailEvent(t *testing.T) {
	fx := newInboxFixture(t)
	created, _ := fx.svc.CreateInquiry(context.Background(), fx.property.ID, validInquiry())

	dto, err := fx.svc.Respond(context.Background(), fx.agentID, created.ID, RespondDTO{Response: "Sí, sigue disponible."})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if dto.Response == nil || *dto.Response != "Sí, sigue disponible." {
		t.Fatalf("response = %v", dto.Response)
	}
	if dto.RespondedAt == nil {
		t.Fatal("responded_at not set")
	}

	last := fx.emitter.events[len(fx.emitter.events)-1]
	if last.EventType != enums.OutboxEventNotificationResponse {
		t.Fatalf("event type = %s", last.EventType)
	}
}

func TestRespondRejectsNonInquiryRows(t *testing.T) {
	fx := newInboxFixture(t)
	closureID := uuid.New()
	row := &models.Notification{
		RecipientID: fx.agentID,
		Type:        enums.NotificationTypeClosureValidated,
		Title:       "Cierre validado",
		Message:     "…",
		ClosureID:   &closureID,
	}
	fx.repo.insert(row)

	_, err := fx.svc.Respond(context.Background(), fx.agentID, row.ID, RespondDTO{Response: "gracias"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
