package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/logger"
	"github.com/VIERNES-8020/domino-backend/pkg/outbox"
	"github.com/VIERNES-8020/domino-backend/pkg/outbox/payloads"
	"github.com/VIERNES-8020/domino-backend/pkg/pagination"
)

type propertyFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ListParams filters the recipient's inbox.
type ListParams struct {
	UnreadOnly bool
	Limit      int
	Cursor     string
}

// Service covers the notification feed plus the public inquiry entry point.
type Service interface {
	CreateInquiry(ctx context.Context, propertyID uuid.UUID, input CreateInquiryDTO) (*NotificationDTO, error)
	List(ctx context.Context, recipientID uuid.UUID, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, recipientID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Respond(ctx context.Context, recipientID, id uuid.UUID, input RespondDTO) (*NotificationDTO, error)
}

type service struct {
	repo       Repository
	properties propertyFinder
	emitter    outboxEmitter
	logg       *logger.Logger
}

// NewService wires the notifications service.
func NewService(repo Repository, properties propertyFinder, emitter outboxEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil || properties == nil || emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification service missing dependencies")
	}
	return &service{repo: repo, properties: properties, emitter: emitter, logg: logg}, nil
}

// CreateInquiry records a visitor's question as a notification for the
// listing agent. Only available listings accept inquiries; everything else
// looks like it does not exist.
func (s *service) CreateInquiry(ctx context.Context, propertyID uuid.UUID, input CreateInquiryDTO) (*NotificationDTO, error) {
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}

	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load property")
	}
	if property.Status != enums.PropertyStatusAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}

	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	phone := strings.TrimSpace(input.Phone)
	message := strings.TrimSpace(input.Message)

	notification := &models.Notification{
		RecipientID:  property.AgentID,
		Type:         enums.NotificationTypePropertyInquiry,
		Title:        fmt.Sprintf("Nueva consulta sobre %s", property.Title),
		Message:      message,
		PropertyID:   &property.ID,
		ContactName:  &name,
		ContactEmail: &email,
	}
	if phone != "" {
		notification.ContactPhone = &phone
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, notification); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert inquiry")
		}
		return s.emitter.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventInquiryCreated,
			AggregateType: enums.OutboxAggregateNotification,
			AggregateID:   notification.ID,
			Data: payloads.InquiryCreatedEvent{
				NotificationID: notification.ID,
				PropertyID:     property.ID,
				AgentID:        property.AgentID,
				ContactName:    name,
				ContactEmail:   email,
				ContactPhone:   phone,
				Message:        message,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"notification_id": notification.ID.String(),
			"property_id":     property.ID.String(),
		})
		s.logg.Info(logCtx, "inquiry created")
	}
	return FromModel(notification), nil
}

func (s *service) List(ctx context.Context, recipientID uuid.UUID, params ListParams) (*ListResult, error) {
	if recipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	query := listNotificationsParams{UnreadOnly: params.UnreadOnly, Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.Parse(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, recipientID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	unread, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread")
	}

	result := &ListResult{Items: make([]NotificationDTO, 0, len(rows)), UnreadCount: unread}
	for i := range rows {
		result.Items = append(result.Items, *FromModel(&rows[i]))
	}
	if next != nil {
		result.NextCursor = next.Encode()
	}
	return result, nil
}

// MarkRead is idempotent: re-reading an already read notification succeeds
// without touching the original read_at.
func (s *service) MarkRead(ctx context.Context, recipientID, id uuid.UUID) error {
	if recipientID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	affected, err := s.repo.MarkRead(ctx, recipientID, id, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark read")
	}
	if affected == 0 {
		// Either already read or not the recipient's row. Distinguish so a
		// foreign id still 404s.
		if _, err := s.repo.FindByRecipient(ctx, recipientID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification")
		}
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	affected, err := s.repo.MarkAllRead(ctx, recipientID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all read")
	}
	return affected, nil
}

// Respond stores the agent's answer on the inquiry row and queues the email
// to the visitor through the outbox.
func (s *service) Respond(ctx context.Context, recipientID, id uuid.UUID, input RespondDTO) (*NotificationDTO, error) {
	if recipientID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	response := strings.TrimSpace(input.Response)
	if response == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "response required")
	}

	row, err := s.repo.FindByRecipient(ctx, recipientID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification")
	}
	if row.Type != enums.NotificationTypePropertyInquiry || row.ContactEmail == nil || *row.ContactEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification does not accept responses")
	}

	now := time.Now().UTC()
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.SetResponseTx(tx, recipientID, id, response, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store response")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return s.emitter.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventNotificationResponse,
			AggregateType: enums.OutboxAggregateNotification,
			AggregateID:   id,
			Actor:         &outbox.ActorRef{UserID: recipientID, Role: string(enums.UserRoleAgent)},
			Data: payloads.NotificationRespondedEvent{
				NotificationID: id,
				AgentID:        recipientID,
				ContactEmail:   *row.ContactEmail,
				Response:       response,
				RespondedAt:    now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	row.Response = &response
	row.RespondedAt = &now
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "notification_id", id.String()), "inquiry response recorded")
	}
	return FromModel(row), nil
}
