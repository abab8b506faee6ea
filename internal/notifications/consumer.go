package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/email"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/logger"
	"github.com/VIERNES-8020/domino-backend/pkg/outbox"
	"github.com/VIERNES-8020/domino-backend/pkg/outbox/payloads"
	"github.com/VIERNES-8020/domino-backend/pkg/outbox/registry"
)

const consumerName = "notification-worker"

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer turns closure and inquiry events into notification rows and
// outbound email, with Redis-backed at-most-once processing per event.
type Consumer struct {
	repo     Repository
	users    userFinder
	sender   email.Sender
	manager  idempotencyChecker
	decoders *registry.DecoderRegistry
	logg     *logger.Logger
}

// NewConsumer wires the notification worker consumer.
func NewConsumer(repo Repository, users userFinder, sender email.Sender, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if repo == nil || users == nil || sender == nil || manager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification consumer missing dependencies")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &Consumer{
		repo:     repo,
		users:    users,
		sender:   sender,
		manager:  manager,
		decoders: newDecoderRegistry(),
		logg:     logg,
	}, nil
}

func newDecoderRegistry() *registry.DecoderRegistry {
	decoders := registry.NewDecoderRegistry()
	decoders.Register(enums.OutboxEventClosureSubmitted, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.ClosureSubmittedEvent
		return &event, json.Unmarshal(payload, &event)
	})
	decoders.Register(enums.OutboxEventClosureValidated, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.ClosureValidatedEvent
		return &event, json.Unmarshal(payload, &event)
	})
	decoders.Register(enums.OutboxEventClosureRejected, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.ClosureRejectedEvent
		return &event, json.Unmarshal(payload, &event)
	})
	decoders.Register(enums.OutboxEventInquiryCreated, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.InquiryCreatedEvent
		return &event, json.Unmarshal(payload, &event)
	})
	decoders.Register(enums.OutboxEventNotificationResponse, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.NotificationRespondedEvent
		return &event, json.Unmarshal(payload, &event)
	})
	return decoders
}

// Run consumes messages until the context is canceled.
func (c *Consumer) Run(ctx context.Context, subscription *gcppubsub.Subscriber) error {
	if subscription == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "subscription required")
	}
	return subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		eventType := enums.OutboxEventType(msg.Attributes["event_type"])
		var envelope outbox.PayloadEnvelope
		if err := json.Unmarshal(msg.Data, &envelope); err != nil {
			logCtx := c.logg.WithField(innerCtx, "message_id", msg.ID)
			c.logg.Warn(logCtx, "undecodable notification message dropped")
			msg.Ack()
			return
		}
		if err := c.Process(innerCtx, eventType, envelope); err != nil {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// Process handles one outbox envelope. Errors are retryable: returning one
// nacks the message and Pub/Sub redelivers it.
func (c *Consumer) Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Warn(logCtx, "event id missing or invalid, dropping")
		return nil
	}

	decoded, err := c.decoders.Decode(eventType, envelope.Version, envelope.Data)
	if err != nil {
		// Unknown events are not ours to retry.
		c.logg.Warn(logCtx, "event not handled by notification consumer")
		return nil
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, consumerName, eventID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return nil
	}

	if err := c.handle(logCtx, decoded); err != nil {
		c.logg.Error(logCtx, "notification event failed", err)
		_ = c.manager.Delete(ctx, consumerName, eventID)
		return err
	}

	c.logg.Info(logCtx, "notification event handled")
	return nil
}

func (c *Consumer) handle(ctx context.Context, decoded interface{}) error {
	switch event := decoded.(type) {
	case *payloads.ClosureSubmittedEvent:
		return c.handleClosureSubmitted(ctx, event)
	case *payloads.ClosureValidatedEvent:
		return c.handleClosureValidated(ctx, event)
	case *payloads.ClosureRejectedEvent:
		return c.handleClosureRejected(ctx, event)
	case *payloads.InquiryCreatedEvent:
		return c.handleInquiryCreated(ctx, event)
	case *payloads.NotificationRespondedEvent:
		return c.handleInquiryResponse(ctx, event)
	default:
		return nil
	}
}

func (c *Consumer) handleClosureSubmitted(ctx context.Context, event *payloads.ClosureSubmittedEvent) error {
	message := fmt.Sprintf("Cierre de %s por %.2f %s enviado para revisión.",
		event.TransactionType, event.ClosurePrice, event.Currency)
	return c.notifyAgents(ctx, event.ClosureID,
		dedupe(event.AgentCaptadorID, event.AgentVendedorID),
		enums.NotificationTypeClosureSubmitted, "Cierre enviado", message)
}

func (c *Consumer) handleClosureValidated(ctx context.Context, event *payloads.ClosureValidatedEvent) error {
	message := fmt.Sprintf("Tu cierre fue validado. Comisiones: oficina %.2f, captador %.2f, vendedor %.2f (%s).",
		event.OfficeAmount, event.CaptadorAmount, event.VendedorAmount, event.Currency)
	if err := c.notifyAgents(ctx, event.ClosureID,
		dedupe(event.AgentCaptadorID, event.AgentVendedorID),
		enums.NotificationTypeClosureValidated, "Cierre validado", message); err != nil {
		return err
	}
	return c.emailAgents(ctx, dedupe(event.AgentCaptadorID, event.AgentVendedorID), "Cierre validado", message)
}

func (c *Consumer) handleClosureRejected(ctx context.Context, event *payloads.ClosureRejectedEvent) error {
	message := fmt.Sprintf("Tu cierre fue rechazado: %s", event.Reason)
	if err := c.notifyAgents(ctx, event.ClosureID,
		dedupe(event.AgentCaptadorID, event.AgentVendedorID),
		enums.NotificationTypeClosureRejected, "Cierre rechazado", message); err != nil {
		return err
	}
	return c.emailAgents(ctx, dedupe(event.AgentCaptadorID, event.AgentVendedorID), "Cierre rechazado", message)
}

// handleInquiryCreated emails the listing agent. The in-app row was already
// written by the API in the same transaction that queued this event.
func (c *Consumer) handleInquiryCreated(ctx context.Context, event *payloads.InquiryCreatedEvent) error {
	agent, err := c.users.FindByID(ctx, event.AgentID)
	if err != nil {
		return fmt.Errorf("load agent: %w", err)
	}
	body := fmt.Sprintf("%s (%s) pregunta sobre tu propiedad:\n\n%s", event.ContactName, event.ContactEmail, event.Message)
	if event.ContactPhone != "" {
		body += fmt.Sprintf("\n\nTeléfono: %s", event.ContactPhone)
	}
	return c.sender.Send(ctx, email.Message{
		To:       agent.Email,
		ToName:   agent.FullName(),
		Subject:  "Nueva consulta sobre tu propiedad",
		TextBody: body,
	})
}

func (c *Consumer) handleInquiryResponse(ctx context.Context, event *payloads.NotificationRespondedEvent) error {
	agent, err := c.users.FindByID(ctx, event.AgentID)
	if err != nil {
		return fmt.Errorf("load agent: %w", err)
	}
	body := fmt.Sprintf("%s respondió a tu consulta:\n\n%s", agent.FullName(), event.Response)
	return c.sender.Send(ctx, email.Message{
		To:       event.ContactEmail,
		Subject:  "Respuesta a tu consulta",
		TextBody: body,
	})
}

func (c *Consumer) notifyAgents(ctx context.Context, closureID uuid.UUID, agentIDs []uuid.UUID, notificationType enums.NotificationType, title, message string) error {
	for _, agentID := range agentIDs {
		row := &models.Notification{
			RecipientID: agentID,
			Type:        notificationType,
			Title:       title,
			Message:     message,
			ClosureID:   &closureID,
		}
		if err := c.repo.Create(ctx, row); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}
	return nil
}

func (c *Consumer) emailAgents(ctx context.Context, agentIDs []uuid.UUID, subject, body string) error {
	for _, agentID := range agentIDs {
		agent, err := c.users.FindByID(ctx, agentID)
		if err != nil {
			return fmt.Errorf("load agent: %w", err)
		}
		if agent.Email == "" {
			continue
		}
		msg := email.Message{
			To:       agent.Email,
			ToName:   agent.FullName(),
			Subject:  subject,
			TextBody: body,
		}
		if err := c.sender.Send(ctx, msg); err != nil {
			return fmt.Errorf("send email: %w", err)
		}
	}
	return nil
}

func dedupe(ids ...uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
