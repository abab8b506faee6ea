package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/VIERNES-8020/domino-backend/pkg/enums"
)

// ClosureSubmittedEvent is emitted when an agent files a sale closure for review.
type ClosureSubmittedEvent struct {
	ClosureID       uuid.UUID             `json:"closure_id"`
	PropertyID      uuid.UUID             `json:"property_id"`
	AgentCaptadorID uuid.UUID             `json:"agent_captador_id"`
	AgentVendedorID uuid.UUID             `json:"agent_vendedor_id"`
	TransactionType enums.TransactionType `json:"transaction_type"`
	ClosurePrice    float64               `json:"closure_price"`
	Currency        enums.Currency        `json:"currency"`
}

// ClosureValidatedEvent is emitted when an admin approves a closure.
type ClosureValidatedEvent struct {
	ClosureID       uuid.UUID      `json:"closure_id"`
	PropertyID      uuid.UUID      `json:"property_id"`
	AgentCaptadorID uuid.UUID      `json:"agent_captador_id"`
	AgentVendedorID uuid.UUID      `json:"agent_vendedor_id"`
	ValidatedBy     uuid.UUID      `json:"validated_by"`
	ValidatedAt     time.Time      `json:"validated_at"`
	OfficeAmount    float64        `json:"office_amount"`
	CaptadorAmount  float64        `json:"captador_amount"`
	VendedorAmount  float64        `json:"vendedor_amount"`
	Currency        enums.Currency `json:"currency"`
}

// ClosureRejectedEvent is emitted when an admin rejects a closure.
type ClosureRejectedEvent struct {
	ClosureID       uuid.UUID `json:"closure_id"`
	PropertyID      uuid.UUID `json:"property_id"`
	AgentCaptadorID uuid.UUID `json:"agent_captador_id"`
	AgentVendedorID uuid.UUID `json:"agent_vendedor_id"`
	RejectedBy      uuid.UUID `json:"rejected_by"`
	Reason          string    `json:"reason"`
}

// InquiryCreatedEvent carries a public visitor inquiry to the notification worker.
type InquiryCreatedEvent struct {
	NotificationID uuid.UUID `json:"notification_id"`
	PropertyID     uuid.UUID `json:"property_id"`
	AgentID        uuid.UUID `json:"agent_id"`
	ContactName    string    `json:"contact_name"`
	ContactEmail   string    `json:"contact_email"`
	ContactPhone   string    `json:"contact_phone,omitempty"`
	Message        string    `json:"message"`
}

// NotificationRespondedEvent is emitted when an agent answers an inquiry, so
// the worker can email the visitor back.
type NotificationRespondedEvent struct {
	NotificationID uuid.UUID `json:"notification_id"`
	AgentID        uuid.UUID `json:"agent_id"`
	ContactEmail   string    `json:"contact_email"`
	Response       string    `json:"response"`
	RespondedAt    time.Time `json:"responded_at"`
}
