package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
)

// CreateInquiryDTO is what a public visitor submits against a listing.
type CreateInquiryDTO struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Message string `json:"message" validate:"required,min=5,max=2000"`
}

// RespondDTO carries the agent's answer to an inquiry.
type RespondDTO struct {
	Response string `json:"response" validate:"required,min=1,max=2000"`
}

// NotificationDTO is the API shape of one inbox entry.
type NotificationDTO struct {
	ID           uuid.UUID              `json:"id"`
	Type         enums.NotificationType `json:"type"`
	Title        string                 `json:"title"`
	Message      string                 `json:"message"`
	PropertyID   *uuid.UUID             `json:"property_id,omitempty"`
	ClosureID    *uuid.UUID             `json:"closure_id,omitempty"`
	ContactName  *string                `json:"contact_name,omitempty"`
	ContactEmail *string                `json:"contact_email,omitempty"`
	ContactPhone *string                `json:"contact_phone,omitempty"`
	ReadAt       *time.Time             `json:"read_at,omitempty"`
	RespondedAt  *time.Time             `json:"responded_at,omitempty"`
	Response     *string                `json:"response,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// FromModel maps a persisted notification onto the API shape.
func FromModel(row *models.Notification) *NotificationDTO {
	return &NotificationDTO{
		ID:           row.ID,
		Type:         row.Type,
		Title:        row.Title,
		Message:      row.Message,
		PropertyID:   row.PropertyID,
		ClosureID:    row.ClosureID,
		ContactName:  row.ContactName,
		ContactEmail: row.ContactEmail,
		ContactPhone: row.ContactPhone,
		ReadAt:       row.ReadAt,
		RespondedAt:  row.RespondedAt,
		Response:     row.Response,
		CreatedAt:    row.CreatedAt,
	}
}

// ListResult is one page of notifications plus the unread counter the inbox
// badge renders.
type ListResult struct {
	Items       []NotificationDTO `json:"items"`
	UnreadCount int64             `json:"unread_count"`
	NextCursor  string            `json:"next_cursor,omitempty"`
}
