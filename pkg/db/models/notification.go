package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/VIERNES-8020/domino-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to a recipient.
// Property inquiries carry the visitor's contact details so the agent can
// respond from the notification itself.
type Notification struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID  uuid.UUID              `gorm:"column:recipient_id;type:uuid;not null;index"`
	Type         enums.NotificationType `gorm:"column:type;type:text;not null"`
	Title        string                 `gorm:"column:title;type:text;not null"`
	Message      string                 `gorm:"column:message;type:text;not null"`
	PropertyID   *uuid.UUID             `gorm:"column:property_id;type:uuid"`
	ClosureID    *uuid.UUID             `gorm:"column:closure_id;type:uuid"`
	ContactName  *string                `gorm:"column:contact_name;type:text"`
	ContactEmail *string                `gorm:"column:contact_email;type:text"`
	ContactPhone *string                `gorm:"column:contact_phone;type:text"`
	ReadAt       *time.Time             `gorm:"column:read_at;type:timestamptz"`
	RespondedAt  *time.Time             `gorm:"column:responded_at;type:timestamptz"`
	Response     *string                `gorm:"column:response;type:text"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime;index"`
}
