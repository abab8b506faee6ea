package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/VIERNES-8020/domino-backend/pkg/enums"
)

// Media captures metadata for uploaded objects: listing photos, closure
// contracts and payment vouchers, avatars, and ARXIS site documents.
type Media struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID   uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;index"`
	Kind      enums.MediaKind `gorm:"column:kind;type:text;not null"`
	GCSKey    string          `gorm:"column:gcs_key;not null;unique"`
	URL       *string         `gorm:"column:url"`
	FileName  string          `gorm:"column:file_name;not null"`
	MimeType  string          `gorm:"column:mime_type;not null"`
	SizeBytes int64           `gorm:"column:size_bytes;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
