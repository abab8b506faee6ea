package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/VIERNES-8020/domino-backend/pkg/db/types"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
)

// Property is a listing owned by the agent who captured it. The published
// price here is the asking price; the eventual closure price lives on the
// SaleClosure row so the listing history is never rewritten by a deal.
type Property struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code           string               `gorm:"column:code;not null;uniqueIndex"`
	AgentID        uuid.UUID            `gorm:"column:agent_id;type:uuid;not null;index"`
	Title          string               `gorm:"column:title;not null"`
	Description    string               `gorm:"column:description;not null;default:''"`
	PropertyType   enums.PropertyType   `gorm:"column:property_type;type:text;not null"`
	Status         enums.PropertyStatus `gorm:"column:status;type:text;not null;default:'available';index"`
	Price          float64              `gorm:"column:price;not null"`
	Currency       enums.Currency       `gorm:"column:currency;type:text;not null;default:'USD'"`
	Address        string               `gorm:"column:address;not null;default:''"`
	City           string               `gorm:"column:city;not null;index"`
	Zone           *string              `gorm:"column:zone"`
	Bedrooms       *int                 `gorm:"column:bedrooms"`
	Bathrooms      *int                 `gorm:"column:bathrooms"`
	AreaM2         *float64             `gorm:"column:area_m2"`
	ImageMediaIDs  dbtypes.UUIDArray    `gorm:"column:image_media_ids;type:uuid[]"`
	CoverImageID   *uuid.UUID           `gorm:"column:cover_image_id;type:uuid"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`

	Agent *User `gorm:"foreignKey:AgentID"`
}
