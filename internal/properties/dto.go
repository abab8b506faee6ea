package properties

import (
	"time"

	"github.com/google/uuid"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	dbtypes "github.com/VIERNES-8020/domino-backend/pkg/db/types"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	"github.com/VIERNES-8020/domino-backend/pkg/types"
)

// PropertyDTO is the transport shape for listings.
type PropertyDTO struct {
	ID            uuid.UUID            `json:"id"`
	Code          string               `json:"code"`
	AgentID       uuid.UUID            `json:"agent_id"`
	AgentName     string               `json:"agent_name,omitempty"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	PropertyType  enums.PropertyType   `json:"property_type"`
	Status        enums.PropertyStatus `json:"status"`
	Price         float64              `json:"price"`
	Currency      enums.Currency       `json:"currency"`
	Address       string               `json:"address"`
	City          string               `json:"city"`
	Zone          *string              `json:"zone,omitempty"`
	Bedrooms      *int                 `json:"bedrooms,omitempty"`
	Bathrooms     *int                 `json:"bathrooms,omitempty"`
	AreaM2        *float64             `json:"area_m2,omitempty"`
	ImageMediaIDs []uuid.UUID          `json:"image_media_ids"`
	CoverImageID  *uuid.UUID           `json:"cover_image_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// CreatePropertyDTO carries validated listing fields into the service.
type CreatePropertyDTO struct {
	Title         string
	Description   string
	PropertyType  string
	Price         float64
	Currency      string
	Address       string
	City          string
	Zone          *string
	Bedrooms      *int
	Bathrooms     *int
	AreaM2        *float64
	ImageMediaIDs []uuid.UUID
	CoverImageID  *uuid.UUID
}

// UpdatePropertyDTO applies partial edits; nil leaves the column untouched.
type UpdatePropertyDTO struct {
	Title         *string
	Description   *string
	Status        *string
	Price         *float64
	Address       *string
	City          *string
	Zone          *string
	Bedrooms      *int
	Bathrooms     *int
	AreaM2        *float64
	ImageMediaIDs *[]uuid.UUID
	CoverImageID  types.NullableUUID
}

func FromModel(p *models.Property) *PropertyDTO {
	if p == nil {
		return nil
	}

	dto := &PropertyDTO{
		ID:            p.ID,
		Code:          p.Code,
		AgentID:       p.AgentID,
		Title:         p.Title,
		Description:   p.Description,
		PropertyType:  p.PropertyType,
		Status:        p.Status,
		Price:         p.Price,
		Currency:      p.Currency,
		Address:       p.Address,
		City:          p.City,
		Zone:          p.Zone,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		AreaM2:        p.AreaM2,
		ImageMediaIDs: append([]uuid.UUID(nil), []uuid.UUID(p.ImageMediaIDs)...),
		CoverImageID:  p.CoverImageID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if dto.ImageMediaIDs == nil {
		dto.ImageMediaIDs = []uuid.UUID{}
	}
	if p.Agent != nil {
		dto.AgentName = p.Agent.FullName()
	}
	return dto
}

func (c CreatePropertyDTO) toModel(code string, agentID uuid.UUID, propertyType enums.PropertyType, currency enums.Currency, images []uuid.UUID) *models.Property {
	return &models.Property{
		Code:          code,
		AgentID:       agentID,
		Title:         c.Title,
		Description:   c.Description,
		PropertyType:  propertyType,
		Status:        enums.PropertyStatusAvailable,
		Price:         c.Price,
		Currency:      currency,
		Address:       c.Address,
		City:          c.City,
		Zone:          c.Zone,
		Bedrooms:      c.Bedrooms,
		Bathrooms:     c.Bathrooms,
		AreaM2:        c.AreaM2,
		ImageMediaIDs: dbtypes.UUIDArray(images),
		CoverImageID:  c.CoverImageID,
	}
}
