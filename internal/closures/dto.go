package closures

import (
	"time"

	"github.com/google/uuid"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
)

// SubmitClosureDTO is the payload an agent files when a deal closes.
// Captador defaults to the listing agent and vendedor to the submitter when
// left blank; percentages default to the house split.
type SubmitClosureDTO struct {
	PropertyID      uuid.UUID   `json:"property_id" validate:"required"`
	AgentCaptadorID uuid.UUID   `json:"agent_captador_id"`
	AgentVendedorID uuid.UUID   `json:"agent_vendedor_id"`
	TransactionType string      `json:"transaction_type" validate:"required"`
	ClosurePrice    float64     `json:"closure_price" validate:"required,gt=0"`
	Currency        string      `json:"currency"`
	OfficePct       *float64    `json:"office_percentage" validate:"omitempty,gte=0,lte=100"`
	CaptadorPct     *float64    `json:"captador_percentage" validate:"omitempty,gte=0,lte=100"`
	VendedorPct     *float64    `json:"vendedor_percentage" validate:"omitempty,gte=0,lte=100"`
	ContractMediaID uuid.UUID   `json:"contract_media_id" validate:"required"`
	VoucherMediaIDs []uuid.UUID `json:"voucher_media_ids"`
	Notes           *string     `json:"notes"`
	ClosureDate     time.Time   `json:"closure_date"`
}

// RejectClosureDTO carries the mandatory rejection reason.
type RejectClosureDTO struct {
	Reason string `json:"reason" validate:"required,min=1"`
}

// ClosureDTO is the API shape of a sale closure, including the joined
// display fields the review screens need.
type ClosureDTO struct {
	ID              uuid.UUID             `json:"id"`
	PropertyID      uuid.UUID             `json:"property_id"`
	PropertyTitle   string                `json:"property_title,omitempty"`
	PropertyCode    string                `json:"property_code,omitempty"`
	AgentCaptadorID uuid.UUID             `json:"agent_captador_id"`
	CaptadorName    string                `json:"captador_name,omitempty"`
	AgentVendedorID uuid.UUID             `json:"agent_vendedor_id"`
	VendedorName    string                `json:"vendedor_name,omitempty"`
	TransactionType enums.TransactionType `json:"transaction_type"`
	PublishedPrice  float64               `json:"published_price"`
	ClosurePrice    float64               `json:"closure_price"`
	Currency        enums.Currency        `json:"currency"`
	OfficePct       float64               `json:"office_percentage"`
	CaptadorPct     float64               `json:"captador_percentage"`
	VendedorPct     float64               `json:"vendedor_percentage"`
	OfficeAmount    float64               `json:"office_amount"`
	CaptadorAmount  float64               `json:"captador_amount"`
	VendedorAmount  float64               `json:"vendedor_amount"`
	Status          enums.ClosureStatus   `json:"status"`
	ValidatedBy     *uuid.UUID            `json:"validated_by,omitempty"`
	ValidatorName   string                `json:"validator_name,omitempty"`
	ValidatedAt     *time.Time            `json:"validated_at,omitempty"`
	RejectionReason *string               `json:"rejection_reason,omitempty"`
	ContractMediaID uuid.UUID             `json:"contract_media_id"`
	VoucherMediaIDs []uuid.UUID           `json:"voucher_media_ids,omitempty"`
	Notes           *string               `json:"notes,omitempty"`
	ClosureDate     time.Time             `json:"closure_date"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// FromModel maps a persisted closure (with whatever associations are loaded)
// onto the API shape.
func FromModel(row *models.SaleClosure) *ClosureDTO {
	dto := &ClosureDTO{
		ID:              row.ID,
		PropertyID:      row.PropertyID,
		AgentCaptadorID: row.AgentCaptadorID,
		AgentVendedorID: row.AgentVendedorID,
		TransactionType: row.TransactionType,
		PublishedPrice:  row.PublishedPrice,
		ClosurePrice:    row.ClosurePrice,
		Currency:        row.Currency,
		OfficePct:       row.OfficePct,
		CaptadorPct:     row.CaptadorPct,
		VendedorPct:     row.VendedorPct,
		OfficeAmount:    row.OfficeAmount,
		CaptadorAmount:  row.CaptadorAmount,
		VendedorAmount:  row.VendedorAmount,
		Status:          row.Status,
		ValidatedBy:     row.ValidatedBy,
		ValidatedAt:     row.ValidatedAt,
		RejectionReason: row.RejectionReason,
		ContractMediaID: row.ContractMediaID,
		VoucherMediaIDs: row.VoucherMediaIDs,
		Notes:           row.Notes,
		ClosureDate:     row.ClosureDate,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.Property != nil {
		dto.PropertyTitle = row.Property.Title
		dto.PropertyCode = row.Property.Code
	}
	if row.AgentCaptador != nil {
		dto.CaptadorName = row.AgentCaptador.FullName()
	}
	if row.AgentVendedor != nil {
		dto.VendedorName = row.AgentVendedor.FullName()
	}
	if row.Validator != nil {
		dto.ValidatorName = row.Validator.FullName()
	}
	return dto
}

// ListResult is one page of closures plus the next-page cursor.
type ListResult struct {
	Items      []ClosureDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// CurrencyTotal is the closure-price sum for one currency. Totals are never
// summed across currencies.
type CurrencyTotal struct {
	Currency enums.Currency `json:"currency"`
	Total    string         `json:"total"`
	Count    int64          `json:"count"`
}

// StatsResult counts closures by review status and totals volume per currency.
type StatsResult struct {
	Pending          int64           `json:"pending"`
	Validated        int64           `json:"validated"`
	Rejected         int64           `json:"rejected"`
	VolumeByCurrency []CurrencyTotal `json:"volume_by_currency"`
}
