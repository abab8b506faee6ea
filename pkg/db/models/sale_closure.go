package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/VIERNES-8020/domino-backend/pkg/db/types"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
)

// SaleClosure records a completed deal and its commission split. The three
// amounts are computed from ClosurePrice and the percentages at submission
// time and written in the same insert, so a later edit to the percentage
// defaults never changes what a past closure paid out.
//
// Nothing checks that the three percentages sum to 100; the split is
// whatever the submitting agent entered.
type SaleClosure struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PropertyID       uuid.UUID             `gorm:"column:property_id;type:uuid;not null;index"`
	AgentCaptadorID  uuid.UUID             `gorm:"column:agent_captador_id;type:uuid;not null;index"`
	AgentVendedorID  uuid.UUID             `gorm:"column:agent_vendedor_id;type:uuid;not null;index"`
	TransactionType  enums.TransactionType `gorm:"column:transaction_type;type:text;not null"`
	PublishedPrice   float64               `gorm:"column:published_price;not null"`
	ClosurePrice     float64               `gorm:"column:closure_price;not null"`
	Currency         enums.Currency        `gorm:"column:currency;type:text;not null"`
	OfficePct        float64               `gorm:"column:office_pct;not null"`
	CaptadorPct      float64               `gorm:"column:captador_pct;not null"`
	VendedorPct      float64               `gorm:"column:vendedor_pct;not null"`
	OfficeAmount     float64               `gorm:"column:office_amount;not null"`
	CaptadorAmount   float64               `gorm:"column:captador_amount;not null"`
	VendedorAmount   float64               `gorm:"column:vendedor_amount;not null"`
	Status           enums.ClosureStatus   `gorm:"column:status;type:text;not null;default:'pending';index"`
	ValidatedBy      *uuid.UUID            `gorm:"column:validated_by;type:uuid"`
	ValidatedAt      *time.Time            `gorm:"column:validated_at"`
	RejectionReason  *string               `gorm:"column:rejection_reason"`
	ContractMediaID  uuid.UUID             `gorm:"column:contract_media_id;type:uuid;not null"`
	VoucherMediaIDs  dbtypes.UUIDArray     `gorm:"column:voucher_media_ids;type:uuid[]"`
	Notes            *string               `gorm:"column:notes"`
	ClosureDate      time.Time             `gorm:"column:closure_date;not null"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`

	Property      *Property `gorm:"foreignKey:PropertyID"`
	AgentCaptador *User     `gorm:"foreignKey:AgentCaptadorID"`
	AgentVendedor *User     `gorm:"foreignKey:AgentVendedorID"`
	Validator     *User     `gorm:"foreignKey:ValidatedBy"`
}
