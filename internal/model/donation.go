package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DonationPurpose enum constants
const (
	PurposeGeneral      = "GENERAL"
	PurposeAnnadanam    = "ANNADANAM"
	PurposeConstruction = "CONSTRUCTION"
	PurposeFestival     = "FESTIVAL"
	PurposePooja        = "POOJA"
)

// PaymentMode enum constants
const (
	PaymentModeCash   = "CASH"
	PaymentModeUPI    = "UPI"
	PaymentModeCheque = "CHEQUE"
	PaymentModeBank   = "BANK_TRANSFER"
)

// Donation is one entry in the trust's donation ledger.
type Donation struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TrustID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"trust_id"`
	MemberID    *uuid.UUID      `gorm:"type:uuid;index" json:"member_id"` // Nullable: walk-in donors have no membership
	Member      *Member         `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	ReceiptNo   string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"receipt_no"`
	DonorName   string          `gorm:"type:varchar(255);not null" json:"donor_name"`
	Purpose     string          `gorm:"type:varchar(30);not null;default:'GENERAL';index" json:"purpose"`
	PaymentMode string          `gorm:"type:varchar(20);not null;default:'CASH'" json:"payment_mode"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	DonatedAt   time.Time       `gorm:"type:date;not null;index" json:"donated_at"`
	Remarks     string          `gorm:"type:text" json:"remarks"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
