package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxYearSetting stores the annual member-tax policy of a trust. One row per
// (trust, year); only rows with IsActive = true participate in liability
// calculation. IncludePreviousYears is a per-year flag: it governs whether
// that year's due is backdated onto a brand-new registrant.
type TaxYearSetting struct {
	ID                   uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TrustID              uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_tax_settings_trust_year,priority:1" json:"trust_id"`
	Year                 int             `gorm:"not null;uniqueIndex:idx_tax_settings_trust_year,priority:2" json:"year"`
	TaxAmount            decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"tax_amount"`
	IsActive             bool            `gorm:"default:true;index" json:"is_active"`
	IncludePreviousYears bool            `gorm:"default:false" json:"include_previous_years"`
	Description          string          `gorm:"type:text" json:"description"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// MemberTaxRecord is one member's tax ledger entry for one year. TaxAmount is
// a snapshot of what was assessed when the member registered for that year,
// so later policy edits do not rewrite history. OutstandingAmount is stored
// for reporting convenience but the calculator always recomputes it as
// max(0, TaxAmount - AmountPaid).
type MemberTaxRecord struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TrustID           uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_tax_records_trust_member_year,priority:1" json:"trust_id"`
	MemberID          uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_tax_records_trust_member_year,priority:2" json:"member_id"`
	Member            *Member         `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Year              int             `gorm:"not null;uniqueIndex:idx_tax_records_trust_member_year,priority:3" json:"year"`
	TaxAmount         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"tax_amount"`
	AmountPaid        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"amount_paid"`
	OutstandingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"outstanding_amount"`
	ReceiptNo         string          `gorm:"type:varchar(50)" json:"receipt_no"`
	PaidAt            *time.Time      `json:"paid_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
