package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateTaxSetting = "CREATE_TAX_SETTING"
	ActionUpdateTaxSetting = "UPDATE_TAX_SETTING"
	ActionDeleteTaxSetting = "DELETE_TAX_SETTING"
	ActionBulkIncludePrev  = "BULK_SET_INCLUDE_PREVIOUS_YEARS"
	ActionCreateMember     = "CREATE_MEMBER"
	ActionUpdateMember     = "UPDATE_MEMBER"
	ActionDeleteMember     = "DELETE_MEMBER"
	ActionRecordTaxPayment = "RECORD_TAX_PAYMENT"
	ActionCreateDonation   = "CREATE_DONATION"
	ActionCreateBooking    = "CREATE_WEDDING_BOOKING"
	ActionUpdateBooking    = "UPDATE_WEDDING_BOOKING"
	ActionCreateEvent      = "CREATE_EVENT"
	ActionUpdateEvent      = "UPDATE_EVENT"
	ActionDeleteEvent      = "DELETE_EVENT"
)

// AuditLog tracks Who, What, and When for critical system changes.
// Entries belong to a trust; listing is always filtered by TrustID so one
// trust's admins never see another trust's trail.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TrustID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"trust_id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated job
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
