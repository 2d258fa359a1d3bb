package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberStatus enum constants
const (
	MemberStatusActive   = "ACTIVE"
	MemberStatusInactive = "INACTIVE"
	MemberStatusDeceased = "DECEASED"
)

// Member represents a registered devotee of a trust. MemberCode is the
// human-facing identifier printed on receipts and used in lookups.
type Member struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TrustID    uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_members_trust_code,priority:1" json:"trust_id"`
	MemberCode string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_members_trust_code,priority:2" json:"member_code"`
	FullName   string         `gorm:"type:varchar(255);not null" json:"full_name"`
	FatherName string         `gorm:"type:varchar(255)" json:"father_name"`
	Phone      string         `gorm:"type:varchar(50)" json:"phone"`
	Email      string         `gorm:"type:varchar(255)" json:"email"`
	Address    string         `gorm:"type:text" json:"address"`
	Village    string         `gorm:"type:varchar(255)" json:"village"`
	Status     string         `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	JoinedAt   *time.Time     `gorm:"type:date" json:"joined_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
