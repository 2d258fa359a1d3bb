package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trust represents a single temple trust (tenant). Every settings row,
// member and ledger entry belongs to exactly one trust.
type Trust struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug           string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Address        string         `gorm:"type:text" json:"address"`
	Phone          string         `gorm:"type:varchar(50)" json:"phone"`
	Email          string         `gorm:"type:varchar(255)" json:"email"`
	RegistrationNo string         `gorm:"type:varchar(100)" json:"registration_no"` // Government trust registration number
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
