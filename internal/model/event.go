package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventStatus enum constants
const (
	EventPlanned   = "PLANNED"
	EventOngoing   = "ONGOING"
	EventCompleted = "COMPLETED"
	EventCancelled = "CANCELLED"
)

// TempleEvent represents a festival or function organized by the trust.
type TempleEvent struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TrustID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"trust_id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Venue       string          `gorm:"type:varchar(255)" json:"venue"`
	StartDate   time.Time       `gorm:"type:date;not null;index" json:"start_date"`
	EndDate     time.Time       `gorm:"type:date;not null" json:"end_date"`
	Budget      decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"budget"`
	Status      string          `gorm:"type:varchar(20);not null;default:'PLANNED';index" json:"status"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
