package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus enum constants
const (
	BookingRequested = "REQUESTED"
	BookingConfirmed = "CONFIRMED"
	BookingCompleted = "COMPLETED"
	BookingCancelled = "CANCELLED"
)

// WeddingBooking represents a reservation of the trust's wedding hall.
// Only CONFIRMED and COMPLETED bookings count toward hall revenue.
type WeddingBooking struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TrustID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"trust_id"`
	MemberID    *uuid.UUID      `gorm:"type:uuid;index" json:"member_id"` // Nullable: outside parties may book too
	Member      *Member         `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	BookingNo   string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"booking_no"`
	PartyName   string          `gorm:"type:varchar(255);not null" json:"party_name"`
	Phone       string          `gorm:"type:varchar(50)" json:"phone"`
	EventDate   time.Time       `gorm:"type:date;not null;index" json:"event_date"`
	HallCharges decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"hall_charges"`
	Deposit     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"deposit"`
	Status      string          `gorm:"type:varchar(20);not null;default:'REQUESTED';index" json:"status"`
	Remarks     string          `gorm:"type:text" json:"remarks"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
