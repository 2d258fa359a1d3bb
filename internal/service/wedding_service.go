package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateBookingRequest struct {
	MemberCode  string `json:"member_code"` // Optional: outside parties may book
	PartyName   string `json:"party_name" binding:"required"`
	Phone       string `json:"phone"`
	EventDate   string `json:"event_date" binding:"required"` // YYYY-MM-DD
	HallCharges string `json:"hall_charges" binding:"required"`
	Deposit     string `json:"deposit"`
	Remarks     string `json:"remarks"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=REQUESTED CONFIRMED COMPLETED CANCELLED"`
}

type BookingResponse struct {
	ID          string `json:"id"`
	BookingNo   string `json:"booking_no"`
	PartyName   string `json:"party_name"`
	Phone       string `json:"phone"`
	EventDate   string `json:"event_date"`
	HallCharges string `json:"hall_charges"`
	Deposit     string `json:"deposit"`
	Status      string `json:"status"`
	Remarks     string `json:"remarks"`
}

// --- Interface ---

type WeddingService interface {
	CreateBooking(ctx context.Context, trustID uuid.UUID, req CreateBookingRequest, userID string) (*BookingResponse, error)
	UpdateBookingStatus(ctx context.Context, trustID uuid.UUID, id string, req UpdateBookingStatusRequest, userID string) (*BookingResponse, error)
	ListBookings(ctx context.Context, trustID uuid.UUID, status string, page, limit int) ([]BookingResponse, int64, error)
}

type weddingService struct {
	db *gorm.DB
}

func NewWeddingService(db *gorm.DB) WeddingService {
	return &weddingService{db: db}
}

// --- Implementation ---

func (s *weddingService) CreateBooking(ctx context.Context, trustID uuid.UUID, req CreateBookingRequest, userID string) (*BookingResponse, error) {
	charges, err := decimal.NewFromString(req.HallCharges)
	if err != nil {
		return nil, fmt.Errorf("invalid hall_charges value: %w", err)
	}

	deposit := decimal.Zero
	if req.Deposit != "" {
		deposit, err = decimal.NewFromString(req.Deposit)
		if err != nil {
			return nil, fmt.Errorf("invalid deposit value: %w", err)
		}
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, fmt.Errorf("invalid event_date format (expected YYYY-MM-DD): %w", err)
	}

	// The hall hosts one wedding per day.
	var clash int64
	if err := s.db.WithContext(ctx).Model(&model.WeddingBooking{}).
		Where("trust_id = ? AND event_date = ? AND status IN ?", trustID, eventDate,
			[]string{model.BookingRequested, model.BookingConfirmed}).
		Count(&clash).Error; err != nil {
		return nil, fmt.Errorf("failed to check booking availability: %w", err)
	}
	if clash > 0 {
		return nil, fmt.Errorf("the hall is already booked for %s", req.EventDate)
	}

	booking := model.WeddingBooking{
		TrustID:     trustID,
		PartyName:   req.PartyName,
		Phone:       req.Phone,
		EventDate:   eventDate,
		HallCharges: charges,
		Deposit:     deposit,
		Status:      model.BookingRequested,
		Remarks:     req.Remarks,
	}

	if req.MemberCode != "" {
		var member model.Member
		if err := s.db.WithContext(ctx).
			Where("trust_id = ? AND member_code = ?", trustID, req.MemberCode).
			First(&member).Error; err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, req.MemberCode)
		}
		booking.MemberID = &member.ID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.WeddingBooking{}).Where("trust_id = ?", trustID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to number booking: %w", err)
		}
		booking.BookingNo = fmt.Sprintf("WB-%d-%04d", eventDate.Year(), count+1)

		return tx.Create(&booking).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.audit(ctx, userID, model.ActionCreateBooking, booking)

	res := toBookingResponse(booking)
	return &res, nil
}

func (s *weddingService) UpdateBookingStatus(ctx context.Context, trustID uuid.UUID, id string, req UpdateBookingStatusRequest, userID string) (*BookingResponse, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid booking id: %w", err)
	}

	var booking model.WeddingBooking
	if err := s.db.WithContext(ctx).
		Where("id = ? AND trust_id = ?", bookingID, trustID).
		First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking not found")
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}

	if booking.Status == model.BookingCompleted || booking.Status == model.BookingCancelled {
		return nil, fmt.Errorf("booking is already %s", booking.Status)
	}

	booking.Status = req.Status
	if err := s.db.WithContext(ctx).Save(&booking).Error; err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	s.audit(ctx, userID, model.ActionUpdateBooking, booking)

	res := toBookingResponse(booking)
	return &res, nil
}

func (s *weddingService) ListBookings(ctx context.Context, trustID uuid.UUID, status string, page, limit int) ([]BookingResponse, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.WeddingBooking{}).Where("trust_id = ?", trustID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var bookings []model.WeddingBooking
	offset := (page - 1) * limit
	if err := query.Order("event_date desc").Offset(offset).Limit(limit).Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	res := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		res = append(res, toBookingResponse(b))
	}
	return res, total, nil
}

// --- Helpers ---

func toBookingResponse(b model.WeddingBooking) BookingResponse {
	return BookingResponse{
		ID:          b.ID.String(),
		BookingNo:   b.BookingNo,
		PartyName:   b.PartyName,
		Phone:       b.Phone,
		EventDate:   b.EventDate.Format("2006-01-02"),
		HallCharges: b.HallCharges.StringFixed(2),
		Deposit:     b.Deposit.StringFixed(2),
		Status:      b.Status,
		Remarks:     b.Remarks,
	}
}

func (s *weddingService) audit(ctx context.Context, userID, action string, booking model.WeddingBooking) {
	entry := model.AuditLog{
		TrustID:    booking.TrustID,
		Action:     action,
		EntityID:   booking.ID.String(),
		EntityName: booking.BookingNo + " " + booking.PartyName,
	}
	if userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			entry.UserID = &parsed
		}
	}
	_ = s.db.WithContext(ctx).Create(&entry).Error
}
