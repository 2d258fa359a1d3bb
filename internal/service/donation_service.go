package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"backend/internal/model"
	"backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateDonationRequest struct {
	MemberCode  string `json:"member_code"` // Optional: walk-in donors have none
	DonorName   string `json:"donor_name" binding:"required"`
	Purpose     string `json:"purpose" binding:"omitempty,oneof=GENERAL ANNADANAM CONSTRUCTION FESTIVAL POOJA"`
	PaymentMode string `json:"payment_mode" binding:"omitempty,oneof=CASH UPI CHEQUE BANK_TRANSFER"`
	Amount      string `json:"amount" binding:"required"` // Decimal string
	DonatedAt   string `json:"donated_at"`                // YYYY-MM-DD, defaults to today
	Remarks     string `json:"remarks"`
}

type DonationResponse struct {
	ID          string `json:"id"`
	ReceiptNo   string `json:"receipt_no"`
	DonorName   string `json:"donor_name"`
	MemberCode  string `json:"member_code,omitempty"`
	Purpose     string `json:"purpose"`
	PaymentMode string `json:"payment_mode"`
	Amount      string `json:"amount"`
	DonatedAt   string `json:"donated_at"`
	Remarks     string `json:"remarks"`
}

// --- Interface ---

type DonationService interface {
	CreateDonation(ctx context.Context, trustID uuid.UUID, req CreateDonationRequest, userID string) (*DonationResponse, error)
	ListDonations(ctx context.Context, trustID uuid.UUID, purpose string, from, to time.Time, page, limit int) ([]DonationResponse, int64, error)
	ExportCSV(ctx context.Context, trustID uuid.UUID, from, to time.Time, w io.Writer) error
}

type donationService struct {
	db  *gorm.DB
	hub *websocket.Hub
}

func NewDonationService(db *gorm.DB, hub *websocket.Hub) DonationService {
	return &donationService{db: db, hub: hub}
}

// --- Implementation ---

func (s *donationService) CreateDonation(ctx context.Context, trustID uuid.UUID, req CreateDonationRequest, userID string) (*DonationResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount value: %w", err)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}

	donatedAt := time.Now()
	if req.DonatedAt != "" {
		donatedAt, err = time.Parse("2006-01-02", req.DonatedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid donated_at date format (expected YYYY-MM-DD): %w", err)
		}
	}

	donation := model.Donation{
		TrustID:     trustID,
		DonorName:   req.DonorName,
		Purpose:     req.Purpose,
		PaymentMode: req.PaymentMode,
		Amount:      amount,
		DonatedAt:   donatedAt,
		Remarks:     req.Remarks,
	}
	if donation.Purpose == "" {
		donation.Purpose = model.PurposeGeneral
	}
	if donation.PaymentMode == "" {
		donation.PaymentMode = model.PaymentModeCash
	}

	memberCode := ""
	if req.MemberCode != "" {
		var member model.Member
		if err := s.db.WithContext(ctx).
			Where("trust_id = ? AND member_code = ?", trustID, req.MemberCode).
			First(&member).Error; err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, req.MemberCode)
		}
		donation.MemberID = &member.ID
		memberCode = member.MemberCode
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Donation{}).Where("trust_id = ?", trustID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to number receipt: %w", err)
		}
		donation.ReceiptNo = fmt.Sprintf("DN-%d-%06d", donatedAt.Year(), count+1)

		return tx.Create(&donation).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	s.writeAuditLog(ctx, userID, donation)
	s.broadcast(trustID, donation)

	res := toDonationResponse(donation, memberCode)
	return &res, nil
}

func (s *donationService) ListDonations(ctx context.Context, trustID uuid.UUID, purpose string, from, to time.Time, page, limit int) ([]DonationResponse, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Donation{}).Where("trust_id = ?", trustID)
	if purpose != "" {
		query = query.Where("purpose = ?", purpose)
	}
	if !from.IsZero() {
		query = query.Where("donated_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("donated_at <= ?", to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count donations: %w", err)
	}

	var donations []model.Donation
	offset := (page - 1) * limit
	if err := query.Preload("Member").
		Order("donated_at desc, receipt_no desc").
		Offset(offset).Limit(limit).
		Find(&donations).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list donations: %w", err)
	}

	res := make([]DonationResponse, 0, len(donations))
	for _, d := range donations {
		code := ""
		if d.Member != nil {
			code = d.Member.MemberCode
		}
		res = append(res, toDonationResponse(d, code))
	}
	return res, total, nil
}

// ExportCSV streams the trust's donation ledger for the period as CSV.
func (s *donationService) ExportCSV(ctx context.Context, trustID uuid.UUID, from, to time.Time, w io.Writer) error {
	query := s.db.WithContext(ctx).Where("trust_id = ?", trustID)
	if !from.IsZero() {
		query = query.Where("donated_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("donated_at <= ?", to)
	}

	var donations []model.Donation
	if err := query.Preload("Member").Order("donated_at asc, receipt_no asc").Find(&donations).Error; err != nil {
		return fmt.Errorf("failed to fetch donations for export: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"receipt_no", "date", "donor_name", "member_code", "purpose", "payment_mode", "amount", "remarks"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, d := range donations {
		code := ""
		if d.Member != nil {
			code = d.Member.MemberCode
		}
		row := []string{
			d.ReceiptNo,
			d.DonatedAt.Format("2006-01-02"),
			d.DonorName,
			code,
			d.Purpose,
			d.PaymentMode,
			d.Amount.StringFixed(2),
			d.Remarks,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// --- Helpers ---

func toDonationResponse(d model.Donation, memberCode string) DonationResponse {
	return DonationResponse{
		ID:          d.ID.String(),
		ReceiptNo:   d.ReceiptNo,
		DonorName:   d.DonorName,
		MemberCode:  memberCode,
		Purpose:     d.Purpose,
		PaymentMode: d.PaymentMode,
		Amount:      d.Amount.StringFixed(2),
		DonatedAt:   d.DonatedAt.Format("2006-01-02"),
		Remarks:     d.Remarks,
	}
}

func (s *donationService) writeAuditLog(ctx context.Context, userID string, donation model.Donation) {
	details, _ := json.Marshal(donation)

	entry := model.AuditLog{
		TrustID:    donation.TrustID,
		Action:     model.ActionCreateDonation,
		EntityID:   donation.ID.String(),
		EntityName: donation.ReceiptNo + " " + donation.DonorName,
		Details:    string(details),
	}
	if userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			entry.UserID = &parsed
		}
	}

	// Best-effort audit log — don't fail the operation if logging fails
	_ = s.db.WithContext(ctx).Create(&entry).Error
}

func (s *donationService) broadcast(trustID uuid.UUID, donation model.Donation) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"type":       "donation_created",
		"trust_id":   trustID.String(),
		"receipt_no": donation.ReceiptNo,
		"amount":     donation.Amount.StringFixed(2),
	})
	s.hub.Broadcast <- payload
}
