package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateMemberRequest struct {
	MemberCode string `json:"member_code" binding:"required"`
	FullName   string `json:"full_name" binding:"required"`
	FatherName string `json:"father_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email" binding:"omitempty,email"`
	Address    string `json:"address"`
	Village    string `json:"village"`
	JoinedAt   string `json:"joined_at"` // YYYY-MM-DD, optional
}

type UpdateMemberRequest struct {
	FullName   string `json:"full_name"`
	FatherName string `json:"father_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email" binding:"omitempty,email"`
	Address    string `json:"address"`
	Village    string `json:"village"`
	Status     string `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE DECEASED"`
}

type MemberResponse struct {
	ID         string `json:"id"`
	MemberCode string `json:"member_code"`
	FullName   string `json:"full_name"`
	FatherName string `json:"father_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	Village    string `json:"village"`
	Status     string `json:"status"`
	JoinedAt   string `json:"joined_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type RecordTaxPaymentRequest struct {
	Year      int    `json:"year" binding:"required,min=1000,max=9999"`
	Amount    string `json:"amount" binding:"required"` // Decimal string
	ReceiptNo string `json:"receipt_no"`
}

type TaxRecordResponse struct {
	ID          string `json:"id"`
	Year        int    `json:"year"`
	TaxAmount   string `json:"tax_amount"`
	AmountPaid  string `json:"amount_paid"`
	Outstanding string `json:"outstanding"`
	ReceiptNo   string `json:"receipt_no"`
	PaidAt      string `json:"paid_at,omitempty"`
}

// --- Interface ---

type MemberService interface {
	CreateMember(ctx context.Context, trustID uuid.UUID, req CreateMemberRequest, userID string) (*MemberResponse, error)
	UpdateMember(ctx context.Context, trustID uuid.UUID, id string, req UpdateMemberRequest, userID string) (*MemberResponse, error)
	DeleteMember(ctx context.Context, trustID uuid.UUID, id string, userID string) error
	GetMemberByCode(ctx context.Context, trustID uuid.UUID, memberCode string) (*MemberResponse, error)
	ListMembers(ctx context.Context, trustID uuid.UUID, status, search string, page, limit int) ([]MemberResponse, int64, error)
	GetMemberTaxRecords(ctx context.Context, trustID uuid.UUID, memberCode string) ([]TaxRecordResponse, error)
	RecordTaxPayment(ctx context.Context, trustID uuid.UUID, memberCode string, req RecordTaxPaymentRequest, userID string) (*TaxRecordResponse, error)
}

type memberService struct {
	memberRepo  repository.MemberRepository
	recordRepo  repository.TaxRecordRepository
	settingRepo repository.TaxSettingRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewMemberService(memberRepo repository.MemberRepository, recordRepo repository.TaxRecordRepository,
	settingRepo repository.TaxSettingRepository, auditRepo repository.AuditRepository,
	txManager repository.TransactionManager) MemberService {
	return &memberService{
		memberRepo:  memberRepo,
		recordRepo:  recordRepo,
		settingRepo: settingRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *memberService) CreateMember(ctx context.Context, trustID uuid.UUID, req CreateMemberRequest, userID string) (*MemberResponse, error) {
	if _, err := s.memberRepo.FindByCode(ctx, trustID, req.MemberCode); err == nil {
		return nil, fmt.Errorf("member code '%s' already exists", req.MemberCode)
	}

	member := &model.Member{
		TrustID:    trustID,
		MemberCode: req.MemberCode,
		FullName:   req.FullName,
		FatherName: req.FatherName,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		Village:    req.Village,
		Status:     model.MemberStatusActive,
	}

	if req.JoinedAt != "" {
		joined, err := time.Parse("2006-01-02", req.JoinedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid joined_at date format (expected YYYY-MM-DD): %w", err)
		}
		member.JoinedAt = &joined
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	s.audit(ctx, trustID, userID, model.ActionCreateMember, member.ID.String(), member.FullName)

	return toMemberResponse(member), nil
}

func (s *memberService) UpdateMember(ctx context.Context, trustID uuid.UUID, id string, req UpdateMemberRequest, userID string) (*MemberResponse, error) {
	member, err := s.findTrustMember(ctx, trustID, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != "" {
		member.FullName = req.FullName
	}
	if req.FatherName != "" {
		member.FatherName = req.FatherName
	}
	if req.Phone != "" {
		member.Phone = req.Phone
	}
	if req.Email != "" {
		member.Email = req.Email
	}
	if req.Address != "" {
		member.Address = req.Address
	}
	if req.Village != "" {
		member.Village = req.Village
	}
	if req.Status != "" {
		member.Status = req.Status
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	s.audit(ctx, trustID, userID, model.ActionUpdateMember, member.ID.String(), member.FullName)

	return toMemberResponse(member), nil
}

func (s *memberService) DeleteMember(ctx context.Context, trustID uuid.UUID, id string, userID string) error {
	member, err := s.findTrustMember(ctx, trustID, id)
	if err != nil {
		return err
	}

	// Soft delete only; tax records are kept as history.
	if err := s.memberRepo.Delete(ctx, member.ID); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	s.audit(ctx, trustID, userID, model.ActionDeleteMember, member.ID.String(), member.FullName)

	return nil
}

func (s *memberService) GetMemberByCode(ctx context.Context, trustID uuid.UUID, memberCode string) (*MemberResponse, error) {
	member, err := s.memberRepo.FindByCode(ctx, trustID, memberCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, memberCode)
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}
	return toMemberResponse(member), nil
}

func (s *memberService) ListMembers(ctx context.Context, trustID uuid.UUID, status, search string, page, limit int) ([]MemberResponse, int64, error) {
	members, total, err := s.memberRepo.List(ctx, trustID, status, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}

	res := make([]MemberResponse, 0, len(members))
	for i := range members {
		res = append(res, *toMemberResponse(&members[i]))
	}
	return res, total, nil
}

func (s *memberService) GetMemberTaxRecords(ctx context.Context, trustID uuid.UUID, memberCode string) ([]TaxRecordResponse, error) {
	member, err := s.memberRepo.FindByCode(ctx, trustID, memberCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, memberCode)
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	records, err := s.recordRepo.ListByMember(ctx, trustID, member.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member tax records: %w", err)
	}

	res := make([]TaxRecordResponse, 0, len(records))
	for _, rec := range records {
		res = append(res, toTaxRecordResponse(rec))
	}
	return res, nil
}

// RecordTaxPayment registers a payment against (member, year). The first
// payment for a year creates the record, snapshotting the assessed amount
// from the year's active setting so later policy edits don't rewrite
// history; subsequent payments mutate the same row.
func (s *memberService) RecordTaxPayment(ctx context.Context, trustID uuid.UUID, memberCode string, req RecordTaxPaymentRequest, userID string) (*TaxRecordResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount value: %w", err)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative")
	}

	member, err := s.memberRepo.FindByCode(ctx, trustID, memberCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, memberCode)
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	var record *model.MemberTaxRecord
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		now := time.Now()

		existing, err := s.recordRepo.FindByMemberYear(txCtx, trustID, member.ID, req.Year)
		switch {
		case err == nil:
			existing.AmountPaid = existing.AmountPaid.Add(amount)
			existing.OutstandingAmount = outstandingOf(existing.TaxAmount, existing.AmountPaid)
			if req.ReceiptNo != "" {
				existing.ReceiptNo = req.ReceiptNo
			}
			existing.PaidAt = &now
			if err := s.recordRepo.Update(txCtx, existing); err != nil {
				return fmt.Errorf("failed to update tax record: %w", err)
			}
			record = existing
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			setting, err := s.settingRepo.FindActiveByYear(txCtx, trustID, req.Year)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("no active tax setting for year %d", req.Year)
				}
				return fmt.Errorf("failed to fetch tax setting: %w", err)
			}

			record = &model.MemberTaxRecord{
				TrustID:           trustID,
				MemberID:          member.ID,
				Year:              req.Year,
				TaxAmount:         setting.TaxAmount,
				AmountPaid:        amount,
				OutstandingAmount: outstandingOf(setting.TaxAmount, amount),
				ReceiptNo:         req.ReceiptNo,
				PaidAt:            &now,
			}
			if err := s.recordRepo.Create(txCtx, record); err != nil {
				return fmt.Errorf("failed to create tax record: %w", err)
			}
			return nil

		default:
			return fmt.Errorf("failed to fetch tax record: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, trustID, userID, model.ActionRecordTaxPayment, record.ID.String(),
		fmt.Sprintf("%s year %d paid %s", memberCode, req.Year, amount.StringFixed(2)))

	res := toTaxRecordResponse(*record)
	return &res, nil
}

// --- Helpers ---

func (s *memberService) findTrustMember(ctx context.Context, trustID uuid.UUID, id string) (*model.Member, error) {
	memberID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid member id: %w", err)
	}

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}
	if member.TrustID != trustID {
		return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, id)
	}
	return member, nil
}

func toMemberResponse(m *model.Member) *MemberResponse {
	res := &MemberResponse{
		ID:         m.ID.String(),
		MemberCode: m.MemberCode,
		FullName:   m.FullName,
		FatherName: m.FatherName,
		Phone:      m.Phone,
		Email:      m.Email,
		Address:    m.Address,
		Village:    m.Village,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if m.JoinedAt != nil {
		res.JoinedAt = m.JoinedAt.Format("2006-01-02")
	}
	return res
}

func toTaxRecordResponse(r model.MemberTaxRecord) TaxRecordResponse {
	res := TaxRecordResponse{
		ID:          r.ID.String(),
		Year:        r.Year,
		TaxAmount:   r.TaxAmount.StringFixed(2),
		AmountPaid:  r.AmountPaid.StringFixed(2),
		Outstanding: outstandingOf(r.TaxAmount, r.AmountPaid).StringFixed(2),
		ReceiptNo:   r.ReceiptNo,
	}
	if r.PaidAt != nil {
		res.PaidAt = r.PaidAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return res
}

func (s *memberService) audit(ctx context.Context, trustID uuid.UUID, userID, action, entityID, entityName string) {
	entry := model.AuditLog{
		TrustID:    trustID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	}
	if userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			entry.UserID = &parsed
		}
	}
	_ = s.auditRepo.Log(ctx, &entry)
}
