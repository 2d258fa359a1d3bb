package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrInvalidReferenceYear — the reference year failed boundary validation.
	// The calculator itself never validates; bad years are rejected before it runs.
	ErrInvalidReferenceYear = errors.New("invalid reference year")
	// ErrMemberNotFound — no member with the given code in this trust.
	ErrMemberNotFound = errors.New("member not found")
)

// --- DTOs ---

type SaveTaxSettingRequest struct {
	Year                 int    `json:"year" binding:"required,min=1000,max=9999"`
	TaxAmount            string `json:"tax_amount" binding:"required"` // Decimal string, e.g. "500.00"
	IsActive             *bool  `json:"is_active"`                     // Defaults to true when omitted
	IncludePreviousYears bool   `json:"include_previous_years"`
	Description          string `json:"description"`
}

type TaxSettingResponse struct {
	ID                   string `json:"id"`
	Year                 int    `json:"year"`
	TaxAmount            string `json:"tax_amount"`
	IsActive             bool   `json:"is_active"`
	IncludePreviousYears bool   `json:"include_previous_years"`
	Description          string `json:"description"`
	CreatedAt            string `json:"created_at"`
}

type BulkIncludePreviousYearsRequest struct {
	IncludePreviousYears *bool `json:"include_previous_years" binding:"required"`
}

type BulkIncludePreviousYearsResponse struct {
	IncludePreviousYears bool  `json:"include_previous_years"`
	UpdatedRows          int64 `json:"updated_rows"`
}

// --- Interface ---

type TaxService interface {
	GetTaxSettings(ctx context.Context, trustID uuid.UUID, page, limit int) ([]TaxSettingResponse, int64, error)
	GetActiveSetting(ctx context.Context, trustID uuid.UUID, year int) (*TaxSettingResponse, error)
	SaveTaxSetting(ctx context.Context, trustID uuid.UUID, req SaveTaxSettingRequest, userID string) (TaxSettingResponse, error)
	DeleteTaxSetting(ctx context.Context, trustID uuid.UUID, id string, userID string) error
	BulkSetIncludePreviousYears(ctx context.Context, trustID uuid.UUID, flag bool, userID string) (BulkIncludePreviousYearsResponse, error)
	ComputeCumulativeLiability(ctx context.Context, trustID uuid.UUID, memberCode, referenceYear string) (*LiabilityReport, error)
}

type taxService struct {
	settingRepo repository.TaxSettingRepository
	recordRepo  repository.TaxRecordRepository
	memberRepo  repository.MemberRepository
	auditRepo   repository.AuditRepository
	hub         *websocket.Hub
}

func NewTaxService(settingRepo repository.TaxSettingRepository, recordRepo repository.TaxRecordRepository,
	memberRepo repository.MemberRepository, auditRepo repository.AuditRepository, hub *websocket.Hub) TaxService {
	return &taxService{
		settingRepo: settingRepo,
		recordRepo:  recordRepo,
		memberRepo:  memberRepo,
		auditRepo:   auditRepo,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *taxService) GetTaxSettings(ctx context.Context, trustID uuid.UUID, page, limit int) ([]TaxSettingResponse, int64, error) {
	settings, total, err := s.settingRepo.List(ctx, trustID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tax settings: %w", err)
	}

	res := make([]TaxSettingResponse, 0, len(settings))
	for _, setting := range settings {
		res = append(res, toTaxSettingResponse(setting))
	}

	return res, total, nil
}

func (s *taxService) GetActiveSetting(ctx context.Context, trustID uuid.UUID, year int) (*TaxSettingResponse, error) {
	setting, err := s.settingRepo.FindActiveByYear(ctx, trustID, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No active setting for the year — not an error
		}
		return nil, fmt.Errorf("failed to query active tax setting: %w", err)
	}

	res := toTaxSettingResponse(*setting)
	return &res, nil
}

// SaveTaxSetting upserts the setting for (trust, year): re-saving an already
// configured year updates it in place instead of failing on the unique index.
func (s *taxService) SaveTaxSetting(ctx context.Context, trustID uuid.UUID, req SaveTaxSettingRequest, userID string) (TaxSettingResponse, error) {
	amount, err := decimal.NewFromString(req.TaxAmount)
	if err != nil {
		return TaxSettingResponse{}, fmt.Errorf("invalid tax_amount value: %w", err)
	}
	if amount.IsNegative() {
		return TaxSettingResponse{}, fmt.Errorf("tax_amount must not be negative")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	setting, err := s.settingRepo.FindByYear(ctx, trustID, req.Year)
	switch {
	case err == nil:
		setting.TaxAmount = amount
		setting.IsActive = isActive
		setting.IncludePreviousYears = req.IncludePreviousYears
		setting.Description = req.Description
		if err := s.settingRepo.Update(ctx, setting); err != nil {
			return TaxSettingResponse{}, fmt.Errorf("failed to update tax setting: %w", err)
		}
		s.writeAuditLog(ctx, trustID, userID, model.ActionUpdateTaxSetting, setting.ID.String(), fmt.Sprintf("year %d", req.Year), req)

	case errors.Is(err, gorm.ErrRecordNotFound):
		setting = &model.TaxYearSetting{
			TrustID:              trustID,
			Year:                 req.Year,
			TaxAmount:            amount,
			IsActive:             isActive,
			IncludePreviousYears: req.IncludePreviousYears,
			Description:          req.Description,
		}
		if err := s.settingRepo.Create(ctx, setting); err != nil {
			return TaxSettingResponse{}, fmt.Errorf("failed to create tax setting: %w", err)
		}
		s.writeAuditLog(ctx, trustID, userID, model.ActionCreateTaxSetting, setting.ID.String(), fmt.Sprintf("year %d", req.Year), req)

	default:
		return TaxSettingResponse{}, fmt.Errorf("failed to fetch tax setting: %w", err)
	}

	s.broadcastPolicyChange(trustID, "tax_setting_saved", req.Year)

	return toTaxSettingResponse(*setting), nil
}

func (s *taxService) DeleteTaxSetting(ctx context.Context, trustID uuid.UUID, id string, userID string) error {
	settingID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid tax setting id: %w", err)
	}

	setting, err := s.settingRepo.FindByID(ctx, settingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("tax setting not found")
		}
		return fmt.Errorf("failed to fetch tax setting: %w", err)
	}
	if setting.TrustID != trustID {
		return fmt.Errorf("tax setting not found")
	}

	if err := s.settingRepo.Delete(ctx, settingID); err != nil {
		return fmt.Errorf("failed to delete tax setting: %w", err)
	}

	s.writeAuditLog(ctx, trustID, userID, model.ActionDeleteTaxSetting, id, fmt.Sprintf("year %d", setting.Year), map[string]string{"deleted_id": id})
	s.broadcastPolicyChange(trustID, "tax_setting_deleted", setting.Year)

	return nil
}

// BulkSetIncludePreviousYears overwrites the backdating flag identically on
// every settings row of the trust in one pass. The calculator never knows
// about "bulk" — it only ever reads the per-year flag.
func (s *taxService) BulkSetIncludePreviousYears(ctx context.Context, trustID uuid.UUID, flag bool, userID string) (BulkIncludePreviousYearsResponse, error) {
	rows, err := s.settingRepo.BulkSetIncludePreviousYears(ctx, trustID, flag)
	if err != nil {
		return BulkIncludePreviousYearsResponse{}, fmt.Errorf("failed to bulk-update include_previous_years: %w", err)
	}

	s.writeAuditLog(ctx, trustID, userID, model.ActionBulkIncludePrev, trustID.String(), fmt.Sprintf("flag=%t rows=%d", flag, rows), nil)
	s.broadcastPolicyChange(trustID, "tax_policy_bulk_toggled", 0)

	return BulkIncludePreviousYearsResponse{IncludePreviousYears: flag, UpdatedRows: rows}, nil
}

// ComputeCumulativeLiability fetches the trust's active policy settings and
// the member's payment records, then runs the pure calculator over that
// snapshot.
//
// The two reads are independent (no shared transaction); an administrator
// saving a setting between them can produce a report computed from a policy
// snapshot slightly newer than the record snapshot. That is an accepted
// trade-off — wrap both reads in one transaction at this call site if
// stronger consistency is ever required.
func (s *taxService) ComputeCumulativeLiability(ctx context.Context, trustID uuid.UUID, memberCode, referenceYear string) (*LiabilityReport, error) {
	year, err := parseReferenceYear(referenceYear)
	if err != nil {
		return nil, err
	}

	member, err := s.memberRepo.FindByCode(ctx, trustID, memberCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, memberCode)
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	settings, err := s.settingRepo.ListActiveAscending(ctx, trustID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tax settings: %w", err)
	}

	records, err := s.recordRepo.MapByMember(ctx, trustID, member.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member tax records: %w", err)
	}

	report := ComputeLiability(LiabilitySnapshot{Settings: settings, Records: records}, year)
	return &report, nil
}

// --- Helpers ---

// parseReferenceYear validates the reference year once, at the service
// boundary. Years are compared as plain integers everywhere past this point.
func parseReferenceYear(raw string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidReferenceYear, raw)
	}
	if year < 1000 || year > 9999 {
		return 0, fmt.Errorf("%w: %d is not a 4-digit year", ErrInvalidReferenceYear, year)
	}
	return year, nil
}

func toTaxSettingResponse(s model.TaxYearSetting) TaxSettingResponse {
	return TaxSettingResponse{
		ID:                   s.ID.String(),
		Year:                 s.Year,
		TaxAmount:            s.TaxAmount.StringFixed(2),
		IsActive:             s.IsActive,
		IncludePreviousYears: s.IncludePreviousYears,
		Description:          s.Description,
		CreatedAt:            s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *taxService) writeAuditLog(ctx context.Context, trustID uuid.UUID, userID, action, entityID, entityName string, details interface{}) {
	detailsJSON, _ := json.Marshal(details)

	entry := model.AuditLog{
		TrustID:    trustID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}

	if userID != "" {
		parsed, err := uuid.Parse(userID)
		if err == nil {
			entry.UserID = &parsed
		}
	}

	// Best-effort audit log — don't fail the operation if logging fails
	_ = s.auditRepo.Log(ctx, &entry)
}

func (s *taxService) broadcastPolicyChange(trustID uuid.UUID, event string, year int) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"type":     event,
		"trust_id": trustID.String(),
		"year":     year,
	})
	s.hub.Broadcast <- payload
}
