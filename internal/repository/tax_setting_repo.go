package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaxSettingRepository is the policy store: one TaxYearSetting per
// (trust, year), enforced by a unique index.
type TaxSettingRepository interface {
	Create(ctx context.Context, setting *model.TaxYearSetting) error
	Update(ctx context.Context, setting *model.TaxYearSetting) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxYearSetting, error)
	FindByYear(ctx context.Context, trustID uuid.UUID, year int) (*model.TaxYearSetting, error)
	FindActiveByYear(ctx context.Context, trustID uuid.UUID, year int) (*model.TaxYearSetting, error)
	List(ctx context.Context, trustID uuid.UUID, page, limit int) ([]model.TaxYearSetting, int64, error)
	ListActiveAscending(ctx context.Context, trustID uuid.UUID) ([]model.TaxYearSetting, error)
	BulkSetIncludePreviousYears(ctx context.Context, trustID uuid.UUID, flag bool) (int64, error)
}

type taxSettingRepository struct {
	db *gorm.DB
}

func NewTaxSettingRepository(db *gorm.DB) TaxSettingRepository {
	return &taxSettingRepository{db: db}
}

func (r *taxSettingRepository) Create(ctx context.Context, setting *model.TaxYearSetting) error {
	return GetDB(ctx, r.db).Create(setting).Error
}

func (r *taxSettingRepository) Update(ctx context.Context, setting *model.TaxYearSetting) error {
	return GetDB(ctx, r.db).Save(setting).Error
}

func (r *taxSettingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.TaxYearSetting{}).Error
}

func (r *taxSettingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxYearSetting, error) {
	var setting model.TaxYearSetting
	if err := GetDB(ctx, r.db).First(&setting, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *taxSettingRepository) FindByYear(ctx context.Context, trustID uuid.UUID, year int) (*model.TaxYearSetting, error) {
	var setting model.TaxYearSetting
	if err := GetDB(ctx, r.db).
		Where("trust_id = ? AND year = ?", trustID, year).
		First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *taxSettingRepository) FindActiveByYear(ctx context.Context, trustID uuid.UUID, year int) (*model.TaxYearSetting, error) {
	var setting model.TaxYearSetting
	if err := GetDB(ctx, r.db).
		Where("trust_id = ? AND year = ? AND is_active = ?", trustID, year, true).
		First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *taxSettingRepository) List(ctx context.Context, trustID uuid.UUID, page, limit int) ([]model.TaxYearSetting, int64, error) {
	var settings []model.TaxYearSetting
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.TaxYearSetting{}).Where("trust_id = ?", trustID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Where("trust_id = ?", trustID).
		Order("year desc").Offset(offset).Limit(limit).Find(&settings).Error; err != nil {
		return nil, 0, err
	}

	return settings, total, nil
}

// ListActiveAscending returns only active rows, sorted ascending by year —
// the exact input shape the liability calculator expects.
func (r *taxSettingRepository) ListActiveAscending(ctx context.Context, trustID uuid.UUID) ([]model.TaxYearSetting, error) {
	var settings []model.TaxYearSetting
	if err := GetDB(ctx, r.db).
		Where("trust_id = ? AND is_active = ?", trustID, true).
		Order("year asc").
		Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// BulkSetIncludePreviousYears overwrites the per-year backdating flag on every
// setting row of the trust in a single UPDATE. Last write wins; no versioning.
func (r *taxSettingRepository) BulkSetIncludePreviousYears(ctx context.Context, trustID uuid.UUID, flag bool) (int64, error) {
	result := GetDB(ctx, r.db).
		Model(&model.TaxYearSetting{}).
		Where("trust_id = ?", trustID).
		Update("include_previous_years", flag)
	return result.RowsAffected, result.Error
}
