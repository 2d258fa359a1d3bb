package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	Update(ctx context.Context, member *model.Member) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error)
	FindByCode(ctx context.Context, trustID uuid.UUID, memberCode string) (*model.Member, error)
	List(ctx context.Context, trustID uuid.UUID, status, search string, page, limit int) ([]model.Member, int64, error)
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *model.Member) error {
	return GetDB(ctx, r.db).Create(member).Error
}

func (r *memberRepository) Update(ctx context.Context, member *model.Member) error {
	return GetDB(ctx, r.db).Save(member).Error
}

func (r *memberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Member{}).Error
}

func (r *memberRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	var member model.Member
	if err := GetDB(ctx, r.db).First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) FindByCode(ctx context.Context, trustID uuid.UUID, memberCode string) (*model.Member, error) {
	var member model.Member
	if err := GetDB(ctx, r.db).
		Where("trust_id = ? AND member_code = ?", trustID, memberCode).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) List(ctx context.Context, trustID uuid.UUID, status, search string, page, limit int) ([]model.Member, int64, error) {
	var members []model.Member
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Member{}).Where("trust_id = ?", trustID)

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("full_name ILIKE ? OR member_code ILIKE ? OR phone ILIKE ? OR village ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("member_code asc").Offset(offset).Limit(limit).Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}
