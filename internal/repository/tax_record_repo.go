package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaxRecordRepository is the member ledger store: one MemberTaxRecord per
// (trust, member, year).
type TaxRecordRepository interface {
	Create(ctx context.Context, record *model.MemberTaxRecord) error
	Update(ctx context.Context, record *model.MemberTaxRecord) error
	FindByMemberYear(ctx context.Context, trustID, memberID uuid.UUID, year int) (*model.MemberTaxRecord, error)
	ListByMember(ctx context.Context, trustID, memberID uuid.UUID) ([]model.MemberTaxRecord, error)
	MapByMember(ctx context.Context, trustID, memberID uuid.UUID) (map[int]model.MemberTaxRecord, error)
}

type taxRecordRepository struct {
	db *gorm.DB
}

func NewTaxRecordRepository(db *gorm.DB) TaxRecordRepository {
	return &taxRecordRepository{db: db}
}

func (r *taxRecordRepository) Create(ctx context.Context, record *model.MemberTaxRecord) error {
	return GetDB(ctx, r.db).Create(record).Error
}

func (r *taxRecordRepository) Update(ctx context.Context, record *model.MemberTaxRecord) error {
	return GetDB(ctx, r.db).Save(record).Error
}

func (r *taxRecordRepository) FindByMemberYear(ctx context.Context, trustID, memberID uuid.UUID, year int) (*model.MemberTaxRecord, error) {
	var record model.MemberTaxRecord
	if err := GetDB(ctx, r.db).
		Where("trust_id = ? AND member_id = ? AND year = ?", trustID, memberID, year).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *taxRecordRepository) ListByMember(ctx context.Context, trustID, memberID uuid.UUID) ([]model.MemberTaxRecord, error) {
	var records []model.MemberTaxRecord
	if err := GetDB(ctx, r.db).
		Where("trust_id = ? AND member_id = ?", trustID, memberID).
		Order("year asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// MapByMember returns the member's records keyed by year — the shape the
// liability calculator consumes.
func (r *taxRecordRepository) MapByMember(ctx context.Context, trustID, memberID uuid.UUID) (map[int]model.MemberTaxRecord, error) {
	records, err := r.ListByMember(ctx, trustID, memberID)
	if err != nil {
		return nil, err
	}

	byYear := make(map[int]model.MemberTaxRecord, len(records))
	for _, rec := range records {
		byYear[rec.Year] = rec
	}
	return byYear, nil
}
