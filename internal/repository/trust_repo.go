package repository

import (
	"backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// TrustRepository defines the interface for data access of Trust entities
type TrustRepository interface {
	Create(ctx context.Context, trust *model.Trust) error
	FindBySlug(ctx context.Context, slug string) (*model.Trust, error)
}

type trustRepository struct {
	db *gorm.DB
}

// NewTrustRepository returns a new instance of TrustRepository
func NewTrustRepository(db *gorm.DB) TrustRepository {
	return &trustRepository{db: db}
}

func (r *trustRepository) Create(ctx context.Context, trust *model.Trust) error {
	return r.db.WithContext(ctx).Create(trust).Error
}

func (r *trustRepository) FindBySlug(ctx context.Context, slug string) (*model.Trust, error) {
	var trust model.Trust
	if err := r.db.WithContext(ctx).First(&trust, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &trust, nil
}
