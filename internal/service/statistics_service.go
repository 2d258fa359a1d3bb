package service

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StatisticsService interface {
	GetDashboard(ctx context.Context, trustID uuid.UUID, startDate, endDate time.Time) (model.DashboardResponse, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetDashboard aggregates donation, member-tax and hall-booking totals for
// the admin dashboard, bounded by the given time range.
func (s *statisticsService) GetDashboard(ctx context.Context, trustID uuid.UUID, startDate, endDate time.Time) (model.DashboardResponse, error) {
	var response model.DashboardResponse
	response.TimeRangeStartDate = startDate
	response.TimeRangeEndDate = endDate

	// Total donations in range
	var donations struct {
		Value float64
	}
	s.db.WithContext(ctx).Table("donations").
		Select("COALESCE(SUM(amount), 0) as value").
		Where("trust_id = ? AND donated_at >= ? AND donated_at <= ?", trustID, startDate, endDate).
		Scan(&donations)
	response.TotalDonations = donations.Value

	// Total member tax collected in range
	var tax struct {
		Value float64
	}
	s.db.WithContext(ctx).Table("member_tax_records").
		Select("COALESCE(SUM(amount_paid), 0) as value").
		Where("trust_id = ? AND updated_at >= ? AND updated_at <= ?", trustID, startDate, endDate).
		Scan(&tax)
	response.TotalTaxCollected = tax.Value

	// Hall revenue from confirmed and completed bookings
	var hall struct {
		Value float64
	}
	s.db.WithContext(ctx).Table("wedding_bookings").
		Select("COALESCE(SUM(hall_charges), 0) as value").
		Where("trust_id = ? AND status IN ? AND event_date >= ? AND event_date <= ?",
			trustID, []string{model.BookingConfirmed, model.BookingCompleted}, startDate, endDate).
		Scan(&hall)
	response.TotalHallRevenue = hall.Value

	// Active member headcount (not range bound)
	s.db.WithContext(ctx).Model(&model.Member{}).
		Where("trust_id = ? AND status = ?", trustID, model.MemberStatusActive).
		Count(&response.ActiveMembers)

	// Donation totals grouped by purpose
	var purposes []model.PurposeTotal
	s.db.WithContext(ctx).Table("donations").
		Select("purpose, SUM(amount) as total_value, COUNT(*) as count").
		Where("trust_id = ? AND donated_at >= ? AND donated_at <= ?", trustID, startDate, endDate).
		Group("purpose").
		Order("total_value DESC").
		Limit(5).
		Scan(&purposes)
	response.TopDonationPurposes = purposes

	// Member-tax collection per year
	var years []model.YearCollection
	s.db.WithContext(ctx).Table("member_tax_records").
		Select("year, SUM(tax_amount) as total_assessed, SUM(amount_paid) as total_paid").
		Where("trust_id = ?", trustID).
		Group("year").
		Order("year ASC").
		Scan(&years)
	response.TaxCollectionByYear = years

	return response, nil
}
