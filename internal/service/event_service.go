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

type SaveEventRequest struct {
	Name        string `json:"name" binding:"required"`
	Venue       string `json:"venue"`
	StartDate   string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate     string `json:"end_date" binding:"required"`   // YYYY-MM-DD
	Budget      string `json:"budget"`                        // Decimal string, optional
	Status      string `json:"status" binding:"omitempty,oneof=PLANNED ONGOING COMPLETED CANCELLED"`
	Description string `json:"description"`
}

type EventResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Venue       string `json:"venue"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Budget      string `json:"budget"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// --- Interface ---

type EventService interface {
	CreateEvent(ctx context.Context, trustID uuid.UUID, req SaveEventRequest, userID string) (*EventResponse, error)
	UpdateEvent(ctx context.Context, trustID uuid.UUID, id string, req SaveEventRequest, userID string) (*EventResponse, error)
	DeleteEvent(ctx context.Context, trustID uuid.UUID, id string, userID string) error
	ListEvents(ctx context.Context, trustID uuid.UUID, status string, page, limit int) ([]EventResponse, int64, error)
}

type eventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) EventService {
	return &eventService{db: db}
}

// --- Implementation ---

func (s *eventService) CreateEvent(ctx context.Context, trustID uuid.UUID, req SaveEventRequest, userID string) (*EventResponse, error) {
	event, err := eventFromRequest(trustID, req)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.audit(ctx, userID, model.ActionCreateEvent, *event)

	res := toEventResponse(*event)
	return &res, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, trustID uuid.UUID, id string, req SaveEventRequest, userID string) (*EventResponse, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid event id: %w", err)
	}

	var existing model.TempleEvent
	if err := s.db.WithContext(ctx).
		Where("id = ? AND trust_id = ?", eventID, trustID).
		First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("event not found")
		}
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}

	updated, err := eventFromRequest(trustID, req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.db.WithContext(ctx).Save(updated).Error; err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.audit(ctx, userID, model.ActionUpdateEvent, *updated)

	res := toEventResponse(*updated)
	return &res, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, trustID uuid.UUID, id string, userID string) error {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid event id: %w", err)
	}

	var existing model.TempleEvent
	if err := s.db.WithContext(ctx).
		Where("id = ? AND trust_id = ?", eventID, trustID).
		First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("event not found")
		}
		return fmt.Errorf("failed to fetch event: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&existing).Error; err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.audit(ctx, userID, model.ActionDeleteEvent, existing)

	return nil
}

func (s *eventService) ListEvents(ctx context.Context, trustID uuid.UUID, status string, page, limit int) ([]EventResponse, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.TempleEvent{}).Where("trust_id = ?", trustID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	var events []model.TempleEvent
	offset := (page - 1) * limit
	if err := query.Order("start_date desc").Offset(offset).Limit(limit).Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	res := make([]EventResponse, 0, len(events))
	for _, e := range events {
		res = append(res, toEventResponse(e))
	}
	return res, total, nil
}

// --- Helpers ---

func eventFromRequest(trustID uuid.UUID, req SaveEventRequest) (*model.TempleEvent, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date format (expected YYYY-MM-DD): %w", err)
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end_date format (expected YYYY-MM-DD): %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end_date must not be before start_date")
	}

	budget := decimal.Zero
	if req.Budget != "" {
		budget, err = decimal.NewFromString(req.Budget)
		if err != nil {
			return nil, fmt.Errorf("invalid budget value: %w", err)
		}
	}

	status := req.Status
	if status == "" {
		status = model.EventPlanned
	}

	return &model.TempleEvent{
		TrustID:     trustID,
		Name:        req.Name,
		Venue:       req.Venue,
		StartDate:   start,
		EndDate:     end,
		Budget:      budget,
		Status:      status,
		Description: req.Description,
	}, nil
}

func (s *eventService) audit(ctx context.Context, userID, action string, event model.TempleEvent) {
	entry := model.AuditLog{
		TrustID:    event.TrustID,
		Action:     action,
		EntityID:   event.ID.String(),
		EntityName: event.Name,
	}
	if userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			entry.UserID = &parsed
		}
	}
	_ = s.db.WithContext(ctx).Create(&entry).Error
}

func toEventResponse(e model.TempleEvent) EventResponse {
	return EventResponse{
		ID:          e.ID.String(),
		Name:        e.Name,
		Venue:       e.Venue,
		StartDate:   e.StartDate.Format("2006-01-02"),
		EndDate:     e.EndDate.Format("2006-01-02"),
		Budget:      e.Budget.StringFixed(2),
		Status:      e.Status,
		Description: e.Description,
	}
}
