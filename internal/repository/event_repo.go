package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/MappingProcimec/mapping-erp/internal/model"
)

// EventRepository is append-only: events are never updated or deleted once
// written, so the interface deliberately offers no mutation beyond Append.
type EventRepository interface {
	Append(ctx context.Context, event *model.ApprovalEvent) error
	HistoryByRequestID(ctx context.Context, requestID uint) ([]model.ApprovalEvent, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Append(ctx context.Context, event *model.ApprovalEvent) error {
	return GetDB(ctx, r.db).Create(event).Error
}

func (r *eventRepository) HistoryByRequestID(ctx context.Context, requestID uint) ([]model.ApprovalEvent, error) {
	var events []model.ApprovalEvent
	if err := GetDB(ctx, r.db).Preload("Actor").
		Where("request_id = ?", requestID).
		Order("created_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
