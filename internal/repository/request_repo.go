package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MappingProcimec/mapping-erp/internal/model"
	"github.com/MappingProcimec/mapping-erp/internal/workflow"
)

type RequestRepository interface {
	CreateWithItems(ctx context.Context, req *model.PurchaseRequest) error
	FindByID(ctx context.Context, id uint) (*model.PurchaseRequest, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.PurchaseRequest, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*model.PurchaseRequest, error)
	UpdateStage(ctx context.Context, id uint, stage workflow.Stage, actorID uuid.UUID) error
	ListByStages(ctx context.Context, stages []workflow.Stage, page, limit int) ([]model.PurchaseRequest, int64, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID, page, limit int) ([]model.PurchaseRequest, int64, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// CreateWithItems inserts the request and its line items in one go; gorm
// cascades the association insert.
func (r *requestRepository) CreateWithItems(ctx context.Context, req *model.PurchaseRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uint) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByIDForUpdate takes a row lock so concurrent decisions on the same
// request serialize instead of both reading the same stage.
func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDWithDetails(ctx context.Context, id uint) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Requester").
		Preload("Area").
		Preload("Project").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) UpdateStage(ctx context.Context, id uint, stage workflow.Stage, actorID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.PurchaseRequest{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_stage": stage,
			"updated_by_id": actorID,
		}).Error
}

func (r *requestRepository) ListByStages(ctx context.Context, stages []workflow.Stage, page, limit int) ([]model.PurchaseRequest, int64, error) {
	var requests []model.PurchaseRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.PurchaseRequest{}).Where("current_stage IN ?", stages)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Requester").Preload("Area").
		Where("current_stage IN ?", stages).
		Order("urgent DESC, created_at DESC").
		Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID, page, limit int) ([]model.PurchaseRequest, int64, error) {
	var requests []model.PurchaseRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.PurchaseRequest{}).Where("requester_id = ?", requesterID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Area").
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}
