package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MappingProcimec/mapping-erp/internal/model"
)

// ReferenceRepository covers the lookup catalogs a request draws from:
// areas, projects, suppliers and budget codes.
type ReferenceRepository interface {
	ListAreas(ctx context.Context) ([]model.Area, error)
	FindAreaByID(ctx context.Context, id uuid.UUID) (*model.Area, error)
	CreateProject(ctx context.Context, project *model.Project) error
	ListProjects(ctx context.Context, areaID *uuid.UUID) ([]model.Project, error)
	FindProjectByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	CreateSupplier(ctx context.Context, supplier *model.Supplier) error
	ListSuppliers(ctx context.Context, activeOnly bool) ([]model.Supplier, error)
	CreateBudgetCode(ctx context.Context, code *model.BudgetCode) error
	ListBudgetCodes(ctx context.Context) ([]model.BudgetCode, error)
}

type referenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) ListAreas(ctx context.Context) ([]model.Area, error) {
	var areas []model.Area
	if err := GetDB(ctx, r.db).Order("name ASC").Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

func (r *referenceRepository) FindAreaByID(ctx context.Context, id uuid.UUID) (*model.Area, error) {
	var area model.Area
	if err := GetDB(ctx, r.db).First(&area, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &area, nil
}

func (r *referenceRepository) CreateProject(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Create(project).Error
}

func (r *referenceRepository) ListProjects(ctx context.Context, areaID *uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	query := GetDB(ctx, r.db).Model(&model.Project{})
	if areaID != nil {
		query = query.Where("area_id = ?", *areaID)
	}
	if err := query.Order("name ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *referenceRepository) FindProjectByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := GetDB(ctx, r.db).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *referenceRepository) CreateSupplier(ctx context.Context, supplier *model.Supplier) error {
	return GetDB(ctx, r.db).Create(supplier).Error
}

func (r *referenceRepository) ListSuppliers(ctx context.Context, activeOnly bool) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	query := GetDB(ctx, r.db).Model(&model.Supplier{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Order("name ASC").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *referenceRepository) CreateBudgetCode(ctx context.Context, code *model.BudgetCode) error {
	return GetDB(ctx, r.db).Create(code).Error
}

func (r *referenceRepository) ListBudgetCodes(ctx context.Context) ([]model.BudgetCode, error) {
	var codes []model.BudgetCode
	if err := GetDB(ctx, r.db).Order("code ASC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
