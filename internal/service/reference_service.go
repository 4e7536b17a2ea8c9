package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MappingProcimec/mapping-erp/internal/model"
	"github.com/MappingProcimec/mapping-erp/internal/repository"
	"github.com/MappingProcimec/mapping-erp/internal/workflow"
)

// --- DTOs ---

type CreateProjectRequest struct {
	Name   string `json:"name" binding:"required"`
	Code   string `json:"code" binding:"required"`
	AreaID string `json:"area_id"`
}

type CreateSupplierRequest struct {
	Name  string `json:"name" binding:"required"`
	TaxID string `json:"tax_id"`
}

type CreateBudgetCodeRequest struct {
	Code        string `json:"code" binding:"required"`
	Description string `json:"description"`
}

// --- Interface ---

// ReferenceService exposes the lookup catalogs requests draw from. Reads are
// open to any authenticated user; writes are admin-gated at the route level.
type ReferenceService interface {
	ListAreas(ctx context.Context) ([]model.Area, error)
	CreateProject(ctx context.Context, req CreateProjectRequest) (*model.Project, error)
	ListProjects(ctx context.Context, areaID string) ([]model.Project, error)
	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*model.Supplier, error)
	ListSuppliers(ctx context.Context, activeOnly bool) ([]model.Supplier, error)
	CreateBudgetCode(ctx context.Context, req CreateBudgetCodeRequest) (*model.BudgetCode, error)
	ListBudgetCodes(ctx context.Context) ([]model.BudgetCode, error)
}

type referenceService struct {
	repo repository.ReferenceRepository
}

func NewReferenceService(repo repository.ReferenceRepository) ReferenceService {
	return &referenceService{repo: repo}
}

// --- Implementation ---

func (s *referenceService) ListAreas(ctx context.Context) ([]model.Area, error) {
	areas, err := s.repo.ListAreas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}
	return areas, nil
}

func (s *referenceService) CreateProject(ctx context.Context, req CreateProjectRequest) (*model.Project, error) {
	project := model.Project{
		Name: req.Name,
		Code: req.Code,
	}
	if req.AreaID != "" {
		parsed, err := uuid.Parse(req.AreaID)
		if err != nil {
			return nil, fmt.Errorf("invalid area_id: %w", workflow.ErrValidation)
		}
		if _, err := s.repo.FindAreaByID(ctx, parsed); err != nil {
			return nil, fmt.Errorf("area %s does not exist: %w", parsed, workflow.ErrValidation)
		}
		project.AreaID = &parsed
	}

	if err := s.repo.CreateProject(ctx, &project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &project, nil
}

func (s *referenceService) ListProjects(ctx context.Context, areaID string) ([]model.Project, error) {
	var filter *uuid.UUID
	if areaID != "" {
		parsed, err := uuid.Parse(areaID)
		if err != nil {
			return nil, fmt.Errorf("invalid area_id: %w", workflow.ErrValidation)
		}
		filter = &parsed
	}

	projects, err := s.repo.ListProjects(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *referenceService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*model.Supplier, error) {
	supplier := model.Supplier{
		Name:   req.Name,
		TaxID:  req.TaxID,
		Active: true,
	}
	if err := s.repo.CreateSupplier(ctx, &supplier); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return &supplier, nil
}

func (s *referenceService) ListSuppliers(ctx context.Context, activeOnly bool) ([]model.Supplier, error) {
	suppliers, err := s.repo.ListSuppliers(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *referenceService) CreateBudgetCode(ctx context.Context, req CreateBudgetCodeRequest) (*model.BudgetCode, error) {
	code := model.BudgetCode{
		Code:        req.Code,
		Description: req.Description,
	}
	if err := s.repo.CreateBudgetCode(ctx, &code); err != nil {
		return nil, fmt.Errorf("failed to create budget code: %w", err)
	}
	return &code, nil
}

func (s *referenceService) ListBudgetCodes(ctx context.Context) ([]model.BudgetCode, error) {
	codes, err := s.repo.ListBudgetCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget codes: %w", err)
	}
	return codes, nil
}
