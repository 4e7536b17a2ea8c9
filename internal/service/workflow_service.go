package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MappingProcimec/mapping-erp/internal/model"
	"github.com/MappingProcimec/mapping-erp/internal/repository"
	"github.com/MappingProcimec/mapping-erp/internal/workflow"
)

// requiredByLayout is the wire format for the required-by date.
const requiredByLayout = "2006-01-02"

// --- DTOs ---

// Actor identifies the authenticated user performing a workflow operation.
type Actor struct {
	ID   uuid.UUID
	Role workflow.Role
}

type LineItemInput struct {
	Description  string `json:"description" binding:"required"`
	Quantity     string `json:"quantity" binding:"required"`   // Decimal string
	UnitPrice    string `json:"unit_price" binding:"required"` // Decimal string
	BudgetCodeID string `json:"budget_code_id"`
	SupplierID   string `json:"supplier_id"`
}

type CreateRequestInput struct {
	Title         string          `json:"title" binding:"required"`
	Justification string          `json:"justification" binding:"required"`
	AreaID        string          `json:"area_id" binding:"required,uuid"`
	ProjectID     string          `json:"project_id"`
	Urgent        bool            `json:"urgent"`
	RequiredBy    string          `json:"required_by"` // YYYY-MM-DD
	Items         []LineItemInput `json:"items" binding:"required,min=1,dive"`
}

type DecisionInput struct {
	Comment string `json:"comment"`
}

type LineItemResponse struct {
	ID           uint    `json:"id"`
	Description  string  `json:"description"`
	Quantity     string  `json:"quantity"`
	UnitPrice    string  `json:"unit_price"`
	Subtotal     string  `json:"subtotal"`
	BudgetCodeID *string `json:"budget_code_id"`
	SupplierID   *string `json:"supplier_id"`
}

type RequestResponse struct {
	ID            uint               `json:"id"`
	Title         string             `json:"title"`
	Justification string             `json:"justification"`
	AreaID        string             `json:"area_id"`
	AreaName      string             `json:"area_name,omitempty"`
	ProjectID     *string            `json:"project_id"`
	ProjectName   string             `json:"project_name,omitempty"`
	TotalAmount   string             `json:"total_amount"`
	Urgent        bool               `json:"urgent"`
	RequiredBy    *string            `json:"required_by"`
	RequesterID   string             `json:"requester_id"`
	RequesterName string             `json:"requester_name,omitempty"`
	CurrentStage  string             `json:"current_stage"`
	Items         []LineItemResponse `json:"items,omitempty"`
	CreatedAt     string             `json:"created_at"`
	UpdatedAt     string             `json:"updated_at"`
}

type EventResponse struct {
	ID             uint   `json:"id"`
	StageOrdinal   int    `json:"stage_ordinal"`
	Action         string `json:"action"`
	Comment        string `json:"comment"`
	ActorID        string `json:"actor_id"`
	ActorName      string `json:"actor_name,omitempty"`
	ResultingStage string `json:"resulting_stage"`
	CreatedAt      string `json:"created_at"`
}

// RequestDetail pairs a request with its full approval trail.
type RequestDetail struct {
	Request RequestResponse `json:"request"`
	History []EventResponse `json:"history"`
}

type TransitionResponse struct {
	RequestID     uint   `json:"request_id"`
	PreviousStage string `json:"previous_stage"`
	NewStage      string `json:"new_stage"`
}

// --- Interface ---

// WorkflowService is the single entry point for every purchase-request
// mutation. Each transition runs in one database transaction that locks the
// request row, re-checks the stage under the lock, updates the stage and
// appends the ledger event, so two concurrent decisions can never both land.
type WorkflowService interface {
	CreateRequest(ctx context.Context, actor Actor, req CreateRequestInput) (RequestResponse, error)
	Submit(ctx context.Context, actor Actor, requestID uint) (TransitionResponse, error)
	Approve(ctx context.Context, actor Actor, requestID uint, comment string) (TransitionResponse, error)
	Reject(ctx context.Context, actor Actor, requestID uint, comment string) (TransitionResponse, error)
	GetRequest(ctx context.Context, requestID uint) (RequestDetail, error)
	ListPending(ctx context.Context, actor Actor, page, limit int) ([]RequestResponse, int64, error)
	ListMine(ctx context.Context, actor Actor, page, limit int) ([]RequestResponse, int64, error)
}

type workflowService struct {
	requestRepo   repository.RequestRepository
	eventRepo     repository.EventRepository
	referenceRepo repository.ReferenceRepository
	txManager     repository.TransactionManager
	policy        workflow.Policy
	logger        *zap.Logger
}

func NewWorkflowService(
	requestRepo repository.RequestRepository,
	eventRepo repository.EventRepository,
	referenceRepo repository.ReferenceRepository,
	txManager repository.TransactionManager,
	policy workflow.Policy,
	logger *zap.Logger,
) WorkflowService {
	return &workflowService{
		requestRepo:   requestRepo,
		eventRepo:     eventRepo,
		referenceRepo: referenceRepo,
		txManager:     txManager,
		policy:        policy,
		logger:        logger,
	}
}

// --- Implementation ---

func (s *workflowService) CreateRequest(ctx context.Context, actor Actor, req CreateRequestInput) (RequestResponse, error) {
	areaID, err := uuid.Parse(req.AreaID)
	if err != nil {
		return RequestResponse{}, fmt.Errorf("invalid area_id: %w", workflow.ErrValidation)
	}
	if _, err := s.referenceRepo.FindAreaByID(ctx, areaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, fmt.Errorf("area %s does not exist: %w", areaID, workflow.ErrValidation)
		}
		s.logger.Error("failed to look up area", zap.String("area_id", req.AreaID), zap.Error(err))
		return RequestResponse{}, fmt.Errorf("failed to look up area: %w", err)
	}

	var projectID *uuid.UUID
	if req.ProjectID != "" {
		parsed, parseErr := uuid.Parse(req.ProjectID)
		if parseErr != nil {
			return RequestResponse{}, fmt.Errorf("invalid project_id: %w", workflow.ErrValidation)
		}
		if _, findErr := s.referenceRepo.FindProjectByID(ctx, parsed); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return RequestResponse{}, fmt.Errorf("project %s does not exist: %w", parsed, workflow.ErrValidation)
			}
			s.logger.Error("failed to look up project", zap.String("project_id", req.ProjectID), zap.Error(findErr))
			return RequestResponse{}, fmt.Errorf("failed to look up project: %w", findErr)
		}
		projectID = &parsed
	}

	var requiredBy *time.Time
	if req.RequiredBy != "" {
		parsed, parseErr := time.Parse(requiredByLayout, req.RequiredBy)
		if parseErr != nil {
			return RequestResponse{}, fmt.Errorf("required_by must be a YYYY-MM-DD date: %w", workflow.ErrValidation)
		}
		requiredBy = &parsed
	}

	if len(req.Items) == 0 {
		return RequestResponse{}, fmt.Errorf("a request needs at least one line item: %w", workflow.ErrValidation)
	}

	items := make([]model.LineItem, 0, len(req.Items))
	total := decimal.Zero
	for i, in := range req.Items {
		quantity, parseErr := decimal.NewFromString(in.Quantity)
		if parseErr != nil {
			return RequestResponse{}, fmt.Errorf("item %d: invalid quantity %q: %w", i+1, in.Quantity, workflow.ErrValidation)
		}
		if !quantity.IsPositive() {
			return RequestResponse{}, fmt.Errorf("item %d: quantity must be greater than zero: %w", i+1, workflow.ErrValidation)
		}

		unitPrice, parseErr := decimal.NewFromString(in.UnitPrice)
		if parseErr != nil {
			return RequestResponse{}, fmt.Errorf("item %d: invalid unit_price %q: %w", i+1, in.UnitPrice, workflow.ErrValidation)
		}
		if unitPrice.IsNegative() {
			return RequestResponse{}, fmt.Errorf("item %d: unit_price must not be negative: %w", i+1, workflow.ErrValidation)
		}

		item := model.LineItem{
			Description: in.Description,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			Subtotal:    quantity.Mul(unitPrice),
		}
		if in.BudgetCodeID != "" {
			parsed, idErr := uuid.Parse(in.BudgetCodeID)
			if idErr != nil {
				return RequestResponse{}, fmt.Errorf("item %d: invalid budget_code_id: %w", i+1, workflow.ErrValidation)
			}
			item.BudgetCodeID = &parsed
		}
		if in.SupplierID != "" {
			parsed, idErr := uuid.Parse(in.SupplierID)
			if idErr != nil {
				return RequestResponse{}, fmt.Errorf("item %d: invalid supplier_id: %w", i+1, workflow.ErrValidation)
			}
			item.SupplierID = &parsed
		}

		items = append(items, item)
		total = total.Add(item.Subtotal)
	}

	request := model.PurchaseRequest{
		Title:         req.Title,
		Justification: req.Justification,
		AreaID:        areaID,
		ProjectID:     projectID,
		Items:         items,
		TotalAmount:   total,
		Urgent:        req.Urgent,
		RequiredBy:    requiredBy,
		RequesterID:   actor.ID,
		CurrentStage:  workflow.StageDraft,
	}

	if err := s.requestRepo.CreateWithItems(ctx, &request); err != nil {
		s.logger.Error("failed to create purchase request", zap.Error(err))
		return RequestResponse{}, fmt.Errorf("failed to create purchase request: %w", err)
	}

	created, err := s.requestRepo.FindByIDWithDetails(ctx, request.ID)
	if err != nil {
		s.logger.Error("failed to reload purchase request", zap.Uint("request_id", request.ID), zap.Error(err))
		return RequestResponse{}, fmt.Errorf("failed to reload purchase request: %w", err)
	}

	s.logger.Info("purchase request created",
		zap.Uint("request_id", created.ID),
		zap.String("requester_id", actor.ID.String()),
		zap.String("total_amount", total.StringFixed(4)))

	return toRequestResponse(*created), nil
}

func (s *workflowService) Submit(ctx context.Context, actor Actor, requestID uint) (TransitionResponse, error) {
	var result TransitionResponse

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("purchase request %d: %w", requestID, workflow.ErrNotFound)
			}
			return fmt.Errorf("failed to load purchase request: %w", err)
		}

		if request.RequesterID != actor.ID {
			return fmt.Errorf("only the requester may submit this request: %w", workflow.ErrForbidden)
		}
		if request.CurrentStage != workflow.StageDraft {
			return fmt.Errorf("only draft requests may be submitted, request %d is %s: %w",
				requestID, request.CurrentStage, workflow.ErrValidation)
		}

		first := s.policy.Path(request.TotalAmount)[0]
		if err := s.requestRepo.UpdateStage(txCtx, requestID, first, actor.ID); err != nil {
			return fmt.Errorf("failed to update stage: %w", err)
		}

		event := model.ApprovalEvent{
			RequestID:      requestID,
			StageOrdinal:   workflow.OrdinalSubmit,
			Action:         workflow.ActionSubmit,
			ActorID:        actor.ID,
			ResultingStage: first,
		}
		if err := s.eventRepo.Append(txCtx, &event); err != nil {
			return fmt.Errorf("failed to append submit event: %w", err)
		}

		result = TransitionResponse{
			RequestID:     requestID,
			PreviousStage: workflow.StageDraft.String(),
			NewStage:      first.String(),
		}
		return nil
	})

	if err != nil {
		if !workflow.IsDomainError(err) {
			s.logger.Error("submit failed", zap.Uint("request_id", requestID), zap.Error(err))
		}
		return TransitionResponse{}, err
	}

	s.logger.Info("purchase request submitted",
		zap.Uint("request_id", requestID),
		zap.String("actor_id", actor.ID.String()),
		zap.String("new_stage", result.NewStage))

	return result, nil
}

func (s *workflowService) Approve(ctx context.Context, actor Actor, requestID uint, comment string) (TransitionResponse, error) {
	return s.decide(ctx, actor, requestID, workflow.ActionApprove, comment)
}

func (s *workflowService) Reject(ctx context.Context, actor Actor, requestID uint, comment string) (TransitionResponse, error) {
	return s.decide(ctx, actor, requestID, workflow.ActionReject, comment)
}

// decide is the shared approve/reject path. All preconditions are evaluated
// after the row lock is taken, so a decision raced by another actor sees the
// stage that actor produced and fails the stage check instead of double
// firing.
func (s *workflowService) decide(ctx context.Context, actor Actor, requestID uint, action workflow.Action, comment string) (TransitionResponse, error) {
	if action == workflow.ActionReject && comment == "" {
		return TransitionResponse{}, fmt.Errorf("a comment is required when rejecting: %w", workflow.ErrValidation)
	}

	var result TransitionResponse

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("purchase request %d: %w", requestID, workflow.ErrNotFound)
			}
			return fmt.Errorf("failed to load purchase request: %w", err)
		}

		if !request.CurrentStage.IsPending() {
			return fmt.Errorf("cannot act on request %d in stage %s: %w",
				requestID, request.CurrentStage, workflow.ErrValidation)
		}
		if !workflow.CanAct(actor.Role, request.CurrentStage) {
			return fmt.Errorf("role %s may not act at stage %s (requires one of %v): %w",
				actor.Role, request.CurrentStage, workflow.AuthorizedRoles(request.CurrentStage), workflow.ErrForbidden)
		}

		ordinal, ok := workflow.StageOrdinal(request.CurrentStage)
		if !ok {
			return fmt.Errorf("stage %s has no ledger ordinal: %w", request.CurrentStage, workflow.ErrValidation)
		}

		var resulting workflow.Stage
		if action == workflow.ActionApprove {
			next, hasNext := s.policy.NextStage(request.CurrentStage, request.TotalAmount)
			if !hasNext {
				return fmt.Errorf("no next stage after %s for request %d: %w",
					request.CurrentStage, requestID, workflow.ErrValidation)
			}
			resulting = next
		} else {
			resulting = workflow.StageRejected
		}

		if err := s.requestRepo.UpdateStage(txCtx, requestID, resulting, actor.ID); err != nil {
			return fmt.Errorf("failed to update stage: %w", err)
		}

		event := model.ApprovalEvent{
			RequestID:      requestID,
			StageOrdinal:   ordinal,
			Action:         action,
			Comment:        comment,
			ActorID:        actor.ID,
			ResultingStage: resulting,
		}
		if err := s.eventRepo.Append(txCtx, &event); err != nil {
			return fmt.Errorf("failed to append %s event: %w", action, err)
		}

		result = TransitionResponse{
			RequestID:     requestID,
			PreviousStage: request.CurrentStage.String(),
			NewStage:      resulting.String(),
		}
		return nil
	})

	if err != nil {
		if !workflow.IsDomainError(err) {
			s.logger.Error("decision failed",
				zap.Uint("request_id", requestID),
				zap.String("action", action.String()),
				zap.Error(err))
		}
		return TransitionResponse{}, err
	}

	s.logger.Info("purchase request decision recorded",
		zap.Uint("request_id", requestID),
		zap.String("action", action.String()),
		zap.String("actor_id", actor.ID.String()),
		zap.String("previous_stage", result.PreviousStage),
		zap.String("new_stage", result.NewStage))

	return result, nil
}

func (s *workflowService) GetRequest(ctx context.Context, requestID uint) (RequestDetail, error) {
	request, err := s.requestRepo.FindByIDWithDetails(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestDetail{}, fmt.Errorf("purchase request %d: %w", requestID, workflow.ErrNotFound)
		}
		s.logger.Error("failed to load purchase request", zap.Uint("request_id", requestID), zap.Error(err))
		return RequestDetail{}, fmt.Errorf("failed to load purchase request: %w", err)
	}

	events, err := s.eventRepo.HistoryByRequestID(ctx, requestID)
	if err != nil {
		s.logger.Error("failed to load approval history", zap.Uint("request_id", requestID), zap.Error(err))
		return RequestDetail{}, fmt.Errorf("failed to load approval history: %w", err)
	}

	history := make([]EventResponse, 0, len(events))
	for _, e := range events {
		history = append(history, toEventResponse(e))
	}

	return RequestDetail{
		Request: toRequestResponse(*request),
		History: history,
	}, nil
}

func (s *workflowService) ListPending(ctx context.Context, actor Actor, page, limit int) ([]RequestResponse, int64, error) {
	stages := workflow.ActionableStages(actor.Role)
	if len(stages) == 0 {
		return []RequestResponse{}, 0, nil
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	requests, total, err := s.requestRepo.ListByStages(ctx, stages, page, limit)
	if err != nil {
		s.logger.Error("failed to list pending requests", zap.String("role", actor.Role.String()), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list pending requests: %w", err)
	}

	result := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toRequestResponse(r))
	}
	return result, total, nil
}

func (s *workflowService) ListMine(ctx context.Context, actor Actor, page, limit int) ([]RequestResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	requests, total, err := s.requestRepo.ListByRequester(ctx, actor.ID, page, limit)
	if err != nil {
		s.logger.Error("failed to list own requests", zap.String("requester_id", actor.ID.String()), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list own requests: %w", err)
	}

	result := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toRequestResponse(r))
	}
	return result, total, nil
}

// --- Helpers ---

func toRequestResponse(r model.PurchaseRequest) RequestResponse {
	resp := RequestResponse{
		ID:            r.ID,
		Title:         r.Title,
		Justification: r.Justification,
		AreaID:        r.AreaID.String(),
		TotalAmount:   r.TotalAmount.StringFixed(4),
		Urgent:        r.Urgent,
		RequesterID:   r.RequesterID.String(),
		CurrentStage:  r.CurrentStage.String(),
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}

	if r.Area != nil {
		resp.AreaName = r.Area.Name
	}
	if r.ProjectID != nil {
		s := r.ProjectID.String()
		resp.ProjectID = &s
	}
	if r.Project != nil {
		resp.ProjectName = r.Project.Name
	}
	if r.RequiredBy != nil {
		s := r.RequiredBy.Format(requiredByLayout)
		resp.RequiredBy = &s
	}
	if r.Requester != nil {
		resp.RequesterName = r.Requester.Username
	}

	for _, item := range r.Items {
		resp.Items = append(resp.Items, toLineItemResponse(item))
	}

	return resp
}

func toLineItemResponse(i model.LineItem) LineItemResponse {
	resp := LineItemResponse{
		ID:          i.ID,
		Description: i.Description,
		Quantity:    i.Quantity.StringFixed(4),
		UnitPrice:   i.UnitPrice.StringFixed(4),
		Subtotal:    i.Subtotal.StringFixed(4),
	}
	if i.BudgetCodeID != nil {
		s := i.BudgetCodeID.String()
		resp.BudgetCodeID = &s
	}
	if i.SupplierID != nil {
		s := i.SupplierID.String()
		resp.SupplierID = &s
	}
	return resp
}

func toEventResponse(e model.ApprovalEvent) EventResponse {
	resp := EventResponse{
		ID:             e.ID,
		StageOrdinal:   e.StageOrdinal,
		Action:         e.Action.String(),
		Comment:        e.Comment,
		ActorID:        e.ActorID.String(),
		ResultingStage: e.ResultingStage.String(),
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
	}
	if e.Actor != nil {
		resp.ActorName = e.Actor.Username
	}
	return resp
}
