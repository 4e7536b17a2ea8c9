package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MappingProcimec/mapping-erp/internal/middleware"
	"github.com/MappingProcimec/mapping-erp/internal/service"
	"github.com/MappingProcimec/mapping-erp/internal/workflow"
	"github.com/MappingProcimec/mapping-erp/pkg/pagination"
	"github.com/MappingProcimec/mapping-erp/pkg/response"
)

// approverRoles gates the decision and queue routes. The engine re-checks the
// exact role-at-stage rule; this only keeps requesters off the routes.
var approverRoles = []workflow.Role{
	workflow.RoleAdmin,
	workflow.RoleAreaLead,
	workflow.RoleExecutive,
	workflow.RoleTreasury,
}

type RequestHandler struct {
	workflowService service.WorkflowService
}

func NewRequestHandler(workflowService service.WorkflowService) *RequestHandler {
	return &RequestHandler{workflowService: workflowService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	{
		requests.POST("", middleware.RequireRole(), h.CreateRequest)
		requests.GET("/pending", middleware.RequireRole(approverRoles...), h.ListPending)
		requests.GET("/mine", middleware.RequireRole(), h.ListMine)
		requests.GET("/:id", middleware.RequireRole(), h.GetRequest)
		requests.PUT("/:id/submit", middleware.RequireRole(), h.Submit)
		requests.PUT("/:id/approve", middleware.RequireRole(approverRoles...), h.Approve)
		requests.PUT("/:id/reject", middleware.RequireRole(approverRoles...), h.Reject)
	}
}

// CreateRequest creates a draft purchase request with its line items
// @Summary      Create purchase request
// @Description  Creates a draft purchase request; the total is derived from the line items
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequestInput  true  "Purchase Request Payload"
// @Success      201      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req service.CreateRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	created, err := h.workflowService.CreateRequest(c.Request.Context(), actor, req)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// ListPending lists requests awaiting a decision from the caller's role
// @Summary      List pending requests
// @Description  Returns requests whose current stage the caller's role may decide, urgent first
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      401    {object}  response.Response
// @Router       /api/requests/pending [get]
func (h *RequestHandler) ListPending(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	requests, total, err := h.workflowService.ListPending(c.Request.Context(), actor, params.Page, params.Limit)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// ListMine lists the caller's own requests
// @Summary      List own requests
// @Description  Returns the requests created by the authenticated user, newest first
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      401    {object}  response.Response
// @Router       /api/requests/mine [get]
func (h *RequestHandler) ListMine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	requests, total, err := h.workflowService.ListMine(c.Request.Context(), actor, params.Page, params.Limit)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetRequest returns one request with its approval history
// @Summary      Get purchase request
// @Description  Fetches a request with its line items and the ordered approval trail
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestDetail}
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}

	detail, err := h.workflowService.GetRequest(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// Submit moves a draft request into the approval chain
// @Summary      Submit purchase request
// @Description  Moves the caller's draft request to the first approval stage
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.TransitionResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id}/submit [put]
func (h *RequestHandler) Submit(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := requestID(c)
	if !ok {
		return
	}

	result, err := h.workflowService.Submit(c.Request.Context(), actor, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Approve records an approval decision at the request's current stage
// @Summary      Approve purchase request
// @Description  Advances the request to the next stage of its amount-derived path
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                    true   "Request ID"
// @Param        payload  body      service.DecisionInput  false  "Optional comment"
// @Success      200      {object}  response.Response{data=service.TransitionResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/requests/{id}/approve [put]
func (h *RequestHandler) Approve(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := requestID(c)
	if !ok {
		return
	}

	var req service.DecisionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		// Empty body is fine, the comment is optional on approval
		req.Comment = ""
	}

	result, err := h.workflowService.Approve(c.Request.Context(), actor, id, req.Comment)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Reject records a rejection at the request's current stage
// @Summary      Reject purchase request
// @Description  Moves the request to REJECTED; a comment explaining the rejection is mandatory
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                    true  "Request ID"
// @Param        payload  body      service.DecisionInput  true  "Rejection comment"
// @Success      200      {object}  response.Response{data=service.TransitionResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/requests/{id}/reject [put]
func (h *RequestHandler) Reject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := requestID(c)
	if !ok {
		return
	}

	var req service.DecisionInput
	if err := c.ShouldBindJSON(&req); err != nil || req.Comment == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "A comment is required when rejecting"))
		return
	}

	result, err := h.workflowService.Reject(c.Request.Context(), actor, id, req.Comment)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// --- Helpers ---

func currentActor(c *gin.Context) (service.Actor, bool) {
	id, role, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User not found in context"))
		return service.Actor{}, false
	}
	return service.Actor{ID: id, Role: role}, true
}

func requestID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request id"))
		return 0, false
	}
	return uint(id), true
}

// writeDomainError maps the workflow error taxonomy onto HTTP status codes.
// Anything outside the taxonomy is an internal failure and is not echoed to
// the client.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, workflow.ErrValidation):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, workflow.ErrForbidden):
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
	}
}
