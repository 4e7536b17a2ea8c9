package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MappingProcimec/mapping-erp/internal/middleware"
	"github.com/MappingProcimec/mapping-erp/internal/service"
	"github.com/MappingProcimec/mapping-erp/internal/workflow"
	"github.com/MappingProcimec/mapping-erp/pkg/response"
)

// ReferenceHandler serves the lookup catalogs: areas, projects, suppliers and
// budget codes.
type ReferenceHandler struct {
	referenceService service.ReferenceService
}

func NewReferenceHandler(referenceService service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

func (h *ReferenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/areas", middleware.RequireRole(), h.ListAreas)

	projects := router.Group("/api/projects")
	{
		projects.GET("", middleware.RequireRole(), h.ListProjects)
		projects.POST("", middleware.RequireRole(workflow.RoleAdmin), h.CreateProject)
	}

	suppliers := router.Group("/api/suppliers")
	{
		suppliers.GET("", middleware.RequireRole(), h.ListSuppliers)
		suppliers.POST("", middleware.RequireRole(workflow.RoleAdmin), h.CreateSupplier)
	}

	budgetCodes := router.Group("/api/budget-codes")
	{
		budgetCodes.GET("", middleware.RequireRole(), h.ListBudgetCodes)
		budgetCodes.POST("", middleware.RequireRole(workflow.RoleAdmin), h.CreateBudgetCode)
	}
}

// ListAreas returns all organizational areas
// @Summary      List areas
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Area}
// @Router       /api/areas [get]
func (h *ReferenceHandler) ListAreas(c *gin.Context) {
	areas, err := h.referenceService.ListAreas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch areas"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, areas))
}

// ListProjects returns projects, optionally filtered by area
// @Summary      List projects
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Param        area_id  query     string  false  "Filter by area"
// @Success      200      {object}  response.Response{data=[]model.Project}
// @Router       /api/projects [get]
func (h *ReferenceHandler) ListProjects(c *gin.Context) {
	projects, err := h.referenceService.ListProjects(c.Request.Context(), c.Query("area_id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, projects))
}

// CreateProject adds a project to the catalog
// @Summary      Create project
// @Tags         reference
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProjectRequest  true  "Project Payload"
// @Success      201      {object}  response.Response{data=model.Project}
// @Failure      400      {object}  response.Response
// @Router       /api/projects [post]
func (h *ReferenceHandler) CreateProject(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	project, err := h.referenceService.CreateProject(c.Request.Context(), req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, project))
}

// ListSuppliers returns suppliers, active ones only unless all=true
// @Summary      List suppliers
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Param        all  query     bool  false  "Include inactive suppliers"
// @Success      200  {object}  response.Response{data=[]model.Supplier}
// @Router       /api/suppliers [get]
func (h *ReferenceHandler) ListSuppliers(c *gin.Context) {
	activeOnly := c.Query("all") != "true"
	suppliers, err := h.referenceService.ListSuppliers(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch suppliers"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, suppliers))
}

// CreateSupplier adds a supplier to the catalog
// @Summary      Create supplier
// @Tags         reference
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateSupplierRequest  true  "Supplier Payload"
// @Success      201      {object}  response.Response{data=model.Supplier}
// @Failure      400      {object}  response.Response
// @Router       /api/suppliers [post]
func (h *ReferenceHandler) CreateSupplier(c *gin.Context) {
	var req service.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	supplier, err := h.referenceService.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, supplier))
}

// ListBudgetCodes returns all budget codes
// @Summary      List budget codes
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.BudgetCode}
// @Router       /api/budget-codes [get]
func (h *ReferenceHandler) ListBudgetCodes(c *gin.Context) {
	codes, err := h.referenceService.ListBudgetCodes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch budget codes"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, codes))
}

// CreateBudgetCode adds a budget code to the catalog
// @Summary      Create budget code
// @Tags         reference
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateBudgetCodeRequest  true  "Budget Code Payload"
// @Success      201      {object}  response.Response{data=model.BudgetCode}
// @Failure      400      {object}  response.Response
// @Router       /api/budget-codes [post]
func (h *ReferenceHandler) CreateBudgetCode(c *gin.Context) {
	var req service.CreateBudgetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	code, err := h.referenceService.CreateBudgetCode(c.Request.Context(), req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, code))
}
