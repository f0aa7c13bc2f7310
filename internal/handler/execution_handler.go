package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ExecutionHandler struct {
	execService    service.ExecutionService
	summaryService service.SummaryService
}

func NewExecutionHandler(execService service.ExecutionService, summaryService service.SummaryService) *ExecutionHandler {
	return &ExecutionHandler{execService: execService, summaryService: summaryService}
}

func (h *ExecutionHandler) RegisterRoutes(router *gin.RouterGroup) {
	autoPO := router.Group("/api/auto-po")
	{
		autoPO.POST("/preview", middleware.RequireRole("admin", "purchasing", "viewer"), h.Preview)
		autoPO.POST("/execute", middleware.RequireRole("admin", "purchasing"), h.Execute)
		autoPO.GET("/executions", middleware.RequireRole("admin", "purchasing", "viewer"), h.ListExecutions)
		autoPO.GET("/executions/:id", middleware.RequireRole("admin", "purchasing", "viewer"), h.GetExecution)
		autoPO.GET("/summary", middleware.RequireRole("admin", "purchasing", "viewer"), h.GetSummary)
	}
}

type previewRequest struct {
	RuleID      *string `json:"rule_id"`
	WarehouseID *string `json:"warehouse_id"`
}

type executeRequest struct {
	RuleID *string `json:"rule_id"`
	DryRun bool    `json:"dry_run"`
}

func parseOptionalID(raw *string, label string) (*uuid.UUID, string) {
	if raw == nil || *raw == "" {
		return nil, ""
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, "invalid " + label
	}
	return &id, ""
}

// Preview computes what the engine would order right now, without side effects
// @Summary      Preview auto-PO generation
// @Description  Dry-run across one rule (even a disabled one) or all runnable rules; creates nothing
// @Tags         auto-po
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      previewRequest  false  "Preview filters"
// @Success      200      {object}  response.Response{data=service.AutoPOPreview}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/auto-po/preview [post]
func (h *ExecutionHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	ruleID, msg := parseOptionalID(req.RuleID, "rule_id")
	if msg != "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
		return
	}
	warehouseID, msg := parseOptionalID(req.WarehouseID, "warehouse_id")
	if msg != "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
		return
	}

	preview, err := h.execService.Preview(c.Request.Context(), ruleID, warehouseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, preview))
}

// Execute runs the engine for one rule or all runnable rules
// @Summary      Execute auto-PO generation
// @Description  Live runs persist POs and an execution record; dry runs return a preview and mutate nothing
// @Tags         auto-po
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      executeRequest  false  "Execution target"
// @Success      200      {object}  response.Response{data=service.ExecuteResult}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/auto-po/execute [post]
func (h *ExecutionHandler) Execute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	ruleID, msg := parseOptionalID(req.RuleID, "rule_id")
	if msg != "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
		return
	}

	result, err := h.execService.Execute(c.Request.Context(), actorFrom(c), ruleID, req.DryRun)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrRunInFlight) {
			status = http.StatusConflict
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListExecutions lists recent engine runs
// @Summary      List auto-PO executions
// @Tags         auto-po
// @Security     BearerAuth
// @Produce      json
// @Param        rule_id  query     string  false  "Filter by rule"
// @Param        limit    query     int     false  "Max records (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/auto-po/executions [get]
func (h *ExecutionHandler) ListExecutions(c *gin.Context) {
	var ruleID *uuid.UUID
	if raw := c.Query("rule_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid rule_id"))
			return
		}
		ruleID = &id
	}
	limit := pagination.ParseLimit(c, 20)

	executions, err := h.execService.ListExecutions(c.Request.Context(), ruleID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"executions": executions,
	}))
}

// GetExecution returns one execution audit record
// @Summary      Get auto-PO execution
// @Tags         auto-po
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Execution ID"
// @Success      200  {object}  response.Response{data=model.AutoPOExecution}
// @Failure      404  {object}  response.Response
// @Router       /api/auto-po/executions/{id} [get]
func (h *ExecutionHandler) GetExecution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid execution id"))
		return
	}

	exec, err := h.execService.GetExecution(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, exec))
}

// GetSummary returns the engine monitoring dashboard
// @Summary      Auto-PO summary
// @Description  Active rules, monitored/short item counts, pending POs and recent executions
// @Tags         auto-po
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SummaryResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/auto-po/summary [get]
func (h *ExecutionHandler) GetSummary(c *gin.Context) {
	summary, err := h.summaryService.GetSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
