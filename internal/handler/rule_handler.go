package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type RuleHandler struct {
	ruleService service.RuleService
}

func NewRuleHandler(ruleService service.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

func (h *RuleHandler) RegisterRoutes(router *gin.RouterGroup) {
	rules := router.Group("/api/auto-po/rules")
	{
		rules.GET("", middleware.RequireRole("admin", "purchasing", "viewer"), h.ListRules)
		rules.GET("/:id", middleware.RequireRole("admin", "purchasing", "viewer"), h.GetRule)
		rules.POST("", middleware.RequireRole("admin", "purchasing"), h.CreateRule)
		rules.PUT("/:id", middleware.RequireRole("admin", "purchasing"), h.UpdateRule)
		rules.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteRule)
		rules.POST("/:id/enable", middleware.RequireRole("admin", "purchasing"), h.EnableRule)
		rules.POST("/:id/disable", middleware.RequireRole("admin", "purchasing"), h.DisableRule)
	}
}

func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		ID:          middleware.ActorID(c),
		TriggeredBy: model.TriggeredByUser,
	}
}

// ListRules returns reorder rules
// @Summary      List auto-PO rules
// @Description  Retrieves a paginated list of reorder rules, optionally only enabled ones
// @Tags         auto-po
// @Security     BearerAuth
// @Produce      json
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        limit         query     int     false  "Items per page (default 20)"
// @Param        enabled_only  query     bool    false  "Only enabled rules"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/auto-po/rules [get]
func (h *RuleHandler) ListRules(c *gin.Context) {
	params := pagination.Parse(c)
	enabledOnly := c.Query("enabled_only") == "true"

	rules, total, err := h.ruleService.List(c.Request.Context(), enabledOnly, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve rules: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"rules": rules,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// GetRule returns one reorder rule by id
// @Summary      Get auto-PO rule
// @Tags         auto-po
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  response.Response{data=model.AutoPORule}
// @Failure      404  {object}  response.Response
// @Router       /api/auto-po/rules/{id} [get]
func (h *RuleHandler) GetRule(c *gin.Context) {
	rule, err := h.ruleService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// CreateRule creates a reorder rule
// @Summary      Create auto-PO rule
// @Description  Creates a reorder rule; invalid configurations are rejected at save time
// @Tags         auto-po
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RuleRequest  true  "Rule Payload"
// @Success      201      {object}  response.Response{data=model.AutoPORule}
// @Failure      400      {object}  response.Response
// @Router       /api/auto-po/rules [post]
func (h *RuleHandler) CreateRule(c *gin.Context) {
	var req service.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rule))
}

// UpdateRule updates a reorder rule
// @Summary      Update auto-PO rule
// @Tags         auto-po
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Rule ID"
// @Param        payload  body      service.RuleRequest  true  "Rule Payload"
// @Success      200      {object}  response.Response{data=model.AutoPORule}
// @Failure      400      {object}  response.Response
// @Router       /api/auto-po/rules/{id} [put]
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	var req service.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.Update(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// DeleteRule removes a reorder rule
// @Summary      Delete auto-PO rule
// @Tags         auto-po
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/auto-po/rules/{id} [delete]
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	if err := h.ruleService.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Rule deleted successfully"))
}

// EnableRule enables a reorder rule
// @Summary      Enable auto-PO rule
// @Tags         auto-po
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  response.Response{data=model.AutoPORule}
// @Failure      400  {object}  response.Response
// @Router       /api/auto-po/rules/{id}/enable [post]
func (h *RuleHandler) EnableRule(c *gin.Context) {
	rule, err := h.ruleService.SetEnabled(c.Request.Context(), actorFrom(c), c.Param("id"), true)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// DisableRule disables a reorder rule and discards its pending consolidation windows
// @Summary      Disable auto-PO rule
// @Tags         auto-po
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  response.Response{data=model.AutoPORule}
// @Failure      400  {object}  response.Response
// @Router       /api/auto-po/rules/{id}/disable [post]
func (h *RuleHandler) DisableRule(c *gin.Context) {
	rule, err := h.ruleService.SetEnabled(c.Request.Context(), actorFrom(c), c.Param("id"), false)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}
