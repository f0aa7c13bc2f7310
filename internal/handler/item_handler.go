package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ItemHandler struct {
	itemRepo    repository.ItemRepository
	execService service.ExecutionService
}

func NewItemHandler(itemRepo repository.ItemRepository, execService service.ExecutionService) *ItemHandler {
	return &ItemHandler{itemRepo: itemRepo, execService: execService}
}

func (h *ItemHandler) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/api/items")
	{
		items.GET("", middleware.RequireRole("admin", "purchasing", "viewer"), h.ListItems)
		items.GET("/:id", middleware.RequireRole("admin", "purchasing", "viewer"), h.GetItem)
		items.POST("/:id/stock", middleware.RequireRole("admin", "purchasing"), h.RecordStockMovement)
	}
}

// ListItems lists inventory items the engine monitors
// @Summary      List inventory items
// @Tags         items
// @Security     BearerAuth
// @Produce      json
// @Param        page           query     int   false  "Page number (default 1)"
// @Param        limit          query     int   false  "Items per page (default 20)"
// @Param        below_reorder  query     bool  false  "Only items at or below their reorder level"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/items [get]
func (h *ItemHandler) ListItems(c *gin.Context) {
	params := pagination.Parse(c)
	belowReorder := c.Query("below_reorder") == "true"

	items, total, err := h.itemRepo.List(c.Request.Context(), params.Page, params.Limit, belowReorder)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve items: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// GetItem returns one inventory item
// @Summary      Get inventory item
// @Tags         items
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  response.Response{data=model.InventoryItem}
// @Failure      404  {object}  response.Response
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid item id"))
		return
	}

	item, err := h.itemRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Item not found"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

type stockMovementRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// RecordStockMovement adjusts an item's quantity and lets STOCK_MOVEMENT rules react
// @Summary      Record stock movement
// @Description  Applies a signed quantity delta; rules triggered by stock movements are evaluated for the item
// @Tags         items
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Item ID"
// @Param        payload  body      stockMovementRequest  true  "Quantity delta"
// @Success      200      {object}  response.Response{data=model.InventoryItem}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/items/{id}/stock [post]
func (h *ItemHandler) RecordStockMovement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid item id"))
		return
	}

	var req stockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.execService.RecordStockMovement(c.Request.Context(), actorFrom(c), id, req.Delta)
	if err != nil {
		if item == nil {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}
