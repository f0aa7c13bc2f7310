package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseOrderHandler struct {
	poService service.PurchaseOrderService
}

func NewPurchaseOrderHandler(poService service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{poService: poService}
}

func (h *PurchaseOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/api/purchase-orders")
	{
		orders.GET("", middleware.RequireRole("admin", "purchasing", "viewer"), h.ListPurchaseOrders)
		orders.GET("/:id", middleware.RequireRole("admin", "purchasing", "viewer"), h.GetPurchaseOrder)
		orders.POST("/:id/approve", middleware.RequireRole("admin", "purchasing"), h.ApprovePurchaseOrder)
		orders.POST("/:id/reject", middleware.RequireRole("admin", "purchasing"), h.RejectPurchaseOrder)
	}
}

// ListPurchaseOrders lists generated purchase orders
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Param        status     query     string  false  "Filter by status"
// @Param        auto_only  query     bool    false  "Only auto-generated POs"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/purchase-orders [get]
func (h *PurchaseOrderHandler) ListPurchaseOrders(c *gin.Context) {
	params := pagination.Parse(c)
	status := c.Query("status")
	autoOnly := c.Query("auto_only") == "true"

	orders, total, err := h.poService.List(c.Request.Context(), status, autoOnly, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve purchase orders: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"purchase_orders": orders,
		"total":           total,
		"page":            params.Page,
		"limit":           params.Limit,
	}))
}

// GetPurchaseOrder returns one purchase order with its lines
// @Summary      Get purchase order
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase Order ID"
// @Success      200  {object}  response.Response{data=model.PurchaseOrder}
// @Failure      404  {object}  response.Response
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetPurchaseOrder(c *gin.Context) {
	po, err := h.poService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}

// ApprovePurchaseOrder approves a pending purchase order
// @Summary      Approve purchase order
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase Order ID"
// @Success      200  {object}  response.Response{data=model.PurchaseOrder}
// @Failure      400  {object}  response.Response
// @Router       /api/purchase-orders/{id}/approve [post]
func (h *PurchaseOrderHandler) ApprovePurchaseOrder(c *gin.Context) {
	po, err := h.poService.Approve(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// RejectPurchaseOrder rejects a pending purchase order
// @Summary      Reject purchase order
// @Tags         purchase-orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string         true   "Purchase Order ID"
// @Param        payload  body      rejectRequest  false  "Rejection reason"
// @Success      200      {object}  response.Response{data=model.PurchaseOrder}
// @Failure      400      {object}  response.Response
// @Router       /api/purchase-orders/{id}/reject [post]
func (h *PurchaseOrderHandler) RejectPurchaseOrder(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	po, err := h.poService.Reject(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}
