package handlers

import (
	"net/http"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type PurchaseOrderHandler struct {
	purchaseOrderService services.PurchaseOrderService
}

func NewPurchaseOrderHandler(ps services.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{purchaseOrderService: ps}
}

func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *gin.Context) {
	var req services.CreatePurchaseOrderRequest
	if !bindJSON(c, &req, "CreatePurchaseOrder") {
		return
	}

	po, err := h.purchaseOrderService.CreatePurchaseOrder(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create purchase order.")
		return
	}
	c.JSON(http.StatusCreated, po)
}

func (h *PurchaseOrderHandler) GetPurchaseOrders(c *gin.Context) {
	var filters models.PurchaseOrderFilters
	if !bindQuery(c, &filters, "GetPurchaseOrders") {
		return
	}

	orders, total, err := h.purchaseOrderService.GetPurchaseOrders(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch purchase orders.")
		return
	}
	if orders == nil {
		orders = []models.PurchaseOrder{}
	}
	respondList(c, orders, total, filters.Page, filters.PageSize)
}

func (h *PurchaseOrderHandler) GetPurchaseOrderByID(c *gin.Context) {
	id, ok := idParam(c, "id", "purchase order")
	if !ok {
		return
	}

	po, err := h.purchaseOrderService.GetPurchaseOrderByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch purchase order.")
		return
	}
	c.JSON(http.StatusOK, po)
}

// UpdatePurchaseOrderStatus moves a pending purchase order to delivered or cancelled.
func (h *PurchaseOrderHandler) UpdatePurchaseOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id", "purchase order")
	if !ok {
		return
	}
	var req services.UpdatePurchaseOrderStatusRequest
	if !bindJSON(c, &req, "UpdatePurchaseOrderStatus") {
		return
	}

	po, err := h.purchaseOrderService.UpdatePurchaseOrderStatus(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update purchase order status.")
		return
	}
	c.JSON(http.StatusOK, po)
}

func (h *PurchaseOrderHandler) DeletePurchaseOrder(c *gin.Context) {
	id, ok := idParam(c, "id", "purchase order")
	if !ok {
		return
	}

	if err := h.purchaseOrderService.DeletePurchaseOrder(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete purchase order.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Purchase order deleted successfully"})
}
