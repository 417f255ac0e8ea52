package handlers

import (
	"net/http"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the order service.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

// CreateOrder handles the creation of a new order with its items.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if !bindJSON(c, &req, "CreateOrder") {
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create order.")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrders handles fetching orders with filters and pagination.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var filters models.OrderFilters
	if !bindQuery(c, &filters, "GetOrders") {
		return
	}

	orders, total, err := h.orderService.GetOrders(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch orders.")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respondList(c, orders, total, filters.Page, filters.PageSize)
}

// GetOrderByID returns the order header with its items.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	orderID, ok := idParam(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch order.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrder changes the mutable header fields of an order.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	orderID, ok := idParam(c, "id", "order")
	if !ok {
		return
	}
	var req services.UpdateOrderRequest
	if !bindJSON(c, &req, "UpdateOrder") {
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), orderID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update order.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// PayOrder marks an order as paid.
func (h *OrderHandler) PayOrder(c *gin.Context) {
	orderID, ok := idParam(c, "id", "order")
	if !ok {
		return
	}
	var req services.PayOrderRequest
	if !bindJSON(c, &req, "PayOrder") {
		return
	}

	order, err := h.orderService.PayOrder(c.Request.Context(), orderID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to pay order.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// AddOrderItem adds a line to an order and returns the updated order.
func (h *OrderHandler) AddOrderItem(c *gin.Context) {
	orderID, ok := idParam(c, "id", "order")
	if !ok {
		return
	}
	var req services.AddOrderItemRequest
	if !bindJSON(c, &req, "AddOrderItem") {
		return
	}

	order, err := h.orderService.AddOrderItem(c.Request.Context(), orderID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to add order item.")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// RemoveOrderItem deletes a line from an order and returns the updated order.
func (h *OrderHandler) RemoveOrderItem(c *gin.Context) {
	orderID, ok := idParam(c, "id", "order")
	if !ok {
		return
	}
	itemID, ok := idParam(c, "itemId", "order item")
	if !ok {
		return
	}

	order, err := h.orderService.RemoveOrderItem(c.Request.Context(), orderID, itemID)
	if err != nil {
		respondServiceError(c, err, "Failed to remove order item.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// DeleteOrder removes an order and its items.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, ok := idParam(c, "id", "order")
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), orderID); err != nil {
		respondServiceError(c, err, "Failed to delete order.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}
