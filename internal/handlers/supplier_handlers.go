package handlers

import (
	"net/http"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SupplierHandler holds the supplier service.
type SupplierHandler struct {
	supplierService services.SupplierService
}

func NewSupplierHandler(s services.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: s}
}

func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req services.CreateSupplierRequest
	if !bindJSON(c, &req, "CreateSupplier") {
		return
	}

	supplier, err := h.supplierService.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create supplier.")
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func (h *SupplierHandler) GetSuppliers(c *gin.Context) {
	var filters models.SupplierFilters
	if !bindQuery(c, &filters, "GetSuppliers") {
		return
	}

	suppliers, total, err := h.supplierService.GetSuppliers(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch suppliers.")
		return
	}
	if suppliers == nil {
		suppliers = []models.Supplier{}
	}
	respondList(c, suppliers, total, filters.Page, filters.PageSize)
}

func (h *SupplierHandler) GetSupplierByID(c *gin.Context) {
	id, ok := idParam(c, "id", "supplier")
	if !ok {
		return
	}

	supplier, err := h.supplierService.GetSupplierByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch supplier.")
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	id, ok := idParam(c, "id", "supplier")
	if !ok {
		return
	}
	var req services.UpdateSupplierRequest
	if !bindJSON(c, &req, "UpdateSupplier") {
		return
	}

	supplier, err := h.supplierService.UpdateSupplier(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update supplier.")
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	id, ok := idParam(c, "id", "supplier")
	if !ok {
		return
	}

	if err := h.supplierService.DeleteSupplier(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete supplier.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully"})
}
