package handlers

import (
	"net/http"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// IngredientHandler holds the ingredient service.
type IngredientHandler struct {
	ingredientService services.IngredientService
}

// NewIngredientHandler creates a new IngredientHandler.
func NewIngredientHandler(s services.IngredientService) *IngredientHandler {
	return &IngredientHandler{ingredientService: s}
}

// CreateIngredient handles ingredient creation.
func (h *IngredientHandler) CreateIngredient(c *gin.Context) {
	var req services.CreateIngredientRequest
	if !bindJSON(c, &req, "CreateIngredient") {
		return
	}

	ingredient, err := h.ingredientService.CreateIngredient(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create ingredient.")
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

// GetIngredients handles fetching ingredients with filters and pagination.
func (h *IngredientHandler) GetIngredients(c *gin.Context) {
	var filters models.IngredientFilters
	if !bindQuery(c, &filters, "GetIngredients") {
		return
	}

	ingredients, total, err := h.ingredientService.GetIngredients(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch ingredients.")
		return
	}
	if ingredients == nil {
		ingredients = []models.Ingredient{}
	}
	respondList(c, ingredients, total, filters.Page, filters.PageSize)
}

// GetIngredientByID handles fetching a single ingredient.
func (h *IngredientHandler) GetIngredientByID(c *gin.Context) {
	id, ok := idParam(c, "id", "ingredient")
	if !ok {
		return
	}

	ingredient, err := h.ingredientService.GetIngredientByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch ingredient.")
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

// UpdateIngredient handles updating a ingredient.
func (h *IngredientHandler) UpdateIngredient(c *gin.Context) {
	id, ok := idParam(c, "id", "ingredient")
	if !ok {
		return
	}
	var req services.UpdateIngredientRequest
	if !bindJSON(c, &req, "UpdateIngredient") {
		return
	}

	ingredient, err := h.ingredientService.UpdateIngredient(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update ingredient.")
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

// DeleteIngredient handles deleting a ingredient.
func (h *IngredientHandler) DeleteIngredient(c *gin.Context) {
	id, ok := idParam(c, "id", "ingredient")
	if !ok {
		return
	}

	if err := h.ingredientService.DeleteIngredient(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete ingredient.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ingredient deleted successfully"})
}

// GetCategories lists the distinct ingredient categories.
func (h *IngredientHandler) GetCategories(c *gin.Context) {
	categories, err := h.ingredientService.GetCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to fetch ingredient categories.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// AdjustStock records a stock movement (in or out) and returns the ingredient.
func (h *IngredientHandler) AdjustStock(c *gin.Context) {
	id, ok := idParam(c, "id", "ingredient")
	if !ok {
		return
	}
	var req services.StockMovementRequest
	if !bindJSON(c, &req, "AdjustStock") {
		return
	}

	ingredient, err := h.ingredientService.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to adjust ingredient stock.")
		return
	}
	c.JSON(http.StatusOK, ingredient)
}
