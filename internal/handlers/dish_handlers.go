package handlers

import (
	"net/http"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// DishHandler holds the dish service.
type DishHandler struct {
	dishService services.DishService
}

func NewDishHandler(s services.DishService) *DishHandler {
	return &DishHandler{dishService: s}
}

func (h *DishHandler) CreateDish(c *gin.Context) {
	var req services.CreateDishRequest
	if !bindJSON(c, &req, "CreateDish") {
		return
	}

	dish, err := h.dishService.CreateDish(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create dish.")
		return
	}
	c.JSON(http.StatusCreated, dish)
}

func (h *DishHandler) GetDishes(c *gin.Context) {
	var filters models.DishFilters
	if !bindQuery(c, &filters, "GetDishes") {
		return
	}

	dishes, total, err := h.dishService.GetDishes(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch dishes.")
		return
	}
	if dishes == nil {
		dishes = []models.Dish{}
	}
	respondList(c, dishes, total, filters.Page, filters.PageSize)
}

func (h *DishHandler) GetDishByID(c *gin.Context) {
	id, ok := idParam(c, "id", "dish")
	if !ok {
		return
	}

	dish, err := h.dishService.GetDishByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch dish.")
		return
	}
	c.JSON(http.StatusOK, dish)
}

func (h *DishHandler) UpdateDish(c *gin.Context) {
	id, ok := idParam(c, "id", "dish")
	if !ok {
		return
	}
	var req services.UpdateDishRequest
	if !bindJSON(c, &req, "UpdateDish") {
		return
	}

	dish, err := h.dishService.UpdateDish(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update dish.")
		return
	}
	c.JSON(http.StatusOK, dish)
}

func (h *DishHandler) DeleteDish(c *gin.Context) {
	id, ok := idParam(c, "id", "dish")
	if !ok {
		return
	}

	if err := h.dishService.DeleteDish(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete dish.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dish deleted successfully"})
}

// GetCategories lists the distinct dish categories.
func (h *DishHandler) GetCategories(c *gin.Context) {
	categories, err := h.dishService.GetCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to fetch dish categories.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// CheckRestrictions reports which of the given dishes conflict with a diner's dietary restrictions.
func (h *DishHandler) CheckRestrictions(c *gin.Context) {
	var req services.CheckRestrictionsRequest
	if !bindJSON(c, &req, "CheckRestrictions") {
		return
	}

	result, err := h.dishService.CheckRestrictions(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to check dietary restrictions.")
		return
	}
	c.JSON(http.StatusOK, result)
}
