package handlers

import (
	"net/http"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// MenuHandler holds the menu service.
type MenuHandler struct {
	menuService services.MenuService
}

func NewMenuHandler(s services.MenuService) *MenuHandler {
	return &MenuHandler{menuService: s}
}

// CreateMenu creates a menu together with its dishes.
func (h *MenuHandler) CreateMenu(c *gin.Context) {
	var req services.CreateMenuRequest
	if !bindJSON(c, &req, "CreateMenu") {
		return
	}

	menu, err := h.menuService.CreateMenu(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create menu.")
		return
	}
	c.JSON(http.StatusCreated, menu)
}

func (h *MenuHandler) GetMenus(c *gin.Context) {
	var filters models.MenuFilters
	if !bindQuery(c, &filters, "GetMenus") {
		return
	}

	menus, total, err := h.menuService.GetMenus(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch menus.")
		return
	}
	if menus == nil {
		menus = []models.Menu{}
	}
	respondList(c, menus, total, filters.Page, filters.PageSize)
}

func (h *MenuHandler) GetMenuByID(c *gin.Context) {
	id, ok := idParam(c, "id", "menu")
	if !ok {
		return
	}

	menu, err := h.menuService.GetMenuByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch menu.")
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (h *MenuHandler) UpdateMenu(c *gin.Context) {
	id, ok := idParam(c, "id", "menu")
	if !ok {
		return
	}
	var req services.UpdateMenuRequest
	if !bindJSON(c, &req, "UpdateMenu") {
		return
	}

	menu, err := h.menuService.UpdateMenu(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update menu.")
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (h *MenuHandler) DeleteMenu(c *gin.Context) {
	id, ok := idParam(c, "id", "menu")
	if !ok {
		return
	}

	if err := h.menuService.DeleteMenu(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete menu.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu deleted successfully"})
}

// AddDish puts a dish on the menu and returns the updated menu.
func (h *MenuHandler) AddDish(c *gin.Context) {
	id, ok := idParam(c, "id", "menu")
	if !ok {
		return
	}
	var req services.MenuDishRequest
	if !bindJSON(c, &req, "AddMenuDish") {
		return
	}

	menu, err := h.menuService.AddDish(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to add dish to menu.")
		return
	}
	c.JSON(http.StatusOK, menu)
}

// RemoveDish takes a dish off the menu and returns the updated menu.
func (h *MenuHandler) RemoveDish(c *gin.Context) {
	id, ok := idParam(c, "id", "menu")
	if !ok {
		return
	}
	dishID, ok := idParam(c, "dishId", "dish")
	if !ok {
		return
	}

	menu, err := h.menuService.RemoveDish(c.Request.Context(), id, dishID)
	if err != nil {
		respondServiceError(c, err, "Failed to remove dish from menu.")
		return
	}
	c.JSON(http.StatusOK, menu)
}
