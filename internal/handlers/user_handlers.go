package handlers

import (
	"net/http"

	"meal_care_backend/internal/middleware"
	"meal_care_backend/internal/models"
	"meal_care_backend/internal/services"
	"meal_care_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler holds the user-management service.
type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(s services.UserService) *UserHandler {
	return &UserHandler{userService: s}
}

// actor reads the caller set by AuthMiddleware.
func actor(c *gin.Context) (services.Actor, bool) {
	userID, ok := c.Get(middleware.ContextUserID)
	id, isInt := userID.(int64)
	if !ok || !isInt {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user ID in context"))
		return services.Actor{}, false
	}
	return services.Actor{UserID: id, Role: c.GetString(middleware.ContextUserRole)}, true
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	var filters models.UserFilters
	if !bindQuery(c, &filters, "GetUsers") {
		return
	}

	users, total, err := h.userService.GetUsers(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch users.")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respondList(c, users, total, filters.Page, filters.PageSize)
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := idParam(c, "id", "user")
	if !ok {
		return
	}

	detail, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch user.")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateUser changes an account. Permission rules are enforced by the service.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "user")
	if !ok {
		return
	}
	var req services.UpdateUserRequest
	if !bindJSON(c, &req, "UpdateUser") {
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), caller, id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update user.")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "user")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), caller, id); err != nil {
		respondServiceError(c, err, "Failed to delete user.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
