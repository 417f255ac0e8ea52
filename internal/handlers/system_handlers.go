package handlers

import (
	"context"
	"net/http"
	"time"

	"meal_care_backend/internal/policy"
	"meal_care_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SystemHandler serves health and policy introspection.
type SystemHandler struct {
	db     Pinger
	policy *policy.Policy
}

func NewSystemHandler(db Pinger, pol *policy.Policy) *SystemHandler {
	return &SystemHandler{db: db, policy: pol}
}

func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health reports 503 when the database does not answer within two seconds.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		utils.LogError(err, "Health: database ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}

// GetPermissions returns the role → permission policy in effect.
func (h *SystemHandler) GetPermissions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"roles": h.policy.Roles()})
}
