package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/ultra_import/internal/utils"
)

var startTime = time.Now()

// Pinger checks a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	ultra Pinger
	redis Pinger
}

// NewHealthHandler creates a new HealthHandler. redis may be nil.
func NewHealthHandler(ultra Pinger, redis Pinger) *HealthHandler {
	return &HealthHandler{ultra: ultra, redis: redis}
}

// GetHealth responds with service, Ultra and Redis status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ultraStatus := "connected"
	if err := h.ultra.Ping(ctx); err != nil {
		ultraStatus = "disconnected"
	}

	redisStatus := "disabled"
	if h.redis != nil {
		redisStatus = "connected"
		if err := h.redis.Ping(ctx); err != nil {
			redisStatus = "disconnected"
		}
	}

	utils.Success(c, 200, "Service is healthy", gin.H{
		"status":  "healthy",
		"version": "1.0.0",
		"uptime":  int(time.Since(startTime).Seconds()),
		"ultra": gin.H{
			"status": ultraStatus,
		},
		"redis": gin.H{
			"status": redisStatus,
		},
	})
}
