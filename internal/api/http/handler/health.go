package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/contractchecker-server/internal/logger"
	"github.com/dtroode/contractchecker-server/internal/model"
)

const readinessTimeout = 2 * time.Second

// Health serves liveness and readiness probes.
type Health struct {
	database model.Pinger
	logger   *logger.Logger
	now      func() time.Time
}

// NewHealth creates a new Health handler.
func NewHealth(database model.Pinger, logger *logger.Logger) *Health {
	return &Health{
		database: database,
		logger:   logger,
		now:      time.Now,
	}
}

// Live reports that the process is serving requests.
func (h *Health) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"status":     "up",
		"checked_at": h.now().UTC(),
	})
}

// Ready reports whether the credential store is reachable.
func (h *Health) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.database.Ping(ctx); err != nil {
		h.logger.Warn("HTTP health handler: database ping failed",
			"error", err.Error())
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success":    false,
			"status":     "down",
			"checked_at": h.now().UTC(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"status":     "up",
		"checked_at": h.now().UTC(),
	})
}
