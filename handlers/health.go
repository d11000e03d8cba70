package handlers

import (
	"net/http"
	"time"

	"clinicbook/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Service string
}

// Health answers liveness with the last dependency snapshot taken by the cron job.
func (h *HealthHandler) Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   h.Service,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    status.Checks,
	})
}
