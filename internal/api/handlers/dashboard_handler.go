// internal/api/handlers/dashboard_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gustirama/shelfsense/internal/service"
	"github.com/rs/zerolog/log"
)

type DashboardHandler struct {
	service *service.DashboardService
}

func NewDashboardHandler(service *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) GetKpis(c *gin.Context) {
	kpis, err := h.service.GetKpis(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to load kpis")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load kpis"})
		return
	}

	c.JSON(http.StatusOK, kpis)
}

func (h *DashboardHandler) GetData(c *gin.Context) {
	data, err := h.service.GetData(c.Request.Context(), time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("failed to load dashboard data")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard data"})
		return
	}

	c.JSON(http.StatusOK, data)
}
