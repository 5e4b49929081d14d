// internal/api/handlers/decision_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gustirama/shelfsense/internal/domain"
	"github.com/gustirama/shelfsense/internal/engine"
	"github.com/gustirama/shelfsense/internal/service"
	"github.com/rs/zerolog/log"
)

type DecisionHandler struct {
	service *service.DecisionService
}

func NewDecisionHandler(service *service.DecisionService) *DecisionHandler {
	return &DecisionHandler{service: service}
}

type runRequest struct {
	Date string `json:"date"` // optional simulated day, YYYY-MM-DD
}

// RunDaily triggers one engine run. The simulated date defaults to today.
func (h *DecisionHandler) RunDaily(c *gin.Context) {
	var req runRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	day := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	summary, err := h.service.RunDaily(c.Request.Context(), day)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrMissingWeather):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, engine.ErrForecastService):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			log.Error().Err(err).Msg("daily decision run failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "daily decision run failed"})
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetAlerts lists alerts newest-first, filtered by status and/or date.
func (h *DecisionHandler) GetAlerts(c *gin.Context) {
	filter := domain.AlertFilter{}

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filter.Status = domain.AlertStatus(status)
	}

	if dateStr := strings.TrimSpace(c.Query("date")); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day := domain.Midnight(parsed)
		filter.Date = &day
	}

	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	alerts, err := h.service.GetAlerts(c.Request.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list alerts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}

	c.JSON(http.StatusOK, alerts)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateAlertStatus moves an alert to executed or ignored.
func (h *DecisionHandler) UpdateAlertStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	if err := h.service.UpdateAlertStatus(c.Request.Context(), id, domain.AlertStatus(req.Status)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}
