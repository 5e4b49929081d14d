// internal/api/handlers/simulation_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gustirama/shelfsense/internal/simulation"
	"github.com/rs/zerolog/log"
)

type SimulationHandler struct {
	service *simulation.Service
}

func NewSimulationHandler(service *simulation.Service) *SimulationHandler {
	return &SimulationHandler{service: service}
}

type supplyRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

func (h *SimulationHandler) Supply(c *gin.Context) {
	var req supplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id and a positive quantity are required"})
		return
	}

	batch, err := h.service.Supply(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, simulation.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("provider supply failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "provider supply failed"})
		return
	}

	c.JSON(http.StatusCreated, batch)
}

type dateRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
}

func (h *SimulationHandler) SimulateSales(c *gin.Context) {
	day, ok := h.parseDate(c)
	if !ok {
		return
	}

	result, err := h.service.SimulateSales(c.Request.Context(), day)
	if err != nil {
		log.Error().Err(err).Msg("sales simulation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sales simulation failed"})
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *SimulationHandler) FetchWeather(c *gin.Context) {
	day, ok := h.parseDate(c)
	if !ok {
		return
	}

	obs, err := h.service.GenerateWeather(c.Request.Context(), day)
	if err != nil {
		log.Error().Err(err).Msg("weather generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "weather generation failed"})
		return
	}

	c.JSON(http.StatusCreated, obs)
}

func (h *SimulationHandler) parseDate(c *gin.Context) (time.Time, bool) {
	var req dateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return time.Time{}, false
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return time.Time{}, false
	}

	return day, true
}
