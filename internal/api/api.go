// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gustirama/shelfsense/internal/api/handlers"
	"github.com/gustirama/shelfsense/internal/api/middleware"
	"github.com/gustirama/shelfsense/internal/service"
	"github.com/gustirama/shelfsense/internal/simulation"
)

type Services struct {
	DecisionService   *service.DecisionService
	DashboardService  *service.DashboardService
	SimulationService *simulation.Service
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Logger(),
		middleware.Recovery(),
	)

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.DecisionService != nil {
			decisionHandler := handlers.NewDecisionHandler(services.DecisionService)
			decisionGroup := apiGroup.Group("/decision")
			{
				decisionGroup.POST("/run", decisionHandler.RunDaily)
				decisionGroup.GET("/alerts", decisionHandler.GetAlerts)
				decisionGroup.PATCH("/alerts/:id", decisionHandler.UpdateAlertStatus)
			}
		}

		if services.DashboardService != nil {
			dashboardHandler := handlers.NewDashboardHandler(services.DashboardService)
			dashboardGroup := apiGroup.Group("/dashboard")
			{
				dashboardGroup.GET("/kpis", dashboardHandler.GetKpis)
				dashboardGroup.GET("/data", dashboardHandler.GetData)
			}
		}

		if services.SimulationService != nil {
			simulationHandler := handlers.NewSimulationHandler(services.SimulationService)
			simGroup := apiGroup.Group("/sim")
			{
				simGroup.POST("/supply", simulationHandler.Supply)
				simGroup.POST("/sales", simulationHandler.SimulateSales)
				simGroup.POST("/weather", simulationHandler.FetchWeather)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
