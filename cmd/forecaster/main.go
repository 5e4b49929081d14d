// cmd/forecaster/main.go
//
// Stand-in demand forecasting service. Exposes the same /forecast contract
// the decision engine expects from the trained model, backed by the naive
// baseline forecaster. Useful for local development and demos.
package main

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/gustirama/shelfsense/internal/forecast"
	"github.com/gustirama/shelfsense/pkg/logger"
)

func main() {
	port := os.Getenv("FORECASTER_PORT")
	if port == "" {
		port = "5000"
	}

	forecaster := forecast.NewNaiveForecaster()

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	router.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		var req forecast.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if len(req.Products) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "products are required"})
			return
		}

		predictions := forecaster.Predict(req)
		logger.Log.Info().
			Int("products", len(req.Products)).
			Int("predictions", len(predictions)).
			Str("model", forecaster.ModelVersion()).
			Msg("forecast served")
		writeJSON(w, http.StatusOK, predictions)
	}).Methods(http.MethodPost)

	logger.Log.Info().Str("port", port).Msg("Starting forecaster")
	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.Log.Fatal().Err(err).Msg("Forecaster failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
