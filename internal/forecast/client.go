// internal/forecast/client.go
package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gustirama/shelfsense/internal/config"
	"github.com/gustirama/shelfsense/internal/domain"
)

// Request is the payload sent to the forecasting service.
type Request struct {
	SalesHistory    []domain.SaleRecord       `json:"sales_history"`
	WeatherForecast domain.WeatherObservation `json:"weather_forecast"`
	Products        []domain.Product          `json:"products"`
}

// Prediction is one predicted-units value per product. The service is free to
// forecast a subset of the catalog.
type Prediction struct {
	ProductID      string  `json:"product_id"`
	PredictedUnits float64 `json:"predicted_units"`
}

// Client calls the external demand-forecasting service over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(cfg config.ForecastConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Forecast posts the aggregated inputs and decodes the prediction list. Any
// transport failure, non-2xx status, or malformed body is fatal for the run.
func (c *Client) Forecast(ctx context.Context, req Request) ([]Prediction, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode forecast request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("forecast service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("forecast service returned %d: %s", resp.StatusCode, string(payload))
	}

	var predictions []Prediction
	if err := json.NewDecoder(resp.Body).Decode(&predictions); err != nil {
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}

	return predictions, nil
}
