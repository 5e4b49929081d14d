// internal/engine/explain.go
package engine

import "fmt"

// Reason strings reference the specific thresholds a decision crossed; they
// are rendered verbatim in the alert feed.

const rainyWeatherReason = "Low Demand Expected (Rainy Weather)"

func reorderReason(forecast, currentStock int) string {
	return fmt.Sprintf("Forecast Demand (%d) > Current Stock (%d)", forecast, currentStock)
}

func highStockReason(currentStock, forecast int) string {
	return fmt.Sprintf("High Stock Level (%d in stock vs %d forecast)", currentStock, forecast)
}

func notNearExpiryReason(days int) string {
	return fmt.Sprintf("Not Near Expiry (%d days)", days)
}

func nearExpiryReason(days int) string {
	return fmt.Sprintf("Near Expiry (%d days left)", days)
}
