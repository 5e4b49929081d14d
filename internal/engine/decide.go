// internal/engine/decide.go
package engine

import (
	"math"
	"time"

	"github.com/gustirama/shelfsense/internal/domain"
)

const (
	// salesWindowDays is the trailing window of history fed to the model.
	salesWindowDays = 3

	// overstockFactor keeps a 20% buffer so normal forecast noise is not
	// flagged as overstock.
	overstockFactor = 1.2

	safetyBufferRate = 0.10

	// Markdown discount components: entry baseline, urgency ceiling, and
	// the log-dampened overstock contribution.
	baseDiscount   = 0.15
	urgencyWeight  = 0.50
	overstockWeight = 0.25

	// costFloorFactor is the floor when expiry is not imminent; never sell
	// below cost unless the batch expires within a day.
	costFloorFactor = 1.05
	// terminalFactor accepts a bounded loss when expiry is imminent rather
	// than a total write-off.
	terminalFactor = 0.90

	rainThresholdMM = 5.0
)

type stockPosition int

const (
	positionBalanced stockPosition = iota
	positionUnderstock
	positionOverstock
)

// classifyStock orders the checks so the outcome is mutually exclusive:
// understock wins before the buffered overstock test.
func classifyStock(currentStock int, predictedUnits float64) stockPosition {
	switch {
	case float64(currentStock) < predictedUnits:
		return positionUnderstock
	case float64(currentStock) > predictedUnits*overstockFactor:
		return positionOverstock
	default:
		return positionBalanced
	}
}

func safetyBuffer(predictedUnits float64) int {
	return int(math.Ceil(predictedUnits * safetyBufferRate))
}

func reorderQty(currentStock int, predictedUnits float64) int {
	return roundUnits(predictedUnits) - currentStock + safetyBuffer(predictedUnits)
}

func roundUnits(predictedUnits float64) int {
	return int(math.Round(predictedUnits))
}

// daysToExpiry counts whole days from the run day to expiry, rounding up.
func daysToExpiry(expiry, day time.Time) int {
	return int(math.Ceil(expiry.Sub(day).Hours() / 24))
}

// markdownTriggerDays is the midpoint of the shelf life; markdown is only
// considered once a batch is in the back half.
func markdownTriggerDays(shelfLifeDays int) int {
	return shelfLifeDays / 2
}

// urgencyFactor is 1.0 with one day left and approaches 0 at the trigger
// boundary.
func urgencyFactor(daysToExpiry, triggerDays int) float64 {
	if triggerDays < 1 {
		return 1.0
	}
	return 1.0 - float64(daysToExpiry-1)/float64(triggerDays)
}

// overstockRatio measures excess severity; the +1 avoids division by zero.
func overstockRatio(currentStock int, predictedUnits float64) float64 {
	return float64(currentStock) / (predictedUnits + 1)
}

// markdownPrice computes the dynamic markdown for a perishable overstock
// batch, applying the cost floor and the terminal rule in that order so
// imminent expiry always wins.
func markdownPrice(product domain.Product, currentStock int, predictedUnits float64, dte int) (newPrice, discount float64) {
	urgency := urgencyFactor(dte, markdownTriggerDays(product.ShelfLifeDays))
	ratio := overstockRatio(currentStock, predictedUnits)

	discount = baseDiscount + urgencyWeight*urgency + overstockWeight*math.Log1p(ratio-1)
	newPrice = product.SellingPrice * (1 - discount)

	if newPrice < product.CostPrice && dte > 1 {
		newPrice = product.CostPrice * costFloorFactor
	}
	if dte <= 1 {
		newPrice = product.CostPrice * terminalFactor
	}

	return round2(newPrice), discount
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// decision is the outcome of one product's evaluation. A nil decision means
// no alert: balanced stock, durable overstock, or no dated batch.
type decision struct {
	Type         domain.AlertType
	Action       domain.AlertAction
	Details      domain.AlertDetails
	Reasons      []string
	ApplyPrice   bool
	NewPrice     float64
	ExpiryCutoff time.Time
}

// decideProduct runs the full per-product decision tree for one run day.
// batches must be the product's in-stock batches from the run snapshot.
func decideProduct(product domain.Product, batches []domain.InventoryBatch, currentStock int, predictedUnits float64, day time.Time, weather *domain.WeatherObservation) *decision {
	forecast := roundUnits(predictedUnits)

	switch classifyStock(currentStock, predictedUnits) {
	case positionUnderstock:
		return &decision{
			Type:   domain.AlertTypeUnderstock,
			Action: domain.ActionReorder,
			Details: domain.ReorderDetails{
				CurrentStock:     currentStock,
				ForecastedDemand: forecast,
				RecommendedQty:   reorderQty(currentStock, predictedUnits),
			},
			Reasons: []string{reorderReason(forecast, currentStock)},
		}

	case positionOverstock:
		// Overstock of durable goods is not actionable here.
		if !product.IsPerishable {
			return nil
		}

		reference := earliestExpiryBatch(batches)
		if reference == nil {
			return nil
		}

		dte := daysToExpiry(*reference.ExpiryDate, day)
		if dte > markdownTriggerDays(product.ShelfLifeDays) {
			return &decision{
				Type:   domain.AlertTypeOverstock,
				Action: domain.ActionHold,
				Details: domain.HoldDetails{
					CurrentStock:     currentStock,
					ForecastedDemand: forecast,
					DaysToExpiry:     dte,
				},
				Reasons: []string{
					highStockReason(currentStock, forecast),
					notNearExpiryReason(dte),
				},
			}
		}

		newPrice, _ := markdownPrice(product, currentStock, predictedUnits, dte)

		reasons := []string{
			highStockReason(currentStock, forecast),
			nearExpiryReason(dte),
		}
		if weather != nil && weather.PrecipitationMM > rainThresholdMM {
			reasons = append(reasons, rainyWeatherReason)
		}

		return &decision{
			Type:   domain.AlertTypeOverstock,
			Action: domain.ActionReducePrice,
			Details: domain.MarkdownDetails{
				CurrentStock:     currentStock,
				ForecastedDemand: forecast,
				DaysToExpiry:     dte,
				NewPrice:         newPrice,
				OriginalPrice:    product.SellingPrice,
			},
			Reasons:      reasons,
			ApplyPrice:   true,
			NewPrice:     newPrice,
			ExpiryCutoff: *reference.ExpiryDate,
		}

	default:
		return nil
	}
}

// earliestExpiryBatch picks the FIFO reference batch: the dated batch closest
// to expiry. Undated batches cannot anchor a markdown.
func earliestExpiryBatch(batches []domain.InventoryBatch) *domain.InventoryBatch {
	var earliest *domain.InventoryBatch
	for i := range batches {
		batch := &batches[i]
		if batch.Quantity <= 0 || batch.ExpiryDate == nil {
			continue
		}
		if earliest == nil || batch.ExpiryDate.Before(*earliest.ExpiryDate) {
			earliest = batch
		}
	}
	return earliest
}
