// internal/domain/details.go
package domain

import (
	"encoding/json"
	"fmt"
)

// AlertDetails is the action-specific payload of an alert. Each action carries
// its own record type so the required fields of every branch are statically
// guaranteed.
type AlertDetails interface {
	alertDetails()
}

// ReorderDetails backs the understock/reorder action.
type ReorderDetails struct {
	CurrentStock     int `json:"current_stock"`
	ForecastedDemand int `json:"forecasted_demand"`
	RecommendedQty   int `json:"recommended_qty"`
}

// HoldDetails backs the overstock/hold action.
type HoldDetails struct {
	CurrentStock     int `json:"current_stock"`
	ForecastedDemand int `json:"forecasted_demand"`
	DaysToExpiry     int `json:"days_to_expiry"`
}

// MarkdownDetails backs the overstock/reduce-price action.
type MarkdownDetails struct {
	CurrentStock     int     `json:"current_stock"`
	ForecastedDemand int     `json:"forecasted_demand"`
	DaysToExpiry     int     `json:"days_to_expiry"`
	NewPrice         float64 `json:"new_price"`
	OriginalPrice    float64 `json:"original_price"`
}

func (ReorderDetails) alertDetails()  {}
func (HoldDetails) alertDetails()     {}
func (MarkdownDetails) alertDetails() {}

// DecodeAlertDetails picks the detail type matching the action and unmarshals
// the stored payload into it.
func DecodeAlertDetails(action AlertAction, raw []byte) (AlertDetails, error) {
	switch action {
	case ActionReorder:
		var d ReorderDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode reorder details: %w", err)
		}
		return d, nil
	case ActionHold:
		var d HoldDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode hold details: %w", err)
		}
		return d, nil
	case ActionReducePrice:
		var d MarkdownDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode markdown details: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown alert action %q", action)
	}
}
