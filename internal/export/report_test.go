package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gustirama/shelfsense/internal/domain"
)

func TestWriteRunReport(t *testing.T) {
	dir := t.TempDir()
	targetDay := time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)

	alerts := []domain.Alert{
		{
			ProductID: "PROD-MILK",
			Date:      targetDay,
			Type:      domain.AlertTypeUnderstock,
			Action:    domain.ActionReorder,
			Status:    domain.StatusPending,
			Details:   domain.ReorderDetails{CurrentStock: 60, ForecastedDemand: 100, RecommendedQty: 50},
			Reasons:   []string{"Forecast Demand (100) > Current Stock (60)"},
		},
		{
			ProductID: "PROD-YOG",
			Date:      targetDay,
			Type:      domain.AlertTypeOverstock,
			Action:    domain.ActionReducePrice,
			Status:    domain.StatusPending,
			Details:   domain.MarkdownDetails{CurrentStock: 200, ForecastedDemand: 100, DaysToExpiry: 2, NewPrice: 21, OriginalPrice: 35},
			Reasons:   []string{"High Stock Level (200 in stock vs 100 forecast)", "Near Expiry (2 days left)"},
		},
	}

	path, err := WriteRunReport(dir, targetDay, alerts)
	if err != nil {
		t.Fatalf("WriteRunReport failed: %v", err)
	}
	if filepath.Base(path) != "alerts_2025-07-11.csv" {
		t.Errorf("report file = %s, want alerts_2025-07-11.csv", filepath.Base(path))
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2 alerts", len(rows))
	}

	if rows[0][0] != "Product ID" || rows[0][6] != "Details" {
		t.Errorf("header = %v", rows[0])
	}

	milk := rows[1]
	if milk[0] != "PROD-MILK" || milk[1] != "2025-07-11" || milk[3] != "reorder" {
		t.Errorf("milk row = %v", milk)
	}
	if !strings.Contains(milk[6], `"recommended_qty":50`) {
		t.Errorf("milk details = %s, want encoded recommended quantity", milk[6])
	}

	yog := rows[2]
	if yog[5] != "High Stock Level (200 in stock vs 100 forecast); Near Expiry (2 days left)" {
		t.Errorf("yogurt reasons = %s", yog[5])
	}
	if !strings.Contains(yog[6], `"new_price":21`) {
		t.Errorf("yogurt details = %s, want encoded new price", yog[6])
	}
}

func TestWriteRunReportEmptyRun(t *testing.T) {
	dir := t.TempDir()
	targetDay := time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)

	path, err := WriteRunReport(dir, targetDay, nil)
	if err != nil {
		t.Fatalf("WriteRunReport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "Product ID,Date,Type,Action,Status,Reasons,Details" {
		t.Errorf("empty report = %q, want header only", got)
	}
}
