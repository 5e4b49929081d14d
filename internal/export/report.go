// internal/export/report.go
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gustirama/shelfsense/internal/domain"
)

// WriteRunReport writes the run's alert set as a CSV audit file and returns
// its path.
func WriteRunReport(dir string, targetDay time.Time, alerts []domain.Alert) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("alerts_%s.csv", targetDay.Format("2006-01-02")))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Product ID", "Date", "Type", "Action", "Status", "Reasons", "Details"}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, alert := range alerts {
		details, err := json.Marshal(alert.Details)
		if err != nil {
			return "", fmt.Errorf("failed to encode details for %s: %w", alert.ProductID, err)
		}

		record := []string{
			alert.ProductID,
			alert.Date.Format("2006-01-02"),
			string(alert.Type),
			string(alert.Action),
			string(alert.Status),
			strings.Join(alert.Reasons, "; "),
			string(details),
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush report: %w", err)
	}

	return path, nil
}
