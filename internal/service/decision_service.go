// internal/service/decision_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gustirama/shelfsense/internal/cache"
	"github.com/gustirama/shelfsense/internal/domain"
	"github.com/gustirama/shelfsense/internal/engine"
	"github.com/gustirama/shelfsense/internal/export"
	"github.com/gustirama/shelfsense/internal/repository"
	"github.com/rs/zerolog/log"
)

// DecisionService fronts the daily decision engine and the alert feed.
type DecisionService struct {
	engine    *engine.Engine
	alerts    repository.AlertRepository
	cache     cache.DashboardCache
	exportDir string
	storage   export.ObjectStorage // nil when upload is disabled
}

func NewDecisionService(eng *engine.Engine, alerts repository.AlertRepository, cacheImpl cache.DashboardCache, exportDir string, storage export.ObjectStorage) *DecisionService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &DecisionService{
		engine:    eng,
		alerts:    alerts,
		cache:     cacheImpl,
		exportDir: exportDir,
		storage:   storage,
	}
}

// RunDaily executes one engine run and, on success, refreshes caches and
// exports the run report. Report problems are logged, not fatal: the alerts
// are already durably recorded.
func (s *DecisionService) RunDaily(ctx context.Context, targetDay time.Time) (*domain.RunSummary, error) {
	summary, err := s.engine.Run(ctx, targetDay)
	if err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateKpis(ctx); err != nil {
		log.Warn().Err(err).Msg("kpi cache invalidation failed")
	}

	s.exportRunReport(ctx, summary)

	return summary, nil
}

func (s *DecisionService) exportRunReport(ctx context.Context, summary *domain.RunSummary) {
	if s.exportDir == "" {
		return
	}

	alerts, err := s.alerts.List(ctx, domain.AlertFilter{
		Status: domain.StatusPending,
		Date:   &summary.TargetDay,
	})
	if err != nil {
		log.Warn().Err(err).Msg("run report: failed to load alerts")
		return
	}

	path, err := export.WriteRunReport(s.exportDir, summary.TargetDay, alerts)
	if err != nil {
		log.Warn().Err(err).Msg("run report: write failed")
		return
	}
	log.Info().Str("path", path).Msg("run report written")

	if s.storage == nil {
		return
	}

	key := fmt.Sprintf("reports/alerts_%s.csv", summary.TargetDay.Format("2006-01-02"))
	if err := s.storage.UploadFile(ctx, key, path); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("run report: upload failed")
		return
	}
	log.Info().Str("key", key).Msg("run report uploaded")
}

// GetAlerts returns alerts newest-first, optionally filtered.
func (s *DecisionService) GetAlerts(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error) {
	return s.alerts.List(ctx, filter)
}

// UpdateAlertStatus transitions a pending alert to executed or ignored.
func (s *DecisionService) UpdateAlertStatus(ctx context.Context, id int64, status domain.AlertStatus) error {
	if status != domain.StatusExecuted && status != domain.StatusIgnored {
		return fmt.Errorf("invalid alert status %q", status)
	}
	return s.alerts.UpdateStatus(ctx, id, status)
}
