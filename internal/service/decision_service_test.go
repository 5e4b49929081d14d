package service

import (
	"context"
	"testing"

	"github.com/gustirama/shelfsense/internal/domain"
)

type stubAlertRepo struct {
	updatedID     int64
	updatedStatus domain.AlertStatus
}

func (r *stubAlertRepo) IgnoreAllPending(ctx context.Context) (int64, error) { return 0, nil }

func (r *stubAlertRepo) InsertMany(ctx context.Context, alerts []domain.Alert) error { return nil }

func (r *stubAlertRepo) List(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error) {
	return nil, nil
}

func (r *stubAlertRepo) UpdateStatus(ctx context.Context, id int64, status domain.AlertStatus) error {
	r.updatedID = id
	r.updatedStatus = status
	return nil
}

func TestUpdateAlertStatusValidation(t *testing.T) {
	repo := &stubAlertRepo{}
	svc := NewDecisionService(nil, repo, nil, "", nil)

	if err := svc.UpdateAlertStatus(context.Background(), 7, domain.StatusExecuted); err != nil {
		t.Fatalf("executed transition rejected: %v", err)
	}
	if repo.updatedID != 7 || repo.updatedStatus != domain.StatusExecuted {
		t.Errorf("update recorded %d/%s, want 7/executed", repo.updatedID, repo.updatedStatus)
	}

	if err := svc.UpdateAlertStatus(context.Background(), 8, domain.StatusIgnored); err != nil {
		t.Fatalf("ignored transition rejected: %v", err)
	}

	if err := svc.UpdateAlertStatus(context.Background(), 9, domain.StatusPending); err == nil {
		t.Error("transition back to pending must be rejected")
	}
	if err := svc.UpdateAlertStatus(context.Background(), 9, "archived"); err == nil {
		t.Error("unknown status must be rejected")
	}
	if repo.updatedID == 9 {
		t.Error("rejected transitions must not reach the repository")
	}
}
