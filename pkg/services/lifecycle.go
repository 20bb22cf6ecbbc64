package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/freshtrack-io/ft-compliance-engine/pkg/models"
)

// AlertLifecycleService is the only mutation surface over persisted alerts.
// It drives the state machine active -> acknowledged -> resolved, with
// active -> resolved allowed directly. Terminal transitions are idempotent
// from the caller's perspective so retry-safe clients get a no-op success.
type AlertLifecycleService struct {
	store AlertStore
	now   func() time.Time
}

// NewAlertLifecycleService creates a new lifecycle service
func NewAlertLifecycleService(store AlertStore) *AlertLifecycleService {
	return &AlertLifecycleService{
		store: store,
		now:   time.Now,
	}
}

// Acknowledge moves a persisted alert to acknowledged with the operator's
// notes. Computed alert ids are rejected: acknowledging a live condition is
// a contradiction, the fix is to address the condition itself.
func (s *AlertLifecycleService) Acknowledge(ctx context.Context, alertID, notes string) (*models.PersistedAlert, error) {
	if err := requirePersistedID(alertID, "acknowledge"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(notes) == "" {
		return nil, &ValidationError{Reason: "acknowledgment notes are required"}
	}

	updated, err := s.store.AcknowledgeAlert(ctx, alertID, notes, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to acknowledge alert %s: %w", alertID, err)
	}
	if updated != nil {
		logrus.Infof("Alert %s acknowledged", alertID)
		return updated, nil
	}

	// The conditional write matched no row: either the alert is gone or it
	// already left the acknowledgeable states
	existing, err := s.store.GetAlert(ctx, alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert %s: %w", alertID, err)
	}
	if existing == nil {
		return nil, ErrAlertNotFound
	}

	switch existing.Status {
	case models.AlertStatusAcknowledged:
		// Retried acknowledge, nothing to do
		return existing, nil
	case models.AlertStatusResolved:
		return nil, &ValidationError{Reason: "alert is already resolved"}
	default:
		return nil, fmt.Errorf("alert %s could not be acknowledged from status %s", alertID, existing.Status)
	}
}

// Resolve closes a persisted alert with a corrective action description.
// Root cause is optional. Resolving an already-resolved alert is a no-op
// success.
func (s *AlertLifecycleService) Resolve(ctx context.Context, alertID, correctiveAction, rootCause string) (*models.PersistedAlert, error) {
	if err := requirePersistedID(alertID, "resolve"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(correctiveAction) == "" {
		return nil, &ValidationError{Reason: "a corrective action description is required"}
	}

	updated, err := s.store.ResolveAlert(ctx, alertID, correctiveAction, rootCause, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve alert %s: %w", alertID, err)
	}
	if updated != nil {
		logrus.Infof("Alert %s resolved", alertID)
		return updated, nil
	}

	existing, err := s.store.GetAlert(ctx, alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert %s: %w", alertID, err)
	}
	if existing == nil {
		return nil, ErrAlertNotFound
	}
	if existing.Status == models.AlertStatusResolved {
		return existing, nil
	}
	return nil, fmt.Errorf("alert %s could not be resolved from status %s", alertID, existing.Status)
}

// requirePersistedID distinguishes persisted alert ids (UUIDs) from computed
// alert ids, which have the derived "<unitID>:<TYPE>" shape
func requirePersistedID(alertID, operation string) error {
	if _, err := uuid.Parse(alertID); err != nil {
		return &ValidationError{
			Reason: fmt.Sprintf("cannot %s a live condition: computed alerts have no persisted record to %s", operation, operation),
		}
	}
	return nil
}
