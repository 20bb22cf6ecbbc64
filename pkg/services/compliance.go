package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/freshtrack-io/ft-compliance-engine/pkg/engine"
	"github.com/freshtrack-io/ft-compliance-engine/pkg/models"
)

// ComplianceService runs the evaluation pipeline on demand: fetch unit
// snapshots, rule overrides, and open persisted alerts, then resolve ->
// evaluate -> synthesize -> reconcile. The pipeline itself is pure; this
// service owns the I/O around it. Every request recomputes from scratch, so
// concurrent evaluations for different organizations share no state.
type ComplianceService struct {
	store AlertStore
	now   func() time.Time
}

// NewComplianceService creates a new compliance service
func NewComplianceService(store AlertStore) *ComplianceService {
	return &ComplianceService{
		store: store,
		now:   time.Now,
	}
}

// GetAlertBoard returns the reconciled alert list and summary counts for an
// organization, optionally narrowed to one site.
func (s *ComplianceService) GetAlertBoard(ctx context.Context, orgID, siteID string) (*models.AlertBoard, error) {
	synthesis, err := s.evaluate(ctx, orgID, siteID)
	if err != nil {
		return nil, err
	}

	persisted, err := s.store.GetOpenAlerts(ctx, orgID, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted alerts for organization %s: %w", orgID, err)
	}

	unified := engine.Reconcile(synthesis.Alerts, persisted)

	summary := models.AlertSummary{
		TotalCount: len(unified),
		UnitsOK:    synthesis.UnitsOK,
	}
	for _, a := range unified {
		switch a.Severity {
		case models.AlertSeverityCritical:
			summary.CriticalCount++
		case models.AlertSeverityWarning:
			summary.WarningCount++
		}
	}

	return &models.AlertBoard{Alerts: unified, Summary: summary}, nil
}

// GetAlertSummary returns just the headline counts for the scope
func (s *ComplianceService) GetAlertSummary(ctx context.Context, orgID, siteID string) (*models.AlertSummary, error) {
	board, err := s.GetAlertBoard(ctx, orgID, siteID)
	if err != nil {
		return nil, err
	}
	return &board.Summary, nil
}

// GetUnitStatuses returns every unit in scope with its computed status
func (s *ComplianceService) GetUnitStatuses(ctx context.Context, orgID, siteID string) ([]models.UnitStatusView, error) {
	synthesis, err := s.evaluate(ctx, orgID, siteID)
	if err != nil {
		return nil, err
	}
	return synthesis.Statuses, nil
}

// evaluate fetches the inputs and runs one synthesis pass. A failed override
// fetch degrades to defaults rather than hiding alerts for the whole
// organization; only a failed unit fetch aborts.
func (s *ComplianceService) evaluate(ctx context.Context, orgID, siteID string) (engine.SynthesisResult, error) {
	units, err := s.store.GetUnits(ctx, orgID, siteID)
	if err != nil {
		return engine.SynthesisResult{}, fmt.Errorf("failed to load units for organization %s: %w", orgID, err)
	}

	overrides, err := s.store.GetRuleOverrides(ctx, orgID)
	if err != nil {
		logrus.Warnf("Failed to load rule overrides for organization %s, using defaults: %v", orgID, err)
		overrides = nil
	}

	inputs := make([]engine.SynthesisInput, 0, len(units))
	for _, unit := range units {
		inputs = append(inputs, engine.SynthesisInput{
			Unit:  unit,
			Rules: engine.RulesForUnit(unit, overrides),
		})
	}

	return engine.Synthesize(inputs, s.now()), nil
}
