package services

import (
	"context"
	"time"

	"github.com/freshtrack-io/ft-compliance-engine/pkg/models"
)

// AlertStore is the storage collaborator the engine reads snapshots from and
// writes lifecycle transitions to. The engine performs no other I/O.
type AlertStore interface {
	// GetUnits returns the unit snapshots for an organization, optionally
	// narrowed to one site (empty siteID means all sites).
	GetUnits(ctx context.Context, orgID, siteID string) ([]models.Unit, error)

	// GetRuleOverrides returns every alert-rule override row configured for
	// the organization, grouped by scope.
	GetRuleOverrides(ctx context.Context, orgID string) (*models.RuleOverrideSet, error)

	// GetOpenAlerts returns persisted alerts that are not yet resolved
	// (active, acknowledged, or escalated) for the scope.
	GetOpenAlerts(ctx context.Context, orgID, siteID string) ([]models.PersistedAlert, error)

	// GetAlert fetches one persisted alert; (nil, nil) when absent.
	GetAlert(ctx context.Context, alertID string) (*models.PersistedAlert, error)

	// AcknowledgeAlert atomically moves an alert to acknowledged, recording
	// the notes, but only from a state that may still be acknowledged
	// (active or escalated). Returns (nil, nil) when no row transitioned, so
	// a stale acknowledge can never revert a resolved alert.
	AcknowledgeAlert(ctx context.Context, alertID, notes string, now time.Time) (*models.PersistedAlert, error)

	// ResolveAlert atomically moves an alert to resolved with the corrective
	// action and optional root cause. Returns (nil, nil) when no row
	// transitioned.
	ResolveAlert(ctx context.Context, alertID, correctiveAction, rootCause string, now time.Time) (*models.PersistedAlert, error)
}
