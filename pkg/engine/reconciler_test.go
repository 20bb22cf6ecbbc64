package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshtrack-io/ft-compliance-engine/pkg/models"
)

func computedOffline(unitID string, severity models.AlertSeverity, triggeredAt time.Time) models.ComputedAlert {
	return models.ComputedAlert{
		ID:          models.DedupKey(unitID, string(models.AlertTypeOffline)),
		Type:        models.AlertTypeOffline,
		Severity:    severity,
		UnitID:      unitID,
		UnitName:    "Unit " + unitID,
		TriggeredAt: triggeredAt,
	}
}

func persistedAlert(id, unitID, alertType string, status models.AlertStatus, triggeredAt time.Time) models.PersistedAlert {
	return models.PersistedAlert{
		ID:          id,
		UnitID:      unitID,
		UnitName:    "Unit " + unitID,
		AlertType:   alertType,
		Severity:    models.AlertSeverityCritical,
		Status:      status,
		TriggeredAt: triggeredAt,
	}
}

func TestReconcileActivePersistedSuppressedByLiveComputed(t *testing.T) {
	computed := []models.ComputedAlert{computedOffline("unit-x", models.AlertSeverityCritical, evalNow)}
	persisted := []models.PersistedAlert{
		persistedAlert("a1", "unit-x", "offline", models.AlertStatusActive, evalNow.Add(-1*time.Hour)),
	}

	unified := Reconcile(computed, persisted)

	require.Len(t, unified, 1)
	assert.True(t, unified[0].IsComputed)
	assert.Equal(t, "unit-x:OFFLINE", unified[0].ID)
}

func TestReconcileAcknowledgedAlwaysShown(t *testing.T) {
	// The acknowledgment must remain visible even while the underlying
	// condition is still live; the computed duplicate is dropped
	ackAt := evalNow.Add(-30 * time.Minute)
	p := persistedAlert("a1", "unit-x", "offline", models.AlertStatusAcknowledged, evalNow.Add(-1*time.Hour))
	p.AcknowledgedAt = &ackAt

	computed := []models.ComputedAlert{computedOffline("unit-x", models.AlertSeverityCritical, evalNow)}

	unified := Reconcile(computed, []models.PersistedAlert{p})

	require.Len(t, unified, 1)
	assert.False(t, unified[0].IsComputed)
	assert.Equal(t, "a1", unified[0].ID)
	assert.Equal(t, models.AlertStatusAcknowledged, unified[0].Status)
	assert.Equal(t, &ackAt, unified[0].AcknowledgedAt)
}

func TestReconcileStaleActivePersistedExcluded(t *testing.T) {
	// Scenario: unit is back online (no computed alert) but the ingestion
	// job's active record was never closed. Neither entry appears; closing
	// the record belongs to an external job.
	persisted := []models.PersistedAlert{
		persistedAlert("a1", "unit-x", "offline", models.AlertStatusActive, evalNow.Add(-1*time.Hour)),
	}

	unified := Reconcile(nil, persisted)

	assert.Empty(t, unified)
}

func TestReconcileEscalatedNormalizedToActive(t *testing.T) {
	p := persistedAlert("a1", "unit-x", "excursion", models.AlertStatusEscalated, evalNow.Add(-2*time.Hour))
	p.EscalationLevel = 2

	unified := Reconcile(nil, []models.PersistedAlert{p})

	require.Len(t, unified, 1)
	assert.Equal(t, models.AlertStatusActive, unified[0].Status)
	assert.Equal(t, 2, unified[0].EscalationLevel)
}

func TestReconcileEscalatedWinsOverMatchingComputed(t *testing.T) {
	p := persistedAlert("a1", "unit-x", "offline", models.AlertStatusEscalated, evalNow.Add(-2*time.Hour))
	p.EscalationLevel = 1
	computed := []models.ComputedAlert{computedOffline("unit-x", models.AlertSeverityCritical, evalNow)}

	unified := Reconcile(computed, []models.PersistedAlert{p})

	require.Len(t, unified, 1)
	assert.Equal(t, "a1", unified[0].ID)
	assert.Equal(t, 1, unified[0].EscalationLevel)
}

func TestReconcileUnknownUnitPersistedStillShown(t *testing.T) {
	// The unit was deprovisioned; the record keeps its last-known names
	p := persistedAlert("a1", "unit-gone", "excursion", models.AlertStatusAcknowledged, evalNow.Add(-3*time.Hour))
	p.UnitName = "Decommissioned Freezer"

	unified := Reconcile(nil, []models.PersistedAlert{p})

	require.Len(t, unified, 1)
	assert.Equal(t, "Decommissioned Freezer", unified[0].UnitName)
}

func TestReconcileCaseInsensitiveTypeMatching(t *testing.T) {
	// Persisted rows may carry lower-case types from the ingestion job
	computed := []models.ComputedAlert{computedOffline("unit-x", models.AlertSeverityWarning, evalNow)}
	persisted := []models.PersistedAlert{
		persistedAlert("a1", "unit-x", "Offline", models.AlertStatusActive, evalNow.Add(-1*time.Hour)),
	}

	unified := Reconcile(computed, persisted)

	require.Len(t, unified, 1)
	assert.True(t, unified[0].IsComputed)
}

func TestReconcileOrderingInvariant(t *testing.T) {
	ackAt := evalNow.Add(-10 * time.Minute)

	ack := persistedAlert("a-ack", "unit-1", "excursion", models.AlertStatusAcknowledged, evalNow.Add(-4*time.Hour))
	ack.AcknowledgedAt = &ackAt
	ack.Severity = models.AlertSeverityWarning

	resolved := persistedAlert("a-res", "unit-2", "offline", models.AlertStatusResolved, evalNow.Add(-1*time.Hour))

	computed := []models.ComputedAlert{
		computedOffline("unit-3", models.AlertSeverityWarning, evalNow.Add(-50*time.Minute)),
		computedOffline("unit-4", models.AlertSeverityCritical, evalNow.Add(-20*time.Minute)),
		computedOffline("unit-5", models.AlertSeverityCritical, evalNow.Add(-5*time.Minute)),
	}

	unified := Reconcile(computed, []models.PersistedAlert{resolved, ack})

	require.Len(t, unified, 5)

	// Status order is non-decreasing, and within equal status severity
	// order is non-decreasing
	for i := 1; i < len(unified); i++ {
		prev, cur := unified[i-1], unified[i]
		assert.LessOrEqual(t, StatusRank(prev.Status), StatusRank(cur.Status))
		if StatusRank(prev.Status) == StatusRank(cur.Status) {
			assert.LessOrEqual(t, SeverityRank(prev.Severity), SeverityRank(cur.Severity))
			if SeverityRank(prev.Severity) == SeverityRank(cur.Severity) {
				assert.False(t, prev.TriggeredAt.Before(cur.TriggeredAt))
			}
		}
	}

	assert.Equal(t, "unit-5:OFFLINE", unified[0].ID) // newest critical first
	assert.Equal(t, "unit-4:OFFLINE", unified[1].ID)
	assert.Equal(t, "unit-3:OFFLINE", unified[2].ID)
	assert.Equal(t, "a-ack", unified[3].ID)
	assert.Equal(t, "a-res", unified[4].ID)
}

func TestReconcilePersistedExcursionMessage(t *testing.T) {
	p := persistedAlert("a1", "unit-x", "excursion", models.AlertStatusAcknowledged, evalNow.Add(-1*time.Hour))
	p.TriggerTemperature = floatPtr(46)
	p.ThresholdViolated = floatPtr(41)

	unified := Reconcile(nil, []models.PersistedAlert{p})

	require.Len(t, unified, 1)
	assert.Contains(t, unified[0].Message, "46.0")
	assert.Contains(t, unified[0].Message, "41.0")
	assert.Equal(t, models.AlertTypeExcursion, unified[0].Type)
}
