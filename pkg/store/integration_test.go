package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshtrack-io/ft-compliance-engine/pkg/models"
)

// TestPostgresStoreIntegration exercises the store against a live Postgres.
// It is skipped unless FRESHTRACK_TEST_DSN points at a throwaway test
// database, e.g.
//
//	FRESHTRACK_TEST_DSN="host=localhost port=5432 user=freshtrack dbname=freshtrack_test sslmode=disable" go test ./pkg/store/
func TestPostgresStoreIntegration(t *testing.T) {
	dsn := os.Getenv("FRESHTRACK_TEST_DSN")
	if dsn == "" {
		t.Skip("FRESHTRACK_TEST_DSN not set, skipping live database test")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "Failed to open test database")
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	require.NoError(t, db.PingContext(ctx), "Failed to ping test database")
	require.NoError(t, createTestSchema(ctx, db), "Failed to create test schema")

	// Unique ids per run so concurrent or repeated runs never collide
	orgID := "org_" + uuid.New().String()
	siteID := uuid.New().String()
	areaID := uuid.New().String()
	unitID := uuid.New().String()
	alertID := uuid.New().String()
	defer cleanupTestRows(db, orgID, siteID, areaID, unitID)

	lastCheckin := time.Now().Add(-30 * time.Minute).UTC().Truncate(time.Second)

	_, err = db.ExecContext(ctx,
		`INSERT INTO sites (id, name, organization_id) VALUES ($1, 'Main Kitchen', $2)`,
		siteID, orgID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO areas (id, name, site_id) VALUES ($1, 'Back of House', $2)`,
		areaID, siteID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		INSERT INTO units (id, name, type, status, temp_limit_high, manual_log_required, last_checkin_at, area_id)
		VALUES ($1, 'Walk-in Cooler', 'walk_in_cooler', 'active', 41, true, $2, $3)`,
		unitID, lastCheckin, areaID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		INSERT INTO alert_rules (id, organization_id, scope_type, scope_id, checkin_interval_seconds)
		VALUES ($1, $2, 'organization', NULL, 600)`,
		uuid.New().String(), orgID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		INSERT INTO temperature_alerts (id, organization_id, unit_id, unit_name, area_name, site_id, site_name,
			alert_type, severity, status, triggered_at)
		VALUES ($1, $2, $3, 'Walk-in Cooler', 'Back of House', $4, 'Main Kitchen',
			'offline', 'critical', 'active', $5)`,
		alertID, orgID, unitID, siteID, lastCheckin)
	require.NoError(t, err)

	store := NewPostgresStore(db)

	t.Run("GetUnits", func(t *testing.T) {
		units, err := store.GetUnits(ctx, orgID, "")
		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.Equal(t, unitID, units[0].ID)
		assert.Equal(t, models.UnitTypeWalkInCooler, units[0].Type)
		require.NotNil(t, units[0].LastCheckinAt)
		assert.True(t, units[0].LastCheckinAt.Equal(lastCheckin))
		assert.Nil(t, units[0].TempLimitLow)
	})

	t.Run("GetRuleOverrides", func(t *testing.T) {
		set, err := store.GetRuleOverrides(ctx, orgID)
		require.NoError(t, err)
		require.NotNil(t, set.Organization)
		require.NotNil(t, set.Organization.CheckinIntervalSeconds)
		assert.Equal(t, 600, *set.Organization.CheckinIntervalSeconds)
		assert.Nil(t, set.Organization.ManualLogCadenceSeconds)
	})

	t.Run("AlertLifecycle", func(t *testing.T) {
		open, err := store.GetOpenAlerts(ctx, orgID, "")
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, models.AlertStatusActive, open[0].Status)

		now := time.Now().UTC().Truncate(time.Second)
		acked, err := store.AcknowledgeAlert(ctx, alertID, "technician dispatched", now)
		require.NoError(t, err)
		require.NotNil(t, acked)
		assert.Equal(t, models.AlertStatusAcknowledged, acked.Status)
		require.NotNil(t, acked.AcknowledgedAt)
		assert.Contains(t, acked.Metadata, "technician dispatched")

		// A second acknowledge matches no row under the status guard
		again, err := store.AcknowledgeAlert(ctx, alertID, "duplicate", now)
		require.NoError(t, err)
		assert.Nil(t, again)

		resolved, err := store.ResolveAlert(ctx, alertID, "reset compressor", "door left open", now)
		require.NoError(t, err)
		require.NotNil(t, resolved)
		assert.Equal(t, models.AlertStatusResolved, resolved.Status)
		assert.Contains(t, resolved.Metadata, "reset compressor")

		// Resolved alerts never reappear on the open board
		open, err = store.GetOpenAlerts(ctx, orgID, "")
		require.NoError(t, err)
		assert.Empty(t, open)

		// Acknowledge after resolve must not move the alert backward
		stale, err := store.AcknowledgeAlert(ctx, alertID, "late ack", now)
		require.NoError(t, err)
		assert.Nil(t, stale)
	})
}

func createTestSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sites (
			id text PRIMARY KEY,
			name text NOT NULL,
			organization_id text NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS areas (
			id text PRIMARY KEY,
			name text NOT NULL,
			site_id text NOT NULL REFERENCES sites (id)
		)`,
		`CREATE TABLE IF NOT EXISTS units (
			id text PRIMARY KEY,
			name text NOT NULL,
			type text NOT NULL,
			status text NOT NULL DEFAULT 'active',
			temp_limit_high double precision NOT NULL,
			temp_limit_low double precision,
			last_temperature double precision,
			last_reading_at timestamptz,
			last_manual_temperature double precision,
			last_manual_log_at timestamptz,
			last_checkin_at timestamptz,
			manual_log_required boolean NOT NULL DEFAULT false,
			manual_log_interval_seconds integer,
			area_id text NOT NULL REFERENCES areas (id)
		)`,
		`CREATE TABLE IF NOT EXISTS alert_rules (
			id text PRIMARY KEY,
			organization_id text NOT NULL,
			scope_type text NOT NULL,
			scope_id text,
			checkin_interval_seconds integer,
			missed_checkin_warning_threshold integer,
			missed_checkin_critical_threshold integer,
			manual_log_cadence_seconds integer
		)`,
		`CREATE TABLE IF NOT EXISTS temperature_alerts (
			id text PRIMARY KEY,
			organization_id text NOT NULL,
			unit_id text NOT NULL,
			unit_name text NOT NULL,
			area_name text NOT NULL,
			site_id text NOT NULL,
			site_name text NOT NULL,
			alert_type text NOT NULL,
			severity text NOT NULL,
			status text NOT NULL,
			trigger_temperature double precision,
			threshold_violated double precision,
			triggered_at timestamptz NOT NULL,
			acknowledged_at timestamptz,
			resolved_at timestamptz,
			escalation_level integer NOT NULL DEFAULT 0,
			metadata jsonb
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create test schema: %w", err)
		}
	}
	return nil
}

func cleanupTestRows(db *sql.DB, orgID, siteID, areaID, unitID string) {
	db.Exec(`DELETE FROM temperature_alerts WHERE organization_id = $1`, orgID)
	db.Exec(`DELETE FROM alert_rules WHERE organization_id = $1`, orgID)
	db.Exec(`DELETE FROM units WHERE id = $1`, unitID)
	db.Exec(`DELETE FROM areas WHERE id = $1`, areaID)
	db.Exec(`DELETE FROM sites WHERE id = $1`, siteID)
}
