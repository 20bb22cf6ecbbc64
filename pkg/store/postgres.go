package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/freshtrack-io/ft-compliance-engine/pkg/models"
)

// PostgresStore implements services.AlertStore over the relational schema
// owned by the CRUD layer. It reads unit snapshots, rule overrides, and
// persisted alerts, and applies lifecycle transitions as single conditional
// updates so concurrent operators cannot move an alert backward.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store backed by an open database handle
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const unitColumns = `
	u.id, u.name, u.type, u.status,
	u.temp_limit_high, u.temp_limit_low,
	u.last_temperature, u.last_reading_at,
	u.last_manual_temperature, u.last_manual_log_at,
	u.last_checkin_at,
	u.manual_log_required, u.manual_log_interval_seconds,
	a.id, a.name, s.id, s.name`

// GetUnits returns the unit snapshots for an organization, optionally
// narrowed to one site
func (s *PostgresStore) GetUnits(ctx context.Context, orgID, siteID string) ([]models.Unit, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM units u
		INNER JOIN areas a ON u.area_id = a.id
		INNER JOIN sites s ON a.site_id = s.id
		WHERE s.organization_id = $1`, unitColumns)

	args := []interface{}{orgID}
	if siteID != "" {
		query += " AND s.id = $2"
		args = append(args, siteID)
	}
	query += " ORDER BY s.name, a.name, u.name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var units []models.Unit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			// One bad row must not hide the rest of the organization
			logrus.Warnf("Skipping malformed unit row: %v", err)
			continue
		}
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate units: %w", err)
	}

	return units, nil
}

func scanUnit(rows *sql.Rows) (models.Unit, error) {
	var unit models.Unit
	var tempLow, lastTemp, lastManualTemp sql.NullFloat64
	var lastReading, lastManualLog, lastCheckin sql.NullTime
	var manualInterval sql.NullInt64

	if err := rows.Scan(
		&unit.ID, &unit.Name, &unit.Type, &unit.Status,
		&unit.TempLimitHigh, &tempLow,
		&lastTemp, &lastReading,
		&lastManualTemp, &lastManualLog,
		&lastCheckin,
		&unit.ManualLogRequired, &manualInterval,
		&unit.AreaID, &unit.AreaName, &unit.SiteID, &unit.SiteName,
	); err != nil {
		return models.Unit{}, fmt.Errorf("failed to scan unit: %w", err)
	}

	unit.TempLimitLow = nullFloat(tempLow)
	unit.LastTemperature = nullFloat(lastTemp)
	unit.LastReadingAt = nullTime(lastReading)
	unit.LastManualTemperature = nullFloat(lastManualTemp)
	unit.LastManualLogAt = nullTime(lastManualLog)
	unit.LastCheckinAt = nullTime(lastCheckin)
	if manualInterval.Valid {
		unit.ManualLogIntervalSeconds = int(manualInterval.Int64)
	}

	return unit, nil
}

// GetRuleOverrides loads every override row for the organization and groups
// them by scope
func (s *PostgresStore) GetRuleOverrides(ctx context.Context, orgID string) (*models.RuleOverrideSet, error) {
	query := `
		SELECT scope_type, scope_id,
			checkin_interval_seconds,
			missed_checkin_warning_threshold,
			missed_checkin_critical_threshold,
			manual_log_cadence_seconds
		FROM alert_rules
		WHERE organization_id = $1`

	rows, err := s.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert rules: %w", err)
	}
	defer rows.Close()

	set := &models.RuleOverrideSet{
		Sites: make(map[string]*models.RuleOverride),
		Units: make(map[string]*models.RuleOverride),
	}

	for rows.Next() {
		var scopeType string
		var scopeID sql.NullString
		var interval, warning, critical, cadence sql.NullInt64

		if err := rows.Scan(&scopeType, &scopeID, &interval, &warning, &critical, &cadence); err != nil {
			return nil, fmt.Errorf("failed to scan alert rule: %w", err)
		}

		override := &models.RuleOverride{
			CheckinIntervalSeconds:         nullInt(interval),
			MissedCheckinWarningThreshold:  nullInt(warning),
			MissedCheckinCriticalThreshold: nullInt(critical),
			ManualLogCadenceSeconds:        nullInt(cadence),
		}

		switch scopeType {
		case "organization":
			set.Organization = override
		case "site":
			if scopeID.Valid {
				set.Sites[scopeID.String] = override
			}
		case "unit":
			if scopeID.Valid {
				set.Units[scopeID.String] = override
			}
		default:
			logrus.Warnf("Ignoring alert rule with unknown scope type %q", scopeType)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert rules: %w", err)
	}

	return set, nil
}

const alertColumns = `
	id, unit_id, unit_name, area_name, site_id, site_name,
	alert_type, severity, status,
	trigger_temperature, threshold_violated,
	triggered_at, acknowledged_at, resolved_at,
	escalation_level, metadata`

// GetOpenAlerts returns the unresolved persisted alerts for the scope
func (s *PostgresStore) GetOpenAlerts(ctx context.Context, orgID, siteID string) ([]models.PersistedAlert, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM temperature_alerts
		WHERE organization_id = $1
		  AND status IN ('active', 'acknowledged', 'escalated')`, alertColumns)

	args := []interface{}{orgID}
	if siteID != "" {
		query += " AND site_id = $2"
		args = append(args, siteID)
	}
	query += " ORDER BY triggered_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.PersistedAlert
	for rows.Next() {
		alert, err := scanAlert(rows.Scan)
		if err != nil {
			logrus.Warnf("Skipping malformed alert row: %v", err)
			continue
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}

	return alerts, nil
}

// GetAlert fetches one persisted alert; (nil, nil) when absent
func (s *PostgresStore) GetAlert(ctx context.Context, alertID string) (*models.PersistedAlert, error) {
	query := fmt.Sprintf(`SELECT %s FROM temperature_alerts WHERE id = $1`, alertColumns)

	alert, err := scanAlert(s.db.QueryRowContext(ctx, query, alertID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert %s: %w", alertID, err)
	}
	return &alert, nil
}

// AcknowledgeAlert conditionally transitions an alert to acknowledged. The
// status guard in the WHERE clause makes the write atomic: a stale
// acknowledge racing a resolve matches no row and returns (nil, nil).
func (s *PostgresStore) AcknowledgeAlert(ctx context.Context, alertID, notes string, now time.Time) (*models.PersistedAlert, error) {
	query := fmt.Sprintf(`
		UPDATE temperature_alerts
		SET status = 'acknowledged',
			acknowledged_at = $2,
			metadata = jsonb_set(COALESCE(metadata, '{}'::jsonb), '{notes}', to_jsonb($3::text))
		WHERE id = $1 AND status IN ('active', 'escalated')
		RETURNING %s`, alertColumns)

	alert, err := scanAlert(s.db.QueryRowContext(ctx, query, alertID, now, notes).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acknowledge alert %s: %w", alertID, err)
	}
	return &alert, nil
}

// ResolveAlert conditionally transitions an alert to resolved, recording the
// corrective action and root cause in the metadata document
func (s *PostgresStore) ResolveAlert(ctx context.Context, alertID, correctiveAction, rootCause string, now time.Time) (*models.PersistedAlert, error) {
	query := fmt.Sprintf(`
		UPDATE temperature_alerts
		SET status = 'resolved',
			resolved_at = $2,
			metadata = jsonb_set(
				jsonb_set(COALESCE(metadata, '{}'::jsonb), '{correctiveAction}', to_jsonb($3::text)),
				'{rootCause}', to_jsonb($4::text))
		WHERE id = $1 AND status IN ('active', 'acknowledged', 'escalated')
		RETURNING %s`, alertColumns)

	alert, err := scanAlert(s.db.QueryRowContext(ctx, query, alertID, now, correctiveAction, rootCause).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve alert %s: %w", alertID, err)
	}
	return &alert, nil
}

func scanAlert(scan func(dest ...interface{}) error) (models.PersistedAlert, error) {
	var alert models.PersistedAlert
	var triggerTemp, threshold sql.NullFloat64
	var acknowledgedAt, resolvedAt sql.NullTime
	var metadata sql.NullString

	if err := scan(
		&alert.ID, &alert.UnitID, &alert.UnitName, &alert.AreaName, &alert.SiteID, &alert.SiteName,
		&alert.AlertType, &alert.Severity, &alert.Status,
		&triggerTemp, &threshold,
		&alert.TriggeredAt, &acknowledgedAt, &resolvedAt,
		&alert.EscalationLevel, &metadata,
	); err != nil {
		return models.PersistedAlert{}, err
	}

	alert.TriggerTemperature = nullFloat(triggerTemp)
	alert.ThresholdViolated = nullFloat(threshold)
	alert.AcknowledgedAt = nullTime(acknowledgedAt)
	alert.ResolvedAt = nullTime(resolvedAt)
	if metadata.Valid {
		alert.Metadata = metadata.String
	}

	return alert, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
