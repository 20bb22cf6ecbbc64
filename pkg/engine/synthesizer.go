package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/freshtrack-io/ft-compliance-engine/pkg/models"
)

// SynthesisInput pairs a unit with its resolved rules
type SynthesisInput struct {
	Unit  models.Unit
	Rules models.EffectiveRules
}

// SynthesisResult is one evaluation pass over a set of units: the transient
// alerts for every failure condition currently true, the per-unit computed
// statuses, and the summary counts.
type SynthesisResult struct {
	Alerts        []models.ComputedAlert
	Statuses      []models.UnitStatusView
	UnitsOK       int
	TotalCount    int
	CriticalCount int
	WarningCount  int
}

// Synthesize evaluates every unit and emits zero or more ComputedAlerts per
// unit, one per active failure condition. Alerts are ordered by severity
// (critical, warning, info) and then most recently triggered first. The
// result never contains two alerts with the same (unit, type) key.
func Synthesize(inputs []SynthesisInput, now time.Time) SynthesisResult {
	result := SynthesisResult{
		Alerts:   make([]models.ComputedAlert, 0),
		Statuses: make([]models.UnitStatusView, 0, len(inputs)),
	}

	for _, in := range inputs {
		status := EvaluateUnit(in.Unit, in.Rules, now)
		result.Statuses = append(result.Statuses, models.UnitStatusView{Unit: in.Unit, Computed: status})

		alerts := alertsForUnit(in.Unit, in.Rules, status, now)
		if len(alerts) == 0 {
			result.UnitsOK++
			continue
		}
		result.Alerts = append(result.Alerts, alerts...)
	}

	sort.SliceStable(result.Alerts, func(i, j int) bool {
		a, b := result.Alerts[i], result.Alerts[j]
		if sr := SeverityRank(a.Severity) - SeverityRank(b.Severity); sr != 0 {
			return sr < 0
		}
		return a.TriggeredAt.After(b.TriggeredAt)
	})

	result.TotalCount = len(result.Alerts)
	for _, a := range result.Alerts {
		switch a.Severity {
		case models.AlertSeverityCritical:
			result.CriticalCount++
		case models.AlertSeverityWarning:
			result.WarningCount++
		}
	}

	return result
}

// alertsForUnit emits at most one alert per failure type, so the dedup key
// "<unitID>:<TYPE>" is unique by construction
func alertsForUnit(unit models.Unit, rules models.EffectiveRules, status models.ComputedUnitStatus, now time.Time) []models.ComputedAlert {
	var alerts []models.ComputedAlert

	if status.OfflineSeverity != models.OfflineNone {
		alerts = append(alerts, offlineAlert(unit, rules, status, now))
	}
	if status.ManualRequired {
		alerts = append(alerts, manualRequiredAlert(unit, rules, status, now))
	}
	if status.TemperatureExcursion {
		alerts = append(alerts, excursionAlert(unit, now))
	}

	return alerts
}

func offlineAlert(unit models.Unit, rules models.EffectiveRules, status models.ComputedUnitStatus, now time.Time) models.ComputedAlert {
	alert := newComputedAlert(unit, models.AlertTypeOffline)
	alert.Severity = models.AlertSeverity(status.OfflineSeverity)
	alert.Title = fmt.Sprintf("%s is offline", unit.Name)
	alert.TriggeredAt = now

	if status.NeverCheckedIn {
		alert.Message = "Never checked in"
		return alert
	}

	lastCheckin := unit.LastCheckinAt
	if lastCheckin == nil {
		lastCheckin = unit.LastReadingAt
	}
	alert.TriggeredAt = *lastCheckin
	alert.Message = fmt.Sprintf("No check-in for %d minutes (expected every %d minutes)",
		int(now.Unix()-lastCheckin.Unix())/60, rules.CheckinIntervalSeconds/60)
	return alert
}

func manualRequiredAlert(unit models.Unit, rules models.EffectiveRules, status models.ComputedUnitStatus, now time.Time) models.ComputedAlert {
	alert := newComputedAlert(unit, models.AlertTypeManualRequired)
	alert.Title = fmt.Sprintf("%s needs a manual temperature log", unit.Name)

	cadenceMinutes := int64(rules.ManualLogCadenceSeconds / 60)

	if status.ManualNeverLogged {
		// Units that have never been logged are always critical, distinct
		// from merely-overdue units
		alert.Severity = models.AlertSeverityCritical
		alert.Message = "Never logged"
		alert.TriggeredAt = now
		return alert
	}

	alert.Severity = models.AlertSeverityWarning
	if status.ManualOverdueMinutes > 2*cadenceMinutes {
		alert.Severity = models.AlertSeverityCritical
	}
	alert.Message = fmt.Sprintf("Manual log overdue by %d minutes", status.ManualOverdueMinutes)
	// The alert dates from the moment the log became due
	alert.TriggeredAt = unit.LastManualLogAt.Add(time.Duration(rules.ManualLogCadenceSeconds) * time.Second)
	return alert
}

func excursionAlert(unit models.Unit, now time.Time) models.ComputedAlert {
	alert := newComputedAlert(unit, models.AlertTypeExcursion)
	alert.Severity = models.AlertSeverityCritical
	alert.Title = fmt.Sprintf("%s temperature excursion", unit.Name)
	alert.TriggeredAt = now

	reading, at := LatestReading(unit)
	if reading == nil {
		return alert
	}
	alert.TriggeredAt = *at

	if unit.TempLimitLow != nil && *reading < *unit.TempLimitLow {
		alert.Message = fmt.Sprintf("Reading %.1f°F is below the low limit %.1f°F", *reading, *unit.TempLimitLow)
	} else {
		alert.Message = fmt.Sprintf("Reading %.1f°F is above the high limit %.1f°F", *reading, unit.TempLimitHigh)
	}
	return alert
}

func newComputedAlert(unit models.Unit, alertType models.AlertType) models.ComputedAlert {
	return models.ComputedAlert{
		ID:       models.DedupKey(unit.ID, string(alertType)),
		Type:     alertType,
		UnitID:   unit.ID,
		UnitName: unit.Name,
		AreaName: unit.AreaName,
		SiteID:   unit.SiteID,
		SiteName: unit.SiteName,
	}
}
