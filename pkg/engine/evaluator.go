package engine

import (
	"time"

	"github.com/freshtrack-io/ft-compliance-engine/pkg/models"
)

// Status labels and colors, in display priority order
const (
	StatusLabelOffline        = "Offline"
	StatusLabelCheckinOverdue = "Check-in Overdue"
	StatusLabelManualLogDue   = "Manual Log Due"
	StatusLabelExcursion      = "Temperature Excursion"
	StatusLabelOK             = "OK"

	StatusColorRed    = "red"
	StatusColorOrange = "orange"
	StatusColorYellow = "yellow"
	StatusColorGreen  = "green"
)

// EvaluateUnit derives the compliance status for one unit. It is a pure
// function of the unit snapshot, the resolved rules, and now; running it
// twice with the same inputs yields the same output.
//
// All time arithmetic is whole seconds/minutes with floor division so the
// UI never shows fractional or negative overdue values.
func EvaluateUnit(unit models.Unit, rules models.EffectiveRules, now time.Time) models.ComputedUnitStatus {
	status := models.ComputedUnitStatus{
		OfflineSeverity: models.OfflineNone,
	}

	evaluateOffline(unit, rules, now, &status)
	evaluateManualLog(unit, rules, now, &status)

	reading, _ := LatestReading(unit)
	if reading != nil && outsideLimits(*reading, unit) {
		status.TemperatureExcursion = true
	}

	status.StatusLabel, status.StatusColor = statusDisplay(status)
	return status
}

// evaluateOffline computes missed check-ins against the expected interval.
// A sensor heartbeat counts as a check-in even without a temperature reading,
// so the heartbeat timestamp wins over the reading timestamp when present.
func evaluateOffline(unit models.Unit, rules models.EffectiveRules, now time.Time, status *models.ComputedUnitStatus) {
	lastCheckin := unit.LastCheckinAt
	if lastCheckin == nil {
		lastCheckin = unit.LastReadingAt
	}

	if lastCheckin == nil {
		// Never reported at all
		status.NeverCheckedIn = true
		status.OfflineSeverity = models.OfflineCritical
		return
	}

	elapsed := int(now.Unix() - lastCheckin.Unix())
	if elapsed < 0 {
		elapsed = 0
	}
	status.MissedCheckins = elapsed / rules.CheckinIntervalSeconds

	switch {
	case status.MissedCheckins >= rules.MissedCheckinCriticalThreshold:
		status.OfflineSeverity = models.OfflineCritical
	case status.MissedCheckins >= rules.MissedCheckinWarningThreshold:
		status.OfflineSeverity = models.OfflineWarning
	}
}

// evaluateManualLog applies the staff logging cadence for units that require
// manual monitoring
func evaluateManualLog(unit models.Unit, rules models.EffectiveRules, now time.Time, status *models.ComputedUnitStatus) {
	if !unit.ManualLogRequired {
		return
	}

	if unit.LastManualLogAt == nil {
		status.ManualRequired = true
		status.ManualNeverLogged = true
		return
	}

	elapsedSeconds := now.Unix() - unit.LastManualLogAt.Unix()
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	minutesSince := elapsedSeconds / 60
	status.MinutesSinceManualLog = &minutesSince

	if elapsedSeconds >= int64(rules.ManualLogCadenceSeconds) {
		status.ManualRequired = true
	}

	cadenceMinutes := int64(rules.ManualLogCadenceSeconds / 60)
	if overdue := minutesSince - cadenceMinutes; overdue > 0 {
		status.ManualOverdueMinutes = overdue
	}
}

// LatestReading returns the freshest known temperature for a unit, comparing
// the sensor reading against the manual log. Returns nils when the unit has
// never reported a temperature.
func LatestReading(unit models.Unit) (*float64, *time.Time) {
	sensorOK := unit.LastTemperature != nil && unit.LastReadingAt != nil
	manualOK := unit.LastManualTemperature != nil && unit.LastManualLogAt != nil

	switch {
	case sensorOK && manualOK:
		if unit.LastManualLogAt.After(*unit.LastReadingAt) {
			return unit.LastManualTemperature, unit.LastManualLogAt
		}
		return unit.LastTemperature, unit.LastReadingAt
	case sensorOK:
		return unit.LastTemperature, unit.LastReadingAt
	case manualOK:
		return unit.LastManualTemperature, unit.LastManualLogAt
	default:
		return nil, nil
	}
}

func outsideLimits(reading float64, unit models.Unit) bool {
	if reading > unit.TempLimitHigh {
		return true
	}
	return unit.TempLimitLow != nil && reading < *unit.TempLimitLow
}

// statusDisplay picks the label/color by priority: offline critical >
// offline warning > manual required > excursion > OK
func statusDisplay(status models.ComputedUnitStatus) (string, string) {
	switch {
	case status.OfflineSeverity == models.OfflineCritical:
		return StatusLabelOffline, StatusColorRed
	case status.OfflineSeverity == models.OfflineWarning:
		return StatusLabelCheckinOverdue, StatusColorOrange
	case status.ManualRequired:
		return StatusLabelManualLogDue, StatusColorYellow
	case status.TemperatureExcursion:
		return StatusLabelExcursion, StatusColorRed
	default:
		return StatusLabelOK, StatusColorGreen
	}
}
