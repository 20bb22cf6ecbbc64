package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/freshtrack-io/ft-compliance-engine/pkg/models"
)

// Global defaults applied when no scope configures a value
const (
	DefaultCheckinIntervalSeconds         = 900   // 15 minutes
	DefaultManualLogCadenceSeconds        = 14400 // 240 minutes
	DefaultMissedCheckinWarningThreshold  = 2
	DefaultMissedCheckinCriticalThreshold = 4
)

// ResolveRules walks unit -> site -> organization -> default for each rule
// field independently and returns a fully populated rule set. A field left
// unset at every scope degrades to the documented default; there are no
// error conditions.
func ResolveRules(unit, site, org *models.RuleOverride) models.EffectiveRules {
	rules := models.EffectiveRules{
		CheckinIntervalSeconds:         resolveInt(DefaultCheckinIntervalSeconds, pickField(unit, site, org, checkinInterval)),
		MissedCheckinWarningThreshold:  resolveInt(DefaultMissedCheckinWarningThreshold, pickField(unit, site, org, warningThreshold)),
		MissedCheckinCriticalThreshold: resolveInt(DefaultMissedCheckinCriticalThreshold, pickField(unit, site, org, criticalThreshold)),
		ManualLogCadenceSeconds:        resolveInt(DefaultManualLogCadenceSeconds, pickField(unit, site, org, manualCadence)),
	}

	// Warning must stay below critical. A misconfigured pair degrades to the
	// defaults rather than producing an unreachable warning band.
	if rules.MissedCheckinWarningThreshold >= rules.MissedCheckinCriticalThreshold {
		logrus.Warnf("Invalid missed check-in thresholds (warning %d >= critical %d), using defaults",
			rules.MissedCheckinWarningThreshold, rules.MissedCheckinCriticalThreshold)
		rules.MissedCheckinWarningThreshold = DefaultMissedCheckinWarningThreshold
		rules.MissedCheckinCriticalThreshold = DefaultMissedCheckinCriticalThreshold
	}

	return rules
}

// RulesForUnit resolves the effective rules for one unit out of an
// organization's override set. A cadence configured inline on the unit record
// counts as a unit-scope value for the manual log cadence field.
func RulesForUnit(unit models.Unit, overrides *models.RuleOverrideSet) models.EffectiveRules {
	var unitOv, siteOv, orgOv *models.RuleOverride
	if overrides != nil {
		unitOv = overrides.Units[unit.ID]
		siteOv = overrides.Sites[unit.SiteID]
		orgOv = overrides.Organization
	}

	if unit.ManualLogIntervalSeconds > 0 && (unitOv == nil || unitOv.ManualLogCadenceSeconds == nil) {
		inline := unit.ManualLogIntervalSeconds
		merged := models.RuleOverride{ManualLogCadenceSeconds: &inline}
		if unitOv != nil {
			merged.CheckinIntervalSeconds = unitOv.CheckinIntervalSeconds
			merged.MissedCheckinWarningThreshold = unitOv.MissedCheckinWarningThreshold
			merged.MissedCheckinCriticalThreshold = unitOv.MissedCheckinCriticalThreshold
		}
		unitOv = &merged
	}

	return ResolveRules(unitOv, siteOv, orgOv)
}

type fieldSelector func(*models.RuleOverride) *int

func checkinInterval(o *models.RuleOverride) *int  { return o.CheckinIntervalSeconds }
func warningThreshold(o *models.RuleOverride) *int { return o.MissedCheckinWarningThreshold }
func criticalThreshold(o *models.RuleOverride) *int {
	return o.MissedCheckinCriticalThreshold
}
func manualCadence(o *models.RuleOverride) *int { return o.ManualLogCadenceSeconds }

// pickField returns the first configured value walking fine to coarse scope
func pickField(unit, site, org *models.RuleOverride, field fieldSelector) *int {
	for _, scope := range []*models.RuleOverride{unit, site, org} {
		if scope == nil {
			continue
		}
		if v := field(scope); v != nil {
			return v
		}
	}
	return nil
}

func resolveInt(def int, v *int) int {
	if v != nil && *v > 0 {
		return *v
	}
	return def
}
