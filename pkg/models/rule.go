package models

// RuleOverride holds the alert rule fields configured at one scope
// (unit, site, or organization). A nil field means "not set here, fall
// through to the next coarser scope".
type RuleOverride struct {
	CheckinIntervalSeconds         *int `json:"checkinIntervalSeconds,omitempty"`
	MissedCheckinWarningThreshold  *int `json:"missedCheckinWarningThreshold,omitempty"`
	MissedCheckinCriticalThreshold *int `json:"missedCheckinCriticalThreshold,omitempty"`
	ManualLogCadenceSeconds        *int `json:"manualLogCadenceSeconds,omitempty"`
}

// RuleOverrideSet is every override row configured for one organization,
// keyed by scope, as loaded from storage in a single fetch.
type RuleOverrideSet struct {
	Organization *RuleOverride            `json:"organization,omitempty"`
	Sites        map[string]*RuleOverride `json:"sites,omitempty"`
	Units        map[string]*RuleOverride `json:"units,omitempty"`
}

// EffectiveRules is the fully resolved, non-null rule configuration for a
// unit after the unit -> site -> organization -> default fallback walk.
// Fields resolve independently; the first scope with a value wins per field.
type EffectiveRules struct {
	CheckinIntervalSeconds         int `json:"checkinIntervalSeconds"`
	MissedCheckinWarningThreshold  int `json:"missedCheckinWarningThreshold"`
	MissedCheckinCriticalThreshold int `json:"missedCheckinCriticalThreshold"`
	ManualLogCadenceSeconds        int `json:"manualLogCadenceSeconds"`
}
