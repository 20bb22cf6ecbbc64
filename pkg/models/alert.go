package models

import (
	"strings"
	"time"
)

// AlertType identifies the failure condition an alert describes
type AlertType string

const (
	AlertTypeOffline        AlertType = "OFFLINE"
	AlertTypeManualRequired AlertType = "MANUAL_REQUIRED"
	AlertTypeExcursion      AlertType = "EXCURSION"
)

// AlertSeverity represents how urgent an alert is
type AlertSeverity string

const (
	AlertSeverityCritical AlertSeverity = "critical"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityInfo     AlertSeverity = "info"
)

// AlertStatus is the lifecycle state of a persisted alert
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
	AlertStatusEscalated    AlertStatus = "escalated"
)

// ComputedAlert is a transient alert representing a condition that is true
// right now. It exists only for the duration of one evaluation pass, is
// never written to storage, and cannot be acknowledged.
type ComputedAlert struct {
	ID          string        `json:"id"` // derived: "<unitID>:<TYPE>"
	Type        AlertType     `json:"type"`
	Severity    AlertSeverity `json:"severity"`
	Title       string        `json:"title"`
	Message     string        `json:"message"`
	UnitID      string        `json:"unitId"`
	UnitName    string        `json:"unitName"`
	AreaName    string        `json:"areaName"`
	SiteID      string        `json:"siteId"`
	SiteName    string        `json:"siteName"`
	TriggeredAt time.Time     `json:"triggeredAt"`
}

// DedupKey returns the stable key used to match computed and persisted
// alerts for the same (unit, condition) pair.
func (a ComputedAlert) DedupKey() string {
	return DedupKey(a.UnitID, string(a.Type))
}

// PersistedAlert is a durable alert record created by the ingestion job when
// a threshold was first violated. It carries the human-actionable lifecycle
// state. The engine reads these and mutates them only through the lifecycle
// operations.
type PersistedAlert struct {
	ID                 string        `json:"id"`
	UnitID             string        `json:"unitId"`
	UnitName           string        `json:"unitName"` // denormalized; survives unit deletion
	AreaName           string        `json:"areaName"`
	SiteID             string        `json:"siteId"`
	SiteName           string        `json:"siteName"`
	AlertType          string        `json:"alertType"`
	Severity           AlertSeverity `json:"severity"`
	Status             AlertStatus   `json:"status"`
	TriggerTemperature *float64      `json:"triggerTemperature,omitempty"`
	ThresholdViolated  *float64      `json:"thresholdViolated,omitempty"`
	TriggeredAt        time.Time     `json:"triggeredAt"`
	AcknowledgedAt     *time.Time    `json:"acknowledgedAt,omitempty"`
	ResolvedAt         *time.Time    `json:"resolvedAt,omitempty"`
	EscalationLevel    int           `json:"escalationLevel"`
	Metadata           string        `json:"metadata,omitempty"` // JSON string; holds notes, resolution details
}

// DedupKey returns the same key shape as ComputedAlert.DedupKey so the two
// origins can be matched.
func (a PersistedAlert) DedupKey() string {
	return DedupKey(a.UnitID, a.AlertType)
}

// DedupKey builds the canonical "<unitID>:<TYPE>" alert key
func DedupKey(unitID, alertType string) string {
	return unitID + ":" + strings.ToUpper(alertType)
}

// UnifiedAlert is the display-ready projection merging both alert origins.
// IsComputed discriminates the variant: computed alerts are always live and
// therefore always "active".
type UnifiedAlert struct {
	ID              string        `json:"id"`
	IsComputed      bool          `json:"isComputed"`
	Type            AlertType     `json:"type"`
	Severity        AlertSeverity `json:"severity"`
	Status          AlertStatus   `json:"status"`
	Title           string        `json:"title"`
	Message         string        `json:"message"`
	UnitID          string        `json:"unitId"`
	UnitName        string        `json:"unitName"`
	AreaName        string        `json:"areaName"`
	SiteID          string        `json:"siteId"`
	SiteName        string        `json:"siteName"`
	TriggeredAt     time.Time     `json:"triggeredAt"`
	AcknowledgedAt  *time.Time    `json:"acknowledgedAt,omitempty"`
	EscalationLevel int           `json:"escalationLevel,omitempty"`
}

// AlertSummary holds the headline counts for an organization or site scope
type AlertSummary struct {
	TotalCount    int `json:"totalCount"`
	CriticalCount int `json:"criticalCount"`
	WarningCount  int `json:"warningCount"`
	UnitsOK       int `json:"unitsOk"`
}

// AlertBoard is the reconciled alert list plus its summary counts
type AlertBoard struct {
	Alerts  []UnifiedAlert `json:"alerts"`
	Summary AlertSummary   `json:"summary"`
}

// AcknowledgeAlertRequest is the payload for acknowledging a persisted alert
type AcknowledgeAlertRequest struct {
	Notes string `json:"notes"`
}

// ResolveAlertRequest is the payload for resolving a persisted alert
type ResolveAlertRequest struct {
	CorrectiveAction string `json:"correctiveAction"`
	RootCause        string `json:"rootCause,omitempty"`
}
