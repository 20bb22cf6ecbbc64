package models

import (
	"time"
)

// UnitType represents the kind of refrigeration asset being monitored
type UnitType string

const (
	UnitTypeFridge        UnitType = "fridge"
	UnitTypeFreezer       UnitType = "freezer"
	UnitTypeWalkInCooler  UnitType = "walk_in_cooler"
	UnitTypeWalkInFreezer UnitType = "walk_in_freezer"
	UnitTypeDisplayCase   UnitType = "display_case"
	UnitTypeBlastChiller  UnitType = "blast_chiller"
)

// Unit represents a refrigeration unit and its latest monitoring snapshot.
// The engine treats units as read-only input; sensor ingestion and manual log
// submission mutate them elsewhere.
type Unit struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Type   UnitType `json:"type"`
	Status string   `json:"status"` // persisted by ingestion, not authoritative for display

	TempLimitHigh float64  `json:"tempLimitHigh"`
	TempLimitLow  *float64 `json:"tempLimitLow,omitempty"`

	LastTemperature       *float64   `json:"lastTemperature,omitempty"`
	LastReadingAt         *time.Time `json:"lastReadingAt,omitempty"`
	LastManualTemperature *float64   `json:"lastManualTemperature,omitempty"`
	LastManualLogAt       *time.Time `json:"lastManualLogAt,omitempty"`
	LastCheckinAt         *time.Time `json:"lastCheckinAt,omitempty"` // sensor heartbeat, may exist without a reading

	ManualLogRequired        bool `json:"manualLogRequired"`
	ManualLogIntervalSeconds int  `json:"manualLogIntervalSeconds,omitempty"` // 0 means not set at the unit level

	AreaID   string `json:"areaId"`
	AreaName string `json:"areaName"`
	SiteID   string `json:"siteId"`
	SiteName string `json:"siteName"`
}

// OfflineSeverity classifies how overdue a unit's check-ins are
type OfflineSeverity string

const (
	OfflineNone     OfflineSeverity = "none"
	OfflineWarning  OfflineSeverity = "warning"
	OfflineCritical OfflineSeverity = "critical"
)

// ComputedUnitStatus is the ephemeral evaluation result for a single unit.
// It is recalculated on every request and never persisted. When
// OfflineSeverity is not "none" the unit is treated as offline for display
// regardless of its stored status field.
type ComputedUnitStatus struct {
	OfflineSeverity       OfflineSeverity `json:"offlineSeverity"`
	MissedCheckins        int             `json:"missedCheckins"`
	NeverCheckedIn        bool            `json:"neverCheckedIn"`
	ManualRequired        bool            `json:"manualRequired"`
	ManualNeverLogged     bool            `json:"manualNeverLogged"`
	ManualOverdueMinutes  int64           `json:"manualOverdueMinutes"`
	MinutesSinceManualLog *int64          `json:"minutesSinceManualLog,omitempty"`
	TemperatureExcursion  bool            `json:"temperatureExcursion"`
	StatusLabel           string          `json:"statusLabel"`
	StatusColor           string          `json:"statusColor"`
}

// UnitStatusView pairs a unit with its computed status for display
type UnitStatusView struct {
	Unit     Unit               `json:"unit"`
	Computed ComputedUnitStatus `json:"computed"`
}
