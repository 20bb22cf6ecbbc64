package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/freshtrack-io/ft-compliance-engine/pkg/models"
)

// SeverityRank orders severities critical < warning < info for display
func SeverityRank(s models.AlertSeverity) int {
	switch s {
	case models.AlertSeverityCritical:
		return 0
	case models.AlertSeverityWarning:
		return 1
	default:
		return 2
	}
}

// StatusRank orders lifecycle states active < acknowledged < resolved for
// display. Escalated rows are normalized to active before ranking.
func StatusRank(s models.AlertStatus) int {
	switch s {
	case models.AlertStatusActive, models.AlertStatusEscalated:
		return 0
	case models.AlertStatusAcknowledged:
		return 1
	default:
		return 2
	}
}

// Reconcile merges one evaluation pass's computed alerts with the persisted
// alert records into a single display list.
//
// While a condition is live and its persisted record is still unactioned
// (status active), the computed alert is authoritative and the persisted row
// is suppressed. An acknowledged record is always shown instead of the
// computed alert: the human action must stay visible while the condition
// persists. An active persisted record with no matching live condition is
// stale and excluded; an external closer job owns transitioning it to
// resolved. Escalated records are shown with status normalized to active,
// keeping their escalation level, and win over the matching computed alert.
func Reconcile(computed []models.ComputedAlert, persisted []models.PersistedAlert) []models.UnifiedAlert {
	liveKeys := make(map[string]bool, len(computed))
	for _, c := range computed {
		liveKeys[c.DedupKey()] = true
	}

	unified := make([]models.UnifiedAlert, 0, len(computed)+len(persisted))
	suppressedComputed := make(map[string]bool)

	for _, p := range persisted {
		key := p.DedupKey()
		switch p.Status {
		case models.AlertStatusActive:
			if liveKeys[key] {
				// Live signal wins while the record is unactioned
				continue
			}
			// The condition cleared but nothing closed the record yet; the
			// external closer job owns the transition to resolved
			logrus.Debugf("Excluding stale active alert %s (%s): no matching live condition", p.ID, key)
			continue
		case models.AlertStatusAcknowledged, models.AlertStatusEscalated:
			// Human-actioned records stay visible even while the condition
			// is still live; the matching computed alert would duplicate it
			suppressedComputed[key] = true
			unified = append(unified, persistedToUnified(p))
		default:
			unified = append(unified, persistedToUnified(p))
		}
	}

	for _, c := range computed {
		if suppressedComputed[c.DedupKey()] {
			continue
		}
		unified = append(unified, computedToUnified(c))
	}

	sort.SliceStable(unified, func(i, j int) bool {
		a, b := unified[i], unified[j]
		if sr := StatusRank(a.Status) - StatusRank(b.Status); sr != 0 {
			return sr < 0
		}
		if sr := SeverityRank(a.Severity) - SeverityRank(b.Severity); sr != 0 {
			return sr < 0
		}
		return a.TriggeredAt.After(b.TriggeredAt)
	})

	return unified
}

func computedToUnified(c models.ComputedAlert) models.UnifiedAlert {
	return models.UnifiedAlert{
		ID:          c.ID,
		IsComputed:  true,
		Type:        c.Type,
		Severity:    c.Severity,
		Status:      models.AlertStatusActive, // a computed alert is live by definition
		Title:       c.Title,
		Message:     c.Message,
		UnitID:      c.UnitID,
		UnitName:    c.UnitName,
		AreaName:    c.AreaName,
		SiteID:      c.SiteID,
		SiteName:    c.SiteName,
		TriggeredAt: c.TriggeredAt,
	}
}

func persistedToUnified(p models.PersistedAlert) models.UnifiedAlert {
	status := p.Status
	if status == models.AlertStatusEscalated {
		status = models.AlertStatusActive
	}

	return models.UnifiedAlert{
		ID:              p.ID,
		IsComputed:      false,
		Type:            models.AlertType(strings.ToUpper(p.AlertType)),
		Severity:        p.Severity,
		Status:          status,
		Title:           persistedTitle(p),
		Message:         persistedMessage(p),
		UnitID:          p.UnitID,
		UnitName:        p.UnitName,
		AreaName:        p.AreaName,
		SiteID:          p.SiteID,
		SiteName:        p.SiteName,
		TriggeredAt:     p.TriggeredAt,
		AcknowledgedAt:  p.AcknowledgedAt,
		EscalationLevel: p.EscalationLevel,
	}
}

func persistedTitle(p models.PersistedAlert) string {
	switch models.AlertType(strings.ToUpper(p.AlertType)) {
	case models.AlertTypeOffline:
		return fmt.Sprintf("%s is offline", p.UnitName)
	case models.AlertTypeManualRequired:
		return fmt.Sprintf("%s needs a manual temperature log", p.UnitName)
	case models.AlertTypeExcursion:
		return fmt.Sprintf("%s temperature excursion", p.UnitName)
	default:
		return fmt.Sprintf("%s alert", p.UnitName)
	}
}

func persistedMessage(p models.PersistedAlert) string {
	if p.TriggerTemperature != nil && p.ThresholdViolated != nil {
		return fmt.Sprintf("Reading %.1f°F violated the %.1f°F limit", *p.TriggerTemperature, *p.ThresholdViolated)
	}
	return fmt.Sprintf("Recorded at %s", p.TriggeredAt.Format("2006-01-02 15:04"))
}
