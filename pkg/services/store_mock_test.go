package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/freshtrack-io/ft-compliance-engine/pkg/models"
)

// MockStore is a mock implementation of the AlertStore interface
type MockStore struct {
	mock.Mock
}

// Ensure MockStore implements AlertStore
var _ AlertStore = (*MockStore)(nil)

func (m *MockStore) GetUnits(ctx context.Context, orgID, siteID string) ([]models.Unit, error) {
	args := m.Called(ctx, orgID, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Unit), args.Error(1)
}

func (m *MockStore) GetRuleOverrides(ctx context.Context, orgID string) (*models.RuleOverrideSet, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RuleOverrideSet), args.Error(1)
}

func (m *MockStore) GetOpenAlerts(ctx context.Context, orgID, siteID string) ([]models.PersistedAlert, error) {
	args := m.Called(ctx, orgID, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PersistedAlert), args.Error(1)
}

func (m *MockStore) GetAlert(ctx context.Context, alertID string) (*models.PersistedAlert, error) {
	args := m.Called(ctx, alertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PersistedAlert), args.Error(1)
}

func (m *MockStore) AcknowledgeAlert(ctx context.Context, alertID, notes string, now time.Time) (*models.PersistedAlert, error) {
	args := m.Called(ctx, alertID, notes, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PersistedAlert), args.Error(1)
}

func (m *MockStore) ResolveAlert(ctx context.Context, alertID, correctiveAction, rootCause string, now time.Time) (*models.PersistedAlert, error) {
	args := m.Called(ctx, alertID, correctiveAction, rootCause, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PersistedAlert), args.Error(1)
}
