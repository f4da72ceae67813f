package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jonpan30062/newsaferoute/internal/cache"
	"github.com/jonpan30062/newsaferoute/internal/models"
	"github.com/jonpan30062/newsaferoute/internal/notify"
)

// MockConcernRepository is a mock implementation of ConcernRepository for testing
type MockConcernRepository struct {
	mock.Mock
}

func (m *MockConcernRepository) Create(ctx context.Context, concern *models.SafetyConcern) error {
	args := m.Called(ctx, concern)
	return args.Error(0)
}

func (m *MockConcernRepository) GetByID(ctx context.Context, id int64) (*models.SafetyConcern, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SafetyConcern), args.Error(1)
}

func (m *MockConcernRepository) List(ctx context.Context, filter models.ConcernFilter) ([]models.SafetyConcern, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.SafetyConcern), args.Int(1), args.Error(2)
}

func (m *MockConcernRepository) UpdateStatus(ctx context.Context, id int64, status models.ConcernStatus, now time.Time) (*models.SafetyConcern, error) {
	args := m.Called(ctx, id, status, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SafetyConcern), args.Error(1)
}

func (m *MockConcernRepository) UpdateNotes(ctx context.Context, id int64, notes string, now time.Time) (*models.SafetyConcern, error) {
	args := m.Called(ctx, id, notes, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SafetyConcern), args.Error(1)
}

func (m *MockConcernRepository) ResolveWithAlert(ctx context.Context, concernID int64, alert *models.SafetyAlert, note func(int64) string, now time.Time) error {
	args := m.Called(ctx, concernID, alert, note, now)
	return args.Error(0)
}

// MockAlertRepository is a mock implementation of AlertRepository for testing
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) Create(ctx context.Context, alert *models.SafetyAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepository) Update(ctx context.Context, alert *models.SafetyAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepository) GetByID(ctx context.Context, id int64) (*models.SafetyAlert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SafetyAlert), args.Error(1)
}

func (m *MockAlertRepository) ListActive(ctx context.Context, filter models.AlertFilter) ([]models.SafetyAlert, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SafetyAlert), args.Error(1)
}

func (m *MockAlertRepository) SetActive(ctx context.Context, ids []int64, active bool) ([]models.SafetyAlert, error) {
	args := m.Called(ctx, ids, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SafetyAlert), args.Error(1)
}

func (m *MockAlertRepository) Expire(ctx context.Context, ids []int64, now time.Time) ([]models.SafetyAlert, error) {
	args := m.Called(ctx, ids, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SafetyAlert), args.Error(1)
}

func (m *MockAlertRepository) ExpireElapsed(ctx context.Context, now time.Time) ([]models.SafetyAlert, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SafetyAlert), args.Error(1)
}

// MockBuildingRepository is a mock implementation of BuildingRepository for testing
type MockBuildingRepository struct {
	mock.Mock
}

func (m *MockBuildingRepository) Search(ctx context.Context, q string, limit int) ([]models.Building, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Building), args.Error(1)
}

// MockAlertCache is a mock implementation of cache.AlertCache for testing
type MockAlertCache struct {
	mock.Mock
}

func (m *MockAlertCache) Get(ctx context.Context, filter models.AlertFilter) ([]models.SafetyAlert, cache.Generation, bool, error) {
	args := m.Called(ctx, filter)
	gen := args.Get(1).(cache.Generation)
	if args.Get(0) == nil {
		return nil, gen, args.Bool(2), args.Error(3)
	}
	return args.Get(0).([]models.SafetyAlert), gen, args.Bool(2), args.Error(3)
}

func (m *MockAlertCache) Set(ctx context.Context, gen cache.Generation, filter models.AlertFilter, alerts []models.SafetyAlert) error {
	args := m.Called(ctx, gen, filter, alerts)
	return args.Error(0)
}

func (m *MockAlertCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockPublisher is a mock implementation of notify.Publisher for testing
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event notify.Event, alert models.AlertView) error {
	args := m.Called(ctx, event, alert)
	return args.Error(0)
}

func (m *MockPublisher) Close() {
	m.Called()
}

func ptr[T any](v T) *T {
	return &v
}

// fixedNow is the clock every service test runs at.
var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}
