package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jonpan30062/newsaferoute/internal/models"
	"github.com/jonpan30062/newsaferoute/internal/services"
)

// MockAlertService is a mock implementation of services.AlertService for testing
type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) ListActive(ctx context.Context, filter models.AlertFilter) ([]models.AlertView, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AlertView), args.Error(1)
}

func (m *MockAlertService) Get(ctx context.Context, id int64) (models.AlertView, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.AlertView), args.Error(1)
}

func (m *MockAlertService) Create(ctx context.Context, input services.AlertInput, createdBy *int64) (*models.SafetyAlert, error) {
	args := m.Called(ctx, input, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SafetyAlert), args.Error(1)
}

func (m *MockAlertService) Update(ctx context.Context, id int64, input services.AlertInput) (*models.SafetyAlert, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SafetyAlert), args.Error(1)
}

func (m *MockAlertService) SetActive(ctx context.Context, ids []int64, active bool) (int, error) {
	args := m.Called(ctx, ids, active)
	return args.Int(0), args.Error(1)
}

func (m *MockAlertService) Expire(ctx context.Context, ids []int64) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

func (m *MockAlertService) ExpireElapsed(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockConcernService is a mock implementation of services.ConcernService for testing
type MockConcernService struct {
	mock.Mock
}

func (m *MockConcernService) Submit(ctx context.Context, reporterID *int64, input services.ConcernInput) (*models.SafetyConcern, error) {
	args := m.Called(ctx, reporterID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SafetyConcern), args.Error(1)
}

func (m *MockConcernService) Get(ctx context.Context, id int64) (*models.SafetyConcern, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SafetyConcern), args.Error(1)
}

func (m *MockConcernService) List(ctx context.Context, filter models.ConcernFilter) (*services.ConcernPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ConcernPage), args.Error(1)
}

func (m *MockConcernService) SetStatus(ctx context.Context, id int64, status models.ConcernStatus) (*models.SafetyConcern, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SafetyConcern), args.Error(1)
}

func (m *MockConcernService) UpdateNotes(ctx context.Context, id int64, notes string) (*models.SafetyConcern, error) {
	args := m.Called(ctx, id, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SafetyConcern), args.Error(1)
}

// MockApprovalService is a mock implementation of services.ApprovalService for testing
type MockApprovalService struct {
	mock.Mock
}

func (m *MockApprovalService) Approve(ctx context.Context, concernID int64, reviewer *int64) (int64, error) {
	args := m.Called(ctx, concernID, reviewer)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockApprovalService) ApproveBatch(ctx context.Context, concernIDs []int64, reviewer *int64) services.BatchResult {
	args := m.Called(ctx, concernIDs, reviewer)
	return args.Get(0).(services.BatchResult)
}

// MockBuildingService is a mock implementation of services.BuildingService for testing
type MockBuildingService struct {
	mock.Mock
}

func (m *MockBuildingService) Search(ctx context.Context, q string, limit int) ([]models.Building, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Building), args.Error(1)
}

// stubPinger reports a fixed ping result.
type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}
