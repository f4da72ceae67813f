package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jonpan30062/newsaferoute/internal/logger"
	"github.com/jonpan30062/newsaferoute/internal/models"
	"github.com/jonpan30062/newsaferoute/internal/notify"
	"github.com/jonpan30062/newsaferoute/internal/repository"
)

type approvalFixture struct {
	repo      *MockConcernRepository
	cache     *MockAlertCache
	publisher *MockPublisher
	service   *approvalService
}

func newApprovalFixture() *approvalFixture {
	f := &approvalFixture{
		repo:      new(MockConcernRepository),
		cache:     new(MockAlertCache),
		publisher: new(MockPublisher),
	}
	f.service = newApprovalService(f.repo, f.cache, f.publisher, logger.New("test"))
	f.service.now = fixedClock
	return f
}

func locatedConcern(id int64, category models.ConcernCategory) *models.SafetyConcern {
	return &models.SafetyConcern{
		ID:              id,
		LocationAddress: "Ramp behind the library",
		Latitude:        ptr(33.7756),
		Longitude:       ptr(-84.3963),
		Category:        category,
		Description:     "Broken handrail on ramp",
		Status:          models.ConcernPending,
	}
}

// expectResolve stubs a successful transaction that assigns alertID.
func (f *approvalFixture) expectResolve(concernID, alertID int64) *mock.Call {
	return f.repo.On("ResolveWithAlert", mock.Anything, concernID, mock.AnythingOfType("*models.SafetyAlert"), mock.Anything, fixedNow).
		Run(func(args mock.Arguments) {
			args.Get(2).(*models.SafetyAlert).ID = alertID
		}).
		Return(nil)
}

func TestApprove_UnsafePathCreatesHazardCircle(t *testing.T) {
	// Arrange
	f := newApprovalFixture()
	ctx := context.Background()
	reviewer := ptr(int64(5))
	concern := locatedConcern(10, models.CategoryUnsafePath)

	f.repo.On("GetByID", ctx, int64(10)).Return(concern, nil)
	f.expectResolve(10, 99)
	f.cache.On("Invalidate", ctx).Return(nil)
	f.publisher.On("Publish", ctx, notify.EventCreated, mock.MatchedBy(func(v models.AlertView) bool {
		return v.ID == 99 && v.IsCurrentlyActive
	})).Return(nil)

	// Act
	alertID, err := f.service.Approve(ctx, 10, reviewer)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(99), alertID)

	alert := f.repo.Calls[1].Arguments.Get(2).(*models.SafetyAlert)
	assert.Equal(t, models.AlertHazard, alert.AlertType)
	assert.Equal(t, models.SeverityMedium, alert.Severity)
	assert.Equal(t, models.LocationCircle, alert.LocationType)
	require.NotNil(t, alert.Radius)
	assert.Equal(t, 76.2, *alert.Radius)
	assert.True(t, strings.HasPrefix(alert.Title, "Unsafe Path - "))
	assert.Equal(t, "Unsafe Path - Ramp behind the library", alert.Title)
	assert.Equal(t, concern.Description, alert.Description)
	assert.Equal(t, concern.LocationAddress, *alert.Address)
	assert.Equal(t, concern.Latitude, alert.Latitude)
	assert.Equal(t, concern.Longitude, alert.Longitude)
	assert.True(t, alert.IsActive)
	assert.Equal(t, reviewer, alert.CreatedBy)
	assert.Equal(t, int64(10), *alert.SourceConcernID)

	note := f.repo.Calls[1].Arguments.Get(3).(func(int64) string)
	assert.Equal(t, "Approved and converted to Safety Alert #99", note(99))

	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestApprove_MissingLocation(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()

	concern := locatedConcern(11, models.CategoryBrokenLight)
	concern.Longitude = nil
	f.repo.On("GetByID", ctx, int64(11)).Return(concern, nil)

	alertID, err := f.service.Approve(ctx, 11, nil)

	assert.ErrorIs(t, err, ErrMissingLocation)
	assert.Zero(t, alertID)
	assert.Equal(t, models.ConcernPending, concern.Status, "status stays unchanged")
	f.repo.AssertNotCalled(t, "ResolveWithAlert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestApprove_StatusGuards(t *testing.T) {
	tests := []struct {
		name    string
		status  models.ConcernStatus
		wantErr error
	}{
		{name: "resolved", status: models.ConcernResolved, wantErr: ErrAlreadyResolved},
		{name: "dismissed", status: models.ConcernDismissed, wantErr: ErrNotApprovable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newApprovalFixture()
			ctx := context.Background()

			concern := locatedConcern(12, models.CategoryObstruction)
			concern.Status = tt.status
			f.repo.On("GetByID", ctx, int64(12)).Return(concern, nil)

			_, err := f.service.Approve(ctx, 12, nil)

			assert.ErrorIs(t, err, tt.wantErr)
			f.repo.AssertNotCalled(t, "ResolveWithAlert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestApprove_ApprovableStatuses(t *testing.T) {
	for _, status := range []models.ConcernStatus{models.ConcernPending, models.ConcernApproved, models.ConcernInReview} {
		t.Run(string(status), func(t *testing.T) {
			f := newApprovalFixture()
			ctx := context.Background()

			concern := locatedConcern(13, models.CategoryVandalism)
			concern.Status = status
			f.repo.On("GetByID", ctx, int64(13)).Return(concern, nil)
			f.expectResolve(13, 1)
			f.cache.On("Invalidate", ctx).Return(nil)
			f.publisher.On("Publish", ctx, notify.EventCreated, mock.Anything).Return(nil)

			_, err := f.service.Approve(ctx, 13, nil)
			assert.NoError(t, err)
		})
	}
}

func TestApprove_NotFound(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, int64(404)).Return(nil, repository.ErrNotFound)

	_, err := f.service.Approve(ctx, 404, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApprove_LostRaceReportsAlreadyResolved(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, int64(14)).Return(locatedConcern(14, models.CategoryOther), nil)
	f.repo.On("ResolveWithAlert", ctx, int64(14), mock.Anything, mock.Anything, fixedNow).
		Return(repository.ErrConflict)

	_, err := f.service.Approve(ctx, 14, nil)

	assert.ErrorIs(t, err, ErrAlreadyResolved)
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_SideEffectFailuresAreNotFatal(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, int64(15)).Return(locatedConcern(15, models.CategoryMaintenance), nil)
	f.expectResolve(15, 7)
	f.cache.On("Invalidate", ctx).Return(errors.New("redis down"))
	f.publisher.On("Publish", ctx, notify.EventCreated, mock.Anything).Return(errors.New("broker down"))

	alertID, err := f.service.Approve(ctx, 15, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(7), alertID)
}

func TestApprove_DatabaseError(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()
	dbErr := errors.New("connection reset")

	f.repo.On("GetByID", ctx, int64(16)).Return(locatedConcern(16, models.CategoryOther), nil)
	f.repo.On("ResolveWithAlert", ctx, int64(16), mock.Anything, mock.Anything, fixedNow).Return(dbErr)

	_, err := f.service.Approve(ctx, 16, nil)

	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, CodeInternal, ErrorCode(err))
}

func TestApproveBatch_SkipsFailuresIndependently(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()

	noCoords := locatedConcern(2, models.CategoryBrokenLight)
	noCoords.Latitude = nil
	noCoords.Longitude = nil

	f.repo.On("GetByID", ctx, int64(1)).Return(locatedConcern(1, models.CategoryUnsafePath), nil)
	f.repo.On("GetByID", ctx, int64(2)).Return(noCoords, nil)
	f.repo.On("GetByID", ctx, int64(3)).Return(locatedConcern(3, models.CategoryObstruction), nil)
	f.expectResolve(1, 101)
	f.expectResolve(3, 103)
	f.cache.On("Invalidate", ctx).Return(nil)
	f.publisher.On("Publish", ctx, notify.EventCreated, mock.Anything).Return(nil)

	result := f.service.ApproveBatch(ctx, []int64{1, 2, 3}, ptr(int64(5)))

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []int64{101, 103}, result.AlertIDs)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, int64(2), result.Errors[0].ConcernID)
	assert.Equal(t, CodeMissingLocation, result.Errors[0].Code)
	f.publisher.AssertNumberOfCalls(t, "Publish", 2)
}

func TestApproveBatch_Empty(t *testing.T) {
	f := newApprovalFixture()

	result := f.service.ApproveBatch(context.Background(), nil, nil)

	assert.Zero(t, result.Created)
	assert.Zero(t, result.Skipped)
	assert.NotNil(t, result.AlertIDs)
	assert.NotNil(t, result.Errors)
}

func TestAlertTypeFor(t *testing.T) {
	tests := map[models.ConcernCategory]models.AlertType{
		models.CategoryBrokenLight: models.AlertMaintenance,
		models.CategoryUnsafePath:  models.AlertHazard,
		models.CategoryObstruction: models.AlertHazard,
		models.CategoryVandalism:   models.AlertOther,
		models.CategoryMaintenance: models.AlertMaintenance,
		models.CategoryOther:       models.AlertOther,
		"graffiti":                 models.AlertOther,
	}

	for category, want := range tests {
		assert.Equal(t, want, AlertTypeFor(category), string(category))
	}
}

func TestAlertFromConcern_TruncatesAddressInTitle(t *testing.T) {
	concern := locatedConcern(1, models.CategoryBrokenLight)
	concern.LocationAddress = strings.Repeat("é", 60)

	alert := AlertFromConcern(concern, nil)

	assert.Equal(t, "Broken Light - "+strings.Repeat("é", 50), alert.Title)
	assert.Equal(t, concern.LocationAddress, *alert.Address, "address keeps the full text")
	assert.Nil(t, alert.CreatedBy)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, CodeNotFound, ErrorCode(ErrNotFound))
	assert.Equal(t, CodeMissingLocation, ErrorCode(ErrMissingLocation))
	assert.Equal(t, CodeInvalidStatus, ErrorCode(ErrInvalidStatus))
	assert.Equal(t, CodeAlreadyResolved, ErrorCode(ErrAlreadyResolved))
	assert.Equal(t, CodeNotApprovable, ErrorCode(ErrNotApprovable))
	assert.Equal(t, CodeValidation, ErrorCode(models.ValidationErrors{{Field: "title", Reason: "is required"}}))
	assert.Equal(t, CodeInternal, ErrorCode(errors.New("boom")))
}
