package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"apptbook/internal/model"
)

// MockAppointmentRepository is a mock implementation of repository.AppointmentRepository.
type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

func (m *MockAppointmentRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Appointment, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) HasActiveAt(ctx context.Context, ownerID uint, at time.Time, excludeID uint) (bool, error) {
	args := m.Called(ctx, ownerID, at, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAppointmentRepository) Update(ctx context.Context, id, ownerID uint, title string, at time.Time) (int64, error) {
	args := m.Called(ctx, id, ownerID, title, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAppointmentRepository) Delete(ctx context.Context, id, ownerID uint) (int64, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAppointmentRepository) DueOwners(ctx context.Context, now time.Time) ([]uint, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockAppointmentRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestSweeper_Sweep(t *testing.T) {
	mockRepo := new(MockAppointmentRepository)
	mockRepo.On("DueOwners", mock.Anything, mock.AnythingOfType("time.Time")).Return([]uint{1, 3}, nil)
	mockRepo.On("ExpireDue", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(2), nil)

	s := New(mockRepo, nil, time.Second)
	n, err := s.Sweep(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	mockRepo.AssertExpectations(t)
}

func TestSweeper_SweepNothingDue(t *testing.T) {
	mockRepo := new(MockAppointmentRepository)
	mockRepo.On("DueOwners", mock.Anything, mock.AnythingOfType("time.Time")).Return([]uint{}, nil)

	s := New(mockRepo, nil, time.Second)
	n, err := s.Sweep(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, n)
	// no bulk update when nothing is due
	mockRepo.AssertNotCalled(t, "ExpireDue", mock.Anything, mock.Anything)
}

func TestSweeper_SweepIdempotent(t *testing.T) {
	mockRepo := new(MockAppointmentRepository)
	// first pass expires one appointment, second pass finds nothing left
	mockRepo.On("DueOwners", mock.Anything, mock.AnythingOfType("time.Time")).Return([]uint{1}, nil).Once()
	mockRepo.On("ExpireDue", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(1), nil).Once()
	mockRepo.On("DueOwners", mock.Anything, mock.AnythingOfType("time.Time")).Return([]uint{}, nil).Once()

	s := New(mockRepo, nil, time.Second)

	n, err := s.Sweep(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Sweep(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, n)

	mockRepo.AssertExpectations(t)
}

func TestSweeper_SweepError(t *testing.T) {
	dbErr := errors.New("connection refused")

	mockRepo := new(MockAppointmentRepository)
	mockRepo.On("DueOwners", mock.Anything, mock.AnythingOfType("time.Time")).Return(nil, dbErr)

	s := New(mockRepo, nil, time.Second)
	n, err := s.Sweep(context.Background())

	assert.ErrorIs(t, err, dbErr)
	assert.Zero(t, n)
}

func TestSweeper_StartStop(t *testing.T) {
	mockRepo := new(MockAppointmentRepository)
	mockRepo.On("DueOwners", mock.Anything, mock.AnythingOfType("time.Time")).Return([]uint{}, nil).Maybe()

	s := New(mockRepo, nil, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	s.Stop()
}
