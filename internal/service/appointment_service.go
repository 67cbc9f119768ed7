package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"apptbook/internal/cache"
	"apptbook/internal/errors"
	"apptbook/internal/model"
	"apptbook/internal/repository"
)

const listCacheTTL = time.Minute

// AppointmentService handles the appointment lifecycle. The owner id always
// comes from the verified token, never from request data.
type AppointmentService interface {
	Create(ctx context.Context, ownerID uint, personName, title string, scheduledAt time.Time) (*model.Appointment, error)
	ListForOwner(ctx context.Context, ownerID uint) ([]model.Appointment, error)
	Update(ctx context.Context, id, ownerID uint, title string, scheduledAt time.Time) error
	Delete(ctx context.Context, id, ownerID uint) error
}

type appointmentService struct {
	repo  repository.AppointmentRepository
	cache *cache.Client
}

// NewAppointmentService creates a new appointment service.
func NewAppointmentService(repo repository.AppointmentRepository, cache *cache.Client) AppointmentService {
	return &appointmentService{
		repo:  repo,
		cache: cache,
	}
}

// ListCacheKey returns the cache key holding an owner's appointment list.
func ListCacheKey(ownerID uint) string {
	return fmt.Sprintf("appointments:owner:%d", ownerID)
}

// Create persists a new ACTIVE appointment after checking the booking rules.
func (s *appointmentService) Create(ctx context.Context, ownerID uint, personName, title string, scheduledAt time.Time) (*model.Appointment, error) {
	if strings.TrimSpace(personName) == "" || strings.TrimSpace(title) == "" || scheduledAt.IsZero() {
		return nil, errors.ErrValidation
	}
	if !scheduledAt.After(time.Now()) {
		return nil, errors.ErrPastTime
	}

	taken, err := s.repo.HasActiveAt(ctx, ownerID, scheduledAt, 0)
	if err != nil {
		return nil, fmt.Errorf("conflict check: %w", err)
	}
	if taken {
		return nil, errors.ErrTimeSlotTaken
	}

	appt := &model.Appointment{
		OwnerID:     ownerID,
		PersonName:  personName,
		Title:       title,
		ScheduledAt: scheduledAt,
		Status:      model.AppointmentStatusActive,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		// two concurrent creates can both pass the check; the unique index
		// rejects the loser here
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrTimeSlotTaken
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	_ = s.cache.Delete(ctx, ListCacheKey(ownerID))
	return appt, nil
}

// ListForOwner returns all of the owner's appointments, most recent time
// first, with a short-lived cache in front of the database. Reads never
// trigger expiration; staleness is bounded by the sweep interval.
func (s *appointmentService) ListForOwner(ctx context.Context, ownerID uint) ([]model.Appointment, error) {
	key := ListCacheKey(ownerID)
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached []model.Appointment
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	appts, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	if payload, err := json.Marshal(appts); err == nil {
		_ = s.cache.Set(ctx, key, payload, listCacheTTL)
	}

	return appts, nil
}

// Update rewrites title and time of an owned appointment, re-validating the
// same rules as Create. The conflict check excludes the record itself, so
// keeping the current time slot is allowed.
func (s *appointmentService) Update(ctx context.Context, id, ownerID uint, title string, scheduledAt time.Time) error {
	if strings.TrimSpace(title) == "" || scheduledAt.IsZero() {
		return errors.ErrValidation
	}
	if !scheduledAt.After(time.Now()) {
		return errors.ErrPastTime
	}

	taken, err := s.repo.HasActiveAt(ctx, ownerID, scheduledAt, id)
	if err != nil {
		return fmt.Errorf("conflict check: %w", err)
	}
	if taken {
		return errors.ErrTimeSlotTaken
	}

	rows, err := s.repo.Update(ctx, id, ownerID, title, scheduledAt)
	if err != nil {
		if err == gorm.ErrDuplicatedKey {
			return errors.ErrTimeSlotTaken
		}
		return fmt.Errorf("update appointment: %w", err)
	}
	if rows == 0 {
		return errors.ErrNotFoundOrUnauthorized
	}

	_ = s.cache.Delete(ctx, ListCacheKey(ownerID))
	return nil
}

// Delete permanently removes an owned appointment.
func (s *appointmentService) Delete(ctx context.Context, id, ownerID uint) error {
	rows, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if rows == 0 {
		return errors.ErrNotFoundOrUnauthorized
	}

	_ = s.cache.Delete(ctx, ListCacheKey(ownerID))
	return nil
}
