package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"apptbook/internal/model"
)

// AppointmentRepository defines appointment persistence operations.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Appointment, error)
	HasActiveAt(ctx context.Context, ownerID uint, at time.Time, excludeID uint) (bool, error)
	Update(ctx context.Context, id, ownerID uint, title string, at time.Time) (int64, error)
	Delete(ctx context.Context, id, ownerID uint) (int64, error)
	DueOwners(ctx context.Context, now time.Time) ([]uint, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new appointment repository.
func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

// Create creates a new appointment record.
func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	return r.db.WithContext(ctx).Create(appt).Error
}

// ListByOwner lists all appointments of an owner, most recent time first.
func (r *appointmentRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Appointment, error) {
	var appts []model.Appointment
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("scheduled_at DESC").
		Find(&appts).Error; err != nil {
		return nil, err
	}
	return appts, nil
}

// HasActiveAt reports whether the owner already has an ACTIVE appointment at
// the given time. excludeID leaves out the record being updated; pass 0 on create.
func (r *appointmentRepository) HasActiveAt(ctx context.Context, ownerID uint, at time.Time, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("owner_id = ? AND scheduled_at = ? AND status = ?", ownerID, at, model.AppointmentStatusActive)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update rewrites title and scheduled time of the appointment matching both id
// and owner, returning the number of rows touched. Zero rows means the record
// does not exist or belongs to someone else; callers cannot tell which.
func (r *appointmentRepository) Update(ctx context.Context, id, ownerID uint, title string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(map[string]interface{}{
			"title":        title,
			"scheduled_at": at,
		})
	return res.RowsAffected, res.Error
}

// Delete permanently removes the appointment matching both id and owner.
func (r *appointmentRepository) Delete(ctx context.Context, id, ownerID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Appointment{})
	return res.RowsAffected, res.Error
}

// DueOwners returns the distinct owners holding ACTIVE appointments whose
// scheduled time has passed. Collected before a sweep so their cached lists
// can be invalidated afterwards.
func (r *appointmentRepository) DueOwners(ctx context.Context, now time.Time) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("status = ? AND scheduled_at <= ?", model.AppointmentStatusActive, now).
		Distinct().
		Pluck("owner_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ExpireDue flips every due ACTIVE appointment to EXPIRED in one statement.
// The predicate is idempotent, so a failed run is simply retried next tick.
func (r *appointmentRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("status = ? AND scheduled_at <= ?", model.AppointmentStatusActive, now).
		Update("status", model.AppointmentStatusExpired)
	return res.RowsAffected, res.Error
}
