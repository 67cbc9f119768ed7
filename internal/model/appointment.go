package model

import "time"

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentStatusActive  AppointmentStatus = "ACTIVE"
	AppointmentStatusExpired AppointmentStatus = "EXPIRED"
)

// Appointment represents a booking owned by a single user.
//
// The composite unique index on (owner_id, scheduled_at) turns a concurrent
// double booking into a duplicate-key rejection instead of relying on the
// application-level conflict check alone.
type Appointment struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	OwnerID     uint              `json:"ownerId" gorm:"not null;uniqueIndex:uniq_owner_slot;index"`
	PersonName  string            `json:"personName" gorm:"size:255;not null"`
	Title       string            `json:"title" gorm:"size:255;not null"`
	ScheduledAt time.Time         `json:"scheduledAt" gorm:"not null;uniqueIndex:uniq_owner_slot"`
	Status      AppointmentStatus `json:"status" gorm:"type:varchar(10);not null;default:'ACTIVE';index"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
