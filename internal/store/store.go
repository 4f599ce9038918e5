package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medibook/booking-api/internal/models"
)

var (
	// ErrDuplicateQueueNumber means the unique index on
	// (doctorId, date, time, queueNumber) rejected a write. The queue
	// allocator recovers from this by retrying with the next number;
	// nothing else should.
	ErrDuplicateQueueNumber = errors.New("queue number already taken")

	ErrNotFound = errors.New("not found")
)

// AppointmentStore is the persistence surface the queue allocator and the
// position estimator run against. The appointment collection is the single
// source of truth for queue numbers; there is no separate counter record.
type AppointmentStore interface {
	// FindMaxQueueNumber returns the highest queue number assigned for a
	// doctor on a date across all time slots, or 0 when the day is empty.
	// This is only a hint: the guarded insert is what arbitrates conflicts.
	FindMaxQueueNumber(ctx context.Context, doctorID primitive.ObjectID, date string) (int, error)

	// CountAppointments counts appointments for one exact slot.
	CountAppointments(ctx context.Context, doctorID primitive.ObjectID, date, timeSlot string) (int64, error)

	// InsertAppointmentIfUnique inserts apt, returning ErrDuplicateQueueNumber
	// when another appointment already holds the same
	// (doctorId, date, time, queueNumber).
	InsertAppointmentIfUnique(ctx context.Context, apt *models.Appointment) error

	// MoveAppointmentIfUnique rewrites an appointment's slot and queue number
	// under the same uniqueness guard as insertion. Used by reschedule.
	MoveAppointmentIfUnique(ctx context.Context, id primitive.ObjectID, date, timeSlot string, queueNumber int) error

	// ListAppointments returns appointments for a doctor and date ordered by
	// queue number ascending, creation time on ties. Empty timeSlot lists the
	// whole day.
	ListAppointments(ctx context.Context, doctorID primitive.ObjectID, date, timeSlot string) ([]models.Appointment, error)

	GetAppointment(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id primitive.ObjectID, status, notes string) error

	FindDoctor(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
	FindProvider(ctx context.Context, id primitive.ObjectID) (*models.HealthcareProvider, error)
}
