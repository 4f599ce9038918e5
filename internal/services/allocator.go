package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medibook/booking-api/internal/models"
	"github.com/medibook/booking-api/internal/store"
)

// maxBookingAttempts bounds the conflict-retry loop. Exceeding it surfaces
// ErrQueueAssignmentExhausted to the caller instead of looping forever.
const maxBookingAttempts = 5

var (
	// ErrQueueAssignmentExhausted means every retry lost the race for a queue
	// number. The booking was not persisted; the caller can simply resubmit.
	ErrQueueAssignmentExhausted = errors.New("failed to book after multiple attempts")

	// ErrScopeNotFound means the referenced doctor or provider does not exist.
	ErrScopeNotFound = errors.New("doctor not found")

	// ErrNotReschedulable covers completed and cancelled appointments.
	ErrNotReschedulable = errors.New("appointment can no longer be rescheduled")

	// ErrNotCancellable covers completed appointments.
	ErrNotCancellable = errors.New("cannot cancel a completed appointment")
)

type BookingRequest struct {
	DoctorID     primitive.ObjectID
	PatientID    primitive.ObjectID
	PatientName  string
	PatientPhone string
	Date         string
	Time         string
	Notes        string
}

type WalkInRequest struct {
	DoctorID     primitive.ObjectID
	PatientName  string
	PatientPhone string
	Date         string
	Time         string
	Notes        string
}

// QueueAllocator assigns duplicate-free queue numbers to new appointments.
//
// There is no counter record and no in-process lock: requests may run in
// separate processes, so the store's unique index on
// (doctorId, date, time, queueNumber) is the only arbiter. The reads below
// (max scan, slot count) are just hints for the first candidate number; when
// the guarded write is rejected the allocator picks a higher candidate and
// tries again, up to maxBookingAttempts.
type QueueAllocator struct {
	store store.AppointmentStore
	log   *logrus.Logger
}

func NewQueueAllocator(st store.AppointmentStore, log *logrus.Logger) *QueueAllocator {
	return &QueueAllocator{store: st, log: log}
}

// Book creates a patient-initiated appointment. The candidate number is
// max(queueNumber for doctor+date across all slots) + 1, re-read on every
// attempt so a newly assigned number is always above everything durably
// inserted before it.
func (a *QueueAllocator) Book(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	doctor, provider, err := a.resolveScope(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxBookingAttempts; attempt++ {
		maxQueue, err := a.store.FindMaxQueueNumber(ctx, doctor.ID, req.Date)
		if err != nil {
			return nil, err
		}

		apt := &models.Appointment{
			ID:           primitive.NewObjectID(),
			DoctorID:     doctor.ID,
			DoctorName:   doctor.Name,
			ProviderID:   provider.ID,
			ProviderName: provider.Name,
			PatientID:    &req.PatientID,
			PatientName:  req.PatientName,
			PatientPhone: req.PatientPhone,
			Date:         req.Date,
			Time:         req.Time,
			QueueNumber:  maxQueue + 1,
			Status:       models.StatusPending,
			Fee:          doctor.Fee,
			Notes:        req.Notes,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		err = a.store.InsertAppointmentIfUnique(ctx, apt)
		if err == nil {
			return apt, nil
		}
		if !errors.Is(err, store.ErrDuplicateQueueNumber) {
			return nil, err
		}
		a.log.WithFields(logrus.Fields{
			"doctorId":    doctor.ID.Hex(),
			"date":        req.Date,
			"time":        req.Time,
			"queueNumber": apt.QueueNumber,
			"attempt":     attempt,
		}).Warn("queue number taken, retrying")
	}

	return nil, ErrQueueAssignmentExhausted
}

// RegisterWalkIn creates a front-desk appointment for a patient present at
// the facility. The first candidate is count(slot)+1; retries bump the
// candidate past whatever number lost the race, since a gappy slot can make
// the count point at an already-taken value indefinitely.
func (a *QueueAllocator) RegisterWalkIn(ctx context.Context, req WalkInRequest) (*models.Appointment, error) {
	doctor, provider, err := a.resolveScope(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	count, err := a.store.CountAppointments(ctx, doctor.ID, req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	candidate := int(count) + 1

	for attempt := 1; attempt <= maxBookingAttempts; attempt++ {
		apt := &models.Appointment{
			ID:           primitive.NewObjectID(),
			DoctorID:     doctor.ID,
			DoctorName:   doctor.Name,
			ProviderID:   provider.ID,
			ProviderName: provider.Name,
			IsWalkIn:     true,
			PatientName:  req.PatientName,
			PatientPhone: req.PatientPhone,
			Date:         req.Date,
			Time:         req.Time,
			QueueNumber:  candidate,
			Status:       models.StatusConfirmed,
			Fee:          doctor.Fee,
			Notes:        req.Notes,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		err = a.store.InsertAppointmentIfUnique(ctx, apt)
		if err == nil {
			return apt, nil
		}
		if !errors.Is(err, store.ErrDuplicateQueueNumber) {
			return nil, err
		}
		a.log.WithFields(logrus.Fields{
			"doctorId":    doctor.ID.Hex(),
			"date":        req.Date,
			"time":        req.Time,
			"queueNumber": candidate,
			"attempt":     attempt,
		}).Warn("walk-in queue number taken, retrying")
		candidate++
	}

	return nil, ErrQueueAssignmentExhausted
}

// Reschedule moves an appointment to a new date and time, re-entering the
// allocation protocol for the new scope. Other appointments keep their
// numbers; the old number stays allocated in its old scope.
func (a *QueueAllocator) Reschedule(ctx context.Context, id primitive.ObjectID, newDate, newTime string) (*models.Appointment, error) {
	apt, err := a.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.Status == models.StatusCompleted || apt.Status == models.StatusCancelled {
		return nil, ErrNotReschedulable
	}

	for attempt := 1; attempt <= maxBookingAttempts; attempt++ {
		maxQueue, err := a.store.FindMaxQueueNumber(ctx, apt.DoctorID, newDate)
		if err != nil {
			return nil, err
		}

		err = a.store.MoveAppointmentIfUnique(ctx, id, newDate, newTime, maxQueue+1)
		if err == nil {
			apt.Date = newDate
			apt.Time = newTime
			apt.QueueNumber = maxQueue + 1
			apt.Status = models.StatusPending
			return apt, nil
		}
		if !errors.Is(err, store.ErrDuplicateQueueNumber) {
			return nil, err
		}
		a.log.WithFields(logrus.Fields{
			"appointmentId": id.Hex(),
			"date":          newDate,
			"time":          newTime,
			"queueNumber":   maxQueue + 1,
			"attempt":       attempt,
		}).Warn("reschedule queue number taken, retrying")
	}

	return nil, ErrQueueAssignmentExhausted
}

// Cancel marks an appointment cancelled. The queue number stays allocated:
// no renumbering, no compaction, no effect on any other appointment.
func (a *QueueAllocator) Cancel(ctx context.Context, id primitive.ObjectID, reason string) error {
	apt, err := a.store.GetAppointment(ctx, id)
	if err != nil {
		return err
	}
	if apt.Status == models.StatusCompleted {
		return ErrNotCancellable
	}

	notes := "Cancelled - no reason provided"
	if reason != "" {
		notes = "Cancelled - " + reason
	}
	return a.store.UpdateAppointmentStatus(ctx, id, models.StatusCancelled, notes)
}

func (a *QueueAllocator) resolveScope(ctx context.Context, doctorID primitive.ObjectID) (*models.Doctor, *models.HealthcareProvider, error) {
	doctor, err := a.store.FindDoctor(ctx, doctorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrScopeNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	provider, err := a.store.FindProvider(ctx, doctor.ProviderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrScopeNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return doctor, provider, nil
}
