package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medibook/booking-api/internal/models"
)

func slotAppointments(timeSlot string, queueNumbers ...int) []models.Appointment {
	out := make([]models.Appointment, 0, len(queueNumbers))
	for i, n := range queueNumbers {
		out = append(out, models.Appointment{
			ID:          primitive.NewObjectID(),
			Time:        timeSlot,
			QueueNumber: n,
			CreatedAt:   time.Now().Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

func TestEstimateMiddleOfQueue(t *testing.T) {
	estimator := NewQueueEstimator(0)
	appointments := slotAppointments("09:00", 2, 5, 7)
	target := appointments[1].ID // queue number 5

	estimate := estimator.EstimatePosition(appointments, target, "09:00")
	assert.Equal(t, 2, estimate.Position)
	assert.Equal(t, 15, estimate.WaitMinutes)
	assert.Equal(t, "9:15 AM", estimate.EstimatedTime)
}

func TestEstimateUnknownTargetTreatedAsLast(t *testing.T) {
	estimator := NewQueueEstimator(0)
	appointments := slotAppointments("09:00", 1, 2, 3)

	estimate := estimator.EstimatePosition(appointments, primitive.NewObjectID(), "09:00")
	assert.Equal(t, 3, estimate.Position)
	assert.Equal(t, 30, estimate.WaitMinutes)
}

func TestEstimateNoTargetTreatedAsLast(t *testing.T) {
	estimator := NewQueueEstimator(0)
	appointments := slotAppointments("09:00", 1, 2)

	estimate := estimator.EstimatePosition(appointments, primitive.NilObjectID, "09:00")
	assert.Equal(t, 2, estimate.Position)
	assert.Equal(t, 15, estimate.WaitMinutes)
}

func TestEstimateEmptySlotIsPositionOne(t *testing.T) {
	estimator := NewQueueEstimator(0)

	estimate := estimator.EstimatePosition(nil, primitive.NilObjectID, "09:00")
	assert.Equal(t, 1, estimate.Position)
	assert.Equal(t, 0, estimate.WaitMinutes)
	assert.Equal(t, "9:00 AM", estimate.EstimatedTime)
}

func TestEstimateIgnoresOtherSlots(t *testing.T) {
	estimator := NewQueueEstimator(0)
	appointments := append(slotAppointments("09:00", 1, 2), slotAppointments("11:00", 3, 4, 5)...)
	target := appointments[1].ID // 09:00, queue number 2

	estimate := estimator.EstimatePosition(appointments, target, "09:00")
	assert.Equal(t, 2, estimate.Position)
	assert.Equal(t, 15, estimate.WaitMinutes)
}

func TestEstimateSortsByQueueNumberNotInputOrder(t *testing.T) {
	estimator := NewQueueEstimator(0)
	appointments := slotAppointments("14:00", 9, 4, 6)
	target := appointments[2].ID // queue number 6

	estimate := estimator.EstimatePosition(appointments, target, "14:00")
	assert.Equal(t, 2, estimate.Position)
	assert.Equal(t, "2:15 PM", estimate.EstimatedTime)
}

func TestEstimateIdempotent(t *testing.T) {
	estimator := NewQueueEstimator(0)
	appointments := slotAppointments("09:00", 3, 1, 2)
	target := appointments[0].ID

	first := estimator.EstimatePosition(appointments, target, "09:00")
	second := estimator.EstimatePosition(appointments, target, "09:00")
	assert.Equal(t, first, second)
}

func TestEstimateCustomMinutesPerPatient(t *testing.T) {
	estimator := NewQueueEstimator(10)
	appointments := slotAppointments("09:00", 1, 2, 3)

	estimate := estimator.EstimatePosition(appointments, appointments[2].ID, "09:00")
	assert.Equal(t, 3, estimate.Position)
	assert.Equal(t, 20, estimate.WaitMinutes)
	assert.Equal(t, "9:20 AM", estimate.EstimatedTime)
}

func TestEstimateUnparseableSlotOmitsClockTime(t *testing.T) {
	estimator := NewQueueEstimator(0)
	appointments := slotAppointments("morning", 1)

	estimate := estimator.EstimatePosition(appointments, appointments[0].ID, "morning")
	assert.Equal(t, 1, estimate.Position)
	assert.Empty(t, estimate.EstimatedTime)
}
