package services

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medibook/booking-api/internal/models"
)

const defaultMinutesPerPatient = 15

type Estimate struct {
	Position      int    `json:"position"`
	WaitMinutes   int    `json:"estimatedWaitMinutes"`
	EstimatedTime string `json:"estimatedTime,omitempty"`
}

// QueueEstimator derives a patient's position in a slot's queue and a rough
// wait from it. Pure and deterministic; safe to recompute on every read.
type QueueEstimator struct {
	minutesPerPatient int
}

func NewQueueEstimator(minutesPerPatient int) *QueueEstimator {
	if minutesPerPatient <= 0 {
		minutesPerPatient = defaultMinutesPerPatient
	}
	return &QueueEstimator{minutesPerPatient: minutesPerPatient}
}

// EstimatePosition computes the 1-based position of target among the
// appointments in timeSlot, ordered by queue number. An unknown or zero
// target is treated as the newest entry, i.e. last in the queue. The
// estimated clock time is the slot start plus the wait, on the provider's
// local clock.
func (e *QueueEstimator) EstimatePosition(appointments []models.Appointment, target primitive.ObjectID, timeSlot string) Estimate {
	slot := make([]models.Appointment, 0, len(appointments))
	for _, apt := range appointments {
		if timeSlot == "" || apt.Time == timeSlot {
			slot = append(slot, apt)
		}
	}

	sort.SliceStable(slot, func(i, j int) bool {
		return slot[i].QueueNumber < slot[j].QueueNumber
	})

	position := len(slot)
	if !target.IsZero() {
		for i, apt := range slot {
			if apt.ID == target {
				position = i + 1
				break
			}
		}
	}
	if position < 1 {
		position = 1
	}

	wait := (position - 1) * e.minutesPerPatient
	return Estimate{
		Position:      position,
		WaitMinutes:   wait,
		EstimatedTime: estimatedClock(timeSlot, wait),
	}
}

func estimatedClock(timeSlot string, waitMinutes int) string {
	if timeSlot == "" {
		return ""
	}
	start, err := time.Parse("15:04", timeSlot)
	if err != nil {
		return ""
	}
	return start.Add(time.Duration(waitMinutes) * time.Minute).Format("3:04 PM")
}
