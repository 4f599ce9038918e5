package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Appointment statuses. Cancelled appointments keep their queue number;
// the allocator never reclaims or compacts numbers.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Appointment struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	DoctorID     primitive.ObjectID  `bson:"doctorId" json:"doctorId"`
	DoctorName   string              `bson:"doctorName" json:"doctorName"`
	ProviderID   primitive.ObjectID  `bson:"providerId" json:"providerId"`
	ProviderName string              `bson:"providerName" json:"providerName"`
	PatientID    *primitive.ObjectID `bson:"patientId,omitempty" json:"patientId,omitempty"` // nil for walk-ins
	IsWalkIn     bool                `bson:"isWalkIn" json:"isWalkIn"`
	PatientName  string              `bson:"patientName" json:"patientName"`
	PatientPhone string              `bson:"patientPhone" json:"patientPhone"`
	Date         string              `bson:"date" json:"date"` // YYYY-MM-DD, provider-local
	Time         string              `bson:"time" json:"time"` // slot label, e.g. "09:00"
	QueueNumber  int                 `bson:"queueNumber" json:"queueNumber"`
	Status       string              `bson:"status" json:"status"`
	Fee          float64             `bson:"consultationFee" json:"consultationFee"`
	Notes        string              `bson:"notes" json:"notes"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}
