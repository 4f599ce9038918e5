package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type DaySlots struct {
	Day       string   `bson:"day" json:"day"`
	TimeSlots []string `bson:"timeSlots" json:"timeSlots"`
}

type Doctor struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProviderID  primitive.ObjectID `bson:"providerId" json:"providerId"`
	Name        string             `bson:"name" json:"name"`
	Specialty   string             `bson:"specialty" json:"specialty"`
	Fee         float64            `bson:"consultationFee" json:"consultationFee"`
	Slots       []DaySlots         `bson:"availableSlots" json:"availableSlots"`
	SlotsPerDay int                `bson:"slotsPerDay" json:"slotsPerDay"`
}
