package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type HealthcareProvider struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string             `bson:"name" json:"name"`
	Type    string             `bson:"type" json:"type"` // "pharmacy", "clinic" or "hospital"
	Address string             `bson:"address" json:"address"`
	Phone   string             `bson:"phone" json:"phone"`
}
