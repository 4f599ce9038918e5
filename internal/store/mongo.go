package store

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medibook/booking-api/internal/models"
)

type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) appointments() *mongo.Collection {
	return s.db.Collection("appointments")
}

// EnsureIndexes creates the indexes the allocator depends on. The unique
// compound index on (doctorId, date, time, queueNumber) is what makes the
// insert itself the arbiter of queue-number conflicts: of two concurrent
// writers claiming the same number for a slot, exactly one succeeds and the
// other gets a duplicate-key error.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.appointments().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "doctorId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "time", Value: 1},
				{Key: "queueNumber", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			// Non-unique, for provider dashboard queries.
			Keys: bson.D{
				{Key: "providerId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "queueNumber", Value: 1},
			},
		},
	})
	return errors.Wrap(err, "create appointment indexes")
}

func (s *MongoStore) FindMaxQueueNumber(ctx context.Context, doctorID primitive.ObjectID, date string) (int, error) {
	cursor, err := s.appointments().Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"doctorId": doctorID, "date": date}}},
		{{Key: "$group", Value: bson.M{
			"_id":      nil,
			"maxQueue": bson.M{"$max": "$queueNumber"},
		}}},
	})
	if err != nil {
		return 0, errors.Wrap(err, "aggregate max queue number")
	}
	defer cursor.Close(ctx)

	var results []struct {
		MaxQueue int `bson:"maxQueue"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, errors.Wrap(err, "decode max queue number")
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].MaxQueue, nil
}

func (s *MongoStore) CountAppointments(ctx context.Context, doctorID primitive.ObjectID, date, timeSlot string) (int64, error) {
	n, err := s.appointments().CountDocuments(ctx, bson.M{
		"doctorId": doctorID,
		"date":     date,
		"time":     timeSlot,
	})
	return n, errors.Wrap(err, "count slot appointments")
}

func (s *MongoStore) InsertAppointmentIfUnique(ctx context.Context, apt *models.Appointment) error {
	_, err := s.appointments().InsertOne(ctx, apt)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateQueueNumber
	}
	return errors.Wrap(err, "insert appointment")
}

func (s *MongoStore) MoveAppointmentIfUnique(ctx context.Context, id primitive.ObjectID, date, timeSlot string, queueNumber int) error {
	res, err := s.appointments().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"date":        date,
			"time":        timeSlot,
			"queueNumber": queueNumber,
			"status":      models.StatusPending,
		}, "$currentDate": bson.M{"updatedAt": true}},
	)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateQueueNumber
	}
	if err != nil {
		return errors.Wrap(err, "move appointment")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListAppointments(ctx context.Context, doctorID primitive.ObjectID, date, timeSlot string) ([]models.Appointment, error) {
	filter := bson.M{"doctorId": doctorID, "date": date}
	if timeSlot != "" {
		filter["time"] = timeSlot
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "queueNumber", Value: 1},
		{Key: "createdAt", Value: 1},
	})
	cursor, err := s.appointments().Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find appointments")
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, errors.Wrap(err, "decode appointments")
	}
	return appointments, nil
}

func (s *MongoStore) GetAppointment(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	var apt models.Appointment
	err := s.appointments().FindOne(ctx, bson.M{"_id": id}).Decode(&apt)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find appointment")
	}
	return &apt, nil
}

func (s *MongoStore) UpdateAppointmentStatus(ctx context.Context, id primitive.ObjectID, status, notes string) error {
	update := bson.M{"status": status}
	if notes != "" {
		update["notes"] = notes
	}
	res, err := s.appointments().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": update, "$currentDate": bson.M{"updatedAt": true}},
	)
	if err != nil {
		return errors.Wrap(err, "update appointment status")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) FindDoctor(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	var doctor models.Doctor
	err := s.db.Collection("doctors").FindOne(ctx, bson.M{"_id": id}).Decode(&doctor)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find doctor")
	}
	return &doctor, nil
}

func (s *MongoStore) FindProvider(ctx context.Context, id primitive.ObjectID) (*models.HealthcareProvider, error) {
	var provider models.HealthcareProvider
	err := s.db.Collection("providers").FindOne(ctx, bson.M{"_id": id}).Decode(&provider)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find provider")
	}
	return &provider, nil
}
