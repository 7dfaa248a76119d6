package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/pkg/database"
)

/**
 * @file: repo_appointment.go
 * @description: appointment data access
 */

const appointmentCollection = "appointments"

type AppointmentRepo struct {
	collection *mongo.Collection
}

func NewAppointmentRepo(db database.MongoDB) *AppointmentRepo {
	return &AppointmentRepo{collection: db.GetCollection(appointmentCollection)}
}

func (r *AppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, a)
	return translate(err, "appointment")
}

func (r *AppointmentRepo) GetById(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var a model.Appointment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, translate(err, "appointment")
	}
	return &a, nil
}

func (r *AppointmentRepo) ListByOwner(ctx context.Context, ownerId string) ([]*model.Appointment, error) {
	return r.list(ctx, bson.M{"userId": ownerId})
}

func (r *AppointmentRepo) ListByOrganization(ctx context.Context, org string) ([]*model.Appointment, error) {
	filter := bson.M{}
	if org != "" {
		filter["collegeName"] = org
	}
	return r.list(ctx, filter)
}

func (r *AppointmentRepo) list(ctx context.Context, filter bson.M) ([]*model.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]*model.Appointment, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return items, nil
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id string, from, to model.AppointmentStatus) (*model.Appointment, error) {
	return r.casUpdate(ctx, id, from, bson.M{"status": to})
}

func (r *AppointmentRepo) UpdateDetails(ctx context.Context, id string, from model.AppointmentStatus, d model.AppointmentDetails) (*model.Appointment, error) {
	set := bson.M{}
	if d.Notes != nil {
		set["notes"] = *d.Notes
	}
	if d.CounselorRef != nil {
		set["counsellorId"] = *d.CounselorRef
	}
	return r.casUpdate(ctx, id, from, set)
}

// casUpdate applies set only while the stored status equals from.
func (r *AppointmentRepo) casUpdate(ctx context.Context, id string, from model.AppointmentStatus, set bson.M) (*model.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a model.Appointment
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
		opts,
	).Decode(&a)
	if err == nil {
		return &a, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	// no match: either the record is gone or its status moved on
	n, cerr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if cerr != nil {
		return nil, fmt.Errorf("failed to check appointment: %w", cerr)
	}
	if n == 0 {
		return nil, translate(mongo.ErrNoDocuments, "appointment")
	}
	return nil, ErrStale
}

func (r *AppointmentRepo) CountByOrganization(ctx context.Context, org string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"collegeName": org})
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return n, nil
}

func (r *AppointmentRepo) CreateIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*opTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "scheduledAt", Value: -1}}},
		{Keys: bson.D{{Key: "collegeName", Value: 1}, {Key: "scheduledAt", Value: -1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}
