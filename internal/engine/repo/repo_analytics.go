package repo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/pkg/database"
)

const analyticsCollection = "analytics"

type AnalyticsRepo struct {
	collection *mongo.Collection
}

func NewAnalyticsRepo(db database.MongoDB) *AnalyticsRepo {
	return &AnalyticsRepo{collection: db.GetCollection(analyticsCollection)}
}

func (r *AnalyticsRepo) Create(ctx context.Context, s *model.AnalyticsSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, s)
	return translate(err, "snapshot")
}

func (r *AnalyticsRepo) ListByOrganization(ctx context.Context, org string, limit int64) ([]*model.AnalyticsSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	filter := bson.M{}
	if org != "" {
		filter["collegeId"] = org
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]*model.AnalyticsSnapshot, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots: %w", err)
	}
	return items, nil
}
