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

const counsellorCollection = "counsellors"

type CounsellorRepo struct {
	collection *mongo.Collection
}

func NewCounsellorRepo(db database.MongoDB) *CounsellorRepo {
	return &CounsellorRepo{collection: db.GetCollection(counsellorCollection)}
}

func (r *CounsellorRepo) Create(ctx context.Context, c *model.Counsellor) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, c)
	return translate(err, "counsellor")
}

func (r *CounsellorRepo) GetById(ctx context.Context, id string) (*model.Counsellor, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var c model.Counsellor
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err, "counsellor")
	}
	return &c, nil
}

func (r *CounsellorRepo) ListByOrganization(ctx context.Context, org string) ([]*model.Counsellor, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	filter := bson.M{}
	if org != "" {
		filter["collegeName"] = org
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list counsellors: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]*model.Counsellor, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode counsellors: %w", err)
	}
	return items, nil
}

func (r *CounsellorRepo) Update(ctx context.Context, c *model.Counsellor) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	c.UpdatedAt = time.Now()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return fmt.Errorf("failed to update counsellor: %w", err)
	}
	if result.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "counsellor")
	}
	return nil
}

func (r *CounsellorRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete counsellor: %w", err)
	}
	if result.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments, "counsellor")
	}
	return nil
}
