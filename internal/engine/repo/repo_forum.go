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
 * @file: repo_forum.go
 * @description: forum post data access
 */

const forumCollection = "forumposts"

type ForumRepo struct {
	collection *mongo.Collection
}

func NewForumRepo(db database.MongoDB) *ForumRepo {
	return &ForumRepo{collection: db.GetCollection(forumCollection)}
}

func (r *ForumRepo) Create(ctx context.Context, p *model.ForumPost) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if p.Comments == nil {
		p.Comments = []model.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, p)
	return translate(err, "post")
}

func (r *ForumRepo) GetById(ctx context.Context, id string) (*model.ForumPost, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var p model.ForumPost
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err, "post")
	}
	return &p, nil
}

func (r *ForumRepo) List(ctx context.Context, org string, limit int64) ([]*model.ForumPost, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	filter := bson.M{}
	if org != "" {
		filter["collegeName"] = org
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := make([]*model.ForumPost, 0)
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

// AppendComment pushes c atomically so concurrent comments are never lost.
func (r *ForumRepo) AppendComment(ctx context.Context, id string, c model.Comment) (*model.ForumPost, error) {
	return r.update(ctx, id, bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

// IncrementUpvotes increments atomically and returns the post after the write.
func (r *ForumRepo) IncrementUpvotes(ctx context.Context, id string) (*model.ForumPost, error) {
	return r.update(ctx, id, bson.M{
		"$inc": bson.M{"upvotes": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	})
}

func (r *ForumRepo) update(ctx context.Context, id string, update bson.M) (*model.ForumPost, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p model.ForumPost
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p); err != nil {
		return nil, translate(err, "post")
	}
	return &p, nil
}

func (r *ForumRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments, "post")
	}
	return nil
}

func (r *ForumRepo) CountByOrganization(ctx context.Context, org string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"collegeName": org})
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}

func (r *ForumRepo) CreateIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*opTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "collegeName", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create forum indexes: %w", err)
	}
	return nil
}
