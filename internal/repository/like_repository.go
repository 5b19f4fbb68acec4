package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidtube/internal/domain"
	"vidtube/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoLikeRepository struct {
	coll *mongo.Collection
}

func NewLikeRepository(db *database.MongoDB) *MongoLikeRepository {
	return &MongoLikeRepository{coll: db.Collection(CollectionLikes)}
}

func likeKey(userID, modelID primitive.ObjectID, target domain.LikeTarget) bson.M {
	return bson.M{"user_id": userID, "model_id": modelID, "model_name": target}
}

// Toggle removes an existing like or inserts a new one. The unique index on
// (user_id, model_id, model_name) settles concurrent toggles.
func (r *MongoLikeRepository) Toggle(ctx context.Context, userID, modelID primitive.ObjectID, target domain.LikeTarget) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, likeKey(userID, modelID, target))
	if err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	like := domain.Like{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		ModelID:   modelID,
		ModelName: target,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, like); err != nil {
		if errors.Is(mapError(err), ErrDuplicate) {
			return true, nil
		}
		return false, fmt.Errorf("failed to insert like: %w", err)
	}
	return true, nil
}

func (r *MongoLikeRepository) Exists(ctx context.Context, userID, modelID primitive.ObjectID, target domain.LikeTarget) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, likeKey(userID, modelID, target))
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return n > 0, nil
}

func (r *MongoLikeRepository) Count(ctx context.Context, modelID primitive.ObjectID, target domain.LikeTarget) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"model_id": modelID, "model_name": target})
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return n, nil
}

func (r *MongoLikeRepository) DeleteForTargets(ctx context.Context, modelIDs []primitive.ObjectID, target domain.LikeTarget) (int64, error) {
	if len(modelIDs) == 0 {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"model_id": bson.M{"$in": modelIDs}, "model_name": target})
	if err != nil {
		return 0, fmt.Errorf("failed to delete likes: %w", err)
	}
	return res.DeletedCount, nil
}
