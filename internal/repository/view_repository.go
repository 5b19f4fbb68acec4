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

type MongoViewRepository struct {
	coll *mongo.Collection
}

func NewViewRepository(db *database.MongoDB) *MongoViewRepository {
	return &MongoViewRepository{coll: db.Collection(CollectionViews)}
}

// Record inserts the (user, video) pair. A duplicate means the user has
// already been counted.
func (r *MongoViewRepository) Record(ctx context.Context, userID, videoID primitive.ObjectID) (bool, error) {
	view := domain.View{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		VideoID:   videoID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, view); err != nil {
		if errors.Is(mapError(err), ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record view: %w", err)
	}
	return true, nil
}

func (r *MongoViewRepository) Delete(ctx context.Context, userID, videoID primitive.ObjectID) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID, "video_id": videoID}); err != nil {
		return fmt.Errorf("failed to delete view: %w", err)
	}
	return nil
}

func (r *MongoViewRepository) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"video_id": videoID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete views: %w", err)
	}
	return res.DeletedCount, nil
}
