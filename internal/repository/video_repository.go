package repository

import (
	"context"
	"fmt"
	"time"

	"vidtube/internal/domain"
	"vidtube/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoVideoRepository struct {
	coll  *mongo.Collection
	likes *mongo.Collection
}

func NewVideoRepository(db *database.MongoDB) *MongoVideoRepository {
	return &MongoVideoRepository{
		coll:  db.Collection(CollectionVideos),
		likes: db.Collection(CollectionLikes),
	}
}

func (r *MongoVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	now := time.Now().UTC()
	video.ID = primitive.NewObjectID()
	video.CreatedAt = now
	video.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, video); err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

func (r *MongoVideoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error) {
	var video domain.Video
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&video); err != nil {
		return nil, mapError(err)
	}
	return &video, nil
}

// GetByIDs returns the matching videos in no particular order
func (r *MongoVideoRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Video, error) {
	if len(ids) == 0 {
		return []domain.Video{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *MongoVideoRepository) List(ctx context.Context, page int) ([]domain.Video, error) {
	return r.find(ctx, bson.M{}, pageOptions(page, "updated_at"))
}

func (r *MongoVideoRepository) Search(ctx context.Context, query string, page int) ([]domain.Video, error) {
	return r.find(ctx, searchFilter(query), pageOptions(page, "updated_at"))
}

func (r *MongoVideoRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]domain.Video, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"owner": owner}, opts)
}

func (r *MongoVideoRepository) ListLikedBy(ctx context.Context, userID primitive.ObjectID) ([]domain.Video, error) {
	cursor, err := r.likes.Aggregate(ctx, likedVideosPipeline(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load liked videos: %w", err)
	}

	videos := []domain.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("failed to decode liked videos: %w", err)
	}
	return videos, nil
}

// Update writes patch when owner matches and returns the document as it was before
func (r *MongoVideoRepository) Update(ctx context.Context, id, owner primitive.ObjectID, patch domain.VideoPatch) (*domain.Video, error) {
	set := bson.M{
		"title":       patch.Title,
		"description": patch.Description,
		"video_tag":   patch.VideoTag,
		"updated_at":  time.Now().UTC(),
	}
	if patch.VideoFile != "" {
		set["video_file"] = patch.VideoFile
		set["duration"] = patch.Duration
		set["width"] = patch.Width
		set["height"] = patch.Height
	}
	if patch.Thumbnail != "" {
		set["thumbnail"] = patch.Thumbnail
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var before domain.Video
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "owner": owner}, bson.M{"$set": set}, opts).Decode(&before)
	if err != nil {
		return nil, mapError(err)
	}
	return &before, nil
}

func (r *MongoVideoRepository) Delete(ctx context.Context, id, owner primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews bumps the counter without touching updated_at
func (r *MongoVideoRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoVideoRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]domain.Video, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}

	videos := []domain.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("failed to decode videos: %w", err)
	}
	return videos, nil
}

// pageOptions sorts by field descending and selects one page
func pageOptions(page int, field string) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: field, Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(domain.Skip(page)).
		SetLimit(domain.PageSize)
}
