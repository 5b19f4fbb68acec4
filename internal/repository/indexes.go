package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Index names referenced when mapping duplicate key errors
const (
	IndexUserUsername     = "users_username_unique"
	IndexUserEmail        = "users_email_unique"
	IndexLikeUnique       = "likes_user_model_unique"
	IndexViewUnique       = "views_user_video_unique"
	IndexSubscriptionEdge = "subscriptions_edge_unique"
)

// IndexSet lists the indexes of one collection
type IndexSet struct {
	Collection string
	Models     []mongo.IndexModel
}

// Indexes returns every index the application relies on
func Indexes() []IndexSet {
	return []IndexSet{
		{
			Collection: CollectionUsers,
			Models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(IndexUserUsername)},
				{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(IndexUserEmail)},
			},
		},
		{
			Collection: CollectionVideos,
			Models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "updated_at", Value: -1}}, Options: options.Index().SetName("videos_updated_at")},
				{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("videos_owner_created_at")},
			},
		},
		{
			Collection: CollectionComments,
			Models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "video_id", Value: 1}, {Key: "parent_comment_id", Value: 1}, {Key: "updated_at", Value: -1}}, Options: options.Index().SetName("comments_video_parent")},
				{Keys: bson.D{{Key: "parent_comment_id", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("comments_parent_created_at")},
			},
		},
		{
			Collection: CollectionLikes,
			Models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "model_id", Value: 1}, {Key: "model_name", Value: 1}}, Options: options.Index().SetUnique(true).SetName(IndexLikeUnique)},
				{Keys: bson.D{{Key: "model_id", Value: 1}, {Key: "model_name", Value: 1}}, Options: options.Index().SetName("likes_model")},
			},
		},
		{
			Collection: CollectionViews,
			Models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "video_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName(IndexViewUnique)},
				{Keys: bson.D{{Key: "video_id", Value: 1}}, Options: options.Index().SetName("views_video")},
			},
		},
		{
			Collection: CollectionSubscriptions,
			Models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "subscriber", Value: 1}, {Key: "subscribe_to", Value: 1}}, Options: options.Index().SetUnique(true).SetName(IndexSubscriptionEdge)},
				{Keys: bson.D{{Key: "subscribe_to", Value: 1}}, Options: options.Index().SetName("subscriptions_channel")},
			},
		},
		{
			Collection: CollectionSongs,
			Models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("songs_created_at")},
			},
		},
	}
}

// EnsureIndexes creates missing indexes. Existing ones are left untouched.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, set := range Indexes() {
		if _, err := db.Collection(set.Collection).Indexes().CreateMany(ctx, set.Models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", set.Collection, err)
		}
	}
	return nil
}

// DropIndexes removes every non _id index managed by the application
func DropIndexes(ctx context.Context, db *mongo.Database) error {
	for _, set := range Indexes() {
		if _, err := db.Collection(set.Collection).Indexes().DropAll(ctx); err != nil {
			return fmt.Errorf("failed to drop indexes on %s: %w", set.Collection, err)
		}
	}
	return nil
}

// ListIndexes returns the index names present on each managed collection
func ListIndexes(ctx context.Context, db *mongo.Database) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, set := range Indexes() {
		cursor, err := db.Collection(set.Collection).Indexes().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list indexes on %s: %w", set.Collection, err)
		}
		var specs []bson.M
		if err := cursor.All(ctx, &specs); err != nil {
			return nil, err
		}
		for _, spec := range specs {
			if name, ok := spec["name"].(string); ok {
				out[set.Collection] = append(out[set.Collection], name)
			}
		}
	}
	return out, nil
}
