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

type MongoSubscriptionRepository struct {
	coll *mongo.Collection
}

func NewSubscriptionRepository(db *database.MongoDB) *MongoSubscriptionRepository {
	return &MongoSubscriptionRepository{coll: db.Collection(CollectionSubscriptions)}
}

func edge(subscriber, channel primitive.ObjectID) bson.M {
	return bson.M{"subscriber": subscriber, "subscribe_to": channel}
}

func (r *MongoSubscriptionRepository) Subscribe(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	sub := domain.Subscription{
		ID:          primitive.NewObjectID(),
		Subscriber:  subscriber,
		SubscribeTo: channel,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, sub); err != nil {
		if errors.Is(mapError(err), ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("failed to subscribe: %w", err)
	}
	return true, nil
}

func (r *MongoSubscriptionRepository) Unsubscribe(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, edge(subscriber, channel))
	if err != nil {
		return false, fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoSubscriptionRepository) Exists(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, edge(subscriber, channel))
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return n > 0, nil
}

func (r *MongoSubscriptionRepository) CountSubscribers(ctx context.Context, channel primitive.ObjectID) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"subscribe_to": channel})
	if err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return n, nil
}

func (r *MongoSubscriptionRepository) ListChannels(ctx context.Context, subscriber primitive.ObjectID) ([]domain.ChannelSummary, error) {
	cursor, err := r.coll.Aggregate(ctx, subscribedChannelsPipeline(subscriber))
	if err != nil {
		return nil, fmt.Errorf("failed to load channels: %w", err)
	}

	channels := []domain.ChannelSummary{}
	if err := cursor.All(ctx, &channels); err != nil {
		return nil, fmt.Errorf("failed to decode channels: %w", err)
	}
	return channels, nil
}

func (r *MongoSubscriptionRepository) Feed(ctx context.Context, subscriber primitive.ObjectID) ([]domain.ChannelVideos, error) {
	cursor, err := r.coll.Aggregate(ctx, subscriptionFeedPipeline(subscriber))
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription feed: %w", err)
	}

	feed := []domain.ChannelVideos{}
	if err := cursor.All(ctx, &feed); err != nil {
		return nil, fmt.Errorf("failed to decode subscription feed: %w", err)
	}
	return feed, nil
}
