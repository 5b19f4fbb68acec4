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
)

type MongoSongRepository struct {
	coll *mongo.Collection
}

func NewSongRepository(db *database.MongoDB) *MongoSongRepository {
	return &MongoSongRepository{coll: db.Collection(CollectionSongs)}
}

func (r *MongoSongRepository) Create(ctx context.Context, song *domain.Song) error {
	song.ID = primitive.NewObjectID()
	song.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, song); err != nil {
		return fmt.Errorf("failed to create song: %w", err)
	}
	return nil
}

func (r *MongoSongRepository) List(ctx context.Context, page int) ([]domain.Song, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, pageOptions(page, "created_at"))
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}

	songs := []domain.Song{}
	if err := cursor.All(ctx, &songs); err != nil {
		return nil, fmt.Errorf("failed to decode songs: %w", err)
	}
	return songs, nil
}
