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

type MongoCommentRepository struct {
	coll *mongo.Collection
}

func NewCommentRepository(db *database.MongoDB) *MongoCommentRepository {
	return &MongoCommentRepository{coll: db.Collection(CollectionComments)}
}

func (r *MongoCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	now := time.Now().UTC()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *MongoCommentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, mapError(err)
	}
	return &comment, nil
}

func (r *MongoCommentRepository) ListByVideo(ctx context.Context, videoID primitive.ObjectID, page int) ([]domain.CommentView, error) {
	return r.aggregate(ctx, videoCommentsPipeline(videoID, page))
}

func (r *MongoCommentRepository) ListReplies(ctx context.Context, parentID primitive.ObjectID) ([]domain.CommentView, error) {
	return r.aggregate(ctx, repliesPipeline(parentID))
}

func (r *MongoCommentRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]domain.CommentView, error) {
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	comments := []domain.CommentView{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

// UpdateContent edits a comment only when userID wrote it
func (r *MongoCommentRepository) UpdateContent(ctx context.Context, id, userID primitive.ObjectID, content string) (*domain.Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"content": content, "updated_at": time.Now().UTC()}}

	var comment domain.Comment
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "user_id": userID}, update, opts).Decode(&comment)
	if err != nil {
		return nil, mapError(err)
	}
	return &comment, nil
}

func (r *MongoCommentRepository) ReplyIDs(ctx context.Context, parentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.ids(ctx, bson.M{"parent_comment_id": parentID})
}

func (r *MongoCommentRepository) IDsByVideo(ctx context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.ids(ctx, bson.M{"video_id": videoID})
}

func (r *MongoCommentRepository) ids(ctx context.Context, filter bson.M) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query comment ids: %w", err)
	}

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode comment ids: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (r *MongoCommentRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments: %w", err)
	}
	return res.DeletedCount, nil
}
