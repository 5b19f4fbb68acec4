package repository

import (
	"context"

	"vidtube/internal/domain"
	"vidtube/pkg/database"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create inserts a user. Returns a DuplicateError on the username or email index.
	Create(ctx context.Context, user *domain.User) error

	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// SetRefreshToken stores token, or clears it when token is empty
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error

	// PushWatchHistory moves videoID to the front of the history and caps its length
	PushWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID, max int) error

	// ChannelProfile builds the public profile of username as seen by viewer
	ChannelProfile(ctx context.Context, username string, viewer *primitive.ObjectID) (*domain.ChannelProfile, error)
}

// VideoRepository defines the interface for video data operations
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Video, error)

	// List returns one page of videos ordered by last update
	List(ctx context.Context, page int) ([]domain.Video, error)

	// Search matches query literally and case-insensitively against text fields
	Search(ctx context.Context, query string, page int) ([]domain.Video, error)

	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]domain.Video, error)

	// ListLikedBy returns the videos userID likes, most recent like first
	ListLikedBy(ctx context.Context, userID primitive.ObjectID) ([]domain.Video, error)

	// Update applies patch to a video owned by owner and returns the previous document
	Update(ctx context.Context, id, owner primitive.ObjectID, patch domain.VideoPatch) (*domain.Video, error)

	Delete(ctx context.Context, id, owner primitive.ObjectID) error
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error)

	// ListByVideo returns one page of top-level comments of a video
	ListByVideo(ctx context.Context, videoID primitive.ObjectID, page int) ([]domain.CommentView, error)

	// ListReplies returns the direct replies of a comment, oldest first
	ListReplies(ctx context.Context, parentID primitive.ObjectID) ([]domain.CommentView, error)

	UpdateContent(ctx context.Context, id, userID primitive.ObjectID, content string) (*domain.Comment, error)

	// ReplyIDs returns the ids of the direct replies of parentID
	ReplyIDs(ctx context.Context, parentID primitive.ObjectID) ([]primitive.ObjectID, error)

	// IDsByVideo returns the ids of every comment on a video
	IDsByVideo(ctx context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error)

	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	// Toggle flips the like of userID on target and reports the resulting state
	Toggle(ctx context.Context, userID, modelID primitive.ObjectID, target domain.LikeTarget) (bool, error)

	Exists(ctx context.Context, userID, modelID primitive.ObjectID, target domain.LikeTarget) (bool, error)
	Count(ctx context.Context, modelID primitive.ObjectID, target domain.LikeTarget) (int64, error)
	DeleteForTargets(ctx context.Context, modelIDs []primitive.ObjectID, target domain.LikeTarget) (int64, error)
}

// ViewRepository defines the interface for view data operations
type ViewRepository interface {
	// Record stores a view and reports whether it is the first by this user
	Record(ctx context.Context, userID, videoID primitive.ObjectID) (bool, error)
	// Delete withdraws a recorded view whose count could not be applied
	Delete(ctx context.Context, userID, videoID primitive.ObjectID) error

	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error)
}

// SubscriptionRepository defines the interface for subscription data operations
type SubscriptionRepository interface {
	// Subscribe creates the edge and reports whether it was new
	Subscribe(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error)

	// Unsubscribe removes the edge and reports whether it existed
	Unsubscribe(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error)

	Exists(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error)
	CountSubscribers(ctx context.Context, channel primitive.ObjectID) (int64, error)

	// ListChannels returns the channels subscriber follows, newest edge first
	ListChannels(ctx context.Context, subscriber primitive.ObjectID) ([]domain.ChannelSummary, error)

	// Feed groups the videos of each followed channel that has any
	Feed(ctx context.Context, subscriber primitive.ObjectID) ([]domain.ChannelVideos, error)
}

// SongRepository defines the interface for song data operations
type SongRepository interface {
	Create(ctx context.Context, song *domain.Song) error
	List(ctx context.Context, page int) ([]domain.Song, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	User         UserRepository
	Video        VideoRepository
	Comment      CommentRepository
	Like         LikeRepository
	View         ViewRepository
	Subscription SubscriptionRepository
	Song         SongRepository
}

var (
	_ UserRepository         = (*MongoUserRepository)(nil)
	_ VideoRepository        = (*MongoVideoRepository)(nil)
	_ CommentRepository      = (*MongoCommentRepository)(nil)
	_ LikeRepository         = (*MongoLikeRepository)(nil)
	_ ViewRepository         = (*MongoViewRepository)(nil)
	_ SubscriptionRepository = (*MongoSubscriptionRepository)(nil)
	_ SongRepository         = (*MongoSongRepository)(nil)
)

// NewRepositories wires every MongoDB repository against db
func NewRepositories(db *database.MongoDB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Video:        NewVideoRepository(db),
		Comment:      NewCommentRepository(db),
		Like:         NewLikeRepository(db),
		View:         NewViewRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Song:         NewSongRepository(db),
	}
}
