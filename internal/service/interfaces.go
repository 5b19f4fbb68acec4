package service

import (
	"context"

	"vidtube/internal/domain"
	"vidtube/internal/media"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenService issues and validates tokens and hashes passwords
type TokenService interface {
	IssueTokens(user *domain.User) (*domain.TokenPair, error)
	ValidateAccessToken(ctx context.Context, token string) (*domain.AuthClaims, error)
	ValidateRefreshToken(ctx context.Context, token string) (*domain.AuthClaims, error)
	HashPassword(password string) (string, error)
	ComparePassword(hash, password string) bool
}

// VideoListCache caches listing pages. A nil cache disables caching.
type VideoListCache interface {
	GetVideoPage(ctx context.Context, page int) ([]domain.Video, int64, bool)
	SetVideoPage(generation int64, page int, videos []domain.Video)
	InvalidateVideoPages(ctx context.Context)
}

// RateLimiter counts requests per client within a scope
type RateLimiter interface {
	Allow(ctx context.Context, scope, ip string) (*domain.RateLimitInfo, error)
}

// UserService defines account operations
type UserService interface {
	Register(ctx context.Context, in domain.RegisterInput, avatar, cover *media.StagedFile) (*domain.User, error)
	Login(ctx context.Context, in domain.LoginInput) (*domain.LoginResult, error)
	Logout(ctx context.Context, userID primitive.ObjectID) error
	RefreshTokens(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	GetCurrentUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.Video, error)
	ChannelProfile(ctx context.Context, username string, viewer *primitive.ObjectID) (*domain.ChannelProfile, error)
}

// VideoService defines video operations
type VideoService interface {
	List(ctx context.Context, page int) ([]domain.Video, error)
	Search(ctx context.Context, query string, page int) ([]domain.Video, error)
	Upload(ctx context.Context, owner primitive.ObjectID, in domain.VideoInput, videoFile, thumbnail *media.StagedFile) (*domain.Video, error)
	Watch(ctx context.Context, userID, videoID primitive.ObjectID) (*domain.WatchResult, error)
	ToggleLike(ctx context.Context, userID, videoID primitive.ObjectID) (*domain.VideoLikeResult, error)
	Liked(ctx context.Context, userID primitive.ObjectID) ([]domain.Video, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]domain.Video, error)
	Update(ctx context.Context, owner, videoID primitive.ObjectID, in domain.VideoInput, videoFile, thumbnail *media.StagedFile) (*domain.Video, error)
	Delete(ctx context.Context, owner, videoID primitive.ObjectID) (*domain.Video, error)
}

// CommentService defines comment operations
type CommentService interface {
	Create(ctx context.Context, userID primitive.ObjectID, in domain.CreateCommentInput) (*domain.Comment, error)
	ListByVideo(ctx context.Context, videoID primitive.ObjectID, page int) ([]domain.CommentView, error)
	ListReplies(ctx context.Context, parentID primitive.ObjectID) ([]domain.CommentView, error)
	Update(ctx context.Context, userID, commentID primitive.ObjectID, content string) (*domain.Comment, error)
	Delete(ctx context.Context, userID, commentID primitive.ObjectID) (*domain.CommentDeleteResult, error)
	ToggleLike(ctx context.Context, userID, commentID primitive.ObjectID) (*domain.CommentLikeResult, error)
}

// SubscriptionService defines channel subscription operations
type SubscriptionService interface {
	Toggle(ctx context.Context, userID primitive.ObjectID, username string) (*domain.SubscriptionResult, error)
	Subscribe(ctx context.Context, userID primitive.ObjectID, username string) (*domain.SubscriptionResult, error)
	Unsubscribe(ctx context.Context, userID primitive.ObjectID, username string) (*domain.SubscriptionResult, error)
	Channels(ctx context.Context, userID primitive.ObjectID) ([]domain.ChannelSummary, error)
	Feed(ctx context.Context, userID primitive.ObjectID) ([]domain.ChannelVideos, error)
}

// SongService defines song operations
type SongService interface {
	Upload(ctx context.Context, owner primitive.ObjectID, in domain.SongInput, file *media.StagedFile) (*domain.Song, error)
	List(ctx context.Context, page int) ([]domain.Song, error)
}

// Services aggregates all service interfaces
type Services struct {
	Auth         TokenService
	User         UserService
	Video        VideoService
	Comment      CommentService
	Subscription SubscriptionService
	Song         SongService
	RateLimiter  RateLimiter
}
