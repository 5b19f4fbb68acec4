package handler

import (
	"context"
	"net/http"
	"os"

	"vidtube/internal/domain"
	"vidtube/internal/media"
	"vidtube/internal/middleware"
	"vidtube/pkg/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// withUser injects claims as the auth middleware would
func withUser(r *http.Request, id primitive.ObjectID) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, &domain.AuthClaims{UserID: id.Hex()})
	return r.WithContext(ctx)
}

type stubUsers struct {
	registerIn    domain.RegisterInput
	stagedExisted []bool
	loginRes      *domain.LoginResult
	refreshIn     string
	loggedOut     primitive.ObjectID
	viewer        *primitive.ObjectID
}

func (s *stubUsers) Register(ctx context.Context, in domain.RegisterInput, avatar, cover *media.StagedFile) (*domain.User, error) {
	s.registerIn = in
	for _, f := range []*media.StagedFile{avatar, cover} {
		if f == nil {
			s.stagedExisted = append(s.stagedExisted, false)
			continue
		}
		_, err := os.Stat(f.Path)
		s.stagedExisted = append(s.stagedExisted, err == nil)
	}
	if avatar == nil {
		return nil, errors.NewValidationError("Avatar file is required", nil)
	}
	return &domain.User{ID: primitive.NewObjectID(), Username: in.Username, Password: "hash", RefreshToken: "secret"}, nil
}

func (s *stubUsers) Login(ctx context.Context, in domain.LoginInput) (*domain.LoginResult, error) {
	if in.Password != "secret" {
		return nil, errors.NewAuthenticationError("Invalid user credentials")
	}
	return s.loginRes, nil
}

func (s *stubUsers) Logout(ctx context.Context, userID primitive.ObjectID) error {
	s.loggedOut = userID
	return nil
}

func (s *stubUsers) RefreshTokens(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	s.refreshIn = refreshToken
	if refreshToken == "" {
		return nil, errors.NewAuthenticationError("Refresh token is required")
	}
	return &domain.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
}

func (s *stubUsers) GetCurrentUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	return &domain.User{ID: userID, Username: "me"}, nil
}

func (s *stubUsers) WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.Video, error) {
	return []domain.Video{}, nil
}

func (s *stubUsers) ChannelProfile(ctx context.Context, username string, viewer *primitive.ObjectID) (*domain.ChannelProfile, error) {
	s.viewer = viewer
	if username == "ghost" {
		return nil, errors.NewNotFoundError("Channel does not exist")
	}
	return &domain.ChannelProfile{Username: username, IsSubscribed: viewer != nil}, nil
}

type stubVideos struct {
	page      int
	query     string
	watched   primitive.ObjectID
	uploadIn  domain.VideoInput
	gotVideo  bool
	gotThumb  bool
	deleteErr error
}

func (s *stubVideos) List(ctx context.Context, page int) ([]domain.Video, error) {
	s.page = page
	return []domain.Video{{Title: "a"}}, nil
}

func (s *stubVideos) Search(ctx context.Context, query string, page int) ([]domain.Video, error) {
	s.query, s.page = query, page
	if query == "" {
		return nil, errors.NewValidationError("Search query is required", nil)
	}
	return []domain.Video{}, nil
}

func (s *stubVideos) Upload(ctx context.Context, owner primitive.ObjectID, in domain.VideoInput, videoFile, thumbnail *media.StagedFile) (*domain.Video, error) {
	s.uploadIn, s.gotVideo, s.gotThumb = in, videoFile != nil, thumbnail != nil
	return &domain.Video{ID: primitive.NewObjectID(), Owner: owner, Title: in.Title}, nil
}

func (s *stubVideos) Watch(ctx context.Context, userID, videoID primitive.ObjectID) (*domain.WatchResult, error) {
	s.watched = videoID
	return &domain.WatchResult{Video: &domain.Video{ID: videoID}, Likes: 3}, nil
}

func (s *stubVideos) ToggleLike(ctx context.Context, userID, videoID primitive.ObjectID) (*domain.VideoLikeResult, error) {
	return &domain.VideoLikeResult{VideoID: videoID.Hex(), Likes: 1, UserLiked: true}, nil
}

func (s *stubVideos) Liked(ctx context.Context, userID primitive.ObjectID) ([]domain.Video, error) {
	return []domain.Video{}, nil
}

func (s *stubVideos) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]domain.Video, error) {
	return []domain.Video{}, nil
}

func (s *stubVideos) Update(ctx context.Context, owner, videoID primitive.ObjectID, in domain.VideoInput, videoFile, thumbnail *media.StagedFile) (*domain.Video, error) {
	s.uploadIn, s.gotVideo, s.gotThumb = in, videoFile != nil, thumbnail != nil
	return &domain.Video{ID: videoID, Title: in.Title}, nil
}

func (s *stubVideos) Delete(ctx context.Context, owner, videoID primitive.ObjectID) (*domain.Video, error) {
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	return &domain.Video{ID: videoID}, nil
}

type stubComments struct {
	listedVideo  primitive.ObjectID
	listedParent primitive.ObjectID
	page         int
	createIn     domain.CreateCommentInput
}

func (s *stubComments) Create(ctx context.Context, userID primitive.ObjectID, in domain.CreateCommentInput) (*domain.Comment, error) {
	s.createIn = in
	return &domain.Comment{ID: primitive.NewObjectID(), UserID: userID, Content: in.Content}, nil
}

func (s *stubComments) ListByVideo(ctx context.Context, videoID primitive.ObjectID, page int) ([]domain.CommentView, error) {
	s.listedVideo, s.page = videoID, page
	return []domain.CommentView{}, nil
}

func (s *stubComments) ListReplies(ctx context.Context, parentID primitive.ObjectID) ([]domain.CommentView, error) {
	s.listedParent = parentID
	return []domain.CommentView{}, nil
}

func (s *stubComments) Update(ctx context.Context, userID, commentID primitive.ObjectID, content string) (*domain.Comment, error) {
	return &domain.Comment{ID: commentID, Content: content}, nil
}

func (s *stubComments) Delete(ctx context.Context, userID, commentID primitive.ObjectID) (*domain.CommentDeleteResult, error) {
	return &domain.CommentDeleteResult{Comment: &domain.Comment{ID: commentID}, DeletedReplies: 2}, nil
}

func (s *stubComments) ToggleLike(ctx context.Context, userID, commentID primitive.ObjectID) (*domain.CommentLikeResult, error) {
	return &domain.CommentLikeResult{CommentID: commentID.Hex(), Likes: 0, UserLiked: false}, nil
}

type stubSubscriptions struct {
	subscribed map[string]bool
}

func (s *stubSubscriptions) set(username string, on bool) *domain.SubscriptionResult {
	changed := s.subscribed[username] != on
	s.subscribed[username] = on
	n := int64(0)
	if on {
		n = 1
	}
	return &domain.SubscriptionResult{Channel: username, Subscribed: on, Subscribers: n, Changed: changed}
}

func (s *stubSubscriptions) Toggle(ctx context.Context, userID primitive.ObjectID, username string) (*domain.SubscriptionResult, error) {
	return s.set(username, !s.subscribed[username]), nil
}

func (s *stubSubscriptions) Subscribe(ctx context.Context, userID primitive.ObjectID, username string) (*domain.SubscriptionResult, error) {
	return s.set(username, true), nil
}

func (s *stubSubscriptions) Unsubscribe(ctx context.Context, userID primitive.ObjectID, username string) (*domain.SubscriptionResult, error) {
	return s.set(username, false), nil
}

func (s *stubSubscriptions) Channels(ctx context.Context, userID primitive.ObjectID) ([]domain.ChannelSummary, error) {
	return []domain.ChannelSummary{{Username: "owner"}}, nil
}

func (s *stubSubscriptions) Feed(ctx context.Context, userID primitive.ObjectID) ([]domain.ChannelVideos, error) {
	return []domain.ChannelVideos{}, nil
}

type stubSongs struct {
	in      domain.SongInput
	gotFile bool
}

func (s *stubSongs) Upload(ctx context.Context, owner primitive.ObjectID, in domain.SongInput, file *media.StagedFile) (*domain.Song, error) {
	s.in, s.gotFile = in, file != nil
	if file == nil {
		return nil, errors.NewValidationError("Song file is required", nil)
	}
	return &domain.Song{ID: primitive.NewObjectID(), Title: in.Title}, nil
}

func (s *stubSongs) List(ctx context.Context, page int) ([]domain.Song, error) {
	return []domain.Song{}, nil
}
