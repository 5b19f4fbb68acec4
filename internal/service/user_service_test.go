package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/domain"
	"vidtube/internal/media"
	"vidtube/internal/service/auth"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestUserService(db *memDB, store *MockStore) UserService {
	r := db.repos()
	return NewUserService(r.User, r.Video, &fakeTokens{}, store, logger.NewNop())
}

func validRegister() domain.RegisterInput {
	return domain.RegisterInput{
		Username: "  Alice ",
		Email:    "Alice@Example.com",
		FullName: "Alice Doe",
		Password: "secret",
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return errors.As(err).StatusCode
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes and stores the user", func(t *testing.T) {
		db, store := newMemDB(), newMockStore()
		svc := newTestUserService(db, store)

		user, err := svc.Register(ctx, validRegister(), staged("a.png", "image/png"), staged("c.png", "image/png"))
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "hashed:secret", user.Password)
		assert.NotEmpty(t, user.Avatar)
		assert.NotEmpty(t, user.CoverImage)
		assert.Len(t, store.uploaded, 2)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := newTestUserService(newMemDB(), newMockStore())
		in := validRegister()
		in.FullName = "   "
		in.Password = ""

		_, err := svc.Register(ctx, in, staged("a.png", "image/png"), nil)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
		assert.Equal(t, []string{"fullName", "password"}, errors.As(err).Details["missing"])
	})

	t.Run("avatar required", func(t *testing.T) {
		svc := newTestUserService(newMemDB(), newMockStore())
		_, err := svc.Register(ctx, validRegister(), nil, nil)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	})

	t.Run("duplicate email and username", func(t *testing.T) {
		db, store := newMemDB(), newMockStore()
		svc := newTestUserService(db, store)
		_, err := svc.Register(ctx, validRegister(), staged("a.png", "image/png"), nil)
		require.NoError(t, err)

		_, err = svc.Register(ctx, validRegister(), staged("a.png", "image/png"), nil)
		assert.Equal(t, http.StatusConflict, statusOf(t, err))
		assert.Equal(t, "email already exists", errors.As(err).Message)

		in := validRegister()
		in.Email = "other@example.com"
		_, err = svc.Register(ctx, in, staged("a.png", "image/png"), nil)
		assert.Equal(t, http.StatusConflict, statusOf(t, err))
		assert.Equal(t, "username already exists", errors.As(err).Message)
		assert.Len(t, store.uploaded, 1, "no upload before uniqueness checks pass")
	})

	t.Run("cover upload failure removes avatar", func(t *testing.T) {
		store := newMockStore()
		failing := &failAfterStore{MockStore: store, okUploads: 1}
		r := newMemDB().repos()
		svc := NewUserService(r.User, r.Video, &fakeTokens{}, failing, logger.NewNop())

		_, err := svc.Register(ctx, validRegister(), staged("a.png", "image/png"), staged("c.png", "image/png"))
		assert.Equal(t, http.StatusBadGateway, statusOf(t, err))
		require.Len(t, store.uploaded, 1)
		assert.Equal(t, store.uploaded, store.Deleted())
	})

	t.Run("database failure removes uploads", func(t *testing.T) {
		db, store := newMemDB(), newMockStore()
		db.failCreate = fmt.Errorf("write failed")
		svc := newTestUserService(db, store)

		_, err := svc.Register(ctx, validRegister(), staged("a.png", "image/png"), staged("c.png", "image/png"))
		assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
		assert.ElementsMatch(t, store.uploaded, store.Deleted())
	})
}

// failAfterStore lets okUploads uploads through and fails the rest
type failAfterStore struct {
	*MockStore
	okUploads int
}

func (f *failAfterStore) Upload(ctx context.Context, localPath string, kind media.Kind) (*media.Asset, error) {
	if f.okUploads == 0 {
		return nil, fmt.Errorf("media host unavailable")
	}
	f.okUploads--
	return f.MockStore.Upload(ctx, localPath, kind)
}

func registerUser(t *testing.T, db *memDB, username string) *domain.User {
	t.Helper()
	svc := newTestUserService(db, newMockStore())
	user, err := svc.Register(context.Background(), domain.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		FullName: username,
		Password: "secret",
	}, staged("a.png", "image/png"), nil)
	require.NoError(t, err)
	return user
}

func TestUserService_LoginAndRefresh(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	registerUser(t, db, "bob")
	svc := newTestUserService(db, newMockStore())

	tests := []struct {
		name   string
		in     domain.LoginInput
		status int
	}{
		{"no identifier", domain.LoginInput{Password: "secret"}, http.StatusBadRequest},
		{"no password", domain.LoginInput{Username: "bob"}, http.StatusBadRequest},
		{"unknown user", domain.LoginInput{Username: "nobody", Password: "secret"}, http.StatusNotFound},
		{"wrong password", domain.LoginInput{Email: "bob@example.com", Password: "nope"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.in)
			assert.Equal(t, tt.status, statusOf(t, err))
		})
	}

	res, err := svc.Login(ctx, domain.LoginInput{Username: "BOB", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, res.RefreshToken, res.User.RefreshToken)

	rotated, err := svc.RefreshTokens(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, res.RefreshToken, rotated.RefreshToken)

	_, err = svc.RefreshTokens(ctx, res.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err), "old refresh token is rejected after rotation")

	require.NoError(t, svc.Logout(ctx, res.User.ID))
	_, err = svc.RefreshTokens(ctx, rotated.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestUserService_RefreshRotationWithSignedTokens(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	r := db.repos()
	tokens := auth.NewService(config.AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}, logger.NewNop())
	svc := NewUserService(r.User, r.Video, tokens, newMockStore(), logger.NewNop())

	_, err := svc.Register(ctx, domain.RegisterInput{
		Username: "dave",
		Email:    "dave@example.com",
		FullName: "Dave",
		Password: "secret",
	}, staged("a.png", "image/png"), nil)
	require.NoError(t, err)

	res, err := svc.Login(ctx, domain.LoginInput{Username: "dave", Password: "secret"})
	require.NoError(t, err)

	// Back to back rotations land in the same second
	first, err := svc.RefreshTokens(ctx, res.RefreshToken)
	require.NoError(t, err)
	second, err := svc.RefreshTokens(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	for _, used := range []string{res.RefreshToken, first.RefreshToken} {
		_, err = svc.RefreshTokens(ctx, used)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	}
}

func TestUserService_WatchHistoryOrder(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	user := registerUser(t, db, "carol")
	videos := NewVideoService(db.videoDeps(), newMockStore(), nil, logger.NewNop())

	var ids []primitive.ObjectID
	for i := 0; i < 12; i++ {
		v, err := videos.Upload(ctx, user.ID, domain.VideoInput{Title: fmt.Sprintf("v%d", i), Description: "d", VideoTag: "music"},
			staged("v.mp4", "video/mp4"), staged("t.png", "image/png"))
		require.NoError(t, err)
		ids = append(ids, v.ID)
	}
	for _, id := range ids {
		_, err := videos.Watch(ctx, user.ID, id)
		require.NoError(t, err)
	}
	_, err := videos.Watch(ctx, user.ID, ids[5])
	require.NoError(t, err)

	history, err := newTestUserService(db, newMockStore()).WatchHistory(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, domain.MaxWatchHistory)
	assert.Equal(t, ids[5], history[0].ID)
	assert.Equal(t, ids[11], history[1].ID)
	assert.Equal(t, ids[6], history[6].ID)
	assert.Equal(t, ids[4], history[7].ID)
	assert.Equal(t, ids[2], history[9].ID)
}

func TestUserService_ChannelProfile(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	dave := registerUser(t, db, "dave")
	erin := registerUser(t, db, "erin")
	subs := NewSubscriptionService(db.repos().Subscription, db.repos().User, logger.NewNop())
	_, err := subs.Subscribe(ctx, erin.ID, "dave")
	require.NoError(t, err)

	svc := newTestUserService(db, newMockStore())
	profile, err := svc.ChannelProfile(ctx, "Dave", &erin.ID)
	require.NoError(t, err)
	assert.Equal(t, dave.ID, profile.ID)
	assert.EqualValues(t, 1, profile.SubscribersCount)
	assert.True(t, profile.IsSubscribed)

	_, err = svc.ChannelProfile(ctx, "ghost", nil)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
