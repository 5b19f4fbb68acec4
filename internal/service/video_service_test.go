package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"vidtube/internal/domain"
	"vidtube/internal/media"
	"vidtube/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type videoFixture struct {
	db    *memDB
	store *MockStore
	svc   VideoService
	owner *domain.User
}

func newVideoFixture(t *testing.T) *videoFixture {
	t.Helper()
	db, store := newMemDB(), newMockStore()
	owner := registerUser(t, db, "owner")
	return &videoFixture{
		db:    db,
		store: store,
		svc:   NewVideoService(db.videoDeps(), store, nil, logger.NewNop()),
		owner: owner,
	}
}

func (f *videoFixture) upload(t *testing.T, title string) *domain.Video {
	t.Helper()
	v, err := f.svc.Upload(context.Background(), f.owner.ID,
		domain.VideoInput{Title: title, Description: "about " + title, VideoTag: "Learning"},
		staged("clip.mp4", "video/mp4"), staged("thumb.png", "image/png"))
	require.NoError(t, err)
	return v
}

func TestVideoService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores metadata from the media host", func(t *testing.T) {
		f := newVideoFixture(t)
		v := f.upload(t, "intro")
		assert.Equal(t, "owner", v.Username)
		assert.Equal(t, "learning", v.VideoTag)
		assert.Equal(t, 12.5, v.Duration)
		assert.Zero(t, v.Views)
	})

	tests := []struct {
		name   string
		in     domain.VideoInput
		video  *media.StagedFile
		thumb  *media.StagedFile
		status int
	}{
		{"missing title", domain.VideoInput{Description: "d", VideoTag: "music"}, staged("v.mp4", "video/mp4"), staged("t.png", "image/png"), http.StatusBadRequest},
		{"bad tag", domain.VideoInput{Title: "t", Description: "d", VideoTag: "cooking"}, staged("v.mp4", "video/mp4"), staged("t.png", "image/png"), http.StatusBadRequest},
		{"missing video", domain.VideoInput{Title: "t", Description: "d", VideoTag: "music"}, nil, staged("t.png", "image/png"), http.StatusBadRequest},
		{"missing thumbnail", domain.VideoInput{Title: "t", Description: "d", VideoTag: "music"}, staged("v.mp4", "video/mp4"), nil, http.StatusBadRequest},
		{"audio file", domain.VideoInput{Title: "t", Description: "d", VideoTag: "music"}, staged("song.mp3", "audio/mpeg"), staged("t.png", "image/png"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVideoFixture(t)
			_, err := f.svc.Upload(ctx, f.owner.ID, tt.in, tt.video, tt.thumb)
			assert.Equal(t, tt.status, statusOf(t, err))
			assert.Empty(t, f.store.uploaded)
		})
	}

	t.Run("unknown owner", func(t *testing.T) {
		f := newVideoFixture(t)
		_, err := f.svc.Upload(ctx, primitive.NewObjectID(), domain.VideoInput{Title: "t", Description: "d", VideoTag: "news"},
			staged("v.mp4", "video/mp4"), staged("t.png", "image/png"))
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})

	t.Run("thumbnail failure removes video", func(t *testing.T) {
		f := newVideoFixture(t)
		f.store.failUpload[media.KindImage] = fmt.Errorf("boom")
		_, err := f.svc.Upload(ctx, f.owner.ID, domain.VideoInput{Title: "t", Description: "d", VideoTag: "news"},
			staged("v.mp4", "video/mp4"), staged("t.png", "image/png"))
		assert.Equal(t, http.StatusBadGateway, statusOf(t, err))
		assert.Equal(t, f.store.uploaded, f.store.Deleted())
	})
}

func TestVideoService_WatchCountsFirstViewOnly(t *testing.T) {
	ctx := context.Background()
	f := newVideoFixture(t)
	v := f.upload(t, "clip")
	viewer := registerUser(t, f.db, "viewer")

	for i := 0; i < 3; i++ {
		res, err := f.svc.Watch(ctx, viewer.ID, v.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.Video.Views)
	}

	res, err := f.svc.Watch(ctx, f.owner.ID, v.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Video.Views)

	_, err = f.svc.Watch(ctx, viewer.ID, primitive.NewObjectID())
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestVideoService_WatchFailedIncrementIsRetried(t *testing.T) {
	ctx := context.Background()
	f := newVideoFixture(t)
	v := f.upload(t, "clip")
	viewer := registerUser(t, f.db, "viewer")

	f.db.failIncrement = fmt.Errorf("write conflict")
	_, err := f.svc.Watch(ctx, viewer.ID, v.ID)
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	assert.Empty(t, f.db.views, "uncounted view is withdrawn")

	f.db.failIncrement = nil
	res, err := f.svc.Watch(ctx, viewer.ID, v.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Video.Views)

	res, err = f.svc.Watch(ctx, viewer.ID, v.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Video.Views)
}

func TestVideoService_ToggleLikeIsInvolution(t *testing.T) {
	ctx := context.Background()
	f := newVideoFixture(t)
	v := f.upload(t, "clip")
	viewer := registerUser(t, f.db, "viewer")

	on, err := f.svc.ToggleLike(ctx, viewer.ID, v.ID)
	require.NoError(t, err)
	assert.True(t, on.UserLiked)
	assert.EqualValues(t, 1, on.Likes)
	assert.Equal(t, v.ID.Hex(), on.VideoID)

	liked, err := f.svc.Liked(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, liked, 1)

	off, err := f.svc.ToggleLike(ctx, viewer.ID, v.ID)
	require.NoError(t, err)
	assert.False(t, off.UserLiked)
	assert.Zero(t, off.Likes)

	watch, err := f.svc.Watch(ctx, viewer.ID, v.ID)
	require.NoError(t, err)
	assert.False(t, watch.UserLiked)
}

func TestVideoService_ListPagination(t *testing.T) {
	ctx := context.Background()
	f := newVideoFixture(t)
	var all []*domain.Video
	for i := 0; i < 20; i++ {
		all = append(all, f.upload(t, fmt.Sprintf("video %02d", i)))
	}

	page2, err := f.svc.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, page2, domain.PageSize)
	// newest first: page 2 holds items 9..16 of the sorted set
	assert.Equal(t, all[11].ID, page2[0].ID)
	assert.Equal(t, all[4].ID, page2[7].ID)

	empty, err := f.svc.List(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, empty)

	found, err := f.svc.Search(ctx, "video 1", 1)
	require.NoError(t, err)
	assert.Len(t, found, 8)

	_, err = f.svc.Search(ctx, "  ", 1)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

type recordingCache struct {
	pages       map[int][]domain.Video
	invalidated int
}

func (c *recordingCache) GetVideoPage(ctx context.Context, page int) ([]domain.Video, int64, bool) {
	v, ok := c.pages[page]
	return v, int64(c.invalidated), ok
}

func (c *recordingCache) SetVideoPage(generation int64, page int, videos []domain.Video) {
	if generation != int64(c.invalidated) {
		return
	}
	c.pages[page] = videos
}

func (c *recordingCache) InvalidateVideoPages(ctx context.Context) {
	c.invalidated++
	c.pages = make(map[int][]domain.Video)
}

func TestVideoService_ListUsesCache(t *testing.T) {
	ctx := context.Background()
	f := newVideoFixture(t)
	cache := &recordingCache{pages: make(map[int][]domain.Video)}
	f.svc = NewVideoService(f.db.videoDeps(), f.store, cache, logger.NewNop())

	f.upload(t, "one")
	assert.Equal(t, 1, cache.invalidated)

	first, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Contains(t, cache.pages, 1)

	cache.pages[1] = nil
	cached, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, cached, "served from cache")
}

func TestVideoService_Update(t *testing.T) {
	ctx := context.Background()
	f := newVideoFixture(t)
	v := f.upload(t, "draft")
	oldThumb := v.Thumbnail

	updated, err := f.svc.Update(ctx, f.owner.ID, v.ID,
		domain.VideoInput{Title: "final", Description: "done", VideoTag: "news"}, nil, staged("new.png", "image/png"))
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, v.VideoFile, updated.VideoFile)
	assert.NotEqual(t, oldThumb, updated.Thumbnail)
	assert.Equal(t, []string{oldThumb}, f.store.Deleted())

	stranger := registerUser(t, f.db, "stranger")
	_, err = f.svc.Update(ctx, stranger.ID, v.ID, domain.VideoInput{Title: "x", Description: "y", VideoTag: "news"}, nil, nil)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestVideoService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newVideoFixture(t)
	v := f.upload(t, "doomed")
	viewer := registerUser(t, f.db, "viewer")

	comments := NewCommentService(f.db.repos().Comment, f.db.repos().Video, f.db.repos().Like, logger.NewNop())
	c, err := comments.Create(ctx, viewer.ID, domain.CreateCommentInput{Content: "hi", VideoID: v.ID.Hex()})
	require.NoError(t, err)
	_, err = comments.ToggleLike(ctx, viewer.ID, c.ID)
	require.NoError(t, err)
	_, err = f.svc.ToggleLike(ctx, viewer.ID, v.ID)
	require.NoError(t, err)
	_, err = f.svc.Watch(ctx, viewer.ID, v.ID)
	require.NoError(t, err)

	t.Run("other users cannot delete", func(t *testing.T) {
		_, err := f.svc.Delete(ctx, viewer.ID, v.ID)
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})

	t.Run("media failure keeps the records", func(t *testing.T) {
		f.store.failDelete = fmt.Errorf("host down")
		defer func() { f.store.failDelete = nil }()
		_, err := f.svc.Delete(ctx, f.owner.ID, v.ID)
		assert.Equal(t, http.StatusBadGateway, statusOf(t, err))
		assert.Contains(t, f.db.videos, v.ID)
	})

	deleted, err := f.svc.Delete(ctx, f.owner.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, deleted.ID)
	assert.ElementsMatch(t, []string{v.VideoFile, v.Thumbnail}, f.store.Deleted())
	assert.Empty(t, f.db.videos)
	assert.Empty(t, f.db.comments)
	assert.Empty(t, f.db.likes)
	assert.Empty(t, f.db.views)
}
