package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"vidtube/internal/domain"
	"vidtube/internal/media"
	"vidtube/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memDB is an in-memory stand-in for the MongoDB repositories
type memDB struct {
	mu            sync.Mutex
	users         map[primitive.ObjectID]*domain.User
	videos        map[primitive.ObjectID]*domain.Video
	comments      map[primitive.ObjectID]*domain.Comment
	likes         map[string]domain.Like
	views         map[string]domain.View
	subscriptions map[string]domain.Subscription
	songs         []domain.Song
	clock         time.Time

	failCreate    error
	failIncrement error
}

func newMemDB() *memDB {
	return &memDB{
		users:         make(map[primitive.ObjectID]*domain.User),
		videos:        make(map[primitive.ObjectID]*domain.Video),
		comments:      make(map[primitive.ObjectID]*domain.Comment),
		likes:         make(map[string]domain.Like),
		views:         make(map[string]domain.View),
		subscriptions: make(map[string]domain.Subscription),
		clock:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func pairKey(a, b primitive.ObjectID, extra string) string {
	return a.Hex() + ":" + b.Hex() + ":" + extra
}

// prependHistory mirrors the watch history pipeline update
func prependHistory(history []primitive.ObjectID, id primitive.ObjectID, max int) []primitive.ObjectID {
	out := []primitive.ObjectID{}
	if max <= 0 {
		return out
	}
	out = append(out, id)
	for _, h := range history {
		if len(out) == max {
			break
		}
		if h != id {
			out = append(out, h)
		}
	}
	return out
}

// pageBounds is the [start, end) slice of page within total items
func pageBounds(page, total int) (int, int) {
	start := int(domain.Skip(page))
	if start >= total {
		return total, total
	}
	return start, min(start+domain.PageSize, total)
}

type memUsers struct{ db *memDB }
type memVideos struct{ db *memDB }
type memComments struct{ db *memDB }
type memLikes struct{ db *memDB }
type memViews struct{ db *memDB }
type memSubscriptions struct{ db *memDB }
type memSongs struct{ db *memDB }

func (db *memDB) repos() *repository.Repositories {
	return &repository.Repositories{
		User:         memUsers{db},
		Video:        memVideos{db},
		Comment:      memComments{db},
		Like:         memLikes{db},
		View:         memViews{db},
		Subscription: memSubscriptions{db},
		Song:         memSongs{db},
	}
}

func (db *memDB) videoDeps() VideoDeps {
	r := db.repos()
	return VideoDeps{
		Users:         r.User,
		Videos:        r.Video,
		Comments:      r.Comment,
		Likes:         r.Like,
		Views:         r.View,
		Subscriptions: r.Subscription,
	}
}

// users

func (r memUsers) Create(ctx context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failCreate != nil {
		return r.db.failCreate
	}
	for _, u := range r.db.users {
		if u.Username == user.Username {
			return &repository.DuplicateError{Index: repository.IndexUserUsername, Err: fmt.Errorf("E11000")}
		}
		if u.Email == user.Email {
			return &repository.DuplicateError{Index: repository.IndexUserEmail, Err: fmt.Errorf("E11000")}
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = r.db.tick()
	user.UpdatedAt = user.CreatedAt
	if user.WatchHistory == nil {
		user.WatchHistory = []primitive.ObjectID{}
	}
	cp := *user
	r.db.users[user.ID] = &cp
	return nil
}

func (r memUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if match(u) {
			cp := *u
			cp.WatchHistory = append([]primitive.ObjectID(nil), u.WatchHistory...)
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r memUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r memUsers) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (r memUsers) PushWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID, max int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.WatchHistory = prependHistory(u.WatchHistory, videoID, max)
	return nil
}

func (r memUsers) ChannelProfile(ctx context.Context, username string, viewer *primitive.ObjectID) (*domain.ChannelProfile, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p := &domain.ChannelProfile{ID: u.ID, Username: u.Username, FullName: u.FullName, Avatar: u.Avatar}
	for _, s := range r.db.subscriptions {
		if s.SubscribeTo == u.ID {
			p.SubscribersCount++
			if viewer != nil && s.Subscriber == *viewer {
				p.IsSubscribed = true
			}
		}
		if s.Subscriber == u.ID {
			p.SubscribedToCount++
		}
	}
	for _, v := range r.db.videos {
		if v.Owner == u.ID {
			p.VideosCount++
		}
	}
	return p, nil
}

// videos

func (r memVideos) Create(ctx context.Context, video *domain.Video) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failCreate != nil {
		return r.db.failCreate
	}
	video.ID = primitive.NewObjectID()
	video.CreatedAt = r.db.tick()
	video.UpdatedAt = video.CreatedAt
	cp := *video
	r.db.videos[video.ID] = &cp
	return nil
}

func (r memVideos) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	v, ok := r.db.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r memVideos) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Video, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.Video{}
	for _, id := range ids {
		if v, ok := r.db.videos[id]; ok {
			out = append(out, *v)
		}
	}
	// unordered like $in
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (r memVideos) sorted(match func(*domain.Video) bool) []domain.Video {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.Video{}
	for _, v := range r.db.videos {
		if match(v) {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

func pageOf(videos []domain.Video, p int) []domain.Video {
	start, end := pageBounds(p, len(videos))
	return videos[start:end]
}

func (r memVideos) List(ctx context.Context, p int) ([]domain.Video, error) {
	return pageOf(r.sorted(func(*domain.Video) bool { return true }), p), nil
}

func (r memVideos) Search(ctx context.Context, query string, p int) ([]domain.Video, error) {
	q := strings.ToLower(query)
	return pageOf(r.sorted(func(v *domain.Video) bool {
		return strings.Contains(strings.ToLower(v.Title), q) || strings.Contains(strings.ToLower(v.Description), q)
	}), p), nil
}

func (r memVideos) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]domain.Video, error) {
	return r.sorted(func(v *domain.Video) bool { return v.Owner == owner }), nil
}

func (r memVideos) ListLikedBy(ctx context.Context, userID primitive.ObjectID) ([]domain.Video, error) {
	r.db.mu.Lock()
	var ids []primitive.ObjectID
	for _, l := range r.db.likes {
		if l.UserID == userID && l.ModelName == domain.LikeTargetVideo {
			ids = append(ids, l.ModelID)
		}
	}
	r.db.mu.Unlock()
	return r.GetByIDs(ctx, ids)
}

func (r memVideos) Update(ctx context.Context, id, owner primitive.ObjectID, patch domain.VideoPatch) (*domain.Video, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	v, ok := r.db.videos[id]
	if !ok || v.Owner != owner {
		return nil, repository.ErrNotFound
	}
	before := *v
	v.Title, v.Description, v.VideoTag = patch.Title, patch.Description, patch.VideoTag
	if patch.VideoFile != "" {
		v.VideoFile, v.Duration = patch.VideoFile, patch.Duration
	}
	if patch.Thumbnail != "" {
		v.Thumbnail = patch.Thumbnail
	}
	v.UpdatedAt = r.db.tick()
	return &before, nil
}

func (r memVideos) Delete(ctx context.Context, id, owner primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	v, ok := r.db.videos[id]
	if !ok || v.Owner != owner {
		return repository.ErrNotFound
	}
	delete(r.db.videos, id)
	return nil
}

func (r memVideos) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failIncrement != nil {
		return r.db.failIncrement
	}
	v, ok := r.db.videos[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.Views++
	return nil
}

// comments

func (r memComments) Create(ctx context.Context, c *domain.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = r.db.tick()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.db.comments[c.ID] = &cp
	return nil
}

func (r memComments) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memComments) views(match func(*domain.Comment) bool) []domain.CommentView {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.CommentView{}
	for _, c := range r.db.comments {
		if match(c) {
			out = append(out, domain.CommentView{Comment: *c})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r memComments) ListByVideo(ctx context.Context, videoID primitive.ObjectID, p int) ([]domain.CommentView, error) {
	all := r.views(func(c *domain.Comment) bool { return c.VideoID == videoID && c.ParentCommentID == nil })
	start, end := pageBounds(p, len(all))
	return all[start:end], nil
}

func (r memComments) ListReplies(ctx context.Context, parentID primitive.ObjectID) ([]domain.CommentView, error) {
	return r.views(func(c *domain.Comment) bool { return c.ParentCommentID != nil && *c.ParentCommentID == parentID }), nil
}

func (r memComments) UpdateContent(ctx context.Context, id, userID primitive.ObjectID, content string) (*domain.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.comments[id]
	if !ok || c.UserID != userID {
		return nil, repository.ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = r.db.tick()
	cp := *c
	return &cp, nil
}

func (r memComments) ids(match func(*domain.Comment) bool) []primitive.ObjectID {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []primitive.ObjectID
	for id, c := range r.db.comments {
		if match(c) {
			out = append(out, id)
		}
	}
	return out
}

func (r memComments) ReplyIDs(ctx context.Context, parentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.ids(func(c *domain.Comment) bool { return c.ParentCommentID != nil && *c.ParentCommentID == parentID }), nil
}

func (r memComments) IDsByVideo(ctx context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.ids(func(c *domain.Comment) bool { return c.VideoID == videoID }), nil
}

func (r memComments) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.db.comments[id]; ok {
			delete(r.db.comments, id)
			n++
		}
	}
	return n, nil
}

// likes

func (r memLikes) Toggle(ctx context.Context, userID, modelID primitive.ObjectID, target domain.LikeTarget) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := pairKey(userID, modelID, string(target))
	if _, ok := r.db.likes[key]; ok {
		delete(r.db.likes, key)
		return false, nil
	}
	r.db.likes[key] = domain.Like{UserID: userID, ModelID: modelID, ModelName: target, CreatedAt: r.db.tick()}
	return true, nil
}

func (r memLikes) Exists(ctx context.Context, userID, modelID primitive.ObjectID, target domain.LikeTarget) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.likes[pairKey(userID, modelID, string(target))]
	return ok, nil
}

func (r memLikes) Count(ctx context.Context, modelID primitive.ObjectID, target domain.LikeTarget) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, l := range r.db.likes {
		if l.ModelID == modelID && l.ModelName == target {
			n++
		}
	}
	return n, nil
}

func (r memLikes) DeleteForTargets(ctx context.Context, modelIDs []primitive.ObjectID, target domain.LikeTarget) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	set := make(map[primitive.ObjectID]bool, len(modelIDs))
	for _, id := range modelIDs {
		set[id] = true
	}
	var n int64
	for k, l := range r.db.likes {
		if l.ModelName == target && set[l.ModelID] {
			delete(r.db.likes, k)
			n++
		}
	}
	return n, nil
}

// views

func (r memViews) Record(ctx context.Context, userID, videoID primitive.ObjectID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := pairKey(userID, videoID, "")
	if _, ok := r.db.views[key]; ok {
		return false, nil
	}
	r.db.views[key] = domain.View{UserID: userID, VideoID: videoID}
	return true, nil
}

func (r memViews) Delete(ctx context.Context, userID, videoID primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.views, pairKey(userID, videoID, ""))
	return nil
}

func (r memViews) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for k, v := range r.db.views {
		if v.VideoID == videoID {
			delete(r.db.views, k)
			n++
		}
	}
	return n, nil
}

// subscriptions

func (r memSubscriptions) Subscribe(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := pairKey(subscriber, channel, "")
	if _, ok := r.db.subscriptions[key]; ok {
		return false, nil
	}
	r.db.subscriptions[key] = domain.Subscription{Subscriber: subscriber, SubscribeTo: channel, CreatedAt: r.db.tick()}
	return true, nil
}

func (r memSubscriptions) Unsubscribe(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := pairKey(subscriber, channel, "")
	if _, ok := r.db.subscriptions[key]; !ok {
		return false, nil
	}
	delete(r.db.subscriptions, key)
	return true, nil
}

func (r memSubscriptions) Exists(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.subscriptions[pairKey(subscriber, channel, "")]
	return ok, nil
}

func (r memSubscriptions) CountSubscribers(ctx context.Context, channel primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, s := range r.db.subscriptions {
		if s.SubscribeTo == channel {
			n++
		}
	}
	return n, nil
}

func (r memSubscriptions) ListChannels(ctx context.Context, subscriber primitive.ObjectID) ([]domain.ChannelSummary, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.ChannelSummary{}
	for _, s := range r.db.subscriptions {
		if s.Subscriber != subscriber {
			continue
		}
		if u, ok := r.db.users[s.SubscribeTo]; ok {
			out = append(out, domain.ChannelSummary{ID: u.ID, Username: u.Username, FullName: u.FullName, Avatar: u.Avatar})
		}
	}
	return out, nil
}

func (r memSubscriptions) Feed(ctx context.Context, subscriber primitive.ObjectID) ([]domain.ChannelVideos, error) {
	channels, _ := r.ListChannels(ctx, subscriber)
	out := []domain.ChannelVideos{}
	for _, c := range channels {
		videos, _ := memVideos{r.db}.ListByOwner(ctx, c.ID)
		if len(videos) > 0 {
			out = append(out, domain.ChannelVideos{Channel: c.ID, Username: c.Username, Avatar: c.Avatar, Videos: videos})
		}
	}
	return out, nil
}

// songs

func (r memSongs) Create(ctx context.Context, song *domain.Song) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failCreate != nil {
		return r.db.failCreate
	}
	song.ID = primitive.NewObjectID()
	song.CreatedAt = r.db.tick()
	r.db.songs = append([]domain.Song{*song}, r.db.songs...)
	return nil
}

func (r memSongs) List(ctx context.Context, p int) ([]domain.Song, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	start, end := pageBounds(p, len(r.db.songs))
	return append([]domain.Song{}, r.db.songs[start:end]...), nil
}

// MockStore records media operations
type MockStore struct {
	mu         sync.Mutex
	uploaded   []string
	deleted    []string
	failUpload map[media.Kind]error
	failDelete error
	duration   float64
}

func newMockStore() *MockStore {
	return &MockStore{failUpload: make(map[media.Kind]error), duration: 12.5}
}

func (m *MockStore) Upload(ctx context.Context, localPath string, kind media.Kind) (*media.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failUpload[kind]; err != nil {
		return nil, err
	}
	url := fmt.Sprintf("https://media.test/%s/%d-%s", kind, len(m.uploaded), localPath)
	m.uploaded = append(m.uploaded, url)
	asset := &media.Asset{URL: url, Kind: kind}
	if kind != media.KindImage {
		asset.Duration = m.duration
	}
	return asset, nil
}

func (m *MockStore) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete != nil {
		return m.failDelete
	}
	m.deleted = append(m.deleted, url)
	return nil
}

func (m *MockStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// fakeTokens signs nothing; tokens encode the user id
type fakeTokens struct {
	issued int
}

func (f *fakeTokens) IssueTokens(user *domain.User) (*domain.TokenPair, error) {
	f.issued++
	return &domain.TokenPair{
		AccessToken:  fmt.Sprintf("access.%s.%d", user.ID.Hex(), f.issued),
		RefreshToken: fmt.Sprintf("refresh.%s.%d", user.ID.Hex(), f.issued),
	}, nil
}

func (f *fakeTokens) ValidateAccessToken(ctx context.Context, token string) (*domain.AuthClaims, error) {
	return parseFakeToken(token, "access")
}

func (f *fakeTokens) ValidateRefreshToken(ctx context.Context, token string) (*domain.AuthClaims, error) {
	return parseFakeToken(token, "refresh")
}

func parseFakeToken(token, typ string) (*domain.AuthClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] != typ {
		return nil, fmt.Errorf("invalid token")
	}
	return &domain.AuthClaims{UserID: parts[1]}, nil
}

func (f *fakeTokens) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (f *fakeTokens) ComparePassword(hash, password string) bool {
	return hash == "hashed:"+password
}

func staged(name, contentType string) *media.StagedFile {
	return &media.StagedFile{Path: "/tmp/" + name, Filename: name, ContentType: contentType, Size: 1}
}
