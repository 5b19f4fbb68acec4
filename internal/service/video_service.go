package service

import (
	"context"
	stderrors "errors"
	"strings"

	"vidtube/internal/domain"
	"vidtube/internal/media"
	"vidtube/internal/repository"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoDeps groups the repositories the video service reads and writes
type VideoDeps struct {
	Users         repository.UserRepository
	Videos        repository.VideoRepository
	Comments      repository.CommentRepository
	Likes         repository.LikeRepository
	Views         repository.ViewRepository
	Subscriptions repository.SubscriptionRepository
}

type videoService struct {
	repos  VideoDeps
	media  media.Store
	cache  VideoListCache
	logger *logger.Logger
}

// NewVideoService creates a new video service. cache may be nil.
func NewVideoService(repos VideoDeps, store media.Store, cache VideoListCache, logger *logger.Logger) VideoService {
	return &videoService{repos: repos, media: store, cache: cache, logger: logger}
}

func (s *videoService) List(ctx context.Context, page int) ([]domain.Video, error) {
	if page < 1 {
		page = 1
	}
	var generation int64 = -1
	if s.cache != nil {
		videos, gen, ok := s.cache.GetVideoPage(ctx, page)
		if ok {
			return videos, nil
		}
		generation = gen
	}

	videos, err := s.repos.Videos.List(ctx, page)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list videos", err)
	}

	if s.cache != nil {
		s.cache.SetVideoPage(generation, page, videos)
	}
	return videos, nil
}

func (s *videoService) Search(ctx context.Context, query string, page int) ([]domain.Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NewValidationError("Search query is required", map[string]interface{}{"field": "q"})
	}
	if page < 1 {
		page = 1
	}

	videos, err := s.repos.Videos.Search(ctx, query, page)
	if err != nil {
		return nil, errors.NewInternalError("Failed to search videos", err)
	}
	return videos, nil
}

// validateVideoInput trims the text fields and checks the tag
func validateVideoInput(in domain.VideoInput) (domain.VideoInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	missing := missingFields(map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"videoTag":    in.VideoTag,
	})
	if len(missing) > 0 {
		return in, errors.NewValidationError("All fields are required", map[string]interface{}{"missing": missing})
	}

	tag, ok := domain.NormalizeTag(in.VideoTag)
	if !ok {
		return in, errors.NewValidationError("Invalid video tag", map[string]interface{}{
			"field":   "videoTag",
			"allowed": domain.VideoTags,
		})
	}
	in.VideoTag = tag
	return in, nil
}

func (s *videoService) Upload(ctx context.Context, owner primitive.ObjectID, in domain.VideoInput, videoFile, thumbnail *media.StagedFile) (*domain.Video, error) {
	in, err := validateVideoInput(in)
	if err != nil {
		return nil, err
	}
	if videoFile == nil {
		return nil, errors.NewValidationError("Video file is required", map[string]interface{}{"field": "videoFile"})
	}
	if thumbnail == nil {
		return nil, errors.NewValidationError("Thumbnail is required", map[string]interface{}{"field": "thumbnail"})
	}
	if media.IsAudio(videoFile.Filename, videoFile.ContentType) {
		return nil, errors.NewValidationError("Audio files must be uploaded as songs", map[string]interface{}{"field": "videoFile"})
	}

	user, err := s.repos.Users.GetByID(ctx, owner)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("User does not exist")
		}
		return nil, errors.NewInternalError("Failed to load user", err)
	}

	videoAsset, err := uploadStaged(ctx, s.media, videoFile, media.KindVideo, "videoFile")
	if err != nil {
		return nil, err
	}
	thumbAsset, err := uploadStaged(ctx, s.media, thumbnail, media.KindImage, "thumbnail")
	if err != nil {
		discardAssets(s.media, s.logger, videoAsset.URL)
		return nil, err
	}

	video := &domain.Video{
		Owner:       user.ID,
		Username:    user.Username,
		VideoFile:   videoAsset.URL,
		Thumbnail:   thumbAsset.URL,
		Duration:    videoAsset.Duration,
		Width:       videoAsset.Width,
		Height:      videoAsset.Height,
		Title:       in.Title,
		Description: in.Description,
		VideoTag:    in.VideoTag,
	}
	if err := s.repos.Videos.Create(ctx, video); err != nil {
		discardAssets(s.media, s.logger, videoAsset.URL, thumbAsset.URL)
		return nil, errors.NewInternalError("Failed to save video", err)
	}

	s.invalidateList(ctx)
	s.logger.WithFields(map[string]interface{}{
		"video_id": video.ID.Hex(),
		"owner":    owner.Hex(),
		"duration": video.Duration,
	}).Info("Video uploaded")
	return video, nil
}

// Watch returns the video with its counters and records the view.
// Only the first view of a user increments the counter.
func (s *videoService) Watch(ctx context.Context, userID, videoID primitive.ObjectID) (*domain.WatchResult, error) {
	video, err := s.getVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	first, err := s.repos.Views.Record(ctx, userID, videoID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to record view", err)
	}
	if first {
		if err := s.repos.Videos.IncrementViews(ctx, videoID); err != nil {
			// Withdraw the view so the next watch counts it
			if derr := s.repos.Views.Delete(ctx, userID, videoID); derr != nil {
				s.logger.WithError(derr).WithField("video_id", videoID.Hex()).Error("Failed to withdraw uncounted view")
			}
			if stderrors.Is(err, repository.ErrNotFound) {
				return nil, errors.NewNotFoundError("Video does not exist")
			}
			return nil, errors.NewInternalError("Failed to count view", err)
		}
		video.Views++
	}

	if err := s.repos.Users.PushWatchHistory(ctx, userID, videoID, domain.MaxWatchHistory); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("User does not exist")
		}
		return nil, errors.NewInternalError("Failed to update watch history", err)
	}

	likes, err := s.repos.Likes.Count(ctx, videoID, domain.LikeTargetVideo)
	if err != nil {
		return nil, errors.NewInternalError("Failed to count likes", err)
	}
	subscribers, err := s.repos.Subscriptions.CountSubscribers(ctx, video.Owner)
	if err != nil {
		return nil, errors.NewInternalError("Failed to count subscribers", err)
	}
	liked, err := s.repos.Likes.Exists(ctx, userID, videoID, domain.LikeTargetVideo)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load like state", err)
	}
	subscribed, err := s.repos.Subscriptions.Exists(ctx, userID, video.Owner)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load subscription state", err)
	}

	return &domain.WatchResult{
		Video:        video,
		Likes:        likes,
		Subscribers:  subscribers,
		UserLiked:    liked,
		IsSubscribed: subscribed,
	}, nil
}

func (s *videoService) ToggleLike(ctx context.Context, userID, videoID primitive.ObjectID) (*domain.VideoLikeResult, error) {
	if _, err := s.getVideo(ctx, videoID); err != nil {
		return nil, err
	}

	liked, err := s.repos.Likes.Toggle(ctx, userID, videoID, domain.LikeTargetVideo)
	if err != nil {
		return nil, errors.NewInternalError("Failed to toggle like", err)
	}
	count, err := s.repos.Likes.Count(ctx, videoID, domain.LikeTargetVideo)
	if err != nil {
		return nil, errors.NewInternalError("Failed to count likes", err)
	}

	return &domain.VideoLikeResult{VideoID: videoID.Hex(), Likes: count, UserLiked: liked}, nil
}

func (s *videoService) Liked(ctx context.Context, userID primitive.ObjectID) ([]domain.Video, error) {
	videos, err := s.repos.Videos.ListLikedBy(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load liked videos", err)
	}
	return videos, nil
}

func (s *videoService) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]domain.Video, error) {
	videos, err := s.repos.Videos.ListByOwner(ctx, owner)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load videos", err)
	}
	return videos, nil
}

// Update rewrites the text fields and optionally replaces the files.
// Replaced files are removed from the media host after the write succeeds.
func (s *videoService) Update(ctx context.Context, owner, videoID primitive.ObjectID, in domain.VideoInput, videoFile, thumbnail *media.StagedFile) (*domain.Video, error) {
	in, err := validateVideoInput(in)
	if err != nil {
		return nil, err
	}
	if videoFile != nil && media.IsAudio(videoFile.Filename, videoFile.ContentType) {
		return nil, errors.NewValidationError("Audio files must be uploaded as songs", map[string]interface{}{"field": "videoFile"})
	}

	current, err := s.getVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if current.Owner != owner {
		return nil, errors.NewNotFoundError("Video does not exist")
	}

	patch := domain.VideoPatch{
		Title:       in.Title,
		Description: in.Description,
		VideoTag:    in.VideoTag,
	}
	if videoFile != nil {
		asset, err := uploadStaged(ctx, s.media, videoFile, media.KindVideo, "videoFile")
		if err != nil {
			return nil, err
		}
		patch.VideoFile = asset.URL
		patch.Duration = asset.Duration
		patch.Width = asset.Width
		patch.Height = asset.Height
	}
	if thumbnail != nil {
		asset, err := uploadStaged(ctx, s.media, thumbnail, media.KindImage, "thumbnail")
		if err != nil {
			discardAssets(s.media, s.logger, patch.VideoFile)
			return nil, err
		}
		patch.Thumbnail = asset.URL
	}

	before, err := s.repos.Videos.Update(ctx, videoID, owner, patch)
	if err != nil {
		discardAssets(s.media, s.logger, patch.VideoFile, patch.Thumbnail)
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("Video does not exist")
		}
		return nil, errors.NewInternalError("Failed to update video", err)
	}

	var stale []string
	if patch.VideoFile != "" && before.VideoFile != patch.VideoFile {
		stale = append(stale, before.VideoFile)
	}
	if patch.Thumbnail != "" && before.Thumbnail != patch.Thumbnail {
		stale = append(stale, before.Thumbnail)
	}
	discardAssets(s.media, s.logger, stale...)

	updated, err := s.getVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	s.invalidateList(ctx)
	return updated, nil
}

// Delete removes the media first and only then the records, so a media
// failure leaves the video intact.
func (s *videoService) Delete(ctx context.Context, owner, videoID primitive.ObjectID) (*domain.Video, error) {
	video, err := s.getVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.Owner != owner {
		return nil, errors.NewNotFoundError("Video does not exist")
	}

	for _, u := range []string{video.VideoFile, video.Thumbnail} {
		if u == "" {
			continue
		}
		if err := s.media.Delete(ctx, u); err != nil {
			return nil, errors.NewExternalError("Failed to delete media", err).WithDetails("url", u)
		}
	}

	if err := s.repos.Videos.Delete(ctx, videoID, owner); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("Video does not exist")
		}
		return nil, errors.NewInternalError("Failed to delete video", err)
	}

	log := s.logger.WithField("video_id", videoID.Hex())
	commentIDs, err := s.repos.Comments.IDsByVideo(ctx, videoID)
	if err != nil {
		log.WithError(err).Error("Failed to load comments of deleted video")
	} else if len(commentIDs) > 0 {
		if _, err := s.repos.Likes.DeleteForTargets(ctx, commentIDs, domain.LikeTargetComment); err != nil {
			log.WithError(err).Error("Failed to delete comment likes of deleted video")
		}
		if _, err := s.repos.Comments.DeleteMany(ctx, commentIDs); err != nil {
			log.WithError(err).Error("Failed to delete comments of deleted video")
		}
	}
	if _, err := s.repos.Likes.DeleteForTargets(ctx, []primitive.ObjectID{videoID}, domain.LikeTargetVideo); err != nil {
		log.WithError(err).Error("Failed to delete likes of deleted video")
	}
	if _, err := s.repos.Views.DeleteByVideo(ctx, videoID); err != nil {
		log.WithError(err).Error("Failed to delete views of deleted video")
	}

	s.invalidateList(ctx)
	log.Info("Video deleted")
	return video, nil
}

func (s *videoService) getVideo(ctx context.Context, id primitive.ObjectID) (*domain.Video, error) {
	video, err := s.repos.Videos.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("Video does not exist")
		}
		return nil, errors.NewInternalError("Failed to load video", err)
	}
	return video, nil
}

func (s *videoService) invalidateList(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateVideoPages(ctx)
	}
}
