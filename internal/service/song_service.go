package service

import (
	"context"
	"strings"

	"vidtube/internal/domain"
	"vidtube/internal/media"
	"vidtube/internal/repository"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type songService struct {
	songs  repository.SongRepository
	media  media.Store
	logger *logger.Logger
}

// NewSongService creates a new song service
func NewSongService(songs repository.SongRepository, store media.Store, logger *logger.Logger) SongService {
	return &songService{songs: songs, media: store, logger: logger}
}

func (s *songService) Upload(ctx context.Context, owner primitive.ObjectID, in domain.SongInput, file *media.StagedFile) (*domain.Song, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.NewValidationError("Title is required", map[string]interface{}{"field": "title"})
	}
	if file == nil {
		return nil, errors.NewValidationError("Song file is required", map[string]interface{}{"field": "songFile"})
	}
	if !media.IsAudio(file.Filename, file.ContentType) {
		return nil, errors.NewValidationError("Song file must be audio", map[string]interface{}{"field": "songFile"})
	}

	asset, err := uploadStaged(ctx, s.media, file, media.KindAudio, "songFile")
	if err != nil {
		return nil, err
	}

	song := &domain.Song{
		Owner:    owner,
		Title:    title,
		Artist:   strings.TrimSpace(in.Artist),
		SongFile: asset.URL,
		Duration: asset.Duration,
	}
	if err := s.songs.Create(ctx, song); err != nil {
		discardAssets(s.media, s.logger, asset.URL)
		return nil, errors.NewInternalError("Failed to save song", err)
	}

	s.logger.WithField("song_id", song.ID.Hex()).Info("Song uploaded")
	return song, nil
}

func (s *songService) List(ctx context.Context, page int) ([]domain.Song, error) {
	if page < 1 {
		page = 1
	}
	songs, err := s.songs.List(ctx, page)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list songs", err)
	}
	return songs, nil
}
