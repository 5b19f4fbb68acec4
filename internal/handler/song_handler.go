package handler

import (
	"net/http"

	"vidtube/internal/domain"
	"vidtube/internal/media"
	"vidtube/internal/service"
	"vidtube/pkg/api"
	"vidtube/pkg/logger"
)

// SongHandler handles song requests
type SongHandler struct {
	songs     service.SongService
	stager    *media.Stager
	maxUpload int64
	logger    *logger.Logger
}

// NewSongHandler creates a new song handler
func NewSongHandler(songs service.SongService, stager *media.Stager, maxUpload int64, logger *logger.Logger) *SongHandler {
	return &SongHandler{songs: songs, stager: stager, maxUpload: maxUpload, logger: logger}
}

// Upload handles POST /api/v1/songs
func (h *SongHandler) Upload(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}

	f, err := parseForm(w, r, h.stager, h.maxUpload)
	if err != nil {
		return err
	}
	defer f.Cleanup()

	file, err := f.File("songFile")
	if err != nil {
		return err
	}

	song, err := h.songs.Upload(r.Context(), userID, domain.SongInput{
		Title:  f.Value("title"),
		Artist: f.Value("artist"),
	}, file)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusCreated, song, "Song uploaded successfully")
}

// List handles GET /api/v1/songs
func (h *SongHandler) List(w http.ResponseWriter, r *http.Request) error {
	songs, err := h.songs.List(r.Context(), domain.ParsePage(r.URL.Query().Get("page")))
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, songs, "Songs fetched successfully")
}
