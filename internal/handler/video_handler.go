package handler

import (
	"net/http"

	"vidtube/internal/domain"
	"vidtube/internal/media"
	"vidtube/internal/service"
	"vidtube/pkg/api"
	"vidtube/pkg/logger"
)

// VideoHandler handles video requests
type VideoHandler struct {
	videos    service.VideoService
	stager    *media.Stager
	maxUpload int64
	logger    *logger.Logger
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(videos service.VideoService, stager *media.Stager, maxUpload int64, logger *logger.Logger) *VideoHandler {
	return &VideoHandler{videos: videos, stager: stager, maxUpload: maxUpload, logger: logger}
}

// List handles GET /api/v1/videos
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) error {
	videos, err := h.videos.List(r.Context(), domain.ParsePage(r.URL.Query().Get("page")))
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, videos, "Videos fetched successfully")
}

// Search handles GET /api/v1/videos/search
func (h *VideoHandler) Search(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	videos, err := h.videos.Search(r.Context(), q.Get("search"), domain.ParsePage(q.Get("page")))
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, videos, "Videos fetched successfully")
}

// readVideoForm stages the files of an upload or update form
func (h *VideoHandler) readVideoForm(w http.ResponseWriter, r *http.Request) (*form, domain.VideoInput, *media.StagedFile, *media.StagedFile, error) {
	f, err := parseForm(w, r, h.stager, h.maxUpload)
	if err != nil {
		return nil, domain.VideoInput{}, nil, nil, err
	}

	in := domain.VideoInput{
		Title:       f.Value("title"),
		Description: f.Value("description"),
		VideoTag:    f.Value("videoTag"),
	}
	videoFile, err := f.File("videoFile")
	if err != nil {
		f.Cleanup()
		return nil, in, nil, nil, err
	}
	thumbnail, err := f.File("thumbnail")
	if err != nil {
		f.Cleanup()
		return nil, in, nil, nil, err
	}
	return f, in, videoFile, thumbnail, nil
}

// Upload handles POST /api/v1/videos
func (h *VideoHandler) Upload(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}

	f, in, videoFile, thumbnail, err := h.readVideoForm(w, r)
	if err != nil {
		return err
	}
	defer f.Cleanup()

	video, err := h.videos.Upload(r.Context(), userID, in, videoFile, thumbnail)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusCreated, video, "Video uploaded successfully")
}

// Watch handles GET /api/v1/videos/{videoID}/watch
func (h *VideoHandler) Watch(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoID", "Video")
	if err != nil {
		return err
	}

	res, err := h.videos.Watch(r.Context(), userID, videoID)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, res, "Video fetched successfully")
}

// ToggleLike handles POST /api/v1/videos/{videoID}/like
func (h *VideoHandler) ToggleLike(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoID", "Video")
	if err != nil {
		return err
	}

	res, err := h.videos.ToggleLike(r.Context(), userID, videoID)
	if err != nil {
		return err
	}
	msg := "Video unliked"
	if res.UserLiked {
		msg = "Video liked"
	}
	return api.JSON(w, http.StatusOK, res, msg)
}

// Liked handles GET /api/v1/videos/liked
func (h *VideoHandler) Liked(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	videos, err := h.videos.Liked(r.Context(), userID)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, videos, "Liked videos fetched successfully")
}

// Mine handles GET /api/v1/videos/mine
func (h *VideoHandler) Mine(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	videos, err := h.videos.ListByOwner(r.Context(), userID)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, videos, "Videos fetched successfully")
}

// Update handles PUT /api/v1/videos/{videoID}
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoID", "Video")
	if err != nil {
		return err
	}

	f, in, videoFile, thumbnail, err := h.readVideoForm(w, r)
	if err != nil {
		return err
	}
	defer f.Cleanup()

	video, err := h.videos.Update(r.Context(), userID, videoID, in, videoFile, thumbnail)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, video, "Video updated successfully")
}

// Delete handles DELETE /api/v1/videos/{videoID}
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoID", "Video")
	if err != nil {
		return err
	}

	video, err := h.videos.Delete(r.Context(), userID, videoID)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, video, "Video deleted successfully")
}
