package handler

import (
	"net/http"

	"vidtube/internal/domain"
	"vidtube/internal/service"
	"vidtube/pkg/api"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles comment requests
type CommentHandler struct {
	comments service.CommentService
	logger   *logger.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(comments service.CommentService, logger *logger.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// Create handles POST /api/v1/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	var in domain.CreateCommentInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}

	comment, err := h.comments.Create(r.Context(), userID, in)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusCreated, comment, "Comment added successfully")
}

// List handles GET /api/v1/comments. It lists the replies of
// parent_comment_id when given, otherwise a page of video_id's comments.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	if parent := q.Get("parent_comment_id"); parent != "" {
		parentID, err := primitive.ObjectIDFromHex(parent)
		if err != nil {
			return errors.NewNotFoundError("Comment does not exist")
		}
		replies, err := h.comments.ListReplies(r.Context(), parentID)
		if err != nil {
			return err
		}
		return api.JSON(w, http.StatusOK, replies, "Replies fetched successfully")
	}

	video := q.Get("video_id")
	if video == "" {
		return errors.NewValidationError("video_id or parent_comment_id is required", nil)
	}
	videoID, err := primitive.ObjectIDFromHex(video)
	if err != nil {
		return errors.NewNotFoundError("Video does not exist")
	}

	comments, err := h.comments.ListByVideo(r.Context(), videoID, domain.ParsePage(q.Get("page")))
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, comments, "Comments fetched successfully")
}

// Update handles PATCH /api/v1/comments/{commentID}
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	commentID, err := pathID(r, "commentID", "Comment")
	if err != nil {
		return err
	}
	var in domain.UpdateCommentInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}

	comment, err := h.comments.Update(r.Context(), userID, commentID, in.Content)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, comment, "Comment updated successfully")
}

// Delete handles DELETE /api/v1/comments/{commentID}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	commentID, err := pathID(r, "commentID", "Comment")
	if err != nil {
		return err
	}

	res, err := h.comments.Delete(r.Context(), userID, commentID)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, res, "Comment deleted successfully")
}

// ToggleLike handles POST /api/v1/comments/{commentID}/like
func (h *CommentHandler) ToggleLike(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	commentID, err := pathID(r, "commentID", "Comment")
	if err != nil {
		return err
	}

	res, err := h.comments.ToggleLike(r.Context(), userID, commentID)
	if err != nil {
		return err
	}
	msg := "Comment unliked"
	if res.UserLiked {
		msg = "Comment liked"
	}
	return api.JSON(w, http.StatusOK, res, msg)
}
