package service

import (
	"context"
	stderrors "errors"
	"strings"

	"vidtube/internal/domain"
	"vidtube/internal/repository"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type commentService struct {
	comments repository.CommentRepository
	videos   repository.VideoRepository
	likes    repository.LikeRepository
	logger   *logger.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(comments repository.CommentRepository, videos repository.VideoRepository, likes repository.LikeRepository, logger *logger.Logger) CommentService {
	return &commentService{comments: comments, videos: videos, likes: likes, logger: logger}
}

// Create adds a top-level comment on a video or a reply to a top-level comment.
// A reply inherits the video of its parent.
func (s *commentService) Create(ctx context.Context, userID primitive.ObjectID, in domain.CreateCommentInput) (*domain.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, errors.NewValidationError("Content is required", map[string]interface{}{"field": "content"})
	}

	comment := &domain.Comment{UserID: userID, Content: content}

	switch {
	case in.ParentCommentID != "":
		parentID, err := parseID(in.ParentCommentID, "parent_comment_id")
		if err != nil {
			return nil, err
		}
		parent, err := s.getComment(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent.IsReply() {
			return nil, errors.NewValidationError("Replies cannot be nested", map[string]interface{}{"field": "parent_comment_id"})
		}
		comment.VideoID = parent.VideoID
		comment.ParentCommentID = &parent.ID

	case in.VideoID != "":
		videoID, err := parseID(in.VideoID, "video_id")
		if err != nil {
			return nil, err
		}
		if _, err := s.videos.GetByID(ctx, videoID); err != nil {
			if stderrors.Is(err, repository.ErrNotFound) {
				return nil, errors.NewNotFoundError("Video does not exist")
			}
			return nil, errors.NewInternalError("Failed to load video", err)
		}
		comment.VideoID = videoID

	default:
		return nil, errors.NewValidationError("video_id or parent_comment_id is required", nil)
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, errors.NewInternalError("Failed to save comment", err)
	}
	return comment, nil
}

func (s *commentService) ListByVideo(ctx context.Context, videoID primitive.ObjectID, page int) ([]domain.CommentView, error) {
	if page < 1 {
		page = 1
	}
	comments, err := s.comments.ListByVideo(ctx, videoID, page)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load comments", err)
	}
	return comments, nil
}

func (s *commentService) ListReplies(ctx context.Context, parentID primitive.ObjectID) ([]domain.CommentView, error) {
	replies, err := s.comments.ListReplies(ctx, parentID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load replies", err)
	}
	return replies, nil
}

func (s *commentService) Update(ctx context.Context, userID, commentID primitive.ObjectID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.NewValidationError("Content is required", map[string]interface{}{"field": "content"})
	}

	comment, err := s.comments.UpdateContent(ctx, commentID, userID, content)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("Comment does not exist")
		}
		return nil, errors.NewInternalError("Failed to update comment", err)
	}
	return comment, nil
}

// Delete removes a comment with its direct replies and their likes.
// Deeper descendants are not visited.
func (s *commentService) Delete(ctx context.Context, userID, commentID primitive.ObjectID) (*domain.CommentDeleteResult, error) {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, errors.NewNotFoundError("Comment does not exist")
	}

	replyIDs, err := s.comments.ReplyIDs(ctx, commentID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load replies", err)
	}

	ids := append([]primitive.ObjectID{commentID}, replyIDs...)
	deleted, err := s.comments.DeleteMany(ctx, ids)
	if err != nil {
		return nil, errors.NewInternalError("Failed to delete comment", err)
	}
	if _, err := s.likes.DeleteForTargets(ctx, ids, domain.LikeTargetComment); err != nil {
		s.logger.WithError(err).WithField("comment_id", commentID.Hex()).Error("Failed to delete comment likes")
	}

	replies := deleted - 1
	if replies < 0 {
		replies = 0
	}
	return &domain.CommentDeleteResult{Comment: comment, DeletedReplies: replies}, nil
}

func (s *commentService) ToggleLike(ctx context.Context, userID, commentID primitive.ObjectID) (*domain.CommentLikeResult, error) {
	if _, err := s.getComment(ctx, commentID); err != nil {
		return nil, err
	}

	liked, err := s.likes.Toggle(ctx, userID, commentID, domain.LikeTargetComment)
	if err != nil {
		return nil, errors.NewInternalError("Failed to toggle like", err)
	}
	count, err := s.likes.Count(ctx, commentID, domain.LikeTargetComment)
	if err != nil {
		return nil, errors.NewInternalError("Failed to count likes", err)
	}

	return &domain.CommentLikeResult{CommentID: commentID.Hex(), Likes: count, UserLiked: liked}, nil
}

func (s *commentService) getComment(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("Comment does not exist")
		}
		return nil, errors.NewInternalError("Failed to load comment", err)
	}
	return comment, nil
}

// parseID converts a hex id from a request body
func parseID(hex, field string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, errors.NewValidationError("Invalid id", map[string]interface{}{"field": field})
	}
	return id, nil
}
