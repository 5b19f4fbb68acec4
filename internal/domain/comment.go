package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a top-level comment on a video or a reply to one
type Comment struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	UserID          primitive.ObjectID  `bson:"user_id" json:"userId"`
	Content         string              `bson:"content" json:"content"`
	VideoID         primitive.ObjectID  `bson:"video_id" json:"videoId"`
	ParentCommentID *primitive.ObjectID `bson:"parent_comment_id" json:"parentCommentId"`
	CreatedAt       time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updated_at" json:"updatedAt"`
}

// IsReply reports whether the comment answers another comment
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}

// CommentView is a comment enriched with its author and counters
type CommentView struct {
	Comment  `bson:",inline"`
	Username string `bson:"username" json:"username"`
	Avatar   string `bson:"avatar" json:"avatar"`
	Likes    int64  `bson:"likes" json:"likes"`
	Replies  int64  `bson:"replies" json:"replies"`
}

// CreateCommentInput is the body of a new comment
type CreateCommentInput struct {
	Content         string `json:"content"`
	VideoID         string `json:"video_id"`
	ParentCommentID string `json:"parent_comment_id"`
}

// UpdateCommentInput is the body of a comment edit
type UpdateCommentInput struct {
	Content string `json:"content"`
}

// CommentDeleteResult reports what a delete removed
type CommentDeleteResult struct {
	Comment        *Comment `json:"comment"`
	DeletedReplies int64    `json:"deletedReplies"`
}

// CommentLikeResult reports the state of a comment like after a toggle
type CommentLikeResult struct {
	CommentID string `json:"comment_id"`
	Likes     int64  `json:"likes"`
	UserLiked bool   `json:"userLiked"`
}
