package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeTarget names the kind of document a like points at
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
)

// Like records that a user likes one video or comment
type Like struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	ModelID   primitive.ObjectID `bson:"model_id" json:"modelId"`
	ModelName LikeTarget         `bson:"model_name" json:"modelName"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// View records that a user has watched a video at least once
type View struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	VideoID   primitive.ObjectID `bson:"video_id" json:"videoId"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
