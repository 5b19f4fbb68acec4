package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoTags lists the accepted categories of a video
var VideoTags = []string{"games", "learning", "music", "comedy", "news", "serials", "others"}

// NormalizeTag lowercases tag and reports whether it is an accepted category
func NormalizeTag(tag string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(tag))
	for _, v := range VideoTags {
		if v == t {
			return t, true
		}
	}
	return t, false
}

// Video is an uploaded video and its metadata
type Video struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	Username    string             `bson:"username" json:"username"`
	VideoFile   string             `bson:"video_file" json:"videoFile"`
	Thumbnail   string             `bson:"thumbnail" json:"thumbnail"`
	Duration    float64            `bson:"duration" json:"duration"`
	Width       int                `bson:"width,omitempty" json:"width,omitempty"`
	Height      int                `bson:"height,omitempty" json:"height,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	VideoTag    string             `bson:"video_tag" json:"videoTag"`
	Views       int64              `bson:"views" json:"views"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// VideoInput holds the text fields of an upload or update form
type VideoInput struct {
	Title       string
	Description string
	VideoTag    string
}

// VideoPatch lists the fields written by an update
type VideoPatch struct {
	Title       string
	Description string
	VideoTag    string
	VideoFile   string
	Thumbnail   string
	Duration    float64
	Width       int
	Height      int
}

// WatchResult is returned when a user opens a video
type WatchResult struct {
	Video        *Video `json:"video"`
	Likes        int64  `json:"likes"`
	Subscribers  int64  `json:"subscribers"`
	UserLiked    bool   `json:"userLiked"`
	IsSubscribed bool   `json:"isSubscribed"`
}

// VideoLikeResult reports the state of a video like after a toggle
type VideoLikeResult struct {
	VideoID   string `json:"video_id"`
	Likes     int64  `json:"likes"`
	UserLiked bool   `json:"userLiked"`
}

// ChannelVideos groups the videos of one subscribed channel
type ChannelVideos struct {
	Channel  primitive.ObjectID `bson:"_id" json:"channel"`
	Username string             `bson:"username" json:"username"`
	Avatar   string             `bson:"avatar" json:"avatar"`
	Videos   []Video            `bson:"videos" json:"videos"`
}
