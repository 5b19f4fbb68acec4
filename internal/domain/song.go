package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Song is an uploaded audio track
type Song struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Owner     primitive.ObjectID `bson:"owner" json:"owner"`
	Title     string             `bson:"title" json:"title"`
	Artist    string             `bson:"artist,omitempty" json:"artist,omitempty"`
	SongFile  string             `bson:"song_file" json:"songFile"`
	Duration  float64            `bson:"duration" json:"duration"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// SongInput holds the text fields of a song upload
type SongInput struct {
	Title  string
	Artist string
}
