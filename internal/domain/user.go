package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account that can upload videos and act on content
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	FullName     string               `bson:"full_name" json:"fullName"`
	Password     string               `bson:"password" json:"-"`
	Avatar       string               `bson:"avatar" json:"avatar"`
	CoverImage   string               `bson:"cover_image,omitempty" json:"coverImage,omitempty"`
	WatchHistory []primitive.ObjectID `bson:"watch_history" json:"watchHistory"`
	RefreshToken string               `bson:"refresh_token,omitempty" json:"-"`
	CreatedAt    time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updatedAt"`
}

// RegisterInput holds the text fields of a registration form
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

// LoginInput accepts either a username or an email
type LoginInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is issued on login and refresh
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is returned to the client after a successful login
type LoginResult struct {
	TokenPair
	User *User `json:"user"`
}

// AuthClaims represents the identity carried by an access or refresh token
type AuthClaims struct {
	UserID   string `json:"sub"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Exp      int64  `json:"exp"`
}

// ChannelProfile is the public view of a user's channel
type ChannelProfile struct {
	ID                primitive.ObjectID `bson:"_id" json:"_id"`
	Username          string             `bson:"username" json:"username"`
	FullName          string             `bson:"full_name" json:"fullName"`
	Avatar            string             `bson:"avatar" json:"avatar"`
	CoverImage        string             `bson:"cover_image,omitempty" json:"coverImage,omitempty"`
	SubscribersCount  int64              `bson:"subscribers_count" json:"subscribersCount"`
	SubscribedToCount int64              `bson:"subscribed_to_count" json:"subscribedToCount"`
	IsSubscribed      bool               `bson:"is_subscribed" json:"isSubscribed"`
	VideosCount       int64              `bson:"videos_count" json:"videosCount"`
}
