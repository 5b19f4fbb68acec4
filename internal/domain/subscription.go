package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription is a directed edge from a subscriber to a channel
type Subscription struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Subscriber  primitive.ObjectID `bson:"subscriber" json:"subscriber"`
	SubscribeTo primitive.ObjectID `bson:"subscribe_to" json:"subscribeTo"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}

// SubscriptionInput names a channel by its username
type SubscriptionInput struct {
	Username string `json:"username"`
}

// SubscriptionResult reports the edge state after a change
type SubscriptionResult struct {
	Channel     string `json:"channel"`
	Subscribed  bool   `json:"subscribed"`
	Subscribers int64  `json:"subscribers"`
	Changed     bool   `json:"-"`
}

// ChannelSummary is a short description of a followed channel
type ChannelSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Username string             `bson:"username" json:"username"`
	FullName string             `bson:"full_name" json:"fullName"`
	Avatar   string             `bson:"avatar" json:"avatar"`
}
