package repository

import (
	"regexp"

	"vidtube/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names
const (
	CollectionUsers         = "users"
	CollectionVideos        = "videos"
	CollectionComments      = "comments"
	CollectionLikes         = "likes"
	CollectionViews         = "views"
	CollectionSubscriptions = "subscriptions"
	CollectionSongs         = "songs"
)

// watchHistoryUpdate removes videoID from the stored history, puts it first
// and keeps at most max entries. It runs as a single update pipeline.
func watchHistoryUpdate(videoID primitive.ObjectID, max int) mongo.Pipeline {
	existing := bson.D{{Key: "$ifNull", Value: bson.A{"$watch_history", bson.A{}}}}
	withoutVideo := bson.D{{Key: "$filter", Value: bson.D{
		{Key: "input", Value: existing},
		{Key: "as", Value: "h"},
		{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$h", videoID}}}},
	}}}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "watch_history", Value: bson.D{{Key: "$slice", Value: bson.A{
				bson.D{{Key: "$concatArrays", Value: bson.A{bson.A{videoID}, withoutVideo}}},
				max,
			}}}},
			{Key: "updated_at", Value: "$$NOW"},
		}}},
	}
}

// searchFilter matches query as a literal, case-insensitive substring
func searchFilter(query string) bson.M {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"title": re},
		bson.M{"video_tag": re},
		bson.M{"description": re},
		bson.M{"username": re},
	}}
}

// likedVideosPipeline runs on the likes collection
func likedVideosPipeline(userID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "user_id", Value: userID},
			{Key: "model_name", Value: domain.LikeTargetVideo},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionVideos},
			{Key: "localField", Value: "model_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "video"},
		}}},
		{{Key: "$unwind", Value: "$video"}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$video"}}}},
	}
}

// commentEnrichment attaches author fields and counts likes and replies
func commentEnrichment() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionUsers},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$author"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionLikes},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "model_id"},
			{Key: "as", Value: "like_docs"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionComments},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "parent_comment_id"},
			{Key: "as", Value: "reply_docs"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "username", Value: "$author.username"},
			{Key: "avatar", Value: "$author.avatar"},
			{Key: "likes", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: "$like_docs"},
				{Key: "as", Value: "l"},
				{Key: "cond", Value: bson.D{{Key: "$eq", Value: bson.A{"$$l.model_name", domain.LikeTargetComment}}}},
			}}}}}},
			{Key: "replies", Value: bson.D{{Key: "$size", Value: "$reply_docs"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "author", Value: 0},
			{Key: "like_docs", Value: 0},
			{Key: "reply_docs", Value: 0},
		}}},
	}
}

// videoCommentsPipeline returns one page of top-level comments of a video
func videoCommentsPipeline(videoID primitive.ObjectID, page int) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "video_id", Value: videoID},
			{Key: "parent_comment_id", Value: nil},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$skip", Value: domain.Skip(page)}},
		{{Key: "$limit", Value: int64(domain.PageSize)}},
	}
	return append(p, commentEnrichment()...)
}

// repliesPipeline returns the direct replies of a comment, oldest first
func repliesPipeline(parentID primitive.ObjectID) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "parent_comment_id", Value: parentID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}}},
	}
	return append(p, commentEnrichment()...)
}

// channelProfilePipeline runs on the users collection
func channelProfilePipeline(username string, viewer *primitive.ObjectID) mongo.Pipeline {
	var isSubscribed interface{} = false
	if viewer != nil {
		isSubscribed = bson.D{{Key: "$in", Value: bson.A{*viewer, "$subscribers.subscriber"}}}
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "username", Value: username}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionSubscriptions},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "subscribe_to"},
			{Key: "as", Value: "subscribers"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionSubscriptions},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "subscriber"},
			{Key: "as", Value: "subscribed_to"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionVideos},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "owner"},
			{Key: "pipeline", Value: bson.A{bson.D{{Key: "$project", Value: bson.D{{Key: "_id", Value: 1}}}}}},
			{Key: "as", Value: "videos"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "username", Value: 1},
			{Key: "full_name", Value: 1},
			{Key: "avatar", Value: 1},
			{Key: "cover_image", Value: 1},
			{Key: "subscribers_count", Value: bson.D{{Key: "$size", Value: "$subscribers"}}},
			{Key: "subscribed_to_count", Value: bson.D{{Key: "$size", Value: "$subscribed_to"}}},
			{Key: "videos_count", Value: bson.D{{Key: "$size", Value: "$videos"}}},
			{Key: "is_subscribed", Value: isSubscribed},
		}}},
	}
}

// subscribedChannelsPipeline runs on the subscriptions collection
func subscribedChannelsPipeline(subscriber primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "subscriber", Value: subscriber}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionUsers},
			{Key: "localField", Value: "subscribe_to"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "channel"},
		}}},
		{{Key: "$unwind", Value: "$channel"}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: "$channel._id"},
			{Key: "username", Value: "$channel.username"},
			{Key: "full_name", Value: "$channel.full_name"},
			{Key: "avatar", Value: "$channel.avatar"},
		}}},
	}
}

// subscriptionFeedPipeline groups the videos of every followed channel,
// newest first, and drops channels without videos.
func subscriptionFeedPipeline(subscriber primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "subscriber", Value: subscriber}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionUsers},
			{Key: "localField", Value: "subscribe_to"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "channel"},
		}}},
		{{Key: "$unwind", Value: "$channel"}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionVideos},
			{Key: "let", Value: bson.D{{Key: "owner", Value: "$subscribe_to"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
					{Key: "$eq", Value: bson.A{"$owner", "$$owner"}},
				}}}}},
				bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
			}},
			{Key: "as", Value: "videos"},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "videos", Value: bson.D{{Key: "$ne", Value: bson.A{}}}}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: "$channel._id"},
			{Key: "username", Value: "$channel.username"},
			{Key: "avatar", Value: "$channel.avatar"},
			{Key: "videos", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "username", Value: 1}}}},
	}
}
