package views

import "time"

// The structs below are the response-shape contracts of the read models.
// Field sets mirror each view's Project stage exactly; changing either side
// is a breaking API change.

// UserSummary is the flattened owner object embedded in list views.
type UserSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
}

// ChannelProfile is the public profile of a channel with follower counts and
// the viewer-relative subscription flag.
type ChannelProfile struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	FullName          string    `json:"fullName"`
	AvatarURL         string    `json:"avatarUrl"`
	CoverURL          string    `json:"coverUrl"`
	Email             string    `json:"email"`
	CreatedAt         time.Time `json:"createdAt"`
	SubscriberCount   int64     `json:"subscriberCount"`
	SubscribedToCount int64     `json:"subscribedToCount"`
	IsSubscribed      bool      `json:"isSubscribed"`
}

// ChannelSubscriber is one entry of a channel's subscriber list.
type ChannelSubscriber struct {
	Subscriber      UserSummary `json:"subscriber"`
	SubscribedAt    time.Time   `json:"subscribedAt"`
	SubscriberCount int64       `json:"subscriberCount"`
	IsSubscribed    bool        `json:"isSubscribed"`
}

// SubscribedChannel is one entry of the channels a user subscribes to.
type SubscribedChannel struct {
	Channel                UserSummary `json:"channel"`
	SubscribedAt           time.Time   `json:"subscribedAt"`
	SubscribedChannelCount int64       `json:"subscribedChannelCount"`
}

// VideoCard is the denormalized video representation used by the feed, the
// playlist detail, and the liked-videos view.
type VideoCard struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	VideoURL     string      `json:"videoUrl"`
	ThumbnailURL string      `json:"thumbnailUrl"`
	Duration     float64     `json:"duration"`
	Views        int64       `json:"views"`
	Published    bool        `json:"published"`
	CreatedAt    time.Time   `json:"createdAt"`
	Owner        UserSummary `json:"owner"`
}

// PlaylistSummary is one entry of a user's playlist list.
type PlaylistSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	TotalVideos int64     `json:"totalVideos"`
	TotalViews  int64     `json:"totalViews"`
}

// PlaylistDetail is a playlist with its owner flattened and its published
// videos resolved.
type PlaylistDetail struct {
	PlaylistSummary
	Owner  UserSummary `json:"owner"`
	Videos []VideoCard `json:"videos"`
}

// TweetCard is one entry of a channel's tweet feed.
type TweetCard struct {
	ID           string      `json:"id"`
	Content      string      `json:"content"`
	CreatedAt    time.Time   `json:"createdAt"`
	OwnerDetails UserSummary `json:"ownerDetails"`
	LikesCount   int64       `json:"likesCount"`
	IsLiked      bool        `json:"isLiked"`
}

// CommentCard is one entry of a video's comment thread.
type CommentCard struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"createdAt"`
	Owner      UserSummary `json:"owner"`
	LikesCount int64       `json:"likesCount"`
	IsLiked    bool        `json:"isLiked"`
}

// VideoLike is one entry of a video's liker list: who liked, when, and the
// liked video with its owner resolved.
type VideoLike struct {
	LikedAt time.Time   `json:"likedAt"`
	Liker   UserSummary `json:"liker"`
	Video   VideoCard   `json:"video"`
}

// ChannelStats aggregates a channel's totals for the dashboard.
type ChannelStats struct {
	ChannelID        string `json:"channelId"`
	TotalVideos      int64  `json:"totalVideos"`
	TotalViews       int64  `json:"totalViews"`
	TotalSubscribers int64  `json:"totalSubscribers"`
	TotalLikes       int64  `json:"totalLikes"`
}

// DashboardVideo is a channel video row on the owner dashboard, including
// unpublished entries.
type DashboardVideo struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	Published    bool      `json:"published"`
	CreatedAt    time.Time `json:"createdAt"`
	LikesCount   int64     `json:"likesCount"`
}
