package models

import "time"

// User represents an account (and therefore a channel) on the platform.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	AvatarURL    string
	CoverURL     string
	Password     string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Video is an uploaded clip. The owner is immutable after creation; both
// media URLs point at the remote object store, never at local files.
type Video struct {
	ID           string
	OwnerID      string
	VideoURL     string
	ThumbnailURL string
	Title        string
	Description  string
	Duration     float64
	Views        int64
	Published    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Comment is a text reply attached to a video.
type Comment struct {
	ID        string
	OwnerID   string
	VideoID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tweet is a short free-standing post on a user's channel.
type Tweet struct {
	ID        string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Playlist is an ordered set of video references owned by a user.
// Membership lives in playlist_videos; duplicates are suppressed by that
// table's primary key.
type Playlist struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LikeTarget names the one entity kind a like may point at.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// Like records that a user liked exactly one of a video, comment, or tweet.
// Presence is the whole state: at most one row exists per (liker, target).
type Like struct {
	ID        string
	LikerID   string
	VideoID   string
	CommentID string
	TweetID   string
	CreatedAt time.Time
}

// Subscription is a directed edge subscriber -> channel.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
