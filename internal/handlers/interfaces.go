package handlers

import (
	"context"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/views"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
	UpdateCover(ctx context.Context, id, coverURL string) error
	SetRefreshToken(ctx context.Context, id, refreshToken string) error
}

// TokenIssuer issues and verifies session token pairs.
type TokenIssuer interface {
	Issue(userID string) (models.SessionTokens, error)
	Verify(tokenStr string, kind auth.TokenKind) (string, error)
}

// VideoStore captures persistence for video records.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	UpdateDetails(ctx context.Context, video models.Video) error
	TogglePublished(ctx context.Context, id string) (bool, error)
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// CommentStore captures persistence for comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

// TweetStore captures persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

// PlaylistStore captures persistence for playlists and their membership.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	UpdateDetails(ctx context.Context, id, name, description string) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// LikeStore toggles like membership.
type LikeStore interface {
	Toggle(ctx context.Context, likerID string, target models.LikeTarget, targetID string) (bool, error)
}

// SubscriptionStore toggles subscription membership.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
}

// ViewComposer builds the read models served by GET endpoints.
type ViewComposer interface {
	ChannelProfile(ctx context.Context, username, viewerID string) (views.ChannelProfile, error)
	ChannelSubscribers(ctx context.Context, channelID, viewerID string) ([]views.ChannelSubscriber, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]views.SubscribedChannel, error)
	VideoFeed(ctx context.Context, opts views.FeedOptions) (views.Page[views.VideoCard], error)
	VideoLikers(ctx context.Context, videoID string) ([]views.VideoLike, error)
	UserPlaylists(ctx context.Context, ownerID string) ([]views.PlaylistSummary, error)
	PlaylistDetail(ctx context.Context, playlistID string) (views.PlaylistDetail, error)
	TweetFeed(ctx context.Context, ownerID, viewerID string) ([]views.TweetCard, error)
	CommentThread(ctx context.Context, videoID, viewerID string, page, limit int) (views.Page[views.CommentCard], error)
	ChannelStats(ctx context.Context, channelID string) (views.ChannelStats, error)
	ChannelVideos(ctx context.Context, channelID string, page, limit int) (views.Page[views.DashboardVideo], error)
}

// MediaStore binds staged uploads to durable objects.
type MediaStore interface {
	Upload(ctx context.Context, localPath, keyPrefix string) (string, error)
	Delete(ctx context.Context, objectURL string) error
}

// DurationProber measures playback duration of a staged upload.
type DurationProber interface {
	Duration(ctx context.Context, localPath string) (float64, error)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Tokens        TokenIssuer
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Playlists     PlaylistStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Views         ViewComposer
	Media         MediaStore
	Prober        DurationProber
	LoginLimiter  RateLimiter
	UploadDir     string
}
