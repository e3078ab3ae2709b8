package views

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// FeedOptions scope and shape the video feed.
type FeedOptions struct {
	// Query is a free-text title search; empty means no text predicate.
	Query string
	// OwnerID scopes the feed to one channel; empty means all channels.
	// When both Query and OwnerID are present they widen each other (OR).
	OwnerID string
	// SortBy is one of createdAt, views, duration, title.
	SortBy    string
	Ascending bool
	Page      int
	Limit     int
	// ViewerID unlocks the viewer's own unpublished videos.
	ViewerID string
}

// VideoFeed lists published videos with their owners resolved, filtered,
// sorted, and paginated. Unpublished videos appear only to their owner.
func (c *Composer) VideoFeed(ctx context.Context, opts FeedOptions) (Page[VideoCard], error) {
	p := From("videos", "v")

	if opts.Query != "" && opts.OwnerID != "" {
		p.MatchAny()
	}
	if opts.Query != "" {
		p.Match("v.title ILIKE ?", "%"+opts.Query+"%")
	}
	if opts.OwnerID != "" {
		p.Match("v.owner_id = ?", opts.OwnerID)
	}

	p.Join("users", "u", "u.id = v.owner_id")

	sortCol, ok := videoSortColumns[opts.SortBy]
	if !ok {
		sortCol, opts.Ascending = "v.created_at", false
	}
	p.Sort(sortCol, !opts.Ascending).
		PostFilter("v.published OR v.owner_id = ?", opts.ViewerID).
		Project(videoCardColumns...)

	return paginate(ctx, c.pool, p, opts.Page, opts.Limit, scanVideoCard)
}

var videoCardColumns = []string{
	"v.id", "v.title", "v.description", "v.video_url", "v.thumbnail_url",
	"v.duration", "v.views", "v.published", "v.created_at",
	"u.id", "u.username", "u.full_name", "u.avatar_url",
}

func scanVideoCard(rows pgx.Rows) (VideoCard, error) {
	var vc VideoCard
	err := rows.Scan(&vc.ID, &vc.Title, &vc.Description, &vc.VideoURL, &vc.ThumbnailURL,
		&vc.Duration, &vc.Views, &vc.Published, &vc.CreatedAt,
		&vc.Owner.ID, &vc.Owner.Username, &vc.Owner.FullName, &vc.Owner.AvatarURL)
	return vc, err
}

// VideoLikers lists the likes on one video, newest first, each with the
// liker and the liked video (owner resolved) attached.
func (c *Composer) VideoLikers(ctx context.Context, videoID string) ([]VideoLike, error) {
	p := From("likes", "l").
		Match("l.video_id = ?", videoID).
		Join("users", "liker", "liker.id = l.liker_id").
		Join("videos", "v", "v.id = l.video_id").
		Join("users", "u", "u.id = v.owner_id").
		Sort("l.created_at", true).
		Project(append([]string{
			"l.created_at", "liker.id", "liker.username", "liker.full_name", "liker.avatar_url",
		}, videoCardColumns...)...)

	likes, err := collect(ctx, c.pool, p, func(rows pgx.Rows) (VideoLike, error) {
		var vl VideoLike
		err := rows.Scan(&vl.LikedAt,
			&vl.Liker.ID, &vl.Liker.Username, &vl.Liker.FullName, &vl.Liker.AvatarURL,
			&vl.Video.ID, &vl.Video.Title, &vl.Video.Description, &vl.Video.VideoURL,
			&vl.Video.ThumbnailURL, &vl.Video.Duration, &vl.Video.Views, &vl.Video.Published,
			&vl.Video.CreatedAt, &vl.Video.Owner.ID, &vl.Video.Owner.Username,
			&vl.Video.Owner.FullName, &vl.Video.Owner.AvatarURL)
		return vl, err
	})
	if err != nil {
		return nil, err
	}
	if len(likes) == 0 {
		// Distinguish an unliked video from an unknown one.
		if err := c.requireVideo(ctx, videoID); err != nil {
			return nil, err
		}
	}
	return likes, nil
}

func (c *Composer) requireVideo(ctx context.Context, videoID string) error {
	p := From("videos", "v").
		Match("v.id = ?", videoID).
		Project("v.id")

	ids, err := collect(ctx, c.pool, p, func(rows pgx.Rows) (string, error) {
		var id string
		err := rows.Scan(&id)
		return id, err
	})
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrScopeNotFound
	}
	return nil
}
