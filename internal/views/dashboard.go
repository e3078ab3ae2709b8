package views

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// ChannelStats aggregates a channel's totals for its owner dashboard.
func (c *Composer) ChannelStats(ctx context.Context, channelID string) (ChannelStats, error) {
	p := From("users", "u").
		Match("u.id = ?", channelID).
		Compute("(SELECT count(*) FROM videos v WHERE v.owner_id = u.id)", "total_videos").
		Compute("(SELECT COALESCE(sum(v.views), 0) FROM videos v WHERE v.owner_id = u.id)", "total_views").
		Compute("(SELECT count(*) FROM subscriptions s WHERE s.channel_id = u.id)", "total_subscribers").
		Compute("(SELECT count(*) FROM likes l JOIN videos v ON v.id = l.video_id WHERE v.owner_id = u.id)", "total_likes").
		Project("u.id")

	stats, err := collect(ctx, c.pool, p, func(rows pgx.Rows) (ChannelStats, error) {
		var cs ChannelStats
		err := rows.Scan(&cs.ChannelID, &cs.TotalVideos, &cs.TotalViews,
			&cs.TotalSubscribers, &cs.TotalLikes)
		return cs, err
	})
	if err != nil {
		return ChannelStats{}, err
	}
	if len(stats) == 0 {
		return ChannelStats{}, ErrScopeNotFound
	}
	return stats[0], nil
}

// ChannelVideos pages through every video on a channel, unpublished entries
// included. Owner-only; the handler enforces that.
func (c *Composer) ChannelVideos(ctx context.Context, channelID string, page, limit int) (Page[DashboardVideo], error) {
	if err := c.requireUser(ctx, channelID); err != nil {
		return Page[DashboardVideo]{}, err
	}

	p := From("videos", "v").
		Match("v.owner_id = ?", channelID).
		Compute("(SELECT count(*) FROM likes l WHERE l.video_id = v.id)", "likes_count").
		Sort("v.created_at", true).
		Project("v.id", "v.title", "v.thumbnail_url", "v.duration", "v.views", "v.published", "v.created_at")

	return paginate(ctx, c.pool, p, page, limit, func(rows pgx.Rows) (DashboardVideo, error) {
		var dv DashboardVideo
		err := rows.Scan(&dv.ID, &dv.Title, &dv.ThumbnailURL, &dv.Duration, &dv.Views,
			&dv.Published, &dv.CreatedAt, &dv.LikesCount)
		return dv, err
	})
}
