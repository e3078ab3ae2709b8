package views

import (
	"context"

	"github.com/jackc/pgx/v5"
)

var playlistGroupColumns = []string{
	"p.id", "p.name", "p.description", "p.created_at", "p.updated_at",
}

// UserPlaylists lists a user's playlists, newest first, each with how many
// videos it holds and their combined view count.
func (c *Composer) UserPlaylists(ctx context.Context, ownerID string) ([]PlaylistSummary, error) {
	if err := c.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}

	p := From("playlists", "p").
		Match("p.owner_id = ?", ownerID).
		Join("playlist_videos", "pv", "pv.playlist_id = p.id").
		Join("videos", "v", "v.id = pv.video_id").
		Compute("count(v.id)", "total_videos").
		Compute("COALESCE(sum(v.views), 0)", "total_views").
		GroupBy(playlistGroupColumns...).
		Sort("p.created_at", true).
		Project(playlistGroupColumns...)

	return collect(ctx, c.pool, p, scanPlaylistSummary)
}

func scanPlaylistSummary(rows pgx.Rows) (PlaylistSummary, error) {
	var ps PlaylistSummary
	err := rows.Scan(&ps.ID, &ps.Name, &ps.Description, &ps.CreatedAt, &ps.UpdatedAt,
		&ps.TotalVideos, &ps.TotalViews)
	return ps, err
}

// PlaylistDetail resolves one playlist with its owner flattened, its totals
// computed over published videos only, and the published members listed in
// playlist order.
func (c *Composer) PlaylistDetail(ctx context.Context, playlistID string) (PlaylistDetail, error) {
	head := From("playlists", "p").
		Match("p.id = ?", playlistID).
		Join("users", "u", "u.id = p.owner_id").
		Join("playlist_videos", "pv", "pv.playlist_id = p.id").
		Join("videos", "v", "v.id = pv.video_id AND v.published").
		Compute("count(v.id)", "total_videos").
		Compute("COALESCE(sum(v.views), 0)", "total_views").
		GroupBy(append(append([]string{}, playlistGroupColumns...),
			"u.id", "u.username", "u.full_name", "u.avatar_url")...).
		Project(append(append([]string{}, playlistGroupColumns...),
			"u.id", "u.username", "u.full_name", "u.avatar_url")...)

	heads, err := collect(ctx, c.pool, head, func(rows pgx.Rows) (PlaylistDetail, error) {
		var pd PlaylistDetail
		err := rows.Scan(&pd.ID, &pd.Name, &pd.Description, &pd.CreatedAt, &pd.UpdatedAt,
			&pd.Owner.ID, &pd.Owner.Username, &pd.Owner.FullName, &pd.Owner.AvatarURL,
			&pd.TotalVideos, &pd.TotalViews)
		return pd, err
	})
	if err != nil {
		return PlaylistDetail{}, err
	}
	if len(heads) == 0 {
		return PlaylistDetail{}, ErrScopeNotFound
	}

	detail := heads[0]

	members := From("playlist_videos", "pv").
		Match("pv.playlist_id = ?", playlistID).
		Join("videos", "v", "v.id = pv.video_id").
		Join("users", "u", "u.id = v.owner_id").
		Sort("pv.position", false).
		PostFilter("v.published").
		Project(videoCardColumns...)

	detail.Videos, err = collect(ctx, c.pool, members, scanVideoCard)
	if err != nil {
		return PlaylistDetail{}, err
	}

	return detail, nil
}
