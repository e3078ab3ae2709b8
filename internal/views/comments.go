package views

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// CommentThread pages through a video's comments, newest first, with each
// owner flattened, like totals, and the viewer's like state.
func (c *Composer) CommentThread(ctx context.Context, videoID, viewerID string, page, limit int) (Page[CommentCard], error) {
	if err := c.requireVideo(ctx, videoID); err != nil {
		return Page[CommentCard]{}, err
	}

	p := From("comments", "cm").
		Match("cm.video_id = ?", videoID).
		Join("users", "u", "u.id = cm.owner_id").
		Compute("(SELECT count(*) FROM likes l WHERE l.comment_id = cm.id)", "likes_count").
		Compute("EXISTS (SELECT 1 FROM likes l WHERE l.comment_id = cm.id AND l.liker_id = ?)", "is_liked", viewerID).
		Sort("cm.created_at", true).
		Project("cm.id", "cm.content", "cm.created_at", "u.id", "u.username", "u.full_name", "u.avatar_url")

	return paginate(ctx, c.pool, p, page, limit, func(rows pgx.Rows) (CommentCard, error) {
		var cc CommentCard
		err := rows.Scan(&cc.ID, &cc.Content, &cc.CreatedAt,
			&cc.Owner.ID, &cc.Owner.Username, &cc.Owner.FullName, &cc.Owner.AvatarURL,
			&cc.LikesCount, &cc.IsLiked)
		return cc, err
	})
}
