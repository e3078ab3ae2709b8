package views

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TweetFeed lists a channel's tweets, newest first, with like totals and the
// viewer's like state.
func (c *Composer) TweetFeed(ctx context.Context, ownerID, viewerID string) ([]TweetCard, error) {
	if err := c.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}

	p := From("tweets", "t").
		Match("t.owner_id = ?", ownerID).
		Join("users", "u", "u.id = t.owner_id").
		Compute("(SELECT count(*) FROM likes l WHERE l.tweet_id = t.id)", "likes_count").
		Compute("EXISTS (SELECT 1 FROM likes l WHERE l.tweet_id = t.id AND l.liker_id = ?)", "is_liked", viewerID).
		Sort("t.created_at", true).
		Project("t.id", "t.content", "t.created_at", "u.id", "u.username", "u.full_name", "u.avatar_url")

	return collect(ctx, c.pool, p, func(rows pgx.Rows) (TweetCard, error) {
		var tc TweetCard
		err := rows.Scan(&tc.ID, &tc.Content, &tc.CreatedAt,
			&tc.OwnerDetails.ID, &tc.OwnerDetails.Username, &tc.OwnerDetails.FullName,
			&tc.OwnerDetails.AvatarURL, &tc.LikesCount, &tc.IsLiked)
		return tc, err
	})
}
