package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipstream/backend/internal/db"
	"github.com/clipstream/backend/internal/models"
)

// PostgresLikeRepository toggles like edges in PostgreSQL.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle flips like membership for the (liker, target) pair. The partial
// unique index on (liker_id, target) makes the insert race-safe: under
// contention exactly one of two concurrent toggles inserts, the other falls
// through to the delete branch.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, likerID string, target models.LikeTarget, targetID string) (bool, error) {
	column, err := likeColumn(target)
	if err != nil {
		return false, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	// The like uniqueness index is partial (one per target column), so the
	// conflict target must repeat its predicate.
	return toggleEdge(ctx, conn,
		`INSERT INTO likes (id, liker_id, `+column+`, created_at)
         VALUES ($1, $2, $3, $4)
         ON CONFLICT (liker_id, `+column+`) WHERE `+column+` IS NOT NULL DO NOTHING`,
		`DELETE FROM likes WHERE liker_id = $1 AND `+column+` = $2`,
		likerID, targetID)
}

func likeColumn(target models.LikeTarget) (string, error) {
	switch target {
	case models.LikeTargetVideo:
		return "video_id", nil
	case models.LikeTargetComment:
		return "comment_id", nil
	case models.LikeTargetTweet:
		return "tweet_id", nil
	default:
		return "", fmt.Errorf("unknown like target %q", target)
	}
}

// PostgresSubscriptionRepository toggles subscription edges in PostgreSQL.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle flips subscription membership for the (subscriber, channel) pair.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return toggleEdge(ctx, conn,
		`INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
         VALUES ($1, $2, $3, $4)
         ON CONFLICT (subscriber_id, channel_id) DO NOTHING`,
		`DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`,
		subscriberID, channelID)
}

// toggleEdge implements create-if-absent / delete-if-present on top of a
// uniqueness constraint. Insert first: zero rows affected means the edge
// already existed, so remove it instead.
func toggleEdge(ctx context.Context, conn *pgxpool.Conn, insertSQL, deleteSQL, actorID, targetID string) (bool, error) {
	tag, err := conn.Exec(ctx, insertSQL, uuid.NewString(), actorID, targetID, time.Now().UTC())
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return false, mapped
		}
		return false, fmt.Errorf("insert edge: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	if _, err := conn.Exec(ctx, deleteSQL, actorID, targetID); err != nil {
		return false, fmt.Errorf("delete edge: %w", err)
	}
	return false, nil
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)
var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
