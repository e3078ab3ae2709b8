package app

import (
	"time"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/config"
	"github.com/clipstream/backend/internal/db"
	"github.com/clipstream/backend/internal/handlers"
	"github.com/clipstream/backend/internal/media"
	"github.com/clipstream/backend/internal/middleware"
	"github.com/clipstream/backend/internal/repositories"
	"github.com/clipstream/backend/internal/views"
)

// buildDependencies wires together concrete implementations used by the
// HTTP handlers. The media store is passed in because its construction can
// fail and needs the serve context.
func buildDependencies(pool db.Pool, cfg config.Config, store media.Store) handlers.Dependencies {
	return handlers.Dependencies{
		Users:         repositories.NewPostgresUserRepository(pool),
		Tokens:        auth.NewTokenService(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL),
		Videos:        repositories.NewPostgresVideoRepository(pool),
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Tweets:        repositories.NewPostgresTweetRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		Likes:         repositories.NewPostgresLikeRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		Views:         views.NewComposer(pool),
		Media:         store,
		Prober:        media.NewFFProbe(cfg.FFProbePath, cfg.FFProbeTimeout),
		LoginLimiter:  middleware.NewIPRateLimiter(cfg.LoginRateLimit, time.Minute, cfg.LoginRateBurst, 10*time.Minute),
		UploadDir:     cfg.UploadDir,
	}
}
