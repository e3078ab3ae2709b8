package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/middleware"
)

// NewRouter assembles the full route table. Mutating routes sit behind the
// access-token gate; public read routes run with Optional auth so viewer-
// relative fields resolve when a token happens to be present.
func NewRouter(deps Dependencies, db Pinger, logger *slog.Logger) http.Handler {
	users := UserHandler{
		Users:    deps.Users,
		Tokens:   deps.Tokens,
		Views:    deps.Views,
		Media:    deps.Media,
		Limiter:  deps.LoginLimiter,
		StageDir: deps.UploadDir,
	}
	videos := VideoHandler{
		Videos:   deps.Videos,
		Views:    deps.Views,
		Media:    deps.Media,
		Prober:   deps.Prober,
		StageDir: deps.UploadDir,
	}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos, Views: deps.Views}
	tweets := TweetHandler{Tweets: deps.Tweets, Views: deps.Views}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos, Views: deps.Views}
	likes := LikeHandler{Likes: deps.Likes, Videos: deps.Videos, Comments: deps.Comments, Tweets: deps.Tweets}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Users: deps.Users, Views: deps.Views}
	dashboard := DashboardHandler{Views: deps.Views}
	health := HealthHandler{DB: db}

	requireAuth := auth.Require(deps.Tokens, func(w http.ResponseWriter, r *http.Request) {
		respondError(r.Context(), w, unauthorized("authentication required"))
	})
	optionalAuth := auth.Optional(deps.Tokens)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger))

	r.Get("/healthz", health.Check)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", users.Register)
			r.Post("/login", users.Login)
			r.Post("/refresh", users.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/channel/{username}", users.ChannelProfile)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", users.Logout)
				r.Post("/change-password", users.ChangePassword)
				r.Get("/me", users.Current)
				r.Patch("/me", users.UpdateAccount)
				r.Patch("/me/avatar", users.UpdateAvatar)
				r.Patch("/me/cover", users.UpdateCover)
			})
		})

		r.Route("/videos", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/", videos.Feed)
				r.Get("/{videoId}", videos.Get)
				r.Get("/{videoId}/likes", videos.Likers)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", videos.Publish)
				r.Patch("/{videoId}", videos.Update)
				r.Delete("/{videoId}", videos.Delete)
				r.Patch("/{videoId}/toggle-publish", videos.TogglePublish)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/{videoId}", comments.Thread)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/{videoId}", comments.Create)
				r.Patch("/c/{commentId}", comments.Update)
				r.Delete("/c/{commentId}", comments.Delete)
			})
		})

		r.Route("/tweets", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/user/{userId}", tweets.Feed)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", tweets.Create)
				r.Patch("/{tweetId}", tweets.Update)
				r.Delete("/{tweetId}", tweets.Delete)
			})
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/user/{userId}", playlists.ForUser)
				r.Get("/{playlistId}", playlists.Get)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", playlists.Create)
				r.Patch("/{playlistId}", playlists.Update)
				r.Delete("/{playlistId}", playlists.Delete)
				r.Post("/{playlistId}/videos/{videoId}", playlists.AddVideo)
				r.Delete("/{playlistId}/videos/{videoId}", playlists.RemoveVideo)
			})
		})

		r.Route("/likes", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/video/{videoId}", likes.ToggleVideo)
			r.Post("/comment/{commentId}", likes.ToggleComment)
			r.Post("/tweet/{tweetId}", likes.ToggleTweet)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/channel/{channelId}/subscribers", subscriptions.Subscribers)
				r.Get("/user/{subscriberId}/channels", subscriptions.Subscribed)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/channel/{channelId}", subscriptions.Toggle)
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/stats", dashboard.Stats)
			r.Get("/videos", dashboard.Videos)
		})
	})

	return r
}
