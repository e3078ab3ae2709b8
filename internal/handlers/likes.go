package handlers

import (
	"errors"
	"net/http"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// LikeHandler implements the three like-toggle endpoints. Each toggle is
// race-safe: concurrent toggles for the same (liker, target) pair land on a
// unique constraint, so the pair can never be double-liked.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
	Tweets   TweetStore
}

// ToggleVideo handles POST /api/v1/likes/video/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "videoId", models.LikeTargetVideo, func(ctx *http.Request, id string) error {
		_, err := h.Videos.FindByID(ctx.Context(), id)
		return err
	})
}

// ToggleComment handles POST /api/v1/likes/comment/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "commentId", models.LikeTargetComment, func(ctx *http.Request, id string) error {
		_, err := h.Comments.FindByID(ctx.Context(), id)
		return err
	})
}

// ToggleTweet handles POST /api/v1/likes/tweet/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "tweetId", models.LikeTargetTweet, func(ctx *http.Request, id string) error {
		_, err := h.Tweets.FindByID(ctx.Context(), id)
		return err
	})
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, param string,
	target models.LikeTarget, exists func(*http.Request, string) error) {
	ctx := r.Context()

	targetID, err := pathID(r, param)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := exists(r, targetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, notFound(string(target)+" not found"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	liked, err := h.Likes.Toggle(ctx, auth.ViewerFromContext(ctx), target, targetID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	message := "unliked"
	if liked {
		message = "liked"
	}
	respond(ctx, w, http.StatusOK, map[string]bool{"liked": liked}, message)
}
