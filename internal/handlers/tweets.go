package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// TweetHandler implements the short-post endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	Views   ViewComposer
	NowFunc func() time.Time
}

type tweetView struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toTweetView(tweet models.Tweet) tweetView {
	return tweetView{
		ID:        tweet.ID,
		OwnerID:   tweet.OwnerID,
		Content:   tweet.Content,
		CreatedAt: tweet.CreatedAt,
	}
}

type tweetRequest struct {
	Content string `json:"content" validate:"required"`
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tweetRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	content := trimmed(req.Content)
	if content == "" {
		respondError(ctx, w, badRequest("content must not be blank"))
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   auth.ViewerFromContext(ctx),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusCreated, toTweetView(tweet), "tweet posted")
}

// Feed handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, err := pathID(r, "userId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	feed, err := h.Views.TweetFeed(ctx, ownerID, auth.ViewerFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, feed, "tweet feed")
}

// Update handles PATCH /api/v1/tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, err := h.ownedTweet(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req tweetRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	content := trimmed(req.Content)
	if content == "" {
		respondError(ctx, w, badRequest("content must not be blank"))
		return
	}

	if err := h.Tweets.UpdateContent(ctx, tweet.ID, content); err != nil {
		respondError(ctx, w, err)
		return
	}

	tweet.Content = content
	respond(ctx, w, http.StatusOK, toTweetView(tweet), "tweet updated")
}

// Delete handles DELETE /api/v1/tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, err := h.ownedTweet(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, nil, "tweet deleted")
}

func (h TweetHandler) ownedTweet(r *http.Request) (models.Tweet, error) {
	tweetID, err := pathID(r, "tweetId")
	if err != nil {
		return models.Tweet{}, err
	}

	tweet, err := h.Tweets.FindByID(r.Context(), tweetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Tweet{}, notFound("tweet not found")
		}
		return models.Tweet{}, err
	}

	if tweet.OwnerID != auth.ViewerFromContext(r.Context()) {
		return models.Tweet{}, forbidden("only the author may modify this tweet")
	}
	return tweet, nil
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
