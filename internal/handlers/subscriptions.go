package handlers

import (
	"errors"
	"net/http"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/repositories"
)

// SubscriptionHandler implements the subscribe toggle and the two
// membership listings around it.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore
	Views         ViewComposer
}

// Toggle handles POST /api/v1/subscriptions/channel/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := auth.ViewerFromContext(ctx)

	channelID, err := pathID(r, "channelId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if channelID == viewerID {
		respondError(ctx, w, badRequest("cannot subscribe to your own channel"))
		return
	}

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, notFound("channel not found"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, viewerID, channelID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	message := "unsubscribed"
	if subscribed {
		message = "subscribed"
	}
	respond(ctx, w, http.StatusOK, map[string]bool{"subscribed": subscribed}, message)
}

// Subscribers handles GET /api/v1/subscriptions/channel/{channelId}/subscribers.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channelID, err := pathID(r, "channelId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	subscribers, err := h.Views.ChannelSubscribers(ctx, channelID, auth.ViewerFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, subscribers, "channel subscribers")
}

// Subscribed handles GET /api/v1/subscriptions/user/{subscriberId}/channels.
func (h SubscriptionHandler) Subscribed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	channels, err := h.Views.SubscribedChannels(ctx, subscriberID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, channels, "subscribed channels")
}
