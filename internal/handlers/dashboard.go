package handlers

import (
	"net/http"

	"github.com/clipstream/backend/internal/auth"
)

// DashboardHandler serves the owner-facing channel dashboards.
type DashboardHandler struct {
	Views ViewComposer
}

// Stats handles GET /api/v1/dashboard/stats.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.Views.ChannelStats(ctx, auth.ViewerFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, stats, "channel stats")
}

// Videos handles GET /api/v1/dashboard/videos. Unlike the public feed this
// listing includes the viewer's unpublished videos.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, limit, err := pageParams(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	videos, err := h.Views.ChannelVideos(ctx, auth.ViewerFromContext(ctx), page, limit)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, videos, "channel videos")
}
