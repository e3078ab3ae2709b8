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

// PlaylistHandler implements playlist CRUD and membership endpoints.
// Membership changes require ownership of the playlist only; videos can be
// collected into a playlist regardless of who uploaded them.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	Views     ViewComposer
	NowFunc   func() time.Time
}

type playlistView struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toPlaylistView(playlist models.Playlist) playlistView {
	return playlistView{
		ID:          playlist.ID,
		OwnerID:     playlist.OwnerID,
		Name:        playlist.Name,
		Description: playlist.Description,
		CreatedAt:   playlist.CreatedAt,
	}
}

type playlistRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req playlistRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	name := trimmed(req.Name)
	if name == "" {
		respondError(ctx, w, badRequest("name must not be blank"))
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     auth.ViewerFromContext(ctx),
		Name:        name,
		Description: trimmed(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusCreated, toPlaylistView(playlist), "playlist created")
}

// ForUser handles GET /api/v1/playlists/user/{userId}.
func (h PlaylistHandler) ForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, err := pathID(r, "userId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	playlists, err := h.Views.UserPlaylists(ctx, ownerID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, playlists, "user playlists")
}

// Get handles GET /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	detail, err := h.Views.PlaylistDetail(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, detail, "playlist")
}

// Update handles PATCH /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req playlistRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	name := trimmed(req.Name)
	if name == "" {
		respondError(ctx, w, badRequest("name must not be blank"))
		return
	}

	description := trimmed(req.Description)
	if err := h.Playlists.UpdateDetails(ctx, playlist.ID, name, description); err != nil {
		respondError(ctx, w, err)
		return
	}

	playlist.Name = name
	playlist.Description = description
	respond(ctx, w, http.StatusOK, toPlaylistView(playlist), "playlist updated")
}

// Delete handles DELETE /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, nil, "playlist deleted")
}

// AddVideo handles POST /api/v1/playlists/{playlistId}/videos/{videoId}.
// Re-adding a member is a no-op success.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, videoID, err := h.membershipTarget(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, nil, "video added to playlist")
}

// RemoveVideo handles DELETE /api/v1/playlists/{playlistId}/videos/{videoId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, videoID, err := h.membershipTarget(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, nil, "video removed from playlist")
}

func (h PlaylistHandler) membershipTarget(r *http.Request) (models.Playlist, string, error) {
	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		return models.Playlist{}, "", err
	}

	videoID, err := pathID(r, "videoId")
	if err != nil {
		return models.Playlist{}, "", err
	}
	if _, err := h.Videos.FindByID(r.Context(), videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Playlist{}, "", notFound("video not found")
		}
		return models.Playlist{}, "", err
	}

	return playlist, videoID, nil
}

func (h PlaylistHandler) ownedPlaylist(r *http.Request) (models.Playlist, error) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		return models.Playlist{}, err
	}

	playlist, err := h.Playlists.FindByID(r.Context(), playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Playlist{}, notFound("playlist not found")
		}
		return models.Playlist{}, err
	}

	if playlist.OwnerID != auth.ViewerFromContext(r.Context()) {
		return models.Playlist{}, forbidden("only the owner may modify this playlist")
	}
	return playlist, nil
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
