package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
	"github.com/clipstream/backend/internal/views"
)

// VideoHandler implements the video publishing and catalog endpoints.
type VideoHandler struct {
	Videos   VideoStore
	Views    ViewComposer
	Media    MediaStore
	Prober   DurationProber
	StageDir string
	NowFunc  func() time.Time
}

type videoView struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	Published    bool      `json:"published"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toVideoView(video models.Video) videoView {
	return videoView{
		ID:           video.ID,
		OwnerID:      video.OwnerID,
		Title:        video.Title,
		Description:  video.Description,
		VideoURL:     video.VideoURL,
		ThumbnailURL: video.ThumbnailURL,
		Duration:     video.Duration,
		Views:        video.Views,
		Published:    video.Published,
		CreatedAt:    video.CreatedAt,
	}
}

// Publish handles POST /api/v1/videos (multipart). The staged video file is
// probed for duration before either object is uploaded, so a corrupt file
// never leaves an orphaned thumbnail behind.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := auth.ViewerFromContext(ctx)

	title := trimmed(r.FormValue("title"))
	description := trimmed(r.FormValue("description"))
	if title == "" {
		respondError(ctx, w, badRequest("title is required"))
		return
	}

	videoPath, err := stageUpload(r, "videoFile", h.StageDir)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	thumbPath, err := stageUpload(r, "thumbnail", h.StageDir)
	if err != nil {
		discardStaged(videoPath)
		respondError(ctx, w, err)
		return
	}

	duration, err := h.Prober.Duration(ctx, videoPath)
	if err != nil {
		discardStaged(videoPath, thumbPath)
		respondError(ctx, w, badRequest("video file is not a playable media file"))
		return
	}

	videoURL, err := h.Media.Upload(ctx, videoPath, "videos")
	if err != nil {
		discardStaged(thumbPath)
		respondError(ctx, w, err)
		return
	}
	thumbURL, err := h.Media.Upload(ctx, thumbPath, "thumbnails")
	if err != nil {
		h.purge(ctx, videoURL)
		respondError(ctx, w, err)
		return
	}

	now := h.now()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Title:        title,
		Description:  description,
		VideoURL:     videoURL,
		ThumbnailURL: thumbURL,
		Duration:     duration,
		Published:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		h.purge(ctx, videoURL)
		h.purge(ctx, thumbURL)
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusCreated, toVideoView(video), "video published")
}

// Feed handles GET /api/v1/videos.
func (h VideoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, limit, err := pageParams(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	query := r.URL.Query()
	ownerID := trimmed(query.Get("userId"))
	if ownerID != "" {
		if err := uuid.Validate(ownerID); err != nil {
			respondError(ctx, w, badRequest("userId is not a valid id"))
			return
		}
	}

	feed, err := h.Views.VideoFeed(ctx, views.FeedOptions{
		Query:     trimmed(query.Get("query")),
		OwnerID:   ownerID,
		SortBy:    trimmed(query.Get("sortBy")),
		Ascending: query.Get("sortType") == "asc",
		Page:      page,
		Limit:     limit,
		ViewerID:  auth.ViewerFromContext(ctx),
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, feed, "video feed")
}

// Get handles GET /api/v1/videos/{videoId}. A successful fetch counts as a
// view; the increment failing is logged, not surfaced.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if !video.Published && video.OwnerID != auth.ViewerFromContext(ctx) {
		respondError(ctx, w, notFound("video not found"))
		return
	}

	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		logging.FromContext(ctx).Warn("increment video views", "videoId", videoID, "error", err)
	} else {
		video.Views++
	}

	respond(ctx, w, http.StatusOK, toVideoView(video), "video")
}

type updateVideoRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// Update handles PATCH /api/v1/videos/{videoId}. JSON bodies update the
// details; multipart bodies may additionally replace the thumbnail.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, err := h.ownedVideo(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	oldThumb := ""
	if isMultipart(r) {
		title := trimmed(r.FormValue("title"))
		if title == "" {
			respondError(ctx, w, badRequest("title is required"))
			return
		}
		video.Title = title
		video.Description = trimmed(r.FormValue("description"))

		thumbPath, err := stageOptionalUpload(r, "thumbnail", h.StageDir)
		if err != nil {
			respondError(ctx, w, err)
			return
		}
		if thumbPath != "" {
			thumbURL, err := h.Media.Upload(ctx, thumbPath, "thumbnails")
			if err != nil {
				respondError(ctx, w, err)
				return
			}
			oldThumb = video.ThumbnailURL
			video.ThumbnailURL = thumbURL
		}
	} else {
		var req updateVideoRequest
		if err := decodeBody(r, &req); err != nil {
			respondError(ctx, w, err)
			return
		}
		video.Title = trimmed(req.Title)
		video.Description = trimmed(req.Description)
	}

	if err := h.Videos.UpdateDetails(ctx, video); err != nil {
		if oldThumb != "" {
			h.purge(ctx, video.ThumbnailURL)
		}
		respondError(ctx, w, err)
		return
	}

	h.purge(ctx, oldThumb)

	respond(ctx, w, http.StatusOK, toVideoView(video), "video updated")
}

// Delete handles DELETE /api/v1/videos/{videoId}. The row is removed first;
// both stored objects are then purged independently so one failed purge
// never strands the other object.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, err := h.ownedVideo(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	h.purge(ctx, video.VideoURL)
	h.purge(ctx, video.ThumbnailURL)

	respond(ctx, w, http.StatusOK, nil, "video deleted")
}

// TogglePublish handles PATCH /api/v1/videos/{videoId}/toggle-publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, err := h.ownedVideo(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	published, err := h.Videos.TogglePublished(ctx, video.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, map[string]bool{"published": published}, "publish state toggled")
}

// Likers handles GET /api/v1/videos/{videoId}/likes.
func (h VideoHandler) Likers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	likers, err := h.Views.VideoLikers(ctx, videoID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, likers, "video likes")
}

// ownedVideo loads the addressed video and checks the viewer owns it.
func (h VideoHandler) ownedVideo(r *http.Request) (models.Video, error) {
	videoID, err := pathID(r, "videoId")
	if err != nil {
		return models.Video{}, err
	}

	video, err := h.Videos.FindByID(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, notFound("video not found")
		}
		return models.Video{}, err
	}

	if video.OwnerID != auth.ViewerFromContext(r.Context()) {
		return models.Video{}, forbidden("only the owner may modify this video")
	}
	return video, nil
}

func (h VideoHandler) purge(ctx context.Context, objectURL string) {
	if objectURL == "" {
		return
	}
	if err := h.Media.Delete(ctx, objectURL); err != nil {
		logging.FromContext(ctx).Warn("purge superseded media object", "url", objectURL, "error", err)
	}
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
