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

// CommentHandler implements the per-video comment thread endpoints.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	Views    ViewComposer
	NowFunc  func() time.Time
}

type commentView struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCommentView(comment models.Comment) commentView {
	return commentView{
		ID:        comment.ID,
		VideoID:   comment.VideoID,
		OwnerID:   comment.OwnerID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

type commentRequest struct {
	Content string `json:"content" validate:"required"`
}

// Thread handles GET /api/v1/comments/{videoId}.
func (h CommentHandler) Thread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	page, limit, err := pageParams(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	thread, err := h.Views.CommentThread(ctx, videoID, auth.ViewerFromContext(ctx), page, limit)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, thread, "comment thread")
}

// Create handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req commentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	content := trimmed(req.Content)
	if content == "" {
		respondError(ctx, w, badRequest("content must not be blank"))
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, notFound("video not found"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   auth.ViewerFromContext(ctx),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusCreated, toCommentView(comment), "comment added")
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, err := h.ownedComment(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req commentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	content := trimmed(req.Content)
	if content == "" {
		respondError(ctx, w, badRequest("content must not be blank"))
		return
	}

	if err := h.Comments.UpdateContent(ctx, comment.ID, content); err != nil {
		respondError(ctx, w, err)
		return
	}

	comment.Content = content
	respond(ctx, w, http.StatusOK, toCommentView(comment), "comment updated")
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, err := h.ownedComment(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, nil, "comment deleted")
}

func (h CommentHandler) ownedComment(r *http.Request) (models.Comment, error) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		return models.Comment{}, err
	}

	comment, err := h.Comments.FindByID(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Comment{}, notFound("comment not found")
		}
		return models.Comment{}, err
	}

	if comment.OwnerID != auth.ViewerFromContext(r.Context()) {
		return models.Comment{}, forbidden("only the author may modify this comment")
	}
	return comment, nil
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
