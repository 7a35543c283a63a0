package handler

import (
	"net/http"

	"omegavideos/internal/httputil"
	"omegavideos/internal/model"
	"omegavideos/internal/service"
	"omegavideos/internal/transport/http/middleware"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// List handles GET /api/videos/{id}/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	videoID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid video ID")
		return
	}

	comments, err := h.commentService.List(r.Context(), middleware.ViewerID(r.Context()), videoID)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, comments)
}

// Replies handles GET /api/comments/{id}/replies
func (h *CommentHandler) Replies(w http.ResponseWriter, r *http.Request) {
	commentID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	replies, err := h.commentService.Replies(r.Context(), middleware.ViewerID(r.Context()), commentID)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, replies)
}

// Create handles POST /api/videos/{id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	videoID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid video ID")
		return
	}

	var req model.CreateCommentRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), middleware.ViewerID(r.Context()), videoID, req)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// Like handles POST /api/comments/{id}/like
func (h *CommentHandler) Like(w http.ResponseWriter, r *http.Request) {
	commentID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	res, err := h.commentService.ToggleLike(r.Context(), middleware.ViewerID(r.Context()), commentID)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	writeLike(w, res)
}

// Delete handles DELETE /api/comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	if err := h.commentService.Delete(r.Context(), middleware.ViewerID(r.Context()), commentID); err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
