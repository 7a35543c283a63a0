package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"omegavideos/internal/httputil"
	"omegavideos/internal/model"
	"omegavideos/internal/ranking"
	"omegavideos/internal/service"
	"omegavideos/internal/transport/http/middleware"
)

type VideoHandler struct {
	videoService *service.VideoService
	feedService  *service.FeedService
}

func NewVideoHandler(videoService *service.VideoService, feedService *service.FeedService) *VideoHandler {
	return &VideoHandler{videoService: videoService, feedService: feedService}
}

// Feed handles GET /api/videos/feed?page=
func (h *VideoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	page := ranking.ParsePage(r.URL.Query().Get("page"))

	cards, err := h.feedService.Personalized(r.Context(), middleware.ViewerID(r.Context()), page)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cards)
}

// Trending handles GET /api/videos/trending
func (h *VideoHandler) Trending(w http.ResponseWriter, r *http.Request) {
	cards, err := h.feedService.Trending(r.Context(), middleware.ViewerID(r.Context()))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cards)
}

// Search handles GET /api/videos/search?q= and /api/videos/search/{query}
func (h *VideoHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")
	if query == "" {
		query = r.URL.Query().Get("q")
	}

	cards, err := h.feedService.Search(r.Context(), middleware.ViewerID(r.Context()), query)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cards)
}

// Bookmarks handles GET /api/videos/bookmarks
func (h *VideoHandler) Bookmarks(w http.ResponseWriter, r *http.Request) {
	cards, err := h.feedService.Bookmarks(r.Context(), middleware.ViewerID(r.Context()))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cards)
}

// Upload handles POST /api/videos (multipart: video, title, description)
func (h *VideoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, model.MaxVideoSizeBytes); err != nil {
		if errors.Is(err, model.ErrFileTooLarge) {
			httputil.WriteServiceError(w, r, err)
			return
		}
		httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
		return
	}

	media, file, err := formMedia(r, "video")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid video upload")
		return
	}
	if file == nil {
		httputil.WriteServiceError(w, r, model.ErrMediaRequired)
		return
	}
	defer file.Close()

	card, err := h.videoService.Upload(r.Context(), middleware.ViewerID(r.Context()), model.CreateVideoRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}, media)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, card)
}

// Get handles GET /api/videos/{id}. Every call counts as a view.
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	videoID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid video ID")
		return
	}

	card, err := h.videoService.Get(r.Context(), middleware.ViewerID(r.Context()), videoID)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, card)
}

// Delete handles DELETE /api/videos/{id}
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	videoID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid video ID")
		return
	}

	if err := h.videoService.Delete(r.Context(), middleware.ViewerID(r.Context()), videoID); err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Like handles POST /api/videos/{id}/like
func (h *VideoHandler) Like(w http.ResponseWriter, r *http.Request) {
	videoID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid video ID")
		return
	}

	res, err := h.videoService.ToggleLike(r.Context(), middleware.ViewerID(r.Context()), videoID)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	writeLike(w, res)
}

// Bookmark handles POST /api/videos/{id}/bookmark
func (h *VideoHandler) Bookmark(w http.ResponseWriter, r *http.Request) {
	videoID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid video ID")
		return
	}

	res, err := h.videoService.ToggleBookmark(r.Context(), middleware.ViewerID(r.Context()), videoID)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	writeBookmark(w, res)
}
