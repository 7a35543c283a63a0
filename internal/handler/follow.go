package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"omegavideos/internal/httputil"
	"omegavideos/internal/service"
	"omegavideos/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// Follow handles POST /api/users/{id}/follow. A second call unfollows.
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	targetID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	res, err := h.followService.ToggleFollow(r.Context(), middleware.ViewerID(r.Context()), targetID)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	writeFollow(w, res)
}

// Unfollow handles DELETE /api/users/{id}/follow
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	targetID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	res, err := h.followService.Unfollow(r.Context(), middleware.ViewerID(r.Context()), targetID)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	writeFollow(w, res)
}

// GetFollowers handles GET /api/users/{username}/followers
func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	users, err := h.followService.Followers(r.Context(), middleware.ViewerID(r.Context()), chi.URLParam(r, "username"))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

// GetFollowing handles GET /api/users/{username}/following
func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	users, err := h.followService.Following(r.Context(), middleware.ViewerID(r.Context()), chi.URLParam(r, "username"))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}
