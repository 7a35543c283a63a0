package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"omegavideos/internal/httputil"
	"omegavideos/internal/model"
	"omegavideos/internal/service"
	"omegavideos/internal/transport/http/middleware"
	"omegavideos/internal/validation"
)

type UserHandler struct {
	userService *service.UserService
	feedService *service.FeedService
}

func NewUserHandler(userService *service.UserService, feedService *service.FeedService) *UserHandler {
	return &UserHandler{userService: userService, feedService: feedService}
}

// GetProfile handles GET /api/users/{username}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.Profile(r.Context(), middleware.ViewerID(r.Context()), chi.URLParam(r, "username"))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Search handles GET /api/users/search?q=
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.Search(r.Context(), middleware.ViewerID(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

// Videos handles GET /api/users/{username}/videos
func (h *UserHandler) Videos(w http.ResponseWriter, r *http.Request) {
	cards, err := h.feedService.UserVideos(r.Context(), middleware.ViewerID(r.Context()), chi.URLParam(r, "username"))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cards)
}

// Liked handles GET /api/users/{username}/liked
func (h *UserHandler) Liked(w http.ResponseWriter, r *http.Request) {
	cards, err := h.feedService.LikedVideos(r.Context(), middleware.ViewerID(r.Context()), chi.URLParam(r, "username"))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cards)
}

// UpdateSettings handles PUT /api/users/settings
func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateSettingsRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		httputil.WriteServiceError(w, r, model.ErrInvalidLanguage)
		return
	}

	user, err := h.userService.UpdateSettings(r.Context(), middleware.ViewerID(r.Context()), &req)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/users/profile (multipart: bio, avatar)
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, model.MaxAvatarSizeBytes); err != nil {
		if errors.Is(err, model.ErrFileTooLarge) {
			httputil.WriteServiceError(w, r, err)
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	avatar, file, err := formMedia(r, "avatar")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid avatar upload")
		return
	}
	if file != nil {
		defer file.Close()
	}

	user, err := h.userService.UpdateProfile(r.Context(), middleware.ViewerID(r.Context()), model.UpdateProfileRequest{
		Bio:    r.FormValue("bio"),
		Avatar: avatar,
	})
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}
