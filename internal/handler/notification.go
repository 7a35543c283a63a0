package handler

import (
	"net/http"

	"omegavideos/internal/httputil"
	"omegavideos/internal/model"
	"omegavideos/internal/service"
	"omegavideos/internal/transport/http/middleware"
)

type NotificationHandler struct {
	notifService *service.NotificationService
}

func NewNotificationHandler(notifService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notifService: notifService,
	}
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifService.List(r.Context(), middleware.ViewerID(r.Context()))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, notifications)
}

// GetUnreadCount handles GET /api/notifications/unread
func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifService.UnreadCount(r.Context(), middleware.ViewerID(r.Context()))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.UnreadCountResponse{Count: count})
}

// MarkRead handles PUT /api/notifications/read. Without ids every
// notification is marked read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req model.MarkReadRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.notifService.MarkRead(r.Context(), middleware.ViewerID(r.Context()), req.IDs); err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Delete handles DELETE /api/notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid notification ID")
		return
	}

	if err := h.notifService.Delete(r.Context(), middleware.ViewerID(r.Context()), id); err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Clear handles DELETE /api/notifications
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.notifService.Clear(r.Context(), middleware.ViewerID(r.Context())); err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
