package handler

import (
	"net/http"

	"omegavideos/internal/httputil"
	"omegavideos/internal/model"
)

func writeLike(w http.ResponseWriter, res model.ToggleResult) {
	httputil.WriteJSON(w, http.StatusOK, model.LikeResponse{Liked: res.State, Count: res.Count})
}

func writeBookmark(w http.ResponseWriter, res model.ToggleResult) {
	httputil.WriteJSON(w, http.StatusOK, model.BookmarkResponse{Bookmarked: res.State, Count: res.Count})
}

// writeFollow takes Count as the target's follower count.
func writeFollow(w http.ResponseWriter, res model.ToggleResult) {
	httputil.WriteJSON(w, http.StatusOK, model.FollowResponse{Following: res.State, Count: res.Count})
}
