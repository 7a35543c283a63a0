package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"omegavideos/internal/handler"
	"omegavideos/internal/httputil"
	"omegavideos/internal/metrics"
	authmw "omegavideos/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	FollowHandler       *handler.FollowHandler
	VideoHandler        *handler.VideoHandler
	CommentHandler      *handler.CommentHandler
	NotificationHandler *handler.NotificationHandler
	JWTSecret           string

	AllowedOrigins     []string
	RateLimitPerMinute int

	// Health reports dependency readiness. Nil means always healthy.
	Health func(r *http.Request) error

	// UploadsDir, when set, is served under UploadsPrefix.
	UploadsDir    string
	UploadsPrefix string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(authmw.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(r); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	if cfg.UploadsDir != "" {
		prefix := cfg.UploadsPrefix
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitPerMinute > 0 {
		limit = httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute)
	}
	optional := authmw.OptionalAuthMiddleware(cfg.JWTSecret)
	required := authmw.AuthMiddleware(cfg.JWTSecret)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(limit).Post("/register", cfg.AuthHandler.Register)
			r.With(limit).Post("/login", cfg.AuthHandler.Login)
			r.With(required).Get("/me", cfg.AuthHandler.Me)
		})

		// Reads resolve viewer-relative flags when a token is present.
		r.Group(func(r chi.Router) {
			r.Use(optional)

			r.Get("/users/search", cfg.UserHandler.Search)
			r.Get("/users/{username}", cfg.UserHandler.GetProfile)
			r.Get("/users/{username}/videos", cfg.UserHandler.Videos)
			r.Get("/users/{username}/liked", cfg.UserHandler.Liked)
			r.Get("/users/{username}/followers", cfg.FollowHandler.GetFollowers)
			r.Get("/users/{username}/following", cfg.FollowHandler.GetFollowing)

			r.Get("/videos/feed", cfg.VideoHandler.Feed)
			r.Get("/videos/trending", cfg.VideoHandler.Trending)
			r.Get("/videos/search", cfg.VideoHandler.Search)
			r.Get("/videos/search/{query}", cfg.VideoHandler.Search)
			r.Get("/videos/{id}", cfg.VideoHandler.Get)
			r.Get("/videos/{id}/comments", cfg.CommentHandler.List)

			r.Get("/comments/{id}/replies", cfg.CommentHandler.Replies)
		})

		r.Group(func(r chi.Router) {
			r.Use(required)

			r.Get("/videos/bookmarks", cfg.VideoHandler.Bookmarks)

			r.Get("/notifications", cfg.NotificationHandler.List)
			r.Get("/notifications/unread", cfg.NotificationHandler.GetUnreadCount)

			// Mutations share the per-IP limit.
			r.Group(func(r chi.Router) {
				r.Use(limit)

				r.Put("/users/settings", cfg.UserHandler.UpdateSettings)
				r.Put("/users/profile", cfg.UserHandler.UpdateProfile)
				r.Post("/users/{id}/follow", cfg.FollowHandler.Follow)
				r.Delete("/users/{id}/follow", cfg.FollowHandler.Unfollow)

				r.Post("/videos", cfg.VideoHandler.Upload)
				r.Delete("/videos/{id}", cfg.VideoHandler.Delete)
				r.Post("/videos/{id}/like", cfg.VideoHandler.Like)
				r.Post("/videos/{id}/bookmark", cfg.VideoHandler.Bookmark)
				r.Post("/videos/{id}/comments", cfg.CommentHandler.Create)

				r.Post("/comments/{id}/like", cfg.CommentHandler.Like)
				r.Delete("/comments/{id}", cfg.CommentHandler.Delete)

				r.Put("/notifications/read", cfg.NotificationHandler.MarkRead)
				r.Post("/notifications/read", cfg.NotificationHandler.MarkRead)
				r.Delete("/notifications/{id}", cfg.NotificationHandler.Delete)
				r.Delete("/notifications", cfg.NotificationHandler.Clear)
			})
		})
	})

	return r
}
