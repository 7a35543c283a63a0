package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"omegavideos/internal/cache"
	"omegavideos/internal/config"
	"omegavideos/internal/database"
	"omegavideos/internal/fanout"
	"omegavideos/internal/handler"
	"omegavideos/internal/logging"
	"omegavideos/internal/queue"
	"omegavideos/internal/redis"
	"omegavideos/internal/repository"
	"omegavideos/internal/service"
	"omegavideos/internal/storage"
	"omegavideos/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logging.Component("Server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 3. Media storage
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	// 4. Repositories
	users := repository.NewUserRepository(db)
	videos := repository.NewVideoRepository(db)
	comments := repository.NewCommentRepository(db)
	notifications := repository.NewNotificationRepository(db)
	signals := repository.NewSignalRepository(db)
	likes := repository.NewLikeRepository(db)
	bookmarks := repository.NewBookmarkRepository(db)
	commentLikes := repository.NewCommentLikeRepository(db)
	follows := repository.NewFollowRepository(db)

	// 5. Redis and notification fan-out
	direct := fanout.NewDirect(notifications)
	var dispatcher fanout.Dispatcher = direct
	var rdb *redis.Client
	health := func(r *stdhttp.Request) error { return db.PingContext(r.Context()) }

	if cfg.RedisRequired() {
		rdb, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()

		health = func(r *stdhttp.Request) error {
			if err := db.PingContext(r.Context()); err != nil {
				return err
			}
			return rdb.Ping(r.Context())
		}
	}

	if cfg.FanoutMode == config.FanoutModeStream {
		dispatcher = fanout.NewStream(queue.NewPublisher(rdb.Client), direct)

		manager := worker.NewManager(queue.NewConsumer(rdb.Client), worker.NewHandler(direct), worker.ManagerConfig{
			WorkerCount: cfg.WorkerCount,
		})
		if err := manager.Start(ctx); err != nil {
			return fmt.Errorf("failed to start workers: %w", err)
		}
		defer manager.Stop()
	}
	log.Info().Str("mode", cfg.FanoutMode).Msg("Notification fan-out configured")

	// 6. Services
	tx := database.NewTransactor(db)
	media := service.NewMediaService(store, cfg.DefaultAvatarURL)
	reader := service.NewVideoReader(videos, signals)

	authService := service.NewAuthService(cfg.JWTSecret, cfg.AccessTokenMaxAge)
	userService := service.NewUserService(users, follows, media)
	feedService := service.NewFeedService(signals, videos, users, reader)
	if cfg.TrendingCacheTTL > 0 {
		ttl := time.Duration(cfg.TrendingCacheTTL) * time.Second
		feedService.UseTrendingCache(cache.NewTrendingCache(rdb.Client, ttl))
		log.Info().Dur("ttl", ttl).Msg("Trending cache enabled")
	}
	videoService := service.NewVideoService(tx, videos, likes, bookmarks, follows, notifications, media, reader, dispatcher)
	commentService := service.NewCommentService(tx, comments, commentLikes, videos, notifications, dispatcher)
	followService := service.NewFollowService(tx, follows, users, dispatcher)
	notificationService := service.NewNotificationService(notifications)

	// 7. Router
	routerCfg := RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userService, authService, cfg.CookieSecure),
		UserHandler:         handler.NewUserHandler(userService, feedService),
		FollowHandler:       handler.NewFollowHandler(followService),
		VideoHandler:        handler.NewVideoHandler(videoService, feedService),
		CommentHandler:      handler.NewCommentHandler(commentService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		JWTSecret:           cfg.JWTSecret,
		AllowedOrigins:      cfg.CORSAllowedOrigins,
		RateLimitPerMinute:  cfg.RateLimitPerMinute,
		Health:              health,
	}
	if local, ok := store.(*storage.LocalStore); ok {
		routerCfg.UploadsDir = local.Root()
		routerCfg.UploadsPrefix = cfg.LocalStoragePublicURL
	}

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 8. Serve until a signal arrives
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
