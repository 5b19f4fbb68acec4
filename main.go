package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"vidtube/internal/config"
	"vidtube/internal/container"
	"vidtube/internal/handler"
	"vidtube/internal/middleware"
	"vidtube/pkg/api"
	"vidtube/pkg/database"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"
	"vidtube/pkg/redis"
)

// Resources holds all resources that need cleanup
type Resources struct {
	mongo       *database.MongoDB
	redisClient *redis.Client
	server      *http.Server
	log         *logger.Logger
	mu          sync.Mutex
	closed      bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	r.log.Info("Starting graceful shutdown...")

	// Stop accepting requests before closing the stores they use
	if r.server != nil {
		r.log.Info("Shutting down HTTP server...")
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		} else {
			r.log.Info("HTTP server shutdown complete")
		}
	}

	if r.redisClient != nil {
		r.log.Info("Closing Redis connection...")
		if err := r.redisClient.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close Redis connection")
			errs = append(errs, fmt.Errorf("Redis close: %w", err))
		} else {
			r.log.Info("Redis connection closed successfully")
		}
	}

	if r.mongo != nil {
		r.log.Info("Closing MongoDB connection...")
		if err := r.mongo.Close(ctx); err != nil {
			r.log.WithError(err).Error("Failed to close MongoDB connection")
			errs = append(errs, fmt.Errorf("MongoDB close: %w", err))
		} else {
			r.log.Info("MongoDB connection closed successfully")
		}
	}

	if len(errs) > 0 {
		r.log.WithField("error_count", len(errs)).Error("Cleanup completed with errors")
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.LogLevel, cfg.Server.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":           cfg.Server.Port,
		"log_level":      cfg.Server.LogLevel,
		"environment":    cfg.Server.Environment,
		"media_provider": cfg.Media.Provider,
	}).Info("Starting vidtube server")

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	c, err := container.New(startCtx, cfg, log)
	startCancel()
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	router := setupRouter(c)

	// Uploads stream large bodies through the server
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Minute,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	resources := &Resources{
		mongo:       c.Mongo,
		redisClient: c.GetRedisClient(),
		server:      server,
		log:         log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()
	services := c.Services
	maxUpload := cfg.Media.MaxUploadMB << 20

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID())
	if cfg.Server.TrustProxyHeaders {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)

	checks := map[string]handler.HealthChecker{"mongodb": c.Mongo}
	if c.HasRedis() {
		checks["redis"] = c.GetRedisClient()
	}

	healthHandler := handler.NewHealthHandler(checks, log)
	userHandler := handler.NewUserHandler(services.User, c.Stager, maxUpload, handler.CookieConfig{
		Secure:     cfg.Auth.CookieSecure,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}, log)
	videoHandler := handler.NewVideoHandler(services.Video, c.Stager, maxUpload, log)
	commentHandler := handler.NewCommentHandler(services.Comment, log)
	subscriptionHandler := handler.NewSubscriptionHandler(services.Subscription, log)
	songHandler := handler.NewSongHandler(services.Song, c.Stager, maxUpload, log)

	auth := middleware.Auth(services.Auth, log)
	optionalAuth := middleware.OptionalAuth(services.Auth, log)
	limit := func(scope string) func(http.Handler) http.Handler {
		return middleware.RateLimit(services.RateLimiter, scope, log)
	}
	h := func(fn handler.HandlerFunc) http.HandlerFunc {
		return handler.Wrap(log, fn)
	}

	r.Get("/health", h(healthHandler.Check))

	// Multipart upload routes are left to the server timeouts
	timeout := chiMiddleware.Timeout(120 * time.Second)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.With(limit("register")).Post("/register", h(userHandler.Register))

			r.Group(func(r chi.Router) {
				r.Use(timeout)
				r.With(limit("login")).Post("/login", h(userHandler.Login))
				r.With(limit("refresh-token")).Post("/refresh-token", h(userHandler.RefreshToken))
				r.With(optionalAuth).Get("/channel/{username}", h(userHandler.Channel))

				r.Group(func(r chi.Router) {
					r.Use(auth)
					r.Post("/logout", h(userHandler.Logout))
					r.Get("/me", h(userHandler.Me))
					r.Get("/history", h(userHandler.History))
				})
			})
		})

		r.Route("/videos", func(r chi.Router) {
			r.With(timeout).Get("/", h(videoHandler.List))
			r.With(timeout).Get("/search", h(videoHandler.Search))

			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.Post("/", h(videoHandler.Upload))
				r.Put("/{videoID}", h(videoHandler.Update))

				r.Group(func(r chi.Router) {
					r.Use(timeout)
					r.Get("/liked", h(videoHandler.Liked))
					r.Get("/mine", h(videoHandler.Mine))
					r.Get("/{videoID}/watch", h(videoHandler.Watch))
					r.Post("/{videoID}/like", h(videoHandler.ToggleLike))
					r.Delete("/{videoID}", h(videoHandler.Delete))
				})
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Use(timeout)
			r.Get("/", h(commentHandler.List))

			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.Post("/", h(commentHandler.Create))
				r.Patch("/{commentID}", h(commentHandler.Update))
				r.Delete("/{commentID}", h(commentHandler.Delete))
				r.Post("/{commentID}/like", h(commentHandler.ToggleLike))
			})
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(timeout, auth)
			r.Post("/toggle", h(subscriptionHandler.Toggle))
			r.Post("/subscribe", h(subscriptionHandler.Subscribe))
			r.Post("/unsubscribe", h(subscriptionHandler.Unsubscribe))
			r.Get("/channels", h(subscriptionHandler.Channels))
			r.Get("/videos", h(subscriptionHandler.Videos))
		})

		r.Route("/songs", func(r chi.Router) {
			r.With(timeout).Get("/", h(songHandler.List))
			r.With(auth).Post("/", h(songHandler.Upload))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = api.Error(w, errors.NewNotFoundError("Endpoint not found"))
	})

	log.Info("Router configured successfully")
	return r
}
