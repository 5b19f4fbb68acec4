package container

import (
	"context"
	"fmt"

	"vidtube/internal/config"
	"vidtube/internal/media"
	"vidtube/internal/repository"
	"vidtube/internal/service"
	"vidtube/internal/service/auth"
	"vidtube/pkg/database"
	"vidtube/pkg/logger"
	"vidtube/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	Mongo        *database.MongoDB
	RedisClient  *redis.Client
	Media        media.Store
	Stager       *media.Stager
	Repositories *repository.Repositories
	Services     *service.Services
}

// New connects to MongoDB, the optional Redis and the media host and wires the services
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Container, error) {
	mongo, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	logger.WithField("database", cfg.Mongo.Database).Info("MongoDB connected")

	if cfg.Mongo.EnsureIndexes {
		if err := repository.EnsureIndexes(ctx, mongo.DB); err != nil {
			_ = mongo.Close(ctx)
			return nil, err
		}
		logger.Info("MongoDB indexes ensured")
	}

	// Initialize Redis client if Redis URL is configured
	var redisClient *redis.Client
	if cfg.Server.RedisURL != "" {
		client, err := redis.NewClient(cfg.Server.RedisURL, cfg.Server.Environment, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, proceeding without caching")
	}

	store, err := NewMediaStore(ctx, cfg.Media, logger)
	if err != nil {
		_ = mongo.Close(ctx)
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, err
	}

	stager, err := media.NewStager(cfg.Media.TmpDir)
	if err != nil {
		_ = mongo.Close(ctx)
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, err
	}

	repos := repository.NewRepositories(mongo)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Mongo:        mongo,
		RedisClient:  redisClient,
		Media:        store,
		Stager:       stager,
		Repositories: repos,
		Services:     NewServices(cfg, repos, store, redisClient, logger),
	}, nil
}

// NewMediaStore builds the configured media host adapter
func NewMediaStore(ctx context.Context, cfg config.MediaConfig, logger *logger.Logger) (media.Store, error) {
	switch cfg.Provider {
	case config.MediaProviderCloudinary:
		return media.NewCloudinary(media.CloudinaryConfig{
			CloudName: cfg.CloudName,
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
		}, nil, logger)
	case config.MediaProviderMinio:
		store, err := media.NewMinio(ctx, media.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		}, media.FFProbe, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MinIO store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown media provider %q", cfg.Provider)
	}
}

// NewServices wires the services over repos. redisClient may be nil, in which
// case listings are not cached and rate limits are kept in process.
func NewServices(cfg *config.Config, repos *repository.Repositories, store media.Store, redisClient *redis.Client, logger *logger.Logger) *service.Services {
	authService := auth.NewService(cfg.Auth, logger)

	var (
		cache   service.VideoListCache
		limiter service.RateLimiter
	)
	if redisClient != nil {
		cache = service.NewCacheService(redisClient, cfg.Cache.VideoListTTL, logger.Logger)
		limiter = service.NewRedisRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger)
	} else {
		limiter = service.NewLocalRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	videoDeps := service.VideoDeps{
		Users:         repos.User,
		Videos:        repos.Video,
		Comments:      repos.Comment,
		Likes:         repos.Like,
		Views:         repos.View,
		Subscriptions: repos.Subscription,
	}

	return &service.Services{
		Auth:         authService,
		User:         service.NewUserService(repos.User, repos.Video, authService, store, logger),
		Video:        service.NewVideoService(videoDeps, store, cache, logger),
		Comment:      service.NewCommentService(repos.Comment, repos.Video, repos.Like, logger),
		Subscription: service.NewSubscriptionService(repos.Subscription, repos.User, logger),
		Song:         service.NewSongService(repos.Song, store, logger),
		RateLimiter:  limiter,
	}
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
