package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	MediaProviderCloudinary = "cloudinary"
	MediaProviderMinio      = "minio"
)

// Config holds all configuration values for the application
type Config struct {
	Server         ServerConfig
	AllowedOrigins []string

	Mongo     MongoConfig
	Auth      AuthConfig
	Media     MediaConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

// ServerConfig holds process level settings
type ServerConfig struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"production"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Origins     string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:5174"`
	RedisURL    string `envconfig:"REDIS_URL"`

	// Only honor X-Forwarded-For and X-Real-IP behind a proxy that overwrites them
	TrustProxyHeaders bool `envconfig:"TRUST_PROXY_HEADERS" default:"false"`
}

// MongoConfig holds document store settings
type MongoConfig struct {
	URI           string `envconfig:"MONGO_URI" required:"true"`
	Database      string `envconfig:"MONGO_DATABASE" default:"vidtube"`
	EnsureIndexes bool   `envconfig:"MONGO_ENSURE_INDEXES" default:"true"`
}

// AuthConfig holds token settings
type AuthConfig struct {
	AccessSecret  string        `envconfig:"ACCESS_TOKEN_SECRET" required:"true"`
	RefreshSecret string        `envconfig:"REFRESH_TOKEN_SECRET" required:"true"`
	AccessTTL     time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTTL    time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"240h"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"true"`
}

// MediaConfig selects and configures the media host
type MediaConfig struct {
	Provider    string `envconfig:"MEDIA_PROVIDER" default:"cloudinary"`
	TmpDir      string `envconfig:"UPLOAD_TMP_DIR"`
	MaxUploadMB int64  `envconfig:"MAX_UPLOAD_MB" default:"512"`

	CloudName string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `envconfig:"CLOUDINARY_API_KEY"`
	APISecret string `envconfig:"CLOUDINARY_API_SECRET"`

	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY"`
	MinioBucket    string `envconfig:"MINIO_BUCKET" default:"vidtube"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	MinioPublicURL string `envconfig:"MINIO_PUBLIC_URL"`
}

// RateLimitConfig bounds credential endpoints per client IP
type RateLimitConfig struct {
	Requests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"20"`
	Window   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// CacheConfig holds listing cache settings
type CacheConfig struct {
	VideoListTTL time.Duration `envconfig:"VIDEO_LIST_CACHE_TTL" default:"30s"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	var cfg Config
	sections := []struct {
		name string
		spec interface{}
	}{
		{"server", &cfg.Server},
		{"mongo", &cfg.Mongo},
		{"auth", &cfg.Auth},
		{"media", &cfg.Media},
		{"rate limit", &cfg.RateLimit},
		{"cache", &cfg.Cache},
	}
	for _, s := range sections {
		if err := envconfig.Process("", s.spec); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.name, err)
		}
	}

	cfg.AllowedOrigins = parseOrigins(cfg.Server.Origins)
	cfg.Media.Provider = strings.ToLower(strings.TrimSpace(cfg.Media.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that depend on each other
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.Auth.AccessSecret == "" || c.Auth.RefreshSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}
	switch c.Media.Provider {
	case MediaProviderCloudinary:
		if c.Media.CloudName == "" || c.Media.APIKey == "" || c.Media.APISecret == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
		}
	case MediaProviderMinio:
		if c.Media.MinioEndpoint == "" || c.Media.MinioAccessKey == "" || c.Media.MinioSecretKey == "" {
			return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required")
		}
	default:
		return fmt.Errorf("unknown MEDIA_PROVIDER %q", c.Media.Provider)
	}
	if c.Media.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	return nil
}

// IsDevelopment reports whether the service runs outside production
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development" || c.Server.Environment == "staging"
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
