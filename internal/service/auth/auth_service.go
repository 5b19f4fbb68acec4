package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/domain"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	issuer           = "vidtube"
)

// Claims are the JWT claims issued by the service
type Claims struct {
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Service issues and validates tokens and hashes passwords
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	bcryptCost    int
	logger        *logger.Logger
	now           func() time.Time
}

// NewService creates a new auth service
func NewService(cfg config.AuthConfig, logger *logger.Logger) *Service {
	return &Service{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		bcryptCost:    bcrypt.DefaultCost,
		logger:        logger,
		now:           time.Now,
	}
}

// IssueTokens signs a new access and refresh token for user
func (s *Service) IssueTokens(user *domain.User) (*domain.TokenPair, error) {
	access, err := s.sign(user, tokenTypeAccess, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, errors.NewInternalError("Failed to issue access token", err)
	}
	refresh, err := s.sign(user, tokenTypeRefresh, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, errors.NewInternalError("Failed to issue refresh token", err)
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) sign(user *domain.User, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.Hex(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	// Refresh tokens only carry the subject
	if tokenType == tokenTypeAccess {
		claims.Username = user.Username
		claims.Email = user.Email
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateAccessToken validates an access token and returns its claims
func (s *Service) ValidateAccessToken(ctx context.Context, token string) (*domain.AuthClaims, error) {
	return s.validate(token, tokenTypeAccess, s.accessSecret)
}

// ValidateRefreshToken validates a refresh token and returns its claims
func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (*domain.AuthClaims, error) {
	return s.validate(token, tokenTypeRefresh, s.refreshSecret)
}

func (s *Service) validate(tokenString, tokenType string, secret []byte) (*domain.AuthClaims, error) {
	if !isJWTToken(tokenString) {
		return nil, errors.NewAuthenticationError("Unrecognized token format")
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		s.logger.WithError(err).Debug("Failed to validate token")
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewAuthenticationError("Token has expired")
		}
		return nil, errors.NewAuthenticationError("Invalid token")
	}

	if claims.TokenType != tokenType || claims.Subject == "" {
		return nil, errors.NewAuthenticationError("Invalid token")
	}

	return &domain.AuthClaims{
		UserID:   claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		Exp:      claims.ExpiresAt.Unix(),
	}, nil
}

// HashPassword hashes a plain text password with bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", errors.NewInternalError("Failed to hash password", err)
	}
	return string(hash), nil
}

// ComparePassword reports whether password matches hash
func (s *Service) ComparePassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// isJWTToken checks if the token looks like a JWT (three dot separated segments)
func isJWTToken(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}
