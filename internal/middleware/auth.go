package middleware

import (
	"context"
	"net/http"
	"strings"

	"vidtube/internal/domain"
	"vidtube/internal/service"
	"vidtube/pkg/api"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// UserContextKey is the key for the token claims in context
	UserContextKey ContextKey = "user"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// AccessTokenCookie is the cookie set on login
const AccessTokenCookie = "AccessToken"

// extractToken reads the access token from the cookie or the Authorization header
func extractToken(r *http.Request) (string, *errors.AppError) {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", nil
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", errors.NewAuthenticationError("Invalid authorization header format")
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", errors.NewAuthenticationError("Token is required")
	}
	return token, nil
}

func authenticate(tokens service.TokenService, log *logger.Logger, r *http.Request) (*domain.AuthClaims, *errors.AppError) {
	token, appErr := extractToken(r)
	if appErr != nil || token == "" {
		return nil, appErr
	}

	claims, err := tokens.ValidateAccessToken(r.Context(), token)
	if err != nil {
		log.WithError(err).Debug("Token validation failed")
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}
	if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil {
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}
	return claims, nil
}

// Auth creates an authentication middleware
func Auth(tokens service.TokenService, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, appErr := authenticate(tokens, log, r)
			if appErr == nil && claims == nil {
				appErr = errors.NewAuthenticationError("Unauthorized request")
			}
			if appErr != nil {
				writeErrorResponse(w, r, appErr, log)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			log.WithField("user_id", claims.UserID).Debug("User authenticated successfully")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the caller when a valid token is present and
// continues anonymously when none is sent
func OptionalAuth(tokens service.TokenService, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, appErr := authenticate(tokens, log, r)
			if appErr != nil {
				writeErrorResponse(w, r, appErr, log)
				return
			}
			if claims != nil {
				r = r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID returns the request id stored by RequestID
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

// GetClaims returns the authenticated caller, if any
func GetClaims(ctx context.Context) (*domain.AuthClaims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*domain.AuthClaims)
	return claims, ok && claims != nil
}

// GetUserID returns the id of the authenticated caller
func GetUserID(ctx context.Context) (primitive.ObjectID, bool) {
	claims, ok := GetClaims(ctx)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, r *http.Request, appErr *errors.AppError, log *logger.Logger) {
	log.WithRequestID(GetRequestID(r.Context())).WithFields(map[string]interface{}{
		"path":   r.URL.Path,
		"status": appErr.StatusCode,
	}).Info(appErr.Message)

	if err := api.Error(w, appErr); err != nil {
		log.WithError(err).Error("Failed to write error response")
	}
}
