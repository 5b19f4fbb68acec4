package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"vidtube/internal/middleware"
	"vidtube/pkg/api"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandlerFunc is an http handler that reports failures by returning them
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Wrap converts fn to an http.HandlerFunc. Returned errors are written in the
// response envelope; anything that is not an AppError becomes a 500.
func Wrap(log *logger.Logger, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		appErr := errors.As(err)
		entry := log.WithRequestID(middleware.GetRequestID(r.Context()))
		if claims, ok := middleware.GetClaims(r.Context()); ok {
			entry = entry.WithUserID(claims.UserID)
		}
		entry = entry.WithFields(map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": appErr.StatusCode,
		})
		if appErr.StatusCode >= http.StatusInternalServerError {
			entry.WithError(err).Error(appErr.Message)
		} else {
			entry.Warn(appErr.Message)
		}

		if writeErr := api.Error(w, appErr); writeErr != nil {
			log.WithError(writeErr).Error("Failed to write error response")
		}
	}
}

// pathID parses an ObjectID from a route parameter. Malformed ids are not found.
func pathID(r *http.Request, param, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, param))
	if err != nil {
		return primitive.NilObjectID, errors.NewNotFoundError(what + " does not exist")
	}
	return id, nil
}

// currentUser returns the authenticated caller set by the auth middleware
func currentUser(r *http.Request) (primitive.ObjectID, error) {
	id, ok := middleware.GetUserID(r.Context())
	if !ok {
		return primitive.NilObjectID, errors.NewAuthenticationError("Unauthorized request")
	}
	return id, nil
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && err != io.EOF {
		return errors.NewValidationError("Invalid JSON body", nil)
	}
	return nil
}
