// Package api writes the JSON envelope shared by every endpoint.
package api

import (
	"encoding/json"
	"net/http"

	"vidtube/pkg/errors"
)

// Response is the envelope returned by every endpoint
type Response struct {
	StatusCode int                    `json:"statusCode"`
	Data       interface{}            `json:"data"`
	Message    string                 `json:"message"`
	Success    bool                   `json:"success"`
	Errors     map[string]interface{} `json:"errors,omitempty"`
}

// JSON writes data in the envelope with the given status
func JSON(w http.ResponseWriter, status int, data interface{}, message string) error {
	return write(w, Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// Error writes appErr in the envelope. Internal causes are never exposed.
func Error(w http.ResponseWriter, appErr *errors.AppError) error {
	return write(w, Response{
		StatusCode: appErr.StatusCode,
		Message:    appErr.Message,
		Success:    false,
		Errors:     appErr.Details,
	})
}

func write(w http.ResponseWriter, resp Response) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	return json.NewEncoder(w).Encode(resp)
}
