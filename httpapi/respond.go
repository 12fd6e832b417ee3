// Package httpapi exposes the kanban service over REST. Handlers parse and
// validate requests, call one service function, and wrap the result in the
// response envelope; no business logic lives here.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/corkboard/corkboard/store"
)

// envelope is the response shape every endpoint returns.
type envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

func respond(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

func respondData(w http.ResponseWriter, message string, data interface{}) {
	respond(w, http.StatusOK, message, data)
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respond(w, http.StatusBadRequest, message, nil)
}

// respondErr maps service errors onto statuses: absence is a 404, anything
// else a 500. Validation never reaches here; handlers reject it first.
func respondErr(w http.ResponseWriter, logger *zap.Logger, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respond(w, http.StatusNotFound, "not found", nil)
		return
	}
	logger.Error("request failed", zap.Error(err))
	respond(w, http.StatusInternalServerError, "internal server error", nil)
}

// decode parses a JSON body into dst.
func decode(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
