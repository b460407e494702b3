package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/compass/internal/api/dto"
	"github.com/hugh/compass/internal/api/middleware"
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/mentorship"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v. An empty body is allowed when
// optional is set and leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, optional bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
	return false
}

func validationFailed(w http.ResponseWriter, details map[string]string) {
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: details})
}

func actorFrom(r *http.Request) mentorship.Actor {
	return mentorship.Actor{
		UserID: middleware.GetUserID(r.Context()),
		Role:   models.Role(middleware.GetUserRole(r.Context())),
	}
}

func urlUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps relationship errors to status codes. Anything
// unexpected is logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var svcErr *mentorship.Error
	if errors.As(err, &svcErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, mentorship.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, mentorship.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, mentorship.ErrConflict):
			status = http.StatusConflict
		case errors.Is(err, mentorship.ErrInvalidState), errors.Is(err, mentorship.ErrValidation):
			status = http.StatusBadRequest
		}
		writeJSON(w, status, dto.ErrorResponse{Error: svcErr.Message})
		return
	}

	logger.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
}
