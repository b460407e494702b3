package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/compass/internal/api/middleware"
	"github.com/hugh/compass/internal/progress"
)

type ProgressHandler struct {
	calculator *progress.Calculator
	logger     *slog.Logger
}

func NewProgressHandler(calculator *progress.Calculator, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{calculator: calculator, logger: logger}
}

// Get handles GET /api/v1/progress
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.calculator.Compute(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
