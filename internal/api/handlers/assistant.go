package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hugh/compass/internal/api/dto"
	"github.com/hugh/compass/internal/api/middleware"
	"github.com/hugh/compass/internal/assistant"
	"github.com/hugh/compass/internal/reports"
)

const defaultReportLimit = 10

// AssistantHandler serves the rule-based chat and the AI progress reports.
type AssistantHandler struct {
	generator *reports.Generator
	logger    *slog.Logger
}

func NewAssistantHandler(generator *reports.Generator, logger *slog.Logger) *AssistantHandler {
	return &AssistantHandler{generator: generator, logger: logger}
}

// Chat handles POST /api/v1/assistant/chat
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	reply, err := assistant.Respond(req.Message)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// GenerateReport handles POST /api/v1/assistant/reports
func (h *AssistantHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.generator.Generate(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// ListReports handles GET /api/v1/assistant/reports
func (h *AssistantHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	limit := defaultReportLimit
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 50 {
		limit = l
	}

	out, err := h.generator.List(r.Context(), middleware.GetUserID(r.Context()), limit)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
