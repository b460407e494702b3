package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/compass/internal/api/dto"
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/mentorship"
	"github.com/hugh/compass/internal/progress"
	"github.com/hugh/compass/internal/reports"
	"github.com/hugh/compass/pkg/crypto"
	"gorm.io/gorm"
)

const viewProgress = "progress"

// ClientViewHandler lets a mentor read a client's data, one category at a
// time, as far as the client's permission flags allow.
type ClientViewHandler struct {
	db         *gorm.DB
	service    *mentorship.Service
	encryptor  *crypto.Encryptor
	calculator *progress.Calculator
	generator  *reports.Generator
	logger     *slog.Logger
}

func NewClientViewHandler(
	db *gorm.DB,
	service *mentorship.Service,
	encryptor *crypto.Encryptor,
	calculator *progress.Calculator,
	generator *reports.Generator,
	logger *slog.Logger,
) *ClientViewHandler {
	return &ClientViewHandler{
		db:         db,
		service:    service,
		encryptor:  encryptor,
		calculator: calculator,
		generator:  generator,
		logger:     logger,
	}
}

// View handles GET /api/v1/mentor/clients/{clientId}/{category}
func (h *ClientViewHandler) View(w http.ResponseWriter, r *http.Request) {
	clientID, ok := urlUUID(w, r, "clientId")
	if !ok {
		return
	}
	category := chi.URLParam(r, "category")

	var required []models.DataCategory
	switch category {
	case viewProgress:
		required = []models.DataCategory{models.CategoryGoals, models.CategoryTasks}
	case string(models.CategoryGoals), string(models.CategoryTasks), string(models.CategoryLogs),
		string(models.CategoryReflections), string(models.CategoryAIReports):
		required = []models.DataCategory{models.DataCategory(category)}
	default:
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Unknown data category"})
		return
	}

	ctx := r.Context()
	actor := actorFrom(r)
	for _, c := range required {
		if err := h.service.AuthorizeView(ctx, actor, clientID, c); err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
	}

	var (
		out interface{}
		err error
	)
	switch category {
	case viewProgress:
		out, err = h.calculator.Compute(ctx, clientID)
	case string(models.CategoryGoals):
		out, err = listGoals(ctx, h.db, clientID, "")
	case string(models.CategoryTasks):
		out, err = listTasks(ctx, h.db, clientID, "")
	case string(models.CategoryLogs):
		out, err = listLogs(ctx, h.db, clientID, defaultLogDays)
	case string(models.CategoryReflections):
		out, err = listReflections(ctx, h.db, h.encryptor, clientID)
	case string(models.CategoryAIReports):
		out, err = h.generator.List(ctx, clientID, defaultReportLimit)
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
