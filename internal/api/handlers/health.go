package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hugh/compass/internal/api/dto"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	serviceHealthy   = "healthy"
	serviceUnhealthy = "unhealthy"
	serviceDisabled  = "disabled"

	healthCheckTimeout = 2 * time.Second
)

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewHealthHandler accepts a nil Redis client; Redis is then reported as
// disabled and does not affect the overall status.
func NewHealthHandler(db *gorm.DB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := dto.HealthResponse{Status: serviceHealthy, Services: map[string]string{}}

	resp.Services["database"] = serviceHealthy
	if err := h.pingDatabase(ctx); err != nil {
		resp.Services["database"] = serviceUnhealthy
		resp.Status = serviceUnhealthy
	}

	switch {
	case h.redis == nil:
		resp.Services["redis"] = serviceDisabled
	case h.redis.Ping(ctx).Err() != nil:
		resp.Services["redis"] = serviceUnhealthy
		resp.Status = serviceUnhealthy
	default:
		resp.Services["redis"] = serviceHealthy
	}

	status := http.StatusOK
	if resp.Status != serviceHealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// Ready handles GET /ready. The service cannot answer any API call without
// its database, so readiness follows the database alone.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.pingDatabase(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "ready"})
}

func (h *HealthHandler) pingDatabase(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
