package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hugh/compass/internal/api/dto"
	"github.com/hugh/compass/internal/api/middleware"
	"github.com/hugh/compass/internal/notify"
)

const streamKeepAlive = 25 * time.Second

type NotificationHandler struct {
	service   *notify.Service
	publisher *notify.Publisher
	logger    *slog.Logger
}

// NewNotificationHandler accepts a nil publisher; the stream endpoint then
// answers 503.
func NewNotificationHandler(service *notify.Service, publisher *notify.Publisher, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, publisher: publisher, logger: logger}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := dto.ParsePagination(q)

	out, total, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()), notify.ListOptions{
		UnreadOnly: q.Get("unread") == "true",
		Offset:     page.Offset(),
		Limit:      page.PerPage,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page.Response(out, total))
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.UnreadCount(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.UnreadCountResponse{Unread: count})
}

// MarkRead handles POST /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Notification not found"})
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Notification marked as read"})
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	changed, err := h.service.MarkAllRead(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: fmt.Sprintf("%d notifications marked as read", changed)})
}

// Stream handles GET /api/v1/notifications/stream. Each notification
// published for the user is forwarded as one SSE "notification" event.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Notification stream unavailable"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Streaming unsupported"})
		return
	}

	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	sub := h.publisher.Subscribe(ctx, userID)
	defer sub.Close()

	// Wait for the subscription to be confirmed before reporting ready
	if _, err := sub.Receive(ctx); err != nil {
		h.logger.Error("subscribing to notifications", "user_id", userID, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Notification stream unavailable"})
		return
	}

	// The stream outlives the server write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case msg, ok := <-messages:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", msg.Payload)
			flusher.Flush()
		}
	}
}
