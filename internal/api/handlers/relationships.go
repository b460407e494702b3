package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/hugh/compass/internal/api/dto"
	"github.com/hugh/compass/internal/api/middleware"
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/mentorship"
)

type listFunc func(ctx context.Context, userID uuid.UUID) ([]mentorship.RelationshipSummary, error)

type RelationshipHandler struct {
	service *mentorship.Service
	logger  *slog.Logger
}

func NewRelationshipHandler(service *mentorship.Service, logger *slog.Logger) *RelationshipHandler {
	return &RelationshipHandler{service: service, logger: logger}
}

// Invite handles POST /api/v1/mentor/invite
func (h *RelationshipHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req dto.InviteRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	res, err := h.service.Invite(r.Context(), actorFrom(r), mentorship.InviteInput{
		ClientEmail: req.ClientEmail,
		Message:     req.Message,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InviteResponse{
		RelationshipID: res.Relationship.ID.String(),
		ClientID:       res.Client.ID.String(),
		ClientName:     res.Client.Name,
		ClientEmail:    res.Client.Email,
		Status:         string(res.Relationship.Status),
		InvitedAt:      res.Relationship.InvitedAt,
	})
}

// Accept handles POST /api/v1/mentor/relationships/{id}/accept
func (h *RelationshipHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	rel, err := h.service.Accept(r.Context(), actorFrom(r), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AcceptResponse{
		RelationshipID: rel.ID.String(),
		Status:         string(rel.Status),
		AcceptedAt:     rel.AcceptedAt,
	})
}

// Terminate handles DELETE /api/v1/mentor/relationships/{id}/terminate
func (h *RelationshipHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req dto.TerminateRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	rel, err := h.service.Terminate(r.Context(), actorFrom(r), id, req.Reason)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TerminateResponse{
		RelationshipID: rel.ID.String(),
		Status:         string(rel.Status),
		TerminatedAt:   rel.TerminatedAt,
	})
}

// List handles GET /api/v1/mentor/relationships
func (h *RelationshipHandler) List(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.service.ListRelationships)
}

// ListForClient handles GET /api/v1/client/relationships
func (h *RelationshipHandler) ListForClient(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.service.ListClientRelationships)
}

func (h *RelationshipHandler) writeList(w http.ResponseWriter, r *http.Request, list listFunc) {
	summaries, err := list(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp := make([]dto.RelationshipResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = dto.NewRelationshipResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPermissions handles GET /api/v1/mentor/relationships/{id}/permissions
func (h *RelationshipHandler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	perm, err := h.service.GetPermissions(r.Context(), actorFrom(r), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPermissionsResponse(perm))
}

// UpdatePermissions handles PUT /api/v1/mentor/relationships/{id}/permissions
func (h *RelationshipHandler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req dto.PermissionsRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	perm, err := h.service.UpdatePermissions(r.Context(), actorFrom(r), id, req.Flags())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPermissionsResponse(perm))
}

// ListNotes handles GET /api/v1/mentor/relationships/{id}/notes
func (h *RelationshipHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	notes, err := h.service.ListNotes(r.Context(), actorFrom(r), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if notes == nil {
		notes = []models.MentorNote{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// AddNote handles POST /api/v1/mentor/relationships/{id}/notes
func (h *RelationshipHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req dto.NoteRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	note, err := h.service.AddNote(r.Context(), actorFrom(r), id, req.Body)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// Purge handles DELETE /api/v1/admin/relationships/{id}
func (h *RelationshipHandler) Purge(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Purge(r.Context(), actorFrom(r), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
