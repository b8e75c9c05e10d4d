package handler

import (
	"errors"
	"net/http"
	"time"

	"family-directory-go/internal/domain/directory"
	"family-directory-go/internal/transport/httpserver/middleware"
)

type createRelationshipRequest struct {
	FromPersonID int    `json:"fromPersonId" validate:"required,gt=0"`
	ToPersonID   int    `json:"toPersonId" validate:"required,gt=0"`
	Type         string `json:"type" validate:"required,oneof=PARENT CHILD SPOUSE PARTNER SIBLING"`
}

type relationshipResponse struct {
	ID              int       `json:"id"`
	FromPersonID    int       `json:"fromPersonId"`
	ToPersonID      int       `json:"toPersonId"`
	Type            string    `json:"type"`
	CreatedByUserID *int      `json:"createdByUserId"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (h *Handlers) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	var req createRelationshipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	rel, err := h.Directory.CreateRelationship(r.Context(), user.ID, req.FromPersonID, req.ToPersonID, req.Type)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrPersonNotFound):
			writeError(w, http.StatusNotFound, "person_not_found", "person not found")
		case errors.Is(err, directory.ErrInvalidRelationType):
			writeError(w, http.StatusBadRequest, "invalid_relationship_type", "invalid relationship type")
		default:
			h.log.InternalError("relationships.create: create failed", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toRelationshipResponse(rel))
}

func (h *Handlers) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid relationship id")
		return
	}

	if err := h.Directory.DeleteRelationship(r.Context(), id); err != nil {
		if errors.Is(err, directory.ErrRelationshipNotFound) {
			writeError(w, http.StatusNotFound, "relationship_not_found", "relationship not found")
			return
		}
		h.log.InternalError("relationships.delete: delete failed", err, "relationship_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toRelationshipResponse(rel *directory.Relationship) relationshipResponse {
	return relationshipResponse{
		ID:              rel.ID,
		FromPersonID:    rel.FromPersonID,
		ToPersonID:      rel.ToPersonID,
		Type:            rel.Type,
		CreatedByUserID: rel.CreatedByUserID,
		CreatedAt:       rel.CreatedAt,
	}
}
