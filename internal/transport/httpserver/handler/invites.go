package handler

import (
	"errors"
	"net/http"
	"time"

	authdomain "family-directory-go/internal/domain/auth"
	"family-directory-go/internal/transport/httpserver/middleware"
)

type createInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type inviteResponse struct {
	ID               int        `json:"id"`
	Email            string     `json:"email"`
	Code             string     `json:"code"`
	CreatedByAdminID *int       `json:"createdByAdminId"`
	UsedAt           *time.Time `json:"usedAt"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func (h *Handlers) ListInvites(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	invites, err := h.Auth.ListInvites(r.Context(), user)
	if err != nil {
		if errors.Is(err, authdomain.ErrForbidden) {
			writeError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		h.log.InternalError("invites.list: list failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	responses := make([]inviteResponse, 0, len(invites))
	for i := range invites {
		responses = append(responses, toInviteResponse(&invites[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Handlers) CreateInvite(w http.ResponseWriter, r *http.Request) {
	var req createInviteRequest
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

	invite, err := h.Auth.CreateInvite(r.Context(), user, req.Email)
	if err != nil {
		if errors.Is(err, authdomain.ErrForbidden) {
			writeError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		h.log.InternalError("invites.create: create failed", err, "email", req.Email)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toInviteResponse(invite))
}

func toInviteResponse(invite *authdomain.Invite) inviteResponse {
	return inviteResponse{
		ID:               invite.ID,
		Email:            invite.Email,
		Code:             invite.Code,
		CreatedByAdminID: invite.CreatedByAdminID,
		UsedAt:           invite.UsedAt,
		CreatedAt:        invite.CreatedAt,
	}
}
