package handler

import (
	"errors"
	"net/http"
	"time"

	"family-directory-go/internal/domain/directory"
	"family-directory-go/internal/transport/httpserver/middleware"
)

type createMediaRequest struct {
	PersonID int     `json:"personId" validate:"required,gt=0"`
	Type     string  `json:"type" validate:"required,oneof=PHOTO VIDEO"`
	URL      string  `json:"url" validate:"required,url"`
	Caption  *string `json:"caption"`
}

type uploadURLRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
}

type uploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
}

type mediaResponse struct {
	ID             int       `json:"id"`
	PersonID       int       `json:"personId"`
	UploaderUserID *int      `json:"uploaderUserId"`
	Type           string    `json:"type"`
	URL            string    `json:"url"`
	Caption        *string   `json:"caption"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (h *Handlers) CreateMedia(w http.ResponseWriter, r *http.Request) {
	var req createMediaRequest
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

	item, err := h.Directory.CreateMedia(r.Context(), user.ID, req.PersonID, req.Type, req.URL, req.Caption)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrPersonNotFound):
			writeError(w, http.StatusNotFound, "person_not_found", "person not found")
		case errors.Is(err, directory.ErrInvalidMediaType):
			writeError(w, http.StatusBadRequest, "invalid_media_type", "invalid media type")
		case errors.Is(err, directory.ErrMediaURLRequired):
			writeFieldViolation(w, "url", "required")
		default:
			h.log.InternalError("media.create: create failed", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toMediaResponse(item))
}

func (h *Handlers) MediaUploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	uploadURL, publicURL, err := h.Directory.MediaUploadURL(r.Context(), req.Filename, req.ContentType)
	if err != nil {
		if errors.Is(err, directory.ErrStorageNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "media_storage_not_configured", "media storage is not configured")
			return
		}
		h.log.InternalError("media.upload_url: presign failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, uploadURLResponse{UploadURL: uploadURL, PublicURL: publicURL})
}

func (h *Handlers) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid media id")
		return
	}

	if err := h.Directory.DeleteMedia(r.Context(), id); err != nil {
		if errors.Is(err, directory.ErrMediaNotFound) {
			writeError(w, http.StatusNotFound, "media_not_found", "media not found")
			return
		}
		h.log.InternalError("media.delete: delete failed", err, "media_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toMediaResponse(item *directory.Media) mediaResponse {
	return mediaResponse{
		ID:             item.ID,
		PersonID:       item.PersonID,
		UploaderUserID: item.UploaderUserID,
		Type:           item.Type,
		URL:            item.URL,
		Caption:        item.Caption,
		CreatedAt:      item.CreatedAt,
	}
}
