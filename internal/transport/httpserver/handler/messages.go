package handler

import (
	"errors"
	"net/http"
	"time"

	"family-directory-go/internal/domain/messaging"
	"family-directory-go/internal/transport/httpserver/middleware"
)

type createThreadRequest struct {
	RecipientUserID int    `json:"recipientUserId" validate:"required,gt=0"`
	Body            string `json:"body" validate:"required"`
}

type postMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

type threadResponse struct {
	ID           int       `json:"id"`
	Participants []int     `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}

type messageResponse struct {
	ID           int       `json:"id"`
	ThreadID     int       `json:"threadId"`
	SenderUserID int       `json:"senderUserId"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (h *Handlers) Inbox(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	threads, err := h.Messaging.ListThreadsForUser(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("messages.inbox: list failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	responses := make([]threadResponse, 0, len(threads))
	for i := range threads {
		responses = append(responses, toThreadResponse(&threads[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Handlers) CreateThread(w http.ResponseWriter, r *http.Request) {
	var req createThreadRequest
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

	thread, err := h.Messaging.CreateThread(r.Context(), user.ID, []int{req.RecipientUserID}, req.Body)
	if err != nil {
		h.log.InternalError("messages.create_thread: create failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toThreadResponse(thread))
}

func (h *Handlers) PostMessage(w http.ResponseWriter, r *http.Request) {
	threadID, err := parseIDParam(r, "threadId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid thread id")
		return
	}

	var req postMessageRequest
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

	message, err := h.Messaging.PostMessage(r.Context(), threadID, user.ID, req.Body)
	if err != nil {
		if errors.Is(err, messaging.ErrThreadNotFound) {
			writeError(w, http.StatusNotFound, "thread_not_found", "thread not found")
			return
		}
		h.log.InternalError("messages.post: post failed", err, "thread_id", threadID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toMessageResponse(message))
}

func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	threadID, err := parseIDParam(r, "threadId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid thread id")
		return
	}

	messages, err := h.Messaging.ListMessages(r.Context(), threadID)
	if err != nil {
		if errors.Is(err, messaging.ErrThreadNotFound) {
			writeError(w, http.StatusNotFound, "thread_not_found", "thread not found")
			return
		}
		h.log.InternalError("messages.list: list failed", err, "thread_id", threadID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	responses := make([]messageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, toMessageResponse(&messages[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

func toThreadResponse(thread *messaging.ThreadWithParticipants) threadResponse {
	return threadResponse{
		ID:           thread.Thread.ID,
		Participants: thread.Participants,
		CreatedAt:    thread.Thread.CreatedAt,
	}
}

func toMessageResponse(message *messaging.Message) messageResponse {
	return messageResponse{
		ID:           message.ID,
		ThreadID:     message.ThreadID,
		SenderUserID: message.SenderUserID,
		Body:         message.Body,
		CreatedAt:    message.CreatedAt,
	}
}
