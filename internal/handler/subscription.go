package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tazwar/feedpost/internal/service"
)

// SubscriptionHandler exposes the topic-subscription endpoints. All
// three carry the session credential in the request body — the service
// layer validates it before touching any store.
type SubscriptionHandler struct {
	subs   *service.SubscriptionService
	logger *slog.Logger
}

// NewSubscriptionHandler creates a SubscriptionHandler.
func NewSubscriptionHandler(subs *service.SubscriptionService, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs, logger: logger}
}

type subscriptionRequest struct {
	SessionID string   `json:"session_id"`
	UserID    int64    `json:"user_id"`
	Topics    []string `json:"topics"`
}

func decodeSubscriptionRequest(w http.ResponseWriter, r *http.Request) (*subscriptionRequest, bool) {
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "invalid JSON payload",
		})
		return nil, false
	}
	return &req, true
}

// HandleCreate bulk-subscribes the user to topics.
//
// HTTP: POST /subscription/create
// Body: {"session_id","user_id","topics":[...]}
// 200 count message | 401 | 500
func (h *SubscriptionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSubscriptionRequest(w, r)
	if !ok {
		return
	}

	added, err := h.subs.Save(r.Context(), req.SessionID, req.UserID, req.Topics)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%d subscriptions saved successfully", added),
	})
}

// HandleDelete bulk-unsubscribes the user from topics.
//
// HTTP: POST /subscription/delete
// Body: {"session_id","user_id","topics":[...]}
// 200 count message | 401 | 500
func (h *SubscriptionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSubscriptionRequest(w, r)
	if !ok {
		return
	}

	removed, err := h.subs.Delete(r.Context(), req.SessionID, req.UserID, req.Topics)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%d subscriptions deleted successfully", removed),
	})
}

// HandleGet returns the user's topic list, served from cache when the
// entry is live.
//
// HTTP: POST /subscription/get
// Body: {"session_id","user_id"}
// 200 {topics:[...]} | 401 | 500
func (h *SubscriptionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSubscriptionRequest(w, r)
	if !ok {
		return
	}

	topics, err := h.subs.Get(r.Context(), req.SessionID, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"topics": topics})
}
