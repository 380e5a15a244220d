package api

import (
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"time"

	"github.com/AlanDeLonga/chatroom/internal/history"
	"github.com/AlanDeLonga/chatroom/internal/session"
	"github.com/AlanDeLonga/chatroom/internal/ws"
)

type API struct {
	hub     *ws.Hub
	manager *session.Manager
	store   history.Store
}

func New(hub *ws.Hub, manager *session.Manager, store history.Store) *API {
	return &API{
		hub:     hub,
		manager: manager,
		store:   store,
	}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

type postMessageRequest struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

// MessageHandler is the HTTP side-channel for outgoing chat messages.
// It accepts JSON or form bodies, needs no websocket session, and
// trusts the caller-supplied sender name.
func (a *API) MessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	req, ok := decodeMessageRequest(r)
	if !ok {
		errorResponse(w, http.StatusBadRequest, "Message is invalid")
		return
	}

	err := a.manager.PostMessage(r.Context(), req.Name, req.Message)
	if err != nil {
		if errors.Is(err, session.ErrInvalidMessage) {
			errorResponse(w, http.StatusBadRequest, "Message is invalid")
			return
		}
		errorResponse(w, http.StatusInternalServerError, "Failed to post message")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "Message received"})
}

func decodeMessageRequest(r *http.Request) (postMessageRequest, bool) {
	var req postMessageRequest

	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, false
		}
		return req, true
	}

	// The browser client posts urlencoded form data
	if err := r.ParseForm(); err != nil {
		return req, false
	}
	req.Message = r.PostFormValue("message")
	req.Name = r.PostFormValue("name")
	return req, true
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	historyStatus := "ok"
	if err := a.store.Ping(r.Context()); err != nil {
		historyStatus = "unavailable"
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"history":   historyStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := a.manager.Stats()

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"active_clients": a.hub.ClientCount(),
		"participants":   stats.Participants,
		"total_messages": stats.TotalMessages,
		"uptime":         stats.Uptime,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

// ParticipantsHandler exposes the current roster for debugging and for
// clients that want a poll-based view.
func (a *API) ParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	participants := a.manager.Participants()
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"participants": participants,
		"count":        len(participants),
	})
}
