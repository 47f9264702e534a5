package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/chepyr/task-collab-api/internal/apperr"
	"github.com/chepyr/task-collab-api/internal/auth"
	"github.com/chepyr/task-collab-api/internal/db"
	"github.com/chepyr/task-collab-api/internal/policy"
)

type Handler struct {
	AccountRepo   db.AccountRepositoryInterface
	TaskRepo      db.TaskRepositoryInterface
	Authenticator *auth.Authenticator
	Tokens        *auth.TokenManager
	Policy        policy.Ownership
	RateLimiter   LoginLimiter
	Hub           *EventHub
}

func sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// sendError writes the normalized error envelope. Errors outside the
// taxonomy are logged and masked as a generic server fault so no raw
// internal failure reaches the client.
func sendError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		sendJSON(w, status, apperr.Envelope{
			Title:  "Error",
			Errors: []apperr.FieldError{{Field: "general", Message: "Internal server error"}},
		})
		return
	}
	sendJSON(w, status, apperr.Normalize(err))
}

func sendErrorMessage(w http.ResponseWriter, field, message string, status int) {
	sendJSON(w, status, apperr.Envelope{
		Title:  "Error",
		Errors: []apperr.FieldError{{Field: field, Message: message}},
	})
}

func isJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(strings.ToLower(ct), "application/json")
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
