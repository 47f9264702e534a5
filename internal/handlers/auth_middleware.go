package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/chepyr/task-collab-api/internal/apperr"
	"github.com/chepyr/task-collab-api/internal/models"
)

type contextKey int

const accountContextKey contextKey = iota

// CallerFromContext returns the authenticated account, or nil when the
// request never passed the auth middleware.
func CallerFromContext(ctx context.Context) *models.Account {
	account, _ := ctx.Value(accountContextKey).(*models.Account)
	return account
}

/*
Verify the Bearer access token, load the account behind its subject claim
and attach it to the request context.
*/
func (h *Handler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			sendError(w, apperr.ErrUnauthenticated)
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := h.Tokens.ValidateAccessToken(tokenString)
		if err != nil {
			sendError(w, apperr.ErrUnauthenticated)
			return
		}

		accountID, err := uuid.Parse(claims.Subject)
		if err != nil {
			sendError(w, apperr.ErrUnauthenticated)
			return
		}

		account, err := h.AccountRepo.GetByID(r.Context(), accountID)
		if err != nil {
			if !errors.Is(err, apperr.ErrNotFound) {
				log.Printf("Error loading account %s: %v", accountID, err)
			}
			sendError(w, apperr.ErrUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), accountContextKey, account)
		next(w, r.WithContext(ctx))
	}
}
