package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chepyr/task-collab-api/internal/auth"
	"github.com/chepyr/task-collab-api/internal/models"
)

func TestAuthMiddleware(t *testing.T) {
	handler, accountRepo, _ := newTestHandler()
	ana := auth.SetupMockAccount(accountRepo, "ana", "ana@x.com", "secret123")

	pair, err := handler.Tokens.GeneratePair(ana)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"Valid token", "Bearer " + pair.Access, http.StatusOK},
		{"Missing header", "", http.StatusUnauthorized},
		{"Garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"Refresh token instead of access", "Bearer " + pair.Refresh, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var caller *models.Account
			protected := handler.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
				caller = CallerFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			protected(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				if caller == nil || caller.ID != ana.ID {
					t.Errorf("handler must see the authenticated account, got %+v", caller)
				}
			} else if caller != nil {
				t.Error("handler must not run on rejected requests")
			}
		})
	}
}

func TestAuthMiddlewareDeletedAccount(t *testing.T) {
	handler, accountRepo, _ := newTestHandler()
	ghost := auth.SetupMockAccount(accountRepo, "ghost", "ghost@x.com", "secret123")

	pair, err := handler.Tokens.GeneratePair(ghost)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	accountRepo.Delete(ghost.ID)

	protected := handler.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for a deleted account")
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	rr := httptest.NewRecorder()
	protected(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}
}
