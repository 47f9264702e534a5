package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chepyr/task-collab-api/internal/auth"
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success by username",
			method:         http.MethodPost,
			body:           `{"credential": "ana", "password": "secret123"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"access"`,
		},
		{
			name:           "Success by email",
			method:         http.MethodPost,
			body:           `{"credential": "ana@x.com", "password": "secret123"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"refresh"`,
		},
		{
			name:           "Invalid method",
			method:         http.MethodGet,
			body:           ``,
			expectedStatus: http.StatusMethodNotAllowed,
			expectedBody:   `"general"`,
		},
		{
			name:           "Invalid JSON",
			method:         http.MethodPost,
			body:           `{"credential": "ana", "password": }`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"general"`,
		},
		{
			name:           "Wrong password",
			method:         http.MethodPost,
			body:           `{"credential": "ana", "password": "wrongpass"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid credential or password"`,
		},
		{
			name:           "Unknown credential",
			method:         http.MethodPost,
			body:           `{"credential": "ghost", "password": "secret123"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid credential or password"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, accountRepo, _ := newTestHandler()
			auth.SetupMockAccount(accountRepo, "ana", "ana@x.com", "secret123")

			req := httptest.NewRequest(tt.method, "/accounts/login", strings.NewReader(tt.body))
			req.RemoteAddr = "192.168.1.1:1234"
			rr := httptest.NewRecorder()

			handler.Login(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d, body: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.expectedBody) {
				t.Errorf("Expected body to contain %q, got %q", tt.expectedBody, rr.Body.String())
			}
		})
	}
}

// the two failure modes must produce byte-identical envelopes
func TestLoginFailureShapeIsUniform(t *testing.T) {
	handler, accountRepo, _ := newTestHandler()
	auth.SetupMockAccount(accountRepo, "ana", "ana@x.com", "secret123")

	responses := make([]string, 0, 2)
	for _, body := range []string{
		`{"credential": "ghost", "password": "secret123"}`,
		`{"credential": "ana", "password": "wrongpass"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/accounts/login", strings.NewReader(body))
		req.RemoteAddr = "192.168.1.1:1234"
		rr := httptest.NewRecorder()
		handler.Login(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", rr.Code)
		}
		responses = append(responses, rr.Body.String())
	}

	if responses[0] != responses[1] {
		t.Errorf("unknown-credential and wrong-password responses differ:\n%s\n%s", responses[0], responses[1])
	}
}

func TestLoginRateLimit(t *testing.T) {
	handler, accountRepo, _ := newTestHandler()
	auth.SetupMockAccount(accountRepo, "ana", "ana@x.com", "secret123")
	handler.RateLimiter = NewRateLimiter(3, time.Minute)

	var wg sync.WaitGroup
	results := make([]int, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/accounts/login",
				strings.NewReader(`{"credential": "ana", "password": "secret123"}`))
			req.RemoteAddr = "192.168.1.1:1234"
			rr := httptest.NewRecorder()
			handler.Login(rr, req)
			results[i] = rr.Code
		}(i)
	}
	wg.Wait()

	allowed := 0
	limited := 0
	for _, code := range results {
		switch code {
		case http.StatusOK:
			allowed++
		case http.StatusTooManyRequests:
			limited++
		}
	}
	if allowed > 3 {
		t.Errorf("Expected at most 3 successes, got %d", allowed)
	}
	if limited == 0 {
		t.Error("Expected some requests to be rate limited")
	}
}

func TestRefreshToken(t *testing.T) {
	handler, accountRepo, _ := newTestHandler()
	auth.SetupMockAccount(accountRepo, "ana", "ana@x.com", "secret123")

	// obtain a real pair first
	loginReq := httptest.NewRequest(http.MethodPost, "/accounts/login",
		strings.NewReader(`{"credential": "ana", "password": "secret123"}`))
	loginReq.RemoteAddr = "192.168.1.1:1234"
	loginRR := httptest.NewRecorder()
	handler.Login(loginRR, loginReq)
	if loginRR.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", loginRR.Code, loginRR.Body.String())
	}

	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(loginRR.Body.Bytes(), &pair); err != nil {
		t.Fatalf("bad login response: %v", err)
	}

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"Valid refresh", `{"refresh": "` + pair.Refresh + `"}`, http.StatusOK},
		{"Access token rejected", `{"refresh": "` + pair.Access + `"}`, http.StatusUnauthorized},
		{"Garbage token", `{"refresh": "not.a.token"}`, http.StatusUnauthorized},
		{"Missing token", `{}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/accounts/token/refresh", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.RefreshToken(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d, body: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			if tt.expectedStatus == http.StatusOK && !strings.Contains(rr.Body.String(), `"access"`) {
				t.Errorf("refresh response must carry a new access token: %s", rr.Body.String())
			}
		})
	}
}
