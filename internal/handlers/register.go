package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chepyr/task-collab-api/internal/apperr"
	"github.com/chepyr/task-collab-api/internal/models"
)

const emailRegex = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`

var emailPattern = regexp.MustCompile(emailRegex)

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

type registerInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendErrorMessage(w, "general", "Use POST method", http.StatusMethodNotAllowed)
		return
	}

	clientIP := r.RemoteAddr
	if h.RateLimiter != nil && !h.RateLimiter.Allow(r.Context(), clientIP) {
		log.Printf("Rate limit exceeded for IP: %s", clientIP)
		sendErrorMessage(w, "general", "Too many register attempts. Please try again later.", http.StatusTooManyRequests)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	var input registerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendErrorMessage(w, "general", "Invalid JSON body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	verrs, err := h.validateRegistration(ctx, &input)
	if err != nil {
		sendError(w, err)
		return
	}
	if len(verrs) > 0 {
		sendError(w, verrs)
		return
	}

	hash, err := h.Authenticator.Hasher.Hash(input.Password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		sendError(w, err)
		return
	}

	now := time.Now().UTC()
	account := &models.Account{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// A concurrent registration with the same username or email loses the
	// insert race and gets the same field-tagged conflict the pre-check
	// would have produced.
	if err := h.AccountRepo.Create(ctx, account); err != nil {
		sendError(w, err)
		return
	}

	log.Printf("Account registered: %s", account.Username)
	sendJSON(w, http.StatusCreated, map[string]string{
		"username": account.Username,
		"email":    account.Email,
	})
}

// validateRegistration accumulates every violated rule in one pass; a field
// failing several rules reports each one. The returned error is a storage
// failure, not a validation outcome.
func (h *Handler) validateRegistration(ctx context.Context, input *registerInput) (apperr.ValidationErrors, error) {
	verrs := apperr.ValidationErrors{}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if input.Username == "" {
		verrs = append(verrs, apperr.FieldError{Field: "username", Message: "username is required"})
	} else {
		taken, err := h.AccountRepo.UsernameTaken(ctx, input.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			verrs = append(verrs, apperr.FieldError{Field: "username", Message: "username is already taken"})
		}
	}

	if input.Email == "" {
		verrs = append(verrs, apperr.FieldError{Field: "email", Message: "email is required"})
	} else if !isValidEmail(input.Email) {
		verrs = append(verrs, apperr.FieldError{Field: "email", Message: "email is invalid"})
	} else {
		taken, err := h.AccountRepo.EmailTaken(ctx, input.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			verrs = append(verrs, apperr.FieldError{Field: "email", Message: "email is already taken"})
		}
	}

	if input.Password == "" {
		verrs = append(verrs, apperr.FieldError{Field: "password", Message: "password is required"})
	}

	return verrs, nil
}
