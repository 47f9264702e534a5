package apperr

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrInvalidCredentials is returned for any login failure, whether the
	// credential is unknown or the password is wrong. The two cases must stay
	// indistinguishable to the client.
	ErrInvalidCredentials = errors.New("invalid credential or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrNotFound           = errors.New("not found")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors accumulates every violated rule in one pass; handlers
// collect all of them before returning, never just the first.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Duplicate is the field-tagged error for a uniqueness conflict, produced
// both by the registrar pre-check and by a constraint violation at write
// time so a registration race surfaces identically.
func Duplicate(field string) error {
	return ValidationErrors{{Field: field, Message: field + " is already taken"}}
}

// Envelope is the single client-facing error shape.
type Envelope struct {
	Title  string       `json:"title"`
	Errors []FieldError `json:"errors"`
}

// Normalize converts any domain failure into the uniform Envelope:
// field-tagged validation errors keep their fields, one entry per violated
// rule; everything else becomes a single "general" entry.
func Normalize(err error) Envelope {
	env := Envelope{Title: "Error"}

	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		env.Errors = append(env.Errors, verrs...)
		return env
	}

	env.Errors = append(env.Errors, FieldError{Field: "general", Message: err.Error()})
	return env
}

// HTTPStatus maps a taxonomy member to its response status. Unknown errors
// map to 500; callers must not pass those through Normalize unfiltered.
func HTTPStatus(err error) int {
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
