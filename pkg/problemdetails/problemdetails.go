// Package problemdetails renders RFC 7807 problem responses.
package problemdetails

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	TypeInvalidURL        = "invalid-url"
	TypeInvalidSlug       = "invalid-slug"
	TypeReservedSlug      = "reserved-slug"
	TypeSlugTaken         = "slug-taken"
	TypeNotFound          = "not-found"
	TypeInvalidRequest    = "invalid-request"
	TypeRateLimitExceeded = "rate-limit-exceeded"
	TypeInternalError     = "internal-error"
	TypeValidationError   = "validation-error"
)

// ContentType is the media type of problem documents.
const ContentType = "application/problem+json"

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ProblemDetail struct {
	Type   string       `json:"type"`
	Title  string       `json:"title"`
	Status int          `json:"status"`
	Detail string       `json:"detail"`
	Errors []FieldError `json:"errors,omitempty"`
}

func New(status int, problemType, title, detail string) *ProblemDetail {
	return &ProblemDetail{
		Type:   typeURI(problemType),
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

func NewValidation(errors []FieldError) *ProblemDetail {
	return &ProblemDetail{
		Type:   typeURI(TypeValidationError),
		Title:  "Validation Failed",
		Status: http.StatusBadRequest,
		Detail: "Request validation failed",
		Errors: errors,
	}
}

// Error lets a problem travel through error returns.
func (p *ProblemDetail) Error() string {
	return fmt.Sprintf("%d %s: %s", p.Status, p.Title, p.Detail)
}

// Write encodes p as the response.
func Write(w http.ResponseWriter, p *ProblemDetail) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func typeURI(problemType string) string {
	return fmt.Sprintf("https://linkgate.dev/problems/%s", problemType)
}
