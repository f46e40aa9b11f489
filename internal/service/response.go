package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"linkgate/internal/biz"
	"linkgate/internal/domain"
	"linkgate/pkg/problemdetails"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/samber/lo"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// problemFor maps an error returned by the use cases to a problem document.
func problemFor(err error) *problemdetails.ProblemDetail {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		fields := make([]problemdetails.FieldError, 0, len(verrs))
		for field, ferr := range verrs {
			fields = append(fields, problemdetails.FieldError{Field: field, Message: ferr.Error()})
		}
		return problemdetails.NewValidation(fields)
	case errors.Is(err, domain.ErrInvalidURL):
		return problemdetails.New(http.StatusBadRequest, problemdetails.TypeInvalidURL, "Invalid URL", err.Error())
	case errors.Is(err, domain.ErrInvalidSlug):
		return problemdetails.New(http.StatusBadRequest, problemdetails.TypeInvalidSlug, "Invalid Slug", err.Error())
	case errors.Is(err, domain.ErrInvalidClickLimit),
		errors.Is(err, domain.ErrInvalidPreview),
		errors.Is(err, biz.ErrInvalidPeriod),
		errors.Is(err, biz.ErrInvalidPage):
		return problemdetails.New(http.StatusBadRequest, problemdetails.TypeValidationError, "Validation Failed", err.Error())
	case errors.Is(err, domain.ErrReservedSlug):
		return problemdetails.New(http.StatusUnprocessableEntity, problemdetails.TypeReservedSlug, "Reserved Slug", err.Error())
	case errors.Is(err, domain.ErrSlugTaken):
		return problemdetails.New(http.StatusConflict, problemdetails.TypeSlugTaken, "Slug Taken", err.Error())
	case errors.Is(err, domain.ErrLinkNotFound):
		return problemdetails.New(http.StatusNotFound, problemdetails.TypeNotFound, "Not Found", err.Error())
	default:
		return problemdetails.New(http.StatusInternalServerError, problemdetails.TypeInternalError, "Internal Server Error", "Internal server error")
	}
}

// requestOrigin is the scheme and host clients used to reach the service.
// A configured base URL wins over forwarded headers.
func requestOrigin(r *http.Request, baseURL string) string {
	if baseURL != "" {
		return strings.TrimRight(baseURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	host := lo.CoalesceOrEmpty(r.Header.Get("X-Forwarded-Host"), r.Host)
	return scheme + "://" + host
}
