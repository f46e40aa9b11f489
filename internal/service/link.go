package service

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"linkgate/internal/biz"
	"linkgate/internal/conf"
	"linkgate/internal/domain"
	"linkgate/pkg/problemdetails"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
)

// LinkRequest is the body of create and update calls. On update the slug
// fields are ignored and every setting is replaced.
type LinkRequest struct {
	DestinationURL string     `json:"destination_url"`
	Slug           *string    `json:"slug,omitempty"`
	SuggestSlug    bool       `json:"suggest_slug,omitempty"`
	IsActive       *bool      `json:"is_active,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ClickLimit     *int64     `json:"click_limit,omitempty"`
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	ImageURL       *string    `json:"image_url,omitempty"`
}

func (r *LinkRequest) validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DestinationURL, validation.Required),
		validation.Field(&r.ClickLimit, validation.NilOrNotEmpty, validation.Min(int64(1))),
	)
}

func (r *LinkRequest) settings() domain.LinkSettings {
	return domain.LinkSettings{
		IsActive:   lo.FromPtrOr(r.IsActive, true),
		ExpiresAt:  r.ExpiresAt,
		ClickLimit: r.ClickLimit,
		Preview: domain.Preview{
			Title:       r.Title,
			Description: r.Description,
			ImageURL:    r.ImageURL,
		},
	}
}

// LinkResponse is the API view of a link.
type LinkResponse struct {
	ID             string     `json:"id"`
	Slug           string     `json:"slug"`
	ShortURL       string     `json:"short_url"`
	DestinationURL string     `json:"destination_url"`
	IsActive       bool       `json:"is_active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ClickLimit     *int64     `json:"click_limit,omitempty"`
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	ImageURL       *string    `json:"image_url,omitempty"`
	TotalClicks    int64      `json:"total_clicks"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LinkListResponse is one page of links.
type LinkListResponse struct {
	Links      []LinkResponse `json:"links"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// Bucket is one group of a stats breakdown.
type Bucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// StatsResponse is the click summary of a link.
type StatsResponse struct {
	LinkID      string    `json:"link_id"`
	Period      string    `json:"period"`
	Since       time.Time `json:"since"`
	TotalClicks int64     `json:"total_clicks"`
	Clicks      int64     `json:"clicks"`
	Realtime    int64     `json:"realtime"`
	ByDay       []Bucket  `json:"by_day"`
	ByCountry   []Bucket  `json:"by_country"`
	ByDevice    []Bucket  `json:"by_device"`
	ByBrowser   []Bucket  `json:"by_browser"`
	ByReferrer  []Bucket  `json:"by_referrer"`
}

// LinkService is the management API for links.
type LinkService struct {
	uc      *biz.LinkUsecase
	baseURL string
	log     *log.Helper
}

// NewLinkService creates a LinkService.
func NewLinkService(c *conf.Redirect, uc *biz.LinkUsecase, logger log.Logger) *LinkService {
	s := &LinkService{
		uc:  uc,
		log: log.NewHelper(log.With(logger, "module", "service/link")),
	}
	if c != nil {
		s.baseURL = c.PublicBaseUrl
	}
	return s
}

// Register mounts the link routes on r.
func (s *LinkService) Register(r chi.Router) {
	r.Post("/links", s.Create)
	r.Get("/links", s.List)
	r.Get("/links/{id}", s.Get)
	r.Put("/links/{id}", s.Update)
	r.Delete("/links/{id}", s.Delete)
	r.Get("/links/{id}/stats", s.Stats)
}

// Create handles POST /api/v1/links
func (s *LinkService) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	link, err := s.uc.Create(r.Context(), biz.CreateLinkInput{
		DestinationURL: req.DestinationURL,
		Slug:           req.Slug,
		SuggestSlug:    req.SuggestSlug,
		Settings:       req.settings(),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toResponse(r, link))
}

// Get handles GET /api/v1/links/{id}
func (s *LinkService) Get(w http.ResponseWriter, r *http.Request) {
	link, err := s.uc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toResponse(r, link))
}

// Update handles PUT /api/v1/links/{id}
func (s *LinkService) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	link, err := s.uc.Update(r.Context(), chi.URLParam(r, "id"), biz.UpdateLinkInput{
		DestinationURL: req.DestinationURL,
		Settings:       req.settings(),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toResponse(r, link))
}

// Delete handles DELETE /api/v1/links/{id}
func (s *LinkService) Delete(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/v1/links?q=&page=&page_size=
func (s *LinkService) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := optionalInt(query.Get("page"))
	if err != nil {
		problemdetails.Write(w, problemdetails.New(http.StatusBadRequest, problemdetails.TypeInvalidRequest, "Invalid Request", "page must be a number"))
		return
	}
	pageSize, err := optionalInt(query.Get("page_size"))
	if err != nil {
		problemdetails.Write(w, problemdetails.New(http.StatusBadRequest, problemdetails.TypeInvalidRequest, "Invalid Request", "page_size must be a number"))
		return
	}

	result, err := s.uc.List(r.Context(), domain.ListQuery{
		Search:   query.Get("q"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LinkListResponse{
		Links: lo.Map(result.Links, func(l *domain.Link, _ int) LinkResponse {
			return s.toResponse(r, l)
		}),
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: (result.Total + result.PageSize - 1) / result.PageSize,
	})
}

// Stats handles GET /api/v1/links/{id}/stats?period=
func (s *LinkService) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.uc.Stats(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("period"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		LinkID:      stats.Link.ID(),
		Period:      stats.Period,
		Since:       stats.Since,
		TotalClicks: stats.Link.TotalClicks(),
		Clicks:      stats.Summary.Total,
		Realtime:    stats.Realtime,
		ByDay:       toBuckets(stats.Summary.ByDay),
		ByCountry:   toBuckets(stats.Summary.ByCountry),
		ByDevice:    toBuckets(stats.Summary.ByDevice),
		ByBrowser:   toBuckets(stats.Summary.ByBrowser),
		ByReferrer:  toBuckets(stats.Summary.ByReferrer),
	})
}

func (s *LinkService) decode(w http.ResponseWriter, r *http.Request) (*LinkRequest, bool) {
	var req LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problemdetails.Write(w, problemdetails.New(
			http.StatusBadRequest,
			problemdetails.TypeInvalidRequest,
			"Invalid Request",
			"Request body must be valid JSON with a 'destination_url' field",
		))
		return nil, false
	}
	if err := req.validate(); err != nil {
		problemdetails.Write(w, problemFor(err))
		return nil, false
	}
	return &req, true
}

func (s *LinkService) fail(w http.ResponseWriter, r *http.Request, err error) {
	problem := problemFor(err)
	if problem.Status >= http.StatusInternalServerError {
		s.log.WithContext(r.Context()).Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	problemdetails.Write(w, problem)
}

func (s *LinkService) toResponse(r *http.Request, l *domain.Link) LinkResponse {
	settings := l.Settings()
	return LinkResponse{
		ID:             l.ID(),
		Slug:           l.Slug().String(),
		ShortURL:       requestOrigin(r, s.baseURL) + SlugPrefix + l.Slug().String(),
		DestinationURL: l.Destination().String(),
		IsActive:       settings.IsActive,
		ExpiresAt:      settings.ExpiresAt,
		ClickLimit:     settings.ClickLimit,
		Title:          settings.Preview.Title,
		Description:    settings.Preview.Description,
		ImageURL:       settings.Preview.ImageURL,
		TotalClicks:    l.TotalClicks(),
		CreatedAt:      l.CreatedAt(),
		UpdatedAt:      l.UpdatedAt(),
	}
}

func toBuckets(in []domain.CountBucket) []Bucket {
	return lo.Map(in, func(b domain.CountBucket, _ int) Bucket {
		return Bucket{Key: b.Key, Count: b.Count}
	})
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
