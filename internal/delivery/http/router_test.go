package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"linkgate/internal/biz"
	"linkgate/internal/conf"
	"linkgate/internal/data"
	"linkgate/internal/domain"
	"linkgate/internal/service"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(domain.ClickRequest) {}

func newTestRouter(t *testing.T, limiter *RateLimiter) (http.Handler, *biz.LinkUsecase) {
	t.Helper()
	logger := log.DefaultLogger

	d, cleanup, err := data.NewData(&conf.Data{
		Database: &conf.Data_Database{
			Driver:      "sqlite3",
			Source:      "file:" + uuid.NewString() + "?mode=memory&_fk=1",
			AutoMigrate: true,
		},
	}, logger)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	links := data.NewLinkRepo(d, logger)
	clicks := data.NewClickRepo(d, logger)
	cache := data.NewLinkCache(d, logger)
	uc := biz.NewLinkUsecase(nil, links, clicks, cache, data.NewClickCounter(d, nil, logger),
		data.NewUnitOfWork(d, nil, logger), biz.NewSlugGenerator(links, logger), logger)
	resolver := biz.NewResolver(nil, cache, links, biz.NewBotDetector(), biz.NewPreviewRenderer(nil), logger)

	router := NewRouter(
		service.NewRedirectService(nil, resolver, nopDispatcher{}, logger),
		service.NewLinkService(nil, uc, logger),
		service.NewStatusPages(nil),
		service.NewHealthService(d, logger),
		limiter,
		logger,
	)
	return router, uc
}

func TestRouter(t *testing.T) {
	router, uc := newTestRouter(t, nil)
	_, err := uc.Create(context.Background(), biz.CreateLinkInput{
		DestinationURL: "https://example.com",
		Slug:           strPtr("promo"),
		Settings:       domain.LinkSettings{IsActive: true},
	})
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/s/promo", http.StatusTemporaryRedirect},
		{http.MethodHead, "/s/promo", http.StatusTemporaryRedirect},
		{http.MethodGet, "/s/nope", http.StatusTemporaryRedirect},
		{http.MethodGet, "/404", http.StatusNotFound},
		{http.MethodGet, "/link-expired", http.StatusGone},
		{http.MethodGet, "/api/v1/links", http.StatusOK},
		{http.MethodGet, "/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRouter_RealIPAndRateLimit(t *testing.T) {
	router, _ := newTestRouter(t, newRateLimiter(1))

	call := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/links", strings.NewReader(`{"destination_url":"https://example.com"}`))
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, call("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("198.51.100.1"))
	assert.Equal(t, http.StatusCreated, call("198.51.100.2"))
}

func strPtr(s string) *string {
	return &s
}
