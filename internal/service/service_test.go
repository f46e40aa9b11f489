package service

import (
	"context"
	"sync"
	"testing"

	"linkgate/internal/biz"
	"linkgate/internal/conf"
	"linkgate/internal/data"
	"linkgate/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	clicks []domain.ClickRequest
}

func (d *recordingDispatcher) Dispatch(req domain.ClickRequest) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clicks = append(d.clicks, req)
}

func (d *recordingDispatcher) Clicks() []domain.ClickRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.ClickRequest(nil), d.clicks...)
}

// testStack wires the services over an in-memory SQLite store without redis.
type testStack struct {
	data       *data.Data
	links      domain.LinkRepository
	clicks     domain.ClickRepository
	uc         *biz.LinkUsecase
	dispatcher *recordingDispatcher
	redirect   *RedirectService
	linkSvc    *LinkService
	pages      *StatusPages
	router     chi.Router
}

func newTestStack(t *testing.T, cfg *conf.Redirect) *testStack {
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

	s := &testStack{
		data:       d,
		links:      data.NewLinkRepo(d, logger),
		clicks:     data.NewClickRepo(d, logger),
		dispatcher: &recordingDispatcher{},
	}
	cache := data.NewLinkCache(d, logger)
	counter := data.NewClickCounter(d, cfg, logger)
	uow := data.NewUnitOfWork(d, nil, logger)

	resolver := biz.NewResolver(cfg, cache, s.links, biz.NewBotDetector(), biz.NewPreviewRenderer(cfg), logger)
	s.uc = biz.NewLinkUsecase(&conf.Slug{}, s.links, s.clicks, cache, counter, uow, biz.NewSlugGenerator(s.links, logger), logger)

	s.redirect = NewRedirectService(cfg, resolver, s.dispatcher, logger)
	s.linkSvc = NewLinkService(cfg, s.uc, logger)
	s.pages = NewStatusPages(cfg)

	r := chi.NewRouter()
	r.Get(SlugPrefix+"*", s.redirect.Handler(s.pages).ServeHTTP)
	s.pages.Register(r)
	r.Route("/api/v1", s.linkSvc.Register)
	s.router = r
	return s
}

func (s *testStack) createLink(t *testing.T, slug, dest string, settings domain.LinkSettings) *domain.Link {
	t.Helper()
	link, err := s.uc.Create(context.Background(), biz.CreateLinkInput{
		DestinationURL: dest,
		Slug:           &slug,
		Settings:       settings,
	})
	require.NoError(t, err)
	return link
}
