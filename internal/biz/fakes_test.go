package biz

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"linkgate/internal/domain"
)

// noopUnitOfWork runs fn directly and clears aggregate events on success.
type noopUnitOfWork struct {
	mu        sync.Mutex
	published []string
}

func (u *noopUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error, aggregates ...domain.AggregateRoot) error {
	if err := fn(ctx); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, agg := range aggregates {
		for _, e := range agg.Events() {
			u.published = append(u.published, e.EventName())
		}
		agg.ClearEvents()
	}
	return nil
}

func (u *noopUnitOfWork) Published() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.published...)
}

type mockLinkRepo struct {
	mu         sync.Mutex
	links      map[string]*domain.Link
	increments map[string]int
	createErr  error
	findErr    error
	existsErr  error
	incrErr    error
	existsHook func(slug string) (bool, bool)
	findCalls  int
}

func newMockLinkRepo() *mockLinkRepo {
	return &mockLinkRepo{
		links:      make(map[string]*domain.Link),
		increments: make(map[string]int),
	}
}

func (m *mockLinkRepo) add(link *domain.Link) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link.ClearEvents()
	m.links[link.ID()] = link
}

func (m *mockLinkRepo) Create(ctx context.Context, link *domain.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, l := range m.links {
		if l.Slug() == link.Slug() {
			return domain.ErrSlugTaken
		}
	}
	m.links[link.ID()] = link
	return nil
}

func (m *mockLinkRepo) Update(ctx context.Context, link *domain.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.ID()]; !ok {
		return domain.ErrLinkNotFound
	}
	m.links[link.ID()] = link
	return nil
}

func (m *mockLinkRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[id]; !ok {
		return domain.ErrLinkNotFound
	}
	delete(m.links, id)
	return nil
}

func (m *mockLinkRepo) FindByID(ctx context.Context, id string) (*domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.links[id], nil
}

func (m *mockLinkRepo) FindBySlug(ctx context.Context, slug string) (*domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, l := range m.links {
		if l.Slug().String() == slug {
			return l, nil
		}
	}
	return nil, nil
}

func (m *mockLinkRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	if m.existsHook != nil {
		if exists, handled := m.existsHook(slug); handled {
			return exists, nil
		}
	}
	l, _ := m.FindBySlug(ctx, slug)
	return l != nil, nil
}

func (m *mockLinkRepo) List(ctx context.Context, q domain.ListQuery) ([]*domain.Link, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Link, 0, len(m.links))
	for _, l := range m.links {
		if q.Search == "" || strings.Contains(l.Slug().String(), q.Search) || strings.Contains(l.Destination().String(), q.Search) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	total := len(out)
	start := (q.Page - 1) * q.PageSize
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (m *mockLinkRepo) IncrementTotalClicks(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrErr != nil {
		return m.incrErr
	}
	if _, ok := m.links[id]; !ok {
		return domain.ErrLinkNotFound
	}
	m.increments[id]++
	return nil
}

func (m *mockLinkRepo) Increments(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.increments[id]
}

type mockClickRepo struct {
	mu          sync.Mutex
	clicks      map[string]*domain.ClickEvent
	appendErr   error
	appendCalls int
	failures    int
	summary     *domain.ClickSummary
	since       time.Time
}

func newMockClickRepo() *mockClickRepo {
	return &mockClickRepo{clicks: make(map[string]*domain.ClickEvent)}
}

func (m *mockClickRepo) Append(ctx context.Context, click *domain.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendCalls++
	if m.failures > 0 {
		m.failures--
		return errors.New("transient store failure")
	}
	if m.appendErr != nil {
		return m.appendErr
	}
	if _, ok := m.clicks[click.ID]; ok {
		return domain.ErrDuplicateClick
	}
	m.clicks[click.ID] = click
	return nil
}

func (m *mockClickRepo) Summarize(ctx context.Context, linkID string, since time.Time) (*domain.ClickSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.since = since
	if m.summary != nil {
		return m.summary, nil
	}
	return &domain.ClickSummary{}, nil
}

func (m *mockClickRepo) All() []*domain.ClickEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.ClickEvent, 0, len(m.clicks))
	for _, c := range m.clicks {
		out = append(out, c)
	}
	return out
}

type mockLinkCache struct {
	mu            sync.Mutex
	views         map[string]*domain.CachedLinkView
	ttls          map[string]time.Duration
	invalidated   []string
	getErr        error
	setErr        error
	invalidateErr error
}

func newMockLinkCache() *mockLinkCache {
	return &mockLinkCache{
		views: make(map[string]*domain.CachedLinkView),
		ttls:  make(map[string]time.Duration),
	}
}

func (m *mockLinkCache) Get(ctx context.Context, slug string) (*domain.CachedLinkView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.views[slug], nil
}

func (m *mockLinkCache) Set(ctx context.Context, slug string, view *domain.CachedLinkView, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.views[slug] = view
	m.ttls[slug] = ttl
	return nil
}

func (m *mockLinkCache) Invalidate(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, slug)
	if m.invalidateErr != nil {
		return m.invalidateErr
	}
	delete(m.views, slug)
	return nil
}

type mockCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newMockCounter() *mockCounter {
	return &mockCounter{counts: make(map[string]int64)}
}

func (m *mockCounter) Incr(ctx context.Context, linkID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.counts[linkID]++
	return m.counts[linkID], nil
}

func (m *mockCounter) Get(ctx context.Context, linkID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.counts[linkID], nil
}

type stubGeoResolver struct {
	hints domain.GeoHints
	calls int
}

func (s *stubGeoResolver) Resolve(string) domain.GeoHints {
	s.calls++
	return s.hints
}

func mustLink(slug, dest string, settings domain.LinkSettings) *domain.Link {
	s, err := domain.NewSlug(slug)
	if err != nil {
		panic(err)
	}
	d, err := domain.NewDestinationURL(dest)
	if err != nil {
		panic(err)
	}
	return domain.NewLink(s, d, settings)
}

func ptr[T any](v T) *T {
	return &v
}
