package data

import (
	"context"
	"sync"
	"testing"
	"time"

	"linkgate/internal/domain"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/lib/pq"
)

// IntegrationTestSuite runs the data layer against PostgreSQL and Redis containers.
type IntegrationTestSuite struct {
	suite.Suite
	ctx            context.Context
	pgContainer    *postgres.PostgresContainer
	redisContainer *tcredis.RedisContainer
	driver         *entsql.Driver
	redisClient    *redis.Client
	data           *Data
	links          domain.LinkRepository
	clicks         domain.ClickRepository
	cache          domain.LinkCache
	counter        domain.ClickCounter
	uow            domain.UnitOfWork
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(s.T(), err)
	s.pgContainer = pgContainer

	// Start Redis container
	redisContainer, err := tcredis.Run(s.ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(s.T(), err)
	s.redisContainer = redisContainer

	// Get connection strings
	pgConnStr, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	redisEndpoint, err := redisContainer.Endpoint(s.ctx, "")
	require.NoError(s.T(), err)

	s.driver, err = entsql.Open("postgres", pgConnStr)
	require.NoError(s.T(), err)

	// Run migrations
	require.NoError(s.T(), Migrate(s.driver.DB(), s.driver.Dialect()))

	s.redisClient = redis.NewClient(&redis.Options{
		Addr: redisEndpoint,
	})

	s.data = NewDataFromClients(s.driver, s.redisClient)
	s.links = NewLinkRepo(s.data, log.DefaultLogger)
	s.clicks = NewClickRepo(s.data, log.DefaultLogger)
	s.cache = NewLinkCache(s.data, log.DefaultLogger)
	s.counter = NewClickCounter(s.data, nil, log.DefaultLogger)
	s.uow = NewUnitOfWork(s.data, nil, log.DefaultLogger)
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.driver != nil {
		s.driver.Close()
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.pgContainer != nil {
		s.pgContainer.Terminate(s.ctx)
	}
	if s.redisContainer != nil {
		s.redisContainer.Terminate(s.ctx)
	}
}

func (s *IntegrationTestSuite) TearDownTest() {
	// Clean up data after each test
	require.NoError(s.T(), s.driver.Exec(s.ctx, "DELETE FROM clicks", []any{}, nil))
	require.NoError(s.T(), s.driver.Exec(s.ctx, "DELETE FROM links", []any{}, nil))
	s.redisClient.FlushAll(s.ctx)
}

func TestIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) createLink(slug string, settings domain.LinkSettings) *domain.Link {
	link := newTestLink(s.T(), slug, "https://example.com/"+slug, settings, time.Now())
	require.NoError(s.T(), s.links.Create(s.ctx, link))
	return link
}

func (s *IntegrationTestSuite) TestCreateAndFind() {
	// Arrange
	expiresAt := time.Now().Add(24 * time.Hour)
	limit := int64(10)
	link := s.createLink("promo", domain.LinkSettings{IsActive: true, ExpiresAt: &expiresAt, ClickLimit: &limit})

	// Act
	found, err := s.links.FindBySlug(s.ctx, "promo")

	// Assert
	require.NoError(s.T(), err)
	require.NotNil(s.T(), found)
	assert.Equal(s.T(), link.ID(), found.ID())
	require.NotNil(s.T(), found.Settings().ExpiresAt)
	assert.WithinDuration(s.T(), expiresAt, *found.Settings().ExpiresAt, time.Millisecond)
	assert.Equal(s.T(), &limit, found.Settings().ClickLimit)
}

func (s *IntegrationTestSuite) TestCreate_SlugTaken() {
	s.createLink("promo", domain.LinkSettings{IsActive: true})

	err := s.links.Create(s.ctx, newTestLink(s.T(), "promo", "https://example.org", domain.LinkSettings{}, time.Now()))

	assert.ErrorIs(s.T(), err, domain.ErrSlugTaken)
}

func (s *IntegrationTestSuite) TestAppendClick_Duplicate() {
	link := s.createLink("promo", domain.LinkSettings{IsActive: true})
	click := &domain.ClickEvent{ID: "00000000-0000-7000-8000-000000000001", LinkID: link.ID(), Timestamp: time.Now(), Device: domain.DeviceMobile}

	require.NoError(s.T(), s.clicks.Append(s.ctx, click))
	assert.ErrorIs(s.T(), s.clicks.Append(s.ctx, click), domain.ErrDuplicateClick)
}

func (s *IntegrationTestSuite) TestAppendClick_MissingLink() {
	err := s.clicks.Append(s.ctx, &domain.ClickEvent{
		ID: "00000000-0000-7000-8000-000000000003", LinkID: "00000000-0000-7000-8000-00000000ffff", Timestamp: time.Now(), Device: domain.DeviceDesktop,
	})

	assert.ErrorIs(s.T(), err, domain.ErrLinkNotFound)
}

func (s *IntegrationTestSuite) TestClickAndIncrementAreAtomic() {
	// Arrange
	link := s.createLink("promo", domain.LinkSettings{IsActive: true})

	// Act: the increment fails on a missing link, so the click must be rolled back.
	err := s.uow.Do(s.ctx, func(ctx context.Context) error {
		if err := s.clicks.Append(ctx, &domain.ClickEvent{
			ID: "00000000-0000-7000-8000-000000000002", LinkID: link.ID(), Timestamp: time.Now(), Device: domain.DeviceDesktop,
		}); err != nil {
			return err
		}
		return s.links.IncrementTotalClicks(ctx, "00000000-0000-7000-8000-00000000ffff")
	})

	// Assert
	assert.ErrorIs(s.T(), err, domain.ErrLinkNotFound)
	summary, err := s.clicks.Summarize(s.ctx, link.ID(), time.Time{})
	require.NoError(s.T(), err)
	assert.Zero(s.T(), summary.Total)
}

func (s *IntegrationTestSuite) TestConcurrentIncrements() {
	// Arrange
	link := s.createLink("promo", domain.LinkSettings{IsActive: true})
	const n = 20

	// Act
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(s.T(), s.links.IncrementTotalClicks(s.ctx, link.ID()))
		}()
	}
	wg.Wait()

	// Assert
	found, err := s.links.FindByID(s.ctx, link.ID())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(n), found.TotalClicks())
}

func (s *IntegrationTestSuite) TestLinkCache_RoundTrip() {
	// Arrange
	title := "Launch"
	limit := int64(3)
	view := &domain.CachedLinkView{
		ID:             "link-1",
		DestinationURL: "https://example.com",
		IsActive:       true,
		Title:          &title,
		ClickLimit:     &limit,
		TotalClicks:    2,
	}

	// Act
	require.NoError(s.T(), s.cache.Set(s.ctx, "promo", view, time.Minute))
	got, err := s.cache.Get(s.ctx, "promo")

	// Assert
	require.NoError(s.T(), err)
	assert.Equal(s.T(), view, got)

	exists, err := s.redisClient.Exists(s.ctx, "link:promo").Result()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), exists)
}

func (s *IntegrationTestSuite) TestLinkCache_MissAndInvalidate() {
	got, err := s.cache.Get(s.ctx, "missing")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got)

	require.NoError(s.T(), s.cache.Set(s.ctx, "promo", &domain.CachedLinkView{ID: "link-1"}, time.Minute))
	require.NoError(s.T(), s.cache.Invalidate(s.ctx, "promo"))
	require.NoError(s.T(), s.cache.Invalidate(s.ctx, "promo"))

	got, err = s.cache.Get(s.ctx, "promo")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got)
}

func (s *IntegrationTestSuite) TestClickCounter() {
	n, err := s.counter.Get(s.ctx, "link-1")
	require.NoError(s.T(), err)
	assert.Zero(s.T(), n)

	for i := 1; i <= 3; i++ {
		n, err = s.counter.Incr(s.ctx, "link-1")
		require.NoError(s.T(), err)
		assert.Equal(s.T(), int64(i), n)
	}

	ttl, err := s.redisClient.TTL(s.ctx, "stats:link-1").Result()
	require.NoError(s.T(), err)
	assert.Greater(s.T(), ttl, time.Duration(0))

	n, err = s.counter.Get(s.ctx, "link-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(3), n)
}
