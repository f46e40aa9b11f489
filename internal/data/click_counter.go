package data

import (
	"context"
	"errors"
	"time"

	"linkgate/internal/conf"
	"linkgate/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

const (
	statsKeyPrefix  = "stats:"
	defaultStatsTTL = 24 * time.Hour
)

// Compile-time interface checks
var (
	_ domain.ClickCounter = (*redisClickCounter)(nil)
	_ domain.ClickCounter = (*noopClickCounter)(nil)
)

// redisClickCounter keeps realtime counters under the stats: namespace.
type redisClickCounter struct {
	rdb *redis.Client
	ttl time.Duration
	log *log.Helper
}

// NewClickCounter creates the counter store. Returns a no-op counter if redis
// is not configured.
func NewClickCounter(data *Data, c *conf.Redirect, logger log.Logger) domain.ClickCounter {
	if data.rdb == nil {
		return &noopClickCounter{}
	}
	ttl := defaultStatsTTL
	if c != nil && c.StatsTtl.AsDuration() > 0 {
		ttl = c.StatsTtl.AsDuration()
	}
	return &redisClickCounter{
		rdb: data.rdb,
		ttl: ttl,
		log: log.NewHelper(logger),
	}
}

func statsKey(linkID string) string {
	return statsKeyPrefix + linkID
}

// Incr adds one to the counter and starts its ttl on first use.
func (c *redisClickCounter) Incr(ctx context.Context, linkID string) (int64, error) {
	var incr *redis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, statsKey(linkID))
		pipe.ExpireNX(ctx, statsKey(linkID), c.ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Get returns zero for an absent counter.
func (c *redisClickCounter) Get(ctx context.Context, linkID string) (int64, error) {
	n, err := c.rdb.Get(ctx, statsKey(linkID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

type noopClickCounter struct{}

func (c *noopClickCounter) Incr(context.Context, string) (int64, error) {
	return 0, nil
}

func (c *noopClickCounter) Get(context.Context, string) (int64, error) {
	return 0, nil
}
