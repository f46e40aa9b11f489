package data

import (
	"context"
	"fmt"

	"linkgate/internal/conf"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redis/cache/v9"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewLinkRepo,
	NewClickRepo,
	NewLinkCache,
	NewClickCounter,
	NewUnitOfWork,
)

// Data holds the store driver and the redis handles.
type Data struct {
	db    *entsql.Driver
	rdb   *redis.Client
	cache *cache.Cache
}

// NewData opens the database and redis connections described by c.
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	if c == nil || c.Database == nil {
		return nil, nil, fmt.Errorf("data.database is not configured")
	}

	drv, err := entsql.Open(c.Database.Driver, c.Database.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed opening connection to %s: %w", c.Database.Driver, err)
	}
	if drv.Dialect() == dialect.SQLite {
		// SQLite allows a single writer; serialize access through one connection.
		drv.DB().SetMaxOpenConns(1)
	}

	if c.Database.AutoMigrate {
		if err := Migrate(drv.DB(), drv.Dialect()); err != nil {
			_ = drv.Close()
			return nil, nil, err
		}
	}

	var rdb *redis.Client
	if c.Redis != nil && c.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Network:      c.Redis.Network,
			Addr:         c.Redis.Addr,
			Password:     c.Redis.Password,
			DB:           c.Redis.Db,
			DialTimeout:  c.Redis.DialTimeout.AsDuration(),
			ReadTimeout:  c.Redis.ReadTimeout.AsDuration(),
			WriteTimeout: c.Redis.WriteTimeout.AsDuration(),
		})
	} else {
		helper.Warn("redis is not configured, link views will not be cached")
	}

	d := NewDataFromClients(drv, rdb)

	cleanup := func() {
		helper.Info("closing the data resources")
		if err := d.db.Close(); err != nil {
			helper.Error(err)
		}
		if d.rdb != nil {
			if err := d.rdb.Close(); err != nil {
				helper.Error(err)
			}
		}
	}

	return d, cleanup, nil
}

// NewDataFromClients wraps already opened clients. rdb may be nil.
func NewDataFromClients(drv *entsql.Driver, rdb *redis.Client) *Data {
	d := &Data{db: drv, rdb: rdb}
	if rdb != nil {
		d.cache = cache.New(&cache.Options{Redis: rdb})
	}
	return d
}

// Ping checks the database and, when configured, redis.
func (d *Data) Ping(ctx context.Context) error {
	if err := d.db.DB().PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if d.rdb != nil {
		if err := d.rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (d *Data) builder() *entsql.DialectBuilder {
	return entsql.Dialect(d.db.Dialect())
}
