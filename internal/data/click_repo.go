package data

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"linkgate/internal/domain"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
)

// Compile-time interface check
var _ domain.ClickRepository = (*clickRepo)(nil)

const (
	clicksTable       = "clicks"
	summaryBucketSize = 10
	unknownBucketKey  = "unknown"
)

var clickColumns = []string{
	"id", "link_id", "created_at", "country", "city", "region", "latitude", "longitude",
	"device", "device_name", "browser", "os", "referrer", "referrer_domain", "is_bot",
}

// clickRepo implements domain.ClickRepository.
type clickRepo struct {
	data *Data
	log  *log.Helper
}

// NewClickRepo creates a new click repository.
func NewClickRepo(data *Data, logger log.Logger) domain.ClickRepository {
	return &clickRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Append inserts a click event. Returns ErrDuplicateClick if the ID exists and
// ErrLinkNotFound if the link is gone.
func (r *clickRepo) Append(ctx context.Context, c *domain.ClickEvent) error {
	query, args := r.data.builder().Insert(clicksTable).
		Columns(clickColumns...).
		Values(
			c.ID,
			c.LinkID,
			c.Timestamp.UTC(),
			nullString(c.Country),
			nullString(c.City),
			nullString(c.Region),
			nullFloat64(c.Latitude),
			nullFloat64(c.Longitude),
			string(c.Device),
			nullString(c.DeviceName),
			nullString(c.Browser),
			nullString(c.OS),
			nullString(c.Referrer),
			nullString(c.ReferrerDomain),
			c.IsBot,
		).
		Query()

	if err := r.data.conn(ctx).Exec(ctx, query, args, nil); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateClick
		}
		if isForeignKeyViolation(err) {
			return domain.ErrLinkNotFound
		}
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

// Summarize aggregates the non-bot clicks of a link since the given time.
func (r *clickRepo) Summarize(ctx context.Context, linkID string, since time.Time) (*domain.ClickSummary, error) {
	pred := entsql.And(
		entsql.EQ("link_id", linkID),
		entsql.EQ("is_bot", false),
		entsql.GTE("created_at", since.UTC()),
	)

	byDay, total, err := r.countByDay(ctx, pred)
	if err != nil {
		return nil, err
	}

	summary := &domain.ClickSummary{Total: total, ByDay: byDay}
	groups := []struct {
		column string
		dst    *[]domain.CountBucket
	}{
		{"country", &summary.ByCountry},
		{"device", &summary.ByDevice},
		{"browser", &summary.ByBrowser},
		{"referrer_domain", &summary.ByReferrer},
	}
	for _, g := range groups {
		buckets, err := r.countBy(ctx, g.column, pred)
		if err != nil {
			return nil, err
		}
		*g.dst = buckets
	}
	return summary, nil
}

func (r *clickRepo) countBy(ctx context.Context, column string, pred *entsql.Predicate) ([]domain.CountBucket, error) {
	b := r.data.builder()
	query, args := b.Select(column, entsql.As(entsql.Count("*"), "clicks")).
		From(b.Table(clicksTable)).
		Where(pred).
		GroupBy(column).
		OrderBy(entsql.Desc("clicks")).
		Limit(summaryBucketSize).
		Query()

	var rows entsql.Rows
	if err := r.data.conn(ctx).Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("count clicks by %s: %w", column, err)
	}
	defer rows.Close()

	buckets := make([]domain.CountBucket, 0)
	for rows.Next() {
		var (
			key   sql.NullString
			count int64
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		buckets = append(buckets, domain.CountBucket{
			Key:   lo.Ternary(key.Valid && key.String != "", key.String, unknownBucketKey),
			Count: count,
		})
	}
	return buckets, rows.Err()
}

// countByDay buckets in Go since day truncation differs between dialects.
func (r *clickRepo) countByDay(ctx context.Context, pred *entsql.Predicate) ([]domain.CountBucket, int64, error) {
	b := r.data.builder()
	query, args := b.Select("created_at").
		From(b.Table(clicksTable)).
		Where(pred).
		Query()

	var rows entsql.Rows
	if err := r.data.conn(ctx).Query(ctx, query, args, &rows); err != nil {
		return nil, 0, fmt.Errorf("query click days: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	var total int64
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, 0, err
		}
		counts[at.UTC().Format(time.DateOnly)]++
		total++
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	days := lo.Keys(counts)
	sort.Strings(days)
	buckets := lo.Map(days, func(day string, _ int) domain.CountBucket {
		return domain.CountBucket{Key: day, Count: counts[day]}
	})
	return buckets, total, nil
}
