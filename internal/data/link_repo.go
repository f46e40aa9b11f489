package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"linkgate/internal/domain"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/go-kratos/kratos/v2/log"
)

// Compile-time interface check
var _ domain.LinkRepository = (*linkRepo)(nil)

const linksTable = "links"

var linkColumns = []string{
	"id", "slug", "destination_url", "is_active", "expires_at", "click_limit",
	"total_clicks", "title", "description", "image_url", "created_at", "updated_at",
}

// linkRepo implements domain.LinkRepository.
type linkRepo struct {
	data *Data
	log  *log.Helper
}

// NewLinkRepo creates a new link repository.
func NewLinkRepo(data *Data, logger log.Logger) domain.LinkRepository {
	return &linkRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Create inserts a new link.
func (r *linkRepo) Create(ctx context.Context, l *domain.Link) error {
	s := l.Settings()
	query, args := r.data.builder().Insert(linksTable).
		Columns(linkColumns...).
		Values(
			l.ID(),
			l.Slug().String(),
			l.Destination().String(),
			s.IsActive,
			nullTime(s.ExpiresAt),
			nullInt64(s.ClickLimit),
			l.TotalClicks(),
			nullString(s.Preview.Title),
			nullString(s.Preview.Description),
			nullString(s.Preview.ImageURL),
			l.CreatedAt().UTC(),
			l.UpdatedAt().UTC(),
		).
		Query()

	if err := r.data.conn(ctx).Exec(ctx, query, args, nil); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("insert link: %w", err)
	}
	return nil
}

// Update persists the destination and settings of an existing link.
func (r *linkRepo) Update(ctx context.Context, l *domain.Link) error {
	s := l.Settings()
	query, args := r.data.builder().Update(linksTable).
		Set("destination_url", l.Destination().String()).
		Set("is_active", s.IsActive).
		Set("expires_at", nullTime(s.ExpiresAt)).
		Set("click_limit", nullInt64(s.ClickLimit)).
		Set("title", nullString(s.Preview.Title)).
		Set("description", nullString(s.Preview.Description)).
		Set("image_url", nullString(s.Preview.ImageURL)).
		Set("updated_at", l.UpdatedAt().UTC()).
		Where(entsql.EQ("id", l.ID())).
		Query()

	return r.execAffectingOne(ctx, query, args)
}

// Delete removes a link and its clicks.
func (r *linkRepo) Delete(ctx context.Context, id string) error {
	b := r.data.builder()
	conn := r.data.conn(ctx)

	query, args := b.Delete(clicksTable).Where(entsql.EQ("link_id", id)).Query()
	if err := conn.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete clicks: %w", err)
	}

	query, args = b.Delete(linksTable).Where(entsql.EQ("id", id)).Query()
	return r.execAffectingOne(ctx, query, args)
}

// FindByID retrieves a link by id.
func (r *linkRepo) FindByID(ctx context.Context, id string) (*domain.Link, error) {
	return r.findOne(ctx, entsql.EQ("id", id))
}

// FindBySlug retrieves a link by slug.
func (r *linkRepo) FindBySlug(ctx context.Context, slug string) (*domain.Link, error) {
	return r.findOne(ctx, entsql.EQ("slug", slug))
}

// ExistsBySlug checks if a slug is already stored.
func (r *linkRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	b := r.data.builder()
	query, args := b.Select("id").
		From(b.Table(linksTable)).
		Where(entsql.EQ("slug", slug)).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.data.conn(ctx).Query(ctx, query, args, &rows); err != nil {
		return false, fmt.Errorf("query slug: %w", err)
	}
	defer rows.Close()

	exists := rows.Next()
	return exists, rows.Err()
}

// List retrieves a page of links, newest first.
func (r *linkRepo) List(ctx context.Context, q domain.ListQuery) ([]*domain.Link, int, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}

	var pred *entsql.Predicate
	if q.Search != "" {
		pred = entsql.Or(
			entsql.ContainsFold("slug", q.Search),
			entsql.ContainsFold("destination_url", q.Search),
			entsql.ContainsFold("title", q.Search),
		)
	}

	b := r.data.builder()
	selector := b.Select(linkColumns...).
		From(b.Table(linksTable)).
		OrderBy(entsql.Desc("created_at")).
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize)
	if pred != nil {
		selector.Where(pred)
	}
	query, args := selector.Query()

	links, err := r.queryLinks(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}

	counter := b.Select(entsql.Count("*")).From(b.Table(linksTable))
	if pred != nil {
		counter.Where(pred)
	}
	query, args = counter.Query()

	var rows entsql.Rows
	if err := r.data.conn(ctx).Query(ctx, query, args, &rows); err != nil {
		return nil, 0, fmt.Errorf("count links: %w", err)
	}
	defer rows.Close()

	var total int
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			return nil, 0, err
		}
	}
	return links, total, rows.Err()
}

// IncrementTotalClicks atomically adds one to the counter.
func (r *linkRepo) IncrementTotalClicks(ctx context.Context, id string) error {
	query, args := r.data.builder().Update(linksTable).
		Add("total_clicks", 1).
		Where(entsql.EQ("id", id)).
		Query()

	return r.execAffectingOne(ctx, query, args)
}

func (r *linkRepo) findOne(ctx context.Context, pred *entsql.Predicate) (*domain.Link, error) {
	b := r.data.builder()
	query, args := b.Select(linkColumns...).
		From(b.Table(linksTable)).
		Where(pred).
		Limit(1).
		Query()

	links, err := r.queryLinks(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, nil
	}
	return links[0], nil
}

func (r *linkRepo) queryLinks(ctx context.Context, query string, args []any) ([]*domain.Link, error) {
	var rows entsql.Rows
	if err := r.data.conn(ctx).Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	var links []*domain.Link
	for rows.Next() {
		l, err := scanLink(&rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *linkRepo) execAffectingOne(ctx context.Context, query string, args []any) error {
	var res sql.Result
	if err := r.data.conn(ctx).Exec(ctx, query, args, &res); err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

func scanLink(rows *entsql.Rows) (*domain.Link, error) {
	var (
		id, slug, destination        string
		isActive                     bool
		expiresAt                    sql.NullTime
		clickLimit                   sql.NullInt64
		totalClicks                  int64
		title, description, imageURL sql.NullString
		createdAt, updatedAt         time.Time
	)
	if err := rows.Scan(
		&id, &slug, &destination, &isActive, &expiresAt, &clickLimit,
		&totalClicks, &title, &description, &imageURL, &createdAt, &updatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan link: %w", err)
	}

	slugVO, err := domain.NewSlug(slug)
	if err != nil {
		return nil, fmt.Errorf("scan link %s: slug %q: %w", id, slug, err)
	}
	destinationVO, err := domain.NewDestinationURL(destination)
	if err != nil {
		return nil, fmt.Errorf("scan link %s: destination: %w", id, err)
	}

	return domain.ReconstructLink(
		id,
		slugVO,
		destinationVO,
		domain.LinkSettings{
			IsActive:   isActive,
			ExpiresAt:  timePtr(expiresAt),
			ClickLimit: int64Ptr(clickLimit),
			Preview: domain.Preview{
				Title:       stringPtr(title),
				Description: stringPtr(description),
				ImageURL:    stringPtr(imageURL),
			},
		},
		totalClicks,
		createdAt.UTC(),
		updatedAt.UTC(),
	), nil
}
