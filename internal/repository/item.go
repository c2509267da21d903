package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloo-solutions/linkshelf/internal/domain"
	"github.com/cloo-solutions/linkshelf/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const itemColumns = `id, url, title, summary, tags, source, platform, content_type, created_at`

const urlUniqueConstraint = "items_url_key"

type ItemRepository struct {
	db dbtx
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{db: pool}
}

func NewItemRepositoryWithTx(tx pgx.Tx) *ItemRepository {
	return &ItemRepository{db: tx}
}

// Create inserts the item; the database assigns id and created_at.
func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO items (url, title, summary, tags, source, platform, content_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		item.URL, item.Title, item.Summary, tags, item.Source, item.Platform, item.ContentType,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, urlUniqueConstraint) {
			return domain.ErrURLAlreadyExists.WithCause(err)
		}
		return err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrItemNotFound
	}

	item, err := scanItem(r.db.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *ItemRepository) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM items WHERE url = $1)`,
		url,
	).Scan(&exists)
	return exists, err
}

// List returns items matching filter, newest first, with the total match count.
func (r *ItemRepository) List(ctx context.Context, filter service.ItemFilter, limit, offset int) (*service.ItemPageResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	where, args := buildItemFilter(filter)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM items`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}

	if total == 0 || offset >= total {
		return &service.ItemPageResult{Items: []*domain.Item{}, Total: total}, nil
	}

	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM items%s
		 ORDER BY created_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`, itemColumns, where, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanItemRows(rows)
	if err != nil {
		return nil, err
	}

	return &service.ItemPageResult{Items: items, Total: total}, nil
}

// buildItemFilter renders the WHERE clause for filter. Every condition is
// optional and they combine with AND; list filters match any of their values.
func buildItemFilter(filter service.ItemFilter) (string, []any) {
	var conds []string
	var args []any

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(title ILIKE $%d ESCAPE '\' OR summary ILIKE $%d ESCAPE '\')`, n, n))
	}
	if tags := nonEmpty(filter.Tags); len(tags) > 0 {
		args = append(args, tags)
		conds = append(conds, fmt.Sprintf(`tags && $%d::text[]`, len(args)))
	}
	if platforms := nonEmpty(filter.Platforms); len(platforms) > 0 {
		args = append(args, platforms)
		conds = append(conds, fmt.Sprintf(`platform = ANY($%d::text[])`, len(args)))
	}
	if sources := nonEmpty(filter.Sources); len(sources) > 0 {
		args = append(args, sources)
		conds = append(conds, fmt.Sprintf(`source = ANY($%d::text[])`, len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (r *ItemRepository) DistinctPlatforms(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT platform FROM items WHERE platform <> '' ORDER BY platform`)
}

func (r *ItemRepository) DistinctTags(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT tag FROM items, unnest(tags) AS tag WHERE tag <> '' ORDER BY tag`)
}

func (r *ItemRepository) DistinctSources(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT source FROM items WHERE source <> '' ORDER BY source`)
}

func (r *ItemRepository) distinct(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrItemNotFound
	}

	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM items WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE items SET embedding = $1 WHERE id = $2`,
		pgvector.NewVector(embedding), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// Related returns up to limit items nearest to id by cosine distance. An item
// that has not been embedded yet has no related items.
func (r *ItemRepository) Related(ctx context.Context, id string, limit int) ([]*domain.Item, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrItemNotFound
	}

	rows, err := r.db.Query(ctx,
		`WITH target AS (
			 SELECT embedding FROM items WHERE id = $1 AND embedding IS NOT NULL
		 )
		 SELECT i.id, i.url, i.title, i.summary, i.tags, i.source, i.platform, i.content_type, i.created_at
		 FROM items i, target t
		 WHERE i.id <> $1 AND i.embedding IS NOT NULL
		 ORDER BY i.embedding <=> t.embedding, i.created_at DESC
		 LIMIT $2`,
		id, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItemRows(rows)
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var item domain.Item
	if err := row.Scan(&item.ID, &item.URL, &item.Title, &item.Summary, &item.Tags, &item.Source,
		&item.Platform, &item.ContentType, &item.CreatedAt); err != nil {
		return nil, err
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	item.CreatedAt = item.CreatedAt.UTC()
	return &item, nil
}

func scanItemRows(rows pgx.Rows) ([]*domain.Item, error) {
	results := []*domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}
