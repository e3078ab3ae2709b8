package views

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/clipstream/backend/internal/db"
	"github.com/clipstream/backend/internal/logging"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Page is the uniform pagination envelope returned by every list view.
type Page[T any] struct {
	Records      []T   `json:"records"`
	TotalRecords int64 `json:"totalRecords"`
	TotalPages   int64 `json:"totalPages"`
	CurrentPage  int   `json:"currentPage"`
}

// NormalizePage clamps caller-supplied pagination parameters. Non-positive
// values fall back to the defaults; the limit is capped so a caller cannot
// request an unbounded page.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// scanFunc maps one result row into a projection value.
type scanFunc[T any] func(rows pgx.Rows) (T, error)

// paginate wraps a fully sorted and filtered pipeline with page/limit
// slicing: a count over the inner query for the totals, then the sliced page
// itself. An out-of-range page yields an empty page, not an error.
func paginate[T any](ctx context.Context, pool db.Pool, p *Pipeline, page, limit int, scan scanFunc[T]) (Page[T], error) {
	page, limit = NormalizePage(page, limit)

	inner, args, err := p.SQL()
	if err != nil {
		return Page[T]{}, err
	}

	ctx, span := logging.StartSpan(ctx, "views.paginate")
	defer span.End()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return Page[T]{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	result := Page[T]{Records: []T{}, CurrentPage: page}

	countSQL := "SELECT count(*) FROM (\n" + inner + "\n) q"
	if err := conn.QueryRow(ctx, countSQL, args...).Scan(&result.TotalRecords); err != nil {
		return Page[T]{}, fmt.Errorf("count view rows: %w", err)
	}
	result.TotalPages = (result.TotalRecords + int64(limit) - 1) / int64(limit)

	// Slicing appends to the ordered query directly; wrapping it in a
	// subselect would not guarantee the sort order survives.
	pageSQL := fmt.Sprintf("%s\nLIMIT $%d OFFSET $%d", inner, len(args)+1, len(args)+2)
	pageArgs := append(append([]any{}, args...), limit, (page-1)*limit)

	rows, err := conn.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return Page[T]{}, fmt.Errorf("query view page: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scan(rows)
		if err != nil {
			return Page[T]{}, fmt.Errorf("scan view row: %w", err)
		}
		result.Records = append(result.Records, record)
	}
	if err := rows.Err(); err != nil {
		return Page[T]{}, fmt.Errorf("iterate view rows: %w", err)
	}

	return result, nil
}

// collect executes an unpaginated pipeline and returns all records.
func collect[T any](ctx context.Context, pool db.Pool, p *Pipeline, scan scanFunc[T]) ([]T, error) {
	sql, args, err := p.SQL()
	if err != nil {
		return nil, err
	}

	ctx, span := logging.StartSpan(ctx, "views.collect")
	defer span.End()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query view: %w", err)
	}
	defer rows.Close()

	records := []T{}
	for rows.Next() {
		record, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan view row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate view rows: %w", err)
	}

	return records, nil
}
