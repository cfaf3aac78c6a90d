package brands

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/regkeeper/internal/dbx"
	"github.com/dmitrijs2005/regkeeper/internal/logging"
	"github.com/dmitrijs2005/regkeeper/internal/models"
)

// query describes one read: an optional name filter and a window.
type query struct {
	term   *string
	limit  int
	offset int
}

// rung is one strategy of a query ladder.
type rung[T any] struct {
	name string
	run  func(ctx context.Context) (T, error)
}

// runLadder tries each rung in order and returns the first success. When
// every rung fails it returns the zero value and false.
func runLadder[T any](ctx context.Context, log logging.Logger, op string, rungs []rung[T]) (T, bool) {
	for _, r := range rungs {
		v, err := r.run(ctx)
		if err == nil {
			log.Debug(ctx, "query answered", "op", op, "rung", r.name)
			return v, true
		}
		log.Warn(ctx, "query rung failed", "op", op, "rung", r.name, "err", err)
	}
	log.Error(ctx, "all query rungs failed, returning empty result", "op", op)
	var zero T
	return zero, false
}

func (q query) where(res Resolution, quote bool) (string, []any) {
	if q.term == nil {
		return "", nil
	}
	name := res.textExpr("name", quote)
	return " WHERE " + name + ` LIKE ? ESCAPE '\'`, []any{"%" + dbx.EscapeLike(*q.term) + "%"}
}

func orderBy(res Resolution, quote bool) string {
	return " ORDER BY " + res.textExpr("name", quote) + ", " + res.idExpr(quote)
}

func selectSQL(res Resolution, q query, quote bool) (string, []any) {
	where, args := q.where(res, quote)
	sql := "SELECT " + res.projection(quote) + " FROM " + res.table(quote) + where + orderBy(res, quote) + " LIMIT ? OFFSET ?"
	return sql, append(args, q.limit, q.offset)
}

func countSQL(res Resolution, q query, quote bool) (string, []any) {
	where, args := q.where(res, quote)
	return "SELECT COUNT(*) FROM " + res.table(quote) + where, args
}

func selectRungs(db dbx.DBTX, res Resolution, q query) []rung[[]models.BrandRecord] {
	bounded := func(quote bool) func(context.Context) ([]models.BrandRecord, error) {
		return func(ctx context.Context) ([]models.BrandRecord, error) {
			sql, args := selectSQL(res, q, quote)
			return scanRecords(ctx, db, sql, args...)
		}
	}
	return []rung[[]models.BrandRecord]{
		{name: "unquoted", run: bounded(false)},
		{name: "quoted", run: bounded(true)},
		{name: "in-memory", run: func(ctx context.Context) ([]models.BrandRecord, error) {
			all, err := loadFiltered(ctx, db, res, q)
			if err != nil {
				return nil, err
			}
			return window(all, q.offset, q.limit), nil
		}},
	}
}

func countRungs(db dbx.DBTX, res Resolution, q query) []rung[int] {
	direct := func(quote bool) func(context.Context) (int, error) {
		return func(ctx context.Context) (int, error) {
			sql, args := countSQL(res, q, quote)
			var n int
			if err := db.QueryRowContext(ctx, sql, args...).Scan(&n); err != nil {
				return 0, err
			}
			return n, nil
		}
	}
	return []rung[int]{
		{name: "unquoted", run: direct(false)},
		{name: "quoted", run: direct(true)},
		{name: "in-memory", run: func(ctx context.Context) (int, error) {
			all, err := loadFiltered(ctx, db, res, q)
			if err != nil {
				return 0, err
			}
			return len(all), nil
		}},
	}
}

// loadFiltered reads the whole table without LIMIT, ORDER BY or WHERE and
// applies filter and ordering in memory.
func loadFiltered(ctx context.Context, db dbx.DBTX, res Resolution, q query) ([]models.BrandRecord, error) {
	all, err := scanRecords(ctx, db, "SELECT "+res.projection(true)+" FROM "+res.table(true))
	if err != nil {
		return nil, err
	}

	if q.term != nil {
		filtered := all[:0]
		for _, rec := range all {
			if matches(rec.Name, *q.term) {
				filtered = append(filtered, rec)
			}
		}
		all = filtered
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

// window returns records[offset:offset+limit], clamped.
func window(records []models.BrandRecord, offset, limit int) []models.BrandRecord {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) || limit <= 0 {
		return []models.BrandRecord{}
	}
	end := len(records)
	if limit < end-offset {
		end = offset + limit
	}
	return records[offset:end]
}

func scanRecords(ctx context.Context, db dbx.DBTX, sql string, args ...any) ([]models.BrandRecord, error) {
	rows, err := db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	result := []models.BrandRecord{}
	for rows.Next() {
		var rec models.BrandRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Image, &rec.Origin, &rec.RegNum, &rec.RegDate); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return result, nil
}
