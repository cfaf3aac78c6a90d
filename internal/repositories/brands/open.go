package brands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/regkeeper/internal/common"
	"github.com/dmitrijs2005/regkeeper/internal/filex"

	_ "modernc.org/sqlite"
)

// OpenMode tells how the store file ended up being opened.
type OpenMode string

const (
	ModeReadWrite OpenMode = "read-write"
	ModeReadOnly  OpenMode = "read-only"
	ModeImmutable OpenMode = "immutable"
)

// Writable reports whether tables and indexes may be created.
func (m OpenMode) Writable() bool { return m == ModeReadWrite }

type openStrategy struct {
	mode  OpenMode
	query string
}

var openLadder = []openStrategy{
	{mode: ModeReadWrite, query: "mode=rwc&_pragma=busy_timeout(5000)"},
	{mode: ModeReadOnly, query: "mode=ro"},
	{mode: ModeImmutable, query: "immutable=1"},
}

func dsn(path, query string) string {
	return "file:" + filepath.ToSlash(path) + "?" + query
}

// Open opens the store at path, trying each strategy of the open ladder in
// turn, and runs the table discovery. It fails only when every strategy
// fails.
func Open(ctx context.Context, path string, opts Options) (*SQLiteRepository, error) {
	opts.setDefaults()
	log := opts.Logger.With("store", path)

	existed := filex.Exists(path)
	if !existed {
		if err := os.MkdirAll(filepath.Dir(path), filex.DirPerm); err != nil {
			log.Warn(ctx, "cannot create store directory", "err", err)
		}
	}

	var errs []error
	for _, s := range openLadder {
		db, err := openWith(ctx, dsn(path, s.query))
		if err != nil {
			log.Warn(ctx, "open strategy failed", "mode", s.mode, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.mode, err))
			continue
		}
		log.Info(ctx, "store opened", "mode", s.mode, "fresh", !existed)

		r := New(db, s.mode, opts)
		r.fresh = !existed
		r.Init(ctx)
		return r, nil
	}

	return nil, fmt.Errorf("open %s: %w: %w", path, common.ErrStoreUnavailable, errors.Join(errs...))
}

func openWith(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	var n int
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM sqlite_master`).Scan(&n); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
