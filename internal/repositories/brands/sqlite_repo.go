package brands

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/dmitrijs2005/regkeeper/internal/dbx"
	"github.com/dmitrijs2005/regkeeper/internal/logging"
	"github.com/dmitrijs2005/regkeeper/internal/models"
)

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 20

// Options tunes the repository.
type Options struct {
	// SampleSize is the number of rows synthesized into an empty store.
	SampleSize int
	Logger     logging.Logger
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	if o.SampleSize < 0 {
		o.SampleSize = 0
	}
}

// SQLiteRepository implements Repository over a single *sql.DB handle.
type SQLiteRepository struct {
	db         *sql.DB
	mode       OpenMode
	fresh      bool
	sampleSize int
	log        logging.Logger

	mu    sync.Mutex
	res   Resolution
	total *int
}

var _ Repository = (*SQLiteRepository)(nil)

// New wraps an already opened database. Call Init before reading.
func New(db *sql.DB, mode OpenMode, opts Options) *SQLiteRepository {
	opts.setDefaults()
	return &SQLiteRepository{
		db:         db,
		mode:       mode,
		sampleSize: opts.SampleSize,
		log:        opts.Logger,
	}
}

// Mode returns how the store was opened.
func (r *SQLiteRepository) Mode() OpenMode { return r.mode }

// Fresh reports whether the store file was created by Open.
func (r *SQLiteRepository) Fresh() bool { return r.fresh }

// Resolution returns the cached discovery result.
func (r *SQLiteRepository) Resolution() Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.res
}

// Init resolves the data table, synthesizes sample data when the store is
// writable and has nothing to show, ensures the name index, and drops the
// cached total.
func (r *SQLiteRepository) Init(ctx context.Context) {
	res, err := discover(ctx, r.db)
	if err != nil {
		r.log.Warn(ctx, "table discovery failed", "err", err)
		res = Resolution{Kind: ResolvedNone}
	}

	if r.mode.Writable() && r.sampleSize > 0 && r.wantsSample(ctx, res) {
		if err := r.synthesize(ctx, r.sampleSize); err != nil {
			r.log.Error(ctx, "sample data synthesis failed", "err", err)
		} else {
			r.log.Info(ctx, "sample data synthesized", "rows", r.sampleSize)
			if again, err := discover(ctx, r.db); err == nil {
				res = again
			}
		}
	}

	if r.mode.Writable() && res.Kind != ResolvedNone && res.has("name") {
		idx := dbx.QuoteIdent("idx_" + res.Table + "_name")
		q := "CREATE INDEX IF NOT EXISTS " + idx + " ON " + res.table(true) + " (" + res.column("name", true) + ")"
		if _, err := r.db.ExecContext(ctx, q); err != nil {
			r.log.Warn(ctx, "cannot create name index", "table", res.Table, "err", err)
		}
	}

	r.log.Info(ctx, "brand table resolved", "kind", res.Kind.String(), "table", res.Table)

	r.mu.Lock()
	r.res = res
	r.total = nil
	r.mu.Unlock()
}

func (r *SQLiteRepository) wantsSample(ctx context.Context, res Resolution) bool {
	if res.NeedsSample() {
		return true
	}
	if res.Kind != ResolvedExpected {
		return false
	}
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+res.table(true)).Scan(&n); err != nil {
		return false
	}
	return n == 0
}

// Close releases the connection.
func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func normalize(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// beyond reports whether page lies past the last page of total rows. It
// compares page numbers so the offset is only computed for pages that
// exist and cannot overflow.
func beyond(page, pageSize, total int) bool {
	return page-1 >= models.TotalPages(total, pageSize)
}

func newPage(records []models.BrandRecord, total, page, pageSize int) models.BrandPage {
	if records == nil {
		records = []models.BrandRecord{}
	}
	return models.BrandPage{
		Records:     records,
		TotalCount:  total,
		TotalPages:  models.TotalPages(total, pageSize),
		CurrentPage: page,
	}
}

// ListPage implements Repository.
func (r *SQLiteRepository) ListPage(ctx context.Context, page, pageSize int) models.BrandPage {
	page, pageSize = normalize(page, pageSize)
	total := r.Count(ctx)

	if beyond(page, pageSize, total) {
		return newPage(nil, total, page, pageSize)
	}

	records := r.fetch(ctx, query{limit: pageSize, offset: (page - 1) * pageSize})
	return newPage(records, total, page, pageSize)
}

// Search implements Repository.
func (r *SQLiteRepository) Search(ctx context.Context, term string, page, pageSize int) models.BrandPage {
	page, pageSize = normalize(page, pageSize)
	q := query{term: &term, limit: pageSize}

	total := r.count(ctx, q)
	if beyond(page, pageSize, total) {
		return newPage(nil, total, page, pageSize)
	}
	q.offset = (page - 1) * pageSize
	return newPage(r.fetch(ctx, q), total, page, pageSize)
}

// Count implements Repository.
func (r *SQLiteRepository) Count(ctx context.Context) int {
	r.mu.Lock()
	if r.total != nil {
		n := *r.total
		r.mu.Unlock()
		return n
	}
	r.mu.Unlock()

	n, ok := r.countOK(ctx, query{})
	if ok {
		r.mu.Lock()
		r.total = &n
		r.mu.Unlock()
	}
	return n
}

func (r *SQLiteRepository) resolution() (Resolution, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.res, r.res.Kind != ResolvedNone
}

func (r *SQLiteRepository) count(ctx context.Context, q query) int {
	n, _ := r.countOK(ctx, q)
	return n
}

func (r *SQLiteRepository) countOK(ctx context.Context, q query) (int, bool) {
	res, ok := r.resolution()
	if !ok {
		return 0, false
	}
	return runLadder(ctx, r.log, "count", countRungs(r.db, res, q))
}

func (r *SQLiteRepository) fetch(ctx context.Context, q query) []models.BrandRecord {
	res, ok := r.resolution()
	if !ok {
		return nil
	}
	records, _ := runLadder(ctx, r.log, "select", selectRungs(r.db, res, q))
	return records
}

// matches is the in-memory equivalent of the LIKE filter.
func matches(name, term string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}
