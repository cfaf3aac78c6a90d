package edits

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/regkeeper/internal/common"
	"github.com/dmitrijs2005/regkeeper/internal/dbx"
	"github.com/dmitrijs2005/regkeeper/internal/filex"
	"github.com/dmitrijs2005/regkeeper/internal/logging"
	"github.com/dmitrijs2005/regkeeper/internal/migrations"
	"github.com/dmitrijs2005/regkeeper/internal/models"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores records as JSON blobs in the edit_records table.
type SQLiteRepository struct {
	db  dbx.DBTX
	log logging.Logger
	// closer is set when the repository owns the connection.
	closer func() error
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX, log logging.Logger) *SQLiteRepository {
	if log == nil {
		log = logging.Nop()
	}
	return &SQLiteRepository{db: db, log: log}
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate edit store: %w", err)
	}
	return nil
}

// OpenSQLite opens (creating if needed) the edit database at path and
// migrates it.
func OpenSQLite(ctx context.Context, path string, log logging.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), filex.DirPerm); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=rwc&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	r := NewSQLiteRepository(db, log)
	r.closer = db.Close
	return r, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*models.InvoiceDocument, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT document FROM edit_records WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("edit record %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get edit record %d: %w", id, err)
	}
	var doc models.InvoiceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("edit record %d: %w: %w", id, common.ErrInvalidDocument, err)
	}
	return &doc, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, doc *models.InvoiceDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode edit record %d: %w", doc.ID, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO edit_records (id, document, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at
	`, doc.ID, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to put edit record %d: %w", doc.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM edit_records WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete edit record %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete edit record %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) List(ctx context.Context) (map[int64]*models.InvoiceDocument, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, document FROM edit_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list edit records: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]*models.InvoiceDocument)
	for rows.Next() {
		var id int64
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan edit record row: %w", err)
		}
		var doc models.InvoiceDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			r.log.Warn(ctx, "skipping corrupt edit record", "id", id, "err", err)
			continue
		}
		result[id] = &doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate edit record rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM edit_records`); err != nil {
		return fmt.Errorf("failed to clear edit records: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
