package edits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/regkeeper/internal/common"
	"github.com/dmitrijs2005/regkeeper/internal/filex"
	"github.com/dmitrijs2005/regkeeper/internal/logging"
	"github.com/dmitrijs2005/regkeeper/internal/models"
)

// FSRepository stores each record as "<id>.json" inside dir.
type FSRepository struct {
	dir string
	log logging.Logger
}

var _ Repository = (*FSRepository)(nil)

func NewFSRepository(dir string, log logging.Logger) *FSRepository {
	if log == nil {
		log = logging.Nop()
	}
	return &FSRepository{dir: dir, log: log.With("dir", dir)}
}

func (r *FSRepository) path(id int64) string {
	return filepath.Join(r.dir, strconv.FormatInt(id, 10)+".json")
}

func (r *FSRepository) Get(ctx context.Context, id int64) (*models.InvoiceDocument, error) {
	data, err := os.ReadFile(r.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("edit record %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read edit record %d: %w", id, err)
	}
	var doc models.InvoiceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("edit record %d: %w: %w", id, common.ErrInvalidDocument, err)
	}
	return &doc, nil
}

func (r *FSRepository) Put(ctx context.Context, doc *models.InvoiceDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode edit record %d: %w", doc.ID, err)
	}
	if err := filex.WriteFileAtomic(r.path(doc.ID), data); err != nil {
		return fmt.Errorf("write edit record %d: %w", doc.ID, err)
	}
	return nil
}

func (r *FSRepository) Delete(ctx context.Context, id int64) (bool, error) {
	err := os.Remove(r.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete edit record %d: %w", id, err)
	}
	return true, nil
}

func (r *FSRepository) List(ctx context.Context) (map[int64]*models.InvoiceDocument, error) {
	result := make(map[int64]*models.InvoiceDocument)

	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read edit directory: %w", err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !filex.IsJSONFile(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.dir, e.Name()))
		if err != nil {
			r.log.Warn(ctx, "skipping unreadable edit record", "file", e.Name(), "err", err)
			continue
		}
		var doc models.InvoiceDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			r.log.Warn(ctx, "skipping corrupt edit record", "file", e.Name(), "err", err)
			continue
		}
		result[doc.ID] = &doc
	}
	return result, nil
}

// Clear removes every file in the directory, not only the ones it wrote.
func (r *FSRepository) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read edit directory: %w", err)
	}

	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(r.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("clear edit directory: %w", errors.Join(errs...))
	}
	return nil
}

func (r *FSRepository) Close() error { return nil }
