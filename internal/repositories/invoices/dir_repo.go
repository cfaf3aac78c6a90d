package invoices

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/regkeeper/internal/common"
	"github.com/dmitrijs2005/regkeeper/internal/filex"
	"github.com/dmitrijs2005/regkeeper/internal/logging"
	"github.com/dmitrijs2005/regkeeper/internal/models"
	"golang.org/x/crypto/blake2b"
)

// DirRepository implements Repository over a single directory.
type DirRepository struct {
	dir string
	log logging.Logger
}

var _ Repository = (*DirRepository)(nil)

func NewDirRepository(dir string, log logging.Logger) *DirRepository {
	if log == nil {
		log = logging.Nop()
	}
	return &DirRepository{dir: dir, log: log.With("dir", dir)}
}

// Dir returns the scanned directory.
func (r *DirRepository) Dir() string { return r.dir }

// ReadAll implements Repository.
func (r *DirRepository) ReadAll(ctx context.Context) ([]File, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		if _, err := filex.EnsureDir(r.dir); err != nil {
			r.log.Warn(ctx, "cannot create invoice directory", "err", err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read invoice directory: %w", err)
	}

	seen := make(map[string]string)
	var files []File
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !filex.IsJSONFile(e.Name()) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(r.dir, e.Name()))
		if err != nil {
			r.log.Warn(ctx, "skipping unreadable invoice file", "file", e.Name(), "err", err)
			continue
		}

		sum := blake2b.Sum256(data)
		digest := hex.EncodeToString(sum[:])
		if first, ok := seen[digest]; ok {
			r.log.Debug(ctx, "skipping duplicate invoice file", "file", e.Name(), "same_as", first)
			continue
		}
		seen[digest] = e.Name()

		docs, err := r.parse(ctx, e.Name(), data)
		if err != nil {
			r.log.Warn(ctx, "skipping invalid invoice file", "file", e.Name(), "err", err)
			continue
		}
		files = append(files, File{Name: e.Name(), Documents: docs})
	}
	return files, nil
}

// parse decodes a JSON array of documents. Documents without an id are
// dropped; any other decoding problem rejects the whole file.
func (r *DirRepository) parse(ctx context.Context, name string, data []byte) ([]models.InvoiceDocument, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidDocument, err)
	}

	docs := make([]models.InvoiceDocument, 0, len(raw))
	for i, item := range raw {
		var probe struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(item, &probe); err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", common.ErrInvalidDocument, i, err)
		}
		if len(probe.ID) == 0 || string(probe.ID) == "null" {
			r.log.Warn(ctx, "dropping invoice without id", "file", name, "index", i)
			continue
		}

		var doc models.InvoiceDocument
		if err := json.Unmarshal(item, &doc); err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", common.ErrInvalidDocument, i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
