package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/regkeeper/internal/common"
	"github.com/dmitrijs2005/regkeeper/internal/filex"
	"github.com/dmitrijs2005/regkeeper/internal/logging"
	"github.com/dmitrijs2005/regkeeper/internal/models"
	"github.com/dmitrijs2005/regkeeper/internal/repositories/edits"
	"github.com/google/uuid"
	"github.com/jszwec/csvutil"
)

type EditService interface {
	// Save stamps doc as saved and persists it. The returned copy is what
	// was written.
	Save(ctx context.Context, doc *models.InvoiceDocument) (*models.InvoiceDocument, error)
	// Export saves doc, writes a timestamped copy to the exports directory
	// and persists the exported stamp.
	Export(ctx context.Context, doc *models.InvoiceDocument) (*models.InvoiceDocument, error)
	// LoadAll returns every edit record; failures yield an empty map.
	LoadAll(ctx context.Context) map[int64]*models.InvoiceDocument
	Delete(ctx context.Context, id int64) (bool, error)
	// ResetOne drops the edit record of doc and returns doc without edit
	// status and without current amounts.
	ResetOne(ctx context.Context, doc *models.InvoiceDocument) (*models.InvoiceDocument, error)
	// ResetAll drops every edit record and reports success.
	ResetAll(ctx context.Context) bool
	// SetAmount sets the current amount of the register identified by key
	// and saves the result. A nil amount clears it.
	SetAmount(ctx context.Context, doc *models.InvoiceDocument, key models.RegisterKey, amount *float64) (*models.InvoiceDocument, error)
	// Overlay applies saved edits to freshly scanned documents.
	Overlay(ctx context.Context, docs []models.InvoiceDocument) []models.InvoiceDocument
}

// EditOptions configures EditService.
type EditOptions struct {
	ExportsDir string
	// ExportCSV writes a CSV companion next to every JSON export.
	ExportCSV bool
	Now       func() time.Time
	Logger    logging.Logger
}

type editService struct {
	repo       edits.Repository
	exportsDir string
	exportCSV  bool
	now        func() time.Time
	log        logging.Logger
}

func NewEditService(repo edits.Repository, opts EditOptions) EditService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &editService{
		repo:       repo,
		exportsDir: opts.ExportsDir,
		exportCSV:  opts.ExportCSV,
		now:        opts.Now,
		log:        opts.Logger,
	}
}

func (s *editService) stamp() time.Time {
	return s.now().UTC()
}

func (s *editService) Save(ctx context.Context, doc *models.InvoiceDocument) (*models.InvoiceDocument, error) {
	if doc == nil {
		return nil, fmt.Errorf("save: %w", common.ErrInvalidDocument)
	}
	c := doc.Clone()
	if c.EditStatus == nil {
		c.EditStatus = &models.EditStatus{}
	}
	now := s.stamp()
	c.EditStatus.Saved = true
	c.EditStatus.LastSaved = &now

	if err := s.repo.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("save invoice %d: %w", c.ID, err)
	}
	s.log.Info(ctx, "invoice saved", "id", c.ID)
	return c, nil
}

func (s *editService) Export(ctx context.Context, doc *models.InvoiceDocument) (*models.InvoiceDocument, error) {
	saved, err := s.Save(ctx, doc)
	if err != nil {
		return nil, err
	}

	now := s.stamp()
	out := saved.Clone()
	out.EditStatus.Exported = true
	out.EditStatus.LastExported = &now

	path, err := s.writeExport(out, now)
	if err != nil {
		return nil, fmt.Errorf("export invoice %d: %w", out.ID, err)
	}
	out.EditStatus.ExportPath = path

	if s.exportCSV {
		if err := s.writeCSV(out, strings.TrimSuffix(path, ".json")+".csv"); err != nil {
			return nil, fmt.Errorf("export invoice %d: %w", out.ID, err)
		}
	}

	s.log.Info(ctx, "invoice exported", "id", out.ID, "path", path)
	return s.Save(ctx, out)
}

// ExportFileName returns the export file name for id at t.
func ExportFileName(id int64, t time.Time) string {
	return fmt.Sprintf("invoice_%d_%s.json", id, t.UTC().Format("20060102T150405.000000000Z"))
}

// writeExport writes doc to a new file and returns its path. A name clash
// gets a random suffix instead of overwriting.
func (s *editService) writeExport(doc *models.InvoiceDocument, t time.Time) (string, error) {
	name := ExportFileName(doc.ID, t)
	path := filepath.Join(s.exportsDir, name)

	for attempt := 0; attempt < 3; attempt++ {
		doc.EditStatus.ExportPath = path
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", err
		}
		err = filex.WriteFileExclusive(path, data)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
		path = filepath.Join(s.exportsDir, strings.TrimSuffix(name, ".json")+"_"+suffix+".json")
	}
	return "", fmt.Errorf("no free export name for %s: %w", name, fs.ErrExist)
}

type exportRow struct {
	InvoiceID     int64    `csv:"invoice_id"`
	Invoice       string   `csv:"invoice"`
	Company       string   `csv:"company"`
	Name          string   `csv:"name"`
	Brand         string   `csv:"brand"`
	TotalSpace    float64  `csv:"total_space"`
	Image         string   `csv:"image,omitempty"`
	Flag          *int     `csv:"flag,omitempty"`
	CurrentAmount *float64 `csv:"current_amount,omitempty"`
}

func (s *editService) writeCSV(doc *models.InvoiceDocument, path string) error {
	rows := make([]exportRow, 0, len(doc.MainRegisters))
	for _, it := range doc.MainRegisters {
		rows = append(rows, exportRow{
			InvoiceID:     doc.ID,
			Invoice:       doc.FullInvoiceName,
			Company:       doc.ObjCompany,
			Name:          it.Name,
			Brand:         it.Brand,
			TotalSpace:    it.TotalSpace,
			Image:         it.Image,
			Flag:          it.Flag,
			CurrentAmount: it.CurrentAmount,
		})
	}
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return filex.WriteFileAtomic(path, data)
}

func (s *editService) LoadAll(ctx context.Context) map[int64]*models.InvoiceDocument {
	all, err := s.repo.List(ctx)
	if err != nil {
		s.log.Warn(ctx, "cannot load edit records", "err", err)
		return map[int64]*models.InvoiceDocument{}
	}
	return all
}

func (s *editService) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete edit record %d: %w", id, err)
	}
	return ok, nil
}

func (s *editService) ResetOne(ctx context.Context, doc *models.InvoiceDocument) (*models.InvoiceDocument, error) {
	if doc == nil {
		return nil, fmt.Errorf("reset: %w", common.ErrInvalidDocument)
	}
	if _, err := s.Delete(ctx, doc.ID); err != nil {
		return nil, err
	}
	c := doc.Clone()
	c.EditStatus = nil
	for i := range c.MainRegisters {
		c.MainRegisters[i].CurrentAmount = nil
	}
	return c, nil
}

func (s *editService) ResetAll(ctx context.Context) bool {
	if err := s.repo.Clear(ctx); err != nil {
		s.log.Warn(ctx, "cannot reset edit records", "err", err)
		return false
	}
	return true
}

func (s *editService) SetAmount(ctx context.Context, doc *models.InvoiceDocument, key models.RegisterKey, amount *float64) (*models.InvoiceDocument, error) {
	if doc == nil {
		return nil, fmt.Errorf("set amount: %w", common.ErrInvalidDocument)
	}
	c := doc.Clone()
	i := key.Find(c.MainRegisters)
	if i < 0 {
		return nil, fmt.Errorf("register %q/%q #%d: %w", key.Name, key.Brand, key.Occurrence, common.ErrNotFound)
	}
	if amount != nil {
		v := *amount
		c.MainRegisters[i].CurrentAmount = &v
	} else {
		c.MainRegisters[i].CurrentAmount = nil
	}
	return s.Save(ctx, c)
}

func (s *editService) Overlay(ctx context.Context, docs []models.InvoiceDocument) []models.InvoiceDocument {
	saved := s.LoadAll(ctx)
	out := make([]models.InvoiceDocument, len(docs))
	for i := range docs {
		e, ok := saved[docs[i].ID]
		if !ok {
			out[i] = docs[i]
			continue
		}
		d := docs[i].Clone()
		ec := e.Clone()
		if ec.MainRegisters != nil {
			d.MainRegisters = ec.MainRegisters
		}
		d.EditStatus = ec.EditStatus
		out[i] = *d
	}
	return out
}
