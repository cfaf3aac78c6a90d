package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/regkeeper/internal/common"
	"github.com/dmitrijs2005/regkeeper/internal/logging"
	"github.com/dmitrijs2005/regkeeper/internal/merge"
	"github.com/dmitrijs2005/regkeeper/internal/models"
	"github.com/dmitrijs2005/regkeeper/internal/repositories/invoices"
)

type InvoiceService interface {
	// Scan reads every invoice file, merges documents by id and overlays
	// the saved edits.
	Scan(ctx context.Context, filter models.ScanFilter) ([]models.InvoiceDocument, error)
	// Get scans for a single id and fails with common.ErrNotFound when it
	// is absent.
	Get(ctx context.Context, id int64) (*models.InvoiceDocument, error)
	CountRegisterItems(docs []models.InvoiceDocument) int
}

type invoiceService struct {
	source invoices.Repository
	edits  EditService
	log    logging.Logger
}

// NewInvoiceService builds the scanner. edits may be nil, in which case no
// overlay is applied.
func NewInvoiceService(source invoices.Repository, edits EditService, log logging.Logger) InvoiceService {
	if log == nil {
		log = logging.Nop()
	}
	return &invoiceService{source: source, edits: edits, log: log}
}

func (s *invoiceService) Scan(ctx context.Context, filter models.ScanFilter) ([]models.InvoiceDocument, error) {
	files, err := s.source.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan invoices: %w", err)
	}

	m := merge.NewMerger(filter)
	for _, f := range files {
		for _, d := range f.Documents {
			if m.Add(d) {
				s.log.Debug(ctx, "invoice version kept", "id", d.ID, "file", f.Name)
			}
		}
	}
	docs := m.Result()
	s.log.Info(ctx, "invoices scanned", "files", len(files), "documents", len(docs))

	if s.edits == nil {
		return docs, nil
	}
	return s.edits.Overlay(ctx, docs), nil
}

func (s *invoiceService) Get(ctx context.Context, id int64) (*models.InvoiceDocument, error) {
	docs, err := s.Scan(ctx, models.ScanFilter{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("invoice %d: %w", id, common.ErrNotFound)
	}
	return &docs[0], nil
}

func (s *invoiceService) CountRegisterItems(docs []models.InvoiceDocument) int {
	return merge.CountRegisterItems(docs)
}
