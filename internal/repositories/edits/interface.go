package edits

import (
	"context"

	"github.com/dmitrijs2005/regkeeper/internal/models"
)

// Repository is a key-value store of edit records keyed by invoice id.
type Repository interface {
	// Get returns the record for id or an error matching common.ErrNotFound.
	Get(ctx context.Context, id int64) (*models.InvoiceDocument, error)
	// Put stores doc under doc.ID, replacing any previous record.
	Put(ctx context.Context, doc *models.InvoiceDocument) error
	// Delete removes the record for id and reports whether one existed.
	Delete(ctx context.Context, id int64) (bool, error)
	// List returns every readable record.
	List(ctx context.Context) (map[int64]*models.InvoiceDocument, error)
	// Clear removes every record. An empty store is not an error.
	Clear(ctx context.Context) error
	Close() error
}
