package invoices

import (
	"context"

	"github.com/dmitrijs2005/regkeeper/internal/models"
)

// File is one successfully parsed source file.
type File struct {
	Name      string
	Documents []models.InvoiceDocument
}

// Repository enumerates and parses invoice source files.
type Repository interface {
	// ReadAll returns the parsed files in enumeration order.
	ReadAll(ctx context.Context) ([]File, error)
}
