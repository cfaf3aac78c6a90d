package brands

import (
	"context"

	"github.com/dmitrijs2005/regkeeper/internal/models"
)

// Repository serves paginated, searchable reads of brand records.
// Pages are 1-based and ordered by name ascending. Reads never fail; a
// store-level failure yields an empty page with zero totals.
type Repository interface {
	// ListPage returns one page of all records.
	ListPage(ctx context.Context, page, pageSize int) models.BrandPage

	// Search returns one page of records whose name contains term,
	// ignoring case.
	Search(ctx context.Context, term string, page, pageSize int) models.BrandPage

	// Count returns the total number of records. The value is cached
	// until the repository is initialized again.
	Count(ctx context.Context) int

	// Close releases the underlying connection.
	Close() error
}
