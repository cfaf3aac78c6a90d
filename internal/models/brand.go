package models

// BrandRecord is a single row of the read-only brand table.
type BrandRecord struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Image   string `json:"image"`
	Origin  string `json:"origin"`
	RegNum  string `json:"regNum"`
	RegDate string `json:"regDate"`
}

// BrandPage is one page of brand records together with totals for the
// whole (optionally filtered) result set.
type BrandPage struct {
	Records     []BrandRecord `json:"records"`
	TotalCount  int           `json:"totalCount"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}

// TotalPages returns ceil(total/size), or 0 when size is not positive.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
