// Package services sits between the CLI and the repositories.
//
// BrandService turns an optional search term into a list or search query and
// hands out load-more Pagers. InvoiceService scans the invoice directory,
// merges the documents by id and overlays the user's edit records.
// EditService saves, exports and resets edit records.
package services
