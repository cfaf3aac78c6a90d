// Package edits stores the user's edit records: one full InvoiceDocument
// carrying an EditStatus per invoice id.
//
// Two backends implement Repository. FSRepository keeps one "<id>.json" file
// per record in a directory and is the default. SQLiteRepository keeps the
// same JSON in an edit_records table created by the embedded goose
// migrations. Callers only depend on Repository, so the backend is chosen at
// the composition root.
//
// Unreadable or corrupt records are skipped by List and reported through the
// logger; Get, Put and Delete propagate their errors.
package edits
