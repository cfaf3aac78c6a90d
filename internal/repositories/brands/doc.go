// Package brands provides read access to the pre-populated brand table of
// the embedded SQLite store.
//
// # Overview
//
// The store file is expected to ship with the application, but the table
// inside it may not carry the expected name. On open the repository runs a
// one-time discovery (see Resolution) and caches the result:
//
//   - the expected table "brands" if present,
//   - else the first known alternative name exposing a brand column,
//   - else the first table in the store,
//   - else nothing, in which case a sample table is synthesized when the
//     store is writable.
//
// # Failure semantics
//
// Opening walks a ladder of strategies (read-write, read-only, immutable)
// and fails only when all of them fail. Once open, no read returns an error:
// every query walks its own ladder (unquoted table name, quoted table name,
// unbounded select paginated in memory) and degrades to an empty page when
// all rungs fail. Failures are logged.
//
// Typical Usage
//
//	repo, err := brands.Open(ctx, path, brands.Options{Logger: log})
//	defer repo.Close()
//	page := repo.ListPage(ctx, 1, 20)
//	hits := repo.Search(ctx, "cola", 1, 20)
package brands
