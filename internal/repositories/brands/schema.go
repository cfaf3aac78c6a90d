package brands

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/regkeeper/internal/dbx"
)

// ExpectedTable is the name the application looks for first.
const ExpectedTable = "brands"

// alternativeTables are probed, in order, when ExpectedTable is missing.
var alternativeTables = []string{
	"brand",
	"brand_records",
	"brandrecords",
	"trademarks",
	"trademark",
	"records",
	"items",
	"data",
}

// brandColumns are the data columns an alternative table must expose at
// least one of.
var brandColumns = []string{"name", "image", "origin", "regNum", "regDate"}

// ResolutionKind tags how the data table was found.
type ResolutionKind int

const (
	ResolvedNone ResolutionKind = iota
	ResolvedExpected
	ResolvedAlternate
	ResolvedFirstAvailable
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolvedExpected:
		return "expected"
	case ResolvedAlternate:
		return "alternate"
	case ResolvedFirstAvailable:
		return "first-available"
	default:
		return "none"
	}
}

// Resolution is the outcome of table discovery. Columns maps the lower-case
// column name to the name as declared in the table.
type Resolution struct {
	Kind    ResolutionKind
	Table   string
	Columns map[string]string
}

// NeedsSample reports whether no usable table was found.
func (r Resolution) NeedsSample() bool { return r.Kind == ResolvedNone }

func (r Resolution) has(col string) bool {
	_, ok := r.Columns[strings.ToLower(col)]
	return ok
}

func (r Resolution) column(col string, quote bool) string {
	name := r.Columns[strings.ToLower(col)]
	if quote {
		return dbx.QuoteIdent(name)
	}
	return name
}

// table returns the table identifier, quoted or bare.
func (r Resolution) table(quote bool) string {
	if quote {
		return dbx.QuoteIdent(r.Table)
	}
	return r.Table
}

// idExpr, textExpr and nameExpr project the table onto the brand shape,
// substituting rowid or '' for missing columns.
func (r Resolution) idExpr(quote bool) string {
	if r.has("id") {
		return "COALESCE(CAST(" + r.column("id", quote) + " AS INTEGER), rowid)"
	}
	return "rowid"
}

func (r Resolution) textExpr(col string, quote bool) string {
	if r.has(col) {
		return "COALESCE(CAST(" + r.column(col, quote) + " AS TEXT), '')"
	}
	return "''"
}

func (r Resolution) projection(quote bool) string {
	parts := []string{r.idExpr(quote)}
	for _, c := range brandColumns {
		parts = append(parts, r.textExpr(c, quote))
	}
	return strings.Join(parts, ", ")
}

// discover enumerates user tables and resolves the data table.
func discover(ctx context.Context, db dbx.DBTX) (Resolution, error) {
	tables, err := listTables(ctx, db)
	if err != nil {
		return Resolution{}, err
	}
	if len(tables) == 0 {
		return Resolution{Kind: ResolvedNone}, nil
	}

	byLower := make(map[string]string, len(tables))
	for _, t := range tables {
		byLower[strings.ToLower(t)] = t
	}

	if name, ok := byLower[ExpectedTable]; ok {
		cols, err := tableColumns(ctx, db, name)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Kind: ResolvedExpected, Table: name, Columns: cols}, nil
	}

	for _, alt := range alternativeTables {
		name, ok := byLower[alt]
		if !ok {
			continue
		}
		cols, err := tableColumns(ctx, db, name)
		if err != nil {
			continue
		}
		res := Resolution{Kind: ResolvedAlternate, Table: name, Columns: cols}
		for _, c := range brandColumns {
			if res.has(c) {
				return res, nil
			}
		}
	}

	first := tables[0]
	cols, err := tableColumns(ctx, db, first)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Kind: ResolvedFirstAvailable, Table: first, Columns: cols}, nil
}

func listTables(ctx context.Context, db dbx.DBTX) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\' ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

func tableColumns(ctx context.Context, db dbx.DBTX, table string) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]string)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column of %s: %w", table, err)
		}
		cols[strings.ToLower(name)] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns of %s: %w", table, err)
	}
	return cols, nil
}
