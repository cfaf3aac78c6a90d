package brands

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/regkeeper/internal/dbx"
	"github.com/dmitrijs2005/regkeeper/internal/models"
)

const createExpectedTable = `
CREATE TABLE IF NOT EXISTS brands (
  id      INTEGER PRIMARY KEY AUTOINCREMENT,
  name    TEXT NOT NULL,
  image   TEXT,
  origin  TEXT,
  regNum  TEXT,
  regDate TEXT
)`

var sampleOrigins = []string{
	"Germany",
	"France",
	"Italy",
	"Japan",
	"USA",
	"United Kingdom",
	"Spain",
}

var sampleEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// SampleRecord returns the i-th (0-based) synthetic record. The sequence is
// deterministic.
func SampleRecord(i int) models.BrandRecord {
	return models.BrandRecord{
		Name:    fmt.Sprintf("Sample Brand %04d", i+1),
		Origin:  sampleOrigins[i%len(sampleOrigins)],
		RegNum:  fmt.Sprintf("REG-%06d", i+1),
		RegDate: sampleEpoch.AddDate(0, 0, i).Format("2006-01-02"),
	}
}

// synthesize creates the expected table and fills it with n sample rows in
// a single transaction.
func (r *SQLiteRepository) synthesize(ctx context.Context, n int) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, createExpectedTable); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
		for i := 0; i < n; i++ {
			rec := SampleRecord(i)
			_, err := tx.ExecContext(ctx,
				`INSERT INTO brands (name, image, origin, regNum, regDate) VALUES (?, ?, ?, ?, ?)`,
				rec.Name, rec.Image, rec.Origin, rec.RegNum, rec.RegDate)
			if err != nil {
				return fmt.Errorf("insert sample %d: %w", i, err)
			}
		}
		return nil
	})
}
