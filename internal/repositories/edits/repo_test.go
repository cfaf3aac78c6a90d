package edits

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/regkeeper/internal/common"
	"github.com/dmitrijs2005/regkeeper/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(v float64) *float64 { return &v }

func sampleDoc(id int64) *models.InvoiceDocument {
	saved := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.InvoiceDocument{
		ID:              id,
		FullInvoiceName: "Invoice",
		ObjCompany:      "ACME",
		CensoredDt:      "2024-01-01",
		MainRegisters: models.Registers{
			{Name: "Cola", Brand: "X", TotalSpace: 10, CurrentAmount: amount(3.5)},
			{Name: "Cola", Brand: "X", TotalSpace: 10},
		},
		EditStatus: &models.EditStatus{Saved: true, LastSaved: &saved},
	}
}

type backend struct {
	name string
	open func(t *testing.T) Repository
}

func backends() []backend {
	return []backend{
		{"fs", func(t *testing.T) Repository {
			return NewFSRepository(filepath.Join(t.TempDir(), "edited"), nil)
		}},
		{"sqlite", func(t *testing.T) Repository {
			r, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "db", "edits.db"), nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = r.Close() })
			return r
		}},
	}
}

func TestRepository_PutGetRoundTrip(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			r := b.open(t)
			ctx := context.Background()

			want := sampleDoc(7)
			require.NoError(t, r.Put(ctx, want))

			got, err := r.Get(ctx, 7)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepository_GetMissingIsNotFound(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			_, err := b.open(t).Get(context.Background(), 404)
			require.ErrorIs(t, err, common.ErrNotFound)
		})
	}
}

func TestRepository_PutOverwrites(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			r := b.open(t)
			ctx := context.Background()

			doc := sampleDoc(1)
			require.NoError(t, r.Put(ctx, doc))
			doc.MainRegisters[1].CurrentAmount = amount(9)
			require.NoError(t, r.Put(ctx, doc))

			got, err := r.Get(ctx, 1)
			require.NoError(t, err)
			require.NotNil(t, got.MainRegisters[1].CurrentAmount)
			assert.Equal(t, 9.0, *got.MainRegisters[1].CurrentAmount)

			all, err := r.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestRepository_DeleteReportsExistence(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			r := b.open(t)
			ctx := context.Background()

			require.NoError(t, r.Put(ctx, sampleDoc(3)))

			ok, err := r.Delete(ctx, 3)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = r.Delete(ctx, 3)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRepository_ListAndClear(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			r := b.open(t)
			ctx := context.Background()

			all, err := r.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
			require.NoError(t, r.Clear(ctx), "clearing an empty store is a no-op")

			for _, id := range []int64{1, 2, 3} {
				require.NoError(t, r.Put(ctx, sampleDoc(id)))
			}
			all, err = r.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 3)
			assert.Equal(t, int64(2), all[2].ID)

			require.NoError(t, r.Clear(ctx))
			all, err = r.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestFSRepository_ListSkipsCorruptAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	r := NewFSRepository(dir, nil)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, sampleDoc(1)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2.json"), []byte("{broken"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o700))

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Contains(t, all, int64(1))

	_, err = r.Get(ctx, 2)
	require.ErrorIs(t, err, common.ErrInvalidDocument)

	require.NoError(t, r.Clear(ctx))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the sub directory is left")
	assert.True(t, entries[0].IsDir())
}

func TestFSRepository_WritesOneFilePerID(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lazy")
	r := NewFSRepository(dir, nil)

	require.NoError(t, r.Put(context.Background(), sampleDoc(42)))

	_, err := os.Stat(filepath.Join(dir, "42.json"))
	require.NoError(t, err)
}
