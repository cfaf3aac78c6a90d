package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/regkeeper/internal/config"
	"github.com/dmitrijs2005/regkeeper/internal/logging"
	"github.com/dmitrijs2005/regkeeper/internal/repositories/brands"
	"github.com/dmitrijs2005/regkeeper/internal/repositories/edits"
	"github.com/dmitrijs2005/regkeeper/internal/repositories/invoices"
	"github.com/dmitrijs2005/regkeeper/internal/services"
)

// App owns the stores and services of one CLI run.
type App struct {
	config *config.Config
	log    logging.Logger
	out    io.Writer
	reader *bufio.Reader

	brandRepo    brands.Repository
	brandService services.BrandService
	pager        *services.Pager

	editRepo       edits.Repository
	editService    services.EditService
	invoiceService services.InvoiceService
}

// NewApp builds an App around a resolved and validated config. Nothing is
// opened until Open.
func NewApp(c *config.Config, in io.Reader, out, logOut io.Writer) *App {
	return &App{
		config: c,
		log:    logging.New(logOut, c.LogBackend, c.LogFormat, c.LogLevel),
		out:    out,
		reader: bufio.NewReader(in),
	}
}

// Open prepares the edit store and the invoice scanner. The brand store is
// opened on first use.
func (a *App) Open(ctx context.Context) error {
	repo, err := a.openEditRepo(ctx)
	if err != nil {
		return err
	}
	a.editRepo = repo
	a.editService = services.NewEditService(repo, services.EditOptions{
		ExportsDir: a.config.ExportsDir,
		ExportCSV:  a.config.ExportCSV,
		Logger:     a.log.With("component", "edits"),
	})
	a.invoiceService = services.NewInvoiceService(
		invoices.NewDirRepository(a.config.InvoicesDir, a.log.With("component", "invoices")),
		a.editService,
		a.log.With("component", "scanner"),
	)
	return nil
}

func (a *App) openEditRepo(ctx context.Context) (edits.Repository, error) {
	log := a.log.With("component", "edit-store")
	if a.config.EditStore == config.EditStoreSQLite {
		r, err := edits.OpenSQLite(ctx, a.config.EditsDB, log)
		if err != nil {
			return nil, fmt.Errorf("open edit store: %w", err)
		}
		return r, nil
	}
	return edits.NewFSRepository(a.config.EditsDir, log), nil
}

// brands returns the brand service, opening the store if needed.
func (a *App) brands(ctx context.Context) (services.BrandService, error) {
	if a.brandService != nil {
		return a.brandService, nil
	}
	repo, err := brands.Open(ctx, a.config.BrandsDB, brands.Options{
		SampleSize: a.config.SampleSize,
		Logger:     a.log.With("component", "brands"),
	})
	if err != nil {
		return nil, err
	}
	if repo.Fresh() {
		a.log.Info(ctx, "brand store created", "path", a.config.BrandsDB)
	}
	a.brandRepo = repo
	a.brandService = services.NewBrandService(repo, a.config.PageSize, a.log)
	return a.brandService, nil
}

// Close releases every store the App opened.
func (a *App) Close() error {
	var errs []error
	if a.brandRepo != nil {
		errs = append(errs, a.brandRepo.Close())
		a.brandRepo, a.brandService, a.pager = nil, nil, nil
	}
	if a.editRepo != nil {
		errs = append(errs, a.editRepo.Close())
		a.editRepo = nil
	}
	return errors.Join(errs...)
}

func (a *App) width() int { return terminalWidth(a.out) }

func (a *App) success(format string, args ...any) {
	fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf(format, args...)))
}

func (a *App) warn(format string, args ...any) {
	fmt.Fprintln(a.out, warningStyle.Render(fmt.Sprintf(format, args...)))
}
