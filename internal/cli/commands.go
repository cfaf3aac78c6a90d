package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/regkeeper/internal/models"
)

// BrandsPage prints one page of brands, searching when term is not blank.
func (a *App) BrandsPage(ctx context.Context, term string, page, size int) error {
	svc, err := a.brands(ctx)
	if err != nil {
		return err
	}
	renderBrandPage(a.out, a.width(), svc.Page(ctx, term, page, size))
	return nil
}

// Browse starts a new load-more listing and prints its first page.
func (a *App) Browse(ctx context.Context, term string) error {
	svc, err := a.brands(ctx)
	if err != nil {
		return err
	}
	a.pager = svc.NewPager(term, 0)
	return a.More(ctx)
}

// More prints the next page of the current listing.
func (a *App) More(ctx context.Context) error {
	if a.pager == nil {
		a.warn("Nothing to continue, run brands first.")
		return nil
	}
	if a.pager.Done() {
		a.warn("No more brands.")
		return nil
	}
	recs, err := a.pager.LoadMore(ctx)
	if err != nil {
		return err
	}
	if len(recs) > 0 {
		renderBrands(a.out, a.width(), recs)
	}
	fmt.Fprintln(a.out, mutedStyle.Render(fmt.Sprintf("%d of %d brands loaded", len(a.pager.Records()), a.pager.TotalCount())))
	return nil
}

// Scan prints the merged invoice list.
func (a *App) Scan(ctx context.Context, filter models.ScanFilter) error {
	docs, err := a.invoiceService.Scan(ctx, filter)
	if err != nil {
		return err
	}
	renderInvoices(a.out, a.width(), docs)
	return nil
}

// Show prints one invoice with its registers.
func (a *App) Show(ctx context.Context, id int64) error {
	doc, err := a.invoiceService.Get(ctx, id)
	if err != nil {
		return err
	}
	renderInvoice(a.out, a.width(), doc)
	return nil
}

// Count prints how many invoices and register items the scan yields.
func (a *App) Count(ctx context.Context) error {
	docs, err := a.invoiceService.Scan(ctx, models.ScanFilter{})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %d\n%s %d\n",
		labelStyle.Render("Invoices:"), len(docs),
		labelStyle.Render("Register items:"), a.invoiceService.CountRegisterItems(docs))
	return nil
}

// Edits lists the saved edit records.
func (a *App) Edits(ctx context.Context) error {
	all := a.editService.LoadAll(ctx)
	if len(all) == 0 {
		a.warn("No saved edits.")
		return nil
	}
	docs := make([]models.InvoiceDocument, 0, len(all))
	for _, d := range all {
		docs = append(docs, *d)
	}
	renderInvoices(a.out, a.width(), sortByID(docs))
	return nil
}

// SetAmount sets the current amount of the item at 1-based position index
// of invoice id. A nil amount clears it.
func (a *App) SetAmount(ctx context.Context, id int64, index int, amount *float64) error {
	doc, err := a.invoiceService.Get(ctx, id)
	if err != nil {
		return err
	}
	if index < 1 || index > len(doc.MainRegisters) {
		return fmt.Errorf("item %d out of range 1..%d", index, len(doc.MainRegisters))
	}
	saved, err := a.editService.SetAmount(ctx, doc, models.KeyOf(doc.MainRegisters, index-1), amount)
	if err != nil {
		return err
	}
	it := saved.MainRegisters[index-1]
	a.success("Invoice %d item %d (%s) amount set to %q.", id, index, it.Name, formatAmount(it.CurrentAmount))
	return nil
}

// Save persists the current state of invoice id.
func (a *App) Save(ctx context.Context, id int64) error {
	doc, err := a.invoiceService.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := a.editService.Save(ctx, doc); err != nil {
		return err
	}
	a.success("Invoice %d saved.", id)
	return nil
}

// Export saves invoice id and writes a timestamped export copy.
func (a *App) Export(ctx context.Context, id int64) error {
	doc, err := a.invoiceService.Get(ctx, id)
	if err != nil {
		return err
	}
	out, err := a.editService.Export(ctx, doc)
	if err != nil {
		return err
	}
	a.success("Invoice %d exported to %s", id, out.EditStatus.ExportPath)
	return nil
}

// Delete drops the edit record of invoice id.
func (a *App) Delete(ctx context.Context, id int64) error {
	ok, err := a.editService.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		a.warn("Invoice %d has no saved edits.", id)
		return nil
	}
	a.success("Edits of invoice %d deleted.", id)
	return nil
}

// Reset reverts invoice id to its scanned state.
func (a *App) Reset(ctx context.Context, id int64) error {
	doc, err := a.invoiceService.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := a.editService.ResetOne(ctx, doc); err != nil {
		return err
	}
	a.success("Invoice %d reset.", id)
	return nil
}

// ResetAll drops every edit record, asking first unless confirmed is set.
func (a *App) ResetAll(ctx context.Context, confirmed bool) error {
	if !confirmed && !Confirm(a.reader, "Delete all saved edits?", a.out) {
		a.warn("Cancelled.")
		return nil
	}
	if !a.editService.ResetAll(ctx) {
		return fmt.Errorf("reset failed, see log for details")
	}
	a.success("All edits deleted.")
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid invoice id %q", s)
	}
	return id, nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid item number %q", s)
	}
	return i, nil
}

// parseAmount reads a number; "-" and "clear" mean no amount.
func parseAmount(s string) (*float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "-", "clear", "none":
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return &v, nil
}

func sortByID(docs []models.InvoiceDocument) []models.InvoiceDocument {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}
