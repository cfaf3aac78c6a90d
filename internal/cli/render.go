package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dmitrijs2005/regkeeper/internal/models"
)

func newTable(width int, headers ...string) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if width > 0 {
		t = t.Width(width)
	}
	return t
}

func renderBrands(w io.Writer, width int, recs []models.BrandRecord) {
	t := newTable(width, "ID", "NAME", "ORIGIN", "REG NUM", "REG DATE")
	for _, r := range recs {
		t.Row(strconv.FormatInt(r.ID, 10), r.Name, r.Origin, r.RegNum, r.RegDate)
	}
	fmt.Fprintln(w, t.String())
}

func renderBrandPage(w io.Writer, width int, p models.BrandPage) {
	if len(p.Records) > 0 {
		renderBrands(w, width, p.Records)
	} else {
		fmt.Fprintln(w, warningStyle.Render("No brands on this page."))
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("page %d of %d, %d brands", p.CurrentPage, p.TotalPages, p.TotalCount)))
}

func status(s *models.EditStatus) string {
	switch {
	case s == nil:
		return ""
	case s.Exported:
		return "exported"
	case s.Saved:
		return "saved"
	}
	return ""
}

func renderInvoices(w io.Writer, width int, docs []models.InvoiceDocument) {
	if len(docs) == 0 {
		fmt.Fprintln(w, warningStyle.Render("No invoices found."))
		return
	}
	t := newTable(width, "ID", "INVOICE", "COMPANY", "DATE", "ITEMS", "STATUS")
	for _, d := range docs {
		t.Row(
			strconv.FormatInt(d.ID, 10),
			d.FullInvoiceName,
			d.ObjCompany,
			d.EffectiveTimestamp(),
			strconv.Itoa(len(d.MainRegisters)),
			status(d.EditStatus),
		)
	}
	fmt.Fprintln(w, t.String())
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func renderInvoice(w io.Writer, width int, d *models.InvoiceDocument) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("#%d %s", d.ID, d.FullInvoiceName)))
	fmt.Fprintln(w, labelStyle.Render("Company:"), d.ObjCompany)
	fmt.Fprintln(w, labelStyle.Render("Censored:"), d.CensoredDt)
	if d.UpdatedDt != "" {
		fmt.Fprintln(w, labelStyle.Render("Updated:"), d.UpdatedDt)
	}
	if s := d.EditStatus; s != nil {
		fmt.Fprintln(w, labelStyle.Render("Saved:"), formatTime(s.LastSaved))
		if s.Exported {
			fmt.Fprintln(w, labelStyle.Render("Exported:"), formatTime(s.LastExported), s.ExportPath)
		}
	}

	t := newTable(width, "#", "NAME", "BRAND", "TOTAL", "AMOUNT", "FLAG")
	for i, it := range d.MainRegisters {
		flag := ""
		if it.Flag != nil {
			flag = strconv.Itoa(*it.Flag)
		}
		t.Row(
			strconv.Itoa(i+1),
			it.Name,
			it.Brand,
			strconv.FormatFloat(it.TotalSpace, 'f', -1, 64),
			formatAmount(it.CurrentAmount),
			flag,
		)
	}
	fmt.Fprintln(w, t.String())
}
