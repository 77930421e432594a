// Package pdf renders expense receipts and monthly reports.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"pennypal/internal/core"
)

// Receipt holds what is printed on an expense receipt.
type Receipt struct {
	Expense      core.Expense
	CategoryName string
	UserName     string
	Currency     string
	GeneratedAt  time.Time
}

// MonthlyReport holds what is printed on a monthly report.
type MonthlyReport struct {
	Report        core.MonthlyReport
	CategoryNames map[int64]string
	UserName      string
	Currency      string
	GeneratedAt   time.Time
}

const maxReportRows = 500

func newDocument(title string) (*gofpdf.Fpdf, func(string) string) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetCreator("PennyPal", true)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()
	return doc, doc.UnicodeTranslatorFromDescriptor("")
}

func output(doc *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func header(doc *gofpdf.Fpdf, tr func(string) string, title string, generated time.Time) {
	doc.SetFont("Helvetica", "B", 18)
	doc.Cell(0, 10, tr(title))
	doc.Ln(10)
	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(110, 110, 110)
	doc.Cell(0, 5, "Generated "+generated.UTC().Format("2006-01-02 15:04 MST"))
	doc.SetTextColor(0, 0, 0)
	doc.Ln(10)
}

func row(doc *gofpdf.Fpdf, tr func(string) string, label, value string) {
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(50, 8, tr(label), "1", 0, "L", true, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 8, tr(value), "1", 1, "L", false, 0, "")
}

// RenderReceipt renders a single-expense receipt.
func RenderReceipt(r Receipt) ([]byte, error) {
	e := r.Expense
	doc, tr := newDocument(fmt.Sprintf("Expense receipt #%d", e.ID))
	header(doc, tr, "PennyPal expense receipt", r.GeneratedAt)

	doc.SetFillColor(235, 240, 250)
	row(doc, tr, "Receipt", fmt.Sprintf("#%d", e.ID))
	row(doc, tr, "Account", r.UserName)
	row(doc, tr, "Amount", e.Amount.String()+" "+r.Currency)
	row(doc, tr, "Category", r.CategoryName)
	row(doc, tr, "Description", e.Description)
	row(doc, tr, "Type", string(e.Type))
	if e.IsRecurring() {
		row(doc, tr, "Frequency", string(e.Frequency))
		row(doc, tr, "Starts", e.StartDate.String())
		end := e.EndDate.String()
		if end == "" {
			end = "open ended"
		}
		row(doc, tr, "Ends", end)
	} else {
		row(doc, tr, "Date", e.ExpenseDate.String())
	}

	return output(doc)
}

// RenderMonthlyReport renders the category breakdown and item list.
func RenderMonthlyReport(m MonthlyReport) ([]byte, error) {
	rep := m.Report
	doc, tr := newDocument("Monthly expense report " + rep.MonthStart.Format(core.MonthLayout))
	header(doc, tr, "Monthly expense report", m.GeneratedAt)

	doc.SetFont("Helvetica", "", 11)
	doc.Cell(0, 6, tr(fmt.Sprintf("Period: %s to %s", rep.MonthStart, rep.MonthEnd)))
	doc.Ln(6)
	if m.UserName != "" {
		doc.Cell(0, 6, tr("Account: "+m.UserName))
		doc.Ln(6)
	}
	doc.SetFont("Helvetica", "B", 14)
	doc.Cell(0, 10, tr(fmt.Sprintf("Total: %s %s", rep.Total, m.Currency)))
	doc.Ln(12)

	doc.SetFont("Helvetica", "B", 13)
	doc.Cell(0, 8, "By category")
	doc.Ln(9)

	doc.SetFillColor(235, 240, 250)
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(90, 8, "Category", "1", 0, "L", true, 0, "")
	doc.CellFormat(30, 8, "Items", "1", 0, "C", true, 0, "")
	doc.CellFormat(50, 8, "Total", "1", 1, "R", true, 0, "")
	doc.SetFont("Helvetica", "", 10)
	for _, c := range rep.ByCategory {
		doc.CellFormat(90, 8, tr(categoryLabel(c.CategoryID, c.CategoryName, m.CategoryNames)), "1", 0, "L", false, 0, "")
		doc.CellFormat(30, 8, fmt.Sprintf("%d", c.Count), "1", 0, "C", false, 0, "")
		doc.CellFormat(50, 8, c.Total.String(), "1", 1, "R", false, 0, "")
	}
	doc.Ln(6)

	itemColumns := func() {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(28, 8, "Date", "1", 0, "C", true, 0, "")
		doc.CellFormat(82, 8, "Description", "1", 0, "L", true, 0, "")
		doc.CellFormat(30, 8, "Type", "1", 0, "C", true, 0, "")
		doc.CellFormat(30, 8, "Amount", "1", 1, "R", true, 0, "")
		doc.SetFont("Helvetica", "", 9)
	}

	doc.SetFont("Helvetica", "B", 13)
	doc.Cell(0, 8, "Items")
	doc.Ln(9)
	itemColumns()
	_, pageHeight := doc.GetPageSize()
	for i, it := range rep.Items {
		if i == maxReportRows {
			doc.SetFont("Helvetica", "I", 9)
			doc.CellFormat(0, 8, fmt.Sprintf("%d more items not shown", len(rep.Items)-maxReportRows), "1", 1, "C", false, 0, "")
			break
		}
		if doc.GetY() > pageHeight-25 {
			doc.AddPage()
			itemColumns()
		}
		kind := "one-time"
		if it.Virtual {
			kind = "recurring"
		}
		desc := it.Description
		if desc == "" {
			desc = categoryLabel(it.CategoryID, "", m.CategoryNames)
		}
		doc.CellFormat(28, 8, it.Date.String(), "1", 0, "C", false, 0, "")
		doc.CellFormat(82, 8, tr(truncate(desc, 48)), "1", 0, "L", false, 0, "")
		doc.CellFormat(30, 8, kind, "1", 0, "C", false, 0, "")
		doc.CellFormat(30, 8, it.Amount.String(), "1", 1, "R", false, 0, "")
	}

	return output(doc)
}

func categoryLabel(id int64, name string, names map[int64]string) string {
	if name != "" {
		return name
	}
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("Category %d", id)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
