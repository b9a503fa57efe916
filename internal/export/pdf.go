package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"

	"github.com/sadopc/mycket/internal/report"
	"github.com/sadopc/mycket/internal/store"
)

// Column widths on maroto's 12-unit grid, in tableHeader order.
var pdfGrid = []uint{2, 4, 1, 1, 2, 2}

func newDocument() pdf.Maroto {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)
	return m
}

func textRow(m pdf.Maroto, height float64, text string, prop props.Text) {
	m.Row(height, func() {
		m.Col(12, func() {
			m.Text(text, prop)
		})
	})
}

func pdfTable(m pdf.Maroto, r *report.Report) {
	var rows [][]string
	for l := range r.All() {
		rows = append(rows, tableRow(l))
	}
	m.TableList(tableHeader, rows, props.TableList{
		HeaderProp: props.TableListContent{
			Size:      9,
			GridSizes: pdfGrid,
		},
		ContentProp: props.TableListContent{
			Size:      9,
			GridSizes: pdfGrid,
		},
		Align:                consts.Center,
		AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
		HeaderContentSpace:   1,
		Line:                 false,
	})
}

func totalsRows(m pdf.Maroto, hoursLabel, amountLabel string, hours float64, amount string) {
	bold := props.Text{Top: 2, Style: consts.Bold, Align: consts.Right, Size: 11}
	textRow(m, 8, fmt.Sprintf("%s %s", hoursLabel, formatHours(hours)), bold)
	textRow(m, 8, fmt.Sprintf("%s %s", amountLabel, amount), bold)
}

func writePDF(out io.Writer, m pdf.Maroto) error {
	buf, err := m.Output()
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	_, err = out.Write(buf.Bytes())
	return err
}

// ReportPDF renders the report table and totals as an A4 document.
func ReportPDF(out io.Writer, r *report.Report) error {
	if r.Empty() {
		return ErrNothingToExport
	}
	m := newDocument()
	textRow(m, 10, "Report", props.Text{Top: 3, Style: consts.Bold, Align: consts.Center, Size: 16})
	if !r.Filter.From.IsZero() {
		period := r.Filter.From.Local().Format(dateLayout) + " - " + r.Filter.To.Local().Format(dateLayout)
		textRow(m, 10, period, props.Text{Top: 3, Align: consts.Center, Size: 12})
	}
	m.Row(5, func() {})
	pdfTable(m, r)
	m.Row(5, func() {})
	totalsRows(m, "Totale Ore:", "Importo Totale:", r.TotalHours, r.TotalAmount.StringFixed(2)+"€")
	return writePDF(out, m)
}

// InvoicePDF renders the invoice header block, the report table and the
// invoice totals. issued is the date printed on the invoice.
func InvoicePDF(out io.Writer, inv *store.Invoice, r *report.Report, issued time.Time) error {
	if r.Empty() {
		return ErrNothingToExport
	}
	m := newDocument()
	textRow(m, 12, "FATTURA", props.Text{Top: 3, Style: consts.Bold, Align: consts.Left, Size: 18})

	label := props.Text{Top: 1, Align: consts.Left, Size: 10}
	textRow(m, 6, "Numero Fattura: "+inv.Number, label)
	textRow(m, 6, "Data: "+issued.Local().Format(dateLayout), label)
	textRow(m, 6, "Periodo: "+inv.PeriodStart.Local().Format(dateLayout)+" - "+inv.PeriodEnd.Local().Format(dateLayout), label)
	if inv.ClientName != "" {
		textRow(m, 6, "Cliente: "+inv.ClientName, label)
	}
	if notes := strings.TrimSpace(inv.Notes); notes != "" {
		textRow(m, 6, "Note: "+notes, label)
	}

	m.Row(8, func() {})
	pdfTable(m, r)
	m.Row(5, func() {})
	totalsRows(m, "TOTALE ORE:", "TOTALE €:", r.TotalHours, inv.TotalAmount.StringFixed(2))
	return writePDF(out, m)
}

// WriteReportPDF exports r to path.
func WriteReportPDF(path string, r *report.Report) error {
	if r.Empty() {
		return ErrNothingToExport
	}
	return writeFile(path, func(w io.Writer) error { return ReportPDF(w, r) })
}

// WriteInvoicePDF exports inv to path.
func WriteInvoicePDF(path string, inv *store.Invoice, r *report.Report, issued time.Time) error {
	if r.Empty() {
		return ErrNothingToExport
	}
	return writeFile(path, func(w io.Writer) error { return InvoicePDF(w, inv, r, issued) })
}
