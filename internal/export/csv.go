package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/mycket/internal/report"
	"github.com/sadopc/mycket/internal/store"
)

// ErrNothingToExport is returned before any file is created when the report
// has no lines.
var ErrNothingToExport = errors.New("nothing to export")

const (
	dateLayout  = "02/01/2006"
	clockLayout = "15:04"
)

var tableHeader = []string{"Data", "Servizio", "Inizio", "Fine", "Ore", "Importo (€)"}

// DefaultReportName is the suggested file name for a report exported at now.
func DefaultReportName(now time.Time) string {
	return "report_" + now.Format("20060102_150405") + ".csv"
}

// DefaultInvoiceName is the suggested file name for an invoice export.
func DefaultInvoiceName(number string) string {
	return "fattura_" + number + ".csv"
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}

func tableRow(l report.Line) []string {
	return []string{
		l.Start.Local().Format(dateLayout),
		l.ServiceName,
		l.Start.Local().Format(clockLayout),
		l.End.Local().Format(clockLayout),
		formatHours(l.Hours),
		l.Amount.StringFixed(2),
	}
}

func writeTable(w *csv.Writer, r *report.Report) error {
	if err := w.Write(tableHeader); err != nil {
		return err
	}
	for l := range r.All() {
		if err := w.Write(tableRow(l)); err != nil {
			return err
		}
	}
	return nil
}

// ReportCSV writes the report table followed by its totals.
func ReportCSV(out io.Writer, r *report.Report) error {
	if r.Empty() {
		return ErrNothingToExport
	}
	w := csv.NewWriter(out)
	if err := writeTable(w, r); err != nil {
		return err
	}
	rows := [][]string{
		{},
		{"Totale Ore", formatHours(r.TotalHours)},
		{"Importo Totale", r.TotalAmount.StringFixed(2) + "€"},
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

// InvoiceCSV writes the invoice header, the report table and the invoice
// totals. issued is the date printed on the invoice.
func InvoiceCSV(out io.Writer, inv *store.Invoice, r *report.Report, issued time.Time) error {
	if r.Empty() {
		return ErrNothingToExport
	}
	w := csv.NewWriter(out)
	header := [][]string{
		{"FATTURA"},
		{"Numero Fattura", inv.Number},
		{"Data", issued.Local().Format(dateLayout)},
		{"Periodo", inv.PeriodStart.Local().Format(dateLayout) + " - " + inv.PeriodEnd.Local().Format(dateLayout)},
	}
	if inv.ClientName != "" {
		header = append(header, []string{"Cliente", inv.ClientName})
	}
	header = append(header, []string{})
	for _, row := range header {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	if err := writeTable(w, r); err != nil {
		return err
	}
	totals := [][]string{
		{},
		{"", "", "", "", "TOTALE ORE:", formatHours(r.TotalHours)},
		{"", "", "", "", "TOTALE €:", inv.TotalAmount.StringFixed(2)},
	}
	if err := w.WriteAll(totals); err != nil {
		return err
	}
	return w.Error()
}

// WriteReportCSV exports r to path.
func WriteReportCSV(path string, r *report.Report) error {
	if r.Empty() {
		return ErrNothingToExport
	}
	return writeFile(path, func(w io.Writer) error { return ReportCSV(w, r) })
}

// WriteInvoiceCSV exports inv to path. The invoice stays stored if writing
// fails.
func WriteInvoiceCSV(path string, inv *store.Invoice, r *report.Report, issued time.Time) error {
	if r.Empty() {
		return ErrNothingToExport
	}
	return writeFile(path, func(w io.Writer) error { return InvoiceCSV(w, inv, r, issued) })
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	log.Infof("Exported %s", path)
	return nil
}
