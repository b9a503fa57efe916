// Package invoice turns a report into a numbered, persisted invoice.
package invoice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/mycket/internal/report"
	"github.com/sadopc/mycket/internal/store"
)

// ErrEmptyReport is returned when an invoice is requested for a report with
// no lines.
var ErrEmptyReport = errors.New("report has no entries to invoice")

const numberPrefix = "INV-"

// FormatNumber renders an invoice number as INV-<year>-<seq>, seq zero padded
// to four digits.
func FormatNumber(year, seq int) string {
	return fmt.Sprintf("%s%d-%04d", numberPrefix, year, seq)
}

// ParseNumber is the inverse of FormatNumber.
func ParseNumber(s string) (year, seq int, err error) {
	rest, ok := strings.CutPrefix(s, numberPrefix)
	if !ok {
		return 0, 0, fmt.Errorf("invoice number %q: missing %s prefix", s, numberPrefix)
	}
	y, q, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invoice number %q: missing sequence", s)
	}
	if year, err = strconv.Atoi(y); err != nil {
		return 0, 0, fmt.Errorf("invoice number %q: bad year: %w", s, err)
	}
	if seq, err = strconv.Atoi(q); err != nil {
		return 0, 0, fmt.Errorf("invoice number %q: bad sequence: %w", s, err)
	}
	return year, seq, nil
}

// Generator creates invoices from reports.
type Generator struct {
	store *store.Store
	now   func() time.Time
}

type Option func(*Generator)

// WithClock overrides the clock used for the invoice year.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func New(s *store.Store, opts ...Option) *Generator {
	g := &Generator{store: s, now: time.Now}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Create snapshots the report period and total into a new invoice. The
// sequence part of the number is one more than the count of all stored
// invoices, regardless of their year.
func (g *Generator) Create(r *report.Report, clientName, notes string) (*store.Invoice, error) {
	if r.Empty() {
		return nil, ErrEmptyReport
	}

	start, end := period(r)
	year := g.now().Year()
	inv, err := g.store.CreateInvoice(func(existing int) string {
		return FormatNumber(year, existing+1)
	}, store.InvoiceParams{
		ClientName:  clientName,
		PeriodStart: start,
		PeriodEnd:   end,
		TotalAmount: r.TotalAmount,
		Notes:       notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	log.Infof("Invoice %s created: %s, %d lines, total %s",
		inv.Number, clientOrDash(inv.ClientName), len(r.Rows), inv.TotalAmount.StringFixed(2))
	return inv, nil
}

// period is the report filter range, falling back to the first and last line
// start for open bounds.
func period(r *report.Report) (start, end time.Time) {
	start, end = r.Filter.From, r.Filter.To
	if start.IsZero() {
		start = r.Rows[0].Start
	}
	if end.IsZero() {
		end = r.Rows[len(r.Rows)-1].End
	}
	return start, end
}

func clientOrDash(name string) string {
	if strings.TrimSpace(name) == "" {
		return "-"
	}
	return name
}
