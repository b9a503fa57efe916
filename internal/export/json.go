package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sadopc/mycket/internal/report"
)

type jsonReport struct {
	ExportedAt  string          `json:"exported_at"`
	From        string          `json:"from,omitempty"`
	To          string          `json:"to,omitempty"`
	ServiceID   int64           `json:"service_id,omitempty"`
	Count       int             `json:"count"`
	TotalHours  float64         `json:"total_hours"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       []jsonLine      `json:"lines"`
}

type jsonLine struct {
	EntryID     int64           `json:"entry_id"`
	ServiceID   int64           `json:"service_id"`
	Service     string          `json:"service"`
	StartTime   string          `json:"start_time"`
	EndTime     string          `json:"end_time"`
	DurationSec int64           `json:"duration_seconds"`
	Hours       float64         `json:"hours"`
	Amount      decimal.Decimal `json:"amount"`
	Notes       string          `json:"notes,omitempty"`
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

// ReportJSON writes r as an indented JSON document. Amounts are encoded as
// decimal strings.
func ReportJSON(out io.Writer, r *report.Report, exportedAt time.Time) error {
	if r.Empty() {
		return ErrNothingToExport
	}
	doc := jsonReport{
		ExportedAt:  exportedAt.UTC().Format(time.RFC3339),
		From:        formatBound(r.Filter.From),
		To:          formatBound(r.Filter.To),
		ServiceID:   r.Filter.ServiceID,
		Count:       len(r.Rows),
		TotalHours:  r.TotalHours,
		TotalAmount: r.TotalAmount.Round(2),
		Lines:       make([]jsonLine, 0, len(r.Rows)),
	}
	for l := range r.All() {
		doc.Lines = append(doc.Lines, jsonLine{
			EntryID:     l.EntryID,
			ServiceID:   l.ServiceID,
			Service:     l.ServiceName,
			StartTime:   l.Start.Local().Format(time.RFC3339),
			EndTime:     l.End.Local().Format(time.RFC3339),
			DurationSec: int64(l.Duration / time.Second),
			Hours:       l.Hours,
			Amount:      l.Amount.Round(2),
			Notes:       l.Notes,
		})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return nil
}

// WriteReportJSON exports r to path.
func WriteReportJSON(path string, r *report.Report) error {
	if r.Empty() {
		return ErrNothingToExport
	}
	return writeFile(path, func(w io.Writer) error { return ReportJSON(w, r, time.Now()) })
}
