package invoice

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sadopc/mycket/internal/report"
	"github.com/sadopc/mycket/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var (
	day   = time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)
	clock = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local) }
)

func buildReport(t *testing.T, s *store.Store) *report.Report {
	t.Helper()
	services, err := s.ListServices()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateManualEntry(services[0].ID, day, day.Add(2*time.Hour), ""); err != nil {
		t.Fatal(err)
	}
	r, err := report.New(s).Build(report.Filter{From: day, To: day})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// ========================================
// Numbering
// ========================================

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		year, seq int
		want      string
	}{
		{2024, 1, "INV-2024-0001"},
		{2024, 42, "INV-2024-0042"},
		{2025, 9999, "INV-2025-9999"},
		{2025, 12345, "INV-2025-12345"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.year, tt.seq); got != tt.want {
			t.Errorf("FormatNumber(%d, %d) = %q, want %q", tt.year, tt.seq, got, tt.want)
		}
		y, q, err := ParseNumber(tt.want)
		if err != nil {
			t.Errorf("ParseNumber(%q): %v", tt.want, err)
			continue
		}
		if y != tt.year || q != tt.seq {
			t.Errorf("ParseNumber(%q) = %d, %d", tt.want, y, q)
		}
	}
}

func TestParseNumberInvalid(t *testing.T) {
	for _, s := range []string{"", "2024-0001", "INV-2024", "INV-abcd-0001", "INV-2024-x"} {
		if _, _, err := ParseNumber(s); err == nil {
			t.Errorf("ParseNumber(%q): expected error", s)
		}
	}
}

// ========================================
// Create
// ========================================

func TestCreateSequence(t *testing.T) {
	s := newTestStore(t)
	r := buildReport(t, s)
	g := New(s, WithClock(clock))

	first, err := g.Create(r, "ACME", "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.Create(r, "", "follow-up")
	if err != nil {
		t.Fatal(err)
	}
	if first.Number != "INV-2024-0001" || second.Number != "INV-2024-0002" {
		t.Fatalf("numbers = %s, %s", first.Number, second.Number)
	}
	if !first.TotalAmount.Equal(r.TotalAmount) {
		t.Fatalf("total = %s, want %s", first.TotalAmount, r.TotalAmount)
	}
	if first.ClientName != "ACME" || second.Notes != "follow-up" {
		t.Fatalf("unexpected fields: %+v / %+v", first, second)
	}
	if !first.PeriodStart.Equal(r.Filter.From) || !first.PeriodEnd.Truncate(time.Microsecond).Equal(r.Filter.To.Truncate(time.Microsecond)) {
		t.Fatalf("period = %v..%v", first.PeriodStart, first.PeriodEnd)
	}
}

func TestCreateCountsAcrossYears(t *testing.T) {
	s := newTestStore(t)
	r := buildReport(t, s)

	if _, err := New(s, WithClock(clock)).Create(r, "", ""); err != nil {
		t.Fatal(err)
	}
	nextYear := func() time.Time { return time.Date(2025, 1, 2, 9, 0, 0, 0, time.Local) }
	inv, err := New(s, WithClock(nextYear)).Create(r, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if inv.Number != "INV-2025-0002" {
		t.Fatalf("number = %s, want INV-2025-0002", inv.Number)
	}
}

func TestCreateEmptyReport(t *testing.T) {
	s := newTestStore(t)
	g := New(s)

	r, err := report.New(s).Build(report.Filter{From: day, To: day})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Create(r, "", ""); !errors.Is(err, ErrEmptyReport) {
		t.Fatalf("expected ErrEmptyReport, got %v", err)
	}
	if _, err := g.Create(nil, "", ""); !errors.Is(err, ErrEmptyReport) {
		t.Fatalf("expected ErrEmptyReport for nil report, got %v", err)
	}
	n, _ := s.CountInvoices()
	if n != 0 {
		t.Fatalf("no invoice should be stored, got %d", n)
	}
}

func TestCreateOpenPeriod(t *testing.T) {
	s := newTestStore(t)
	buildReport(t, s)
	r, err := report.New(s).Build(report.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	inv, err := New(s, WithClock(clock)).Create(r, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if !inv.PeriodStart.Equal(day) || !inv.PeriodEnd.Equal(day.Add(2*time.Hour)) {
		t.Fatalf("period = %v..%v", inv.PeriodStart, inv.PeriodEnd)
	}
	// Services are listed by name, so the entry is on "Analisi Dati" at 38/h.
	if !inv.TotalAmount.Equal(decimal.NewFromInt(76)) {
		t.Fatalf("total = %s, want 76", inv.TotalAmount)
	}
}
