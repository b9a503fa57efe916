// Package report aggregates completed time entries into billable line items.
package report

import (
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sadopc/mycket/internal/store"
)

// Filter selects the entries of a report. From and To are inclusive bounds on
// the entry start time; a zero bound is open. ServiceID 0 means all services.
type Filter struct {
	From      time.Time
	To        time.Time
	ServiceID int64
}

// Normalize moves From to the start of its day and To to the last instant of
// its calendar day, both in their own locations.
func (f Filter) Normalize() Filter {
	if !f.From.IsZero() {
		y, m, d := f.From.Date()
		f.From = time.Date(y, m, d, 0, 0, 0, 0, f.From.Location())
	}
	if !f.To.IsZero() {
		y, m, d := f.To.Date()
		f.To = time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), f.To.Location())
	}
	return f
}

func (f Filter) entryFilter() store.EntryFilter {
	ef := store.EntryFilter{CompletedOnly: true, Ascending: true}
	if !f.From.IsZero() {
		from := f.From
		ef.From = &from
	}
	if !f.To.IsZero() {
		to := f.To
		ef.To = &to
	}
	if f.ServiceID != 0 {
		id := f.ServiceID
		ef.ServiceID = &id
	}
	return ef
}

// Line is one billed time entry.
type Line struct {
	EntryID     int64
	ServiceID   int64
	ServiceName string
	Start       time.Time
	End         time.Time
	Duration    time.Duration
	Hours       float64
	Amount      decimal.Decimal
	Notes       string
}

func lineOf(e store.TimeEntry) Line {
	amount, _ := e.Amount()
	return Line{
		EntryID:     e.ID,
		ServiceID:   e.ServiceID,
		ServiceName: e.ServiceName,
		Start:       e.StartTime,
		End:         *e.EndTime,
		Duration:    e.Duration(),
		Hours:       e.Duration().Hours(),
		Amount:      amount,
		Notes:       e.Notes,
	}
}

// Aggregator builds reports from the store.
type Aggregator struct {
	store *store.Store
}

func New(s *store.Store) *Aggregator {
	return &Aggregator{store: s}
}

// Lines streams the report lines for f, ordered by start time. The filter is
// normalized first. Ranging over the sequence again re-runs the query.
func (a *Aggregator) Lines(f Filter) iter.Seq2[Line, error] {
	ef := f.Normalize().entryFilter()
	return func(yield func(Line, error) bool) {
		for e, err := range a.store.Entries(ef) {
			if err != nil {
				yield(Line{}, err)
				return
			}
			if e.EndTime == nil {
				continue
			}
			if !yield(lineOf(e), nil) {
				return
			}
		}
	}
}

// Report is a materialized aggregation with its totals.
type Report struct {
	Filter        Filter
	Rows          []Line
	TotalDuration time.Duration
	TotalHours    float64
	TotalAmount   decimal.Decimal
}

// Build runs the query for f and sums hours and amounts.
func (a *Aggregator) Build(f Filter) (*Report, error) {
	r := &Report{Filter: f.Normalize(), TotalAmount: decimal.Zero}
	for l, err := range a.Lines(f) {
		if err != nil {
			return nil, fmt.Errorf("build report: %w", err)
		}
		r.add(l)
	}
	log.Debugf("Report %v..%v service=%d: %d lines, %.2fh, %s",
		r.Filter.From.Format(time.DateOnly), r.Filter.To.Format(time.DateOnly),
		r.Filter.ServiceID, len(r.Rows), r.TotalHours, r.TotalAmount.StringFixed(2))
	return r, nil
}

func (r *Report) add(l Line) {
	r.Rows = append(r.Rows, l)
	r.TotalDuration += l.Duration
	r.TotalHours = r.TotalDuration.Hours()
	r.TotalAmount = r.TotalAmount.Add(l.Amount)
}

func (r *Report) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// All iterates the report lines in order.
func (r *Report) All() iter.Seq[Line] {
	return func(yield func(Line) bool) {
		if r == nil {
			return
		}
		for _, l := range r.Rows {
			if !yield(l) {
				return
			}
		}
	}
}

// DayHours is the number of hours booked on one service on one day.
type DayHours struct {
	Day         time.Time
	ServiceName string
	Hours       float64
}

// DailyHours groups the report lines per local calendar day and service,
// ordered by day then service name.
func (r *Report) DailyHours() []DayHours {
	type key struct {
		day     string
		service string
	}
	sums := make(map[key]time.Duration)
	days := make(map[string]time.Time)
	for l := range r.All() {
		start := l.Start.Local()
		k := key{start.Format(time.DateOnly), l.ServiceName}
		sums[k] += l.Duration
		if _, ok := days[k.day]; !ok {
			y, m, d := start.Date()
			days[k.day] = time.Date(y, m, d, 0, 0, 0, 0, time.Local)
		}
	}

	out := make([]DayHours, 0, len(sums))
	for k, d := range sums {
		out = append(out, DayHours{Day: days[k.day], ServiceName: k.service, Hours: d.Hours()})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return out[i].ServiceName < out[j].ServiceName
	})
	return out
}
