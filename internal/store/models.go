package store

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrEmptyName      = errors.New("service name is empty")
	ErrDuplicateName  = errors.New("a service with this name already exists")
	ErrNegativeRate   = errors.New("hourly rate is negative")
	ErrTimerRunning   = errors.New("a timer is already running")
	ErrNotRunning     = errors.New("time entry is not running")
	ErrEndBeforeStart = errors.New("end time must be after start time")
)

// Service is a billable activity type with an hourly rate.
type Service struct {
	ID          int64
	Name        string
	HourlyRate  decimal.Decimal
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TimeEntry is a recorded or in-progress work session. EndTime is nil while
// the entry is running. ServiceName and HourlyRate are read from the owning
// service when the entry is loaded.
type TimeEntry struct {
	ID          int64
	ServiceID   int64
	ServiceName string
	HourlyRate  decimal.Decimal
	StartTime   time.Time
	EndTime     *time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e TimeEntry) IsRunning() bool {
	return e.EndTime == nil
}

// Duration returns end - start, or zero while running.
func (e TimeEntry) Duration() time.Duration {
	if e.EndTime == nil {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}

// DurationHours reports the completed duration in hours. ok is false while
// the entry is running.
func (e TimeEntry) DurationHours() (hours float64, ok bool) {
	if e.EndTime == nil {
		return 0, false
	}
	return e.Duration().Hours(), true
}

// Amount is the billable cost of a completed entry: hours x hourly rate.
// It is computed as rate * microseconds / 3.6e9 so whole minutes never
// pick up float rounding.
func (e TimeEntry) Amount() (decimal.Decimal, bool) {
	if e.EndTime == nil {
		return decimal.Zero, false
	}
	return CostOf(e.Duration(), e.HourlyRate), true
}

var microsPerHour = decimal.NewFromInt(int64(time.Hour / time.Microsecond))

// CostOf returns d expressed in hours multiplied by rate.
func CostOf(d time.Duration, rate decimal.Decimal) decimal.Decimal {
	micros := decimal.NewFromInt(int64(d / time.Microsecond))
	return rate.Mul(micros).Div(microsPerHour)
}

// Invoice is an immutable billing snapshot of a report total.
type Invoice struct {
	ID          int64
	Number      string
	ClientName  string
	PeriodStart time.Time
	PeriodEnd   time.Time
	TotalAmount decimal.Decimal
	Notes       string
	CreatedAt   time.Time
}

// InvoiceParams carries the caller-supplied fields of a new invoice.
type InvoiceParams struct {
	ClientName  string
	PeriodStart time.Time
	PeriodEnd   time.Time
	TotalAmount decimal.Decimal
	Notes       string
}

// EntryFilter is used to filter time entries in queries. From and To are
// inclusive bounds on the start time.
type EntryFilter struct {
	ServiceID     *int64
	From          *time.Time
	To            *time.Time
	CompletedOnly bool
	Ascending     bool
	Limit         int
}
