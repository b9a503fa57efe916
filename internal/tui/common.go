package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/sadopc/mycket/internal/store"
	"github.com/sadopc/mycket/internal/timer"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewServices
	viewReports
	viewInvoices
)

var viewNames = []string{"Timer", "Services", "Reports", "Invoices"}

// --- Messages ---

type timerStartedMsg struct {
	entry *store.TimeEntry
}

type timerStoppedMsg struct {
	result *timer.StopResult
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

type invoiceCreatedMsg struct {
	invoice *store.Invoice
	path    string
	err     error // export failure; the invoice itself is stored
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: "Error: " + err.Error(), isError: true} }
}

// --- Helpers ---

const (
	dateLayout     = "02/01/2006"
	clockLayout    = "15:04"
	dateTimeLayout = dateLayout + " " + clockLayout
)

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.2fh", h)
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2) + "€"
}

// parseDate reads a dd/mm/yyyy date in local time.
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, errors.New("use dd/mm/yyyy")
	}
	return t, nil
}

// parseClock combines a dd/mm/yyyy date with an HH:MM time of day.
func parseClock(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(dateTimeLayout,
		strings.TrimSpace(date)+" "+strings.TrimSpace(clock), time.Local)
	if err != nil {
		return time.Time{}, errors.New("use HH:MM")
	}
	return t, nil
}

func parseRate(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}
	if rate.IsNegative() {
		return decimal.Zero, store.ErrNegativeRate
	}
	return rate, nil
}

func validateDate(s string) error {
	_, err := parseDate(s)
	return err
}

func validateClock(s string) error {
	_, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return errors.New("use HH:MM")
	}
	return nil
}

func validateRate(s string) error {
	_, err := parseRate(s)
	return err
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return store.ErrEmptyName
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
