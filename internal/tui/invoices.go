package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/mycket/internal/store"
)

// invoicesModel lists stored invoices. Invoices are immutable, so the view is
// read-only.
type invoicesModel struct {
	store  *store.Store
	width  int
	height int

	invoices []store.Invoice
	cursor   int
}

func newInvoicesModel(s *store.Store) invoicesModel {
	return invoicesModel{store: s}
}

func (v *invoicesModel) setSize(w, h int) {
	v.width = w
	v.height = h
}

type invoicesDataMsg struct {
	invoices []store.Invoice
	err      error
}

func (v invoicesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		invoices, err := v.store.ListInvoices()
		return invoicesDataMsg{invoices: invoices, err: err}
	}
}

func (v invoicesModel) update(msg tea.Msg) (invoicesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case invoicesDataMsg:
		if msg.err != nil {
			return v, errorCmd(msg.err)
		}
		v.invoices = msg.invoices
		if v.cursor >= len(v.invoices) {
			v.cursor = max(0, len(v.invoices)-1)
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, keys.Down):
			if v.cursor < len(v.invoices)-1 {
				v.cursor++
			}
		}
	}
	return v, nil
}

func (v invoicesModel) view() string {
	w := v.width - 4
	title := titleStyle.Render("Invoices")

	if len(v.invoices) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No invoices yet. Create one from the Reports view (press i)."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-16s %-10s %-23s %-24s %12s",
		"Number", "Date", "Period", "Client", "Total")))

	for i, inv := range v.invoices {
		cursor := "  "
		style := normalItemStyle
		if i == v.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		period := inv.PeriodStart.Local().Format(dateLayout) + " - " + inv.PeriodEnd.Local().Format(dateLayout)
		client := inv.ClientName
		if client == "" {
			client = "-"
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-16s %-10s %-23s %-24s %12s",
			cursor, inv.Number, inv.CreatedAt.Local().Format(dateLayout), period,
			truncate(client, 24), formatMoney(inv.TotalAmount))))
	}

	if v.cursor < len(v.invoices) {
		if notes := v.invoices[v.cursor].Notes; notes != "" {
			rows = append(rows, "", mutedStyle.Render("  Notes: "+notes))
		}
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
