package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/mycket/internal/export"
	"github.com/sadopc/mycket/internal/invoice"
	"github.com/sadopc/mycket/internal/report"
	"github.com/sadopc/mycket/internal/store"
)

type reportsForm int

const (
	reportFormNone reportsForm = iota
	reportFormFilter
	reportFormExport
	reportFormInvoice
)

const (
	exportCSV = iota
	exportJSON
	exportPDF
)

var (
	exportFormats = []string{"CSV", "JSON", "PDF"}
	exportExts    = []string{".csv", ".json", ".pdf"}
)

type reportsModel struct {
	store     *store.Store
	agg       *report.Aggregator
	invoices  *invoice.Generator
	exportDir string
	width     int
	height    int

	filter   report.Filter
	report   *report.Report
	services []store.Service
	offset   int // first visible table row

	chart barchart.Model

	exportPicking bool
	exportCursor  int
	exportFormat  int

	formType reportsForm
	form     *huh.Form

	// Form field pointers (survive value copies)
	formFrom    *string
	formTo      *string
	formService *int64
	formPath    *string
	formClient  *string
	formNotes   *string
}

func newReportsModel(s *store.Store, exportDir string) reportsModel {
	var from, to, path, client, notes string
	var serviceID int64
	today := time.Now()
	return reportsModel{
		store:       s,
		agg:         report.New(s),
		invoices:    invoice.New(s),
		exportDir:   exportDir,
		filter:      report.Filter{From: today.AddDate(0, -1, 0), To: today}.Normalize(),
		chart:       barchart.New(60, 12),
		formFrom:    &from,
		formTo:      &to,
		formService: &serviceID,
		formPath:    &path,
		formClient:  &client,
		formNotes:   &notes,
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

func (r reportsModel) capturing() bool {
	return r.form != nil || r.exportPicking
}

type reportsDataMsg struct {
	report   *report.Report
	services []store.Service
	err      error
}

func (r reportsModel) refresh() tea.Cmd {
	f := r.filter
	return func() tea.Msg {
		rep, err := r.agg.Build(f)
		if err != nil {
			return reportsDataMsg{err: err}
		}
		services, err := r.store.ListServices()
		return reportsDataMsg{report: rep, services: services, err: err}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	if data, ok := msg.(reportsDataMsg); ok {
		if data.err != nil {
			return r, errorCmd(data.err)
		}
		r.report = data.report
		r.services = data.services
		r.offset = 0
		r.buildChart()
		return r, nil
	}
	if r.form != nil {
		return r.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil
	}
	if r.exportPicking {
		return r.updateExportPicker(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, keys.Filter):
		return r.showFilterForm()
	case key.Matches(keyMsg, keys.Export):
		if r.report.Empty() {
			return r, errorCmd(export.ErrNothingToExport)
		}
		r.exportPicking = true
		r.exportCursor = 0
		return r, nil
	case key.Matches(keyMsg, keys.Invoice):
		if r.report.Empty() {
			return r, errorCmd(invoice.ErrEmptyReport)
		}
		return r.showInvoiceForm()
	case key.Matches(keyMsg, keys.Up):
		if r.offset > 0 {
			r.offset--
		}
	case key.Matches(keyMsg, keys.Down):
		if r.report != nil && r.offset < len(r.report.Rows)-1 {
			r.offset++
		}
	}
	return r, nil
}

func (r reportsModel) updateExportPicker(msg tea.KeyMsg) (reportsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if r.exportCursor > 0 {
			r.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if r.exportCursor < len(exportFormats)-1 {
			r.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		r.exportPicking = false
		r.exportFormat = r.exportCursor
		return r.showExportForm()
	case key.Matches(msg, keys.Back):
		r.exportPicking = false
	}
	return r, nil
}

// --- Forms ---

func (r reportsModel) showFilterForm() (reportsModel, tea.Cmd) {
	*r.formFrom = r.filter.From.Format(dateLayout)
	*r.formTo = r.filter.To.Format(dateLayout)
	*r.formService = r.filter.ServiceID
	r.formType = reportFormFilter

	options := []huh.Option[int64]{huh.NewOption("All services", int64(0))}
	for _, s := range r.services {
		options = append(options, huh.NewOption(s.Name, s.ID))
	}

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("From (dd/mm/yyyy)").Value(r.formFrom).Validate(validateDate),
			huh.NewInput().Title("To (dd/mm/yyyy)").Value(r.formTo).Validate(validateDate),
			huh.NewSelect[int64]().Title("Service").Options(options...).Value(r.formService),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return r, r.form.Init()
}

func (r reportsModel) defaultExportPath() string {
	name := export.DefaultReportName(time.Now())
	name = strings.TrimSuffix(name, ".csv") + exportExts[r.exportFormat]
	return filepath.Join(r.exportDir, name)
}

func (r reportsModel) showExportForm() (reportsModel, tea.Cmd) {
	*r.formPath = r.defaultExportPath()
	r.formType = reportFormExport
	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Export %s to", exportFormats[r.exportFormat])).
				Value(r.formPath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("path is empty")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return r, r.form.Init()
}

func (r reportsModel) showInvoiceForm() (reportsModel, tea.Cmd) {
	*r.formClient = ""
	*r.formNotes = ""
	r.formType = reportFormInvoice
	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Client (optional)").Value(r.formClient),
			huh.NewText().Title("Notes").Value(r.formNotes),
		).Description(fmt.Sprintf("Invoice total %s for %s",
			formatMoney(r.report.TotalAmount), formatHours(r.report.TotalHours))),
	).WithShowHelp(true).WithShowErrors(true)
	return r, r.form.Init()
}

func (r reportsModel) updateForm(msg tea.Msg) (reportsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		r.form = nil
		r.formType = reportFormNone
		return r, nil
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	switch r.form.State {
	case huh.StateAborted:
		r.form = nil
		r.formType = reportFormNone
		return r, nil
	case huh.StateCompleted:
		formType := r.formType
		r.form = nil
		r.formType = reportFormNone
		return r.submitForm(formType)
	}
	return r, cmd
}

func (r reportsModel) submitForm(formType reportsForm) (reportsModel, tea.Cmd) {
	switch formType {
	case reportFormFilter:
		from, err := parseDate(*r.formFrom)
		if err != nil {
			return r, errorCmd(err)
		}
		to, err := parseDate(*r.formTo)
		if err != nil {
			return r, errorCmd(err)
		}
		if to.Before(from) {
			return r, errorCmd(errors.New("the end date is before the start date"))
		}
		r.filter = report.Filter{From: from, To: to, ServiceID: *r.formService}.Normalize()
		return r, r.refresh()

	case reportFormExport:
		return r, r.exportCmd(r.exportFormat, strings.TrimSpace(*r.formPath))

	case reportFormInvoice:
		return r, r.invoiceCmd(*r.formClient, *r.formNotes)
	}
	return r, nil
}

func (r reportsModel) exportCmd(format int, path string) tea.Cmd {
	rep := r.report
	return func() tea.Msg {
		var err error
		switch format {
		case exportJSON:
			err = export.WriteReportJSON(path, rep)
		case exportPDF:
			err = export.WriteReportPDF(path, rep)
		default:
			err = export.WriteReportCSV(path, rep)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("%s export error: %v", exportFormats[format], err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

// invoiceCmd stores the invoice, then writes its CSV and PDF next to the
// other exports. A failed write leaves the invoice stored.
func (r reportsModel) invoiceCmd(client, notes string) tea.Cmd {
	rep := r.report
	gen := r.invoices
	dir := r.exportDir
	return func() tea.Msg {
		inv, err := gen.Create(rep, client, notes)
		if err != nil {
			return statusMsg{text: "Error: " + err.Error(), isError: true}
		}
		path := filepath.Join(dir, export.DefaultInvoiceName(inv.Number))
		err = errors.Join(
			export.WriteInvoiceCSV(path, inv, rep, inv.CreatedAt),
			export.WriteInvoicePDF(strings.TrimSuffix(path, ".csv")+".pdf", inv, rep, inv.CreatedAt),
		)
		return invoiceCreatedMsg{invoice: inv, path: path, err: err}
	}
}

// --- Chart ---

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 36 {
		chartHeight = 14
	}
	r.chart = barchart.New(chartWidth, chartHeight)
	if r.report.Empty() {
		return
	}

	colorOf := make(map[string]lipgloss.Color, len(r.services))
	for i, s := range r.services {
		colorOf[s.Name] = serviceColor(i)
	}

	var bars []barchart.BarData
	var cur *barchart.BarData
	for _, dh := range r.report.DailyHours() {
		label := dh.Day.Format("02/01")
		if cur == nil || cur.Label != label {
			bars = append(bars, barchart.BarData{Label: label})
			cur = &bars[len(bars)-1]
		}
		cur.Values = append(cur.Values, barchart.BarValue{
			Name:  dh.ServiceName,
			Value: dh.Hours,
			Style: lipgloss.NewStyle().Foreground(colorOf[dh.ServiceName]),
		})
	}

	// Keep the most recent days that fit.
	maxBars := chartWidth / 6
	if maxBars > 0 && len(bars) > maxBars {
		bars = bars[len(bars)-maxBars:]
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

// --- Rendering ---

func (r reportsModel) view() string {
	w := r.width - 4

	if r.form != nil {
		title := map[reportsForm]string{
			reportFormFilter:  "Report Filter",
			reportFormExport:  "Export Report",
			reportFormInvoice: "Create Invoice",
		}[r.formType]
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", r.form.View()),
		)
	}
	if r.exportPicking {
		return r.renderExportPicker(w)
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", mutedStyle.Render(r.filterLabel()),
	)

	totals := mutedStyle.Render("  No completed entries in this period")
	if !r.report.Empty() {
		totals = fmt.Sprintf("  Total hours: %s   Total amount: %s",
			hoursStyle.Render(fmt.Sprintf("%.2f", r.report.TotalHours)),
			moneyStyle.Render(formatMoney(r.report.TotalAmount)))
	}

	nav := mutedStyle.Render("  f: filter  e: export  i: create invoice  ↑/↓: scroll")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderTable(w), "", totals, "", nav,
		),
	)
}

func (r reportsModel) filterLabel() string {
	service := "all services"
	for _, s := range r.services {
		if s.ID == r.filter.ServiceID {
			service = s.Name
		}
	}
	return fmt.Sprintf("%s - %s  ·  %s",
		r.filter.From.Format(dateLayout), r.filter.To.Format(dateLayout), service)
}

func (r reportsModel) tableRows() int {
	// header, chart, totals and padding take the rest
	n := r.height - 30
	if n < 5 {
		n = 5
	}
	return n
}

func (r reportsModel) renderTable(w int) string {
	if r.report.Empty() {
		return ""
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-10s %-30s %-5s %-5s %7s %10s",
		"Date", "Service", "Start", "End", "Hours", "Amount")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 74))))

	end := min(len(r.report.Rows), r.offset+r.tableRows())
	for _, l := range r.report.Rows[r.offset:end] {
		rows = append(rows, fmt.Sprintf("  %-10s %-30s %-5s %-5s %7.2f %10s",
			l.Start.Local().Format(dateLayout),
			truncate(l.ServiceName, 30),
			l.Start.Local().Format(clockLayout),
			l.End.Local().Format(clockLayout),
			l.Hours,
			formatMoney(l.Amount),
		))
	}
	if hidden := len(r.report.Rows) - end; hidden > 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", hidden)))
	}
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderExportPicker(w int) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Format"), "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == r.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: choose  esc: cancel"))
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
