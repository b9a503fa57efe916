package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/mycket/internal/report"
	"github.com/sadopc/mycket/internal/store"
	"github.com/sadopc/mycket/internal/timer"
)

const recentLimit = 10

type dashboardForm int

const (
	formNone dashboardForm = iota
	formStopNotes
	formManual
	formDeleteEntries
)

// dashboardModel is the timer view: start/stop, manual entries and the list
// of recent entries.
type dashboardModel struct {
	store  *store.Store
	agg    *report.Aggregator
	timer  timerModel
	width  int
	height int

	today    *report.Report
	recent   []store.TimeEntry
	services []store.Service

	cursor   int
	selected map[int64]bool

	// Service picker state
	picking      bool
	pickerCursor int

	formType dashboardForm
	form     *huh.Form

	// Form field pointers (survive value copies)
	formNotes     *string
	formServiceID *int64
	formDate      *string
	formStart     *string
	formEnd       *string
	formConfirm   *bool
}

func newDashboardModel(s *store.Store, e *timer.Engine) dashboardModel {
	var notes, date, start, end string
	var serviceID int64
	var confirm bool
	return dashboardModel{
		store:         s,
		agg:           report.New(s),
		timer:         newTimerModel(e),
		selected:      make(map[int64]bool),
		formNotes:     &notes,
		formServiceID: &serviceID,
		formDate:      &date,
		formStart:     &start,
		formEnd:       &end,
		formConfirm:   &confirm,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

// capturing reports whether the view wants every key press.
func (d dashboardModel) capturing() bool {
	return d.picking || d.form != nil
}

type dashboardDataMsg struct {
	current  *store.TimeEntry
	today    *report.Report
	recent   []store.TimeEntry
	services []store.Service
	err      error
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		current, err := d.timer.engine.Current()
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		now := time.Now()
		today, err := d.agg.Build(report.Filter{From: now, To: now})
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		recent, err := d.store.ListEntries(store.EntryFilter{Limit: recentLimit})
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		services, err := d.store.ListServices()
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		return dashboardDataMsg{current: current, today: today, recent: recent, services: services}
	}
}

func (d dashboardModel) applyData(msg dashboardDataMsg) (dashboardModel, tea.Cmd) {
	if msg.err != nil {
		return d, errorCmd(msg.err)
	}
	d.timer.current = msg.current
	d.timer.tick()
	d.today = msg.today
	d.recent = msg.recent
	d.services = msg.services
	if d.cursor >= len(d.recent) {
		d.cursor = max(0, len(d.recent)-1)
	}
	if d.pickerCursor >= len(d.services) {
		d.pickerCursor = max(0, len(d.services)-1)
	}
	d.pruneSelection()
	return d, nil
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if data, ok := msg.(dashboardDataMsg); ok {
		return d.applyData(data)
	}
	if d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tickMsg:
		d.timer.tick()
		return d, nil

	case tea.KeyMsg:
		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			// Start is disabled while a timer runs.
			if d.timer.running() {
				return d, statusCmd("A timer is already running. Press x to stop it first.")
			}
			if len(d.services) == 0 {
				return d, func() tea.Msg {
					return statusMsg{text: "No services yet. Press 2 to go to Services and create one.", isError: true}
				}
			}
			if len(d.services) == 1 {
				return d.startTimer(d.services[0].ID)
			}
			d.picking = true
			return d, nil

		case key.Matches(msg, keys.Stop):
			if !d.timer.running() {
				return d, statusCmd("No timer is running.")
			}
			return d.showStopForm()

		case key.Matches(msg, keys.Manual):
			if len(d.services) == 0 {
				return d, statusCmd("No services yet.")
			}
			return d.showManualForm()

		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.recent)-1 {
				d.cursor++
			}
		case key.Matches(msg, keys.Select):
			if len(d.recent) > 0 {
				id := d.recent[d.cursor].ID
				if d.selected[id] {
					delete(d.selected, id)
				} else {
					d.selected[id] = true
				}
			}
		case key.Matches(msg, keys.Delete):
			if len(d.recent) == 0 {
				return d, nil
			}
			return d.showDeleteForm()
		}
	}
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.services)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		d.picking = false
		if d.pickerCursor >= len(d.services) {
			return d, nil
		}
		return d.startTimer(d.services[d.pickerCursor].ID)
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) startTimer(serviceID int64) (dashboardModel, tea.Cmd) {
	entry, err := d.timer.start(serviceID, "")
	if err != nil {
		return d, errorCmd(err)
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStartedMsg{entry: entry} },
	)
}

func (d dashboardModel) stopTimer(notes string) (dashboardModel, tea.Cmd) {
	res, err := d.timer.stop(notes)
	if errors.Is(err, timer.ErrIdle) {
		return d, tea.Batch(d.loadData(), statusCmd("No timer is running."))
	}
	if err != nil {
		return d, errorCmd(err)
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStoppedMsg{result: res} },
	)
}

// selectedIDs returns the marked entries, or the entry under the cursor when
// nothing is marked.
func (d dashboardModel) selectedIDs() []int64 {
	var ids []int64
	for _, e := range d.recent {
		if d.selected[e.ID] {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 && d.cursor < len(d.recent) {
		ids = append(ids, d.recent[d.cursor].ID)
	}
	return ids
}

func (d *dashboardModel) pruneSelection() {
	present := make(map[int64]bool, len(d.recent))
	for _, e := range d.recent {
		present[e.ID] = true
	}
	for id := range d.selected {
		if !present[id] {
			delete(d.selected, id)
		}
	}
}

// --- Forms ---

func (d dashboardModel) showStopForm() (dashboardModel, tea.Cmd) {
	*d.formNotes = ""
	if d.timer.current != nil {
		*d.formNotes = d.timer.current.Notes
	}
	d.formType = formStopNotes
	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().Title("Notes").Value(d.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return d, d.form.Init()
}

func (d dashboardModel) showManualForm() (dashboardModel, tea.Cmd) {
	now := time.Now()
	*d.formServiceID = d.services[0].ID
	*d.formDate = now.Format(dateLayout)
	*d.formStart = now.Add(-time.Hour).Format(clockLayout)
	*d.formEnd = now.Format(clockLayout)
	*d.formNotes = ""
	d.formType = formManual

	options := make([]huh.Option[int64], len(d.services))
	for i, s := range d.services {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s/h)", s.Name, formatMoney(s.HourlyRate)), s.ID)
	}

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().Title("Service").Options(options...).Value(d.formServiceID),
			huh.NewInput().Title("Date (dd/mm/yyyy)").Value(d.formDate).Validate(validateDate),
			huh.NewInput().Title("Start (HH:MM)").Value(d.formStart).Validate(validateClock),
			huh.NewInput().Title("End (HH:MM)").Value(d.formEnd).Validate(validateClock),
			huh.NewText().Title("Notes").Value(d.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return d, d.form.Init()
}

func (d dashboardModel) showDeleteForm() (dashboardModel, tea.Cmd) {
	n := len(d.selectedIDs())
	*d.formConfirm = false
	d.formType = formDeleteEntries
	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %d time entr%s?", n, plural(n, "y", "ies"))).
				Affirmative("Delete").
				Negative("Cancel").
				Value(d.formConfirm),
		),
	)
	return d, d.form.Init()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		d.form = nil
		d.formType = formNone
		return d, nil
	}
	if _, ok := msg.(tickMsg); ok {
		d.timer.tick()
		return d, nil
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	switch d.form.State {
	case huh.StateAborted:
		d.form = nil
		d.formType = formNone
		return d, nil
	case huh.StateCompleted:
		formType := d.formType
		d.form = nil
		d.formType = formNone
		return d.submitForm(formType)
	}
	return d, cmd
}

func (d dashboardModel) submitForm(formType dashboardForm) (dashboardModel, tea.Cmd) {
	switch formType {
	case formStopNotes:
		return d.stopTimer(*d.formNotes)

	case formManual:
		start, err := parseClock(*d.formDate, *d.formStart)
		if err != nil {
			return d, errorCmd(err)
		}
		end, err := parseClock(*d.formDate, *d.formEnd)
		if err != nil {
			return d, errorCmd(err)
		}
		entry, err := d.timer.engine.AddManual(*d.formServiceID, start, end, *d.formNotes)
		if err != nil {
			return d, errorCmd(err)
		}
		hours, _ := entry.DurationHours()
		return d, tea.Batch(d.loadData(),
			statusCmd(fmt.Sprintf("Added %s on %s", formatHours(hours), entry.ServiceName)))

	case formDeleteEntries:
		if !*d.formConfirm {
			return d, nil
		}
		ids := d.selectedIDs()
		n, err := d.store.DeleteEntries(ids...)
		if err != nil {
			return d, errorCmd(err)
		}
		d.selected = make(map[int64]bool)
		return d, tea.Batch(d.loadData(),
			statusCmd(fmt.Sprintf("Deleted %d entr%s", n, plural(int(n), "y", "ies"))))
	}
	return d, nil
}

// --- Rendering ---

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	if d.form != nil {
		return activePanelStyle.Width(contentWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(d.formTitle()), "", d.form.View()),
		)
	}

	timerPanel := d.renderTimerPanel(contentWidth)
	summaryPanel := d.renderSummaryPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderServicePicker(contentWidth)
	} else {
		bottomPanel = d.renderRecentPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, summaryPanel, bottomPanel)
}

func (d dashboardModel) formTitle() string {
	switch d.formType {
	case formStopNotes:
		return "Stop Timer"
	case formManual:
		return "Manual Entry"
	case formDeleteEntries:
		return "Delete Entries"
	}
	return ""
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if d.timer.running() {
		cur := d.timer.current
		elapsed := d.timer.currentElapsed()
		timeDisplay := runningClockStyle.Width(w - 6).Render(formatDuration(elapsed))
		indicator := runningStyle.Render("●  RUNNING")
		serviceLine := titleStyle.Render(cur.ServiceName) +
			mutedStyle.Render(fmt.Sprintf("  since %s  ·  %s so far",
				cur.StartTime.Local().Format(clockLayout),
				formatMoney(store.CostOf(elapsed, cur.HourlyRate))))

		content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, serviceLine)
		return activePanelStyle.Width(w).Render(content)
	}

	timeDisplay := idleClockStyle.Width(w - 6).Render("00:00:00")
	indicator := mutedStyle.Render("■  STOPPED")
	hint := mutedStyle.Render("Press s to start tracking, m to add a manual entry")

	content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, hint)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	title := titleStyle.Render("Today")
	if d.today.Empty() {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No completed entries today"),
		)
		return panelStyle.Width(w).Render(content)
	}

	header := fmt.Sprintf("%s  %s  %s", title,
		hoursStyle.Render(formatHours(d.today.TotalHours)),
		moneyStyle.Render(formatMoney(d.today.TotalAmount)))
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header,
			mutedStyle.Render(fmt.Sprintf("%d entries", len(d.today.Rows)))),
	)
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Entries")
	if len(d.recent) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No entries yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for i, e := range d.recent {
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := " "
		if d.selected[e.ID] {
			mark = "✗"
			style = markedItemStyle
		}

		status, span, hours, amount := "✓", "", "", ""
		start := e.StartTime.Local()
		if e.IsRunning() {
			status = "●"
			span = start.Format(clockLayout) + "-     "
			hours = "running"
		} else {
			span = start.Format(clockLayout) + "-" + e.EndTime.Local().Format(clockLayout)
			h, _ := e.DurationHours()
			a, _ := e.Amount()
			hours = formatHours(h)
			amount = formatMoney(a)
		}
		row := fmt.Sprintf("%s%s %s %s %s  %-28s %8s %10s", cursor, mark, status,
			start.Format(dateLayout), span, truncate(e.ServiceName, 28), hours, amount)
		rows = append(rows, style.Render(row))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  space: select  d: delete selected  m: manual entry"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderServicePicker(w int) string {
	title := titleStyle.Render("Select Service")

	var rows []string
	rows = append(rows, title)
	for i, s := range d.services {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		dot := lipgloss.NewStyle().Foreground(serviceColor(i)).Render("●")
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-30s %s/h", cursor, dot, s.Name, formatMoney(s.HourlyRate))))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: start  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
