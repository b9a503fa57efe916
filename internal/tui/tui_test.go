package tui

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/sadopc/mycket/internal/store"
	"github.com/sadopc/mycket/internal/timer"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestEngine(t *testing.T, s *store.Store) (*timer.Engine, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Now().Add(-3 * time.Hour).Truncate(time.Minute)}
	return timer.New(s, timer.WithClock(clock.now)), clock
}

func firstService(t *testing.T, s *store.Store) store.Service {
	t.Helper()
	services, err := s.ListServices()
	if err != nil {
		t.Fatal(err)
	}
	if len(services) == 0 {
		t.Fatal("no seeded services")
	}
	return services[0]
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// expectStatus runs cmd and returns the statusMsg it produces.
func expectStatus(t *testing.T, cmd tea.Cmd) statusMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(statusMsg)
	if !ok {
		t.Fatalf("expected statusMsg, got %T", msg)
	}
	return msg
}

// ============================================================
// Timer model
// ============================================================

func TestTimerStartStop(t *testing.T) {
	s := newTestStore(t)
	e, clock := newTestEngine(t, s)
	svc := firstService(t, s)

	tm := newTimerModel(e)
	if tm.running() {
		t.Fatal("timer should start idle")
	}

	entry, err := tm.start(svc.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if !tm.running() {
		t.Fatal("timer should be running after start")
	}
	if tm.serviceName() != svc.Name {
		t.Fatalf("service name = %q, want %q", tm.serviceName(), svc.Name)
	}
	if entry.ID == 0 {
		t.Fatal("entry ID should be set")
	}

	clock.advance(30 * time.Minute)
	res, err := tm.stop("done")
	if err != nil {
		t.Fatal(err)
	}
	if res.Hours != 0.5 {
		t.Fatalf("hours = %v, want 0.5", res.Hours)
	}
	want := svc.HourlyRate.Div(decimal.NewFromInt(2))
	if !res.Cost.Equal(want) {
		t.Fatalf("cost = %s, want %s", res.Cost, want)
	}
	if tm.running() {
		t.Fatal("timer should be idle after stop")
	}
}

func TestTimerStopWhenIdle(t *testing.T) {
	s := newTestStore(t)
	e, _ := newTestEngine(t, s)

	tm := newTimerModel(e)
	if _, err := tm.stop(""); !errors.Is(err, timer.ErrIdle) {
		t.Fatalf("expected ErrIdle, got %v", err)
	}
}

func TestTimerTick(t *testing.T) {
	s := newTestStore(t)
	e, clock := newTestEngine(t, s)
	svc := firstService(t, s)

	tm := newTimerModel(e)
	if tm.currentElapsed() != 0 {
		t.Fatal("idle timer should have 0 elapsed")
	}
	tm.start(svc.ID, "")

	clock.advance(90 * time.Second)
	tm.tick()
	if got := tm.currentElapsed(); got != 90*time.Second {
		t.Fatalf("elapsed = %v, want 90s", got)
	}

	// Ticks never write: the entry is still running with no end time.
	running, err := s.GetRunningEntry()
	if err != nil {
		t.Fatal(err)
	}
	if running == nil || running.EndTime != nil {
		t.Fatal("tick should not touch the running entry")
	}
}

func TestTimerLoadRecoversRunningEntry(t *testing.T) {
	s := newTestStore(t)
	e, clock := newTestEngine(t, s)
	svc := firstService(t, s)

	if _, err := e.Start(svc.ID, "left running"); err != nil {
		t.Fatal(err)
	}
	clock.advance(time.Hour)

	// A fresh model, as after a restart.
	tm := newTimerModel(e)
	if err := tm.load(); err != nil {
		t.Fatal(err)
	}
	if !tm.running() {
		t.Fatal("load should pick up the running entry")
	}
	if tm.currentElapsed() != time.Hour {
		t.Fatalf("elapsed = %v, want 1h", tm.currentElapsed())
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{26 * time.Hour, "26:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatMoneyAndHours(t *testing.T) {
	if got := formatMoney(decimal.RequireFromString("12.5")); got != "12.50€" {
		t.Fatalf("formatMoney = %q", got)
	}
	if got := formatHours(1.5); got != "1.50h" {
		t.Fatalf("formatHours = %q", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate(" 04/03/2024 ")
	if err != nil {
		t.Fatal(err)
	}
	if d.Year() != 2024 || d.Month() != time.March || d.Day() != 4 {
		t.Fatalf("parsed %v", d)
	}
	if d.Location() != time.Local {
		t.Fatal("dates are local")
	}
	if _, err := parseDate("2024-03-04"); err == nil {
		t.Fatal("ISO dates should be rejected")
	}
}

func TestParseClock(t *testing.T) {
	got, err := parseClock("04/03/2024", "09:30")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 3, 4, 9, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("parseClock = %v, want %v", got, want)
	}
	if _, err := parseClock("04/03/2024", "9.30"); err == nil {
		t.Fatal("expected error for bad clock")
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"40", "40", false},
		{"37,5", "37.5", false},
		{" 0 ", "0", false},
		{"-1", "", true},
		{"abc", "", true},
	}
	for _, tt := range tests {
		got, err := parseRate(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseRate(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRate(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("parseRate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := parseRate("-3"); !errors.Is(err, store.ErrNegativeRate) {
		t.Fatalf("expected ErrNegativeRate, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"Consulenza Software", 10, "Consulenz…"},
		{"àèìòù", 3, "àè…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestViewNames(t *testing.T) {
	expected := []string{"Timer", "Services", "Reports", "Invoices"}
	if len(viewNames) != len(expected) {
		t.Fatalf("expected %d view names, got %d", len(expected), len(viewNames))
	}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
	if viewTimer != 0 || viewServices != 1 || viewReports != 2 || viewInvoices != 3 {
		t.Fatal("view state constants out of order")
	}
}

// ============================================================
// Dashboard model
// ============================================================

func loadedDashboard(t *testing.T, s *store.Store, e *timer.Engine) dashboardModel {
	t.Helper()
	d := newDashboardModel(s, e)
	d.setSize(120, 40)
	d, cmd := d.update(d.loadData()())
	if cmd != nil {
		if msg, ok := cmd().(statusMsg); ok && msg.isError {
			t.Fatalf("load failed: %s", msg.text)
		}
	}
	return d
}

func TestDashboardInit(t *testing.T) {
	s := newTestStore(t)
	e, _ := newTestEngine(t, s)
	d := loadedDashboard(t, s, e)

	if d.isRunning() {
		t.Fatal("dashboard timer should be idle initially")
	}
	if d.elapsed() != 0 {
		t.Fatal("dashboard should have 0 elapsed initially")
	}
	if len(d.services) != 6 {
		t.Fatalf("expected 6 seeded services, got %d", len(d.services))
	}
	if d.capturing() {
		t.Fatal("dashboard should not capture keys initially")
	}
}

func TestDashboardStartThroughPicker(t *testing.T) {
	s := newTestStore(t)
	e, _ := newTestEngine(t, s)
	d := loadedDashboard(t, s, e)

	d, _ = d.update(runes("s"))
	if !d.picking || !d.capturing() {
		t.Fatal("start with several services should open the picker")
	}

	d, _ = d.update(tea.KeyMsg{Type: tea.KeyDown})
	d, cmd := d.update(tea.KeyMsg{Type: tea.KeyEnter})
	if d.picking {
		t.Fatal("picker should close after enter")
	}
	if !d.isRunning() {
		t.Fatal("timer should be running")
	}
	if cmd == nil {
		t.Fatal("start should emit a command")
	}
	if d.timer.serviceName() != d.services[1].Name {
		t.Fatalf("started %q, want %q", d.timer.serviceName(), d.services[1].Name)
	}
}

func TestDashboardStartDisabledWhileRunning(t *testing.T) {
	s := newTestStore(t)
	e, _ := newTestEngine(t, s)
	svc := firstService(t, s)
	if _, err := e.Start(svc.ID, ""); err != nil {
		t.Fatal(err)
	}

	d := loadedDashboard(t, s, e)
	if !d.isRunning() {
		t.Fatal("dashboard should pick up the running entry")
	}

	d, cmd := d.update(runes("s"))
	if d.picking {
		t.Fatal("picker should not open while a timer runs")
	}
	msg := expectStatus(t, cmd)
	if !strings.Contains(msg.text, "already running") {
		t.Fatalf("unexpected status %q", msg.text)
	}
	if n, _ := s.CountRunning(); n != 1 {
		t.Fatalf("running entries = %d, want 1", n)
	}
}

func TestDashboardStop(t *testing.T) {
	s := newTestStore(t)
	e, clock := newTestEngine(t, s)
	d := loadedDashboard(t, s, e)

	d, _ = d.startTimer(d.services[0].ID)
	clock.advance(15 * time.Minute)

	d, _ = d.update(runes("x"))
	if d.form == nil || d.formType != formStopNotes {
		t.Fatal("stop should ask for notes")
	}

	d, _ = d.stopTimer("review")
	if d.isRunning() {
		t.Fatal("timer should be idle")
	}
	entries, err := s.ListEntries(store.EntryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Notes != "review" || entries[0].IsRunning() {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestDashboardStopWhenIdle(t *testing.T) {
	s := newTestStore(t)
	e, _ := newTestEngine(t, s)
	d := loadedDashboard(t, s, e)

	d, cmd := d.update(runes("x"))
	if d.form != nil {
		t.Fatal("no form when nothing runs")
	}
	if msg := expectStatus(t, cmd); !strings.Contains(msg.text, "No timer") {
		t.Fatalf("unexpected status %q", msg.text)
	}
}

func TestDashboardManualEntry(t *testing.T) {
	s := newTestStore(t)
	e, _ := newTestEngine(t, s)
	d := loadedDashboard(t, s, e)

	d, _ = d.showManualForm()
	*d.formDate = "04/03/2024"
	*d.formStart = "09:00"
	*d.formEnd = "10:30"
	*d.formNotes = "call"
	d, cmd := d.submitForm(formManual)
	if cmd == nil {
		t.Fatal("submit should emit a command")
	}

	entries, err := s.ListEntries(store.EntryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if h, _ := entries[0].DurationHours(); h != 1.5 {
		t.Fatalf("hours = %v, want 1.5", h)
	}
	if d.isRunning() {
		t.Fatal("manual entries do not touch the timer")
	}
}

func TestDashboardManualEntryRejectsInvertedRange(t *testing.T) {
	s := newTestStore(t)
	e, _ := newTestEngine(t, s)
	d := loadedDashboard(t, s, e)

	d, _ = d.showManualForm()
	*d.formDate = "04/03/2024"
	*d.formStart = "11:00"
	*d.formEnd = "10:00"
	_, cmd := d.submitForm(formManual)
	if msg := expectStatus(t, cmd); !msg.isError {
		t.Fatal("expected an error status")
	}
	if entries, _ := s.ListEntries(store.EntryFilter{}); len(entries) != 0 {
		t.Fatal("no entry should be stored")
	}
}

func TestDashboardDeleteSelected(t *testing.T) {
	s := newTestStore(t)
	e, _ := newTestEngine(t, s)
	svc := firstService(t, s)
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.Local)
	for i := range 3 {
		start := base.Add(time.Duration(i) * 2 * time.Hour)
		if _, err := s.CreateManualEntry(svc.ID, start, start.Add(time.Hour), ""); err != nil {
			t.Fatal(err)
		}
	}

	d := loadedDashboard(t, s, e)
	if len(d.recent) != 3 {
		t.Fatalf("expected 3 recent entries, got %d", len(d.recent))
	}

	// Without marks the cursor entry is the selection.
	if ids := d.selectedIDs(); len(ids) != 1 || ids[0] != d.recent[0].ID {
		t.Fatalf("selectedIDs = %v", ids)
	}

	d, _ = d.update(runes(" "))
	d, _ = d.update(tea.KeyMsg{Type: tea.KeyDown})
	d, _ = d.update(runes(" "))
	if got := len(d.selectedIDs()); got != 2 {
		t.Fatalf("selected %d, want 2", got)
	}

	d, _ = d.showDeleteForm()
	*d.formConfirm = true
	d, _ = d.submitForm(formDeleteEntries)
	if len(d.selected) != 0 {
		t.Fatal("selection should be cleared")
	}
	entries, _ := s.ListEntries(store.EntryFilter{})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry left, got %d", len(entries))
	}
}

// ============================================================
// Services model
// ============================================================

func TestServicesCreate(t *testing.T) {
	s := newTestStore(t)
	p := newServicesModel(s)

	p, _ = p.showServiceForm(nil)
	if !p.capturing() {
		t.Fatal("form should capture keys")
	}
	*p.formName = "Formazione"
	*p.formRate = "30,5"
	*p.formDescription = "Corsi"

	msg := expectStatus(t, p.submit(serviceFormNew))
	if msg.isError {
		t.Fatalf("create failed: %s", msg.text)
	}
	services, _ := s.ListServices()
	var found *store.Service
	for i := range services {
		if services[i].Name == "Formazione" {
			found = &services[i]
		}
	}
	if found == nil {
		t.Fatal("service not stored")
	}
	if !found.HourlyRate.Equal(decimal.RequireFromString("30.5")) {
		t.Fatalf("rate = %s", found.HourlyRate)
	}
}

func TestServicesCreateDuplicate(t *testing.T) {
	s := newTestStore(t)
	p := newServicesModel(s)
	svc := firstService(t, s)

	p, _ = p.showServiceForm(nil)
	*p.formName = svc.Name
	*p.formRate = "10"
	if msg := expectStatus(t, p.submit(serviceFormNew)); !msg.isError {
		t.Fatal("duplicate name should fail")
	}
}

func TestServicesEdit(t *testing.T) {
	s := newTestStore(t)
	p := newServicesModel(s)
	p, _ = p.update(p.refresh()())
	svc := p.services[0]

	p, _ = p.showServiceForm(&svc)
	if *p.formName != svc.Name || p.editingID != svc.ID {
		t.Fatal("edit form should be prefilled")
	}
	*p.formRate = "99"
	if msg := expectStatus(t, p.submit(serviceFormEdit)); msg.isError {
		t.Fatalf("edit failed: %s", msg.text)
	}
	services, _ := s.ListServices()
	for _, got := range services {
		if got.ID == svc.ID && !got.HourlyRate.Equal(decimal.NewFromInt(99)) {
			t.Fatalf("rate = %s, want 99", got.HourlyRate)
		}
	}
}

func TestServicesDelete(t *testing.T) {
	s := newTestStore(t)
	svc := firstService(t, s)
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.Local)
	s.CreateManualEntry(svc.ID, start, start.Add(time.Hour), "")

	p := newServicesModel(s)
	p, _ = p.update(p.refresh()())
	p, _ = p.showDeleteForm()

	// Declined confirmation does nothing.
	if cmd := p.submit(serviceFormDelete); cmd != nil {
		t.Fatal("declined delete should be a no-op")
	}

	*p.formConfirm = true
	msg := expectStatus(t, p.submit(serviceFormDelete))
	if !strings.Contains(msg.text, "1 time entry") {
		t.Fatalf("unexpected status %q", msg.text)
	}
	services, _ := s.ListServices()
	if len(services) != 5 {
		t.Fatalf("expected 5 services left, got %d", len(services))
	}
}

func TestServicesFormEsc(t *testing.T) {
	s := newTestStore(t)
	p := newServicesModel(s)
	p, _ = p.showServiceForm(nil)
	p, _ = p.update(tea.KeyMsg{Type: tea.KeyEsc})
	if p.capturing() {
		t.Fatal("esc should close the form")
	}
}

// ============================================================
// Reports model
// ============================================================

func TestReportsExportEmpty(t *testing.T) {
	s := newTestStore(t)
	r := newReportsModel(s, t.TempDir())
	r.setSize(120, 40)
	r, _ = r.update(r.refresh()())

	r, cmd := r.update(runes("e"))
	if r.exportPicking {
		t.Fatal("export picker should not open for an empty report")
	}
	if msg := expectStatus(t, cmd); !msg.isError {
		t.Fatal("expected error status")
	}

	_, cmd = r.update(runes("i"))
	if msg := expectStatus(t, cmd); !msg.isError {
		t.Fatal("expected error status for invoice on empty report")
	}
}

func TestReportsExportAndInvoice(t *testing.T) {
	s := newTestStore(t)
	svc := firstService(t, s)
	start := time.Now().Add(-3 * time.Hour).Truncate(time.Minute)
	if _, err := s.CreateManualEntry(svc.ID, start, start.Add(2*time.Hour), ""); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	r := newReportsModel(s, dir)
	r.setSize(120, 40)
	r, _ = r.update(r.refresh()())
	if r.report.Empty() {
		t.Fatal("report should contain the entry")
	}
	if !r.report.TotalAmount.Equal(svc.HourlyRate.Mul(decimal.NewFromInt(2))) {
		t.Fatalf("total = %s", r.report.TotalAmount)
	}

	r, _ = r.update(runes("e"))
	if !r.exportPicking {
		t.Fatal("export should open the format picker")
	}
	r, _ = r.update(tea.KeyMsg{Type: tea.KeyEnter})
	if r.form == nil || r.formType != reportFormExport {
		t.Fatal("choosing a format should open the path form")
	}

	msg := r.exportCmd(exportCSV, r.defaultExportPath())()
	done, ok := msg.(exportDoneMsg)
	if !ok {
		t.Fatalf("expected exportDoneMsg, got %#v", msg)
	}
	if _, err := os.Stat(done.path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	msg = r.invoiceCmd("ACME", "")()
	created, ok := msg.(invoiceCreatedMsg)
	if !ok {
		t.Fatalf("expected invoiceCreatedMsg, got %#v", msg)
	}
	if created.err != nil {
		t.Fatalf("invoice export: %v", created.err)
	}
	if !strings.HasPrefix(created.invoice.Number, "INV-") {
		t.Fatalf("number = %q", created.invoice.Number)
	}
	if _, err := os.Stat(created.path); err != nil {
		t.Fatalf("invoice file missing: %v", err)
	}
	if _, err := os.Stat(strings.TrimSuffix(created.path, ".csv") + ".pdf"); err != nil {
		t.Fatalf("invoice pdf missing: %v", err)
	}
	if n, _ := s.CountInvoices(); n != 1 {
		t.Fatalf("invoices = %d, want 1", n)
	}
}

func TestReportsFilterRejectsInvertedRange(t *testing.T) {
	s := newTestStore(t)
	r := newReportsModel(s, t.TempDir())
	before := r.filter

	r, _ = r.showFilterForm()
	*r.formFrom = "10/03/2024"
	*r.formTo = "01/03/2024"
	r, cmd := r.submitForm(reportFormFilter)
	if msg := expectStatus(t, cmd); !msg.isError {
		t.Fatal("expected an error status")
	}
	if r.filter != before {
		t.Fatal("filter should be unchanged")
	}
}

// ============================================================
// Invoices model
// ============================================================

func TestInvoicesList(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateInvoice(func(n int) string { return "INV-2024-0001" }, store.InvoiceParams{
		ClientName:  "ACME",
		PeriodStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
		PeriodEnd:   time.Date(2024, 3, 31, 23, 59, 59, 0, time.Local),
		TotalAmount: decimal.NewFromInt(120),
	})
	if err != nil {
		t.Fatal(err)
	}

	v := newInvoicesModel(s)
	v.setSize(120, 40)
	v, _ = v.update(v.refresh()())
	if len(v.invoices) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(v.invoices))
	}
	out := v.view()
	for _, want := range []string{"INV-2024-0001", "ACME", "120.00€"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

// ============================================================
// App model
// ============================================================

func newTestApp(t *testing.T) App {
	t.Helper()
	s := newTestStore(t)
	e, _ := newTestEngine(t, s)
	return NewApp(s, e, Options{ExportDir: t.TempDir()})
}

func sized(t *testing.T, a App) App {
	t.Helper()
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App)
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)

	if app.activeView != viewTimer {
		t.Fatal("default view should be the timer")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppLoadingState(t *testing.T) {
	app := newTestApp(t)
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppViewStates(t *testing.T) {
	app := sized(t, newTestApp(t))

	for _, v := range []viewState{viewTimer, viewServices, viewReports, viewInvoices} {
		app.activeView = v
		if output := app.View(); output == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppTabCycles(t *testing.T) {
	app := sized(t, newTestApp(t))

	want := []viewState{viewServices, viewReports, viewInvoices, viewTimer}
	for _, v := range want {
		m, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
		app = m.(App)
		if app.activeView != v {
			t.Fatalf("activeView = %d, want %d", app.activeView, v)
		}
	}

	m, _ := app.Update(runes("4"))
	if m.(App).activeView != viewInvoices {
		t.Fatal("4 should switch to invoices")
	}
}

func TestAppKeysGoToOpenForm(t *testing.T) {
	app := sized(t, newTestApp(t))
	app.activeView = viewServices
	app.services, _ = app.services.showServiceForm(nil)

	// "3" goes to the form instead of switching views.
	m, _ := app.Update(runes("3"))
	app = m.(App)
	if app.activeView != viewServices {
		t.Fatal("tab keys should not switch views while a form is open")
	}
	if !app.isFormActive() {
		t.Fatal("form should still be open")
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app := sized(t, newTestApp(t))

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppStatusMessages(t *testing.T) {
	app := sized(t, newTestApp(t))

	m, _ := app.Update(statusMsg{text: "test status"})
	app = m.(App)
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}

	m, _ = app.Update(exportDoneMsg{path: "/tmp/report.csv"})
	app = m.(App)
	if app.status != "Exported to /tmp/report.csv" {
		t.Fatalf("status = %q", app.status)
	}

	inv := &store.Invoice{Number: "INV-2024-0001"}
	m, _ = app.Update(invoiceCreatedMsg{invoice: inv, err: errors.New("disk full")})
	app = m.(App)
	if !app.statusError || !strings.Contains(app.status, "INV-2024-0001") {
		t.Fatalf("status = %q", app.status)
	}
}

func TestAppFooterShowsRunningTimer(t *testing.T) {
	s := newTestStore(t)
	e, clock := newTestEngine(t, s)
	svc := firstService(t, s)
	if _, err := e.Start(svc.ID, ""); err != nil {
		t.Fatal(err)
	}
	clock.advance(65 * time.Second)

	app := sized(t, NewApp(s, e, Options{ExportDir: t.TempDir()}))
	m, _ := app.Update(app.dashboard.loadData()())
	app = m.(App)
	if !strings.Contains(app.renderFooter(), "00:01:05") {
		t.Fatal("footer should show the elapsed time")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestHelpForView(t *testing.T) {
	contains := func(bs []key.Binding, want key.Binding) bool {
		for _, b := range bs {
			if b.Help() == want.Help() {
				return true
			}
		}
		return false
	}
	if !contains(helpFor(viewTimer).ShortHelp(), keys.Start) {
		t.Fatal("timer help should list start")
	}
	if !contains(helpFor(viewReports).ShortHelp(), keys.Invoice) {
		t.Fatal("reports help should list invoice")
	}
	if contains(helpFor(viewServices).ShortHelp(), keys.Start) {
		t.Fatal("services help should not list start")
	}
	if !contains(helpFor(viewInvoices).ShortHelp(), keys.Quit) {
		t.Fatal("every view lists quit")
	}
	if len(helpFor(viewServices).FullHelp()) == 0 {
		t.Fatal("full help should have groups")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"brand", func() string { return brandStyle.Render("test") }},
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"idleClock", func() string { return idleClockStyle.Render("test") }},
		{"runningClock", func() string { return runningClockStyle.Render("test") }},
		{"running", func() string { return runningStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"money", func() string { return moneyStyle.Render("test") }},
		{"hours", func() string { return hoursStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
		{"markedItem", func() string { return markedItemStyle.Render("test") }},
	}

	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
	if serviceColor(0) != serviceColor(len(serviceColors)) {
		t.Fatal("service colors should cycle")
	}
}
