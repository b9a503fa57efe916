package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/mycket/internal/store"
)

type servicesForm int

const (
	serviceFormNone servicesForm = iota
	serviceFormNew
	serviceFormEdit
	serviceFormDelete
)

type servicesModel struct {
	store  *store.Store
	width  int
	height int

	services []store.Service
	cursor   int

	formType servicesForm
	form     *huh.Form

	// Form field pointers (survive value copies)
	formName        *string
	formRate        *string
	formDescription *string
	formConfirm     *bool

	editingID int64
}

func newServicesModel(s *store.Store) servicesModel {
	var name, rate, desc string
	var confirm bool
	return servicesModel{
		store:           s,
		formName:        &name,
		formRate:        &rate,
		formDescription: &desc,
		formConfirm:     &confirm,
	}
}

func (p *servicesModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p servicesModel) capturing() bool {
	return p.form != nil
}

type servicesDataMsg struct {
	services []store.Service
	err      error
}

func (p servicesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		services, err := p.store.ListServices()
		return servicesDataMsg{services: services, err: err}
	}
}

func (p servicesModel) update(msg tea.Msg) (servicesModel, tea.Cmd) {
	if data, ok := msg.(servicesDataMsg); ok {
		if data.err != nil {
			return p, errorCmd(data.err)
		}
		p.services = data.services
		if p.cursor >= len(p.services) {
			p.cursor = max(0, len(p.services)-1)
		}
		return p, nil
	}
	if p.form != nil {
		return p.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.services)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.New):
			return p.showServiceForm(nil)
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			if len(p.services) > 0 {
				svc := p.services[p.cursor]
				return p.showServiceForm(&svc)
			}
		case key.Matches(msg, keys.Delete):
			if len(p.services) > 0 {
				return p.showDeleteForm()
			}
		}
	}
	return p, nil
}

// showServiceForm opens the create form, or the edit form when svc is set.
func (p servicesModel) showServiceForm(svc *store.Service) (servicesModel, tea.Cmd) {
	if svc == nil {
		*p.formName = ""
		*p.formRate = "0"
		*p.formDescription = ""
		p.formType = serviceFormNew
		p.editingID = 0
	} else {
		*p.formName = svc.Name
		*p.formRate = svc.HourlyRate.StringFixed(2)
		*p.formDescription = svc.Description
		p.formType = serviceFormEdit
		p.editingID = svc.ID
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Service Name").Value(p.formName).Validate(validateName),
			huh.NewInput().Title("Hourly Rate (€)").Value(p.formRate).Validate(validateRate),
			huh.NewText().Title("Description").Value(p.formDescription),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return p, p.form.Init()
}

func (p servicesModel) showDeleteForm() (servicesModel, tea.Cmd) {
	svc := p.services[p.cursor]
	p.editingID = svc.ID
	p.formType = serviceFormDelete
	*p.formConfirm = false
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", svc.Name)).
				Description("All time entries of this service are deleted too.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(p.formConfirm),
		),
	)
	return p, p.form.Init()
}

func (p servicesModel) updateForm(msg tea.Msg) (servicesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		p.form = nil
		p.formType = serviceFormNone
		return p, nil
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	switch p.form.State {
	case huh.StateAborted:
		p.form = nil
		p.formType = serviceFormNone
		return p, nil
	case huh.StateCompleted:
		formType := p.formType
		p.form = nil
		p.formType = serviceFormNone
		return p, tea.Batch(p.submit(formType), p.refresh())
	}
	return p, cmd
}

func (p servicesModel) submit(formType servicesForm) tea.Cmd {
	switch formType {
	case serviceFormNew, serviceFormEdit:
		rate, err := parseRate(*p.formRate)
		if err != nil {
			return errorCmd(err)
		}
		if formType == serviceFormNew {
			svc, err := p.store.CreateService(*p.formName, rate, *p.formDescription)
			if err != nil {
				return errorCmd(err)
			}
			return statusCmd(fmt.Sprintf("Service %q added", svc.Name))
		}
		if err := p.store.UpdateService(p.editingID, *p.formName, rate, *p.formDescription); err != nil {
			return errorCmd(err)
		}
		return statusCmd("Service updated")

	case serviceFormDelete:
		if !*p.formConfirm {
			return nil
		}
		n, err := p.store.DeleteService(p.editingID)
		if err != nil {
			return errorCmd(err)
		}
		return statusCmd(fmt.Sprintf("Service deleted with %d time entr%s", n, plural(int(n), "y", "ies")))
	}
	return nil
}

func (p servicesModel) view() string {
	w := p.width - 4
	if p.form != nil {
		title := "New Service"
		switch p.formType {
		case serviceFormEdit:
			title = "Edit Service"
		case serviceFormDelete:
			title = "Delete Service"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", p.form.View())
		return panelStyle.Width(w).Render(content)
	}
	return p.renderServiceList(w)
}

func (p servicesModel) renderServiceList(w int) string {
	title := titleStyle.Render("Services")

	if len(p.services) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No services yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-30s %10s  %s", "", "Name", "Rate", "Description"))
	rows = append(rows, header)

	for i, svc := range p.services {
		dot := lipgloss.NewStyle().Foreground(serviceColor(i)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		row := style.Render(fmt.Sprintf("%s%s %-30s %10s  %s", cursor, dot,
			truncate(svc.Name, 30), formatMoney(svc.HourlyRate)+"/h", truncate(svc.Description, 40)))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
