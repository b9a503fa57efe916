package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	// Timer view
	Start  key.Binding
	Stop   key.Binding
	Manual key.Binding
	Select key.Binding

	// Services view
	New    key.Binding
	Edit   key.Binding
	Delete key.Binding

	// Reports view
	Filter  key.Binding
	Export  key.Binding
	Invoice key.Binding

	// Global
	Tab1  key.Binding
	Tab2  key.Binding
	Tab3  key.Binding
	Tab4  key.Binding
	Tab   key.Binding
	Help  key.Binding
	Enter key.Binding
	Back  key.Binding
	Up    key.Binding
	Down  key.Binding
	Quit  key.Binding
}

func bind(label, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

var keys = keyMap{
	Start:  bind("s", "start", "s"),
	Stop:   bind("x", "stop", "x"),
	Manual: bind("m", "manual entry", "m"),
	Select: bind("space", "select", " "),

	New:    bind("n", "new", "n"),
	Edit:   bind("e", "edit", "e"),
	Delete: bind("d", "delete", "d"),

	Filter:  bind("f", "filter", "f"),
	Export:  bind("e", "export", "e"),
	Invoice: bind("i", "invoice", "i"),

	Tab1:  bind("1", "timer", "1"),
	Tab2:  bind("2", "services", "2"),
	Tab3:  bind("3", "reports", "3"),
	Tab4:  bind("4", "invoices", "4"),
	Tab:   bind("tab", "next view", "tab"),
	Help:  bind("?", "help", "?"),
	Enter: bind("enter", "select", "enter"),
	Back:  bind("esc", "back", "esc"),
	Up:    bind("↑/k", "up", "up", "k"),
	Down:  bind("↓/j", "down", "down", "j"),
	Quit:  bind("q", "quit", "q", "ctrl+c"),
}

// ShortHelp and FullHelp list every binding; the footer uses helpFor.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Manual, k.Tab, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.Manual, k.Select},
		{k.New, k.Edit, k.Delete},
		{k.Filter, k.Export, k.Invoice},
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.Up, k.Down, k.Enter, k.Back, k.Quit},
	}
}

// viewKeys is the help.KeyMap shown for one view.
type viewKeys struct {
	local []key.Binding
}

func (v viewKeys) ShortHelp() []key.Binding {
	return append(append([]key.Binding{}, v.local...), keys.Tab, keys.Help, keys.Quit)
}

func (v viewKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		v.local,
		{keys.Up, keys.Down, keys.Enter, keys.Back},
		{keys.Tab1, keys.Tab2, keys.Tab3, keys.Tab4, keys.Tab},
		{keys.Help, keys.Quit},
	}
}

func helpFor(v viewState) viewKeys {
	switch v {
	case viewServices:
		return viewKeys{local: []key.Binding{keys.New, keys.Edit, keys.Delete}}
	case viewReports:
		return viewKeys{local: []key.Binding{keys.Filter, keys.Export, keys.Invoice}}
	case viewInvoices:
		return viewKeys{local: []key.Binding{keys.Up, keys.Down}}
	}
	return viewKeys{local: []key.Binding{keys.Start, keys.Stop, keys.Manual, keys.Select, keys.Delete}}
}
