package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextTab  key.Binding
	PrevTab  key.Binding
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Refresh  key.Binding
	NewRun   key.Binding
	Stop     key.Binding
	Pause    key.Binding
	Resume   key.Binding
	Filter   key.Binding
	ClearFlt key.Binding
	Sort     key.Binding
	Order    key.Binding
	Dismiss  key.Binding
	Theme    key.Binding
	Logout   key.Binding
	Back     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		NewRun:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new run")),
		Stop:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop run")),
		Pause:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause run")),
		Resume:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "resume run")),
		Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		ClearFlt: key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "clear filters")),
		Sort:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort key")),
		Order:    key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "sort order")),
		Dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss toast")),
		Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle theme")),
		Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
