package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	like     key.Binding
	schedule key.Binding
	menu     key.Binding
	login    key.Binding
	logout   key.Binding
	next     key.Binding
	register key.Binding
	google   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		like:     key.NewBinding(key.WithKeys(" ", "f"), key.WithHelp("space/f", "like")),
		schedule: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "add to schedule")),
		menu:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "menu")),
		login:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "sign in")),
		logout:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "sign out")),
		next:     key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		register: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "register/sign in")),
		google:   key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "google")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.menu, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.like, k.schedule, k.menu},
		{k.login, k.logout, k.quit},
	}
}
