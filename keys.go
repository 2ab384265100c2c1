package main

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the TUI bindings.
type keyMap struct {
	Quit       key.Binding
	Reduce     key.Binding
	SwitchPane key.Binding
	Menu       key.Binding
	LaTeX      key.Binding
	Mode       key.Binding
	Save       key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Confirm    key.Binding
	Back       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("^C", "quit")),
		Reduce:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^R", "reduce")),
		SwitchPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "switch focus")),
		Menu:       key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("^G", "insert gate")),
		LaTeX:      key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("^L", "plain/LaTeX")),
		Mode:       key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("^T", "expr/QASM")),
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^S", "save steps")),
		Up:         key.NewBinding(key.WithKeys("up", "k")),
		Down:       key.NewBinding(key.WithKeys("down", "j")),
		Left:       key.NewBinding(key.WithKeys("left", "h")),
		Right:      key.NewBinding(key.WithKeys("right", "l")),
		Confirm:    key.NewBinding(key.WithKeys("enter")),
		Back:       key.NewBinding(key.WithKeys("esc")),
	}
}

// help lists the global bindings for the controls bar.
func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Reduce, k.SwitchPane, k.Menu, k.LaTeX, k.Mode, k.Save, k.Quit}
}
