// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and the key-driven control channels
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// VolumeChangeMsg is a local volume or mute change
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// Controls carries user actions out of the TUI
type Controls struct {
	Changes chan VolumeChangeMsg
	Toggle  chan struct{}
	Quit    chan struct{}
}

// NewControls creates the control channels
func NewControls() *Controls {
	return &Controls{
		Changes: make(chan VolumeChangeMsg, 10),
		Toggle:  make(chan struct{}, 10),
		Quit:    make(chan struct{}, 1),
	}
}

func (c *Controls) volume(volume int, muted bool) {
	if c == nil {
		return
	}
	select {
	case c.Changes <- VolumeChangeMsg{Volume: volume, Muted: muted}:
	default:
	}
}

func (c *Controls) toggle() {
	if c == nil {
		return
	}
	select {
	case c.Toggle <- struct{}{}:
	default:
	}
}

func (c *Controls) quit() {
	if c == nil {
		return
	}
	select {
	case c.Quit <- struct{}{}:
	default:
	}
}

// NewModel creates a new TUI model
func NewModel(controls *Controls, volume int) Model {
	return Model{
		volume:    clampVolume(volume),
		state:     "idle",
		showStats: true,
		controls:  controls,
	}
}

// Run creates the TUI program; the caller runs it
func Run(controls *Controls, volume int, showStats bool) *tea.Program {
	m := NewModel(controls, volume)
	m.showStats = showStats
	return tea.NewProgram(m, tea.WithAltScreen())
}
