// ABOUTME: Bubbletea model for the listener TUI
// ABOUTME: Renders connection, playback, buffer statistics and a waveform sparkline
package ui

import (
	"fmt"
	"strings"

	isync "github.com/Resonate-Protocol/livelisten/internal/sync"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	volumeStep     = 5
	sparklineWidth = 48
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Model represents the TUI state
type Model struct {
	// Connection
	connection  string
	serverName  string
	linkQuality isync.Quality

	// Playback
	state       string
	senderMuted bool
	volume      int
	muted       bool

	// Stats
	statsLine string
	packets   int64
	malformed int64
	waveform  []float32
	showStats bool

	controls *Controls

	// Dimensions
	width  int
	height int
}

// StatusMsg updates connection and playback state. Empty fields are left
// unchanged.
type StatusMsg struct {
	Connection  string
	ServerName  string
	LinkQuality isync.Quality
	State       string
	SenderMuted *bool
	Volume      *int
	Muted       *bool
}

// StatsMsg carries one statistics refresh
type StatsMsg struct {
	Line      string
	Packets   int64
	Malformed int64
	Waveform  []float32
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case StatsMsg:
		m.applyStats(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderPlayback())
	b.WriteString(m.renderWaveform())
	if m.showStats {
		b.WriteString(m.renderStats())
	}
	b.WriteString(m.renderHelp())

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Render(b.String())
}

// renderHeader renders connection status
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Render("LiveListen")

	conn := m.connection
	if conn == "" {
		conn = "disconnected"
	}
	if m.serverName != "" {
		conn = fmt.Sprintf("%s (%s)", conn, m.serverName)
	}

	linkIcon := "✗"
	switch m.linkQuality {
	case isync.QualityGood:
		linkIcon = "✓"
	case isync.QualityDegraded:
		linkIcon = "⚠"
	}

	return fmt.Sprintf("%s\nServer: %s\nLink:   %s %s\n\n", title, conn, linkIcon, m.linkQuality)
}

// renderPlayback renders state and volume
func (m Model) renderPlayback() string {
	state := m.state
	if state == "" {
		state = "idle"
	}

	color := lipgloss.Color("250")
	switch state {
	case "playing":
		color = lipgloss.Color("46")
	case "muted":
		color = lipgloss.Color("196")
	}
	stateText := lipgloss.NewStyle().Bold(true).Foreground(color).Render(strings.ToUpper(state))

	muteIcon := ""
	if m.muted {
		muteIcon = " 🔇"
	}

	s := fmt.Sprintf("State:  %s\n", stateText)
	if m.senderMuted {
		s += "        (sender microphone muted)\n"
	}
	s += fmt.Sprintf("Volume: [%s] %d%%%s\n\n", renderBar(m.volume, 100, 10), m.volume, muteIcon)
	return s
}

// renderWaveform renders the recent samples as a sparkline
func (m Model) renderWaveform() string {
	return sparkline(m.waveform, sparklineWidth) + "\n\n"
}

// renderStats renders buffer statistics
func (m Model) renderStats() string {
	line := m.statsLine
	if line == "" {
		line = "(no statistics yet)"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Render(line) +
		fmt.Sprintf("\nPackets: %d  Malformed: %d\n\n", m.packets, m.malformed)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return lipgloss.NewStyle().Faint(true).Render("space:Play/Stop  ↑/↓:Volume  m:Mute  s:Stats  q:Quit")
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.controls.quit()
		return m, tea.Quit
	case " ":
		m.controls.toggle()
	case "up":
		m.volume = clampVolume(m.volume + volumeStep)
		m.controls.volume(m.volume, m.muted)
	case "down":
		m.volume = clampVolume(m.volume - volumeStep)
		m.controls.volume(m.volume, m.muted)
	case "m":
		m.muted = !m.muted
		m.controls.volume(m.volume, m.muted)
	case "s":
		m.showStats = !m.showStats
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Connection != "" {
		m.connection = msg.Connection
		m.linkQuality = msg.LinkQuality
	}
	if msg.ServerName != "" {
		m.serverName = msg.ServerName
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.SenderMuted != nil {
		m.senderMuted = *msg.SenderMuted
	}
	if msg.Volume != nil {
		m.volume = clampVolume(*msg.Volume)
	}
	if msg.Muted != nil {
		m.muted = *msg.Muted
	}
}

// applyStats replaces the statistics
func (m *Model) applyStats(msg StatsMsg) {
	m.statsLine = msg.Line
	m.packets = msg.Packets
	m.malformed = msg.Malformed
	m.waveform = msg.Waveform
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func renderBar(value, max, width int) string {
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// sparkline folds samples into width columns of peak amplitude
func sparkline(samples []float32, width int) string {
	if len(samples) == 0 {
		return strings.Repeat(string(sparkLevels[0]), width)
	}

	var b strings.Builder
	for col := 0; col < width; col++ {
		start := col * len(samples) / width
		end := (col + 1) * len(samples) / width
		if end <= start {
			end = start + 1
		}
		if end > len(samples) {
			end = len(samples)
		}

		var peak float32
		for _, s := range samples[start:end] {
			if s < 0 {
				s = -s
			}
			if s > peak {
				peak = s
			}
		}
		if peak > 1 {
			peak = 1
		}

		b.WriteRune(sparkLevels[int(peak*float32(len(sparkLevels)-1)+0.5)])
	}
	return b.String()
}
