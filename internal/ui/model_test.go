// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, key handling and rendering helpers
package ui

import (
	"strings"
	"testing"

	isync "github.com/Resonate-Protocol/livelisten/internal/sync"
	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil, 80) // Controls are optional for testing

	if model.connection != "" {
		t.Errorf("expected no connection initially, got %q", model.connection)
	}

	if model.volume != 80 {
		t.Errorf("expected volume 80, got %d", model.volume)
	}

	if model.state != "idle" {
		t.Errorf("expected idle state, got %q", model.state)
	}

	if !model.showStats {
		t.Error("expected stats to be shown initially")
	}
}

func TestStatusMsgConnection(t *testing.T) {
	model := NewModel(nil, 100)

	model.applyStatus(StatusMsg{
		Connection:  "connected",
		ServerName:  "studio:8927",
		LinkQuality: isync.QualityDegraded,
	})

	if model.connection != "connected" {
		t.Errorf("expected connected, got %q", model.connection)
	}
	if model.serverName != "studio:8927" {
		t.Errorf("expected serverName 'studio:8927', got %q", model.serverName)
	}
	if model.linkQuality != isync.QualityDegraded {
		t.Errorf("expected QualityDegraded, got %v", model.linkQuality)
	}
}

func TestStatusMsgPartialUpdate(t *testing.T) {
	model := NewModel(nil, 100)

	muted := true
	model.applyStatus(StatusMsg{State: "muted", SenderMuted: &muted})
	model.applyStatus(StatusMsg{Connection: "reconnecting"})

	if model.state != "muted" {
		t.Errorf("state lost on partial update, got %q", model.state)
	}
	if !model.senderMuted {
		t.Error("senderMuted lost on partial update")
	}
}

func TestStatusMsgVolumeClamped(t *testing.T) {
	model := NewModel(nil, 100)

	volume := 150
	model.applyStatus(StatusMsg{Volume: &volume})

	if model.volume != 100 {
		t.Errorf("expected volume 100, got %d", model.volume)
	}

	// Zero is a real volume
	volume = 0
	model.applyStatus(StatusMsg{Volume: &volume})
	if model.volume != 0 {
		t.Errorf("expected volume 0, got %d", model.volume)
	}
}

func TestStatsMsgReplacesStats(t *testing.T) {
	model := NewModel(nil, 100)

	model.applyStats(StatsMsg{Line: "Buffer: 200ms (stable)", Packets: 10, Malformed: 1})

	if model.statsLine != "Buffer: 200ms (stable)" {
		t.Errorf("unexpected stats line %q", model.statsLine)
	}
	if model.packets != 10 || model.malformed != 1 {
		t.Errorf("expected 10/1 packets, got %d/%d", model.packets, model.malformed)
	}
}

func TestSpaceTogglesPlayback(t *testing.T) {
	controls := NewControls()
	model := NewModel(controls, 100)

	model.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	select {
	case <-controls.Toggle:
	default:
		t.Error("expected a toggle request")
	}
}

func TestVolumeKeys(t *testing.T) {
	controls := NewControls()
	model := NewModel(controls, 50)

	next, _ := model.Update(tea.KeyMsg{Type: tea.KeyUp})
	model = next.(Model)
	if model.volume != 55 {
		t.Errorf("expected volume 55, got %d", model.volume)
	}

	change := <-controls.Changes
	if change.Volume != 55 || change.Muted {
		t.Errorf("unexpected change %+v", change)
	}

	next, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	model = next.(Model)
	if !model.muted {
		t.Error("expected muted after m")
	}
	if change := <-controls.Changes; !change.Muted {
		t.Error("expected mute change")
	}
}

func TestQuitKeySignals(t *testing.T) {
	controls := NewControls()
	model := NewModel(controls, 100)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Error("expected quit command")
	}

	select {
	case <-controls.Quit:
	default:
		t.Error("expected quit signal")
	}
}

func TestViewShowsState(t *testing.T) {
	model := NewModel(nil, 100)
	model.width = 80

	model.applyStatus(StatusMsg{Connection: "connected", State: "playing"})
	view := model.View()

	if !strings.Contains(view, "PLAYING") {
		t.Errorf("view missing state: %s", view)
	}
	if !strings.Contains(view, "connected") {
		t.Errorf("view missing connection: %s", view)
	}
}

func TestSparkline(t *testing.T) {
	if got := sparkline(nil, 4); got != "▁▁▁▁" {
		t.Errorf("empty sparkline = %q", got)
	}

	samples := []float32{0, 0, -1, 1, 0.5, -0.5, 0, 0}
	got := []rune(sparkline(samples, 4))
	if len(got) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(got))
	}
	if got[0] != '▁' || got[1] != '█' {
		t.Errorf("unexpected sparkline %q", string(got))
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value    int
		expected string
	}{
		{0, "░░░░░░░░░░"},
		{50, "█████░░░░░"},
		{100, "██████████"},
	}

	for _, tt := range tests {
		if got := renderBar(tt.value, 100, 10); got != tt.expected {
			t.Errorf("renderBar(%d) = %q, expected %q", tt.value, got, tt.expected)
		}
	}
}
