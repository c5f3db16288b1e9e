// ABOUTME: Tests for listener control messages
// ABOUTME: Verifies classification of text frames and time ping payloads
package protocol

import "testing"

func TestParseControl(t *testing.T) {
	tests := []struct {
		input    string
		expected ControlKind
	}{
		{"play", ControlPlay},
		{"stop", ControlStop},
		{"mic_active", ControlMicActive},
		{"mic_muted", ControlMicMuted},
		{"time:12345", ControlTime},
		{"time:", ControlTime},
		{"PLAY", ControlUnknown},
		{"", ControlUnknown},
		{"times:1", ControlUnknown},
		{"mic_active ", ControlUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c := ParseControl(tt.input)
			if c.Kind != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, c.Kind)
			}
			if c.Raw != tt.input {
				t.Errorf("expected raw %q, got %q", tt.input, c.Raw)
			}
		})
	}
}

func TestTimePingValue(t *testing.T) {
	c := ParseControl(TimePing("1712:abc"))
	if c.Kind != ControlTime {
		t.Fatalf("expected time control, got %v", c.Kind)
	}
	if c.Value() != "1712:abc" {
		t.Errorf("expected value 1712:abc, got %q", c.Value())
	}
	if c.Raw != "time:1712:abc" {
		t.Errorf("raw must be kept verbatim, got %q", c.Raw)
	}
}

func TestValueOnNonTimeControl(t *testing.T) {
	if v := ParseControl(Play).Value(); v != "" {
		t.Errorf("expected empty value, got %q", v)
	}
}
