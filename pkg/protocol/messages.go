// ABOUTME: Text control message definitions for the listener protocol
// ABOUTME: Parses and builds play/stop, mic status and liveness messages
package protocol

import "strings"

// Control messages exchanged as UTF-8 text frames
const (
	Play      = "play"
	Stop      = "stop"
	MicActive = "mic_active"
	MicMuted  = "mic_muted"

	// TimePrefix starts a liveness ping. The whole message is echoed back
	// verbatim by the listener.
	TimePrefix = "time:"
)

// ControlKind classifies an inbound text frame
type ControlKind int

const (
	ControlUnknown ControlKind = iota
	ControlPlay
	ControlStop
	ControlMicActive
	ControlMicMuted
	ControlTime
)

func (k ControlKind) String() string {
	switch k {
	case ControlPlay:
		return Play
	case ControlStop:
		return Stop
	case ControlMicActive:
		return MicActive
	case ControlMicMuted:
		return MicMuted
	case ControlTime:
		return "time"
	default:
		return "unknown"
	}
}

// Control is a parsed text frame
type Control struct {
	Kind ControlKind
	Raw  string
}

// Value returns the opaque part of a time ping
func (c Control) Value() string {
	if c.Kind != ControlTime {
		return ""
	}
	return strings.TrimPrefix(c.Raw, TimePrefix)
}

// ParseControl classifies a text frame. Anything unrecognised is reported
// as ControlUnknown and must be ignored by the receiver.
func ParseControl(msg string) Control {
	c := Control{Raw: msg}

	switch {
	case msg == Play:
		c.Kind = ControlPlay
	case msg == Stop:
		c.Kind = ControlStop
	case msg == MicActive:
		c.Kind = ControlMicActive
	case msg == MicMuted:
		c.Kind = ControlMicMuted
	case strings.HasPrefix(msg, TimePrefix):
		c.Kind = ControlTime
	default:
		c.Kind = ControlUnknown
	}

	return c
}

// TimePing builds a liveness ping carrying value
func TimePing(value string) string {
	return TimePrefix + value
}
