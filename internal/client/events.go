// ABOUTME: Events and states of the connection state machine
// ABOUTME: Every input to the manager loop is an Event tagged with a generation
package client

import "time"

// State is the connection state
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	AwaitingReconnect
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case AwaitingReconnect:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// EventKind identifies an input to the state machine
type EventKind int

const (
	ConnectRequested EventKind = iota
	DialSucceeded
	DialFailed
	Closed
	MessageReceived
	HeartbeatTick
	ReconnectTick
	StartRequested
	StopRequested
)

func (k EventKind) String() string {
	switch k {
	case ConnectRequested:
		return "connect_requested"
	case DialSucceeded:
		return "dial_succeeded"
	case DialFailed:
		return "dial_failed"
	case Closed:
		return "closed"
	case MessageReceived:
		return "message_received"
	case HeartbeatTick:
		return "heartbeat_tick"
	case ReconnectTick:
		return "reconnect_tick"
	case StartRequested:
		return "start_requested"
	case StopRequested:
		return "stop_requested"
	default:
		return "unknown"
	}
}

// MessageType distinguishes text control frames from binary audio frames
type MessageType int

const (
	TextMessage MessageType = iota
	BinaryMessage
)

// Message is one frame read from a transport
type Message struct {
	Type    MessageType
	Data    []byte
	Arrival time.Time
}

// Event is processed by the manager loop. Generation ties transport events
// to the transport that produced them; events from an older transport are
// dropped. Timer and user events ignore it.
type Event struct {
	Kind       EventKind
	Generation uint64
	Conn       Conn
	Err        error
	Message    Message
}

// envelope carries an event into the loop. done is closed once handled.
type envelope struct {
	event Event
	done  chan struct{}
}
