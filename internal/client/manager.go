// ABOUTME: Connection manager state machine
// ABOUTME: Owns the transport, heartbeat watchdog, reconnect loop and control messages
package client

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	isync "github.com/Resonate-Protocol/livelisten/internal/sync"
	"github.com/Resonate-Protocol/livelisten/pkg/protocol"
	"github.com/charmbracelet/log"
)

// Default timings
const (
	DefaultHeartbeatInterval = 1000 * time.Millisecond
	DefaultHeartbeatTimeout  = 3000 * time.Millisecond
	DefaultReconnectInterval = 2000 * time.Millisecond
)

// Config holds manager configuration
type Config struct {
	URL               string
	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration
	ReconnectInterval time.Duration

	// Autoplay requests playback as soon as Run starts
	Autoplay bool

	Clock    isync.Clock
	NewTimer TimerFactory
}

// Handler receives what the manager delivers. All calls happen on the
// manager loop goroutine, in order.
type Handler interface {
	// HandleAudio gets binary frames while playback is requested and the
	// sender is not muted
	HandleAudio(frame []byte, arrival time.Time)

	// HandleMicStatus reports mic_active / mic_muted
	HandleMicStatus(muted bool)

	// HandleStateChange reports every connection state transition
	HandleStateChange(state State)

	// HandlePlayback reports Start and Stop
	HandlePlayback(playing bool)
}

// Manager runs the connection state machine. All state below the
// published fields is owned by the Run goroutine.
type Manager struct {
	config  Config
	dialer  Dialer
	handler Handler
	logger  *log.Logger

	events chan envelope
	done   chan struct{}
	ctx    context.Context

	// published for other goroutines
	state      atomic.Int32
	generation atomic.Uint64
	muted      atomic.Bool

	conn          Conn
	playing       bool
	lastHeartbeat *isync.Liveness
	heartbeat     Timer
	reconnect     Timer
}

// NewManager creates a manager. Zero durations take the defaults.
func NewManager(config Config, dialer Dialer, handler Handler) *Manager {
	if config.HeartbeatInterval <= 0 {
		config.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if config.HeartbeatTimeout <= 0 {
		config.HeartbeatTimeout = DefaultHeartbeatTimeout
	}
	if config.ReconnectInterval <= 0 {
		config.ReconnectInterval = DefaultReconnectInterval
	}
	if config.Clock == nil {
		config.Clock = isync.SystemClock{}
	}
	if config.NewTimer == nil {
		config.NewTimer = NewTicker
	}

	return &Manager{
		config:        config,
		dialer:        dialer,
		handler:       handler,
		logger:        log.WithPrefix("client"),
		events:        make(chan envelope, 256),
		done:          make(chan struct{}),
		playing:       config.Autoplay,
		lastHeartbeat: isync.NewLiveness(config.Clock, config.HeartbeatTimeout),
	}
}

// State returns the current connection state
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Generation returns the tag of the current transport
func (m *Manager) Generation() uint64 {
	return m.generation.Load()
}

// SenderMuted reports whether the sender announced mic_muted
func (m *Manager) SenderMuted() bool {
	return m.muted.Load()
}

// LinkQuality classifies the time since the last heartbeat
func (m *Manager) LinkQuality() isync.Quality {
	if m.State() != Connected {
		return isync.QualityLost
	}
	return m.lastHeartbeat.Quality()
}

// Start requests playback
func (m *Manager) Start() {
	m.post(Event{Kind: StartRequested})
}

// Stop halts playback
func (m *Manager) Stop() {
	m.post(Event{Kind: StopRequested})
}

// Handle injects an event and waits until the loop has processed it
func (m *Manager) Handle(ev Event) {
	env := envelope{event: ev, done: make(chan struct{})}

	select {
	case m.events <- env:
	case <-m.done:
		return
	}

	select {
	case <-env.done:
	case <-m.done:
	}
}

// post queues an event without waiting. It reports false once Run has
// returned.
func (m *Manager) post(ev Event) bool {
	select {
	case m.events <- envelope{event: ev}:
		return true
	case <-m.done:
		return false
	}
}

// Run connects and processes events until ctx is cancelled. Both timers are
// stopped and the transport closed before it returns.
func (m *Manager) Run(ctx context.Context) error {
	m.ctx = ctx
	defer m.drain()
	defer m.shutdown()

	if m.playing {
		m.handler.HandlePlayback(true)
	}
	m.dispatch(Event{Kind: ConnectRequested})

	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-m.events:
			m.dispatch(env.event)
			if env.done != nil {
				close(env.done)
			}
		}
	}
}

// dispatch applies one event to the state machine
func (m *Manager) dispatch(ev Event) {
	switch ev.Kind {
	case ConnectRequested:
		if m.State() == Disconnected || m.State() == AwaitingReconnect {
			m.connect()
		}

	case DialSucceeded:
		m.onDialSucceeded(ev)

	case DialFailed:
		if ev.Generation != m.Generation() || m.State() != Connecting {
			return
		}
		m.logger.Warnf("Connection failed: %v", ev.Err)
		m.awaitReconnect()

	case Closed:
		if ev.Generation != m.Generation() || m.State() != Connected {
			return
		}
		m.logger.Warnf("Connection closed: %v", ev.Err)
		m.connectionLost()

	case MessageReceived:
		if ev.Generation != m.Generation() || m.State() != Connected {
			return
		}
		m.onMessage(ev.Message)

	case HeartbeatTick:
		if m.State() != Connected {
			return
		}
		if m.lastHeartbeat.Expired() {
			m.logger.Warnf("No heartbeat for %v, reconnecting", m.lastHeartbeat.Since().Round(time.Millisecond))
			m.connectionLost()
		}

	case ReconnectTick:
		if m.State() == AwaitingReconnect {
			m.connect()
		}

	case StartRequested:
		m.playing = true
		m.handler.HandlePlayback(true)
		m.send(protocol.Play)

	case StopRequested:
		m.playing = false
		m.send(protocol.Stop)
		m.handler.HandlePlayback(false)
	}
}

// connect dials off-loop; the result comes back as an event
func (m *Manager) connect() {
	gen := m.generation.Add(1)
	m.setState(Connecting)
	m.logger.Infof("Connecting to %s", m.config.URL)

	ctx := m.ctx
	go func() {
		conn, err := m.dialer.Dial(ctx, m.config.URL)
		if err != nil {
			m.post(Event{Kind: DialFailed, Generation: gen, Err: err})
			return
		}
		if !m.post(Event{Kind: DialSucceeded, Generation: gen, Conn: conn}) {
			conn.Close()
		}
	}()
}

func (m *Manager) onDialSucceeded(ev Event) {
	if ev.Generation != m.Generation() || m.State() != Connecting {
		ev.Conn.Close()
		return
	}

	m.conn = ev.Conn
	m.stopReconnect()
	m.lastHeartbeat.Beat()
	m.startHeartbeat()
	m.setState(Connected)
	m.logger.Info("Connected")

	go m.readLoop(ev.Generation, ev.Conn)

	if m.playing {
		m.send(protocol.Play)
	}
}

// readLoop forwards frames from one transport until it fails
func (m *Manager) readLoop(gen uint64, conn Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			m.post(Event{Kind: Closed, Generation: gen, Err: err})
			return
		}

		m.post(Event{
			Kind:       MessageReceived,
			Generation: gen,
			Message: Message{
				Type:    msgType,
				Data:    data,
				Arrival: m.config.Clock.Now(),
			},
		})
	}
}

func (m *Manager) onMessage(msg Message) {
	if msg.Type == BinaryMessage {
		if m.playing && !m.muted.Load() {
			m.handler.HandleAudio(msg.Data, msg.Arrival)
		}
		return
	}

	ctl := protocol.ParseControl(string(msg.Data))
	switch ctl.Kind {
	case protocol.ControlTime:
		m.lastHeartbeat.Beat()
		m.send(ctl.Raw)

	case protocol.ControlMicMuted:
		m.muted.Store(true)
		m.handler.HandleMicStatus(true)

	case protocol.ControlMicActive:
		m.muted.Store(false)
		m.handler.HandleMicStatus(false)

	default:
		m.logger.Debugf("Ignoring message %q", ctl.Raw)
	}
}

// send writes a text frame when connected. A failed write drops the link.
func (m *Manager) send(text string) {
	if m.State() != Connected || m.conn == nil {
		return
	}
	if err := m.conn.WriteText(text); err != nil {
		m.logger.Warnf("Failed to send %q: %v", text, err)
		m.connectionLost()
	}
}

// connectionLost tears down the transport and waits for the reconnect timer
func (m *Manager) connectionLost() {
	m.stopHeartbeat()
	m.closeConn()
	m.awaitReconnect()
}

func (m *Manager) awaitReconnect() {
	// Bump the generation so late events from the old transport are stale
	m.generation.Add(1)
	m.startReconnect()
	m.setState(AwaitingReconnect)
}

func (m *Manager) closeConn() {
	if m.conn == nil {
		return
	}
	if err := m.conn.Close(); err != nil && !errors.Is(err, ErrConnClosed) {
		m.logger.Debugf("Close: %v", err)
	}
	m.conn = nil
}

func (m *Manager) startHeartbeat() {
	if m.heartbeat != nil {
		return
	}
	m.heartbeat = m.config.NewTimer(m.config.HeartbeatInterval, func() {
		m.post(Event{Kind: HeartbeatTick})
	})
}

func (m *Manager) stopHeartbeat() {
	if m.heartbeat != nil {
		m.heartbeat.Stop()
		m.heartbeat = nil
	}
}

func (m *Manager) startReconnect() {
	if m.reconnect != nil {
		return
	}
	m.reconnect = m.config.NewTimer(m.config.ReconnectInterval, func() {
		m.post(Event{Kind: ReconnectTick})
	})
}

func (m *Manager) stopReconnect() {
	if m.reconnect != nil {
		m.reconnect.Stop()
		m.reconnect = nil
	}
}

func (m *Manager) setState(s State) {
	if State(m.state.Swap(int32(s))) == s {
		return
	}
	m.logger.Debugf("State -> %s", s)
	m.handler.HandleStateChange(s)
}

// drain closes transports whose dial finished while the loop was exiting
func (m *Manager) drain() {
	close(m.done)
	for {
		select {
		case env := <-m.events:
			if env.event.Kind == DialSucceeded && env.event.Conn != nil {
				env.event.Conn.Close()
			}
		default:
			return
		}
	}
}

func (m *Manager) shutdown() {
	m.stopHeartbeat()
	m.stopReconnect()
	m.closeConn()
	m.generation.Add(1)
	m.setState(Disconnected)
}
