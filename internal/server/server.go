// ABOUTME: Development streaming server for the listener protocol
// ABOUTME: Manages WebSocket clients, liveness pings, play/stop and mic status
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/livelisten/internal/discovery"
	"github.com/Resonate-Protocol/livelisten/pkg/audio"
	"github.com/Resonate-Protocol/livelisten/pkg/protocol"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPort         = 8927
	DefaultRateKHz      = 16
	DefaultFrameMs      = 20
	DefaultFrequency    = 440.0
	DefaultPingInterval = time.Second

	sendBuffer    = 100
	pingExpiry    = 30 * time.Second
	writeDeadline = 10 * time.Second
)

// Config holds server configuration
type Config struct {
	Port       int
	Name       string
	Path       string
	EnableMDNS bool
	Debug      bool
	UseTUI     bool

	// Stream format
	Codec     audio.Codec
	RateKHz   int
	FrameMs   int
	Frequency float64

	// PingInterval is the time:<ms> cadence
	PingInterval time.Duration

	// MuteEvery toggles the mic status on this period, zero disables
	MuteEvery time.Duration
}

// Server represents the dev server
type Server struct {
	config   Config
	serverID string
	logger   *log.Logger

	// WebSocket upgrader
	upgrader websocket.Upgrader

	// HTTP server
	httpServer *http.Server
	mux        *http.ServeMux

	// Client management
	clients   map[string]*Client
	clientsMu sync.RWMutex

	engine      *AudioEngine
	mdnsManager *discovery.Manager
	micMuted    atomic.Bool

	tui *ServerTUI

	// Control
	stopChan   chan struct{}
	stopOnce   sync.Once // Ensure Stop() is only called once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// Client represents a connected listener
type Client struct {
	ID         string
	RemoteAddr string
	Conn       *websocket.Conn

	playing  atomic.Bool
	sendChan chan outbound

	mu       sync.Mutex
	pingSent map[string]time.Time
	rtt      time.Duration
}

// outbound is a queued frame
type outbound struct {
	binary bool
	data   []byte
}

// New creates a server. Zero config fields take the defaults.
func New(config Config) (*Server, error) {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Name == "" {
		config.Name = "livelisten-server"
	}
	if config.Path == "" {
		config.Path = "/"
	}
	if config.RateKHz == 0 {
		config.RateKHz = DefaultRateKHz
	}
	if config.FrameMs == 0 {
		config.FrameMs = DefaultFrameMs
	}
	if config.Frequency == 0 {
		config.Frequency = DefaultFrequency
	}
	if config.PingInterval == 0 {
		config.PingInterval = DefaultPingInterval
	}

	mux := http.NewServeMux()

	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		logger:   log.WithPrefix("server"),
		mux:      mux,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Designed for trusted local networks only
				return true
			},
		},
		clients:  make(map[string]*Client),
		stopChan: make(chan struct{}),
	}

	engine, err := NewAudioEngine(s)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio engine: %w", err)
	}
	s.engine = engine

	mux.HandleFunc(config.Path, s.handleWebSocket)

	return s, nil
}

// Handler returns the HTTP handler serving the websocket endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Engine returns the audio engine
func (s *Server) Engine() *AudioEngine {
	return s.engine
}

// Start starts the server and blocks until Stop, a TUI quit or an HTTP error
func (s *Server) Start() error {
	if s.config.UseTUI {
		s.tui = NewServerTUI()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.tui.Start(s.config.Name, s.config.Port); err != nil {
				s.logger.Errorf("TUI error: %v", err)
			}
		}()
	}

	s.logger.Infof("Server starting: %s (ID: %s)", s.config.Name, s.serverID)

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
			Path:        s.config.Path,
			ServerMode:  true,
		})

		if err := s.mdnsManager.Advertise(); err != nil {
			s.logger.Warnf("Failed to start mDNS advertisement: %v", err)
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.engine.Start()
	}()

	if s.config.MuteEvery > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.toggleMuteLoop()
		}()
	}

	if s.tui != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.tuiLoop()
		}()
	}

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.logger.Infof("WebSocket server listening on %s%s", addr, s.config.Path)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serverErr error
	var tuiQuitChan <-chan struct{}
	if s.tui != nil {
		tuiQuitChan = s.tui.QuitChan()
	}

	select {
	case <-s.stopChan:
		s.logger.Info("Server shutting down...")
	case <-tuiQuitChan:
		s.logger.Info("TUI quit requested, shutting down...")
		s.Stop()
	case err := <-errChan:
		s.logger.Errorf("HTTP server error: %v", err)
		serverErr = err
		s.Stop()
	}

	// Reject new connections from here on
	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	if s.tui != nil {
		s.tui.Stop()
	}

	s.engine.Stop()

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warnf("HTTP server shutdown error: %v", err)
	}
	s.closeClients()

	s.wg.Wait()
	s.logger.Info("Server stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// SetMicMuted records the sender mic status and tells every client
func (s *Server) SetMicMuted(muted bool) {
	s.micMuted.Store(muted)
	msg := micMessage(muted)

	s.logger.Infof("Mic status: %s", msg)

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, client := range s.clients {
		s.sendText(client, msg)
	}
}

// MicMuted reports the current mic status
func (s *Server) MicMuted() bool {
	return s.micMuted.Load()
}

func micMessage(muted bool) string {
	if muted {
		return protocol.MicMuted
	}
	return protocol.MicActive
}

// toggleMuteLoop flips the mic status every MuteEvery
func (s *Server) toggleMuteLoop() {
	ticker := time.NewTicker(s.config.MuteEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SetMicMuted(!s.MicMuted())
		case <-s.stopChan:
			return
		}
	}
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.shutdownMu.RLock()
	shutdown := s.isShutdown
	s.shutdownMu.RUnlock()
	if shutdown {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade error: %v", err)
		return
	}

	s.logger.Infof("New WebSocket connection from %s", r.RemoteAddr)

	client := &Client{
		ID:         uuid.New().String(),
		RemoteAddr: r.RemoteAddr,
		Conn:       conn,
		sendChan:   make(chan outbound, sendBuffer),
		pingSent:   make(map[string]time.Time),
	}

	s.handleConnection(r.Context(), client)
}

// handleConnection runs the reader, writer and pinger of one client
func (s *Server) handleConnection(ctx context.Context, client *Client) {
	defer client.Conn.Close()

	s.clientsMu.Lock()
	s.clients[client.ID] = client
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client.ID)
		s.clientsMu.Unlock()
		s.logger.Infof("Client disconnected: %s", client.RemoteAddr)
	}()

	if s.MicMuted() {
		s.sendText(client, protocol.MicMuted)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.clientWriter(gctx, client)
	})

	g.Go(func() error {
		return s.clientPinger(gctx, client)
	})

	g.Go(func() error {
		// Unblock the reader once a sibling fails
		<-gctx.Done()
		client.Conn.Close()
		return nil
	})

	g.Go(func() error {
		defer client.Conn.Close()
		for {
			messageType, data, err := client.Conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					s.logger.Warnf("WebSocket error: %v", err)
				}
				return fmt.Errorf("read: %w", err)
			}
			if messageType == websocket.TextMessage {
				s.handleClientMessage(client, string(data))
			}
		}
	})

	if err := g.Wait(); err != nil && s.config.Debug {
		s.logger.Debugf("Connection %s ended: %v", client.RemoteAddr, err)
	}
}

// clientWriter sends queued frames to the client
func (s *Server) clientWriter(ctx context.Context, client *Client) error {
	for {
		select {
		case msg := <-client.sendChan:
			messageType := websocket.TextMessage
			if msg.binary {
				messageType = websocket.BinaryMessage
			}

			client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := client.Conn.WriteMessage(messageType, msg.data); err != nil {
				return fmt.Errorf("write: %w", err)
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// clientPinger sends time:<unix-ms> liveness pings
func (s *Server) clientPinger(ctx context.Context, client *Client) error {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			value := strconv.FormatInt(now.UnixMilli(), 10)

			client.mu.Lock()
			for v, sent := range client.pingSent {
				if now.Sub(sent) > pingExpiry {
					delete(client.pingSent, v)
				}
			}
			client.pingSent[value] = now
			client.mu.Unlock()

			s.sendText(client, protocol.TimePing(value))

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// handleClientMessage processes text frames from clients
func (s *Server) handleClientMessage(client *Client, text string) {
	ctl := protocol.ParseControl(text)

	switch ctl.Kind {
	case protocol.ControlPlay:
		client.playing.Store(true)
		s.logger.Infof("Client %s: play", client.RemoteAddr)

	case protocol.ControlStop:
		client.playing.Store(false)
		s.logger.Infof("Client %s: stop", client.RemoteAddr)

	case protocol.ControlTime:
		s.handlePingEcho(client, ctl.Value())

	default:
		s.logger.Debugf("Unknown message from %s: %q", client.RemoteAddr, text)
	}
}

// handlePingEcho computes the round trip of an echoed ping
func (s *Server) handlePingEcho(client *Client, value string) {
	client.mu.Lock()
	sent, ok := client.pingSent[value]
	if ok {
		delete(client.pingSent, value)
		client.rtt = time.Since(sent)
	}
	rtt := client.rtt
	client.mu.Unlock()

	if !ok {
		s.logger.Debugf("Unexpected echo %q from %s", value, client.RemoteAddr)
		return
	}
	if s.config.Debug {
		s.logger.Debugf("RTT %s: %v", client.RemoteAddr, rtt)
	}
}

// sendText queues a text frame, dropping it if the client is backed up
func (s *Server) sendText(client *Client, text string) bool {
	return s.enqueue(client, outbound{data: []byte(text)})
}

// broadcastAudio queues frame for every playing client and returns how many
// accepted it
func (s *Server) broadcastAudio(frame []byte) int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	n := 0
	for _, client := range s.clients {
		if !client.playing.Load() {
			continue
		}
		if s.enqueue(client, outbound{binary: true, data: frame}) {
			n++
		}
	}
	return n
}

func (s *Server) enqueue(client *Client, msg outbound) bool {
	select {
	case client.sendChan <- msg:
		return true
	default:
		s.logger.Debugf("Client %s send buffer full, dropping frame", client.RemoteAddr)
		return false
	}
}

// playingClients counts clients that asked for audio
func (s *Server) playingClients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	n := 0
	for _, client := range s.clients {
		if client.playing.Load() {
			n++
		}
	}
	return n
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// closeClients drops every connection
func (s *Server) closeClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, client := range s.clients {
		client.Conn.Close()
	}
}

// RTT returns the last measured round trip of a client
func (c *Client) RTT() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rtt
}

// Playing reports whether the client asked for audio
func (c *Client) Playing() bool {
	return c.playing.Load()
}
