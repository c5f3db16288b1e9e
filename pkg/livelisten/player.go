// ABOUTME: Listener session wiring connection, pipeline and output
// ABOUTME: Exposes start/stop, volume, status, statistics and waveform
package livelisten

import (
	"context"
	"fmt"
	"time"

	"github.com/Resonate-Protocol/livelisten/internal/client"
	"github.com/Resonate-Protocol/livelisten/internal/metrics"
	"github.com/Resonate-Protocol/livelisten/internal/player"
	isync "github.com/Resonate-Protocol/livelisten/internal/sync"
	"github.com/Resonate-Protocol/livelisten/pkg/audio/output"
	"github.com/Resonate-Protocol/livelisten/pkg/jitter"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PlayerConfig holds player configuration
type PlayerConfig struct {
	// ServerAddr is the server address (host:port)
	ServerAddr string

	// Path is the websocket path on the server (default "/")
	Path string

	// PlayerName is the display name for this player
	PlayerName string

	// Volume is the initial volume (0-100)
	Volume int

	// SampleRate is the output rate (default 44100)
	SampleRate int

	// VisualSamples is the waveform window length (default 2048)
	VisualSamples int

	// Buffer bounds in seconds (defaults 0.15 and 1.2)
	MinBuffer float64
	MaxBuffer float64

	// Jitter estimator tuning (defaults 4 and 2000)
	TailFactor float64
	WindowSize int

	// Connection timings (defaults 1s, 3s, 2s)
	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration
	ReconnectInterval time.Duration

	// Autoplay requests the stream as soon as Run starts
	Autoplay bool

	// Sink plays audio. Nil means the sound card via oto.
	Sink output.Sink

	// Dialer opens transports. Nil means gorilla/websocket.
	Dialer client.Dialer

	// Clock and NewTimer are injectable for tests
	Clock    isync.Clock
	NewTimer client.TimerFactory

	// Metrics receives pipeline measurements. Nil records nothing.
	Metrics *metrics.Metrics

	// OnStateChange is called when the status changes
	OnStateChange func(Status)
}

// Status describes what the listener is doing
type Status struct {
	State       string // "idle", "muted" or "playing"
	Connection  client.State
	Volume      int
	Muted       bool
	SenderMuted bool
	SessionID   string
}

// Stats contains buffer and link statistics
type Stats struct {
	MeanBufferMs  float64
	BufferMs      float64
	RecommendedMs float64
	TargetMs      float64
	StdDevMs      float64
	Gaps          int
	Trend         player.Trend
	Rate          float64
	Connection    client.State
	LinkQuality   isync.Quality
	Packets       int64
	Malformed     int64
}

// String formats the stats line shown by the UI
func (s Stats) String() string {
	return fmt.Sprintf("Buffer: %.0fms (%s) | Recommended: %.0fms | Target: %.0fms | Std Dev: %.1fms | Gaps (last min): %d",
		s.MeanBufferMs, s.Trend, s.RecommendedMs, s.TargetMs, s.StdDevMs, s.Gaps)
}

// Player is one listener session
type Player struct {
	config    PlayerConfig
	sessionID string

	manager    *client.Manager
	pipeline   *pipeline
	visualizer *player.Visualizer
	sink       output.Sink
}

// NewPlayer creates a new player with the given configuration
func NewPlayer(config PlayerConfig) (*Player, error) {
	if config.ServerAddr == "" {
		return nil, fmt.Errorf("server address is required")
	}
	if config.Path == "" {
		config.Path = "/"
	}
	if config.Volume == 0 {
		config.Volume = 100
	}
	if config.SampleRate == 0 {
		config.SampleRate = output.DefaultSampleRate
	}
	if config.VisualSamples == 0 {
		config.VisualSamples = player.DefaultVisualSamples
	}
	if config.Clock == nil {
		config.Clock = isync.SystemClock{}
	}
	if config.Sink == nil {
		config.Sink = output.NewOto(config.SampleRate)
	}
	if config.Dialer == nil {
		config.Dialer = client.NewWebsocketDialer()
	}

	p := &Player{
		config:     config,
		sessionID:  uuid.New().String(),
		visualizer: player.NewVisualizer(config.VisualSamples),
		sink:       config.Sink,
	}

	p.sink.SetVolume(config.Volume)

	p.pipeline = newPipeline(pipelineConfig{
		estimator: jitter.New(jitter.Config{
			WindowSize: config.WindowSize,
			TailFactor: config.TailFactor,
		}),
		scheduler: player.NewScheduler(player.SchedulerConfig{
			MinBuffer: config.MinBuffer,
			MaxBuffer: config.MaxBuffer,
		}, config.Clock),
		visualizer: p.visualizer,
		sink:       p.sink,
		metrics:    config.Metrics,
		onChange:   p.notifyStateChange,
	})

	p.manager = client.NewManager(client.Config{
		URL:               client.ServerURL(config.ServerAddr, config.Path),
		HeartbeatInterval: config.HeartbeatInterval,
		HeartbeatTimeout:  config.HeartbeatTimeout,
		ReconnectInterval: config.ReconnectInterval,
		Autoplay:          config.Autoplay,
		Clock:             config.Clock,
		NewTimer:          config.NewTimer,
	}, config.Dialer, p.pipeline)

	p.pipeline.volume = config.Volume

	return p, nil
}

// Run opens the sink and runs the session until ctx is cancelled
func (p *Player) Run(ctx context.Context) error {
	if err := p.sink.Open(); err != nil {
		return fmt.Errorf("failed to initialize output: %w", err)
	}

	log.Infof("Session %s listening to %s", p.sessionID, p.config.ServerAddr)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return p.manager.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		return p.sink.Close()
	})

	return g.Wait()
}

// Start requests the stream
func (p *Player) Start() {
	p.manager.Start()
}

// Stop halts the stream and drops buffered audio
func (p *Player) Stop() {
	p.manager.Stop()
}

// Toggle starts when idle and stops otherwise
func (p *Player) Toggle() {
	if p.pipeline.isPlaying() {
		p.Stop()
	} else {
		p.Start()
	}
}

// SetVolume sets the output volume (0-100)
func (p *Player) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	p.sink.SetVolume(volume)
	p.pipeline.setVolume(volume)
	p.notifyStateChange()
}

// Mute mutes or unmutes local output
func (p *Player) Mute(muted bool) {
	p.sink.SetMuted(muted)
	p.pipeline.setMuted(muted)
	p.notifyStateChange()
}

// Status returns the current status
func (p *Player) Status() Status {
	st := p.pipeline.status()
	st.Connection = p.manager.State()
	st.SenderMuted = p.manager.SenderMuted()
	st.SessionID = p.sessionID
	if st.State == StatePlaying && st.SenderMuted {
		st.State = StateMuted
	}
	return st
}

// Stats returns the latest statistics
func (p *Player) Stats() Stats {
	s := p.pipeline.snapshot()
	s.Connection = p.manager.State()
	s.LinkQuality = p.manager.LinkQuality()
	return s
}

// Waveform returns the most recent decoded samples, oldest first
func (p *Player) Waveform() []float32 {
	return p.visualizer.Snapshot()
}

// SessionID identifies this listener in logs
func (p *Player) SessionID() string {
	return p.sessionID
}

func (p *Player) notifyStateChange() {
	if p.config.OnStateChange != nil {
		p.config.OnStateChange(p.Status())
	}
}
