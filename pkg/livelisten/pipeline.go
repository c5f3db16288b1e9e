// ABOUTME: Per-frame audio pipeline driven by the connection manager
// ABOUTME: Jitter, decode, waveform, resample, schedule and play, strictly in order
package livelisten

import (
	"sync"
	"time"

	"github.com/Resonate-Protocol/livelisten/internal/client"
	"github.com/Resonate-Protocol/livelisten/internal/metrics"
	"github.com/Resonate-Protocol/livelisten/internal/player"
	"github.com/Resonate-Protocol/livelisten/pkg/audio"
	"github.com/Resonate-Protocol/livelisten/pkg/audio/decode"
	"github.com/Resonate-Protocol/livelisten/pkg/audio/output"
	"github.com/Resonate-Protocol/livelisten/pkg/audio/resample"
	"github.com/Resonate-Protocol/livelisten/pkg/jitter"
	"github.com/Resonate-Protocol/livelisten/pkg/protocol"
	"github.com/charmbracelet/log"
)

// Status states
const (
	StateIdle    = "idle"
	StateMuted   = "muted"
	StatePlaying = "playing"
)

var connectionStates = []string{
	client.Disconnected.String(),
	client.Connecting.String(),
	client.Connected.String(),
	client.AwaitingReconnect.String(),
}

type pipelineConfig struct {
	estimator  *jitter.Estimator
	scheduler  *player.Scheduler
	visualizer *player.Visualizer
	sink       output.Sink
	metrics    *metrics.Metrics
	onChange   func()
}

// pipeline implements client.Handler. Its estimator and scheduler are only
// touched from the manager loop; everything under mu is published for
// readers on other goroutines.
type pipeline struct {
	estimator  *jitter.Estimator
	scheduler  *player.Scheduler
	visualizer *player.Visualizer
	sink       output.Sink
	metrics    *metrics.Metrics
	onChange   func()
	logger     *log.Logger

	mu        sync.Mutex
	playing   bool
	volume    int
	muted     bool
	stats     Stats
	underruns int64
}

func newPipeline(cfg pipelineConfig) *pipeline {
	p := &pipeline{
		estimator:  cfg.estimator,
		scheduler:  cfg.scheduler,
		visualizer: cfg.visualizer,
		sink:       cfg.sink,
		metrics:    cfg.metrics,
		onChange:   cfg.onChange,
		logger:     log.WithPrefix("pipeline"),
	}
	p.stats.TargetMs = p.scheduler.State().TargetBuffer * 1000
	p.stats.Rate = 1.0
	return p
}

// HandleAudio runs one binary frame through the pipeline
func (p *pipeline) HandleAudio(frame []byte, arrival time.Time) {
	started := time.Now()

	snap, ok := p.estimator.OnPacketArrival(arrival)
	if ok {
		p.scheduler.SetTargetBuffer(snap.RecommendedSeconds)
		p.metrics.RecordPacket(p.estimator.LastInterval())
	} else {
		p.metrics.RecordPacket(0)
	}

	pkt, err := protocol.ParsePacket(frame)
	if err != nil {
		p.dropMalformed(err)
		return
	}

	pcm, err := decode.Decode(pkt)
	if err != nil {
		p.dropMalformed(err)
		return
	}

	samples := audio.Int16ToFloat32(pcm)
	p.visualizer.Push(samples)

	rate := p.sink.SampleRate()
	out := resample.Resample(samples, pkt.SampleRate(), rate)
	if len(out) == 0 {
		p.publish(snap, 0)
		return
	}

	frameSeconds := float64(len(out)) / float64(rate)
	inst := p.scheduler.OnFrameReady(frameSeconds, p.sink.Now())
	p.sink.Play(out, inst.StartTime, inst.Rate)

	p.metrics.RecordDecode(time.Since(started))
	p.publish(snap, 0)
}

func (p *pipeline) dropMalformed(err error) {
	p.logger.Debugf("Dropping packet: %v", err)
	p.metrics.RecordMalformed()
	p.publish(p.estimator.Last(), 1)
}

// publish copies scheduler and jitter state into the shared snapshot
func (p *pipeline) publish(snap jitter.Snapshot, malformed int64) {
	st := p.scheduler.State()
	sched := p.scheduler.Stats()
	gaps := p.scheduler.GapCount()

	p.mu.Lock()
	newUnderruns := sched.Underruns - p.underruns
	p.underruns = sched.Underruns
	p.stats.MeanBufferMs = st.MeanBufferLatency * 1000
	p.stats.BufferMs = st.BufferLatency * 1000
	p.stats.RecommendedMs = snap.RecommendedSeconds * 1000
	p.stats.TargetMs = st.TargetBuffer * 1000
	p.stats.StdDevMs = snap.StdDevMs
	p.stats.Gaps = gaps
	p.stats.Trend = st.Trend
	p.stats.Rate = st.Rate
	p.stats.Packets++
	p.stats.Malformed += malformed
	p.mu.Unlock()

	for i := int64(0); i < newUnderruns; i++ {
		p.metrics.RecordUnderrun()
	}
	p.metrics.RecordBuffer(st.BufferLatency, st.MeanBufferLatency, st.TargetBuffer, snap.StdDevMs/1000, st.Rate)
}

// HandleMicStatus reacts to mic_active / mic_muted
func (p *pipeline) HandleMicStatus(muted bool) {
	if muted {
		p.visualizer.Reset()
	}
	p.logger.Infof("Sender microphone muted: %v", muted)
	p.metrics.RecordSenderMuted(muted)
	p.notify()
}

// HandleStateChange keeps idle time out of the jitter window
func (p *pipeline) HandleStateChange(state client.State) {
	if state != client.Connected {
		p.estimator.Reset()
	}
	if state == client.AwaitingReconnect {
		p.metrics.RecordReconnect()
	}
	p.metrics.RecordState(state.String(), connectionStates)
	p.notify()
}

// HandlePlayback starts or stops the stream. Stop drops pending audio and
// restarts scheduling from the output clock.
func (p *pipeline) HandlePlayback(playing bool) {
	if !playing {
		p.scheduler.Reset()
		p.sink.Reset()
		p.visualizer.Reset()
		p.estimator.Reset()
	}

	p.mu.Lock()
	p.playing = playing
	p.mu.Unlock()

	p.notify()
}

func (p *pipeline) notify() {
	if p.onChange != nil {
		p.onChange()
	}
}

func (p *pipeline) isPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *pipeline) setVolume(volume int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
}

func (p *pipeline) setMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
}

func (p *pipeline) status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := StateIdle
	if p.playing {
		state = StatePlaying
	}
	return Status{
		State:  state,
		Volume: p.volume,
		Muted:  p.muted,
	}
}

func (p *pipeline) snapshot() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
