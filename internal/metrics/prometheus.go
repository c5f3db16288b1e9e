// ABOUTME: Prometheus metrics for the listener pipeline
// ABOUTME: Counts packets, buffer depth, underruns and connection state
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics for the listener. A nil *Metrics
// records nothing.
type Metrics struct {
	// Packet metrics
	PacketsReceived  prometheus.Counter
	MalformedPackets prometheus.Counter
	PacketInterval   prometheus.Histogram
	DecodeDuration   prometheus.Histogram

	// Buffer metrics
	BufferLatency     prometheus.Gauge
	MeanBufferLatency prometheus.Gauge
	TargetBuffer      prometheus.Gauge
	JitterStdDev      prometheus.Gauge
	PlaybackRate      prometheus.Gauge
	Underruns         prometheus.Counter

	// Connection metrics
	ConnectionState *prometheus.GaugeVec
	Reconnects      prometheus.Counter
	SenderMuted     prometheus.Gauge
}

// New creates all metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PacketsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "livelisten_packets_received_total",
			Help: "Total number of audio packets received while playing",
		}),
		MalformedPackets: factory.NewCounter(prometheus.CounterOpts{
			Name: "livelisten_malformed_packets_total",
			Help: "Total number of audio packets dropped as malformed",
		}),
		PacketInterval: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "livelisten_packet_interval_seconds",
			Help:    "Time between consecutive audio packet arrivals",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		}),
		DecodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "livelisten_decode_duration_seconds",
			Help:    "Time spent decoding and scheduling one packet",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8), // 10us to ~160ms
		}),

		BufferLatency: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livelisten_buffer_latency_seconds",
			Help: "Audio queued ahead of the output clock at the last packet",
		}),
		MeanBufferLatency: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livelisten_mean_buffer_latency_seconds",
			Help: "Exponential moving average of the buffer latency",
		}),
		TargetBuffer: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livelisten_target_buffer_seconds",
			Help: "Buffer depth the playback rate is steering toward",
		}),
		JitterStdDev: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livelisten_jitter_stddev_seconds",
			Help: "Standard deviation of packet inter-arrival times",
		}),
		PlaybackRate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livelisten_playback_rate",
			Help: "Current playback rate multiplier",
		}),
		Underruns: factory.NewCounter(prometheus.CounterOpts{
			Name: "livelisten_underruns_total",
			Help: "Total number of audible gaps",
		}),

		ConnectionState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "livelisten_connection_state",
			Help: "1 for the current connection state, 0 otherwise",
		}, []string{"state"}),
		Reconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "livelisten_reconnects_total",
			Help: "Total number of times the link was lost",
		}),
		SenderMuted: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livelisten_sender_muted",
			Help: "1 while the sender reports its microphone muted",
		}),
	}
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordPacket records one received packet and its inter-arrival interval
func (m *Metrics) RecordPacket(interval time.Duration) {
	if m == nil {
		return
	}
	m.PacketsReceived.Inc()
	if interval > 0 {
		m.PacketInterval.Observe(interval.Seconds())
	}
}

// RecordMalformed counts a dropped packet
func (m *Metrics) RecordMalformed() {
	if m == nil {
		return
	}
	m.MalformedPackets.Inc()
}

// RecordDecode observes per-packet processing time
func (m *Metrics) RecordDecode(d time.Duration) {
	if m == nil {
		return
	}
	m.DecodeDuration.Observe(d.Seconds())
}

// RecordBuffer publishes the scheduler and jitter state
func (m *Metrics) RecordBuffer(latency, mean, target, stddev, rate float64) {
	if m == nil {
		return
	}
	m.BufferLatency.Set(latency)
	m.MeanBufferLatency.Set(mean)
	m.TargetBuffer.Set(target)
	m.JitterStdDev.Set(stddev)
	m.PlaybackRate.Set(rate)
}

// RecordUnderrun counts an audible gap
func (m *Metrics) RecordUnderrun() {
	if m == nil {
		return
	}
	m.Underruns.Inc()
}

// RecordState marks state as the only active connection state
func (m *Metrics) RecordState(state string, all []string) {
	if m == nil {
		return
	}
	for _, s := range all {
		value := 0.0
		if s == state {
			value = 1
		}
		m.ConnectionState.WithLabelValues(s).Set(value)
	}
}

// RecordReconnect counts a lost link
func (m *Metrics) RecordReconnect() {
	if m == nil {
		return
	}
	m.Reconnects.Inc()
}

// RecordSenderMuted publishes the sender mic status
func (m *Metrics) RecordSenderMuted(muted bool) {
	if m == nil {
		return
	}
	if muted {
		m.SenderMuted.Set(1)
	} else {
		m.SenderMuted.Set(0)
	}
}
