// ABOUTME: Tests for Prometheus metrics
// ABOUTME: Tests recording helpers and the scrape handler
package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPacket(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordPacket(0)
	m.RecordPacket(20 * time.Millisecond)
	m.RecordMalformed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PacketsReceived))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MalformedPackets))
}

func TestRecordState(t *testing.T) {
	m := New(prometheus.NewRegistry())
	all := []string{"connecting", "connected"}

	m.RecordState("connecting", all)
	m.RecordState("connected", all)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.ConnectionState.WithLabelValues("connecting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectionState.WithLabelValues("connected")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordPacket(time.Millisecond)
		m.RecordMalformed()
		m.RecordDecode(time.Millisecond)
		m.RecordBuffer(0.1, 0.1, 0.15, 0.002, 1)
		m.RecordUnderrun()
		m.RecordState("connected", []string{"connected"})
		m.RecordReconnect()
		m.RecordSenderMuted(true)
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordUnderrun()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "livelisten_underruns_total 1")
}
