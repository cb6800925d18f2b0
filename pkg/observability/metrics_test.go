package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryMetrics_Counter(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter("jobs.processed", 1)
	m.Counter("jobs.processed", 2)
	m.Counter("jobs.processed", 1, T("status", "failed"))

	assert.Equal(t, int64(3), m.CounterValue("jobs.processed"))
	assert.Equal(t, int64(1), m.CounterValue("jobs.processed", T("status", "failed")))
}

func TestInMemoryMetrics_Gauge(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Gauge("queue.depth", 10)
	m.Gauge("queue.depth", 4)

	assert.Equal(t, 4.0, m.GaugeValue("queue.depth"))
}

func TestInMemoryMetrics_Timing(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Timing("job.duration", 5*time.Millisecond)
	m.Timing("job.duration", 7*time.Millisecond)

	assert.Equal(t, 2, m.TimingCount("job.duration"))
}

func TestNoopMetrics(t *testing.T) {
	var m Metrics = NoopMetrics{}

	// Must not panic.
	m.Counter("x", 1)
	m.Gauge("x", 1)
	m.Timing("x", time.Second)
}
