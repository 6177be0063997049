package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCommand(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCommand("say", "ok", 120*time.Millisecond)
	c.RecordCommand("say", "ok", 80*time.Millisecond)
	c.RecordCommand("say", "error", 10*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.commandsTotal.WithLabelValues("say", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.commandsTotal.WithLabelValues("say", "error")))
}

func TestRecordFanout(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFanout("report", 2, 3)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.fanoutOpsTotal.WithLabelValues("report", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.fanoutOpsTotal.WithLabelValues("report", "failed")))
}

func TestRosterSizeGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.SetRosterSize(4)
	assert.Equal(t, float64(4), testutil.ToFloat64(c.rosterSize))
	c.SetRosterSize(2)
	assert.Equal(t, float64(2), testutil.ToFloat64(c.rosterSize))
}

func TestSeparateRegistries(t *testing.T) {
	a := NewCollector(prometheus.NewRegistry())
	b := NewCollector(prometheus.NewRegistry())
	require.NotNil(t, a)
	require.NotNil(t, b)

	a.RecordEnkaFetch("ok")
	assert.Equal(t, float64(1), testutil.ToFloat64(a.enkaFetchesTotal.WithLabelValues("ok")))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.enkaFetchesTotal.WithLabelValues("ok")))
}
