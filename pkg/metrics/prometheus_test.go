package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordScan("ok")
	r.RecordScan("not_found")
	r.RecordTick("ok")
	r.RecordTick("ok")
	r.RecordTick("skipped")
	r.RecordSample("PAIR_A", 1.5)
	r.RecordSample("PAIR_B", 2.5)
	r.RecordError("poll")
	r.RecordAggregate(0.0002)
	r.SetWSClients(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.scansTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.ticksTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ticksTotal.WithLabelValues("skipped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.samplesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("poll")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.wsClients))

	// Only the most recent pair keeps a price series.
	assert.Equal(t, 1, testutil.CollectAndCount(r.lastPrice))
	assert.Equal(t, 2.5, testutil.ToFloat64(r.lastPrice.WithLabelValues("PAIR_B")))

	n, err := testutil.GatherAndCount(reg, "pairpulse_aggregate_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNop(t *testing.T) {
	var n Nop
	assert.NotPanics(t, func() {
		n.RecordScan("ok")
		n.RecordTick("ok")
		n.RecordSample("p", 1)
		n.RecordAggregate(1)
		n.RecordError("x")
		n.SetWSClients(1)
	})
}
