package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scansTotal   *prometheus.CounterVec
	ticksTotal   *prometheus.CounterVec
	samplesTotal prometheus.Counter
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	aggregate    prometheus.Histogram
	wsClients    prometheus.Gauge
}

// New creates a Prometheus recorder registered on reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		scansTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairpulse_scans_total",
				Help: "Token scans by result",
			},
			[]string{"result"},
		),
		ticksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairpulse_ticks_total",
				Help: "Poll ticks by result (ok, skipped, stale)",
			},
			[]string{"result"},
		),
		samplesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "pairpulse_samples_appended_total",
				Help: "Samples appended to the sample store",
			},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pairpulse_last_price_usd",
				Help: "Last sampled price for the active pair",
			},
			[]string{"pair"},
		),
		aggregate: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pairpulse_aggregate_duration_seconds",
				Help:    "Duration of a full candle aggregation pass",
				Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
			},
		),
		wsClients: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "pairpulse_ws_clients",
				Help: "Connected websocket chart clients",
			},
		),
	}
}

// RecordScan records a scan outcome.
func (r *Recorder) RecordScan(result string) {
	r.scansTotal.WithLabelValues(result).Inc()
}

// RecordTick records a poll tick outcome.
func (r *Recorder) RecordTick(result string) {
	r.ticksTotal.WithLabelValues(result).Inc()
}

// RecordSample records an appended sample and its price.
func (r *Recorder) RecordSample(pair string, price float64) {
	r.samplesTotal.Inc()
	r.lastPrice.Reset()
	r.lastPrice.WithLabelValues(pair).Set(price)
}

// RecordAggregate records aggregation latency in seconds.
func (r *Recorder) RecordAggregate(seconds float64) {
	r.aggregate.Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// SetWSClients sets the connected websocket client gauge.
func (r *Recorder) SetWSClients(n int) {
	r.wsClients.Set(float64(n))
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordScan(string) {}
func (Nop) RecordTick(string) {}
func (Nop) RecordSample(string, float64) {}
func (Nop) RecordAggregate(float64) {}
func (Nop) RecordError(string) {}
func (Nop) SetWSClients(int) {}
