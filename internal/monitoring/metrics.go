package monitoring

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a run. Each Metrics owns its
// registry so independent runs (and tests) never collide.
type Metrics struct {
	registry *prometheus.Registry

	// Loop metrics
	Passes       prometheus.Counter
	PassDuration prometheus.Histogram
	Polls        prometheus.Counter

	// Source metrics
	SourcesPending prometheus.Gauge
	StreamsActive  prometheus.Gauge
	Activations    prometheus.Counter

	// Stream metrics
	BytesRead      *prometheus.CounterVec
	BytesTruncated *prometheus.CounterVec
	ValuesDecoded  *prometheus.CounterVec
	ValuesWritten  *prometheus.CounterVec
	ShortReads     *prometheus.CounterVec
	StreamErrors   *prometheus.CounterVec
	StreamOutcomes *prometheus.CounterVec
}

// NewMetrics creates a metrics collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Passes: factory.NewCounter(prometheus.CounterOpts{
			Name: "mavg_passes_total",
			Help: "Processing passes over the active streams",
		}),
		PassDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mavg_pass_duration_seconds",
			Help:    "Duration of one processing pass",
			Buckets: []float64{.0001, .001, .005, .01, .05, .1, .5, 1, 5},
		}),
		Polls: factory.NewCounter(prometheus.CounterOpts{
			Name: "mavg_polls_total",
			Help: "Availability scans of the pending set",
		}),

		SourcesPending: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mavg_sources_pending",
			Help: "Requested inputs not yet available",
		}),
		StreamsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mavg_streams_active",
			Help: "Streams with open descriptors",
		}),
		Activations: factory.NewCounter(prometheus.CounterOpts{
			Name: "mavg_activations_total",
			Help: "Streams activated after their input became available",
		}),

		BytesRead: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mavg_bytes_read_total",
			Help: "Bytes read from each input",
		}, []string{"input"}),
		BytesTruncated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mavg_bytes_truncated_total",
			Help: "Trailing bytes dropped because they did not form a whole value",
		}, []string{"input"}),
		ValuesDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mavg_values_decoded_total",
			Help: "Values decoded from each input",
		}, []string{"input"}),
		ValuesWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mavg_averages_written_total",
			Help: "Moving averages written to each output",
		}, []string{"output"}),
		ShortReads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mavg_short_reads_total",
			Help: "Reads with fewer values than the window length",
		}, []string{"input"}),
		StreamErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mavg_stream_errors_total",
			Help: "Read or write failures per input",
		}, []string{"input", "op"}),
		StreamOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mavg_stream_outcomes_total",
			Help: "Per-stream pass results by outcome",
		}, []string{"outcome"}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordPass records one processing pass
func (m *Metrics) RecordPass(duration time.Duration) {
	m.Passes.Inc()
	m.PassDuration.Observe(duration.Seconds())
}

// RecordPoll records a scan and the pending/active counts after it
func (m *Metrics) RecordPoll(pending, active int) {
	m.Polls.Inc()
	m.SourcesPending.Set(float64(pending))
	m.StreamsActive.Set(float64(active))
}

// RecordActivation records a newly opened stream
func (m *Metrics) RecordActivation() {
	m.Activations.Inc()
}

// RecordRead records bytes read and how many values they decoded to
func (m *Metrics) RecordRead(input string, bytes, values, truncated int) {
	m.BytesRead.WithLabelValues(input).Add(float64(bytes))
	m.ValuesDecoded.WithLabelValues(input).Add(float64(values))
	if truncated > 0 {
		m.BytesTruncated.WithLabelValues(input).Add(float64(truncated))
	}
}

// RecordShortRead records a read that could not fill one window
func (m *Metrics) RecordShortRead(input string) {
	m.ShortReads.WithLabelValues(input).Inc()
}

// RecordWrite records averages written to an output
func (m *Metrics) RecordWrite(output string, values int) {
	m.ValuesWritten.WithLabelValues(output).Add(float64(values))
}

// RecordError records a failed read or write
func (m *Metrics) RecordError(input, op string) {
	m.StreamErrors.WithLabelValues(input, op).Inc()
}

// RecordOutcome records what one stream did during a pass
func (m *Metrics) RecordOutcome(outcome string) {
	m.StreamOutcomes.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes the current metrics in Prometheus text format to
// path, atomically, for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
