// Package processor runs one decode, average, encode pass over the
// active streams.
package processor

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/GriffinCanCode/mavg/internal/average"
	"github.com/GriffinCanCode/mavg/internal/codec"
	"github.com/GriffinCanCode/mavg/internal/logging"
	"github.com/GriffinCanCode/mavg/internal/monitoring"
	"github.com/GriffinCanCode/mavg/internal/stream"
)

// Outcome is what a single stream did during a pass.
type Outcome int

const (
	OutcomeIdle Outcome = iota
	OutcomeShort
	OutcomeWritten
	OutcomeFailed
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeShort:
		return "short"
	case OutcomeWritten:
		return "written"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Processor holds no per-stream state: every pass starts from the bytes
// read in that pass only.
type Processor struct {
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// New creates a Processor. Nil arguments get no-op defaults.
func New(log *logging.Logger, metrics *monitoring.Metrics) *Processor {
	if log == nil {
		log = logging.NewNop()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	return &Processor{log: log, metrics: metrics}
}

// Process handles every descriptor once, in order. A failure on one
// stream does not stop the others; all failures are returned combined.
func (p *Processor) Process(descriptors []*stream.Descriptor) error {
	start := time.Now()
	var errs error
	tally := make(map[Outcome]int, 4)
	for _, d := range descriptors {
		outcome, err := p.ProcessOne(d)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		tally[outcome]++
		p.metrics.RecordOutcome(outcome.String())
	}
	duration := time.Since(start)
	p.metrics.RecordPass(duration)

	p.log.Debug("pass complete",
		zap.Int("streams", len(descriptors)),
		zap.Int("written", tally[OutcomeWritten]),
		zap.Int("short", tally[OutcomeShort]),
		zap.Int("idle", tally[OutcomeIdle]),
		zap.Int("failed", tally[OutcomeFailed]),
		zap.Duration("duration", duration),
	)
	return errs
}

// ProcessOne reads everything the input currently holds, computes the
// moving average and appends it to the output.
func (p *Processor) ProcessOne(d *stream.Descriptor) (Outcome, error) {
	buf, err := io.ReadAll(d.Reader())
	if err != nil {
		p.metrics.RecordError(d.Input, "read")
		return OutcomeFailed, fmt.Errorf("read %s: %w", d.Input, err)
	}
	if len(buf) == 0 {
		return OutcomeIdle, nil
	}

	values := codec.Decode(buf)
	truncated := codec.Truncated(len(buf))
	p.metrics.RecordRead(d.Input, len(buf), len(values), truncated)
	p.logDecoded(d, values, truncated)

	averages, ok := average.Compute(values, d.Window)
	if !ok {
		p.metrics.RecordShortRead(d.Input)
		p.log.Debug("not enough values for one window",
			zap.String("input", d.Input),
			zap.Int("values", len(values)),
			zap.Int("window", d.Window),
		)
		return OutcomeShort, nil
	}

	if _, err := d.Writer().Write(codec.Encode(averages)); err != nil {
		p.metrics.RecordError(d.Input, "write")
		return OutcomeFailed, fmt.Errorf("write %s: %w", d.Output, err)
	}
	p.metrics.RecordWrite(d.Output, len(averages))

	p.log.Debug("averages written",
		zap.String("output", d.Output),
		zap.Int("count", len(averages)),
		zap.Float64s("averages", averages),
	)
	p.log.Debug("stream processed", zap.Stringer("stream", d.Request))
	return OutcomeWritten, nil
}

func (p *Processor) logDecoded(d *stream.Descriptor, values []float64, truncated int) {
	if !p.log.DebugEnabled() {
		return
	}

	fields := []zap.Field{
		zap.String("input", d.Input),
		zap.Int("count", len(values)),
		zap.Int("truncated_bytes", truncated),
	}
	if len(values) > 0 {
		mean, std := stat.MeanStdDev(values, nil)
		fields = append(fields,
			zap.Float64("min", floats.Min(values)),
			zap.Float64("max", floats.Max(values)),
			zap.Float64("mean", mean),
			zap.Float64("stddev", std),
			zap.Float64s("numbers", values),
		)
	}
	p.log.Debug("numbers decoded", fields...)
}
