// Package scheduler drives the poll, activate, process loop.
//
// Each iteration scans the pending inputs, opens descriptors for those that
// became available, then runs one processing pass over every active stream
// in activation order. Without a timeout the loop ends when nothing is
// pending. With a timeout it runs until the deadline, picking up data that
// arrives late on active streams, and fails with a DeadlineError if inputs
// are still missing at that point.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/mavg/internal/logging"
	"github.com/GriffinCanCode/mavg/internal/monitoring"
	"github.com/GriffinCanCode/mavg/internal/poller"
	"github.com/GriffinCanCode/mavg/internal/processor"
	"github.com/GriffinCanCode/mavg/internal/stream"
)

// DefaultPollInterval bounds how often the pending set is rescanned.
const DefaultPollInterval = 5 * time.Millisecond

// Config wires a Scheduler. Only Requests is required.
type Config struct {
	Requests []stream.Request

	// Timeout of zero selects exhaustive mode.
	Timeout time.Duration
	// PollInterval is the idle wait between iterations; zero means
	// DefaultPollInterval and a negative value disables the wait.
	PollInterval time.Duration

	Poller    *poller.Poller
	Opener    stream.Opener
	Processor *processor.Processor
	Logger    *logging.Logger
	Metrics   *monitoring.Metrics
}

// Scheduler owns the pending set and every active descriptor for one run.
type Scheduler struct {
	cfg     Config
	byInput map[string]stream.Request
	pending []string
	active  []*stream.Descriptor
	state   State
	started bool
	limiter *rate.Limiter
	log     *logging.Logger
}

// New validates the requests and fills in defaults.
func New(cfg Config) (*Scheduler, error) {
	if err := stream.CheckUnique(cfg.Requests); err != nil {
		return nil, err
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative: %s", cfg.Timeout)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = monitoring.NewMetrics()
	}
	if cfg.Poller == nil {
		cfg.Poller = poller.New(nil)
	}
	if cfg.Opener == nil {
		cfg.Opener = stream.NewFileOpener(stream.OSStdio())
	}
	if cfg.Processor == nil {
		cfg.Processor = processor.New(cfg.Logger, cfg.Metrics)
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	limit := rate.Inf
	if cfg.PollInterval > 0 {
		limit = rate.Every(cfg.PollInterval)
	}

	byInput := make(map[string]stream.Request, len(cfg.Requests))
	for _, req := range cfg.Requests {
		byInput[req.Input] = req
	}

	return &Scheduler{
		cfg:     cfg,
		byInput: byInput,
		pending: stream.Inputs(cfg.Requests),
		state:   StateAwaitingSources,
		limiter: rate.NewLimiter(limit, 1),
		log:     cfg.Logger.Named("scheduler"),
	}, nil
}

// State returns the current state.
func (s *Scheduler) State() State {
	return s.state
}

// Pending returns the inputs not yet activated, in declaration order.
func (s *Scheduler) Pending() []string {
	return append([]string(nil), s.pending...)
}

// Run loops until a terminal state is reached or ctx is canceled. Every
// descriptor opened during the run is closed before Run returns, so a
// Scheduler runs at most once.
func (s *Scheduler) Run(ctx context.Context) (err error) {
	if s.started {
		return fmt.Errorf("scheduler already ran: %s", s.state)
	}
	s.started = true
	defer func() {
		err = multierr.Append(err, s.closeAll())
		if err != nil && !s.state.Terminal() {
			s.transition(StateFailed)
		}
	}()

	runCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	s.log.Debug("run started",
		zap.Int("streams", len(s.cfg.Requests)),
		zap.Duration("timeout", s.cfg.Timeout),
		zap.Duration("poll_interval", s.cfg.PollInterval),
	)

	for {
		if err := s.activate(); err != nil {
			return err
		}

		if len(s.active) > 0 {
			s.transition(StateProcessing)
			if err := s.cfg.Processor.Process(s.active); err != nil {
				return fmt.Errorf("processing pass: %w", err)
			}
		}

		// Exhaustive mode ends once every source has been serviced; timed
		// mode keeps servicing active streams until the deadline.
		if s.cfg.Timeout == 0 && len(s.pending) == 0 {
			s.transition(StateDone)
			return nil
		}

		if err := s.limiter.Wait(runCtx); err != nil {
			// The next poll would land past the deadline.
			<-runCtx.Done()
			break
		}
	}

	if ctx.Err() != nil {
		s.transition(StateCanceled)
		return fmt.Errorf("run canceled: %w", ctx.Err())
	}

	if len(s.pending) == 0 {
		s.transition(StateDone)
		return nil
	}

	s.transition(StateTimedOut)
	derr := &DeadlineError{Missing: s.Pending(), Timeout: s.cfg.Timeout}
	s.log.Warn("sources not found within deadline",
		zap.Strings("missing", derr.Missing),
		zap.Duration("timeout", derr.Timeout),
	)
	return derr
}

// activate opens a descriptor for every pending input that is now available.
func (s *Scheduler) activate() error {
	ready := s.cfg.Poller.Scan(s.pending)

	for _, id := range ready {
		req := s.byInput[id]
		desc, err := s.cfg.Opener.Open(req)
		if err != nil {
			return fmt.Errorf("activate %s: %w", id, err)
		}
		s.active = append(s.active, desc)
		s.pending = remove(s.pending, id)
		s.cfg.Metrics.RecordActivation()
		s.log.Debug("stream added", zap.Stringer("stream", req))
	}

	s.cfg.Metrics.RecordPoll(len(s.pending), len(s.active))
	if len(ready) == 0 && len(s.pending) > 0 && s.log.DebugEnabled() {
		s.log.Debug("waiting for sources", zap.Strings("pending", s.pending))
	}
	return nil
}

func (s *Scheduler) transition(to State) {
	if s.state == to {
		return
	}
	s.log.Debug("state change", zap.Stringer("from", s.state), zap.Stringer("to", to))
	s.state = to
}

func (s *Scheduler) closeAll() error {
	var errs error
	for _, d := range s.active {
		if err := d.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close %s: %w", d.Input, err))
		}
	}
	s.active = nil
	return errs
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
