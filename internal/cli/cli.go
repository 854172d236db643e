// Package cli turns command-line arguments into a configured run.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/mavg/internal/config"
	"github.com/GriffinCanCode/mavg/internal/logging"
	"github.com/GriffinCanCode/mavg/internal/manifest"
	"github.com/GriffinCanCode/mavg/internal/monitoring"
	"github.com/GriffinCanCode/mavg/internal/poller"
	"github.com/GriffinCanCode/mavg/internal/processor"
	"github.com/GriffinCanCode/mavg/internal/scheduler"
	"github.com/GriffinCanCode/mavg/internal/stream"
)

// ErrConfig marks failures detected before the loop starts.
var ErrConfig = errors.New("configuration error")

const usage = `Usage: mavg [flags] [window,input,output ...]

Reads little-endian float64 streams from each input, writes their moving
average over window values to the matching output. "-" is stdin/stdout.

Flags:
`

// IO is the process's standard streams.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// OSIO returns the real standard streams.
func OSIO() IO {
	return IO{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// options is the merged result of environment and flags.
type options struct {
	cfg      *config.Config
	requests []stream.Request
}

// Run parses args (without the program name) and executes one run.
func Run(ctx context.Context, args []string, stdio IO) (err error) {
	opts, err := parse(args, stdio.Stderr)
	if err != nil {
		return err
	}

	logger, err := newLogger(opts.cfg, stdio.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	logger = logger.With(zap.String("run_id", uuid.NewString()))
	defer logger.Sync()

	metrics := monitoring.NewMetrics()
	if path := opts.cfg.Output.MetricsFile; path != "" {
		defer func() {
			err = multierr.Append(err, metrics.WriteTextfile(path))
		}()
	}

	sched, err := scheduler.New(scheduler.Config{
		Requests:     opts.requests,
		Timeout:      opts.cfg.Run.Timeout(),
		PollInterval: opts.cfg.Run.PollInterval,
		Poller:       poller.New(poller.FileAvailability{}),
		Opener:       stream.NewFileOpener(stream.Stdio{In: stdio.Stdin, Out: stdio.Stdout}),
		Processor:    processor.New(logger.Named("processor"), metrics),
		Logger:       logger,
		Metrics:      metrics,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	start := time.Now()
	err = sched.Run(ctx)
	logger.Debug("run finished",
		zap.Stringer("state", sched.State()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	return err
}

func parse(args []string, stderr io.Writer) (*options, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	fs := flag.NewFlagSet("mavg", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	fs.BoolVar(&cfg.Logging.Verbose, "v", cfg.Logging.Verbose, "verbose diagnostic logging to stderr")
	fs.BoolVar(&cfg.Logging.Verbose, "verbose", cfg.Logging.Verbose, "verbose diagnostic logging to stderr")
	fs.IntVar(&cfg.Run.TimeoutSeconds, "timeout", cfg.Run.TimeoutSeconds, "seconds to wait for all inputs (0 waits forever)")
	fs.DurationVar(&cfg.Run.PollInterval, "poll-interval", cfg.Run.PollInterval, "idle wait between availability scans")
	fs.StringVar(&cfg.Run.Manifest, "manifest", cfg.Run.Manifest, "YAML, TOML or JSON file listing extra streams")
	fs.StringVar(&cfg.Output.MetricsFile, "metrics-file", cfg.Output.MetricsFile, "write Prometheus metrics to this file at exit")
	fs.Func("log-file", "write diagnostic logs to this file instead of stderr", func(path string) error {
		cfg.Logging.Outputs = []string{path}
		return nil
	})

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	requests, err := stream.ParseRequests(fs.Args())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if cfg.Run.Manifest != "" {
		extra, err := manifest.Load(cfg.Run.Manifest)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		requests = append(requests, extra...)
	}

	return &options{cfg: cfg, requests: requests}, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*logging.Logger, error) {
	logCfg := logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development}
	if cfg.Logging.Verbose {
		logCfg = logging.VerboseConfig(cfg.Logging.Development)
	}
	logCfg.OutputPaths = cfg.Logging.Outputs
	logCfg.Writer = w
	return logging.New(logCfg)
}

// ExitCode maps a Run result to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, ErrConfig):
		return 2
	default:
		return 1
	}
}
