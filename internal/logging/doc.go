// Package logging provides structured logging using uber/zap.
//
// All output goes to stderr, the side channel, so that a stream writing
// to stdout is never interleaved with log records.
//
// Two modes:
//   - Production: JSON records
//   - Development: colored console output
//
// The default level is warn, which keeps a normal run silent. The verbose
// flag selects debug, where every stream activation, pass and write is
// recorded.
//
// Example Usage:
//
//	logger, err := logging.New(logging.VerboseConfig(false))
//	logger.Debug("stream added", zap.String("input", "data/in"))
package logging
