// Package main is the entry point for mavg, a moving-average relay.
//
// mavg watches a set of inputs (files, named pipes or stdin), reads raw
// little-endian float64 values from each once it appears, and writes the
// moving average of every window to the matching output.
//
// Usage:
//
//	# one stream, window of 3
//	mavg 3,data/in,data/out
//
//	# stdin to stdout
//	producer | mavg 3,-,- > averages.bin
//
//	# several streams, give up after 10 seconds
//	mavg -v -timeout 10 3,pipe1,out1 5,pipe2,out2
//
// Configuration:
//   - Environment variables (MAVG_TIMEOUT, MAVG_POLL_INTERVAL, ...)
//   - CLI flags (override env vars)
//
// Exit status: 0 on success, 1 on a runtime failure such as inputs that
// never appeared before the timeout, 2 on a configuration error.
//
// Signals:
//   - SIGINT, SIGTERM: stop at the next poll and close all streams
package main
