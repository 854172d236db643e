// Package config provides 12-factor configuration management for mavg.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags override environment variables.
//
// Configuration Sections:
//   - Run: timeout, poll interval, stream manifest
//   - Output: metrics textfile
//   - Logging: verbose flag, log level and output format
//
// Example Usage:
//
//	cfg, err := config.Load()
//	fmt.Printf("timeout %s\n", cfg.Run.Timeout())
//
// Environment Variables:
//   - MAVG_TIMEOUT, MAVG_POLL_INTERVAL, MAVG_MANIFEST
//   - MAVG_METRICS_FILE
//   - MAVG_VERBOSE, LOG_LEVEL, LOG_DEV, LOG_OUTPUT
package config
