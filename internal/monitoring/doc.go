/*
Package monitoring provides run metrics collection.

# Overview

Each run owns a Metrics value backed by a private Prometheus registry. The
scheduler records polls and passes, the processor records per-stream
reads, truncations and writes.

# Usage

	metrics := monitoring.NewMetrics()
	metrics.RecordRead("data/in", 40, 5, 0)
	metrics.RecordWrite("data/out", 3)

# Export

A batch tool has no scrape endpoint. Metrics are written once at exit
in text exposition format:

	metrics.WriteTextfile("/var/lib/node_exporter/mavg.prom")
*/
package monitoring
