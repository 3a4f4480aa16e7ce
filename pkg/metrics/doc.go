// Package metrics is a telemetry collaborator that aggregates request
// outcomes into Prometheus counters and histograms.
package metrics
