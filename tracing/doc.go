// Package tracing provides a thin wrapper around OpenTelemetry tracing. Spans
// are no-ops until Init or InitWithExporter installs a provider.
package tracing
