// Package telemetry wires OpenTelemetry tracing and metrics. Both providers
// degrade to the global no-op implementations when disabled, so callers
// never need to check whether telemetry is on.
package telemetry
