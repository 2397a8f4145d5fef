// Package telemetry provides OpenTelemetry initialization and helpers
// for the cooklang-import server, worker and CLI.
//
// Traces, logs and metrics are exported over OTLP HTTP. An empty endpoint
// leaves the exporters on their environment defaults.
package telemetry
