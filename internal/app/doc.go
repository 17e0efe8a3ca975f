// Package app wires the FSN Analytics backend together: configuration,
// structured logging, OpenTelemetry, the dataset and feedback services, the
// WebSocket hub, and the chi router, all owned by a single Application value
// with a graceful start/stop lifecycle.
//
// # Startup Order
//
//  1. Load configuration (defaults, optional YAML, FSN_* environment overrides)
//  2. Initialize slog logging and resolve/create the data directories
//  3. Initialize OpenTelemetry metrics and the Prometheus exporter
//  4. Construct services and the WebSocket hub, wiring event publication
//  5. Build the router and HTTP server, then serve until interrupted
//
// Shutdown reverses the order: the HTTP server drains in-flight requests,
// the refresh scheduler and hub stop, and the feedback store and telemetry
// providers close.
package app
