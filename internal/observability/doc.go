// Package observability provides the ambient instrumentation of graphonauts:
// structured logging with secret redaction, OpenTelemetry tracing and a Prometheus
// metrics registry.
//
// # Logging
//
// NewLogger builds a slog.Logger from LoggingConfig. Values of sensitive keys
// (password, secret, token, credential, api_key) are replaced with "[REDACTED]"
// before they reach the handler:
//
//	logger := observability.NewLogger(cfg.Logging, os.Stderr)
//	logger.Info("connecting", "uri", uri, "password", pw) // password=[REDACTED]
//
// # Tracing
//
// InitTracing returns an SDK tracer provider exporting over OTLP/gRPC when enabled,
// or a provider without exporters otherwise. Load runs open one span per table and
// the query runner one span per query.
//
// # Metrics
//
// NewMetrics registers the load and query collectors on a private registry, which
// Handler exposes for scraping.
package observability
