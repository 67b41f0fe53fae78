// Package observability provides structured logging, Prometheus metrics,
// and OpenTelemetry tracing for the configuration router.
//
// # Logging
//
// The Logger interface wraps zap:
//
//	logger, err := observability.NewLogger(observability.LogConfig{Level: "info", Format: "json"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("handler registered",
//	    observability.String("template", "/System/${name}"),
//	    observability.Int("id", 3),
//	)
//
// # Metrics
//
// HTTP surface metrics are registered on a caller-supplied Prometheus
// registry via HTTPMetrics.MustRegister.
//
// # Tracing
//
// NewTracer builds an OTLP/gRPC tracer provider; when tracing is
// disabled it falls back to the global no-op provider.
package observability
