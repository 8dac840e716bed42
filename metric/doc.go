// Package metric provides the Prometheus registry and HTTP server used to export
// ring and buffer metrics.
//
// Buffers never register collectors with Prometheus directly. They go through a
// MetricsRegistrar, which keys every collector by service and metric name and
// turns duplicate registrations into classified invalid errors instead of panics.
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//
//	ring, err := ring.NewDynamic[Sample](512,
//		ring.WithMetrics[Sample](registry, "samples"),
//	)
//
//	server := metric.NewServer(9090, "/metrics", registry)
//	go func() {
//		if err := server.Start(); err != nil {
//			slog.Error("metrics server stopped", "error", err)
//		}
//	}()
//	defer server.Stop()
//
// The server also answers /health with 200 OK.
package metric
