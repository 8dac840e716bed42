package metric

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360/ringbuffer/errors"
)

// Server exposes a MetricsRegistry over HTTP: the registry at path and a
// liveness check at /health.
type Server struct {
	port     int
	path     string
	registry *MetricsRegistry
	logger   *slog.Logger

	mu      sync.Mutex
	srv     *http.Server
	stopped bool
}

// NewServer creates a server for registry. A zero port means 9090 and an
// empty path means /metrics.
func NewServer(port int, path string, registry *MetricsRegistry) *Server {
	if path == "" {
		path = "/metrics"
	}
	if port == 0 {
		port = 9090
	}

	return &Server{
		port:     port,
		path:     path,
		registry: registry,
		logger:   slog.Default().With("component", "metrics-server"),
	}
}

// Handler returns the mux the server runs, for mounting the endpoints on an
// existing HTTP server.
func (s *Server) Handler() (http.Handler, error) {
	if s.registry == nil {
		return nil, errors.WrapFatal(fmt.Errorf("nil registry"), "Server", "Handler", "build handler")
	}

	mux := http.NewServeMux()
	mux.Handle(s.path, promhttp.HandlerFor(s.registry.PrometheusRegistry(), promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux, nil
}

// Start listens on the configured port and serves until Stop.
func (s *Server) Start() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Listen opens the listener for the configured port.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return nil, errors.WrapFatal(err, "Server", "Listen", fmt.Sprintf("listen on port %d", s.port))
	}
	return ln, nil
}

// Serve serves on ln until Stop and then returns nil. Serve after Stop closes
// ln and returns at once.
func (s *Server) Serve(ln net.Listener) error {
	handler, err := s.Handler()
	if err != nil {
		_ = ln.Close()
		return err
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	if s.srv != nil {
		s.mu.Unlock()
		_ = ln.Close()
		return errors.WrapInvalid(fmt.Errorf("server already running"), "Server", "Serve", "start")
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	s.srv = srv
	s.mu.Unlock()

	s.logger.Info("metrics server listening", "address", ln.Addr().String(), "path", s.path)

	if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.WrapFatal(err, "Server", "Serve", "serve metrics")
	}
	return nil
}

// Stop closes the server. A stopped server does not serve again.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.srv == nil {
		return nil
	}
	err := s.srv.Close()
	s.srv = nil
	if err != nil {
		return errors.WrapTransient(err, "Server", "Stop", "close HTTP server")
	}
	return nil
}

// Address returns the metrics URL on localhost.
func (s *Server) Address() string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, s.path)
}
