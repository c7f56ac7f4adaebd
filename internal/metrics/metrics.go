// Package metrics exposes Prometheus instrumentation for the gateway and an
// optional debug HTTP listener. All record methods are safe on a nil
// *Metrics so instrumentation can be disabled by simply not constructing it.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds the gateway's Prometheus collectors on a private registry,
// so tests and embedders never collide with the global default registry.
type Metrics struct {
	registry *prometheus.Registry

	sessionsOpened prometheus.Counter
	sessionsClosed prometheus.Counter
	openSessions   prometheus.Gauge
	executions     *prometheus.CounterVec
	execErrors     prometheus.Counter
	policyDenials  *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.sessionsOpened = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sshmcp_sessions_opened_total",
		Help: "Sessions successfully opened.",
	})
	m.sessionsClosed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sshmcp_sessions_closed_total",
		Help: "Sessions closed.",
	})
	m.openSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sshmcp_open_sessions",
		Help: "Sessions currently open.",
	})
	m.executions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sshmcp_executions_total",
		Help: "Commands executed, by policy mode.",
	}, []string{"mode"})
	m.execErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sshmcp_execution_errors_total",
		Help: "Command executions that failed at the transport level.",
	})
	m.policyDenials = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sshmcp_policy_denials_total",
		Help: "Restricted-mode commands denied, by rule category.",
	}, []string{"category"})

	m.registry.MustRegister(
		m.sessionsOpened, m.sessionsClosed, m.openSessions,
		m.executions, m.execErrors, m.policyDenials,
	)
	return m
}

// SessionOpened records a successful session creation.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsOpened.Inc()
	m.openSessions.Inc()
}

// SessionClosed records a session removal.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessionsClosed.Inc()
	m.openSessions.Dec()
}

// Execution records one command reaching the transport.
func (m *Metrics) Execution(mode string) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(mode).Inc()
}

// ExecutionError records a transport-level execution failure.
func (m *Metrics) ExecutionError() {
	if m == nil {
		return
	}
	m.execErrors.Inc()
}

// PolicyDenial records a restricted-mode denial.
func (m *Metrics) PolicyDenial(category string) {
	if m == nil {
		return
	}
	m.policyDenials.WithLabelValues(category).Inc()
}

// Handler serves the collectors in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server is the optional debug HTTP listener carrying /metrics and
// /healthz. Off unless an address is configured; the MCP protocol owns
// stdout, so this is the only network surface the process ever opens.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds the debug listener for addr.
func NewServer(addr string, m *Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until Shutdown. Blocks; run it in a goroutine.
func (s *Server) Start() error {
	s.logger.Info("debug listener started", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
