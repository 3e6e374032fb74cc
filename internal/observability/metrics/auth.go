package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	obserrors "github.com/target/portal-auth/internal/observability/errors"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Recorder receives auth lifecycle events. Implementations must be safe for concurrent use.
type Recorder interface {
	// GuardDecision records one access-guard evaluation.
	GuardDecision(reason, sessionState string)
	// SessionOperation records a session create/decode/destroy/revoke outcome.
	SessionOperation(op, result string, err error)
	// AdminOperation records an admin API outcome.
	AdminOperation(op, result string, err error)
}

// Noop discards every event.
type Noop struct{}

func (Noop) GuardDecision(string, string)            {}
func (Noop) SessionOperation(string, string, error) {}
func (Noop) AdminOperation(string, string, error)   {}

// Config configures the Prometheus recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "portal_auth").
	Namespace string
	// Registry is the registerer to use (default: prometheus.DefaultRegisterer).
	Registry prometheus.Registerer
}

// Option configures the Prometheus recorder.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		if namespace != "" {
			c.Namespace = namespace
		}
	}
}

// WithRegistry sets the Prometheus registerer.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		if registry != nil {
			c.Registry = registry
		}
	}
}

// Prometheus records auth events as Prometheus counters.
type Prometheus struct {
	guardDecisions *prometheus.CounterVec
	sessionOps     *prometheus.CounterVec
	adminOps       *prometheus.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus registers the auth counters and returns a Recorder.
//
// Metrics collected:
//   - <ns>_guard_decisions_total{reason,session_state}
//   - <ns>_session_operations_total{op,result,error_class}
//   - <ns>_admin_operations_total{op,result,error_class}
func NewPrometheus(opts ...Option) *Prometheus {
	cfg := Config{Namespace: "portal_auth", Registry: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Prometheus{
		guardDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "guard_decisions_total",
			Help:      "Access guard decisions by rule and session state",
		}, []string{"reason", "session_state"}),
		sessionOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "session_operations_total",
			Help:      "Session lifecycle operations by outcome",
		}, []string{"op", "result", "error_class"}),
		adminOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "admin_operations_total",
			Help:      "Admin user-management operations by outcome",
		}, []string{"op", "result", "error_class"}),
	}
}

func (p *Prometheus) GuardDecision(reason, sessionState string) {
	p.guardDecisions.WithLabelValues(reason, sessionState).Inc()
}

func (p *Prometheus) SessionOperation(op, result string, err error) {
	p.sessionOps.WithLabelValues(op, result, obserrors.Classify(err)).Inc()
}

func (p *Prometheus) AdminOperation(op, result string, err error) {
	p.adminOps.WithLabelValues(op, result, obserrors.Classify(err)).Inc()
}

// OrNoop returns r, or Noop when r is nil.
//
//nolint:ireturn // the point is to hand back whichever recorder applies.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return Noop{}
	}
	return r
}

// ResultFor maps an error to ResultSuccess or ResultError.
func ResultFor(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
