package routecore

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/routecore/constraint"
	"github.com/vyrodovalexey/routecore/metrics"
	"github.com/vyrodovalexey/routecore/observability"
)

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger observability.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithMetrics attaches router metrics. Without this option no metrics
// are recorded.
func WithMetrics(m *metrics.RouterMetrics) Option {
	return func(r *Router) {
		r.metrics = m
	}
}

// WithConstraintRegistry sets the constraint registry used to resolve
// constraint keys during rebuilds. Defaults to a registry with the
// builtin constraint kinds.
func WithConstraintRegistry(registry *constraint.Registry) Option {
	return func(r *Router) {
		r.registry = registry
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider used for
// rebuild spans. Defaults to a no-op provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Router) {
		r.tracer = tp.Tracer(tracerName)
	}
}

// WithStrictBuild makes rebuilds fail on the first malformed endpoint
// instead of skipping it. In the default lenient mode malformed
// endpoints are logged, counted and left out of the tables.
func WithStrictBuild() Option {
	return func(r *Router) {
		r.strict = true
	}
}
