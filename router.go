package routecore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vyrodovalexey/routecore/constraint"
	"github.com/vyrodovalexey/routecore/metrics"
	"github.com/vyrodovalexey/routecore/observability"
	"github.com/vyrodovalexey/routecore/routing"
	"github.com/vyrodovalexey/routecore/source"
)

const tracerName = "github.com/vyrodovalexey/routecore"

// Errors returned by Router operations.
var (
	// ErrNoMatch is returned by MatchRequest when no endpoint matches.
	ErrNoMatch = routing.ErrNoMatch

	// ErrLinkNotFound is returned by GenerateLink when no eligible
	// endpoint exists for the name and values.
	ErrLinkNotFound = routing.ErrLinkNotFound

	// ErrAmbiguousLink is returned by GenerateLink when two eligible
	// endpoints tie exactly and neither can be preferred.
	ErrAmbiguousLink = routing.ErrAmbiguousLink
)

// Router matches request paths against an endpoint set and generates
// URLs from route names. It is safe for concurrent use.
//
// The router observes its EndpointSource lazily: each operation checks
// the source version and rebuilds the route tables if it changed.
// Rebuilds are atomic; concurrent operations keep the snapshot they
// started with.
type Router struct {
	src      source.EndpointSource
	registry *constraint.Registry
	logger   observability.Logger
	metrics  *metrics.RouterMetrics
	tracer   trace.Tracer
	strict   bool

	snapshot  atomic.Pointer[snapshot]
	rebuildMu sync.Mutex
}

// New creates a Router over the given endpoint source. The first
// rebuild happens lazily on the first operation.
func New(src source.EndpointSource, opts ...Option) *Router {
	r := &Router{
		src:      src,
		registry: constraint.DefaultRegistry(),
		logger:   observability.NopLogger(),
		tracer:   noop.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MatchRequest finds the best-matching endpoint for a request path. The
// returned values are the bound path parameters merged with the entry
// defaults, including the group identifier under routing.GroupKey.
// Returns ErrNoMatch if no endpoint matches.
func (r *Router) MatchRequest(ctx context.Context, path string) (*routing.Match, error) {
	snap, err := r.current(ctx)
	if err != nil {
		return nil, err
	}

	m, ok := snap.tree.Match(path)
	if !ok {
		r.metrics.RecordMatch(metrics.OutcomeNoMatch)
		return nil, ErrNoMatch
	}

	r.metrics.RecordMatch(metrics.OutcomeMatched)
	return m, nil
}

// GenerateLink builds a URL for the named route from the supplied
// values. Returns ErrLinkNotFound when no endpoint is eligible and
// ErrAmbiguousLink when two eligible endpoints tie exactly.
func (r *Router) GenerateLink(ctx context.Context, name string, values routing.RouteValues) (string, error) {
	snap, err := r.current(ctx)
	if err != nil {
		return "", err
	}

	u, err := snap.links.Generate(name, values)
	switch {
	case err == nil:
		r.metrics.RecordLink(metrics.OutcomeGenerated)
	case errors.Is(err, ErrAmbiguousLink):
		r.metrics.RecordLink(metrics.OutcomeAmbiguous)
	default:
		r.metrics.RecordLink(metrics.OutcomeNotFound)
	}
	return u, err
}

// Routes returns the inbound route table of the current snapshot, in
// match order. The slice is a copy; entries are immutable.
func (r *Router) Routes(ctx context.Context) ([]*routing.InboundEntry, error) {
	snap, err := r.current(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*routing.InboundEntry, len(snap.inbound))
	copy(out, snap.inbound)
	return out, nil
}

// Links returns the outbound route table of the current snapshot.
func (r *Router) Links(ctx context.Context) ([]*routing.OutboundEntry, error) {
	snap, err := r.current(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*routing.OutboundEntry, len(snap.outbound))
	copy(out, snap.outbound)
	return out, nil
}

// Refresh forces a version check against the source, rebuilding the
// route tables if the version changed. Operations do this implicitly;
// Refresh exists so embedders can front-load the first build.
func (r *Router) Refresh(ctx context.Context) error {
	_, err := r.current(ctx)
	return err
}
