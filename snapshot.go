package routecore

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/routecore/observability"
	"github.com/vyrodovalexey/routecore/routing"
	"github.com/vyrodovalexey/routecore/source"
)

// snapshot is one immutable compilation of an endpoint-set version. All
// fields are read-only after construction, so a snapshot may be shared
// by any number of concurrent operations.
type snapshot struct {
	version  int64
	inbound  []*routing.InboundEntry
	outbound []*routing.OutboundEntry
	tree     *routing.Tree
	links    *routing.LinkGenerator
}

// current returns the snapshot for the source's current version,
// rebuilding if the version changed since the last build. The fast path
// is a single atomic load plus the source version check; sources
// implementing source.Versioned avoid the endpoint-set copy entirely
// while the version is unchanged.
func (r *Router) current(ctx context.Context) (*snapshot, error) {
	if snap := r.snapshot.Load(); snap != nil {
		if v, ok := r.src.(source.Versioned); ok && v.Version() == snap.version {
			return snap, nil
		}
	}

	endpoints, version := r.src.Snapshot()

	if snap := r.snapshot.Load(); snap != nil && snap.version == version {
		return snap, nil
	}

	r.rebuildMu.Lock()
	defer r.rebuildMu.Unlock()

	// Another operation may have rebuilt while we waited for the lock.
	if snap := r.snapshot.Load(); snap != nil && snap.version == version {
		return snap, nil
	}

	snap, err := r.rebuild(ctx, endpoints, version)
	if err != nil {
		return nil, err
	}

	r.snapshot.Store(snap)
	return snap, nil
}

// rebuild compiles an endpoint set into a new snapshot.
func (r *Router) rebuild(ctx context.Context, endpoints []source.Endpoint, version int64) (*snapshot, error) {
	_, span := r.tracer.Start(ctx, "routecore.rebuild",
		trace.WithAttributes(
			attribute.Int64("routecore.source_version", version),
			attribute.Int("routecore.endpoints", len(endpoints)),
		),
	)
	defer span.End()

	start := time.Now()

	inbound, outbound, skipped, err := routing.BuildEntries(endpoints, r.registry, r.strict)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "route table build failed")
		r.logger.Error("route table build failed",
			observability.Int64("version", version),
			observability.Error(err),
		)
		return nil, err
	}

	for _, be := range skipped {
		r.logger.Warn("endpoint skipped during rebuild",
			observability.String("endpoint", be.Endpoint),
			observability.String("template", be.Template),
			observability.Error(be.Cause),
		)
	}

	duration := time.Since(start)
	r.metrics.RecordRebuild(duration, len(inbound), len(outbound), len(skipped))

	span.SetAttributes(
		attribute.Int("routecore.inbound_entries", len(inbound)),
		attribute.Int("routecore.outbound_entries", len(outbound)),
		attribute.Int("routecore.skipped_endpoints", len(skipped)),
	)

	r.logger.Info("route tables rebuilt",
		observability.Int64("version", version),
		observability.Int("inbound", len(inbound)),
		observability.Int("outbound", len(outbound)),
		observability.Int("skipped", len(skipped)),
		observability.Duration("duration", duration),
	)

	return &snapshot{
		version:  version,
		inbound:  inbound,
		outbound: outbound,
		tree:     routing.NewTree(inbound),
		links:    routing.NewLinkGenerator(outbound),
	}, nil
}
