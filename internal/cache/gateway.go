package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/confroute/confroute/internal/observability"
)

// gatewayTracerName is the OpenTelemetry tracer name for gateway operations.
const gatewayTracerName = "confroute/cache"

// Policy is the per-handler caching policy applied by the gateway.
type Policy struct {
	// Enabled indicates whether the handler's partition is consulted.
	Enabled bool

	// Scope selects the partition.
	Scope Scope
}

// ComputeFunc produces a value on a cache miss.
type ComputeFunc func(ctx context.Context) (any, error)

// Gateway applies the cache-aside protocol on top of the partitions.
type Gateway struct {
	partitions *Partitions
	logger     observability.Logger
}

// NewGateway creates a gateway over the given partitions.
func NewGateway(partitions *Partitions, logger observability.Logger) *Gateway {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Gateway{
		partitions: partitions,
		logger:     logger,
	}
}

// Fetch returns the cached value for key, computing and populating on a
// miss. When the policy disables caching the compute function runs
// unconditionally. A nil computed value is returned but never stored:
// the protocol cannot distinguish a cached nil from an absent key, so
// nil results are recomputed on every call.
//
// Cache hits are decoded from JSON; a freshly computed value is
// returned as produced by the callback.
func (g *Gateway) Fetch(ctx context.Context, pol Policy, key string, compute ComputeFunc) (any, error) {
	ctx, span := otel.Tracer(gatewayTracerName).Start(ctx, "gateway.Fetch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("cache.scope", string(pol.Scope)),
			attribute.String("cache.key", key),
			attribute.Bool("cache.enabled", pol.Enabled),
		),
	)
	defer span.End()

	if !pol.Enabled {
		return compute(ctx)
	}

	partition := g.partitions.ForScope(pol.Scope)

	raw, err := partition.Get(ctx, key)
	switch {
	case err == nil:
		span.SetAttributes(attribute.Bool("cache.hit", true))
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("decode cached value for %s: %w", key, err)
		}
		return value, nil
	case errors.Is(err, ErrCacheMiss), errors.Is(err, ErrCacheDisabled):
		span.SetAttributes(attribute.Bool("cache.hit", false))
	default:
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}

	value, err := compute(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}

	if value == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value for %s: %w", key, err)
	}

	// A disabled partition cannot store the value; the computed
	// result is still the answer.
	if err := partition.Set(ctx, key, encoded, 0); err != nil && !errors.Is(err, ErrCacheDisabled) {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}

	g.logger.Debug("cache populated",
		observability.String("key", key),
		observability.String("scope", string(pol.Scope)))

	return value, nil
}

// Invalidate reloads the partition selected by the policy. Invalidation
// is coarse: the whole partition is dropped, not a single key.
func (g *Gateway) Invalidate(ctx context.Context, pol Policy) error {
	ctx, span := otel.Tracer(gatewayTracerName).Start(ctx, "gateway.Invalidate",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("cache.scope", string(pol.Scope)),
		),
	)
	defer span.End()

	if !pol.Enabled {
		return nil
	}

	if err := g.partitions.ForScope(pol.Scope).Reload(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return err
	}

	GetCacheMetrics().invalidationsTotal.WithLabelValues(string(pol.Scope)).Inc()

	g.logger.Debug("partition invalidated",
		observability.String("scope", string(pol.Scope)))

	return nil
}
