package router

import (
	"context"
	"time"

	"github.com/confroute/confroute/internal/cache"
	"github.com/confroute/confroute/internal/observability"
)

// typeParam is the query parameter consulted for result coercion.
const typeParam = "type"

// Dispatcher is the public facade of the router. Reads go to the first
// matching handler through the cache gateway; writes fan out to every
// matching handler and invalidate the handler's cache partition.
type Dispatcher struct {
	registry *Registry
	gateway  *cache.Gateway
	logger   observability.Logger
}

// NewDispatcher creates a dispatcher over an empty registry.
func NewDispatcher(gateway *cache.Gateway, logger observability.Logger) *Dispatcher {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Dispatcher{
		registry: NewRegistry(),
		gateway:  gateway,
		logger:   logger,
	}
}

// HandlerOption adjusts the defaults of a convenience registration.
type HandlerOption func(*HandlerConfig)

// WithScope sets the cache partition backing the handler.
func WithScope(scope cache.Scope) HandlerOption {
	return func(cfg *HandlerConfig) {
		cfg.Scope = scope
	}
}

// WithCache enables or disables cache consultation for the handler.
func WithCache(enabled bool) HandlerOption {
	return func(cfg *HandlerConfig) {
		cfg.CacheEnabled = enabled
	}
}

// Register adds or updates a handler with explicit configuration.
func (d *Dispatcher) Register(template string, cfg HandlerConfig) *Handler {
	h := d.registry.Register(template, cfg)
	d.logger.Debug("handler registered",
		observability.String("template", template),
		observability.Int("id", h.ID()),
		observability.Bool("cache", cfg.CacheEnabled),
		observability.String("scope", string(cfg.Scope)))
	return h
}

// RegisterRead registers a read-only handler. Caching defaults to
// enabled and the scope to Org.
func (d *Dispatcher) RegisterRead(template string, fn ReadFunc, opts ...HandlerOption) *Handler {
	return d.Register(template, applyOptions(HandlerConfig{OnRead: fn}, opts))
}

// RegisterWrite registers a write-only handler. Caching defaults to
// enabled and the scope to Org.
func (d *Dispatcher) RegisterWrite(template string, fn WriteFunc, opts ...HandlerOption) *Handler {
	return d.Register(template, applyOptions(HandlerConfig{OnWrite: fn}, opts))
}

// RegisterReadWrite registers a handler with both callbacks. Caching
// defaults to enabled and the scope to Org.
func (d *Dispatcher) RegisterReadWrite(template string, read ReadFunc, write WriteFunc, opts ...HandlerOption) *Handler {
	return d.Register(template, applyOptions(HandlerConfig{OnRead: read, OnWrite: write}, opts))
}

func applyOptions(cfg HandlerConfig, opts []HandlerOption) HandlerConfig {
	cfg.CacheEnabled = true
	cfg.Scope = cache.ScopeOrg
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// ListPaths returns the registered template strings in registration
// order.
func (d *Dispatcher) ListPaths() []string {
	return d.registry.Templates()
}

// Read dispatches path to the first matching handler in registration
// order and returns its value, fetched through the cache gateway and
// coerced by the type query parameter. Matching short-circuits: once a
// handler matches, no further handlers are consulted, even when the
// matched handler has no read callback. found is false when no handler
// matches or the matched handler cannot read.
func (d *Dispatcher) Read(ctx context.Context, path string) (value any, found bool, err error) {
	start := time.Now()
	metrics := getRouterMetrics()
	defer func() {
		metrics.dispatchDuration.WithLabelValues("read").Observe(time.Since(start).Seconds())
	}()

	for _, h := range d.registry.Handlers() {
		params, matched := h.matcher.Match(path)
		if !matched {
			continue
		}

		if h.onRead == nil {
			metrics.dispatchesTotal.WithLabelValues("read", "no_callback").Inc()
			return nil, false, nil
		}

		raw, err := d.gateway.Fetch(ctx, h.policy(), cache.BuildKey(h.id, params), func(ctx context.Context) (any, error) {
			return h.onRead(ctx, params)
		})
		if err != nil {
			metrics.dispatchesTotal.WithLabelValues("read", "error").Inc()
			return nil, false, err
		}

		value, err := Coerce(raw, params[typeParam])
		if err != nil {
			metrics.dispatchesTotal.WithLabelValues("read", "error").Inc()
			return nil, false, err
		}

		metrics.dispatchesTotal.WithLabelValues("read", "matched").Inc()
		return value, true, nil
	}

	metrics.dispatchesTotal.WithLabelValues("read", "no_match").Inc()
	return nil, false, nil
}

// Write dispatches path to every matching handler in registration
// order. Each matched handler with a write callback is invoked with
// the parameter map and data; a successful callback invalidates the
// handler's cache partition. Handlers without a write callback are
// skipped without invalidation. A nil data defaults to an empty map.
//
// The first callback or invalidation error stops the fan-out and is
// returned; earlier handlers' effects are not rolled back.
func (d *Dispatcher) Write(ctx context.Context, path string, data map[string]any) error {
	start := time.Now()
	metrics := getRouterMetrics()
	defer func() {
		metrics.dispatchDuration.WithLabelValues("write").Observe(time.Since(start).Seconds())
	}()

	if data == nil {
		data = map[string]any{}
	}

	dispatched := 0
	for _, h := range d.registry.Handlers() {
		params, matched := h.matcher.Match(path)
		if !matched || h.onWrite == nil {
			continue
		}

		if err := h.onWrite(ctx, params, data); err != nil {
			metrics.dispatchesTotal.WithLabelValues("write", "error").Inc()
			return err
		}

		if err := d.gateway.Invalidate(ctx, h.policy()); err != nil {
			metrics.dispatchesTotal.WithLabelValues("write", "error").Inc()
			return err
		}

		dispatched++
	}

	if dispatched == 0 {
		metrics.dispatchesTotal.WithLabelValues("write", "no_match").Inc()
		return nil
	}

	metrics.dispatchesTotal.WithLabelValues("write", "matched").Inc()
	d.logger.Debug("write dispatched",
		observability.String("path", path),
		observability.Int("handlers", dispatched))

	return nil
}
