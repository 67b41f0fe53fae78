package router

import (
	"context"
	"sync"

	"github.com/confroute/confroute/internal/cache"
)

// ReadFunc produces the value for a matched read. The params map holds
// placeholder bindings merged with query parameters.
type ReadFunc func(ctx context.Context, params map[string]string) (any, error)

// WriteFunc persists a matched write. data carries the caller-supplied
// payload, never nil.
type WriteFunc func(ctx context.Context, params map[string]string, data map[string]any) error

// Handler binds a path template to optional read and write callbacks,
// a cache flag, and a scope. Handlers are created only through the
// registry and live for its lifetime. A Handler is immutable once
// published; re-registration installs a replacement carrying the same
// identity.
type Handler struct {
	id           int
	template     string
	matcher      *TemplateMatcher
	cacheEnabled bool
	scope        cache.Scope
	onRead       ReadFunc
	onWrite      WriteFunc
}

// ID returns the handler's identifier, assigned at registration.
// Identifiers are monotonically increasing and never reused within a
// registry instance.
func (h *Handler) ID() int {
	return h.id
}

// Template returns the handler's path template.
func (h *Handler) Template() string {
	return h.template
}

// CacheEnabled reports whether reads through this handler consult the
// cache gateway.
func (h *Handler) CacheEnabled() bool {
	return h.cacheEnabled
}

// Scope returns the cache partition backing this handler.
func (h *Handler) Scope() cache.Scope {
	return h.scope
}

// policy derives the gateway policy for this handler.
func (h *Handler) policy() cache.Policy {
	return cache.Policy{Enabled: h.cacheEnabled, Scope: h.scope}
}

// HandlerConfig carries the mutable attributes of a handler.
type HandlerConfig struct {
	CacheEnabled bool
	Scope        cache.Scope
	OnRead       ReadFunc
	OnWrite      WriteFunc
}

// Registry is an ordered collection of handlers keyed by template
// string. Registration order is preserved and drives dispatch order.
// Registration and lookup are safe for concurrent use, so handlers can
// be re-registered on a config reload while dispatch traffic runs.
type Registry struct {
	mu         sync.RWMutex
	handlers   []*Handler
	byTemplate map[string]*Handler
	nextID     int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byTemplate: make(map[string]*Handler),
	}
}

// Register adds a handler for template, or updates the existing one
// when the exact template string is already registered. An update
// replaces the cache flag, scope, and both callbacks while preserving
// the handler's identifier and registration-order position. There is
// no removal operation.
func (r *Registry) Register(template string, cfg HandlerConfig) *Handler {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := &Handler{
		template:     template,
		cacheEnabled: cfg.CacheEnabled,
		scope:        cfg.Scope,
		onRead:       cfg.OnRead,
		onWrite:      cfg.OnWrite,
	}

	if existing, ok := r.byTemplate[template]; ok {
		h.id = existing.id
		h.matcher = existing.matcher
		for i, old := range r.handlers {
			if old.id == existing.id {
				r.handlers[i] = h
				break
			}
		}
		r.byTemplate[template] = h
		return h
	}

	h.id = r.nextID
	h.matcher = NewTemplateMatcher(template)
	r.nextID++

	r.handlers = append(r.handlers, h)
	r.byTemplate[template] = h

	getRouterMetrics().handlersRegistered.Set(float64(len(r.handlers)))

	return h
}

// Find returns the handler registered for the exact template string.
func (r *Registry) Find(template string) (*Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.byTemplate[template]
	return h, ok
}

// Handlers returns a snapshot of the handlers in registration order.
func (r *Registry) Handlers() []*Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]*Handler, len(r.handlers))
	copy(snapshot, r.handlers)
	return snapshot
}

// Templates returns the registered template strings in registration
// order.
func (r *Registry) Templates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	templates := make([]string, len(r.handlers))
	for i, h := range r.handlers {
		templates[i] = h.template
	}
	return templates
}
