package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confroute/confroute/internal/cache"
)

func noopRead(context.Context, map[string]string) (any, error) { return nil, nil }

func TestRegistryRegisterAssignsMonotonicIDs(t *testing.T) {
	r := NewRegistry()

	a := r.Register("/a", HandlerConfig{OnRead: noopRead})
	b := r.Register("/b", HandlerConfig{OnRead: noopRead})
	c := r.Register("/c", HandlerConfig{OnRead: noopRead})

	assert.Equal(t, 0, a.ID())
	assert.Equal(t, 1, b.ID())
	assert.Equal(t, 2, c.ID())
}

func TestRegistryReRegistrationUpdatesInPlace(t *testing.T) {
	r := NewRegistry()

	r.Register("/a", HandlerConfig{OnRead: noopRead, CacheEnabled: true, Scope: cache.ScopeOrg})
	r.Register("/b", HandlerConfig{OnRead: noopRead})

	updated := r.Register("/a", HandlerConfig{
		OnRead:       noopRead,
		CacheEnabled: false,
		Scope:        cache.ScopeSession,
	})

	// Identity and position preserved, attributes replaced.
	assert.Equal(t, 0, updated.ID())
	assert.False(t, updated.CacheEnabled())
	assert.Equal(t, cache.ScopeSession, updated.Scope())
	assert.Equal(t, []string{"/a", "/b"}, r.Templates())
	assert.Len(t, r.Handlers(), 2)

	// The next fresh registration does not reuse an identifier.
	c := r.Register("/c", HandlerConfig{OnRead: noopRead})
	assert.Equal(t, 2, c.ID())
}

func TestRegistryFind(t *testing.T) {
	r := NewRegistry()
	r.Register("/System/${name}", HandlerConfig{OnRead: noopRead})

	h, ok := r.Find("/System/${name}")
	require.True(t, ok)
	assert.Equal(t, "/System/${name}", h.Template())

	// Lookup is by exact template string, not by match.
	_, ok = r.Find("/System/version")
	assert.False(t, ok)
}

func TestRegistryTemplatesOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("/c", HandlerConfig{})
	r.Register("/a", HandlerConfig{})
	r.Register("/b", HandlerConfig{})

	assert.Equal(t, []string{"/c", "/a", "/b"}, r.Templates())
}
