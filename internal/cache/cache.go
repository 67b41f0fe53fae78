package cache

import (
	"context"
	"errors"
	"time"

	"github.com/confroute/confroute/internal/config"
	"github.com/confroute/confroute/internal/observability"
)

// Common cache errors.
var (
	// ErrCacheMiss indicates that the key was not found in the cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheDisabled indicates that caching is disabled.
	ErrCacheDisabled = errors.New("cache disabled")

	// ErrInvalidConfig indicates that the cache configuration is invalid.
	ErrInvalidConfig = errors.New("invalid cache configuration")
)

// Scope selects which cache partition backs a handler.
type Scope string

const (
	// ScopeOrg selects the organization-wide partition.
	ScopeOrg Scope = "Org"

	// ScopeSession selects the session partition.
	ScopeSession Scope = "Session"
)

// ParseScope maps a scope name to a Scope, defaulting to Org.
func ParseScope(s string) Scope {
	if s == string(ScopeSession) {
		return ScopeSession
	}
	return ScopeOrg
}

// Cache is the interface implemented by a partition backend.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the given TTL.
	// A TTL of 0 means the backend's default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Reload drops everything held by this partition. Invalidation is
	// coarse-grained: there is no per-key eviction in the protocol.
	Reload(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}

// New creates a partition backend based on the configuration.
func New(cfg *config.CacheConfig, logger observability.Logger) (Cache, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	if !cfg.Enabled {
		return newDisabledCache(), nil
	}

	if logger == nil {
		logger = observability.NopLogger()
	}

	switch cfg.Type {
	case config.CacheTypeMemory, "":
		return newMemoryCache(cfg, logger)
	case config.CacheTypeRedis:
		return newRedisCache(cfg, logger)
	default:
		return nil, errors.New("unknown cache type: " + cfg.Type)
	}
}

// disabledCache is a cache that never stores anything.
type disabledCache struct{}

func newDisabledCache() Cache {
	return &disabledCache{}
}

func (c *disabledCache) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, ErrCacheDisabled
}

func (c *disabledCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return ErrCacheDisabled
}

func (c *disabledCache) Reload(_ context.Context) error {
	return nil
}

func (c *disabledCache) Close() error {
	return nil
}

// Partitions holds the two cache partitions.
type Partitions struct {
	org     Cache
	session Cache
}

// NewPartitions builds the Org and Session partitions from configuration.
// Redis-backed partitions get distinct default key prefixes so a reload
// of one partition leaves the other intact.
func NewPartitions(cfg *config.CachePartitionsConfig, logger observability.Logger) (*Partitions, error) {
	orgCfg := cfg.Org
	if orgCfg.Redis != nil && orgCfg.Redis.KeyPrefix == "" {
		redisCfg := *orgCfg.Redis
		redisCfg.KeyPrefix = "confroute:org:"
		orgCfg.Redis = &redisCfg
	}

	sessionCfg := cfg.Session
	if sessionCfg.Redis != nil && sessionCfg.Redis.KeyPrefix == "" {
		redisCfg := *sessionCfg.Redis
		redisCfg.KeyPrefix = "confroute:session:"
		sessionCfg.Redis = &redisCfg
	}

	org, err := New(&orgCfg, logger)
	if err != nil {
		return nil, err
	}

	session, err := New(&sessionCfg, logger)
	if err != nil {
		_ = org.Close()
		return nil, err
	}

	return &Partitions{org: org, session: session}, nil
}

// NewPartitionsFromCaches wraps two existing caches as partitions.
func NewPartitionsFromCaches(org, session Cache) *Partitions {
	return &Partitions{org: org, session: session}
}

// ForScope returns the partition backing the given scope.
func (p *Partitions) ForScope(scope Scope) Cache {
	if scope == ScopeSession {
		return p.session
	}
	return p.org
}

// Close closes both partitions.
func (p *Partitions) Close() error {
	err := p.org.Close()
	if serr := p.session.Close(); err == nil {
		err = serr
	}
	return err
}
