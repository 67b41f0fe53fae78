// Package config provides configuration types and loading for the
// configuration router.
package config

// Config is the root configuration for the router daemon.
type Config struct {
	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`

	// Server configures the HTTP surface.
	Server ServerConfig `yaml:"server"`

	// Cache configures the two cache partitions.
	Cache CachePartitionsConfig `yaml:"cache"`

	// Store configures the record store.
	Store StoreConfig `yaml:"store"`

	// Tracing configures OpenTelemetry tracing.
	Tracing TracingConfig `yaml:"tracing"`

	// Handlers declares record-store-backed handlers registered at startup.
	Handlers []HandlerManifest `yaml:"handlers"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is the log output format: json or console.
	Format string `yaml:"format"`

	// Output is the output destination: stdout or stderr.
	Output string `yaml:"output,omitempty"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	// Address is the listen address (host part, may be empty).
	Address string `yaml:"address,omitempty"`

	// Port is the listen port.
	Port int `yaml:"port"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout Duration `yaml:"readTimeout,omitempty"`

	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout Duration `yaml:"writeTimeout,omitempty"`

	// IdleTimeout is the keep-alive idle timeout.
	IdleTimeout Duration `yaml:"idleTimeout,omitempty"`

	// RateLimit configures the token-bucket rate limiter.
	RateLimit *RateLimitConfig `yaml:"rateLimit,omitempty"`
}

// RateLimitConfig configures the HTTP token-bucket rate limiter.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`

	// Burst is the maximum burst size.
	Burst int `yaml:"burst"`
}

// CachePartitionsConfig holds the configuration of the two cache
// partitions. Exactly two partitions exist: Org and Session.
type CachePartitionsConfig struct {
	Org     CacheConfig `yaml:"org"`
	Session CacheConfig `yaml:"session"`
}

// Cache backend types.
const (
	// CacheTypeMemory is the in-memory LRU cache backend.
	CacheTypeMemory = "memory"

	// CacheTypeRedis is the Redis cache backend.
	CacheTypeRedis = "redis"
)

// CacheConfig represents the configuration of one cache partition.
type CacheConfig struct {
	// Enabled indicates whether this partition stores anything at all.
	Enabled bool `yaml:"enabled"`

	// Type is the cache backend type: "memory" or "redis".
	Type string `yaml:"type"`

	// TTL is the default time-to-live for cached entries.
	TTL Duration `yaml:"ttl,omitempty"`

	// MaxEntries is the maximum number of entries for the memory backend.
	MaxEntries int `yaml:"maxEntries,omitempty"`

	// Redis contains Redis-specific configuration.
	Redis *RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig contains Redis-specific cache configuration.
type RedisConfig struct {
	// URL is the Redis connection URL.
	// Format: redis://[user:password@]host:port[/db]
	URL string `yaml:"url"`

	// PoolSize is the maximum number of connections in the pool.
	PoolSize int `yaml:"poolSize,omitempty"`

	// ConnectTimeout is the timeout for establishing connections.
	ConnectTimeout Duration `yaml:"connectTimeout,omitempty"`

	// ReadTimeout is the timeout for read operations.
	ReadTimeout Duration `yaml:"readTimeout,omitempty"`

	// WriteTimeout is the timeout for write operations.
	WriteTimeout Duration `yaml:"writeTimeout,omitempty"`

	// KeyPrefix is a prefix added to all cache keys. Each partition must
	// use a distinct prefix so a partition reload only drops its own keys.
	KeyPrefix string `yaml:"keyPrefix,omitempty"`

	// TTLJitter is the maximum percentage of jitter added to TTL values
	// (0.0 to 1.0). Default is 0 (no jitter).
	TTLJitter float64 `yaml:"ttlJitter,omitempty"`

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecureSkipVerify,omitempty"`
}

// StoreConfig configures the record store.
type StoreConfig struct {
	// Driver is the store driver. Only "sqlite" is supported.
	Driver string `yaml:"driver"`

	// DSN is the driver data source name, e.g. a file path or ":memory:".
	DSN string `yaml:"dsn"`

	// Breaker configures the circuit breaker around store operations.
	Breaker *BreakerConfig `yaml:"breaker,omitempty"`
}

// BreakerConfig configures the record-store circuit breaker.
type BreakerConfig struct {
	// Threshold is the request count before the failure ratio is evaluated.
	Threshold int `yaml:"threshold"`

	// Timeout is how long the breaker stays open before probing.
	Timeout Duration `yaml:"timeout"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns tracing on.
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP/gRPC collector endpoint.
	Endpoint string `yaml:"endpoint,omitempty"`

	// SamplingRate is the trace sampling rate (0.0 to 1.0).
	SamplingRate float64 `yaml:"samplingRate,omitempty"`
}

// HandlerManifest declares one record-store-backed handler registered at
// startup. The template addresses one field of one record:
// placeholders used in the template become query filters on the record.
type HandlerManifest struct {
	// Template is the path template, e.g. /Record/User/${id}/${field}.
	Template string `yaml:"template"`

	// RecordType is the record type the handler reads and writes.
	RecordType string `yaml:"recordType"`

	// Cache enables the cache partition for this handler.
	Cache *bool `yaml:"cache,omitempty"`

	// Scope selects the cache partition: Org (default) or Session.
	Scope string `yaml:"scope,omitempty"`

	// Writable registers a write callback in addition to the read callback.
	Writable bool `yaml:"writable,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Cache: CachePartitionsConfig{
			Org:     CacheConfig{Enabled: true, Type: CacheTypeMemory},
			Session: CacheConfig{Enabled: true, Type: CacheTypeMemory},
		},
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
	}
}
