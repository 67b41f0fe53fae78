package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	// ErrInvalidPort indicates the server port is out of range.
	ErrInvalidPort = errors.New("server port must be between 1 and 65535")

	// ErrUnknownCacheType indicates an unrecognized cache backend type.
	ErrUnknownCacheType = errors.New("unknown cache type")

	// ErrMissingRedisURL indicates a redis partition without a URL.
	ErrMissingRedisURL = errors.New("redis cache requires a URL")

	// ErrUnknownStoreDriver indicates an unrecognized store driver.
	ErrUnknownStoreDriver = errors.New("unknown store driver")

	// ErrMissingStoreDSN indicates a store without a DSN.
	ErrMissingStoreDSN = errors.New("store requires a DSN")
)

// Validate checks the configuration for consistency.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("configuration is nil")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return ErrInvalidPort
	}

	if err := validateCache("org", &cfg.Cache.Org); err != nil {
		return err
	}
	if err := validateCache("session", &cfg.Cache.Session); err != nil {
		return err
	}

	if err := validateStore(&cfg.Store); err != nil {
		return err
	}

	for i := range cfg.Handlers {
		if err := validateHandler(&cfg.Handlers[i]); err != nil {
			return fmt.Errorf("handler %d: %w", i, err)
		}
	}

	return nil
}

func validateCache(name string, cfg *CacheConfig) error {
	if !cfg.Enabled {
		return nil
	}

	switch cfg.Type {
	case CacheTypeMemory, "":
	case CacheTypeRedis:
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return fmt.Errorf("cache partition %s: %w", name, ErrMissingRedisURL)
		}
	default:
		return fmt.Errorf("cache partition %s: %w: %s", name, ErrUnknownCacheType, cfg.Type)
	}

	return nil
}

func validateStore(cfg *StoreConfig) error {
	switch cfg.Driver {
	case "sqlite", "":
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStoreDriver, cfg.Driver)
	}

	if cfg.DSN == "" {
		return ErrMissingStoreDSN
	}

	return nil
}

func validateHandler(m *HandlerManifest) error {
	if m.Template == "" {
		return errors.New("template is required")
	}
	if !strings.HasPrefix(m.Template, "/") {
		return fmt.Errorf("template %q must start with /", m.Template)
	}
	if m.RecordType == "" {
		return errors.New("recordType is required")
	}
	switch m.Scope {
	case "", "Org", "Session":
	default:
		return fmt.Errorf("scope %q must be Org or Session", m.Scope)
	}
	return nil
}
