package store

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/confroute/confroute/internal/config"
	"github.com/confroute/confroute/internal/observability"
)

// breakerStore wraps a Store with a circuit breaker. After the
// configured number of consecutive failures the breaker opens and
// operations fail fast until the timeout elapses.
type breakerStore struct {
	inner   Store
	breaker *gobreaker.CircuitBreaker
	logger  observability.Logger
}

func newBreakerStore(inner Store, cfg *config.BreakerConfig, logger observability.Logger) *breakerStore {
	threshold := uint32(cfg.Threshold)

	timeout := cfg.Timeout.Duration()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    "record-store",
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()))
		},
	}

	return &breakerStore{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

func (s *breakerStore) Query(ctx context.Context, q Query) ([]Record, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		return s.inner.Query(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	records, _ := result.([]Record)
	return records, nil
}

func (s *breakerStore) Insert(ctx context.Context, recordType string, rec Record) (Record, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		return s.inner.Insert(ctx, recordType, rec)
	})
	if err != nil {
		return nil, err
	}
	inserted, _ := result.(Record)
	return inserted, nil
}

func (s *breakerStore) Update(ctx context.Context, recordType string, ids []string, fields map[string]any) (int, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		return s.inner.Update(ctx, recordType, ids, fields)
	})
	if err != nil {
		return 0, err
	}
	updated, _ := result.(int)
	return updated, nil
}

func (s *breakerStore) Delete(ctx context.Context, recordType string, ids []string) (int, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		return s.inner.Delete(ctx, recordType, ids)
	})
	if err != nil {
		return 0, err
	}
	deleted, _ := result.(int)
	return deleted, nil
}

func (s *breakerStore) Close() error {
	return s.inner.Close()
}
