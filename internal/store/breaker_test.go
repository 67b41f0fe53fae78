package store

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confroute/confroute/internal/config"
	"github.com/confroute/confroute/internal/observability"
)

// failingStore always fails.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (f *failingStore) Query(context.Context, Query) ([]Record, error) { return nil, errStoreDown }
func (f *failingStore) Insert(context.Context, string, Record) (Record, error) {
	return nil, errStoreDown
}
func (f *failingStore) Update(context.Context, string, []string, map[string]any) (int, error) {
	return 0, errStoreDown
}
func (f *failingStore) Delete(context.Context, string, []string) (int, error) {
	return 0, errStoreDown
}
func (f *failingStore) Close() error { return nil }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cfg := &config.BreakerConfig{Threshold: 3}
	s := newBreakerStore(&failingStore{}, cfg, observability.NopLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Query(ctx, Query{Type: "User"})
		require.ErrorIs(t, err, errStoreDown)
	}

	// Breaker is open now, the inner store is no longer reached.
	_, err := s.Query(ctx, Query{Type: "User"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	inner := newTestStore(t)
	cfg := &config.BreakerConfig{Threshold: 3}
	s := newBreakerStore(inner, cfg, observability.NopLogger())
	ctx := context.Background()

	rec, err := s.Insert(ctx, "User", Record{"name": "Ada"})
	require.NoError(t, err)

	records, err := s.Query(ctx, Query{Type: "User"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID(), records[0].ID())

	updated, err := s.Update(ctx, "User", []string{rec.ID()}, map[string]any{"active": true})
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	deleted, err := s.Delete(ctx, "User", []string{rec.ID()})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestNewSQLiteWrapsWithBreaker(t *testing.T) {
	s, err := NewSQLite(&config.StoreConfig{
		DSN:     ":memory:",
		Breaker: &config.BreakerConfig{Threshold: 5},
	}, observability.NopLogger())
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.(*breakerStore)
	assert.True(t, ok)
}
