package router

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confroute/confroute/internal/store"
)

func TestCoercePassthrough(t *testing.T) {
	value := map[string]any{"raw": true}

	got, err := Coerce(value, "")
	require.NoError(t, err)
	assert.Equal(t, value, got)

	got, err = Coerce(value, "Unknown")
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestCoerceNil(t *testing.T) {
	got, err := Coerce(nil, "Integer")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCoerceBoolean(t *testing.T) {
	tests := []struct {
		value    any
		expected bool
	}{
		{true, true},
		{"true", true},
		{"false", false},
		{1, true},
		{0.0, false},
	}

	for _, tt := range tests {
		got, err := Coerce(tt.value, "Boolean")
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}

	_, err := Coerce("not-a-bool", "Boolean")
	assert.Error(t, err)
}

func TestCoerceIntegerAndLong(t *testing.T) {
	got, err := Coerce(41.0, "Integer")
	require.NoError(t, err)
	assert.Equal(t, 41, got)

	got, err = Coerce("42", "Integer")
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = Coerce(43, "Long")
	require.NoError(t, err)
	assert.Equal(t, int64(43), got)

	_, err = Coerce("nope", "Long")
	assert.Error(t, err)
	_, err = Coerce([]any{}, "Integer")
	assert.Error(t, err)
}

func TestCoerceDouble(t *testing.T) {
	got, err := Coerce(3, "Double")
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	got, err = Coerce("2.5", "Double")
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)
}

func TestCoerceDecimal(t *testing.T) {
	got, err := Coerce("12.345", "Decimal")
	require.NoError(t, err)

	d, ok := got.(*big.Float)
	require.True(t, ok)
	f, _ := d.Float64()
	assert.InDelta(t, 12.345, f, 1e-9)

	got, err = Coerce(2.5, "Decimal")
	require.NoError(t, err)
	_, ok = got.(*big.Float)
	assert.True(t, ok)
}

func TestCoerceString(t *testing.T) {
	got, err := Coerce(42, "String")
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	got, err = Coerce("already", "String")
	require.NoError(t, err)
	assert.Equal(t, "already", got)
}

func TestCoerceList(t *testing.T) {
	got, err := Coerce("single", "List")
	require.NoError(t, err)
	assert.Equal(t, []any{"single"}, got)

	got, err = Coerce([]any{1, 2}, "List")
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, got)

	got, err = Coerce([]string{"a", "b"}, "List")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, got)
}

func TestCoerceSetDeduplicates(t *testing.T) {
	got, err := Coerce([]any{"a", "b", "a", "c", "b"}, "Set")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, got)
}

func TestCoerceMapAndRecord(t *testing.T) {
	m := map[string]any{"name": "Ada"}

	got, err := Coerce(m, "Record")
	require.NoError(t, err)
	rec, ok := got.(store.Record)
	require.True(t, ok)
	assert.Equal(t, "Ada", rec["name"])

	got, err = Coerce(store.Record(m), "Map")
	require.NoError(t, err)
	_, ok = got.(map[string]any)
	assert.True(t, ok)

	_, err = Coerce("nope", "Map")
	assert.Error(t, err)
	_, err = Coerce(42, "Record")
	assert.Error(t, err)
}

func TestCoerceTemporals(t *testing.T) {
	got, err := Coerce("2026-08-25", "Date")
	require.NoError(t, err)
	d, ok := got.(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2026, d.Year())

	got, err = Coerce("13:37:00", "Time")
	require.NoError(t, err)
	tm, ok := got.(time.Time)
	require.True(t, ok)
	assert.Equal(t, 13, tm.Hour())

	got, err = Coerce("2026-08-25T13:37:00Z", "DateTime")
	require.NoError(t, err)
	_, ok = got.(time.Time)
	assert.True(t, ok)

	now := time.Now()
	got, err = Coerce(now, "DateTime")
	require.NoError(t, err)
	assert.Equal(t, now, got)

	_, err = Coerce("not-a-date", "Date")
	assert.Error(t, err)
}

func TestCoerceCallback(t *testing.T) {
	got, err := Coerce("deferred", "Callback")
	require.NoError(t, err)

	fn, ok := got.(func() any)
	require.True(t, ok)
	assert.Equal(t, "deferred", fn())
}
