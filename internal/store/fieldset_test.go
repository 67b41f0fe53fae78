package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldReaderByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Insert(ctx, "User", Record{"name": "Ada", "email": "ada@example.com"})
	require.NoError(t, err)

	read := FieldReader(s, "User")

	value, err := read(ctx, map[string]string{"id": rec.ID()})
	require.NoError(t, err)
	record, ok := value.(Record)
	require.True(t, ok)
	assert.Equal(t, "Ada", record["name"])
}

func TestFieldReaderSingleField(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Insert(ctx, "User", Record{"name": "Ada", "email": "ada@example.com"})
	require.NoError(t, err)

	read := FieldReader(s, "User")

	value, err := read(ctx, map[string]string{"id": rec.ID(), "field": "email"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", value)
}

func TestFieldReaderMissingRecord(t *testing.T) {
	s := newTestStore(t)

	read := FieldReader(s, "User")

	value, err := read(context.Background(), map[string]string{"id": "missing"})
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestFieldReaderFilterList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "User", Record{"name": "Ada", "team": "eng"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "User", Record{"name": "Alan", "team": "eng"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "User", Record{"name": "Grace", "team": "ops"})
	require.NoError(t, err)

	read := FieldReader(s, "User")

	// The type parameter is coercion metadata, not a filter.
	value, err := read(ctx, map[string]string{"team": "eng", "type": "List"})
	require.NoError(t, err)
	list, ok := value.([]any)
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestFieldSetterUpdatesByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Insert(ctx, "User", Record{"name": "Ada", "active": false})
	require.NoError(t, err)

	write := FieldSetter(s, "User")

	err = write(ctx, map[string]string{"id": rec.ID()}, map[string]any{"active": true})
	require.NoError(t, err)

	records, err := s.Query(ctx, Query{Type: "User", Where: map[string]any{"id": rec.ID()}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, true, records[0]["active"])
}

func TestFieldSetterSingleField(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Insert(ctx, "User", Record{"name": "Ada"})
	require.NoError(t, err)

	write := FieldSetter(s, "User")

	err = write(ctx, map[string]string{"id": rec.ID(), "field": "name"}, map[string]any{"value": "Countess"})
	require.NoError(t, err)

	records, err := s.Query(ctx, Query{Type: "User", Where: map[string]any{"id": rec.ID()}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Countess", records[0]["name"])
}

func TestFieldSetterInsertsWithoutID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	write := FieldSetter(s, "User")

	err := write(ctx, map[string]string{}, map[string]any{"name": "Grace"})
	require.NoError(t, err)

	records, err := s.Query(ctx, Query{Type: "User", Where: map[string]any{"name": "Grace"}})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
