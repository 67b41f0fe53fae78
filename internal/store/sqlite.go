package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/confroute/confroute/internal/config"
	"github.com/confroute/confroute/internal/observability"
)

// schema creates the records table. Records are stored as JSON
// documents keyed by id and grouped by record type.
const schema = `
CREATE TABLE IF NOT EXISTS records (
	id          TEXT PRIMARY KEY,
	record_type TEXT NOT NULL,
	data        TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_type ON records (record_type);
`

// sqliteStore is the SQLite-backed record store.
type sqliteStore struct {
	db     *sql.DB
	logger observability.Logger
}

// NewSQLite opens a SQLite-backed store and ensures the schema exists.
// When cfg enables the circuit breaker the returned store wraps every
// operation in it.
func NewSQLite(cfg *config.StoreConfig, logger observability.Logger) (Store, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}

	dsn := cfg.DSN
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	// SQLite serializes writers; a single connection avoids lock
	// contention errors under concurrent dispatch.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema: %w", err)
	}

	logger.Info("sqlite store initialized",
		observability.String("dsn", dsn))

	var s Store = &sqliteStore{db: db, logger: logger}

	if cfg.Breaker != nil && cfg.Breaker.Threshold > 0 {
		s = newBreakerStore(s, cfg.Breaker, logger)
	}

	return s, nil
}

// Query returns records of q.Type in insertion order, filtered by the
// Where map. Filters compare gjson paths against the wanted value, so
// nested fields are addressable with dotted paths.
func (s *sqliteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	start := time.Now()
	defer observeStoreOp("query", start)

	if q.Type == "" {
		return nil, ErrInvalidQuery
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM records WHERE record_type = ? ORDER BY created_at, id`,
		q.Type)
	if err != nil {
		countStoreError("query")
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			countStoreError("query")
			return nil, fmt.Errorf("scan record: %w", err)
		}

		if !matchesWhere(data, q.Where) {
			continue
		}

		rec, err := decodeRecord(id, data)
		if err != nil {
			countStoreError("query")
			return nil, err
		}

		result = append(result, rec)
		if q.Limit > 0 && len(result) >= q.Limit {
			break
		}
	}

	if err := rows.Err(); err != nil {
		countStoreError("query")
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return result, nil
}

// Insert persists rec under a fresh identifier unless it already
// carries one.
func (s *sqliteStore) Insert(ctx context.Context, recordType string, rec Record) (Record, error) {
	start := time.Now()
	defer observeStoreOp("insert", start)

	if recordType == "" {
		return nil, ErrInvalidQuery
	}

	stored := make(Record, len(rec)+1)
	for k, v := range rec {
		stored[k] = v
	}
	if stored.ID() == "" {
		stored["id"] = uuid.NewString()
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, record_type, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		stored.ID(), recordType, string(data), now, now)
	if err != nil {
		countStoreError("insert")
		return nil, fmt.Errorf("insert record: %w", err)
	}

	s.logger.Debug("record inserted",
		observability.String("type", recordType),
		observability.String("id", stored.ID()))

	return stored, nil
}

// Update patches the JSON document of every identified record with the
// field map and returns the number of records touched.
func (s *sqliteStore) Update(ctx context.Context, recordType string, ids []string, fields map[string]any) (int, error) {
	start := time.Now()
	defer observeStoreOp("update", start)

	if recordType == "" {
		return 0, ErrInvalidQuery
	}
	if len(ids) == 0 || len(fields) == 0 {
		return 0, nil
	}

	updated := 0
	for _, id := range ids {
		var data string
		err := s.db.QueryRowContext(ctx,
			`SELECT data FROM records WHERE id = ? AND record_type = ?`,
			id, recordType).Scan(&data)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			countStoreError("update")
			return updated, fmt.Errorf("load record %s: %w", id, err)
		}

		patched, err := patchDocument(data, fields)
		if err != nil {
			countStoreError("update")
			return updated, err
		}

		_, err = s.db.ExecContext(ctx,
			`UPDATE records SET data = ?, updated_at = ? WHERE id = ?`,
			patched, time.Now().UTC(), id)
		if err != nil {
			countStoreError("update")
			return updated, fmt.Errorf("update record %s: %w", id, err)
		}
		updated++
	}

	s.logger.Debug("records updated",
		observability.String("type", recordType),
		observability.Int("count", updated))

	return updated, nil
}

// Delete removes the identified records.
func (s *sqliteStore) Delete(ctx context.Context, recordType string, ids []string) (int, error) {
	start := time.Now()
	defer observeStoreOp("delete", start)

	if recordType == "" {
		return 0, ErrInvalidQuery
	}
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids)+1)
	args = append(args, recordType)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE record_type = ? AND id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		countStoreError("delete")
		return 0, fmt.Errorf("delete records: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(affected), nil
}

// Close closes the database handle.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// matchesWhere checks every filter path against the JSON document.
func matchesWhere(data string, where map[string]any) bool {
	for path, want := range where {
		got := gjson.Get(data, path)
		if !got.Exists() {
			return false
		}
		if !looseEqual(got, want) {
			return false
		}
	}
	return true
}

// looseEqual compares a gjson result against a wanted value without
// being strict about numeric width. JSON decoding yields float64 for
// every number, while callers often filter with ints.
func looseEqual(got gjson.Result, want any) bool {
	switch w := want.(type) {
	case string:
		return got.Type == gjson.String && got.Str == w
	case bool:
		return got.IsBool() && got.Bool() == w
	case nil:
		return got.Type == gjson.Null
	}

	if f, ok := asComparableFloat(want); ok {
		return got.Type == gjson.Number && got.Num == f
	}

	return got.Value() == want
}

func asComparableFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// patchDocument applies the field map to a JSON document. Dotted paths
// set nested fields.
func patchDocument(data string, fields map[string]any) (string, error) {
	var err error
	for path, value := range fields {
		data, err = sjson.Set(data, path, value)
		if err != nil {
			return "", fmt.Errorf("set field %s: %w", path, err)
		}
	}
	return data, nil
}

func decodeRecord(id, data string) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	if rec.ID() == "" {
		rec["id"] = id
	}
	return rec, nil
}
