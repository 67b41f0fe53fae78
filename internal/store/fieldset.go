package store

import (
	"context"
)

// reservedParams are matcher parameters that never name record fields.
var reservedParams = map[string]bool{
	"type": true,
}

// FieldReader builds a read callback over the store for one record
// type. The "id" parameter selects a record; with a "field" parameter
// the callback returns that single field, otherwise the whole record.
// Without an "id" the remaining parameters filter records by field
// equality and the callback returns the matching records. A lookup
// that matches nothing yields nil.
func FieldReader(s Store, recordType string) func(ctx context.Context, params map[string]string) (any, error) {
	return func(ctx context.Context, params map[string]string) (any, error) {
		if id, ok := params["id"]; ok {
			records, err := s.Query(ctx, Query{
				Type:  recordType,
				Where: map[string]any{"id": id},
				Limit: 1,
			})
			if err != nil {
				return nil, err
			}
			if len(records) == 0 {
				return nil, nil
			}
			if field, ok := params["field"]; ok {
				return records[0][field], nil
			}
			return records[0], nil
		}

		where := make(map[string]any)
		for name, value := range params {
			if reservedParams[name] || name == "field" {
				continue
			}
			where[name] = value
		}

		records, err := s.Query(ctx, Query{Type: recordType, Where: where})
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, nil
		}

		result := make([]any, len(records))
		for i, rec := range records {
			result[i] = rec
		}
		return result, nil
	}
}

// FieldSetter builds a write callback over the store for one record
// type. With an "id" parameter the data map is applied as a field
// update to that record; with a "field" parameter the data's "value"
// entry is written to that single field. Without an "id" a new record
// is inserted from the data map.
func FieldSetter(s Store, recordType string) func(ctx context.Context, params map[string]string, data map[string]any) error {
	return func(ctx context.Context, params map[string]string, data map[string]any) error {
		id, hasID := params["id"]
		if !hasID {
			_, err := s.Insert(ctx, recordType, Record(data))
			return err
		}

		fields := data
		if field, ok := params["field"]; ok {
			if value, ok := data["value"]; ok {
				fields = map[string]any{field: value}
			}
		}

		_, err := s.Update(ctx, recordType, []string{id}, fields)
		return err
	}
}
