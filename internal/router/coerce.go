package router

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"time"

	"github.com/confroute/confroute/internal/store"
)

// ConvertFunc converts a raw handler result into a target
// representation. A recognized tag with an unconvertible value returns
// an error; identity passthrough never does.
type ConvertFunc func(value any) (any, error)

// conversions maps each recognized type tag to its conversion. Tags
// outside this set are identity passthrough.
var conversions = map[string]ConvertFunc{
	"Boolean":  toBoolean,
	"Integer":  toInteger,
	"Long":     toLong,
	"Double":   toDouble,
	"Decimal":  toDecimal,
	"String":   toString,
	"List":     toList,
	"Set":      toSet,
	"Map":      toMap,
	"Record":   toRecord,
	"Date":     toDate,
	"Time":     toTime,
	"DateTime": toDateTime,
	"Callback": toCallback,
}

// Coerce converts value according to the type tag. An absent or
// unrecognized tag returns the value unchanged. A nil value is never
// converted.
func Coerce(value any, tag string) (any, error) {
	convert, ok := conversions[tag]
	if !ok {
		return value, nil
	}
	if value == nil {
		return nil, nil
	}
	return convert(value)
}

func toBoolean(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to Boolean", v)
		}
		return b, nil
	}
	if f, ok := asFloat64(value); ok {
		return f != 0, nil
	}
	return nil, fmt.Errorf("cannot convert %T to Boolean", value)
}

func toInteger(value any) (any, error) {
	i, err := asInt64Checked(value, "Integer")
	if err != nil {
		return nil, err
	}
	return int(i), nil
}

func toLong(value any) (any, error) {
	return asInt64Checked(value, "Long")
}

func toDouble(value any) (any, error) {
	if f, ok := asFloat64(value); ok {
		return f, nil
	}
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to Double", s)
		}
		return f, nil
	}
	return nil, fmt.Errorf("cannot convert %T to Double", value)
}

func toDecimal(value any) (any, error) {
	if s, ok := value.(string); ok {
		d, _, err := big.ParseFloat(s, 10, 128, big.ToNearestEven)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to Decimal", s)
		}
		return d, nil
	}
	if f, ok := asFloat64(value); ok {
		return big.NewFloat(f), nil
	}
	return nil, fmt.Errorf("cannot convert %T to Decimal", value)
}

func toString(value any) (any, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", value), nil
}

func toList(value any) (any, error) {
	if list, ok := value.([]any); ok {
		return list, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		list := make([]any, rv.Len())
		for i := range list {
			list[i] = rv.Index(i).Interface()
		}
		return list, nil
	}

	// A scalar becomes a single-element list.
	return []any{value}, nil
}

func toSet(value any) (any, error) {
	raw, err := toList(value)
	if err != nil {
		return nil, err
	}
	list := raw.([]any)

	seen := make(map[any]struct{}, len(list))
	set := make([]any, 0, len(list))
	for _, item := range list {
		if item != nil && !reflect.TypeOf(item).Comparable() {
			set = append(set, item)
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		set = append(set, item)
	}

	return set, nil
}

func toMap(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case store.Record:
		return map[string]any(v), nil
	}
	return nil, fmt.Errorf("cannot convert %T to Map", value)
}

func toRecord(value any) (any, error) {
	switch v := value.(type) {
	case store.Record:
		return v, nil
	case map[string]any:
		return store.Record(v), nil
	}
	return nil, fmt.Errorf("cannot convert %T to Record", value)
}

func toDate(value any) (any, error) {
	return parseTemporal(value, "Date", []string{"2006-01-02"})
}

func toTime(value any) (any, error) {
	return parseTemporal(value, "Time", []string{"15:04:05", "15:04"})
}

func toDateTime(value any) (any, error) {
	return parseTemporal(value, "DateTime", []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
	})
}

// toCallback wraps the value in a deferred producer. Invoking the
// returned function yields the raw value. A value that already is a
// producer is returned unwrapped.
func toCallback(value any) (any, error) {
	if fn, ok := value.(func() any); ok {
		return fn, nil
	}
	return func() any { return value }, nil
}

func parseTemporal(value any, tag string, layouts []string) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range layouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("cannot convert %q to %s", v, tag)
	}
	return nil, fmt.Errorf("cannot convert %T to %s", value, tag)
}

// asFloat64 widens any native numeric value to float64.
func asFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func asInt64Checked(value any, tag string) (int64, error) {
	if s, ok := value.(string); ok {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to %s", s, tag)
		}
		return i, nil
	}
	if f, ok := asFloat64(value); ok {
		return int64(f), nil
	}
	return 0, fmt.Errorf("cannot convert %T to %s", value, tag)
}
