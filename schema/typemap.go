package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Decode converts a raw JSON-decoded value (as produced by unmarshaling a
// JSONEachRow response body) into its host representation for the given
// ColumnType, per spec.md §3's TypeMapping table:
//
//   - integer types <= 64 bits decode to a native number
//   - wider integers (Int128/256, UInt128/256) decode to a string
//   - floats and decimal decode to a number
//   - date-like types decode to a time.Time
//   - Nullable(T) decodes to nil or T
//   - Array(T) decodes to a []any of decoded T values
//   - Map(K, V) decodes to a map[string]any of decoded V values (keys are
//     always strings)
func Decode(ct ColumnType, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch ct.Kind() {
	case KindNullable:
		inner, _ := ct.Inner()
		return Decode(inner, raw)
	case KindArray:
		inner, _ := ct.Inner()
		arr, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("schema: decode %s: expected array, got %T", ct, raw)
		}
		out := make([]any, len(arr))
		for i, v := range arr {
			dv, err := Decode(inner, v)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil
	case KindMap:
		_, valType, _ := ct.MapTypes()
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("schema: decode %s: expected object, got %T", ct, raw)
		}
		out := make(map[string]any, len(m))
		for k, v := range m {
			dv, err := Decode(valType, v)
			if err != nil {
				return nil, err
			}
			out[k] = dv
		}
		return out, nil
	case KindLowCardinality:
		inner, _ := ct.Inner()
		return Decode(inner, raw)
	case KindDate, KindDateTime:
		return decodeTime(ct, raw)
	case KindInt, KindUInt:
		if ct.isWideInteger() {
			return decodeString(raw)
		}
		return decodeNumber(raw)
	case KindFloat, KindDecimal:
		return decodeNumber(raw)
	case KindBool:
		return decodeBool(raw)
	default:
		return raw, nil
	}
}

func decodeNumber(raw any) (any, error) {
	switch v := raw.(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, nil
		}
		return nil, fmt.Errorf("schema: decode number: invalid json.Number %q", v)
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("schema: decode number: %w", err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("schema: decode number: unexpected type %T", raw)
	}
}

func decodeString(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return nil, fmt.Errorf("schema: decode string: unexpected type %T", raw)
	}
}

func decodeBool(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case json.Number:
		return v.String() != "0", nil
	case string:
		return v != "0" && v != "", nil
	default:
		return nil, fmt.Errorf("schema: decode bool: unexpected type %T", raw)
	}
}

// ClickHouse's JSONEachRow format emits dates and timestamps as strings.
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

func decodeTime(ct ColumnType, raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("schema: decode %s: expected string, got %T", ct, raw)
	}
	layout := dateTimeLayout
	if ct.Kind() == KindDate {
		layout = dateLayout
	}
	if t, err := time.Parse(layout, s); err == nil {
		return t, nil
	}
	// DateTime64 carries sub-second precision; fall back to the
	// space-separated layout with fractional seconds.
	if t, err := time.Parse("2006-01-02 15:04:05.999999999", s); err == nil {
		return t, nil
	}
	return nil, fmt.Errorf("schema: decode %s: unrecognized time format %q", ct, s)
}
