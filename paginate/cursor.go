package paginate

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Encode serializes an ORDER BY tuple into an opaque cursor string.
func Encode(values []any) (string, error) {
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("paginate: encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Decode recovers the ORDER BY tuple from a cursor produced by Encode.
// Numeric entries come back as float64, per encoding/json; callers that
// feed them into keyset predicates rely on the SQL layer accepting a
// float64 for an integer column comparison.
func Decode(cursor string) ([]any, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("paginate: decode cursor: %w", err)
	}
	var values []any
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("paginate: decode cursor: %w", err)
	}
	return values, nil
}
