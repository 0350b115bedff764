package loader

import (
	"context"
	"encoding/json"
	"fmt"
)

// Decode converts a value returned by Load into T.
//
// Values that already have type T are returned unchanged; anything else is
// re-encoded as JSON and decoded into T.
func Decode[T any](value any) (T, error) {
	var out T
	if typed, ok := value.(T); ok {
		return typed, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return out, fmt.Errorf("encode loaded value: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode loaded value into %T: %w", out, err)
	}
	return out, nil
}

// LoadAs calls l.Load and decodes the result into T.
func LoadAs[T any](ctx context.Context, l *Loader, endpoint string, opts Options) (T, error) {
	value, err := l.Load(ctx, endpoint, opts)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](value)
}
