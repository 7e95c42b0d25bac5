package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/mathtables/internal/game"
	"github.com/roach88/mathtables/internal/trace"
)

// marshalEvent converts an event to its canonical trace line for storage.
func marshalEvent(ev game.Event) (string, error) {
	data, err := trace.Line(ev)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	return string(data), nil
}

// unmarshalData parses a stored trace line. Numbers stay json.Number so
// large values keep their precision.
func unmarshalData(data string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("unmarshal event data: %w", err)
	}
	return m, nil
}

// intField reads an integer field from parsed event data. Missing fields
// are zero.
func intField(m map[string]any, key string) (int64, error) {
	v, ok := m[key]
	if !ok {
		return 0, nil
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("field %q: want number, got %T", key, v)
	}
	i, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return i, nil
}
