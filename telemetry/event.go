package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Event types published by the controller host.
const (
	TypeHello    = "hello"
	TypeMeta     = "meta"
	TypeRawState = "raw_state"
)

var (
	// ErrInvalidJSON is returned when a line is not well-formed JSON.
	ErrInvalidJSON = errors.New("invalid json")
	// ErrNotObject is returned when a line is valid JSON but not an object.
	ErrNotObject = errors.New("event is not a json object")
	// ErrMissingType is returned when the object lacks a string "type" field.
	ErrMissingType = errors.New("event has no type")
)

// Event is one decoded telemetry line.
type Event struct {
	Type string
	// TimestampMs is the publisher's timestamp_ms, zero when absent.
	TimestampMs int64
	Fields      map[string]json.RawMessage
	Line        string
}

// Decode parses one line into an Event. The returned error is one of
// ErrInvalidJSON, ErrNotObject or ErrMissingType, wrapped with detail.
func Decode(line string) (Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Event{}, fmt.Errorf("%w: got %s", ErrNotObject, typeErr.Value)
		}
		return Event{}, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if fields == nil {
		return Event{}, fmt.Errorf("%w: got null", ErrNotObject)
	}

	var typ string
	raw, ok := fields["type"]
	if !ok || json.Unmarshal(raw, &typ) != nil || isNull(raw) {
		return Event{}, ErrMissingType
	}

	ev := Event{Type: typ, Fields: fields, Line: line}
	if ts, ok := intValue(fields["timestamp_ms"]); ok {
		ev.TimestampMs = ts
	}
	return ev, nil
}

// Int returns an integer field. Missing, null or non-integral values report false.
func (e Event) Int(name string) (int64, bool) {
	return intValue(e.Fields[name])
}

// Strings returns a string array field, skipping non-string elements.
func (e Event) Strings(name string) ([]string, bool) {
	arr, ok := arrayValue(e.Fields[name])
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		var s string
		if json.Unmarshal(el, &s) == nil && !isNull(el) {
			out = append(out, s)
		}
	}
	return out, true
}

func intValue(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 || isNull(raw) {
		return 0, false
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

func arrayValue(raw json.RawMessage) ([]json.RawMessage, bool) {
	if len(raw) == 0 || isNull(raw) {
		return nil, false
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, false
	}
	return arr, true
}

func objectValue(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 || isNull(raw) {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
