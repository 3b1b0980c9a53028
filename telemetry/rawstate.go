package telemetry

import "encoding/json"

// RawState is the typed view of a raw_state event. Absent or malformed
// fields are left unset; interpreting them is up to the translator.
type RawState struct {
	// Buttons holds 0/1 values. It is nil when the field is absent or not an
	// array; an empty array yields an empty non-nil slice.
	Buttons []int
	Gear    *int
	Tuner   *int
	// Analogs is nil when the field is absent or not an object. Channels with
	// non-integer values are omitted.
	Analogs map[string]int
}

// HasButtons reports whether the event carried an array-shaped buttons field.
func (r RawState) HasButtons() bool { return r.Buttons != nil }

// RawState extracts the raw_state payload. It is total: any event yields a
// RawState, possibly with every field unset.
func (e Event) RawState() RawState {
	var rs RawState

	if arr, ok := arrayValue(e.Fields["buttons"]); ok {
		rs.Buttons = make([]int, len(arr))
		for i, el := range arr {
			rs.Buttons[i] = buttonValue(el)
		}
	}
	if v, ok := intValue(e.Fields["gear"]); ok {
		g := int(v)
		rs.Gear = &g
	}
	if v, ok := intValue(e.Fields["tuner"]); ok {
		t := int(v)
		rs.Tuner = &t
	}
	if obj, ok := objectValue(e.Fields["analogs"]); ok {
		rs.Analogs = make(map[string]int, len(obj))
		for name, raw := range obj {
			if v, ok := intValue(raw); ok {
				rs.Analogs[name] = int(v)
			}
		}
	}
	return rs
}

// buttonValue accepts integers and booleans; anything else reads as released.
func buttonValue(raw json.RawMessage) int {
	if v, ok := intValue(raw); ok {
		if v != 0 {
			return 1
		}
		return 0
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil && b {
		return 1
	}
	return 0
}
