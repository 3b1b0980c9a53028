package translate

// Exclusive group sizes. The gear group directly follows the passthrough
// buttons, the tuner group follows the gear group.
const (
	GearCount  = 7
	TunerCount = 16
	GroupSpan  = GearCount + TunerCount
)

// None is the active index of a group with nothing selected.
const None = -1

var gearIndex = map[int]int{-2: 0, -1: 1, 1: 2, 2: 3, 3: 4, 4: 5, 5: 6}

// GearIndex maps a raw gear (R2, R1, 1..5) to its position in the gear
// group. Neutral, unknown and absent gears map to None.
func GearIndex(raw *int) int {
	if raw == nil {
		return None
	}
	if i, ok := gearIndex[*raw]; ok {
		return i
	}
	return None
}

// TunerIndex passes a tuner position in [0, 15] through, anything else is None.
func TunerIndex(raw *int) int {
	if raw == nil || *raw < 0 || *raw >= TunerCount {
		return None
	}
	return *raw
}

// EncodeExclusive writes a group of count buttons starting at offset
// (0-based into buttons) so that only active is asserted. An active index
// outside [0, count) asserts none.
func EncodeExclusive(buttons []bool, offset, count, active int) {
	for i := range count {
		buttons[offset+i] = i == active
	}
}
