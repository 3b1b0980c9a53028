package translate

import "golang.org/x/exp/constraints"

// Scale maps value from [srcMin, srcMax] onto [dstMin, dstMax] linearly,
// truncating toward zero and clamping into the destination range. A
// degenerate source range collapses to dstMin.
func Scale(value, srcMin, srcMax, dstMin, dstMax int) int {
	if srcMin == srcMax {
		return dstMin
	}
	lo, hi := min(dstMin, dstMax), max(dstMin, dstMax)
	// differences in float64: int subtraction wraps for extreme inputs
	frac := (float64(value) - float64(srcMin)) / (float64(srcMax) - float64(srcMin))
	span := float64(dstMax) - float64(dstMin)
	f := float64(dstMin) + float64(frac*span)
	// clamp before converting: out-of-range float to int conversion is undefined
	return int(Clamp(f, float64(lo), float64(hi)))
}

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
