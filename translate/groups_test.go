package translate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/sbcpad/translate"
)

func intp(v int) *int { return &v }

func asserted(buttons []bool) int {
	n := 0
	for _, b := range buttons {
		if b {
			n++
		}
	}
	return n
}

func TestEncodeExclusive(t *testing.T) {
	for count := 1; count <= translate.TunerCount; count++ {
		for active := -3; active <= count+3; active++ {
			buttons := make([]bool, count+4)
			for i := range buttons {
				buttons[i] = true
			}
			translate.EncodeExclusive(buttons, 2, count, active)

			group := buttons[2 : 2+count]
			if active >= 0 && active < count {
				assert.Equal(t, 1, asserted(group), "count=%d active=%d", count, active)
				assert.True(t, group[active])
			} else {
				assert.Zero(t, asserted(group), "count=%d active=%d", count, active)
			}
			assert.True(t, buttons[0] && buttons[1], "buttons before the group are untouched")
			assert.True(t, buttons[2+count] && buttons[3+count], "buttons after the group are untouched")
		}
	}
}

func TestEncodeExclusive_Idempotent(t *testing.T) {
	a := make([]bool, translate.GearCount)
	translate.EncodeExclusive(a, 0, translate.GearCount, 4)
	b := append([]bool(nil), a...)
	translate.EncodeExclusive(b, 0, translate.GearCount, 4)
	assert.Equal(t, a, b)
}

func TestGearIndex(t *testing.T) {
	type testCase struct {
		name     string
		raw      *int
		expected int
	}

	cases := []testCase{
		{name: "absent", raw: nil, expected: translate.None},
		{name: "reverse 2", raw: intp(-2), expected: 0},
		{name: "reverse 1", raw: intp(-1), expected: 1},
		{name: "neutral", raw: intp(0), expected: translate.None},
		{name: "first", raw: intp(1), expected: 2},
		{name: "second", raw: intp(2), expected: 3},
		{name: "third", raw: intp(3), expected: 4},
		{name: "fourth", raw: intp(4), expected: 5},
		{name: "fifth", raw: intp(5), expected: 6},
		{name: "sixth", raw: intp(6), expected: translate.None},
		{name: "reverse 3", raw: intp(-3), expected: translate.None},
		{name: "raw byte", raw: intp(255), expected: translate.None},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, translate.GearIndex(tc.raw))
		})
	}
}

func TestTunerIndex(t *testing.T) {
	type testCase struct {
		name     string
		raw      *int
		expected int
	}

	cases := []testCase{
		{name: "absent", raw: nil, expected: translate.None},
		{name: "zero", raw: intp(0), expected: 0},
		{name: "max", raw: intp(15), expected: 15},
		{name: "too high", raw: intp(16), expected: translate.None},
		{name: "negative", raw: intp(-1), expected: translate.None},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, translate.TunerIndex(tc.raw))
		})
	}
}
