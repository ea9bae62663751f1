package weights

import "math"

// Q16Shift is the number of fractional bits in a Q16 fixed-point value.
const Q16Shift = 16

// q16One is 1.0 in Q16.
const q16One = 1 << Q16Shift

// ScaleToQ16 converts a float scale into a Q16 multiplier, truncating toward zero.
//
// The multiply by 2^16 is exact in both float32 and float64, so the result is
// bit-identical to float32 arithmetic followed by a truncating cast.
func ScaleToQ16(scale float32) (int32, error) {
	v := float64(scale) * q16One
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, malformed("", "scale %v is not finite", scale)
	}
	if v >= math.MaxInt32+1 || v <= math.MinInt32-1 {
		return 0, malformed("", "scale %v overflows Q16", scale)
	}
	return int32(v), nil
}

// Q16ToFloat converts a Q16 value back to a float for display.
func Q16ToFloat(q int32) float64 {
	return float64(q) / q16One
}
