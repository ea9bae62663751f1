package qops

import "math"

// QuantizePixel maps a pixel in [0, 255] to the symmetric int8 range.
//
// It is the fixed-point form of ((p/255)*2 - 1) * 127:
//
//	t = (p*257 - 32768) >> 8, clamped to [-128, 127]
//
// so 0 → -128, 128 → 0 and 255 → 127.
func QuantizePixel(p uint8) int8 {
	t := (int32(p)*257 - 32768) >> 8
	return clampInt8(t, -128, 127)
}

// Quantize converts src pixels into dst. len(dst) must be >= len(src).
func Quantize(dst []int8, src []uint8) {
	dst = dst[:len(src)]
	for i, p := range src {
		dst[i] = QuantizePixel(p)
	}
}

// QuantizePixelFloat is the floating-point formulation round(p/255 * 127),
// clamped to [-128, 127]. It is not bit-compatible with QuantizePixel.
func QuantizePixelFloat(p uint8) int8 {
	normalized := float32(p) / 255.0
	q := int32(math.Round(float64(normalized * 127.0)))
	return clampInt8(q, -128, 127)
}

// QuantizeFloat converts src pixels into dst using QuantizePixelFloat.
func QuantizeFloat(dst []int8, src []uint8) {
	dst = dst[:len(src)]
	for i, p := range src {
		dst[i] = QuantizePixelFloat(p)
	}
}

func clampInt8(v, lo, hi int32) int8 {
	if v < lo {
		return int8(lo)
	}
	if v > hi {
		return int8(hi)
	}
	return int8(v)
}
