package qops

import "fmt"

// MaxShift is the largest right shift Requantize will apply.
const MaxShift = 31

// ClampBounds is the closed int8 range re-quantized values are clamped to.
type ClampBounds struct {
	Low  int8
	High int8
}

var (
	// ClampFull clamps to [-128, 127].
	ClampFull = ClampBounds{Low: -128, High: 127}
	// ClampSymmetric clamps to [-127, 127].
	ClampSymmetric = ClampBounds{Low: -127, High: 127}
)

// ParseClampBounds accepts "full" ([-128,127]) or "symmetric" ([-127,127]).
func ParseClampBounds(s string) (ClampBounds, error) {
	switch s {
	case "full", "":
		return ClampFull, nil
	case "symmetric":
		return ClampSymmetric, nil
	default:
		return ClampBounds{}, fmt.Errorf("unknown clamp bounds %q (want full or symmetric)", s)
	}
}

// String implements fmt.Stringer.
func (b ClampBounds) String() string {
	return fmt.Sprintf("[%d,%d]", b.Low, b.High)
}

// Requantize compresses int32 values into int8, choosing the smallest right
// shift that brings max(|x|) within 127 (capped at MaxShift).
//
// Each output is clamp(src[k] >> shift, b.Low, b.High), using an arithmetic
// (floor) shift. An all-zero input yields all zeros with shift 0.
// len(dst) must be >= len(src). The chosen shift is returned.
func Requantize(dst []int8, src []int32, b ClampBounds) uint {
	dst = dst[:len(src)]

	var maxAbs int64
	for _, v := range src {
		a := int64(v)
		if a < 0 {
			a = -a
		}
		if a > maxAbs {
			maxAbs = a
		}
	}

	if maxAbs == 0 {
		clear(dst)
		return 0
	}

	var shift uint
	for maxAbs>>shift > 127 && shift < MaxShift {
		shift++
	}

	lo, hi := int32(b.Low), int32(b.High)
	for k, v := range src {
		dst[k] = clampInt8(v>>shift, lo, hi)
	}
	return shift
}
