package qops

import "github.com/born-ml/qmnist/internal/weights"

// Accumulate computes the raw dot product of every matrix row with input:
//
//	dst[i] = Σ_j W[i][j] * input[j]
//
// The int32 accumulator cannot overflow because weights.NewMatrix bounds the
// column count. len(input) must be >= m.Cols() and len(dst) >= m.Rows().
func Accumulate(dst []int32, m *weights.Matrix, input []int8) {
	cols := m.Cols()
	input = input[:cols]
	for i := range m.Rows() {
		row := m.Row(i)
		var sum int32
		for j, w := range row {
			sum += int32(w) * int32(input[j])
		}
		dst[i] = sum
	}
}

// MatMulScaled computes one fully-connected layer and applies its Q16 scale:
//
//	dst[i] = int32((int64(Σ_j W[i][j]*input[j]) * int64(scaleQ16)) >> 16)
//
// The product is formed in 64 bits. The result is not clamped; weights.NewLayer
// guarantees it fits an int32.
func MatMulScaled(dst []int32, m *weights.Matrix, input []int8, scaleQ16 int32) {
	Accumulate(dst, m, input)
	Scale(dst[:m.Rows()], scaleQ16)
}

// Scale applies a Q16 multiplier to raw accumulators in place.
func Scale(acc []int32, scaleQ16 int32) {
	s := int64(scaleQ16)
	for i, v := range acc {
		acc[i] = int32((int64(v) * s) >> weights.Q16Shift)
	}
}
