package weights

import "math"

// MaxAccumulatorCols is the widest row whose int8×int8 dot product is
// guaranteed to fit an int32 accumulator.
const MaxAccumulatorCols = math.MaxInt32 / (128 * 128)

// Matrix is an immutable row-major matrix of int8 weights.
type Matrix struct {
	rows int
	cols int
	data []int8
}

// NewMatrix copies data into a rows×cols matrix.
// len(data) must equal rows*cols exactly.
func NewMatrix(rows, cols int, data []int8) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, malformed("", "invalid matrix shape %dx%d", rows, cols)
	}
	if cols > MaxAccumulatorCols {
		return nil, malformed("", "%d columns overflow an int32 accumulator (max %d)", cols, MaxAccumulatorCols)
	}
	if len(data) != rows*cols {
		return nil, malformed("", "matrix %dx%d needs %d elements, got %d", rows, cols, rows*cols, len(data))
	}
	buf := make([]int8, len(data))
	copy(buf, data)
	return &Matrix{rows: rows, cols: cols, data: buf}, nil
}

// Rows returns the number of output rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of input columns.
func (m *Matrix) Cols() int { return m.cols }

// Len returns rows*cols.
func (m *Matrix) Len() int { return len(m.data) }

// At returns the weight at (i, j).
func (m *Matrix) At(i, j int) int8 {
	return m.data[i*m.cols+j]
}

// Row returns a view of row i. The slice aliases the matrix and must not be modified.
func (m *Matrix) Row(i int) []int8 {
	off := i * m.cols
	return m.data[off : off+m.cols : off+m.cols]
}

// Data returns a copy of the row-major weights.
func (m *Matrix) Data() []int8 {
	out := make([]int8, len(m.data))
	copy(out, m.data)
	return out
}
