package weights

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// HeaderSize is the size of the rows/cols/scale prefix of a layer blob.
const HeaderSize = 12

// Layer is one fully-connected layer: an int8 weight matrix and its scale.
type Layer struct {
	Name     string  // Layer name (e.g. "fc1")
	Weights  *Matrix // [rows, cols]
	Scale    float32 // Scale as stored in the blob
	ScaleQ16 int32   // Scale in Q16 fixed point
}

// NewLayer builds a layer from a matrix and a float scale.
//
// The layer is rejected when the worst-case scaled accumulator
// (cols × 128 × 128 × |scaleQ16| >> 16) cannot be represented in an int32,
// so that the scaled matmul never has to clamp or wrap.
func NewLayer(name string, m *Matrix, scale float32) (*Layer, error) {
	if m == nil {
		return nil, malformed(name, "nil weight matrix")
	}
	q, err := ScaleToQ16(scale)
	if err != nil {
		return nil, withLayer(err, name)
	}

	worst := int64(m.cols) * 128 * 128
	absQ := int64(q)
	if absQ < 0 {
		absQ = -absQ
	}
	if (worst*absQ)>>Q16Shift > math.MaxInt32 {
		return nil, malformed(name, "scale %v with %d columns can overflow the int32 output", scale, m.cols)
	}

	return &Layer{Name: name, Weights: m, Scale: scale, ScaleQ16: q}, nil
}

// ParseLayer decodes a layer blob with the expected shape.
//
// Header dimensions of 0 are treated as absent. Non-zero header dimensions
// must match rows and cols.
func ParseLayer(name string, data []byte, rows, cols int) (*Layer, error) {
	if rows <= 0 || cols <= 0 {
		return nil, malformed(name, "invalid expected shape %dx%d", rows, cols)
	}
	need := HeaderSize + rows*cols
	if len(data) < need {
		return nil, malformed(name, "blob is %d bytes, need at least %d", len(data), need)
	}

	hdrRows := binary.LittleEndian.Uint32(data[0:4])
	hdrCols := binary.LittleEndian.Uint32(data[4:8])
	if hdrRows != 0 && int64(hdrRows) != int64(rows) {
		return nil, malformed(name, "header rows %d, expected %d", hdrRows, rows)
	}
	if hdrCols != 0 && int64(hdrCols) != int64(cols) {
		return nil, malformed(name, "header cols %d, expected %d", hdrCols, cols)
	}
	scale := math.Float32frombits(binary.LittleEndian.Uint32(data[8:12]))

	raw := data[HeaderSize:need]
	values := make([]int8, len(raw))
	for i, b := range raw {
		values[i] = int8(b)
	}
	m, err := NewMatrix(rows, cols, values)
	if err != nil {
		return nil, withLayer(err, name)
	}
	return NewLayer(name, m, scale)
}

// EncodeLayer serializes a layer in the blob format read by ParseLayer.
func EncodeLayer(l *Layer) []byte {
	m := l.Weights
	buf := make([]byte, HeaderSize+m.Len())
	binary.LittleEndian.PutUint32(buf[0:4], uint32(m.rows))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.cols))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(l.Scale))
	for i, v := range m.data {
		buf[HeaderSize+i] = byte(v)
	}
	return buf
}

// String returns a short description such as "fc1 256x784 scale=0.0123 (q16=806)".
func (l *Layer) String() string {
	return fmt.Sprintf("%s %dx%d scale=%g (q16=%d)", l.Name, l.Weights.rows, l.Weights.cols, l.Scale, l.ScaleQ16)
}

func withLayer(err error, name string) error {
	var le *LoadError
	if errors.As(err, &le) && le.Layer == "" {
		return &LoadError{Layer: name, Reason: le.Reason}
	}
	return err
}
