package weights

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

// Network dimensions.
const (
	InputSize   = 28 * 28 // Pixels per image
	Hidden1Size = 256
	Hidden2Size = 128
	NumClasses  = 10
)

// Blob file names inside a weights directory.
const (
	FC1File = "fc1_weight.bin"
	FC2File = "fc2_weight.bin"
	FC3File = "fc3_weight.bin"
)

// Model holds the three layers of the classifier. It is read-only after construction.
type Model struct {
	FC1 *Layer // [256, 784]
	FC2 *Layer // [128, 256]
	FC3 *Layer // [10, 128]

	checksum [32]byte
}

type layerShape struct {
	name       string
	rows, cols int
}

var shapes = [3]layerShape{
	{"fc1", Hidden1Size, InputSize},
	{"fc2", Hidden2Size, Hidden1Size},
	{"fc3", NumClasses, Hidden2Size},
}

// NewModel assembles a model and checks every layer against the fixed topology.
func NewModel(fc1, fc2, fc3 *Layer) (*Model, error) {
	layers := [3]*Layer{fc1, fc2, fc3}
	blobs := make([][]byte, 0, len(layers))
	for i, l := range layers {
		s := shapes[i]
		if l == nil || l.Weights == nil {
			return nil, malformed(s.name, "layer missing")
		}
		if l.Weights.rows != s.rows || l.Weights.cols != s.cols {
			return nil, malformed(s.name, "shape %dx%d, expected %dx%d", l.Weights.rows, l.Weights.cols, s.rows, s.cols)
		}
		blobs = append(blobs, EncodeLayer(l))
	}
	return &Model{FC1: fc1, FC2: fc2, FC3: fc3, checksum: ComputeChecksum(blobs...)}, nil
}

// LoadModel parses three layer blobs.
func LoadModel(fc1, fc2, fc3 []byte) (*Model, error) {
	data := [3][]byte{fc1, fc2, fc3}
	var layers [3]*Layer
	for i, s := range shapes {
		l, err := ParseLayer(s.name, data[i], s.rows, s.cols)
		if err != nil {
			return nil, err
		}
		layers[i] = l
	}
	return NewModel(layers[0], layers[1], layers[2])
}

// LoadModelDir reads fc1_weight.bin, fc2_weight.bin and fc3_weight.bin from dir.
func LoadModelDir(dir string) (*Model, error) {
	var data [3][]byte
	for i, name := range [3]string{FC1File, FC2File, FC3File} {
		//nolint:gosec // G304: weights directory is operator supplied
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read weights: %w", err)
		}
		data[i] = b
	}
	return LoadModel(data[0], data[1], data[2])
}

// WriteDir writes the model's layers as blob files into dir, creating it if needed.
func (m *Model) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create weights dir: %w", err)
	}
	for i, name := range [3]string{FC1File, FC2File, FC3File} {
		if err := os.WriteFile(filepath.Join(dir, name), EncodeLayer(m.Layers()[i]), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// Layers returns fc1, fc2 and fc3 in evaluation order.
func (m *Model) Layers() [3]*Layer {
	return [3]*Layer{m.FC1, m.FC2, m.FC3}
}

// Checksum returns the SHA-256 of the encoded layer blobs.
func (m *Model) Checksum() [32]byte {
	return m.checksum
}

// String implements fmt.Stringer.
func (m *Model) String() string {
	return fmt.Sprintf("model %s [%v; %v; %v]", Fingerprint(m.checksum), m.FC1, m.FC2, m.FC3)
}

// Zero builds a model whose weights are all zero, with the same scale on every layer.
func Zero(scale float32) (*Model, error) {
	return build(scale, func() int8 { return 0 })
}

// Random builds a model with uniformly distributed int8 weights.
// The same seed always yields the same model.
func Random(seed int64, scale float32) (*Model, error) {
	//nolint:gosec // G404: deterministic synthetic weights, not security sensitive
	r := rand.New(rand.NewSource(seed))
	return build(scale, func() int8 { return int8(r.Intn(256) - 128) })
}

func build(scale float32, next func() int8) (*Model, error) {
	var layers [3]*Layer
	for i, s := range shapes {
		data := make([]int8, s.rows*s.cols)
		for j := range data {
			data[j] = next()
		}
		m, err := NewMatrix(s.rows, s.cols, data)
		if err != nil {
			return nil, withLayer(err, s.name)
		}
		l, err := NewLayer(s.name, m, scale)
		if err != nil {
			return nil, err
		}
		layers[i] = l
	}
	return NewModel(layers[0], layers[1], layers[2])
}
