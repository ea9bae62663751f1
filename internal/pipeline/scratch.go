package pipeline

import (
	"errors"
	"fmt"

	"github.com/born-ml/qmnist/internal/weights"
)

// ErrInvalidImageLength is returned when an image is not exactly weights.InputSize bytes.
var ErrInvalidImageLength = errors.New("invalid image length")

// Scratch holds the buffers of one forward pass.
type Scratch struct {
	pixels [weights.InputSize]uint8
	input  [weights.InputSize]int8
	acc1   [weights.Hidden1Size]int32
	act1   [weights.Hidden1Size]int8
	acc2   [weights.Hidden2Size]int32
	act2   [weights.Hidden2Size]int8
	logits [weights.NumClasses]int32
	shifts [2]uint
	label  int
}

// Load copies an image into the scratch. The image must be exactly
// weights.InputSize bytes.
func (s *Scratch) Load(image []byte) error {
	if err := checkImage(image); err != nil {
		return err
	}
	copy(s.pixels[:], image)
	return nil
}

// Label returns the prediction of the last StageArgmax run.
func (s *Scratch) Label() int { return s.label }

// Logits returns the fc3 outputs of the last StageFC3 run.
func (s *Scratch) Logits() [weights.NumClasses]int32 { return s.logits }

func checkImage(image []byte) error {
	if len(image) != weights.InputSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidImageLength, len(image), weights.InputSize)
	}
	return nil
}
