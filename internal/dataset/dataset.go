package dataset

import (
	"errors"
	"fmt"

	"github.com/born-ml/qmnist/internal/weights"
)

// Image dimensions.
const (
	Width  = 28
	Height = 28
)

// ErrMalformedImage is returned for image data that does not decode to 28x28 pixels.
var ErrMalformedImage = errors.New("malformed image data")

// Set is a list of images with their labels.
type Set struct {
	Images [][]byte // Each exactly weights.InputSize pixels
	Labels []uint8  // Same length as Images
	Names  []string // Optional source names, empty for IDX sets
}

// Len returns the number of samples.
func (s *Set) Len() int { return len(s.Images) }

// Sample returns image i and its label.
func (s *Set) Sample(i int) ([]byte, uint8) {
	return s.Images[i], s.Labels[i]
}

// Name returns the source name of sample i, or its index.
func (s *Set) Name(i int) string {
	if i < len(s.Names) {
		return s.Names[i]
	}
	return fmt.Sprintf("#%d", i)
}

// Limit truncates the set to at most n samples. n <= 0 keeps everything.
func (s *Set) Limit(n int) {
	if n <= 0 || n >= s.Len() {
		return
	}
	s.Images = s.Images[:n]
	s.Labels = s.Labels[:n]
	if len(s.Names) > n {
		s.Names = s.Names[:n]
	}
}

func (s *Set) validate() error {
	if len(s.Images) != len(s.Labels) {
		return fmt.Errorf("%w: %d images but %d labels", ErrMalformedImage, len(s.Images), len(s.Labels))
	}
	for i, img := range s.Images {
		if len(img) != weights.InputSize {
			return fmt.Errorf("%w: image %d has %d pixels", ErrMalformedImage, i, len(img))
		}
	}
	return nil
}
