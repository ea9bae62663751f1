package pipeline

import (
	"errors"
	"fmt"

	"github.com/born-ml/qmnist/internal/qops"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid pipeline config")

// QuantizerMode selects the input quantization formula.
type QuantizerMode int

const (
	// QuantizerFixed uses the integer formula (p*257 - 32768) >> 8.
	QuantizerFixed QuantizerMode = iota
	// QuantizerFloat uses round(p/255 * 127).
	QuantizerFloat
)

// ParseQuantizerMode parses "fixed" or "float".
func ParseQuantizerMode(s string) (QuantizerMode, error) {
	switch s {
	case "fixed", "":
		return QuantizerFixed, nil
	case "float":
		return QuantizerFloat, nil
	default:
		return 0, fmt.Errorf("%w: unknown quantizer %q (want fixed or float)", ErrInvalidConfig, s)
	}
}

// String implements fmt.Stringer.
func (m QuantizerMode) String() string {
	switch m {
	case QuantizerFixed:
		return "fixed"
	case QuantizerFloat:
		return "float"
	default:
		return fmt.Sprintf("QuantizerMode(%d)", int(m))
	}
}

// Config selects the numeric policies of a pipeline.
type Config struct {
	Quantizer QuantizerMode      // Input quantization formula
	Clamp     qops.ClampBounds   // Re-quantization clamp range
	Hidden    [2]qops.Activation // Activation after fc1 and fc2; fc3 has none
}

// DefaultConfig returns the fixed-point quantizer, [-128,127] clamping and ReLU
// on both hidden layers.
func DefaultConfig() Config {
	return Config{
		Quantizer: QuantizerFixed,
		Clamp:     qops.ClampFull,
		Hidden:    [2]qops.Activation{qops.ActivationReLU, qops.ActivationReLU},
	}
}

// Validate checks that every policy is known and the clamp range contains zero.
func (c Config) Validate() error {
	if c.Quantizer != QuantizerFixed && c.Quantizer != QuantizerFloat {
		return fmt.Errorf("%w: quantizer %v", ErrInvalidConfig, c.Quantizer)
	}
	if c.Clamp.Low > 0 || c.Clamp.High <= 0 {
		return fmt.Errorf("%w: clamp range %v must contain zero", ErrInvalidConfig, c.Clamp)
	}
	for i, a := range c.Hidden {
		if !a.Valid() {
			return fmt.Errorf("%w: hidden layer %d activation %v", ErrInvalidConfig, i+1, a)
		}
	}
	return nil
}

// String implements fmt.Stringer.
func (c Config) String() string {
	return fmt.Sprintf("quantizer=%v clamp=%v fc1=%v fc2=%v", c.Quantizer, c.Clamp, c.Hidden[0], c.Hidden[1])
}
