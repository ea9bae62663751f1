package qops

import "fmt"

// Activation is a clamping non-linearity applied to re-quantized int8 values.
type Activation int

const (
	// ActivationNone leaves values unchanged.
	ActivationNone Activation = iota
	// ActivationReLU applies max(x, 0).
	ActivationReLU
	// ActivationReLU6 applies clamp(x, 0, 6).
	ActivationReLU6
)

var activationNames = map[Activation]string{
	ActivationNone:  "none",
	ActivationReLU:  "relu",
	ActivationReLU6: "relu6",
}

// ParseActivation parses "none", "relu" or "relu6".
func ParseActivation(s string) (Activation, error) {
	for a, name := range activationNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown activation %q (want none, relu or relu6)", s)
}

// String implements fmt.Stringer.
func (a Activation) String() string {
	if name, ok := activationNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Activation(%d)", int(a))
}

// Valid reports whether a is a known activation.
func (a Activation) Valid() bool {
	_, ok := activationNames[a]
	return ok
}

// Apply runs the activation in place.
func (a Activation) Apply(data []int8) {
	switch a {
	case ActivationReLU:
		ReLU(data)
	case ActivationReLU6:
		ReLU6(data)
	}
}

// ReLU clamps negative values to zero in place.
func ReLU(data []int8) {
	for i, v := range data {
		if v < 0 {
			data[i] = 0
		}
	}
}

// ReLU6 clamps values to [0, 6] in place.
func ReLU6(data []int8) {
	for i, v := range data {
		switch {
		case v < 0:
			data[i] = 0
		case v > 6:
			data[i] = 6
		}
	}
}
