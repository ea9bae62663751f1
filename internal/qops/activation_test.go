package qops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allInt8() []int8 {
	out := make([]int8, 0, 256)
	for v := -128; v <= 127; v++ {
		out = append(out, int8(v))
	}
	return out
}

func TestReLU_NonNegative(t *testing.T) {
	data := allInt8()
	ReLU(data)
	for i, v := range data {
		assert.GreaterOrEqual(t, v, int8(0))
		if orig := int8(i - 128); orig > 0 {
			assert.Equal(t, orig, v, "positive values pass through")
		}
	}
}

func TestReLU6_Bounded(t *testing.T) {
	data := allInt8()
	ReLU6(data)
	for _, v := range data {
		assert.GreaterOrEqual(t, v, int8(0))
		assert.LessOrEqual(t, v, int8(6))
	}
	assert.Equal(t, int8(3), data[128+3])
	assert.Equal(t, int8(6), data[255])
}

func TestActivation_Apply(t *testing.T) {
	tests := []struct {
		act  Activation
		want []int8
	}{
		{ActivationNone, []int8{-5, 0, 3, 100}},
		{ActivationReLU, []int8{0, 0, 3, 100}},
		{ActivationReLU6, []int8{0, 0, 3, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.act.String(), func(t *testing.T) {
			data := []int8{-5, 0, 3, 100}
			tt.act.Apply(data)
			assert.Equal(t, tt.want, data)
		})
	}
}

func TestParseActivation(t *testing.T) {
	for _, a := range []Activation{ActivationNone, ActivationReLU, ActivationReLU6} {
		got, err := ParseActivation(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
		assert.True(t, got.Valid())
	}

	_, err := ParseActivation("gelu")
	assert.Error(t, err)
	assert.False(t, Activation(42).Valid())
	assert.Equal(t, "Activation(42)", Activation(42).String())
}
