// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package classifier

import (
	"github.com/born-ml/qmnist/internal/pipeline"
	"github.com/born-ml/qmnist/internal/qops"
	"github.com/born-ml/qmnist/internal/weights"
)

// Network dimensions.
const (
	InputSize  = weights.InputSize
	NumClasses = weights.NumClasses
)

// Errors returned by Open and Predict.
var (
	ErrMalformedWeights   = weights.ErrMalformedWeights
	ErrInvalidConfig      = pipeline.ErrInvalidConfig
	ErrInvalidImageLength = pipeline.ErrInvalidImageLength
)

// Model is a loaded, read-only set of layer weights.
type Model = weights.Model

// Config selects the numeric policies of a Classifier.
type Config = pipeline.Config

// Result is the outcome of one prediction with its logits.
type Result = pipeline.Result

// QuantizerMode selects the input quantization formula.
type QuantizerMode = pipeline.QuantizerMode

// Input quantizers.
const (
	QuantizerFixed QuantizerMode = pipeline.QuantizerFixed
	QuantizerFloat QuantizerMode = pipeline.QuantizerFloat
)

// Activation is the non-linearity applied after a hidden layer.
type Activation = qops.Activation

// Hidden layer activations.
const (
	ActivationNone  Activation = qops.ActivationNone
	ActivationReLU  Activation = qops.ActivationReLU
	ActivationReLU6 Activation = qops.ActivationReLU6
)

// ClampBounds is the int8 range hidden activations are clamped to.
type ClampBounds = qops.ClampBounds

// Clamp ranges.
var (
	ClampFull      = qops.ClampFull
	ClampSymmetric = qops.ClampSymmetric
)

// DefaultConfig returns the integer quantizer, [-128,127] clamping and ReLU on
// both hidden layers.
func DefaultConfig() Config {
	return pipeline.DefaultConfig()
}

// LoadModel reads fc1_weight.bin, fc2_weight.bin and fc3_weight.bin from dir.
func LoadModel(dir string) (*Model, error) {
	return weights.LoadModelDir(dir)
}

// Classifier predicts digits from 28x28 grayscale images.
type Classifier struct {
	p *pipeline.Pipeline
}

// Open loads the weights in dir and returns a ready Classifier.
//
// Example:
//
//	c, err := classifier.Open("weights", classifier.DefaultConfig())
func Open(dir string, cfg Config) (*Classifier, error) {
	model, err := LoadModel(dir)
	if err != nil {
		return nil, err
	}
	return New(model, cfg)
}

// New wraps an already loaded model.
func New(model *Model, cfg Config) (*Classifier, error) {
	p, err := pipeline.New(model, cfg)
	if err != nil {
		return nil, err
	}
	return &Classifier{p: p}, nil
}

// Predict returns the digit for image, which must hold exactly InputSize
// row-major pixels.
func (c *Classifier) Predict(image []byte) (int, error) {
	return c.p.Infer(image)
}

// PredictLogits is Predict that also returns the final logits.
func (c *Classifier) PredictLogits(image []byte) (Result, error) {
	return c.p.InferLogits(image)
}

// Model returns the underlying model.
func (c *Classifier) Model() *Model {
	return c.p.Model()
}

// Fingerprint returns a short hex identifier of the loaded weights.
func (c *Classifier) Fingerprint() string {
	return weights.Fingerprint(c.p.Model().Checksum())
}
