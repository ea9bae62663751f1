package pipeline

import (
	"fmt"
	"sync"

	"github.com/born-ml/qmnist/internal/qops"
	"github.com/born-ml/qmnist/internal/weights"
)

// Result is the outcome of one inference.
type Result struct {
	Label  int                       // Predicted digit
	Logits [weights.NumClasses]int32 // Scaled fc3 outputs
	Shifts [2]uint                   // Re-quantization shifts after fc1 and fc2
}

// Pipeline runs forward passes over a read-only model.
type Pipeline struct {
	model *weights.Model
	cfg   Config
	pool  sync.Pool
}

// New creates a pipeline. The model is shared, never copied or modified.
func New(model *weights.Model, cfg Config) (*Pipeline, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: nil model", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{model: model, cfg: cfg}
	p.pool.New = func() any { return new(Scratch) }
	return p, nil
}

// Model returns the model the pipeline reads from.
func (p *Pipeline) Model() *weights.Model { return p.model }

// Config returns the pipeline's numeric policies.
func (p *Pipeline) Config() Config { return p.cfg }

// Infer classifies a 28x28 grayscale image and returns the predicted digit.
func (p *Pipeline) Infer(image []byte) (int, error) {
	res, err := p.InferLogits(image)
	if err != nil {
		return 0, err
	}
	return res.Label, nil
}

// InferLogits classifies an image and also returns the final logits and the
// re-quantization shifts.
func (p *Pipeline) InferLogits(image []byte) (Result, error) {
	if err := checkImage(image); err != nil {
		return Result{}, err
	}

	s := p.pool.Get().(*Scratch)
	defer p.pool.Put(s)

	copy(s.pixels[:], image)
	for _, st := range Stages() {
		p.RunStage(st, s)
	}
	return Result{Label: s.label, Logits: s.logits, Shifts: s.shifts}, nil
}

// NewScratch allocates a scratch for use with RunStage.
func (p *Pipeline) NewScratch() *Scratch {
	return new(Scratch)
}

// RunStage executes one stage, reading the buffers produced by the previous
// stage. The caller owns s exclusively while it runs.
func (p *Pipeline) RunStage(st Stage, s *Scratch) {
	m := p.model
	switch st {
	case StageQuantize:
		if p.cfg.Quantizer == QuantizerFloat {
			qops.QuantizeFloat(s.input[:], s.pixels[:])
		} else {
			qops.Quantize(s.input[:], s.pixels[:])
		}
	case StageFC1:
		qops.MatMulScaled(s.acc1[:], m.FC1.Weights, s.input[:], m.FC1.ScaleQ16)
	case StageFC1Requant:
		s.shifts[0] = qops.Requantize(s.act1[:], s.acc1[:], p.cfg.Clamp)
		p.cfg.Hidden[0].Apply(s.act1[:])
	case StageFC2:
		qops.MatMulScaled(s.acc2[:], m.FC2.Weights, s.act1[:], m.FC2.ScaleQ16)
	case StageFC2Requant:
		s.shifts[1] = qops.Requantize(s.act2[:], s.acc2[:], p.cfg.Clamp)
		p.cfg.Hidden[1].Apply(s.act2[:])
	case StageFC3:
		qops.MatMulScaled(s.logits[:], m.FC3.Weights, s.act2[:], m.FC3.ScaleQ16)
	case StageArgmax:
		s.label = qops.Argmax(s.logits[:])
	default:
		panic(fmt.Sprintf("pipeline: unknown stage %v", st))
	}
}
