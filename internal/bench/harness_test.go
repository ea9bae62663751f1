package bench

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/born-ml/qmnist/internal/pipeline"
	"github.com/born-ml/qmnist/internal/weights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner advances a shared clock by a fixed cost per call.
type fakeRunner struct {
	clock     *uint64
	inferCost uint64
	infers    int
	stages    map[pipeline.Stage]int
	onInfer   func() error
}

func newFakeRunner(clock *uint64) *fakeRunner {
	return &fakeRunner{clock: clock, inferCost: 1000, stages: map[pipeline.Stage]int{}}
}

func (f *fakeRunner) Infer(image []byte) (int, error) {
	if len(image) != weights.InputSize {
		return 0, pipeline.ErrInvalidImageLength
	}
	if f.onInfer != nil {
		if err := f.onInfer(); err != nil {
			return 0, err
		}
	}
	f.infers++
	*f.clock += f.inferCost
	return 7, nil
}

func (f *fakeRunner) NewScratch() *pipeline.Scratch { return new(pipeline.Scratch) }

func (f *fakeRunner) RunStage(st pipeline.Stage, _ *pipeline.Scratch) {
	f.stages[st]++
	*f.clock += uint64(st+1) * 10
}

func clockCounter(clock *uint64) Counter {
	return CounterFunc(func() uint64 { return *clock })
}

func testImage() []byte { return make([]byte, weights.InputSize) }

func TestHarness_Run(t *testing.T) {
	var clock uint64
	runner := newFakeRunner(&clock)
	cfg := Config{Warmup: 5, Iterations: 10, Rounds: 3, StageRepetitions: 4, ClockHz: HostClockHz}

	h, err := New(runner, clockCounter(&clock), cfg, nil)
	require.NoError(t, err)

	report, err := h.Run(testImage())
	require.NoError(t, err)

	// 1 probe + 5 warm-up + 10 measured.
	assert.Equal(t, 16, runner.infers)
	assert.Equal(t, 7, report.Label)
	assert.NotEmpty(t, report.RunID)

	assert.Equal(t, []RoundTiming{{4, 4000}, {3, 3000}, {3, 3000}}, report.Rounds)
	assert.Equal(t, uint64(10000), report.TotalCycles)
	assert.Equal(t, 10, report.Iterations)
	assert.InDelta(t, 1000.0, report.CyclesPerInference, 1e-9)
	assert.InDelta(t, 1e6, report.InferencesPerSecond, 1e-6)
	assert.InDelta(t, 1000.0, report.RoundMean, 1e-9)
	assert.InDelta(t, 0.0, report.RoundStdDev, 1e-9)

	require.Len(t, report.Stages, len(pipeline.Stages()))
	var share float64
	for i, s := range report.Stages {
		st := pipeline.Stage(i)
		assert.Equal(t, st.String(), s.Stage)
		assert.Equal(t, 4, s.Repetitions)
		assert.Equal(t, uint64(i+1)*10*4, s.Cycles)
		assert.InDelta(t, float64(i+1)*10, s.PerCall, 1e-9)
		// 1 priming pass + 4 measured.
		assert.Equal(t, 5, runner.stages[st])
		share += s.Share
	}
	assert.InDelta(t, 100.0, share, 1e-9)
	// Shares are proportional to 1..7 out of 28.
	assert.InDelta(t, 7.0/28*100, report.Stages[6].Share, 1e-9)
}

func TestHarness_NoStageProfile(t *testing.T) {
	var clock uint64
	runner := newFakeRunner(&clock)
	cfg := Config{Iterations: 4, Rounds: 1, ClockHz: 100}

	h, err := New(runner, clockCounter(&clock), cfg, nil)
	require.NoError(t, err)
	report, err := h.Run(testImage())
	require.NoError(t, err)

	assert.Empty(t, report.Stages)
	assert.Empty(t, runner.stages)
	assert.InDelta(t, 0.1, report.InferencesPerSecond, 1e-12)
}

func TestHarness_ZeroCycles(t *testing.T) {
	var clock uint64
	runner := newFakeRunner(&clock)
	runner.inferCost = 0
	h, err := New(runner, CounterFunc(func() uint64 { return 42 }), DefaultConfig(), nil)
	require.NoError(t, err)

	report, err := h.Run(testImage())
	require.NoError(t, err)
	assert.Zero(t, report.TotalCycles)
	assert.Zero(t, report.InferencesPerSecond)

	var buf bytes.Buffer
	_, err = report.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "n/a")
}

func TestHarness_CounterWentBackwards(t *testing.T) {
	var clock uint64
	runner := newFakeRunner(&clock)
	readings := uint64(1 << 20)
	counter := CounterFunc(func() uint64 {
		readings -= 10
		return readings
	})

	h, err := New(runner, counter, DefaultConfig(), nil)
	require.NoError(t, err)
	_, err = h.Run(testImage())
	assert.ErrorIs(t, err, ErrCounterNotMonotonic)
}

func TestHarness_RejectsBadImage(t *testing.T) {
	var clock uint64
	h, err := New(newFakeRunner(&clock), clockCounter(&clock), DefaultConfig(), nil)
	require.NoError(t, err)

	_, err = h.Run(make([]byte, 10))
	assert.ErrorIs(t, err, pipeline.ErrInvalidImageLength)
}

func TestHarness_Busy(t *testing.T) {
	var clock uint64
	runner := newFakeRunner(&clock)
	h, err := New(runner, clockCounter(&clock), DefaultConfig(), nil)
	require.NoError(t, err)

	var nested error
	runner.onInfer = func() error {
		runner.onInfer = nil
		_, nested = h.Run(testImage())
		return nil
	}
	_, err = h.Run(testImage())
	require.NoError(t, err)
	assert.True(t, errors.Is(nested, ErrBusy))

	// The harness is reusable once the first run finishes.
	_, err = h.Run(testImage())
	assert.NoError(t, err)
}

func TestHarness_RealPipeline(t *testing.T) {
	model, err := weights.Random(1, 0.01)
	require.NoError(t, err)
	p, err := pipeline.New(model, pipeline.DefaultConfig())
	require.NoError(t, err)

	cfg := Config{Warmup: 1, Iterations: 6, Rounds: 2, StageRepetitions: 2, ClockHz: HostClockHz}
	h, err := New(p, HostCounter(), cfg, nil)
	require.NoError(t, err)

	img := testImage()
	want, err := p.Infer(img)
	require.NoError(t, err)

	report, err := h.Run(img)
	require.NoError(t, err)
	assert.Equal(t, want, report.Label)
	assert.Len(t, report.Rounds, 2)
	assert.Len(t, report.Stages, len(pipeline.Stages()))
	assert.Equal(t, model.Checksum(), p.Model().Checksum())
}

func TestReport_WriteTo(t *testing.T) {
	var clock uint64
	h, err := New(newFakeRunner(&clock), clockCounter(&clock),
		Config{Iterations: 2, Rounds: 2, StageRepetitions: 1, ClockHz: 1000}, nil)
	require.NoError(t, err)
	report, err := h.Run(testImage())
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := report.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "=== BENCHMARK "+report.RunID))
	assert.Contains(t, out, "total cycles:         2000")
	assert.Contains(t, out, "cycles/inference:     1000.0")
	assert.Contains(t, out, "inferences/second:    1.00")
	assert.Contains(t, out, "fc1_requant_act")
}

func TestNew_Validation(t *testing.T) {
	var clock uint64
	_, err := New(nil, clockCounter(&clock), DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(newFakeRunner(&clock), nil, DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative warmup", func(c *Config) { c.Warmup = -1 }},
		{"zero iterations", func(c *Config) { c.Iterations = 0 }},
		{"zero rounds", func(c *Config) { c.Rounds = 0 }},
		{"more rounds than iterations", func(c *Config) { c.Rounds = c.Iterations + 1 }},
		{"negative stage reps", func(c *Config) { c.StageRepetitions = -1 }},
		{"zero clock", func(c *Config) { c.ClockHz = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
