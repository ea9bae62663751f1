package bench

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/born-ml/qmnist/internal/pipeline"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// Benchmark errors.
var (
	ErrCounterNotMonotonic = errors.New("cycle counter went backwards")
	ErrBusy                = errors.New("benchmark already running")
)

// Runner is the part of a pipeline the harness drives.
type Runner interface {
	Infer(image []byte) (int, error)
	NewScratch() *pipeline.Scratch
	RunStage(st pipeline.Stage, s *pipeline.Scratch)
}

// Harness drives a Runner while sampling a Counter. It never mutates the
// runner's model and assumes exclusive use of the counter while running.
type Harness struct {
	runner  Runner
	counter Counter
	cfg     Config
	logger  *zap.Logger
	host    HostInfo

	running atomic.Bool
}

// New creates a harness. A nil logger disables logging.
func New(runner Runner, counter Counter, cfg Config, logger *zap.Logger) (*Harness, error) {
	if runner == nil || counter == nil {
		return nil, fmt.Errorf("%w: runner and counter are required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harness{
		runner:  runner,
		counter: counter,
		cfg:     cfg,
		logger:  logger,
		host:    DetectHost(),
	}, nil
}

// Run benchmarks inference on image. Overlapping calls fail with ErrBusy.
func (h *Harness) Run(image []byte) (*Report, error) {
	if !h.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer h.running.Store(false)

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Host:      h.host,
		Config:    h.cfg,
	}
	log := h.logger.With(zap.String("run_id", report.RunID))

	label, err := h.runner.Infer(image)
	if err != nil {
		return nil, fmt.Errorf("benchmark image rejected: %w", err)
	}
	report.Label = label

	for i := 0; i < h.cfg.Warmup; i++ {
		if _, err := h.runner.Infer(image); err != nil {
			return nil, err
		}
	}
	log.Debug("warm-up done", zap.Int("inferences", h.cfg.Warmup))

	if err := h.measure(image, report, log); err != nil {
		return nil, err
	}
	if h.cfg.StageRepetitions > 0 {
		if err := h.profileStages(image, report); err != nil {
			return nil, err
		}
	}

	log.Info("benchmark complete",
		zap.Uint64("total_cycles", report.TotalCycles),
		zap.Float64("cycles_per_inference", report.CyclesPerInference),
		zap.Float64("inferences_per_second", report.InferencesPerSecond))
	return report, nil
}

func (h *Harness) measure(image []byte, report *Report, log *zap.Logger) error {
	per := h.cfg.Iterations / h.cfg.Rounds
	extra := h.cfg.Iterations % h.cfg.Rounds
	perRound := make([]float64, 0, h.cfg.Rounds)

	for r := 0; r < h.cfg.Rounds; r++ {
		n := per
		if r < extra {
			n++
		}

		start := h.counter.Cycles()
		for i := 0; i < n; i++ {
			if _, err := h.runner.Infer(image); err != nil {
				return err
			}
		}
		end := h.counter.Cycles()
		if end < start {
			return fmt.Errorf("%w: round %d read %d then %d", ErrCounterNotMonotonic, r, start, end)
		}

		cycles := end - start
		report.Rounds = append(report.Rounds, RoundTiming{Inferences: n, Cycles: cycles})
		report.TotalCycles += cycles
		perRound = append(perRound, float64(cycles)/float64(n))
		log.Debug("round done", zap.Int("round", r), zap.Int("inferences", n), zap.Uint64("cycles", cycles))
	}

	report.Iterations = h.cfg.Iterations
	report.CyclesPerInference = float64(report.TotalCycles) / float64(report.Iterations)
	if report.TotalCycles > 0 {
		report.InferencesPerSecond = float64(h.cfg.ClockHz) * float64(report.Iterations) / float64(report.TotalCycles)
	}
	report.RoundMean, report.RoundStdDev = stat.MeanStdDev(perRound, nil)
	if len(perRound) < 2 {
		report.RoundStdDev = 0
	}
	return nil
}

// profileStages times every stage in isolation. The scratch is primed with
// one full pass so each stage reads realistic inputs.
func (h *Harness) profileStages(image []byte, report *Report) error {
	s := h.runner.NewScratch()
	if err := s.Load(image); err != nil {
		return err
	}
	stages := pipeline.Stages()
	for _, st := range stages {
		h.runner.RunStage(st, s)
	}

	reps := h.cfg.StageRepetitions
	var sum float64
	for _, st := range stages {
		start := h.counter.Cycles()
		for i := 0; i < reps; i++ {
			h.runner.RunStage(st, s)
		}
		end := h.counter.Cycles()
		if end < start {
			return fmt.Errorf("%w: stage %v read %d then %d", ErrCounterNotMonotonic, st, start, end)
		}
		t := StageTiming{
			Stage:       st.String(),
			Repetitions: reps,
			Cycles:      end - start,
			PerCall:     float64(end-start) / float64(reps),
		}
		sum += t.PerCall
		report.Stages = append(report.Stages, t)
	}

	if sum > 0 {
		for i := range report.Stages {
			report.Stages[i].Share = report.Stages[i].PerCall / sum * 100
		}
	}
	return nil
}
