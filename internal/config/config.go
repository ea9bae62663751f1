package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/qmnist/internal/bench"
	"github.com/born-ml/qmnist/internal/eval"
	"github.com/born-ml/qmnist/internal/parallel"
	"github.com/born-ml/qmnist/internal/pipeline"
	"github.com/born-ml/qmnist/internal/qops"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned for config files that do not parse or validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full set of qmnist settings.
type Config struct {
	Weights  string   `yaml:"weights"`
	Pipeline Pipeline `yaml:"pipeline"`
	Bench    Bench    `yaml:"bench"`
	Eval     Eval     `yaml:"eval"`
	Log      Log      `yaml:"log"`
}

// Pipeline holds the numeric policies of the inference pipeline.
type Pipeline struct {
	Quantizer   string    `yaml:"quantizer"`
	Clamp       string    `yaml:"clamp"`
	Activations [2]string `yaml:"activations"`
}

// Bench holds benchmark harness settings.
type Bench struct {
	Warmup           int    `yaml:"warmup"`
	Iterations       int    `yaml:"iterations"`
	Rounds           int    `yaml:"rounds"`
	StageRepetitions int    `yaml:"stage_repetitions"`
	ClockHz          uint64 `yaml:"clock_hz"` // 0 means the host counter rate
}

// Eval holds accuracy evaluation settings.
type Eval struct {
	Workers   int `yaml:"workers"` // 0 means one per CPU
	MaxMisses int `yaml:"max_misses"`
}

// Log holds logger settings.
type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the settings used when no config file is given.
func Default() Config {
	b := bench.DefaultConfig()
	return Config{
		Weights: "weights",
		Pipeline: Pipeline{
			Quantizer:   pipeline.QuantizerFixed.String(),
			Clamp:       "full",
			Activations: [2]string{qops.ActivationReLU.String(), qops.ActivationReLU.String()},
		},
		Bench: Bench{
			Warmup:           b.Warmup,
			Iterations:       b.Iterations,
			Rounds:           b.Rounds,
			StageRepetitions: b.StageRepetitions,
		},
		Eval: Eval{MaxMisses: eval.DefaultOptions().MaxMisses},
		Log:  Log{Level: "info"},
	}
}

// Load reads path on top of Default. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every section converts to a valid component config.
func (c Config) Validate() error {
	if c.Weights == "" {
		return fmt.Errorf("%w: weights directory is empty", ErrInvalidConfig)
	}
	if _, err := c.PipelineConfig(); err != nil {
		return err
	}
	if err := c.BenchConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Eval.Workers < 0 {
		return fmt.Errorf("%w: negative eval workers %d", ErrInvalidConfig, c.Eval.Workers)
	}
	if c.Eval.MaxMisses < 0 {
		return fmt.Errorf("%w: negative max_misses %d", ErrInvalidConfig, c.Eval.MaxMisses)
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log level: %v", ErrInvalidConfig, err)
	}
	return nil
}

// PipelineConfig converts the pipeline section.
func (c Config) PipelineConfig() (pipeline.Config, error) {
	var out pipeline.Config
	var err error

	if out.Quantizer, err = pipeline.ParseQuantizerMode(c.Pipeline.Quantizer); err != nil {
		return out, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if out.Clamp, err = qops.ParseClampBounds(c.Pipeline.Clamp); err != nil {
		return out, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for i, name := range c.Pipeline.Activations {
		if out.Hidden[i], err = qops.ParseActivation(name); err != nil {
			return out, fmt.Errorf("%w: fc%d: %w", ErrInvalidConfig, i+1, err)
		}
	}
	return out, nil
}

// BenchConfig converts the bench section. An unset clock rate selects
// bench.HostClockHz, matching bench.HostCounter.
func (c Config) BenchConfig() bench.Config {
	hz := c.Bench.ClockHz
	if hz == 0 {
		hz = bench.HostClockHz
	}
	return bench.Config{
		Warmup:           c.Bench.Warmup,
		Iterations:       c.Bench.Iterations,
		Rounds:           c.Bench.Rounds,
		StageRepetitions: c.Bench.StageRepetitions,
		ClockHz:          hz,
	}
}

// EvalOptions converts the eval section.
func (c Config) EvalOptions(logger *zap.Logger) eval.Options {
	par := parallel.DefaultConfig()
	if c.Eval.Workers > 0 {
		par.Workers = c.Eval.Workers
	}
	return eval.Options{
		Parallel:  par,
		MaxMisses: c.Eval.MaxMisses,
		Logger:    logger,
	}
}
