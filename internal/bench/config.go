package bench

import (
	"errors"
	"fmt"
)

// DefaultClockHz is the assumed core clock used to convert cycles to seconds
// when no frequency is configured.
const DefaultClockHz = 100_000_000

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid benchmark config")

// Config controls a benchmark run.
type Config struct {
	Warmup           int    // Unmeasured inferences before timing
	Iterations       int    // Measured inferences, split across rounds
	Rounds           int    // Number of counter-bracketed rounds
	StageRepetitions int    // Repetitions per stage for the breakdown, 0 disables it
	ClockHz          uint64 // Counter ticks per second
}

// DefaultConfig mirrors the quick benchmark of the bare-metal build.
func DefaultConfig() Config {
	return Config{
		Warmup:           10,
		Iterations:       100,
		Rounds:           5,
		StageRepetitions: 20,
		ClockHz:          DefaultClockHz,
	}
}

// Validate checks the run parameters.
func (c Config) Validate() error {
	switch {
	case c.Warmup < 0:
		return fmt.Errorf("%w: negative warmup %d", ErrInvalidConfig, c.Warmup)
	case c.Iterations <= 0:
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidConfig, c.Iterations)
	case c.Rounds <= 0 || c.Rounds > c.Iterations:
		return fmt.Errorf("%w: rounds must be in [1, %d], got %d", ErrInvalidConfig, c.Iterations, c.Rounds)
	case c.StageRepetitions < 0:
		return fmt.Errorf("%w: negative stage repetitions %d", ErrInvalidConfig, c.StageRepetitions)
	case c.ClockHz == 0:
		return fmt.Errorf("%w: clock rate must be positive", ErrInvalidConfig)
	}
	return nil
}
