package bench

import (
	"bytes"
	"fmt"
	"io"
	"time"
)

// RoundTiming is one counter-bracketed loop of inferences.
type RoundTiming struct {
	Inferences int
	Cycles     uint64
}

// StageTiming is the isolated cost of one pipeline stage.
type StageTiming struct {
	Stage       string  // Stage name
	Repetitions int     // Calls measured
	Cycles      uint64  // Total cycles over all repetitions
	PerCall     float64 // Cycles per call
	Share       float64 // Percent of the summed per-call cost of all stages
}

// Report is the result of Harness.Run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Host      HostInfo
	Config    Config
	Label     int // Prediction for the benchmark image

	Iterations          int
	TotalCycles         uint64
	CyclesPerInference  float64
	InferencesPerSecond float64 // At Config.ClockHz; 0 when no cycles elapsed
	RoundMean           float64 // Mean cycles per inference across rounds
	RoundStdDev         float64 // Sample standard deviation across rounds
	Rounds              []RoundTiming
	Stages              []StageTiming
}

// WriteTo renders the report as text. It implements io.WriterTo.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer

	fmt.Fprintf(&b, "=== BENCHMARK %s ===\n", r.RunID)
	fmt.Fprintf(&b, "host:                 %v\n", r.Host)
	fmt.Fprintf(&b, "clock:                %d Hz\n", r.Config.ClockHz)
	fmt.Fprintf(&b, "predicted label:      %d\n", r.Label)
	fmt.Fprintf(&b, "warm-up inferences:   %d\n", r.Config.Warmup)
	fmt.Fprintf(&b, "measured inferences:  %d in %d rounds\n", r.Iterations, len(r.Rounds))
	fmt.Fprintf(&b, "total cycles:         %d\n", r.TotalCycles)
	fmt.Fprintf(&b, "cycles/inference:     %.1f\n", r.CyclesPerInference)
	fmt.Fprintf(&b, "round mean ± stddev:  %.1f ± %.1f\n", r.RoundMean, r.RoundStdDev)
	if r.InferencesPerSecond > 0 {
		fmt.Fprintf(&b, "inferences/second:    %.2f\n", r.InferencesPerSecond)
	} else {
		fmt.Fprintf(&b, "inferences/second:    n/a\n")
	}

	if len(r.Stages) > 0 {
		fmt.Fprintf(&b, "\n--- stage breakdown (%d repetitions) ---\n", r.Stages[0].Repetitions)
		fmt.Fprintf(&b, "%-16s %14s %8s\n", "stage", "cycles/call", "share")
		for _, s := range r.Stages {
			fmt.Fprintf(&b, "%-16s %14.1f %7.1f%%\n", s.Stage, s.PerCall, s.Share)
		}
	}

	n, err := w.Write(b.Bytes())
	return int64(n), err
}
