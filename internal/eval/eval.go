// Package eval measures classification accuracy over a labelled dataset.
package eval

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/born-ml/qmnist/internal/dataset"
	"github.com/born-ml/qmnist/internal/parallel"
	"github.com/born-ml/qmnist/internal/weights"
	"go.uber.org/zap"
)

// ErrInvalidLabel is returned for a sample whose label is not a digit.
var ErrInvalidLabel = errors.New("label out of range")

// Classifier predicts a digit for one image. It must be safe for concurrent use.
type Classifier interface {
	Infer(image []byte) (int, error)
}

// Options controls an evaluation run.
type Options struct {
	Parallel  parallel.Config
	MaxMisses int         // Misclassified samples to keep; 0 keeps none
	Logger    *zap.Logger // Optional
}

// DefaultOptions evaluates on every CPU and keeps the first 20 misses.
func DefaultOptions() Options {
	return Options{Parallel: parallel.DefaultConfig(), MaxMisses: 20}
}

// Miss is one misclassified sample.
type Miss struct {
	Index     int
	Name      string
	Label     int
	Predicted int
}

// Result aggregates predictions over a dataset.
type Result struct {
	Total     int
	Correct   int
	Confusion [weights.NumClasses][weights.NumClasses]int // [label][predicted]
	Misses    []Miss                                      // Ordered by index
}

// Accuracy returns Correct/Total in [0, 1], or 0 for an empty run.
func (r *Result) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// Recall returns the fraction of samples of each label that were predicted correctly.
func (r *Result) Recall() [weights.NumClasses]float64 {
	var out [weights.NumClasses]float64
	for label, row := range r.Confusion {
		n := 0
		for _, c := range row {
			n += c
		}
		if n > 0 {
			out[label] = float64(row[label]) / float64(n)
		}
	}
	return out
}

func (r *Result) merge(o *Result) {
	r.Total += o.Total
	r.Correct += o.Correct
	for i := range r.Confusion {
		for j := range r.Confusion[i] {
			r.Confusion[i][j] += o.Confusion[i][j]
		}
	}
	r.Misses = append(r.Misses, o.Misses...)
}

// Evaluate classifies every sample of set and compares against its label.
// The first error stops the evaluation.
func Evaluate(c Classifier, set *dataset.Set, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	chunks := parallel.Chunks(set.Len(), opts.Parallel)
	partial := make([]Result, len(chunks))
	errs := make([]error, len(chunks))

	parallel.For(set.Len(), opts.Parallel, func(chunk, lo, hi int) {
		res := &partial[chunk]
		for i := lo; i < hi; i++ {
			img, label := set.Sample(i)
			if int(label) >= weights.NumClasses {
				errs[chunk] = fmt.Errorf("%w: sample %s has label %d", ErrInvalidLabel, set.Name(i), label)
				return
			}
			pred, err := c.Infer(img)
			if err != nil {
				errs[chunk] = fmt.Errorf("sample %s: %w", set.Name(i), err)
				return
			}
			if pred < 0 || pred >= weights.NumClasses {
				errs[chunk] = fmt.Errorf("%w: sample %s predicted %d", ErrInvalidLabel, set.Name(i), pred)
				return
			}
			res.Total++
			res.Confusion[label][pred]++
			if pred == int(label) {
				res.Correct++
			} else if len(res.Misses) < opts.MaxMisses {
				res.Misses = append(res.Misses, Miss{Index: i, Name: set.Name(i), Label: int(label), Predicted: pred})
			}
		}
	})

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	out := &Result{}
	for i := range partial {
		out.merge(&partial[i])
	}
	sort.Slice(out.Misses, func(i, j int) bool { return out.Misses[i].Index < out.Misses[j].Index })
	if len(out.Misses) > opts.MaxMisses {
		out.Misses = out.Misses[:opts.MaxMisses]
	}

	logger.Info("evaluation complete",
		zap.Int("samples", out.Total),
		zap.Int("correct", out.Correct),
		zap.Float64("accuracy", out.Accuracy()))
	return out, nil
}

// WriteTo renders accuracy, the confusion matrix and the kept misses as text.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer

	fmt.Fprintf(&b, "=== ACCURACY ===\n")
	fmt.Fprintf(&b, "correct: %d/%d (%.2f%%)\n", r.Correct, r.Total, r.Accuracy()*100)

	fmt.Fprintf(&b, "\nconfusion (rows = label, cols = predicted)\n    ")
	for p := range weights.NumClasses {
		fmt.Fprintf(&b, "%6d", p)
	}
	fmt.Fprintf(&b, "  recall\n")
	recall := r.Recall()
	for label, row := range r.Confusion {
		fmt.Fprintf(&b, "%3d ", label)
		for _, c := range row {
			fmt.Fprintf(&b, "%6d", c)
		}
		fmt.Fprintf(&b, "  %5.1f%%\n", recall[label]*100)
	}

	if len(r.Misses) > 0 {
		fmt.Fprintf(&b, "\nmisclassified:\n")
		for _, m := range r.Misses {
			fmt.Fprintf(&b, "  %-24s true=%d predicted=%d\n", m.Name, m.Label, m.Predicted)
		}
	}

	n, err := w.Write(b.Bytes())
	return int64(n), err
}
