package main

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/born-ml/qmnist/internal/bench"
	"github.com/born-ml/qmnist/internal/dataset"
	"github.com/born-ml/qmnist/internal/eval"
	"github.com/born-ml/qmnist/internal/pipeline"
	"github.com/born-ml/qmnist/internal/weights"
	"go.uber.org/zap"
)

// newFlagSet returns a FlagSet that reports parse errors on a.stderr.
func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("qmnist "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return nil
}

// loadPipeline reads the configured weights directory and builds a pipeline.
func (a *app) loadPipeline() (*pipeline.Pipeline, error) {
	model, err := weights.LoadModelDir(a.cfg.Weights)
	if err != nil {
		return nil, err
	}
	pcfg, err := a.cfg.PipelineConfig()
	if err != nil {
		return nil, err
	}
	p, err := pipeline.New(model, pcfg)
	if err != nil {
		return nil, err
	}

	a.logger.Info("model loaded",
		zap.String("dir", a.cfg.Weights),
		zap.String("fingerprint", weights.Fingerprint(model.Checksum())),
		zap.Float32("fc1_scale", model.FC1.Scale),
		zap.Float32("fc2_scale", model.FC2.Scale),
		zap.Float32("fc3_scale", model.FC3.Scale),
		zap.Stringer("policy", pcfg))
	return p, nil
}

// loadSet reads either an IDX image/label pair or a directory of saved images.
func loadSet(images, labels, dir string) (*dataset.Set, error) {
	switch {
	case dir != "" && (images != "" || labels != ""):
		return nil, errors.New("use either -dir or -images/-labels, not both")
	case dir != "":
		return dataset.LoadImageDir(dir)
	case images != "" && labels != "":
		return dataset.LoadIDX(images, labels)
	default:
		return nil, errors.New("a dataset is required: -dir, or -images with -labels")
	}
}

func runInfer(a *app, args []string) error {
	fs := a.newFlagSet("infer")
	imagePath := fs.String("image", "", "Saved image file (28x28 header, label, pixels)")
	images := fs.String("images", "", "IDX image file, optionally gzipped")
	labels := fs.String("labels", "", "IDX label file, optionally gzipped")
	index := fs.Int("index", 0, "Sample index within the IDX files")
	if err := parse(fs, args); err != nil {
		return err
	}

	var (
		pixels []byte
		label  uint8
		name   string
	)
	switch {
	case *imagePath != "":
		var err error
		if pixels, label, err = dataset.ReadImageFile(*imagePath); err != nil {
			return err
		}
		name = filepath.Base(*imagePath)
	case *images == "" || *labels == "":
		return errors.New("an image is required: -image, or -images with -labels")
	default:
		set, err := dataset.LoadIDX(*images, *labels)
		if err != nil {
			return err
		}
		if *index < 0 || *index >= set.Len() {
			return fmt.Errorf("index %d out of range [0, %d)", *index, set.Len())
		}
		pixels, label = set.Sample(*index)
		name = set.Name(*index)
	}

	p, err := a.loadPipeline()
	if err != nil {
		return err
	}
	res, err := p.InferLogits(pixels)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "image:     %s\n", name)
	fmt.Fprintf(a.stdout, "label:     %d\n", label)
	fmt.Fprintf(a.stdout, "predicted: %d\n", res.Label)
	fmt.Fprintf(a.stdout, "logits:    %v\n", res.Logits)
	fmt.Fprintf(a.stdout, "shifts:    fc1=%d fc2=%d\n", res.Shifts[0], res.Shifts[1])
	return nil
}

func runEval(a *app, args []string) error {
	fs := a.newFlagSet("eval")
	images := fs.String("images", "", "IDX image file, optionally gzipped")
	labels := fs.String("labels", "", "IDX label file, optionally gzipped")
	dir := fs.String("dir", "", "Directory of saved image files")
	limit := fs.Int("limit", 0, "Evaluate at most this many samples (0 = all)")
	workers := fs.Int("workers", a.cfg.Eval.Workers, "Concurrent workers (0 = one per CPU)")
	misses := fs.Int("misses", a.cfg.Eval.MaxMisses, "Misclassified samples to list")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *workers < 0 || *misses < 0 {
		return errors.New("-workers and -misses must not be negative")
	}
	a.cfg.Eval.Workers = *workers
	a.cfg.Eval.MaxMisses = *misses

	set, err := loadSet(*images, *labels, *dir)
	if err != nil {
		return err
	}
	set.Limit(*limit)
	a.logger.Info("dataset loaded", zap.Int("samples", set.Len()))

	p, err := a.loadPipeline()
	if err != nil {
		return err
	}
	res, err := eval.Evaluate(p, set, a.cfg.EvalOptions(a.logger))
	if err != nil {
		return err
	}
	_, err = res.WriteTo(a.stdout)
	return err
}

func runBench(a *app, args []string) error {
	b := &a.cfg.Bench
	fs := a.newFlagSet("bench")
	imagePath := fs.String("image", "", "Saved image file to benchmark (default: blank image)")
	fs.IntVar(&b.Warmup, "warmup", b.Warmup, "Unmeasured inferences before timing")
	fs.IntVar(&b.Iterations, "iterations", b.Iterations, "Measured inferences")
	fs.IntVar(&b.Rounds, "rounds", b.Rounds, "Timing rounds the iterations are split into")
	fs.IntVar(&b.StageRepetitions, "stages", b.StageRepetitions, "Repetitions per stage for the breakdown (0 = skip)")
	fs.Uint64Var(&b.ClockHz, "clock-hz", b.ClockHz, "Counter ticks per second (0 = host counter rate)")
	if err := parse(fs, args); err != nil {
		return err
	}

	image := make([]byte, weights.InputSize)
	if *imagePath != "" {
		var err error
		if image, _, err = dataset.ReadImageFile(*imagePath); err != nil {
			return err
		}
	} else {
		a.logger.Warn("no -image given, benchmarking a blank image")
	}

	p, err := a.loadPipeline()
	if err != nil {
		return err
	}
	h, err := bench.New(p, bench.HostCounter(), a.cfg.BenchConfig(), a.logger)
	if err != nil {
		return err
	}
	report, err := h.Run(image)
	if err != nil {
		return err
	}
	_, err = report.WriteTo(a.stdout)
	return err
}

func runGen(a *app, args []string) error {
	fs := a.newFlagSet("gen")
	out := fs.String("out", a.cfg.Weights, "Directory to write the weight blobs into")
	seed := fs.Int64("seed", 1, "Random seed")
	scale := fs.Float64("scale", 0.01, "Scale stored in every layer header")
	zero := fs.Bool("zero", false, "Write all-zero weights instead of random ones")
	if err := parse(fs, args); err != nil {
		return err
	}

	var (
		model *weights.Model
		err   error
	)
	if *zero {
		model, err = weights.Zero(float32(*scale))
	} else {
		model, err = weights.Random(*seed, float32(*scale))
	}
	if err != nil {
		return err
	}
	if err := model.WriteDir(*out); err != nil {
		return err
	}

	a.logger.Info("weights written", zap.String("dir", *out), zap.Stringer("model", model))
	fmt.Fprintf(a.stdout, "wrote %s to %s\n", weights.Fingerprint(model.Checksum()), *out)
	return nil
}
