// Package main provides the qmnist command line tool.
//
// Usage:
//
//	qmnist [-config file] [-weights dir] [-log-level level] <command> [flags]
//
// Commands:
//
//	version   Show version
//	infer     Classify one image
//	eval      Measure accuracy over a labelled dataset
//	bench     Benchmark inference on one image
//	gen       Write a synthetic weights directory
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/qmnist/internal/config"
	"github.com/born-ml/qmnist/internal/logging"
	"go.uber.org/zap"
)

const version = "v0.1.0-dev"

// errUsage marks errors already reported through a FlagSet's usage output.
var errUsage = errors.New("usage")

// app carries the state shared by every command.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name    string
	summary string
	run     func(a *app, args []string) error
}

var commands = []command{
	{"version", "Show version", runVersion},
	{"infer", "Classify one image", runInfer},
	{"eval", "Measure accuracy over a labelled dataset", runEval},
	{"bench", "Benchmark inference on one image", runBench},
	{"gen", "Write a synthetic weights directory", runGen},
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "qmnist: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("qmnist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file")
	weightsDir := fs.String("weights", "", "Directory with fc1_weight.bin, fc2_weight.bin and fc3_weight.bin")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn or error")
	logJSON := fs.Bool("log-json", false, "Log as JSON")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if fs.NArg() == 0 {
		usage(fs)
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *weightsDir != "" {
		cfg.Weights = *weightsDir
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logJSON {
		cfg.Log.JSON = true
	}

	logger, err := logging.NewWithWriter(stderr, cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a := &app{cfg: cfg, logger: logger, stdout: stdout, stderr: stderr}

	name := fs.Arg(0)
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(a, fs.Args()[1:]); err != nil {
			if !errors.Is(err, errUsage) {
				logger.Error("command failed", zap.String("command", name), zap.Error(err))
			}
			return err
		}
		return nil
	}

	usage(fs)
	return fmt.Errorf("unknown command %q", name)
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "qmnist %s - fixed-point MNIST inference\n\n", version)
	fmt.Fprintf(w, "Usage: qmnist [flags] <command> [command flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nFlags:\n")
	fs.PrintDefaults()
}

func runVersion(a *app, _ []string) error {
	fmt.Fprintf(a.stdout, "qmnist %s\n", version)
	return nil
}
