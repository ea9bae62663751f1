package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/qmnist/internal/dataset"
	"github.com/born-ml/qmnist/internal/weights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

// fixture writes a random model and two saved images into a temp dir.
func fixture(t *testing.T) (weightsDir, imageDir string) {
	t.Helper()
	root := t.TempDir()
	weightsDir = filepath.Join(root, "weights")
	imageDir = filepath.Join(root, "images")

	_, _, err := runCLI(t, "-log-level", "error", "gen", "-out", weightsDir, "-seed", "3")
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(imageDir, 0o755))
	for i := 0; i < 2; i++ {
		img := make([]byte, weights.InputSize)
		for j := range img {
			img[j] = byte(j*(i+1)) % 255
		}
		name := filepath.Join(imageDir, "img_"+string(rune('a'+i))+dataset.ImageExt)
		require.NoError(t, dataset.WriteImageFile(name, img, uint8(i)))
	}
	return weightsDir, imageDir
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "qmnist "+version+"\n", out)
}

func TestUsage(t *testing.T) {
	_, stderr, err := runCLI(t)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, "bench")

	_, _, err = runCLI(t, "train")
	assert.ErrorContains(t, err, `unknown command "train"`)

	_, _, err = runCLI(t, "-nope")
	assert.ErrorIs(t, err, errUsage)
}

func TestGen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "w")
	out, _, err := runCLI(t, "-log-level", "error", "gen", "-out", dir, "-seed", "9")
	require.NoError(t, err)

	model, err := weights.LoadModelDir(dir)
	require.NoError(t, err)
	want, err := weights.Random(9, 0.01)
	require.NoError(t, err)
	assert.Equal(t, want.Checksum(), model.Checksum())
	assert.Contains(t, out, weights.Fingerprint(model.Checksum()))
}

func TestInfer(t *testing.T) {
	weightsDir, imageDir := fixture(t)

	out, _, err := runCLI(t, "-weights", weightsDir, "-log-level", "error",
		"infer", "-image", filepath.Join(imageDir, "img_b.bin"))
	require.NoError(t, err)
	assert.Contains(t, out, "image:     img_b.bin")
	assert.Contains(t, out, "label:     1")
	assert.Contains(t, out, "predicted: ")

	_, _, err = runCLI(t, "-weights", weightsDir, "-log-level", "error", "infer")
	assert.ErrorContains(t, err, "an image is required")
}

func TestEval(t *testing.T) {
	weightsDir, imageDir := fixture(t)

	out, _, err := runCLI(t, "-weights", weightsDir, "-log-level", "error",
		"eval", "-dir", imageDir, "-workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "=== ACCURACY ===")
	assert.Contains(t, out, "/2 (")

	_, _, err = runCLI(t, "-weights", weightsDir, "eval")
	assert.ErrorContains(t, err, "a dataset is required")
}

func TestBench(t *testing.T) {
	weightsDir, imageDir := fixture(t)

	out, _, err := runCLI(t, "-weights", weightsDir, "-log-level", "error",
		"bench", "-image", filepath.Join(imageDir, "img_a.bin"),
		"-warmup", "1", "-iterations", "6", "-rounds", "3", "-stages", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "=== BENCHMARK")
	assert.Contains(t, out, "measured inferences:  6 in 3 rounds")

	_, _, err = runCLI(t, "-weights", weightsDir, "-log-level", "error",
		"bench", "-iterations", "2", "-rounds", "3")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	weightsDir, imageDir := fixture(t)
	path := filepath.Join(t.TempDir(), "qmnist.yaml")
	yaml := "weights: " + weightsDir + "\nlog: {level: error}\npipeline: {clamp: symmetric, activations: [relu6, relu6]}\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	out, _, err := runCLI(t, "-config", path, "eval", "-dir", imageDir)
	require.NoError(t, err)
	assert.Contains(t, out, "=== ACCURACY ===")

	_, _, err = runCLI(t, "-config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMissingWeights(t *testing.T) {
	_, imageDir := fixture(t)
	_, stderr, err := runCLI(t, "-weights", t.TempDir(), "infer", "-image", filepath.Join(imageDir, "img_a.bin"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, stderr, "command failed")
}
