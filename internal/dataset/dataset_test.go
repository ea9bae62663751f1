package dataset

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/qmnist/internal/weights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pixels(seed byte) []byte {
	p := make([]byte, weights.InputSize)
	for i := range p {
		p[i] = seed + byte(i)
	}
	return p
}

func idxImages(images ...[]byte) []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.BigEndian, [4]uint32{IDXImagesMagic, uint32(len(images)), Height, Width})
	for _, img := range images {
		b.Write(img)
	}
	return b.Bytes()
}

func idxLabels(labels ...uint8) []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.BigEndian, [2]uint32{IDXLabelsMagic, uint32(len(labels))})
	b.Write(labels)
	return b.Bytes()
}

func gz(t *testing.T, data []byte) []byte {
	t.Helper()
	var b bytes.Buffer
	zw := gzip.NewWriter(&b)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return b.Bytes()
}

func TestReadIDXImages(t *testing.T) {
	images, err := ReadIDXImages(bytes.NewReader(idxImages(pixels(1), pixels(2))))
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, pixels(2), images[1])
}

func TestReadIDXImages_Errors(t *testing.T) {
	bad := idxImages(pixels(1))
	binary.BigEndian.PutUint32(bad[0:4], 1234)

	wrongDims := idxImages(pixels(1))
	binary.BigEndian.PutUint32(wrongDims[8:12], 32)

	huge := idxImages()
	binary.BigEndian.PutUint32(huge[4:8], MaxIDXItems+1)

	tests := []struct {
		name string
		data []byte
	}{
		{"bad magic", bad},
		{"wrong dims", wrongDims},
		{"too many", huge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadIDXImages(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrMalformedImage)
		})
	}

	_, err := ReadIDXImages(bytes.NewReader(idxImages(pixels(1))[:100]))
	assert.Error(t, err)
}

func TestReadIDXLabels(t *testing.T) {
	labels, err := ReadIDXLabels(bytes.NewReader(idxLabels(3, 1, 4)))
	require.NoError(t, err)
	assert.Equal(t, []uint8{3, 1, 4}, labels)

	_, err = ReadIDXLabels(bytes.NewReader(idxImages()))
	assert.ErrorIs(t, err, ErrMalformedImage)
}

func TestLoadIDX_PlainAndGzip(t *testing.T) {
	dir := t.TempDir()
	imgs := idxImages(pixels(1), pixels(2), pixels(3))
	lbls := idxLabels(7, 8, 9)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "images"), imgs, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "labels"), lbls, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images.gz"), gz(t, imgs), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "labels.gz"), gz(t, lbls), 0o644))

	plain, err := LoadIDX(filepath.Join(dir, "images"), filepath.Join(dir, "labels"))
	require.NoError(t, err)
	zipped, err := LoadIDX(filepath.Join(dir, "images.gz"), filepath.Join(dir, "labels.gz"))
	require.NoError(t, err)

	assert.Equal(t, plain, zipped)
	assert.Equal(t, 3, plain.Len())
	img, label := plain.Sample(2)
	assert.Equal(t, pixels(3), img)
	assert.Equal(t, uint8(9), label)
	assert.Equal(t, "#2", plain.Name(2))
}

func TestLoadIDX_CountMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images"), idxImages(pixels(1)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "labels"), idxLabels(1, 2), 0o644))

	_, err := LoadIDX(filepath.Join(dir, "images"), filepath.Join(dir, "labels"))
	assert.ErrorIs(t, err, ErrMalformedImage)

	_, err = LoadIDX(filepath.Join(dir, "missing"), filepath.Join(dir, "labels"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImage_RoundTrip(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteImage(&b, pixels(5), 6))
	assert.Equal(t, ImageFileSize, b.Len())

	raw := b.Bytes()
	assert.Equal(t, uint32(28), binary.LittleEndian.Uint32(raw[0:4]))
	assert.Equal(t, uint32(28), binary.LittleEndian.Uint32(raw[4:8]))
	assert.Equal(t, byte(6), raw[8])

	got, label, err := ReadImage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, pixels(5), got)
	assert.Equal(t, uint8(6), label)
}

func TestReadImage_Errors(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteImage(&b, pixels(0), 1))
	raw := b.Bytes()

	_, _, err := ReadImage(bytes.NewReader(raw[:5]))
	assert.ErrorIs(t, err, ErrMalformedImage)

	_, _, err = ReadImage(bytes.NewReader(raw[:100]))
	assert.ErrorIs(t, err, ErrMalformedImage)

	wrong := append([]byte(nil), raw...)
	binary.LittleEndian.PutUint32(wrong[0:4], 14)
	_, _, err = ReadImage(bytes.NewReader(wrong))
	assert.ErrorIs(t, err, ErrMalformedImage)

	assert.ErrorIs(t, WriteImage(&b, make([]byte, 10), 1), ErrMalformedImage)
}

func TestLoadImageDir_SortedByName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteImageFile(filepath.Join(dir, "saved_image_00002.bin"), pixels(2), 2))
	require.NoError(t, WriteImageFile(filepath.Join(dir, "saved_image_00000.bin"), pixels(0), 0))
	require.NoError(t, WriteImageFile(filepath.Join(dir, "saved_image_00001.bin"), pixels(1), 1))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "saved_image_00000.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.bin"), 0o755))

	set, err := LoadImageDir(dir)
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())
	assert.Equal(t, []uint8{0, 1, 2}, set.Labels)
	assert.Equal(t, "saved_image_00001.bin", set.Name(1))
	assert.Equal(t, pixels(2), set.Images[2])

	set.Limit(2)
	assert.Equal(t, 2, set.Len())
	assert.Len(t, set.Names, 2)
	set.Limit(0)
	assert.Equal(t, 2, set.Len())
}

func TestLoadImageDir_BadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.bin"), []byte{1, 2, 3}, 0o644))
	_, err := LoadImageDir(dir)
	assert.ErrorIs(t, err, ErrMalformedImage)
}
