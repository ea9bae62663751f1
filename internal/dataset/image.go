package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/born-ml/qmnist/internal/weights"
)

// ImageFileSize is the size of a single-image .bin file.
const ImageFileSize = 4 + 4 + 1 + weights.InputSize

// ImageExt is the extension of single-image files.
const ImageExt = ".bin"

// ReadImage decodes one single-image record.
func ReadImage(r io.Reader) (pixels []byte, label uint8, err error) {
	var hdr [9]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: short header: %w", ErrMalformedImage, err)
	}
	w := binary.LittleEndian.Uint32(hdr[0:4])
	h := binary.LittleEndian.Uint32(hdr[4:8])
	if w != Width || h != Height {
		return nil, 0, fmt.Errorf("%w: image is %dx%d, want %dx%d", ErrMalformedImage, w, h, Width, Height)
	}

	pixels = make([]byte, weights.InputSize)
	if _, err := io.ReadFull(r, pixels); err != nil {
		return nil, 0, fmt.Errorf("%w: short pixel data: %w", ErrMalformedImage, err)
	}
	return pixels, hdr[8], nil
}

// WriteImage encodes one single-image record.
func WriteImage(w io.Writer, pixels []byte, label uint8) error {
	if len(pixels) != weights.InputSize {
		return fmt.Errorf("%w: %d pixels, want %d", ErrMalformedImage, len(pixels), weights.InputSize)
	}
	buf := make([]byte, 0, ImageFileSize)
	buf = binary.LittleEndian.AppendUint32(buf, Width)
	buf = binary.LittleEndian.AppendUint32(buf, Height)
	buf = append(buf, label)
	buf = append(buf, pixels...)
	_, err := w.Write(buf)
	return err
}

// ReadImageFile reads a single-image .bin file.
func ReadImageFile(path string) ([]byte, uint8, error) {
	//nolint:gosec // G304: image path is operator supplied
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	pixels, label, err := ReadImage(f)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	return pixels, label, nil
}

// WriteImageFile writes a single-image .bin file.
func WriteImageFile(path string, pixels []byte, label uint8) error {
	//nolint:gosec // G304: image path is operator supplied
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	if err := WriteImage(f, pixels, label); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LoadImageDir reads every .bin file in dir, ordered by file name.
func LoadImageDir(dir string) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ImageExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	set := &Set{Names: names}
	for _, name := range names {
		pixels, label, err := ReadImageFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		set.Images = append(set.Images, pixels)
		set.Labels = append(set.Labels, label)
	}
	return set, nil
}
