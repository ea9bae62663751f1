package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// IDX magic numbers.
const (
	IDXImagesMagic = 2051
	IDXLabelsMagic = 2049
)

// MaxIDXItems bounds the item count accepted from an IDX header.
const MaxIDXItems = 1 << 20

// ReadIDXImages reads an IDX image file.
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes (28)
//	number of cols: 4 bytes (28)
//	pixel data: unsigned bytes (0-255)
func ReadIDXImages(r io.Reader) ([][]byte, error) {
	var hdr [4]uint32
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("failed to read IDX header: %w", err)
	}
	if hdr[0] != IDXImagesMagic {
		return nil, fmt.Errorf("%w: invalid magic number: got %d, want %d", ErrMalformedImage, hdr[0], IDXImagesMagic)
	}
	count, rows, cols := hdr[1], hdr[2], hdr[3]
	if rows != Height || cols != Width {
		return nil, fmt.Errorf("%w: images are %dx%d, want %dx%d", ErrMalformedImage, rows, cols, Height, Width)
	}
	if count > MaxIDXItems {
		return nil, fmt.Errorf("%w: %d images exceeds limit %d", ErrMalformedImage, count, MaxIDXItems)
	}

	images := make([][]byte, count)
	for i := range images {
		images[i] = make([]byte, rows*cols)
		if _, err := io.ReadFull(r, images[i]); err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i, err)
		}
	}
	return images, nil
}

// ReadIDXLabels reads an IDX label file.
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes (0-9)
func ReadIDXLabels(r io.Reader) ([]uint8, error) {
	var hdr [2]uint32
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("failed to read IDX header: %w", err)
	}
	if hdr[0] != IDXLabelsMagic {
		return nil, fmt.Errorf("%w: invalid magic number: got %d, want %d", ErrMalformedImage, hdr[0], IDXLabelsMagic)
	}
	if hdr[1] > MaxIDXItems {
		return nil, fmt.Errorf("%w: %d labels exceeds limit %d", ErrMalformedImage, hdr[1], MaxIDXItems)
	}

	labels := make([]uint8, hdr[1])
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return labels, nil
}

// LoadIDX reads an image file and a label file, either of which may be gzip compressed.
func LoadIDX(imagesPath, labelsPath string) (*Set, error) {
	var images [][]byte
	err := withReader(imagesPath, func(r io.Reader) (err error) {
		images, err = ReadIDXImages(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	var labels []uint8
	err = withReader(labelsPath, func(r io.Reader) (err error) {
		labels, err = ReadIDXLabels(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	set := &Set{Images: images, Labels: labels}
	if err := set.validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// withReader opens path and transparently decompresses gzip content.
func withReader(path string, fn func(io.Reader) error) error {
	//nolint:gosec // G304: dataset path is operator supplied
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("failed to read gzip %s: %w", path, err)
		}
		defer zr.Close()
		if err := fn(zr); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}
	if err := fn(br); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
