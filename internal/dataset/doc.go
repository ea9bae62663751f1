// Package dataset reads labelled 28x28 digit images for evaluation and
// benchmarking.
//
// Two formats are supported:
//
//   - MNIST IDX files (images magic 2051, labels magic 2049), optionally gzip
//     compressed, as distributed with the original dataset.
//   - Single-image .bin files: [u32 LE width=28][u32 LE height=28][u8 label][784 pixels],
//     usually gathered from a directory and ordered by file name.
package dataset
