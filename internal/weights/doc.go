// Package weights loads the int8 weight matrices and Q16 scale factors of the
// fixed 784→256→128→10 classifier.
//
// Each layer is stored as its own little-endian blob:
//
//	[4 bytes: rows (uint32 LE), 0 = unspecified]
//	[4 bytes: cols (uint32 LE), 0 = unspecified]
//	[4 bytes: scale (IEEE-754 float32 LE)]
//	[rows*cols bytes: int8 weights, row-major]
//
// The weight at (row i, col j) lives at offset 12 + i*cols + j. Trailing bytes
// after the matrix are ignored.
//
// Example:
//
//	model, err := weights.LoadModelDir("weights")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(model)
package weights
