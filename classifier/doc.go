// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package classifier provides fixed-point MNIST digit classification.
//
// A Classifier runs a 784-256-128-10 fully connected network entirely in
// integer arithmetic: int8 weights and activations, int32 accumulators and
// Q16 fixed-point layer scales. No floating point is used on the inference
// path with the default configuration.
//
// # Weights
//
// A weights directory holds three blobs, fc1_weight.bin, fc2_weight.bin and
// fc3_weight.bin. Each starts with a 12-byte little-endian header
// (rows uint32, cols uint32, scale float32) followed by rows*cols int8
// weights in row-major order.
//
// # Basic Usage
//
//	import "github.com/born-ml/qmnist/classifier"
//
//	func main() {
//	    c, err := classifier.Open("weights", classifier.DefaultConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    digit, err := c.Predict(pixels) // 784 grayscale bytes, row-major
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("digit:", digit)
//	}
//
// A Classifier is safe for concurrent use. Each call borrows its own scratch
// buffers, so the model is shared without locking.
package classifier
