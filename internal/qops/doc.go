// Package qops implements the integer kernels of the classifier: input
// quantization, Q16-scaled int8 matrix multiplication, dynamic re-quantization,
// clamping activations and argmax.
//
// Every kernel writes into a caller-provided destination slice and performs no
// allocation, so a pipeline can reuse scratch buffers between calls. No kernel
// uses floating point except the optional QuantizeFloat reference.
package qops
