// Package pipeline composes the integer kernels into a full forward pass:
//
//	image → quantize → fc1 → requantize → act → fc2 → requantize → act → fc3 → argmax
//
// A Pipeline only reads its weights.Model. Intermediate buffers live in a
// Scratch that is checked out of a sync.Pool for the duration of one call, so
// Infer is safe for concurrent use.
//
// The stage API (Stages, NewScratch, RunStage) exposes the same pass one step
// at a time for profiling; running every stage in order gives the same result
// as Infer.
package pipeline
