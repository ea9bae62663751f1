// Package parallel splits index ranges across a bounded number of goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how work is split.
type Config struct {
	Workers  int // Maximum concurrent goroutines; <= 0 means runtime.NumCPU().
	MinChunk int // Minimum indices per goroutine to avoid overhead.
}

// DefaultConfig uses every CPU with chunks of at least 16 items.
func DefaultConfig() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		MinChunk: 16,
	}
}

// Sequential runs everything on the calling goroutine.
func Sequential() Config {
	return Config{Workers: 1}
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// Chunks returns the [lo, hi) ranges For hands to fn, in order.
func Chunks(n int, cfg Config) [][2]int {
	if n <= 0 {
		return nil
	}
	size := max((n+cfg.workers()-1)/cfg.workers(), cfg.MinChunk, 1)

	out := make([][2]int, 0, (n+size-1)/size)
	for lo := 0; lo < n; lo += size {
		out = append(out, [2]int{lo, min(lo+size, n)})
	}
	return out
}

// For calls fn(chunk, lo, hi) for every range returned by Chunks and waits for
// all calls to finish. A single chunk runs on the calling goroutine.
func For(n int, cfg Config, fn func(chunk, lo, hi int)) {
	chunks := Chunks(n, cfg)
	if len(chunks) == 1 {
		fn(0, chunks[0][0], chunks[0][1])
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(chunks))
	for i, c := range chunks {
		go func(i, lo, hi int) {
			defer wg.Done()
			fn(i, lo, hi)
		}(i, c[0], c[1])
	}
	wg.Wait()
}
