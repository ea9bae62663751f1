//go:build !linux

package bench

import "time"

// HostCounter returns a nanosecond counter backed by Go's monotonic clock.
func HostCounter() Counter {
	return monotonicCounter(time.Now())
}
