//go:build linux

package bench

import (
	"time"

	"golang.org/x/sys/unix"
)

// HostCounter returns a nanosecond counter backed by CLOCK_MONOTONIC_RAW,
// which is not slewed by NTP.
func HostCounter() Counter {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts); err != nil {
		return monotonicCounter(time.Now())
	}
	return CounterFunc(func() uint64 {
		var now unix.Timespec
		if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &now); err != nil {
			return 0
		}
		return uint64(now.Nano())
	})
}
