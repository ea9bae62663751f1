package bench

import "time"

func monotonicCounter(epoch time.Time) Counter {
	return CounterFunc(func() uint64 {
		return uint64(time.Since(epoch))
	})
}
