package bench

// HostClockHz is the tick rate of HostCounter (nanoseconds).
const HostClockHz = 1_000_000_000

// Counter is a monotonically non-decreasing cycle counter with an arbitrary epoch.
type Counter interface {
	Cycles() uint64
}

// CounterFunc adapts a function to the Counter interface.
type CounterFunc func() uint64

// Cycles calls f.
func (f CounterFunc) Cycles() uint64 { return f() }
