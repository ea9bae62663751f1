// Package bench measures pipeline throughput with an injected cycle counter.
//
// A Harness runs warm-up inferences, then a measured loop split into rounds,
// reading the counter before and after each round. It also times every
// pipeline stage in isolation. The resulting Report renders as plain text to
// any io.Writer (the console sink).
//
// On a host, HostCounter reports nanoseconds, so it pairs with HostClockHz.
// On a target, wrap the platform cycle register in a CounterFunc and set
// Config.ClockHz to the core frequency.
//
// Example:
//
//	h, err := bench.New(p, bench.HostCounter(), cfg, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := h.Run(image)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report.WriteTo(os.Stdout)
package bench
