package metrics

import "time"

// ObserveSince records the elapsed time since start, in seconds, on h.
// Typical use: `defer metrics.ObserveSince(h, time.Now())` around a mapper call.
func ObserveSince(h Histogram, start time.Time) {
	h.Record(time.Since(start).Seconds())
}
