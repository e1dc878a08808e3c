package pipeline

import "github.com/tdfio/ordermr/metrics"

// instruments bundles the counters and histogram a Dispatcher records
// against, all sourced from a single metrics.Provider. Resolved once at
// construction time so the hot path never does a name-based lookup.
type instruments struct {
	submitted    metrics.Counter
	mapped       metrics.Counter
	mapErrors    metrics.Counter
	reduced      metrics.Counter
	reduceErrors metrics.Counter
	mapDuration  metrics.Histogram
	inflight     metrics.UpDownCounter
}

func newInstruments(p metrics.Provider) instruments {
	return instruments{
		submitted: p.Counter("pipeline_submitted_total",
			metrics.WithDescription("items accepted by Submit"), metrics.WithUnit("1")),
		mapped: p.Counter("pipeline_mapped_total",
			metrics.WithDescription("successful mapper invocations"), metrics.WithUnit("1")),
		mapErrors: p.Counter("pipeline_map_errors_total",
			metrics.WithDescription("failed mapper invocations"), metrics.WithUnit("1")),
		reduced: p.Counter("pipeline_reduced_total",
			metrics.WithDescription("successful reducer invocations"), metrics.WithUnit("1")),
		reduceErrors: p.Counter("pipeline_reduce_errors_total",
			metrics.WithDescription("failed reducer invocations"), metrics.WithUnit("1")),
		mapDuration: p.Histogram("pipeline_map_duration_seconds",
			metrics.WithDescription("mapper call latency"), metrics.WithUnit("seconds")),
		inflight: p.UpDownCounter("pipeline_inflight",
			metrics.WithDescription("items accepted by Submit but not yet released from the ordered queue"), metrics.WithUnit("1")),
	}
}
