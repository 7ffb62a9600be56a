// Package metrics exposes the engine's Prometheus series.
//
// All series are package-level vars registered once at import time, in
// the same style as the rest of the dependency pack: gauges for
// current state (pages pinned), counters for
// monotone totals (commits, reverts, evictions), histograms for
// latency distributions (checkpoint duration, index search duration).
package metrics
