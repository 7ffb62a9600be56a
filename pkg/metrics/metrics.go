package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Buffer pool / block manager metrics
	BufferPoolPagesPinned = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quilldb_buffer_pool_pages_pinned",
			Help: "Current number of pinned pages in the buffer pool",
		},
	)

	BufferPoolEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quilldb_buffer_pool_evictions_total",
			Help: "Total number of pages evicted from the buffer pool",
		},
	)

	BlocksAllocatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quilldb_blocks_allocated_total",
			Help: "Total number of blocks allocated by source (fresh, free_list)",
		},
		[]string{"source"},
	)

	// MVCC / transaction metrics
	TxnCommitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quilldb_txn_commits_total",
			Help: "Total number of committed transactions",
		},
	)

	TxnRevertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quilldb_txn_reverts_total",
			Help: "Total number of reverted transactions",
		},
	)

	RowsAppendedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quilldb_rows_appended_total",
			Help: "Total number of rows appended by collection",
		},
		[]string{"collection"},
	)

	RowsDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quilldb_rows_deleted_total",
			Help: "Total number of rows marked deleted by collection",
		},
		[]string{"collection"},
	)

	// Index metrics
	IndexSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quilldb_index_search_duration_seconds",
			Help:    "Index search latency in seconds by compare operator",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"compare"},
	)

	IndexDiskFlushFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quilldb_index_disk_flush_failures_total",
			Help: "Total number of failed disk-agent flushes by index",
		},
		[]string{"index"},
	)

	// WAL metrics
	WALRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quilldb_wal_records_total",
			Help: "Total number of WAL records written by record kind",
		},
		[]string{"kind"},
	)

	WALReplayedRecordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quilldb_wal_replayed_records_total",
			Help: "Total number of WAL records replayed during recovery",
		},
	)

	// Checkpoint / vacuum metrics
	CheckpointDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quilldb_checkpoint_duration_seconds",
			Help:    "Time taken to checkpoint all storage entries in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	VacuumDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quilldb_vacuum_duration_seconds",
			Help:    "Time taken to compact a collection in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection"},
	)

	// Kernel / function execution metrics
	FunctionCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quilldb_function_calls_total",
			Help: "Total number of function dispatches by function name",
		},
		[]string{"function"},
	)
)

func init() {
	prometheus.MustRegister(
		BufferPoolPagesPinned,
		BufferPoolEvictionsTotal,
		BlocksAllocatedTotal,
		TxnCommitsTotal,
		TxnRevertsTotal,
		RowsAppendedTotal,
		RowsDeletedTotal,
		IndexSearchDuration,
		IndexDiskFlushFailuresTotal,
		WALRecordsTotal,
		WALReplayedRecordsTotal,
		CheckpointDuration,
		VacuumDuration,
		FunctionCallsTotal,
	)
}

// Handler returns the Prometheus HTTP handler for a metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations against a histogram.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer starting now.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
