package engine

import (
	"sync/atomic"

	"github.com/cuemby/quilldb/pkg/metrics"
)

// CheckpointAll implements checkpoint_all (§4.1, §4.3, §4.4): every
// disk-backed collection flushes its layout descriptor, and the WAL's
// retained prefix only advances past what was durable before this call
// when every registered collection is disk-backed — an in-memory
// collection's only durability is the WAL itself, so its records must
// never be discarded.
func (e *Engine) CheckpointAll() (bool, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.CheckpointDuration)

	lastBefore, err := e.wal.LastIndex()
	if err != nil {
		return false, err
	}
	cid := atomic.AddInt64(&e.commitClock, 1)
	allDiskBacked, err := e.storage.CheckpointAll(cid)
	if err != nil {
		return false, err
	}
	if allDiskBacked && lastBefore > 0 {
		if err := e.wal.DeleteRange(1, lastBefore); err != nil {
			return allDiskBacked, err
		}
	}
	return allDiskBacked, nil
}

// VacuumAll implements the maintenance sweep of §4.3: every collection
// past the 30% deleted-row threshold has its version history GC'd and
// is compacted, isolating any single collection's failure from the
// rest.
func (e *Engine) VacuumAll(lowestActiveStart int64) []error {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.VacuumDuration, "all")
	return e.storage.VacuumAll(lowestActiveStart)
}
