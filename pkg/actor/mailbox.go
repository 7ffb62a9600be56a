package actor

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrClosed is returned by Call when the mailbox has stopped accepting work.
var ErrClosed = errors.New("actor: mailbox closed")

// CallID correlates a submitted closure with its log lines across a
// cross-mailbox await chain.
type CallID string

// NewCallID returns a fresh correlation id for one mailbox call.
func NewCallID() CallID {
	return CallID(uuid.NewString())
}

// Mailbox runs submitted jobs one at a time, in submission order, on a
// single owned goroutine. pkg/engine creates one for the storage
// manager and one for the index manager (see engine.Engine).
type Mailbox struct {
	jobs    chan func()
	stopCh  chan struct{}
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// NewMailbox creates a mailbox with the given job-queue depth. A depth
// of 0 makes Submit/Call synchronous with the run loop (unbuffered).
func NewMailbox(queueDepth int) *Mailbox {
	return &Mailbox{
		jobs:   make(chan func(), queueDepth),
		stopCh: make(chan struct{}),
	}
}

// Start launches the mailbox's run loop. Start is idempotent.
func (m *Mailbox) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	m.wg.Add(1)
	go m.run()
}

// Stop drains no further jobs and waits for the run loop to exit.
// Jobs already queued but not yet started are never run.
func (m *Mailbox) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	close(m.stopCh)
	m.wg.Wait()
}

func (m *Mailbox) run() {
	defer m.wg.Done()
	for {
		select {
		case fn := <-m.jobs:
			select {
			case <-m.stopCh:
				return
			default:
			}
			fn()
		case <-m.stopCh:
			return
		}
	}
}

// Submit enqueues fn to run on the mailbox's goroutine and blocks until
// it has run. Use Call when fn produces a value.
func (m *Mailbox) Submit(fn func()) error {
	done := make(chan struct{})
	wrapped := func() {
		fn()
		close(done)
	}
	select {
	case m.jobs <- wrapped:
	case <-m.stopCh:
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-m.stopCh:
		return ErrClosed
	}
}

// Call runs fn on the mailbox's goroutine and returns its result. This
// is the primary shape of the component-to-component message surface
// in §6: every op is an awaitable value.
func Call[T any](m *Mailbox, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	resCh := make(chan result, 1)
	job := func() {
		v, err := fn()
		resCh <- result{v, err}
	}
	select {
	case m.jobs <- job:
	case <-m.stopCh:
		var zero T
		return zero, ErrClosed
	}
	select {
	case r := <-resCh:
		return r.v, r.err
	case <-m.stopCh:
		var zero T
		return zero, ErrClosed
	}
}
