package blackboard

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type slot struct {
	value     any
	lastWrite time.Time
}

// Board is the thread-safe shared store all workers read and write through.
// A single mutex guards the slot map and the status for the duration of the
// map mutation only; change notifications are delivered after the lock is
// released, on the writer's goroutine, using a snapshot of the value.
//
// Boards are constructed explicitly and passed to every worker, never
// accessed through package-level state, so tests can run multiple
// independent pipelines side by side.
type Board struct {
	mu       sync.Mutex
	slots    map[string]slot
	status   Status
	notifier *Notifier
	logger   *zap.Logger
	clock    func() time.Time
}

// NewBoard creates an empty board in StatusIdle.
func NewBoard(logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		slots:    make(map[string]slot),
		status:   StatusIdle,
		notifier: NewNotifier(logger),
		logger:   logger.Named("blackboard"),
		clock:    time.Now,
	}
}

// Subscribe registers a callback for writes to key. Use KeyStatus to observe
// workflow transitions.
func (b *Board) Subscribe(key string, fn Callback) {
	b.notifier.Subscribe(key, fn)
}

// Put stores value under key, records the write time, and then notifies the
// key's subscribers. Writing KeyStatus through Put is redirected to
// SetStatus so the status invariant holds regardless of the entry point.
func (b *Board) Put(key string, value any) {
	if key == KeyStatus {
		if s, ok := value.(Status); ok {
			b.SetStatus(s)
			return
		}
	}

	b.mu.Lock()
	b.slots[key] = slot{value: value, lastWrite: b.clock()}
	b.mu.Unlock()

	b.logger.Debug("slot written", zap.String("key", key))
	b.notifier.Publish(key, value)
}

// Get returns the current value under key. The second return is false when
// the slot has never been written. Get never blocks on notification
// delivery.
func (b *Board) Get(key string) (any, bool) {
	if key == KeyStatus {
		return b.Status(), true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.slots[key]
	return s.value, ok
}

// LastWrite returns the time the slot was last written.
func (b *Board) LastWrite(key string) (time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.slots[key]
	return s.lastWrite, ok
}

// SetStatus atomically replaces the current status and notifies KeyStatus
// subscribers. It is the discriminator every worker dispatches on.
func (b *Board) SetStatus(s Status) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()

	b.logger.Debug("status updated", zap.String("status", string(s)))
	b.notifier.Publish(KeyStatus, s)
}

// Status returns the current workflow status.
func (b *Board) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// IncrementAge bumps the age counter of the knowledge graph stored under
// key and notifies the key's subscribers. The stored graph is replaced by an
// aged clone, so readers holding the previous snapshot are unaffected.
// A no-op (returning 0, false) when the slot is absent or does not hold a
// graph; aging a non-graph value is not an error.
func (b *Board) IncrementAge(key string) (int, bool) {
	b.mu.Lock()
	s, ok := b.slots[key]
	if !ok {
		b.mu.Unlock()
		return 0, false
	}
	g, ok := s.value.(*KnowledgeGraph)
	if !ok || g == nil {
		b.mu.Unlock()
		return 0, false
	}

	aged := g.Clone()
	aged.AgeCycles++
	b.slots[key] = slot{value: aged, lastWrite: b.clock()}
	b.mu.Unlock()

	b.logger.Debug("graph aged", zap.String("key", key), zap.Int("age_cycles", aged.AgeCycles))
	b.notifier.Publish(key, aged)
	return aged.AgeCycles, true
}

// now is exposed for tests that need a deterministic clock.
func (b *Board) setClock(clock func() time.Time) {
	b.clock = clock
}
