package blackboard

import (
	"sync"

	"go.uber.org/zap"
)

// Callback is invoked with the slot name and the value that was written.
// Callbacks run synchronously on the writer's goroutine, after the board's
// lock has been released, so they may freely read and write the board.
type Callback func(key string, value any)

// Notifier is the subscription registry mapping slot names to interested
// callbacks. Subscriptions are process-scoped: they are registered at worker
// construction time and never removed during a run.
type Notifier struct {
	mu     sync.Mutex
	subs   map[string][]Callback
	logger *zap.Logger
}

// NewNotifier creates an empty registry.
func NewNotifier(logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		subs:   make(map[string][]Callback),
		logger: logger.Named("notifier"),
	}
}

// Subscribe appends the callback to the list for key. Multiple subscriptions
// per key are allowed and fire in registration order.
func (n *Notifier) Subscribe(key string, fn Callback) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs[key] = append(n.subs[key], fn)
}

// Publish invokes every currently-registered callback for key, in
// registration order. A panicking callback is caught and logged as a
// non-fatal error; the remaining callbacks still run.
//
// The subscriber list is snapshotted under the notifier's lock and the
// callbacks are invoked outside it, so a callback may register further
// subscriptions or trigger further publishes without deadlocking.
func (n *Notifier) Publish(key string, value any) {
	n.mu.Lock()
	snapshot := make([]Callback, len(n.subs[key]))
	copy(snapshot, n.subs[key])
	n.mu.Unlock()

	for _, fn := range snapshot {
		n.invoke(key, value, fn)
	}
}

func (n *Notifier) invoke(key string, value any, fn Callback) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("subscriber panicked",
				zap.String("key", key),
				zap.Any("panic", r))
		}
	}()
	fn(key, value)
}
